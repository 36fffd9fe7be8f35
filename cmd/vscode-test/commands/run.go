package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	vscodetest "github.com/qiu8310/vscode-test"
	"github.com/qiu8310/vscode-test/internal/config"
)

func runCmd() *cobra.Command {
	var (
		configPath string
		version    string
		platform   string
		cachePath  string
		reuse      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the extension tests described by .vscode-test.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.LoadFrom(path)
			if err != nil {
				return err
			}

			// Flags override the file.
			if version != "" {
				cfg.VSCode.Version = version
			}
			if platform != "" {
				cfg.VSCode.Platform = platform
			}
			if cachePath != "" {
				cfg.VSCode.CachePath = cachePath
			}
			if cmd.Flags().Changed("reuse-machine-install") {
				cfg.VSCode.ReuseMachineInstall = reuse
			}

			env := make(map[string]*string, len(cfg.Run.Env))
			for k, v := range cfg.Run.Env {
				env[k] = &v
			}

			code, err := vscodetest.RunTests(cmd.Context(), vscodetest.TestConfig{
				Version:                  cfg.VSCode.Version,
				Platform:                 cfg.VSCode.Platform,
				CachePath:                cfg.VSCode.CachePath,
				ExtensionDevelopmentPath: cfg.Extension.DevelopmentPath,
				ExtensionTestsPath:       cfg.Extension.TestsPath,
				ExtensionTestsEnv:        env,
				LaunchArgs:               cfg.Run.LaunchArgs,
				ReuseMachineInstall:      cfg.VSCode.ReuseMachineInstall,
				Reporter:                 vscodetest.NewConsoleReporter(),
			})
			if err != nil {
				if errors.Is(err, vscodetest.ErrNonZeroExit) {
					return fmt.Errorf("tests failed (exit code %d)", code)
				}
				return fmt.Errorf("test run failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ tests passed\n")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: .vscode-test.toml)")
	cmd.Flags().StringVarP(&version, "version", "v", "", "Editor version override")
	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform override, e.g. linux-x64")
	cmd.Flags().StringVar(&cachePath, "cache", "", "Cache directory override")
	cmd.Flags().BoolVar(&reuse, "reuse-machine-install", false, "Use the machine's own editor profile")

	return cmd
}
