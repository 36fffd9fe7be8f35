package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	vscodetest "github.com/qiu8310/vscode-test"
)

func downloadCmd() *cobra.Command {
	var (
		version   string
		platform  string
		cachePath string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Pre-fetch an editor build into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := vscodetest.Download(cmd.Context(), vscodetest.DownloadOptions{
				Version:   version,
				Platform:  platform,
				CachePath: cachePath,
				Reporter:  vscodetest.NewConsoleReporter(),
			})
			if err != nil {
				return fmt.Errorf("download failed: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ %s %s ready\n", inst.Version, inst.Platform)
			fmt.Fprintf(w, "  Executable: %s\n", inst.ExecutablePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&version, "version", "v", "stable", "Version, version range, or \"insiders\"")
	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform, e.g. linux-x64 (default: detect)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "Cache directory (default: ./.vscode-test)")

	return cmd
}
