package commands

import (
	"github.com/spf13/cobra"
)

// Root returns the root cobra command with all subcommands attached.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vscode-test",
		Short: "Run extension integration tests inside a real editor build",
		Long:  "vscode-test downloads an isolated copy of the editor and runs an extension's integration tests against it.",
	}

	cmd.AddCommand(initCmd())
	cmd.AddCommand(runCmd())
	cmd.AddCommand(downloadCmd())
	cmd.AddCommand(versionsCmd())
	cmd.AddCommand(cleanCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}
