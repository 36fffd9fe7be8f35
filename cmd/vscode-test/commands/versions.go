package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qiu8310/vscode-test/internal/releases"
)

func versionsCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List published editor versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := releases.New(os.Getenv("GITHUB_TOKEN"))
			versions, err := client.Versions(cmd.Context(), count)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, v := range versions {
				fmt.Fprintln(w, v)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of versions to list")

	return cmd
}
