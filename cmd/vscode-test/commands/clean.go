package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qiu8310/vscode-test/internal/cache"
)

func cleanCmd() *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove downloaded editor builds from the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cachePath == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				cachePath = filepath.Join(wd, ".vscode-test")
			}

			store, err := cache.Open(filepath.Join(cachePath, "installs.db"))
			if err != nil {
				return err
			}
			defer store.Close()

			installs, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, inst := range installs {
				if err := os.RemoveAll(inst.Path); err != nil {
					return fmt.Errorf("removing %s: %w", inst.Path, err)
				}
				if err := store.Delete(cmd.Context(), inst.Version, inst.Platform); err != nil {
					return err
				}
				fmt.Fprintf(w, "removed %s %s\n", inst.Version, inst.Platform)
			}
			fmt.Fprintf(w, "✓ %d install(s) removed\n", len(installs))
			return nil
		},
	}

	cmd.Flags().StringVar(&cachePath, "cache", "", "Cache directory (default: ./.vscode-test)")

	return cmd
}
