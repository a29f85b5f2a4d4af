package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newInitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize restroom storage",
		Long:  "Create configuration and data directories, then initialize the store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			if err := a.Close(); err != nil {
				return systemErr("finalize storage: %w", err)
			}
			return e.print(cmd, map[string]string{"config_dir": e.configDir, "data_dir": e.dataDir}, func(w io.Writer) {
				fmt.Fprintf(w, "Restroom initialized in %s\n", e.dataDir)
			})
		},
	}
}
