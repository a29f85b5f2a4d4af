package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table as JSONL into dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Store.Export(cmd.Context(), args[0]); err != nil {
				return err
			}
			return e.print(cmd, map[string]string{"exported": args[0]}, func(w io.Writer) {
				fmt.Fprintln(w, "Exported to", args[0])
			})
		},
	}
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load JSONL tables from dir; existing rows are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			if err := a.Store.Import(ctx, args[0]); err != nil {
				return err
			}
			counts, err := a.Store.Counts(ctx)
			if err != nil {
				return err
			}
			return e.print(cmd, counts, func(w io.Writer) {
				fmt.Fprintln(w, "Imported from", args[0])
			})
		},
	}
}
