package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/productkb/kbctl/internal/snapshot"
)

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole catalog as a YAML snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, _, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			n, err := snapshot.Export(cmd.Context(), repo, out)
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d item(s) to %s\n", n, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var skipExisting bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create items from a YAML snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			repo, _, _, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()

			n, err := snapshot.Import(cmd.Context(), repo, f, skipExisting)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d item(s)\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip ids that already exist instead of failing")
	return cmd
}
