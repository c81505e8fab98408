package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <id> <file>...",
		Short: "Attach image files to an item",
		Long:  "Posts the given files to the item's image endpoint. Remote backend only.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, uploader, _, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()
			if uploader == nil {
				return fmt.Errorf("upload requires the remote backend")
			}

			id := args[0]
			// The item must exist; uploads never create.
			if _, err := repo.Get(cmd.Context(), id); err != nil {
				return err
			}
			if err := uploader.Upload(cmd.Context(), id, name, args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d file(s) to %s\n", len(args)-1, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name to send with the upload")
	return cmd
}
