package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/productkb/kbctl/internal/catalog"
)

func newPingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the remote API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, settings, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()

			remote, ok := repo.(*catalog.RemoteRepository)
			if !ok {
				return fmt.Errorf("ping requires the remote backend")
			}
			if err := remote.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", settings.BaseURL)
			return nil
		},
	}
}
