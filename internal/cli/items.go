package cli

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/pkg/models"
)

func newSearchCmd(app *App) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search items",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, _, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			res, err := repo.Search(cmd.Context(), query, limit, offset)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTAGS\tIMAGES\tDESCRIPTION")
			for i := range res.Items {
				it := &res.Items[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					it.ID, it.Name, models.JoinList(it.Tags), len(it.Images), it.Desc)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d items\n", len(res.Items), res.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", catalog.DefaultLimit, "Maximum items to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Items to skip")
	return cmd
}

func newGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, _, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()

			it, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(it)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var (
		id     string
		genID  bool
		name   string
		desc   string
		tags   string
		images string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if genID {
				id = uuid.NewString()
			}
			if id == "" {
				return &catalog.ValidationError{Field: "id"}
			}
			if strings.TrimSpace(name) == "" {
				return &catalog.ValidationError{Field: "name"}
			}

			repo, _, _, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()

			item := &models.Item{
				ID:     id,
				Name:   name,
				Desc:   desc,
				Tags:   models.SplitList(tags),
				Images: models.SplitList(images),
			}
			if err := repo.Create(cmd.Context(), item); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), item.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Item id (unique)")
	cmd.Flags().BoolVar(&genID, "gen-id", false, "Generate a random id")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar(&images, "images", "", "Comma-separated image URLs")
	return cmd
}

func newSetCmd(app *App) *cobra.Command {
	var (
		name   string
		desc   string
		tags   string
		images string
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update fields of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only flags actually given join the patch; everything else
			// keeps its stored value.
			var patch catalog.Patch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("desc") {
				patch.Desc = &desc
			}
			if cmd.Flags().Changed("tags") {
				patch.Tags = models.SplitList(tags)
				if patch.Tags == nil {
					patch.Tags = []string{}
				}
			}
			if cmd.Flags().Changed("images") {
				patch.Images = models.SplitList(images)
				if patch.Images == nil {
					patch.Images = []string{}
				}
			}
			if patch.IsZero() {
				return fmt.Errorf("nothing to change: pass at least one of --name, --desc, --tags, --images")
			}

			repo, _, _, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()

			return repo.Update(cmd.Context(), args[0], patch)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags (empty clears)")
	cmd.Flags().StringVar(&images, "images", "", "Comma-separated image URLs (empty clears)")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "delete %q? [y/N] ", args[0])
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(line)) {
				case "y", "yes":
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			repo, _, _, closer, err := app.open()
			if err != nil {
				return err
			}
			defer closer()

			return repo.Remove(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}
