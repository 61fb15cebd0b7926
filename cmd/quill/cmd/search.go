package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/gitobj"
)

const searchResultTemplate = `{{.Table | table -}}
`

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "search stored documents by keyword",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		withBodies, _ := cmd.Flags().GetBool("bodies")

		searcher := getSearcher()
		ctx := context.Background()
		repo := cfg.GetRepository()

		var matches []gitobj.CodeMatch
		var err error
		if withBodies {
			matches, err = searcher.SearchWithBodies(ctx, repo, query)
		} else {
			matches, err = searcher.Search(ctx, repo, query)
		}
		if err != nil && len(matches) == 0 {
			DieErr(err)
		}

		rows := make([][]interface{}, 0, len(matches))
		for _, m := range matches {
			rows = append(rows, []interface{}{m.Path, m.SHA})
		}
		Write(searchResultTemplate, struct{ Table *Table }{
			Table: &Table{
				Headers: []interface{}{"Path", "Blob"},
				Rows:    rows,
			},
		})

		if withBodies {
			for _, m := range matches {
				if m.Content == "" {
					continue
				}
				Write("\n{{.Path|bold}}\n{{.Content}}\n", m)
			}
		}
		if err != nil {
			DieFmt("some file bodies could not be fetched: %v", err)
		}
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Bool("bodies", false, "also fetch and print matched file contents")
}
