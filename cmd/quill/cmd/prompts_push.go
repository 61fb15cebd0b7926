package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/docs"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "manage synced prompt sets",
}

var promptsPushCmd = &cobra.Command{
	Use:   "push <directory>",
	Short: "publish a project's prompt files",
	Long: `push uploads every .md file in the directory as the project's prompt
set. With --prune the whole remote prompt subtree for the project is
replaced, so prompts deleted locally disappear remotely. Without it the
files are only added or overwritten.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		project, err := cmd.Flags().GetString("project")
		if err != nil {
			DieErr(err)
		}
		prune, _ := cmd.Flags().GetBool("prune")

		entries, err := os.ReadDir(args[0])
		if err != nil {
			DieErr(err)
		}
		var prompts []docs.Prompt
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			content, err := os.ReadFile(filepath.Join(args[0], e.Name()))
			if err != nil {
				DieErr(err)
			}
			prompts = append(prompts, docs.Prompt{
				Name:    strings.TrimSuffix(e.Name(), ".md"),
				Content: string(content),
			})
		}
		if len(prompts) == 0 {
			DieFmt("no .md prompt files found in %s", args[0])
		}

		cs, err := docs.PromptSet{
			Project: project,
			Prompts: prompts,
			Prune:   prune,
			Date:    time.Now().UTC(),
		}.ChangeSet()
		if err != nil {
			DieErr(err)
		}

		result, err := getManager().Publish(context.Background(), publishRequest(cmd, cs))
		WriteResult(result, err)
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.AddCommand(promptsPushCmd)

	promptsPushCmd.Flags().String("project", "", "project the prompts belong to")
	_ = promptsPushCmd.MarkFlagRequired("project")
	promptsPushCmd.Flags().Bool("prune", false, "replace the project's whole remote prompt subtree")
	addLifecycleFlags(promptsPushCmd)
}
