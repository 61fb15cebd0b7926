package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/docs"
	"github.com/quillhq/quill/pkg/pull"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "manage changelog entries",
}

var changelogAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "commit a dated changelog entry directly to the base branch",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body, err := os.ReadFile(args[0])
		if err != nil {
			DieErr(err)
		}
		title, err := cmd.Flags().GetString("title")
		if err != nil {
			DieErr(err)
		}

		entry := docs.ChangelogEntry{
			Title: title,
			Body:  string(body),
			Date:  time.Now().UTC(),
		}
		content, err := entry.Render()
		if err != nil {
			DieErr(err)
		}
		message, _ := cmd.Flags().GetString("message")

		result, err := getManager().PutSingle(context.Background(), pull.SingleFileRequest{
			Repo:          cfg.GetRepository(),
			Branch:        cfg.GetBaseBranch(),
			Path:          entry.Path(),
			Content:       content,
			CommitMessage: message,
		})
		WriteResult(result, err)
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(changelogCmd)
	changelogCmd.AddCommand(changelogAddCmd)

	changelogAddCmd.Flags().String("title", "", "entry title")
	_ = changelogAddCmd.MarkFlagRequired("title")
	changelogAddCmd.Flags().StringP("message", "m", "", "commit message")
}
