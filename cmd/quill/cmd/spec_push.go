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

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "manage specification documents",
}

var specPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "publish a specification document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := os.ReadFile(args[0])
		if err != nil {
			DieErr(err)
		}
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		tags, _ := cmd.Flags().GetStringSlice("tag")

		cs, err := docs.Spec{
			Title: title,
			Body:  string(content),
			Tags:  tags,
			Date:  time.Now().UTC(),
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
	rootCmd.AddCommand(specCmd)
	specCmd.AddCommand(specPushCmd)

	specPushCmd.Flags().StringSlice("tag", []string{}, "tags recorded in the document header")
	addLifecycleFlags(specPushCmd)
}
