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

var adrCmd = &cobra.Command{
	Use:   "adr",
	Short: "manage architecture decision records",
}

var adrPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "publish a decision record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := os.ReadFile(args[0])
		if err != nil {
			DieErr(err)
		}
		number, err := cmd.Flags().GetInt("number")
		if err != nil {
			DieErr(err)
		}
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		status, _ := cmd.Flags().GetString("status")

		cs, err := docs.ADR{
			Number: number,
			Title:  title,
			Status: status,
			Body:   string(content),
			Date:   time.Now().UTC(),
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
	rootCmd.AddCommand(adrCmd)
	adrCmd.AddCommand(adrPushCmd)

	adrPushCmd.Flags().Int("number", 0, "decision record sequence number")
	_ = adrPushCmd.MarkFlagRequired("number")
	adrPushCmd.Flags().String("status", "", "record status (proposed, accepted, superseded)")
	addLifecycleFlags(adrPushCmd)
}
