package cmd

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/changeset"
	"github.com/quillhq/quill/pkg/pull"
)

var pushCmd = &cobra.Command{
	Use:   "push <file>...",
	Short: "publish local files to the repository behind a pull request",
	Long: `push uploads the given local files under --target-dir as one atomic
commit. Without --pr a new branch and pull request are created; with --pr
the existing pull request's branch is advanced.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		targetDir, err := cmd.Flags().GetString("target-dir")
		if err != nil {
			DieErr(err)
		}
		scope, err := cmd.Flags().GetString("scope")
		if err != nil {
			DieErr(err)
		}

		cs := changeset.New(scope)
		for _, name := range args {
			content, err := os.ReadFile(name)
			if err != nil {
				DieErr(err)
			}
			cs.Add(path.Join(targetDir, filepath.Base(name)), string(content))
		}

		result, err := getManager().Publish(context.Background(), publishRequest(cmd, cs))
		WriteResult(result, err)
	},
}

// publishRequest assembles the lifecycle overrides shared by every
// publishing command.
func publishRequest(cmd *cobra.Command, cs *changeset.ChangeSet) pull.PublishRequest {
	prNumber, _ := cmd.Flags().GetInt("pr")
	branch, _ := cmd.Flags().GetString("branch")
	title, _ := cmd.Flags().GetString("title")
	body, _ := cmd.Flags().GetString("body")
	message, _ := cmd.Flags().GetString("message")

	return pull.PublishRequest{
		Repo:          cfg.GetRepository(),
		BaseBranch:    cfg.GetBaseBranch(),
		ChangeSet:     cs,
		CommitMessage: message,
		ExistingPR:    prNumber,
		BranchName:    branch,
		Title:         title,
		Body:          body,
	}
}

func addLifecycleFlags(cmd *cobra.Command) {
	cmd.Flags().Int("pr", 0, "update this existing pull request instead of opening a new one")
	cmd.Flags().String("branch", "", "branch name for a new pull request (generated when empty)")
	cmd.Flags().String("title", "", "pull request title")
	cmd.Flags().String("body", "", "pull request body")
	cmd.Flags().StringP("message", "m", "", "commit message")
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().String("target-dir", "", "repository directory to place the files under")
	pushCmd.Flags().String("scope", "", "scope prefix whose existing contents are replaced by this push")
	addLifecycleFlags(pushCmd)
}
