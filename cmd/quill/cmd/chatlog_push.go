package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/docs"
	"github.com/quillhq/quill/pkg/project"
)

// chatLogFile is the on-disk session format: one JSON object per recorded
// conversation.
type chatLogFile struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Started   string `json:"started"`
	Messages  []struct {
		Role string `json:"role"`
		Time string `json:"time"`
		Text string `json:"text"`
	} `json:"messages"`
}

var chatlogCmd = &cobra.Command{
	Use:   "chatlog",
	Short: "manage recorded conversation transcripts",
}

var chatlogPushCmd = &cobra.Command{
	Use:   "push <session.json>",
	Short: "publish a recorded conversation",
	Long: `push uploads one recorded session as a transcript. The project is
taken from --project, or inferred from --source-path against the configured
known projects and common source layouts.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			DieErr(err)
		}
		var log chatLogFile
		if err := json.Unmarshal(raw, &log); err != nil {
			DieFmt("could not parse session file: %v", err)
		}
		if log.SessionID == "" {
			DieFmt("session file has no session_id")
		}

		projectName, _ := cmd.Flags().GetString("project")
		if projectName == "" {
			sourcePath, _ := cmd.Flags().GetString("source-path")
			if sourcePath == "" {
				DieFmt("either --project or --source-path is required")
			}
			projectName = project.Default(cfg.GetKnownProjects(), cfg.GetHomeDir()).Infer(sourcePath)
			if projectName == "" {
				DieFmt("could not infer a project from %s", sourcePath)
			}
		}

		transcript := docs.ChatTranscript{
			Project:   projectName,
			SessionID: log.SessionID,
			Title:     log.Title,
			Started:   parseTime(log.Started),
			Messages:  make([]docs.Message, 0, len(log.Messages)),
		}
		for _, m := range log.Messages {
			transcript.Messages = append(transcript.Messages, docs.Message{
				Role: m.Role,
				Time: parseTime(m.Time),
				Text: m.Text,
			})
		}

		cs, err := transcript.ChangeSet()
		if err != nil {
			DieErr(err)
		}

		result, err := getManager().Publish(context.Background(), publishRequest(cmd, cs))
		WriteResult(result, err)
	},
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(chatlogCmd)
	chatlogCmd.AddCommand(chatlogPushCmd)

	chatlogPushCmd.Flags().String("project", "", "project the session belongs to")
	chatlogPushCmd.Flags().String("source-path", "", "working directory of the session, used to infer the project")
	addLifecycleFlags(chatlogPushCmd)
}
