package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/version"
)

const versionTemplate = `quill version {{.Version}}
`

const outdatedTemplate = `{{"update available:"|yellow}} {{.Current}} (you have {{.Local}})
download it from {{.ReleasesURL}}
`

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		Write(versionTemplate, struct{ Version string }{version.Version})

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return
		}
		resp, err := version.CheckLatestVersion(version.NewReleasesSource(), version.Version)
		if err != nil {
			DieFmt("could not check for a newer release: %v", err)
		}
		if resp.Outdated {
			Write(outdatedTemplate, struct {
				Current     string
				Local       string
				ReleasesURL string
			}{resp.Current, version.Version, version.DefaultReleasesURL})
		}
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("check", false, "also check whether a newer release exists")
}
