package cmd

import (
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillhq/quill/pkg/cache"
	"github.com/quillhq/quill/pkg/config"
	"github.com/quillhq/quill/pkg/gitobj"
	"github.com/quillhq/quill/pkg/logging"
	"github.com/quillhq/quill/pkg/pull"
	"github.com/quillhq/quill/pkg/search"
	"github.com/quillhq/quill/pkg/sync"
	"github.com/quillhq/quill/pkg/version"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any sub-commands
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Persist agent documents to a reviewed content repository",
	Long: `quill synchronizes specs, decision records, changelog entries, prompts
and chat transcripts into a remote repository as atomic commits, optionally
behind pull requests, and searches what was stored.`,
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorRequested {
			DisableColors()
		}
		c, err := config.NewConfig()
		if err != nil {
			DieFmt("error loading configuration: %v", err)
		}
		cfg = c

		if cmd == versionCmd {
			return
		}
		if err := cfg.Validate(); err != nil {
			DieErr(err)
		}
		logging.Default().
			WithField("file", viper.ConfigFileUsed()).
			Debug("loaded configuration")
	},
}

func getClient() *gitobj.Client {
	return gitobj.NewClient(cfg.GetCredentialToken(),
		gitobj.WithBaseURL(cfg.GetServerEndpointURL()))
}

func getSynchronizer(client *gitobj.Client) *sync.Synchronizer {
	return sync.NewSynchronizer(client, client.URLs(),
		sync.WithMaxBlobUploaders(cfg.GetSyncMaxWorkers()))
}

func getManager() *pull.Manager {
	client := getClient()
	return pull.NewManager(client, getSynchronizer(client), client.URLs())
}

func getSearcher() *search.Searcher {
	return search.NewSearcher(getClient(),
		search.WithCache(cache.NewCacheByParams(&cache.Params{
			Name:     "search-results",
			Size:     cfg.GetSearchCacheSize(),
			Expiry:   cfg.GetSearchCacheExpiry(),
			JitterFn: cache.NewJitterFn(cfg.GetSearchCacheJitter()),
		})))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		DieErr(err)
	}
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.quill.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColorRequested, "no-color", false, "don't use fancy output colors (default when not attached to an interactive terminal)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			DieErr(err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".quill")
	}

	viper.SetEnvPrefix("QUILL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // support nested config
	viper.AutomaticEnv()                                   // read in environment variables that match

	// a missing config file is fine, defaults plus env vars may be enough
	_ = viper.ReadInConfig()
}
