package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	CredentialsTokenKey = "credentials.token" // #nosec

	ServerEndpointURLKey     = "server.endpoint_url"
	DefaultServerEndpointURL = "https://api.github.com"

	RepositoryOwnerKey      = "repository.owner"
	RepositoryNameKey       = "repository.name"
	RepositoryBaseBranchKey = "repository.base_branch"
	DefaultBaseBranch       = "main"

	LoggingFormatKey = "logging.format"
	LoggingLevelKey  = "logging.level"
	LoggingOutputKey = "logging.output"

	SearchCacheSizeKey       = "search.cache_size"
	DefaultSearchCacheSize   = 128
	SearchCacheExpiryKey     = "search.cache_expiry"
	DefaultSearchCacheExpiry = 30 * time.Second
	SearchCacheJitterKey     = "search.cache_jitter"
	DefaultSearchCacheJitter = 5 * time.Second

	SyncMaxWorkersKey     = "sync.max_workers"
	DefaultSyncMaxWorkers = 5

	ProjectsKnownKey   = "projects.known"
	ProjectsHomeDirKey = "projects.home_dir"
)

func setDefaults() {
	viper.SetDefault(ServerEndpointURLKey, DefaultServerEndpointURL)

	viper.SetDefault(RepositoryBaseBranchKey, DefaultBaseBranch)

	viper.SetDefault(LoggingFormatKey, DefaultLoggingFormat)
	viper.SetDefault(LoggingLevelKey, DefaultLoggingLevel)
	viper.SetDefault(LoggingOutputKey, DefaultLoggingOutput)

	viper.SetDefault(SearchCacheSizeKey, DefaultSearchCacheSize)
	viper.SetDefault(SearchCacheExpiryKey, DefaultSearchCacheExpiry)
	viper.SetDefault(SearchCacheJitterKey, DefaultSearchCacheJitter)

	viper.SetDefault(SyncMaxWorkersKey, DefaultSyncMaxWorkers)
}
