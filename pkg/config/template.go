package config

import (
	"time"
)

// Output struct of configuration, used to validate.  If you read a key using a viper accessor
// rather than accessing a field of this struct, that key will *not* be validated.  So don't
// do that.
type configuration struct {
	Credentials struct {
		Token SecureString `mapstructure:"token"`
	}

	Server struct {
		EndpointURL string `mapstructure:"endpoint_url"`
	}

	Repository struct {
		Owner      string `mapstructure:"owner"`
		Name       string `mapstructure:"name"`
		BaseBranch string `mapstructure:"base_branch"`
	}

	Logging struct {
		Format string `mapstructure:"format"`
		Level  string `mapstructure:"level"`
		Output string `mapstructure:"output"`
	}

	Search struct {
		CacheSize   int           `mapstructure:"cache_size"`
		CacheExpiry time.Duration `mapstructure:"cache_expiry"`
		CacheJitter time.Duration `mapstructure:"cache_jitter"`
	}

	Sync struct {
		MaxWorkers int `mapstructure:"max_workers"`
	}

	Projects struct {
		Known   Strings `mapstructure:"known"`
		HomeDir string  `mapstructure:"home_dir"`
	}
}
