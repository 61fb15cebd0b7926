// Package config reads process configuration exactly once at startup:
// config file, QUILL_* environment variables, then defaults. Everything
// downstream receives values through Config accessors.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/quillhq/quill/pkg/gitobj"
)

var (
	ErrBadConfiguration = errors.New("bad configuration")
	ErrMissingToken     = fmt.Errorf("%w: credentials.token cannot be empty", ErrBadConfiguration)
	ErrMissingRepo      = fmt.Errorf("%w: repository.owner and repository.name must be set", ErrBadConfiguration)
)

type Config struct {
	values configuration
}

func NewConfig() (*Config, error) {
	c := &Config{}

	// Inform viper of all expected fields.  Otherwise, it fails to deserialize from the
	// environment.
	keys := GetStructKeys(reflect.TypeOf(c.values), "mapstructure", "squash")
	for _, key := range keys {
		viper.SetDefault(key, nil)
	}

	setDefaults()
	setupLogger()

	err := viper.UnmarshalExact(&c.values, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			DecodeStrings, mapstructure.StringToTimeDurationHookFunc())))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the keys every command needs.  Commands that never touch
// the remote (version, help) skip it.
func (c *Config) Validate() error {
	if c.values.Credentials.Token.SecureValue() == "" {
		return ErrMissingToken
	}
	if c.values.Repository.Owner == "" || c.values.Repository.Name == "" {
		return ErrMissingRepo
	}
	return nil
}

func (c *Config) GetServerEndpointURL() string {
	return c.values.Server.EndpointURL
}

func (c *Config) GetCredentialToken() string {
	return c.values.Credentials.Token.SecureValue()
}

func (c *Config) GetRepository() gitobj.RepositoryRef {
	return gitobj.RepositoryRef{
		Owner: c.values.Repository.Owner,
		Name:  c.values.Repository.Name,
	}
}

func (c *Config) GetBaseBranch() string {
	return c.values.Repository.BaseBranch
}

func (c *Config) GetSearchCacheSize() int {
	return c.values.Search.CacheSize
}

func (c *Config) GetSearchCacheExpiry() time.Duration {
	return c.values.Search.CacheExpiry
}

func (c *Config) GetSearchCacheJitter() time.Duration {
	return c.values.Search.CacheJitter
}

func (c *Config) GetSyncMaxWorkers() int {
	return c.values.Sync.MaxWorkers
}

func (c *Config) GetKnownProjects() []string {
	return c.values.Projects.Known
}

// GetHomeDir expands projects.home_dir, falling back to the process owner's
// home directory.
func (c *Config) GetHomeDir() string {
	dir := c.values.Projects.HomeDir
	if dir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return ""
		}
		return home
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return dir
	}
	return expanded
}
