// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/folio/content"
	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/database/plugin"
	"github.com/blinklabs-io/folio/identity"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "folio.config"

const (
	DefaultDatabasePath = ".folio"
	EnvPrefix           = "folio"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config   map[string]any  `yaml:"config,omitempty"`
	Database *databaseConfig `yaml:"database,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath       string            `yaml:"databasePath"       split_words:"true"`
	BlobPlugin         string            `yaml:"blobPlugin"         envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin     string            `yaml:"metadataPlugin"     envconfig:"DATABASE_METADATA_PLUGIN"`
	PostMinBytes       uint32            `yaml:"postMinBytes"       split_words:"true"`
	PostMaxBytes       uint32            `yaml:"postMaxBytes"       split_words:"true"`
	CommentMinBytes    uint32            `yaml:"commentMinBytes"    split_words:"true"`
	CommentMaxBytes    uint32            `yaml:"commentMaxBytes"    split_words:"true"`
	ExistentialDeposit uint64            `yaml:"existentialDeposit" split_words:"true"`
	PostCacheTTL       time.Duration     `yaml:"postCacheTTL"       envconfig:"POST_CACHE_TTL"`
	Genesis            map[string]uint64 `yaml:"genesis"`
	// Tracing exports spans over OTLP/HTTP, configured with the standard
	// OTEL_EXPORTER_OTLP_* environment variables
	Tracing       bool `yaml:"tracing"`
	TracingStdout bool `yaml:"tracingStdout" split_words:"true"`
}

// Limits returns the configured content length bounds
func (c *Config) Limits() content.Limits {
	return content.Limits{
		PostMinBytes:    c.PostMinBytes,
		PostMaxBytes:    c.PostMaxBytes,
		CommentMinBytes: c.CommentMinBytes,
		CommentMaxBytes: c.CommentMaxBytes,
	}
}

// GenesisBalances resolves the genesis section. Keys are participant ids
// (bech32 or hex) or plain names
func (c *Config) GenesisBalances() map[identity.ParticipantId]currency.Balance {
	ret := make(map[identity.ParticipantId]currency.Balance, len(c.Genesis))
	for name, amount := range c.Genesis {
		ret[ResolveParticipant(name)] += amount
	}
	return ret
}

// ResolveParticipant parses s as a participant id, falling back to deriving
// one from s as a name
func ResolveParticipant(s string) identity.ParticipantId {
	if p, err := identity.ParseParticipant(s); err == nil {
		return p
	}
	return identity.ParticipantFromName(s)
}

func defaultConfig() Config {
	return Config{
		DatabasePath:       DefaultDatabasePath,
		BlobPlugin:         database.DefaultBlobPlugin,
		MetadataPlugin:     database.DefaultMetadataPlugin,
		PostMinBytes:       content.DefaultPostMinBytes,
		PostMaxBytes:       content.DefaultPostMaxBytes,
		CommentMinBytes:    content.DefaultCommentMinBytes,
		CommentMaxBytes:    content.DefaultCommentMaxBytes,
		ExistentialDeposit: currency.DefaultExistentialDeposit,
		PostCacheTTL:       content.DefaultPostCacheTTL,
	}
}

var globalConfig = func() *Config {
	cfg := defaultConfig()
	return &cfg
}()

// findConfigFile looks in ~/.folio/folio.yaml and then /etc/folio/folio.yaml
func findConfigFile() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".folio", "folio.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/folio/folio.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// First unmarshal into temp config to handle plugin sections
		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		if tempCfg.Config != nil {
			// Overlay config values onto existing defaults
			configBytes, err := yaml.Marshal(tempCfg.Config)
			if err != nil {
				return nil, fmt.Errorf("error re-marshalling config: %w", err)
			}
			if err := yaml.Unmarshal(configBytes, globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			// Otherwise the whole file is the main config
			if err := yaml.Unmarshal(buf, globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
		if tempCfg.Database != nil {
			pluginConfig := make(map[string]map[string]map[string]any)
			if tempCfg.Database.Blob != nil {
				name, cfg := splitPluginSection(tempCfg.Database.Blob)
				if name != "" {
					globalConfig.BlobPlugin = name
				}
				pluginConfig["blob"] = cfg
			}
			if tempCfg.Database.Metadata != nil {
				name, cfg := splitPluginSection(tempCfg.Database.Metadata)
				if name != "" {
					globalConfig.MetadataPlugin = name
				}
				pluginConfig["metadata"] = cfg
			}
			if err := plugin.ProcessConfig(pluginConfig); err != nil {
				return nil, fmt.Errorf(
					"error processing plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	if err := envconfig.Process(EnvPrefix, globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	// Process plugin environment variables
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func (c *Config) validate() error {
	if c.PostMinBytes >= c.PostMaxBytes {
		return fmt.Errorf(
			"invalid post length bounds: min %d must be below max %d",
			c.PostMinBytes,
			c.PostMaxBytes,
		)
	}
	if c.CommentMinBytes >= c.CommentMaxBytes {
		return fmt.Errorf(
			"invalid comment length bounds: min %d must be below max %d",
			c.CommentMinBytes,
			c.CommentMaxBytes,
		)
	}
	return nil
}

// splitPluginSection separates the "plugin" selector from the per-plugin
// option maps of a database section
func splitPluginSection(section map[string]any) (string, map[string]map[string]any) {
	var pluginName string
	ret := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			if name, ok := v.(string); ok {
				pluginName = name
			}
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			ret[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		default:
			fmt.Fprintf(os.Stderr, "warning: skipping database config entry %q: expected map, got %T\n", k, v)
		}
	}
	return pluginName, ret
}

func GetConfig() *Config {
	return globalConfig
}
