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
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/blinklabs-io/folio/identity"
)

func resetGlobalConfig() {
	cfg := defaultConfig()
	globalConfig = &cfg
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test-folio.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return tmpFile
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
databasePath: "/var/lib/folio"
blobPlugin: "badger"
metadataPlugin: "sqlite"
postMinBytes: 10
postMaxBytes: 2000
commentMinBytes: 5
commentMaxBytes: 500
existentialDeposit: 100
postCacheTTL: 30s
genesis:
  alice: 1000
`
	expected := &Config{
		DatabasePath:       "/var/lib/folio",
		BlobPlugin:         "badger",
		MetadataPlugin:     "sqlite",
		PostMinBytes:       10,
		PostMaxBytes:       2000,
		CommentMinBytes:    5,
		CommentMaxBytes:    500,
		ExistentialDeposit: 100,
		PostCacheTTL:       30 * time.Second,
		Genesis:            map[string]uint64{"alice": 1000},
	}
	actual, err := LoadConfig(writeConfigFile(t, yamlContent))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
}

func TestLoad_ConfigSectionKeepsDefaults(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
config:
  postMaxBytes: 8192
database:
  blob:
    plugin: badger
    badger:
      block-cache-size: 1048576
`
	cfg, err := LoadConfig(writeConfigFile(t, yamlContent))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.PostMaxBytes != 8192 {
		t.Errorf("expected postMaxBytes 8192, got %d", cfg.PostMaxBytes)
	}
	expected := defaultConfig()
	if cfg.PostMinBytes != expected.PostMinBytes || cfg.DatabasePath != expected.DatabasePath {
		t.Errorf("defaults were overwritten: %+v", cfg)
	}
	if cfg.BlobPlugin != "badger" {
		t.Errorf("expected blob plugin badger, got %s", cfg.BlobPlugin)
	}
}

func TestLoad_UnknownPluginOption(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
database:
  metadata:
    plugin: nonexistent
    nonexistent:
      data-dir: /tmp
`
	if _, err := LoadConfig(writeConfigFile(t, yamlContent)); err == nil {
		t.Fatalf("expected error for unknown plugin")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	resetGlobalConfig()
	t.Setenv("FOLIO_DATABASE_PATH", "/env/path")
	t.Setenv("FOLIO_EXISTENTIAL_DEPOSIT", "42")
	t.Setenv("FOLIO_POST_CACHE_TTL", "1m")
	t.Setenv("FOLIO_DATABASE_METADATA_PLUGIN", "sqlite")
	t.Setenv("FOLIO_TRACING", "true")
	t.Setenv("FOLIO_TRACING_STDOUT", "true")
	cfg, err := LoadConfig(writeConfigFile(t, "databasePath: /file/path\n"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.DatabasePath != "/env/path" {
		t.Errorf("expected env database path, got %s", cfg.DatabasePath)
	}
	if cfg.ExistentialDeposit != 42 {
		t.Errorf("expected existential deposit 42, got %d", cfg.ExistentialDeposit)
	}
	if cfg.PostCacheTTL != time.Minute {
		t.Errorf("expected post cache TTL 1m, got %s", cfg.PostCacheTTL)
	}
	if !cfg.Tracing || !cfg.TracingStdout {
		t.Errorf("expected tracing enabled from env, got %v/%v", cfg.Tracing, cfg.TracingStdout)
	}
}

func TestLoad_InvalidBounds(t *testing.T) {
	resetGlobalConfig()
	yamlContent := "postMinBytes: 100\npostMaxBytes: 100\n"
	if _, err := LoadConfig(writeConfigFile(t, yamlContent)); err == nil {
		t.Fatalf("expected error for inverted bounds")
	}
}

func TestGenesisBalances(t *testing.T) {
	bob := identity.ParticipantFromName("bob")
	cfg := &Config{
		Genesis: map[string]uint64{
			"alice":      10,
			bob.String(): 20,
		},
	}
	balances := cfg.GenesisBalances()
	if balances[identity.ParticipantFromName("alice")] != 10 {
		t.Errorf("alice not resolved by name")
	}
	if balances[bob] != 20 {
		t.Errorf("bob not resolved by id")
	}
}

func TestContext(t *testing.T) {
	cfg := &Config{DatabasePath: "x"}
	ctx := WithContext(context.Background(), cfg)
	if FromContext(ctx) != cfg {
		t.Fatalf("config not carried by context")
	}
	if FromContext(context.Background()) != nil {
		t.Fatalf("expected nil config from empty context")
	}
}
