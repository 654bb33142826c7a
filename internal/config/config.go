// Package config loads ~/.reti/config.yaml and applies .env and environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for reti.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Parser  ParserConfig  `yaml:"parser"`
	Log     LogConfig     `yaml:"log"`
	Outlook OutlookConfig `yaml:"outlook"`
	// Editor is the command used by "reti edit". Empty falls back to $EDITOR.
	Editor string `yaml:"editor"`
}

type StoreConfig struct {
	// File is the data file. Empty selects ~/.reti/times.json or
	// ~/.reti/times.db depending on Backend.
	File    string `yaml:"file"`
	Backend string `yaml:"backend"`
	// Pretty writes indented JSON.
	Pretty bool `yaml:"pretty"`
}

type ParserConfig struct {
	// Strict rejects lines with any token that does not follow the grammar.
	Strict bool `yaml:"strict"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar import settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `yaml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `yaml:"client_id"`
	// Factor is the pay-rate factor given to imported meetings. Zero leaves
	// the factor unset.
	Factor float64 `yaml:"factor"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = local.
	Timezone string `yaml:"timezone"`
}

const (
	DefaultBackend  = "json"
	DefaultLogLevel = "info"
	DefaultEditor   = "vi"
	// DefaultTenantID is the Microsoft "common" tenant.
	DefaultTenantID = "common"
	// DefaultClientID is the public Azure CLI app ID, usable with the device
	// code flow without an app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
)

// Environment variables that override the file.
const (
	EnvFile     = "RETI_FILE"
	EnvBackend  = "RETI_BACKEND"
	EnvStrict   = "RETI_STRICT"
	EnvLogLevel = "RETI_LOG_LEVEL"
	EnvEditor   = "EDITOR"
)

func Default() Config {
	return Config{
		Store:   StoreConfig{Backend: DefaultBackend},
		Log:     LogConfig{Level: DefaultLogLevel},
		Outlook: OutlookConfig{TenantID: DefaultTenantID, ClientID: DefaultClientID},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# reti configuration - ~/.reti/config.yaml
#
# All settings are optional; the defaults below work out of the box.
# Environment variables (also read from a .env file) override this file:
# RETI_FILE, RETI_BACKEND, RETI_STRICT, RETI_LOG_LEVEL and EDITOR.

store:
  # Data file. Empty means ~/.reti/times.json (json) or ~/.reti/times.db (sqlite).
  file: ""
  # json or sqlite
  backend: json
  # Write indented JSON (same as --save-pretty).
  pretty: false

parser:
  # Reject a whole line when any token does not follow the grammar.
  # The default skips such tokens and assumes factor 1 when it is malformed.
  strict: false

log:
  # debug, info, warn or error
  level: info

# Editor for "reti edit". Empty uses $EDITOR, then vi.
editor: ""

outlook:
  # Azure AD tenant ID: "common" or your organisation's tenant GUID.
  tenant_id: common
  # Azure application (client) ID for the device code flow. The default is
  # the public Azure CLI app, no app registration needed.
  client_id: 04b07795-8542-4c4a-95af-30b2c573d5ab
  # Factor given to imported meetings; 0 leaves it unset (rate 1).
  factor: 0
  # IANA timezone for event times, e.g. "Europe/Berlin". Empty uses local time.
  timezone: ""
`

// DefaultPath returns ~/.reti/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".reti", "config.yaml"), nil
}

// Load reads the config at path. An empty path selects DefaultPath, which is
// created from an annotated template on first run. Environment overrides are
// applied last.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	cfg.Store.File = expandHome(cfg.Store.File)
	return cfg, nil
}

// LoadDotEnv reads a .env file from the working directory if there is one.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvFile); v != "" {
		c.Store.File = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvStrict); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvStrict, v, err)
		}
		c.Parser.Strict = b
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if c.Editor == "" {
		c.Editor = os.Getenv(EnvEditor)
	}
	return nil
}

// fillDefaults replaces zero-value fields so a partially filled file still
// yields a usable Config.
func (c *Config) fillDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Editor == "" {
		c.Editor = DefaultEditor
	}
	if c.Outlook.TenantID == "" {
		c.Outlook.TenantID = DefaultTenantID
	}
	if c.Outlook.ClientID == "" {
		c.Outlook.ClientID = DefaultClientID
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.Store.Backend) {
	case "json", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("invalid store backend '%s': must be json or sqlite", c.Store.Backend))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.Log.Level))
	}

	if c.Outlook.Factor < 0 {
		problems = append(problems, fmt.Sprintf("invalid outlook factor %v: must not be negative", c.Outlook.Factor))
	}
	if c.Outlook.Timezone != "" {
		if _, err := time.LoadLocation(c.Outlook.Timezone); err != nil {
			problems = append(problems, fmt.Sprintf("invalid outlook timezone '%s': %v", c.Outlook.Timezone, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
