// Package config loads gateway configuration from an optional YAML file
// with environment-variable overrides. Environment always wins.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the process-level configuration, fixed at startup.
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	OAuth   OAuthConfig   `yaml:"oauth"`
	Storage StorageConfig `yaml:"storage"`
	GA4     GA4Config     `yaml:"ga4"`
}

// OAuthConfig is the Google OAuth client registration.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// StorageConfig selects and parameterizes the token store backend.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // file | sqlite | memory
	Key      string `yaml:"key"`
	FilePath string `yaml:"file_path"`
	DBPath   string `yaml:"db_path"`
}

// GA4Config binds the analytics routes to one property.
type GA4Config struct {
	PropertyID string `yaml:"property_id"`
	Enabled    *bool  `yaml:"enabled"`
}

// Load reads path (skipped when empty or missing) and applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	overrideEnv(&cfg.Host, "HOST")
	overrideEnv(&cfg.Port, "PORT")
	overrideEnv(&cfg.OAuth.ClientID, "GOOGLE_CLIENT_ID")
	overrideEnv(&cfg.OAuth.ClientSecret, "GOOGLE_CLIENT_SECRET")
	overrideEnv(&cfg.OAuth.RedirectURL, "GOOGLE_REDIRECT_URI")
	overrideEnv(&cfg.Storage.Backend, "TOKEN_STORAGE")
	overrideEnv(&cfg.Storage.Key, "TOKEN_STORAGE_KEY")
	overrideEnv(&cfg.Storage.FilePath, "TOKEN_FILE_PATH")
	overrideEnv(&cfg.Storage.DBPath, "TOKEN_DB_PATH")
	overrideEnv(&cfg.GA4.PropertyID, "GA4_PROPERTY_ID")

	cfg.applyDefaults()
	return cfg, nil
}

func overrideEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.OAuth.RedirectURL == "" {
		c.OAuth.RedirectURL = fmt.Sprintf("http://localhost:%s/api/auth/callback", c.Port)
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "default"
	}
	if c.Storage.FilePath == "" {
		c.Storage.FilePath = "./tokens.json"
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "./gateway.db"
	}
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// GA4Enabled reports whether the analytics routes should be served. Default
// is on whenever a property id is configured.
func (c *Config) GA4Enabled() bool {
	if c.GA4.Enabled != nil {
		return *c.GA4.Enabled
	}
	return c.GA4.PropertyID != ""
}

// Validate reports missing OAuth credentials. The server still starts
// without them so the debug endpoint can diagnose the deployment, but no
// authorization flow will succeed.
func (c *Config) Validate() error {
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		return fmt.Errorf("config: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}
	return nil
}
