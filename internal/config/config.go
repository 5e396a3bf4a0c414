// Package config handles configuration for the catalog server, layering
// defaults, an optional YAML file, CATALOG_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/and161185/goph-catalog/internal/crypto"
)

// Storage backends.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config holds runtime settings for the catalog server.
type Config struct {
	Addr             string
	Storage          string
	DataDir          string
	DSN              string
	JWTKey           string
	TokenTTL         time.Duration
	BcryptCost       int
	LoginMaxFails    int
	LoginWindow      time.Duration
	LoginBlockFor    time.Duration
	ValidateProducts bool
	TrustProxy       bool
	Dev              bool
}

// LoadDefaults populates Config with development defaults. JWTKey has none.
func (c *Config) LoadDefaults() {
	c.Addr = ":3001"
	c.Storage = StorageFile
	c.DataDir = "./data"
	c.DSN = ""
	c.TokenTTL = time.Hour
	c.BcryptCost = crypto.MinCost
	c.LoginMaxFails = 5
	c.LoginWindow = 15 * time.Minute
	c.LoginBlockFor = 15 * time.Minute
}

// Load builds a Config from defaults, then the YAML file named by --config or
// CATALOG_CONFIG, then the environment (via getenv), then args.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path := configPath(args, getenv); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.JWTKey == "":
		return errors.New("missing jwt signing key (--jwt-key or CATALOG_JWT_KEY)")
	case c.Storage != StorageFile && c.Storage != StoragePostgres:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageFile, StoragePostgres)
	case c.Storage == StorageFile && c.DataDir == "":
		return errors.New("data dir is required for file storage")
	case c.Storage == StoragePostgres && c.DSN == "":
		return errors.New("dsn is required for postgres storage")
	case c.TokenTTL <= 0:
		return errors.New("token ttl must be positive")
	case c.BcryptCost < crypto.MinCost:
		return fmt.Errorf("bcrypt cost must be at least %d", crypto.MinCost)
	}
	return nil
}
