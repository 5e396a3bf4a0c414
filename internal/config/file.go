package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay. Absent keys leave the current value untouched.
type fileConfig struct {
	Addr             *string        `yaml:"addr"`
	Storage          *string        `yaml:"storage"`
	DataDir          *string        `yaml:"data_dir"`
	DSN              *string        `yaml:"dsn"`
	JWTKey           *string        `yaml:"jwt_key"`
	TokenTTL         *time.Duration `yaml:"token_ttl"`
	BcryptCost       *int           `yaml:"bcrypt_cost"`
	LoginMaxFails    *int           `yaml:"login_max_fails"`
	LoginWindow      *time.Duration `yaml:"login_window"`
	LoginBlockFor    *time.Duration `yaml:"login_block_for"`
	ValidateProducts *bool          `yaml:"validate_products"`
	TrustProxy       *bool          `yaml:"trust_proxy"`
	Dev              *bool          `yaml:"dev"`
}

// configPath returns the --config flag value, else CATALOG_CONFIG, else "".
func configPath(args []string, getenv func(string) string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if getenv != nil {
		return getenv(EnvPrefix + "CONFIG")
	}
	return ""
}

// applyFile overlays the YAML file at path onto cfg.
func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.Addr, fc.Addr)
	set(&cfg.Storage, fc.Storage)
	set(&cfg.DataDir, fc.DataDir)
	set(&cfg.DSN, fc.DSN)
	set(&cfg.JWTKey, fc.JWTKey)
	set(&cfg.TokenTTL, fc.TokenTTL)
	set(&cfg.BcryptCost, fc.BcryptCost)
	set(&cfg.LoginMaxFails, fc.LoginMaxFails)
	set(&cfg.LoginWindow, fc.LoginWindow)
	set(&cfg.LoginBlockFor, fc.LoginBlockFor)
	set(&cfg.ValidateProducts, fc.ValidateProducts)
	set(&cfg.TrustProxy, fc.TrustProxy)
	set(&cfg.Dev, fc.Dev)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
