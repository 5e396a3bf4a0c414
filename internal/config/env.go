package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CATALOG_"

// applyEnv overlays non-empty CATALOG_* variables onto cfg.
func applyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	get := func(name string) string { return getenv(EnvPrefix + name) }

	setString(&cfg.Addr, get("ADDR"))
	setString(&cfg.Storage, get("STORAGE"))
	setString(&cfg.DataDir, get("DATA_DIR"))
	setString(&cfg.DSN, get("DSN"))
	setString(&cfg.JWTKey, get("JWT_KEY"))

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"TOKEN_TTL", &cfg.TokenTTL},
		{"LOGIN_WINDOW", &cfg.LoginWindow},
		{"LOGIN_BLOCK_FOR", &cfg.LoginBlockFor},
	}
	for _, d := range durations {
		if v := get(d.name); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, d.name, err)
			}
			*d.dst = parsed
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"BCRYPT_COST", &cfg.BcryptCost},
		{"LOGIN_MAX_FAILS", &cfg.LoginMaxFails},
	}
	for _, n := range ints {
		if v := get(n.name); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, n.name, err)
			}
			*n.dst = parsed
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"VALIDATE_PRODUCTS", &cfg.ValidateProducts},
		{"TRUST_PROXY", &cfg.TrustProxy},
		{"DEV", &cfg.Dev},
	}
	for _, b := range bools {
		if v := get(b.name); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
			}
			*b.dst = parsed
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
