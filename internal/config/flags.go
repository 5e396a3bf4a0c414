package config

import (
	"github.com/spf13/pflag"
)

// parseFlags overlays command-line flags onto cfg. Flags left unset keep the
// value already in cfg, so defaults and environment survive.
//
// Supported flags:
//
//	--config string            YAML config file (read before the environment)
//	--addr string              listen address (":3001")
//	--storage string           file | postgres
//	--data-dir string          directory holding users.json and products.json
//	--dsn string               PostgreSQL DSN
//	--jwt-key string           HS256 signing key
//	--token-ttl duration       access token lifetime
//	--bcrypt-cost int          bcrypt work factor (>= 10)
//	--login-max-fails int      failed logins before a temporary block (0 disables)
//	--login-window duration    failures older than this are forgotten
//	--login-block-for duration block length
//	--validate-products        reject empty names and negative price or quantity
//	--trust-proxy              take the client address from X-Forwarded-For/X-Real-IP
//	--dev                      development logging
func parseFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("catalog-server", pflag.ContinueOnError)

	var path string
	fs.StringVar(&path, "config", "", "YAML config file")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend: file or postgres")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory for file storage")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTKey, "jwt-key", cfg.JWTKey, "HS256 signing key (required)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "access token TTL")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt cost")
	fs.IntVar(&cfg.LoginMaxFails, "login-max-fails", cfg.LoginMaxFails, "failed logins before block (0 disables)")
	fs.DurationVar(&cfg.LoginWindow, "login-window", cfg.LoginWindow, "failure counting window")
	fs.DurationVar(&cfg.LoginBlockFor, "login-block-for", cfg.LoginBlockFor, "block duration")
	fs.BoolVar(&cfg.ValidateProducts, "validate-products", cfg.ValidateProducts, "validate product fields")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "trust X-Forwarded-For and X-Real-IP (only behind a proxy)")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "development logging")

	return fs.Parse(args)
}
