package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR points at an already-running server. When empty the
	// suite starts a full in-process stack on a temporary database instead.
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	// E2E_JWT_SECRET must match the target server's JWT_SECRET.
	JWTSecret string `envconfig:"E2E_JWT_SECRET" default:"e2e-secret"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool          `envconfig:"E2E_COLOURS" default:"true"`
	Timeout time.Duration `envconfig:"E2E_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
