package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings are the process settings read from the environment
type Settings struct {
	Host       string `env:"HOST" envDefault:"localhost"`
	Port       string `env:"PORT" envDefault:"8080"`
	ConfigFile string `env:"CONFIG_FILE"`

	// Store selects the ledger backend: file, bolt, sqlite or memory
	Store     string `env:"STORE" envDefault:"file"`
	StorePath string `env:"STORE_PATH" envDefault:"data"`
	LedgerKey string `env:"LEDGER_KEY" envDefault:"highScores"`

	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// Addr is host:port
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// LoadDotEnv loads .env files into the environment. Missing files are not
// an error. It reports whether anything was loaded.
func LoadDotEnv(filenames ...string) (bool, error) {
	if err := godotenv.Load(filenames...); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// LoadSettings parses Settings from the environment
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	switch s.Store {
	case "file", "bolt", "sqlite", "memory":
	default:
		return Settings{}, fmt.Errorf("parse env: unknown STORE %q", s.Store)
	}
	return s, nil
}
