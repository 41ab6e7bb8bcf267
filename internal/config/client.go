package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// ClientConfig configures the tutorctl command line client.
type ClientConfig struct {
	APIURL      string `env:"TUTORCTL_API_URL" env-default:"http://localhost:8080"`
	SessionFile string `env:"TUTORCTL_SESSION_FILE"`
	Env         string `env:"APP_ENV" env-default:"dev"`
}

// LoadClientConfig reads ./tutorctl.env when it exists, else the process
// environment. The session file defaults to the user config directory.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := cleanenv.ReadConfig("./tutorctl.env", &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		cfg.SessionFile = filepath.Join(dir, "tutorctl", "session.json")
	}
	return &cfg, nil
}
