package driver

import (
	"os"
	"strings"
)

// EnvDriver reads settings from the process environment.
// A KEY_FILE variable takes precedence over KEY, for mounted secrets.
type EnvDriver struct{}

func NewEnvDriver() *EnvDriver {
	return &EnvDriver{}
}

func (d *EnvDriver) GetEnv(key string) string {
	if path := os.Getenv(key + "_FILE"); path != "" {
		if content, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return os.Getenv(key)
}
