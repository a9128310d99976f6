package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/storyloom/storyloom/internal/providers"
)

// LoadEnv copies variables from .env files into the process environment.
// Files are read from the working directory first, then from DataDir().
// Variables already set in the environment are never overwritten.
func LoadEnv() error {
	for _, name := range []string{".env", filepath.Join(DataDir(), ".env")} {
		values, err := godotenv.Read(name)
		if err != nil {
			continue
		}
		for k, v := range values {
			if _, exists := os.LookupEnv(k); !exists {
				if err := os.Setenv(k, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ApplyEnv fills empty provider API keys from each provider's environment
// variable. Keys present in the config file win.
func (c *Config) ApplyEnv() {
	for _, spec := range providers.PROVIDERS {
		if spec.EnvKey == "" {
			continue
		}
		p := c.ProviderByName(spec.Name)
		if p == nil || p.APIKey != "" {
			continue
		}
		p.APIKey = os.Getenv(spec.EnvKey)
	}
}
