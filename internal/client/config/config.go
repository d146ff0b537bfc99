package config

import (
	"os"
	"time"
)

// EnvAccessToken names the environment variable holding the access token.
const EnvAccessToken = "SEALVAULT_TOKEN"

// Config holds runtime settings for the sealvault CLI.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 30 * time.Second
}

// Load applies defaults, the JSON file named in args, the environment and
// then flags in args.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if getenv != nil {
		if v := getenv(EnvAccessToken); v != "" {
			cfg.AccessToken = v
		}
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.Getenv)
}
