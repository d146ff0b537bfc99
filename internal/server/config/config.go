// Package config handles configuration for the sealvault server:
// defaults, an optional JSON file, environment secrets and command-line
// flags, applied in that order.
package config

import (
	"os"
	"time"
)

// Storage and database driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageFS    = "fs"
	StorageS3    = "s3"
	StorageMinio = "minio"
)

// Config holds runtime settings for the server.
//
// Encryption key material is resolved by cryptox.LoadKey: EncryptionKey
// wins, then EncryptionPassphrase with EncryptionSalt. With neither set the
// server runs with an ephemeral key and says so loudly at startup.
type Config struct {
	EndpointAddrGRPC string

	DatabaseDriver string
	DatabaseDSN    string

	// SecretKey is the HS256 secret access tokens are verified with.
	SecretKey                   string
	AccessTokenValidityDuration time.Duration

	EncryptionKey        string
	EncryptionPassphrase string
	EncryptionSalt       string

	StorageDriver  string
	StorageDir     string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	CryptoWorkers   int
	MaxUploadSize   int64
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key default is insecure and must be overridden in prod.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "file:sealvault.db?_pragma=busy_timeout(5000)"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.StorageDriver = StorageFS
	c.StorageDir = "data"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "sealvault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.CryptoWorkers = 0
	c.MaxUploadSize = 100 << 20
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Load builds a Config from defaults, then the JSON file named by -c/-config
// in args, then the environment, then flags in args.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg, getenv)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.Getenv)
}
