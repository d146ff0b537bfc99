package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sealvault/internal/flagx"
	"github.com/dmitrijs2005/sealvault/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Duration fields
// accept "1m" style strings or integer nanoseconds. Absent fields keep
// whatever value the Config already had.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDriver              string         `json:"database_driver"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	EncryptionKey               string         `json:"encryption_key"`
	EncryptionPassphrase        string         `json:"encryption_passphrase"`
	EncryptionSalt              string         `json:"encryption_salt"`
	StorageDriver               string         `json:"storage_driver"`
	StorageDir                  string         `json:"storage_dir"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	CryptoWorkers               int            `json:"crypto_workers"`
	MaxUploadSize               int64          `json:"max_upload_size"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	LogLevel                    string         `json:"log_level"`
	LogFormat                   string         `json:"log_format"`
}

// parseJson overlays values from the file given by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	str(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	str(&config.DatabaseDriver, c.DatabaseDriver)
	str(&config.DatabaseDSN, c.DatabaseDSN)
	str(&config.SecretKey, c.SecretKey)
	str(&config.EncryptionKey, c.EncryptionKey)
	str(&config.EncryptionPassphrase, c.EncryptionPassphrase)
	str(&config.EncryptionSalt, c.EncryptionSalt)
	str(&config.StorageDriver, c.StorageDriver)
	str(&config.StorageDir, c.StorageDir)
	str(&config.S3RootUser, c.S3RootUser)
	str(&config.S3RootPassword, c.S3RootPassword)
	str(&config.S3Bucket, c.S3Bucket)
	str(&config.S3Region, c.S3Region)
	str(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	str(&config.LogLevel, c.LogLevel)
	str(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.CryptoWorkers != 0 {
		config.CryptoWorkers = c.CryptoWorkers
	}
	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}

	return nil
}
