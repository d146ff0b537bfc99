package config

import (
	"fmt"

	"github.com/dmitrijs2005/sealvault/internal/common"
)

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown database driver %q", common.ErrValidation, c.DatabaseDriver)
	}

	switch c.StorageDriver {
	case StorageFS:
		if c.StorageDir == "" {
			return fmt.Errorf("%w: storage dir is required for fs storage", common.ErrValidation)
		}
	case StorageS3, StorageMinio:
		if c.S3Bucket == "" || c.S3BaseEndpoint == "" {
			return fmt.Errorf("%w: bucket and endpoint are required for %s storage", common.ErrValidation, c.StorageDriver)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", common.ErrValidation, c.StorageDriver)
	}

	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key is required", common.ErrValidation)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("%w: max upload size must be positive", common.ErrValidation)
	}
	if c.CryptoWorkers < 0 {
		return fmt.Errorf("%w: crypto workers must not be negative", common.ErrValidation)
	}
	return nil
}
