package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sealvault/internal/common"
	sc "github.com/dmitrijs2005/sealvault/internal/server/config"
)

// New builds the blob store selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *sc.Config) (Storage, error) {
	opts := S3Options{
		AccessKey:    cfg.S3RootUser,
		SecretKey:    cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	}

	switch cfg.StorageDriver {
	case sc.StorageFS:
		return NewFSStorage(cfg.StorageDir)
	case sc.StorageS3:
		return NewS3Storage(ctx, opts)
	case sc.StorageMinio:
		return NewMinioStorage(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", common.ErrValidation, cfg.StorageDriver)
	}
}
