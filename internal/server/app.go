// Package server wires configuration, persistence, blob storage, crypto
// and the gRPC transport into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/sealvault/internal/cryptox"
	"github.com/dmitrijs2005/sealvault/internal/logging"
	"github.com/dmitrijs2005/sealvault/internal/server/config"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sealvault/internal/server/services"
	"github.com/dmitrijs2005/sealvault/internal/server/storage"

	gs "github.com/dmitrijs2005/sealvault/internal/server/grpc"
)

// envelopeOverhead is the room left on top of MaxUploadSize for base64
// encoding of content in JSON messages plus the surrounding fields.
const envelopeOverhead = 1 << 20

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	objects *services.ObjectService
}

// NewApp builds every dependency of the server. A missing encryption key is
// not fatal: a random key is used and a warning is logged.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	key, ephemeral, err := cryptox.LoadKey(cryptox.KeySource{
		Key:        c.EncryptionKey,
		Passphrase: c.EncryptionPassphrase,
		Salt:       c.EncryptionSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	codec, err := cryptox.NewCodec(key)
	if err != nil {
		return nil, fmt.Errorf("codec init error: %w", err)
	}
	if ephemeral {
		logger.Warn(ctx, "no encryption key configured, using an ephemeral key; stored objects will be unreadable after restart",
			"key_id", codec.KeyID())
	}

	db, rm, err := repomanager.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := storage.New(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	objects := services.NewObjectService(db, rm, blobs, codec, c, logger)

	logger.Info(ctx, "app initialized",
		"db_driver", c.DatabaseDriver, "storage_driver", c.StorageDriver, "key_id", codec.KeyID())

	return &App{config: c, logger: logger, db: db, objects: objects}, nil
}

func (app *App) maxMsgSize() int {
	return int(app.config.MaxUploadSize*4/3) + envelopeOverhead
}

// Run serves gRPC until SIGINT, SIGTERM or SIGQUIT, or until ctx is done.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "error closing database", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.objects, app.config.SecretKey, app.maxMsgSize()).
		WithShutdownTimeout(app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		return err
	}

	app.logger.Info(context.Background(), "app stopped")
	return nil
}
