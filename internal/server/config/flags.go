package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/flagx"
)

// parseFlags overlays Config fields from command-line flags.
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-D string   database driver: postgres | sqlite
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-k string   encryption key (64 hex chars or 32 raw chars)
//	-S string   storage driver: fs | s3 | minio
//	-o string   storage directory for fs storage
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-w int      crypto worker count (0 = GOMAXPROCS)
//	-m int      max upload size, bytes
//	-l string   log level
//
// Only these flags are looked at, so -c/-config and anything else in args
// is left alone.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-a", "-D", "-d", "-s", "-t", "-k", "-S", "-o",
		"-u", "-p", "-b", "-g", "-e", "-w", "-m", "-l",
	})

	fs := flag.NewFlagSet("sealvault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver (postgres|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "encryption key")

	fs.StringVar(&config.StorageDriver, "S", config.StorageDriver, "storage driver (fs|s3|minio)")
	fs.StringVar(&config.StorageDir, "o", config.StorageDir, "storage directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.IntVar(&config.CryptoWorkers, "w", config.CryptoWorkers, "crypto workers")
	fs.Int64Var(&config.MaxUploadSize, "m", config.MaxUploadSize, "max upload size in bytes")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	return nil
}
