package config

// Environment variables read for secrets. Secrets are kept out of flags so
// they do not show up in process listings.
const (
	EnvEncryptionKey        = "SEALVAULT_ENCRYPTION_KEY"
	EnvEncryptionPassphrase = "SEALVAULT_ENCRYPTION_PASSPHRASE"
	EnvEncryptionSalt       = "SEALVAULT_ENCRYPTION_SALT"
	EnvSecretKey            = "SEALVAULT_SECRET_KEY"
	EnvDatabaseDSN          = "SEALVAULT_DATABASE_DSN"
)

func parseEnv(config *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}

	overlay := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	overlay(&config.EncryptionKey, EnvEncryptionKey)
	overlay(&config.EncryptionPassphrase, EnvEncryptionPassphrase)
	overlay(&config.EncryptionSalt, EnvEncryptionSalt)
	overlay(&config.SecretKey, EnvSecretKey)
	overlay(&config.DatabaseDSN, EnvDatabaseDSN)
}
