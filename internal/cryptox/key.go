package cryptox

import (
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/sealvault/internal/common"
)

// minSaltSize is the shortest salt accepted for passphrase derivation.
const minSaltSize = 8

// KeySource describes where the content key comes from. The first
// non-empty option wins: Key, then Passphrase+Salt.
type KeySource struct {
	// Key is either 64 hex characters or exactly 32 raw characters.
	Key string
	// Passphrase is stretched with Argon2id using Salt.
	Passphrase string
	Salt       string
}

// LoadKey resolves the content key from src. When no source is configured a
// random key is generated and ephemeral is true: such a key is lost on
// restart, and every object encrypted under it becomes unrecoverable.
// Callers must surface that as a warning.
func LoadKey(src KeySource) (key []byte, ephemeral bool, err error) {
	switch {
	case src.Key != "":
		key, err = parseKey(src.Key)
		return key, false, err

	case src.Passphrase != "":
		if len(src.Salt) < minSaltSize {
			return nil, false, fmt.Errorf("%w: salt must be at least %d bytes", common.ErrValidation, minSaltSize)
		}
		return DeriveKey([]byte(src.Passphrase), []byte(src.Salt)), false, nil

	default:
		return common.GenerateRandByteArray(common.KeySize), true, nil
	}
}

func parseKey(s string) ([]byte, error) {
	if len(s) == hex.EncodedLen(common.KeySize) {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}

	if len(s) == common.KeySize {
		return []byte(s), nil
	}

	return nil, fmt.Errorf("%w: encryption key must be %d hex characters or %d raw characters",
		common.ErrValidation, hex.EncodedLen(common.KeySize), common.KeySize)
}
