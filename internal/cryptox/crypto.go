// Package cryptox implements the content envelope used for objects at rest:
// AES-256-GCM under one process-wide key, framed as
//
//	nonce(16) || tag(16) || ciphertext
//
// The layout is fixed-offset, not length-prefixed. A 16-byte nonce is not
// the usual 96-bit GCM nonce; it is kept for wire compatibility with blobs
// already written in this format.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// NonceSize is the per-envelope random nonce length.
	NonceSize = 16
	// TagSize is the GCM authentication tag length.
	TagSize = 16
	// HeaderSize is the fixed prefix before the ciphertext body.
	HeaderSize = NonceSize + TagSize
)

// Codec encrypts and decrypts envelopes under a single key. The key is
// immutable after construction, so a Codec is safe for concurrent use.
type Codec struct {
	aead  cipher.AEAD
	keyID string
}

// NewCodec builds a Codec over a 256-bit key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != common.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrValidation, common.KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, err
	}

	return &Codec{aead: aead, keyID: KeyFingerprint(key)}, nil
}

// KeyID is a short non-secret fingerprint of the key, safe for logs.
func (c *Codec) KeyID() string {
	return c.keyID
}

// Encrypt seals payload with a fresh random nonce. Nonces come from
// crypto/rand on every call and are never derived or reused.
func (c *Codec) Encrypt(payload []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	// Seal returns body || tag; the envelope wants tag before body.
	sealed := c.aead.Seal(nil, nonce, payload, nil)
	bodyLen := len(sealed) - TagSize

	out := make([]byte, 0, HeaderSize+bodyLen)
	out = append(out, nonce...)
	out = append(out, sealed[bodyLen:]...)
	out = append(out, sealed[:bodyLen]...)

	return out, nil
}

// Decrypt opens an envelope produced by Encrypt. Any authentication failure
// (tampering, truncation, wrong key) yields common.ErrIntegrity and no
// plaintext.
func (c *Codec) Decrypt(envelope []byte) ([]byte, error) {
	if len(envelope) < HeaderSize {
		return nil, fmt.Errorf("%w: envelope too short (%d bytes)", common.ErrIntegrity, len(envelope))
	}

	nonce := envelope[:NonceSize]
	tag := envelope[NonceSize:HeaderSize]
	body := envelope[HeaderSize:]

	sealed := make([]byte, 0, len(body)+TagSize)
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication tag mismatch", common.ErrIntegrity)
	}

	return plaintext, nil
}

// DeriveKey stretches a passphrase into a 256-bit key with Argon2id.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, common.KeySize)
}

// KeyFingerprint returns the first 8 bytes of SHA-256(key), hex-encoded.
func KeyFingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}
