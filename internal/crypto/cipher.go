package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the AES-256 key length required by the cipher.
const KeySize = 32

const blobSegments = 3

var (
	// ErrKeyTooShort indicates the configured encryption key is under 32 bytes.
	ErrKeyTooShort = errors.New("encryption key must be at least 32 bytes")

	// ErrTampered indicates a blob failed authentication or cannot be parsed;
	// the ciphertext was modified, truncated, or encrypted under another key.
	ErrTampered = errors.New("credential blob tampered or corrupted")
)

// Cipher performs authenticated encryption of wallet key material using
// AES-256-GCM. Blobs are serialized as three colon-joined base64 segments:
// nonce, authentication tag, ciphertext.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a server-held key. Keys longer than 32 bytes
// are truncated; shorter keys are rejected.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) < KeySize {
		return nil, ErrKeyTooShort
	}

	block, err := aes.NewCipher(key[:KeySize])
	if err != nil {
		return nil, fmt.Errorf("init aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// DeriveFallbackKey deterministically derives a 32-byte key from other server
// secrets via HKDF-SHA256. Used only when the primary encryption key is
// absent or undersized; the result is exactly as strong as the inputs, so
// callers must emit an operational warning when taking this path.
func DeriveFallbackKey(secrets ...string) ([]byte, error) {
	material := strings.Join(secrets, "\x00")
	if material == "" {
		return nil, errors.New("no fallback secrets available for key derivation")
	}

	reader := hkdf.New(sha256.New, []byte(material), []byte("walletvault-credential-key"), nil)
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive fallback key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns the
// serialized blob.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, plaintext, nil)
	// Seal appends the tag after the ciphertext; split so each segment is
	// independently recoverable in the external blob format.
	tagStart := len(sealed) - c.aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(tag),
		base64.StdEncoding.EncodeToString(ciphertext),
	}, ":"), nil
}

// Decrypt parses a blob, verifies its authentication tag, and returns the
// plaintext. Any parse or verification failure reports ErrTampered.
func (c *Cipher) Decrypt(blob string) ([]byte, error) {
	parts := strings.Split(blob, ":")
	if len(parts) != blobSegments {
		return nil, fmt.Errorf("%w: expected %d segments, got %d", ErrTampered, blobSegments, len(parts))
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad nonce encoding", ErrTampered)
	}
	tag, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad tag encoding", ErrTampered)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext encoding", ErrTampered)
	}

	if len(nonce) != c.aead.NonceSize() || len(tag) != c.aead.Overhead() {
		return nil, fmt.Errorf("%w: segment length mismatch", ErrTampered)
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTampered, err)
	}
	return plaintext, nil
}
