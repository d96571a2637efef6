package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chatpay/walletvault/internal/crypto"
	"github.com/chatpay/walletvault/internal/logging"
)

// Store is the persistence layer: it encrypts key material before every
// write and decrypts on every read, so plaintext material never reaches the
// repository.
type Store struct {
	repo   Repository
	cipher *crypto.Cipher
	logger *slog.Logger
}

// NewStore builds a persistence layer over the given repository and cipher.
func NewStore(repo Repository, cipher *crypto.Cipher, logger *slog.Logger) *Store {
	return &Store{repo: repo, cipher: cipher, logger: logger}
}

// Read loads and decrypts the credential for a user. A row that fails
// decryption reports ErrCorruptedCredential, distinct from ErrNotFound: the
// row exists and may guard on-chain funds, so it must never be treated as
// absent.
func (s *Store) Read(ctx context.Context, userID string) (Entry, error) {
	cred, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("read credential for %s: %w", userID, err)
	}

	material, err := s.cipher.Decrypt(cred.EncryptedBlob)
	if err != nil {
		s.logger.Error("stored credential failed decryption, operator review required",
			slog.String("user_id", userID),
			slog.String("address", cred.Address),
			slog.Any("error", err))
		return Entry{}, fmt.Errorf("%w: user %s", ErrCorruptedCredential, userID)
	}

	return Entry{UserID: userID, Address: cred.Address, Material: material}, nil
}

// Exists reports whether a credential row is present for the user without
// decrypting it, so corrupted rows still count.
func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := s.repo.Get(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Write encrypts the material and commits the credential row through the
// repository's write chain, returning the decrypted entry as committed.
func (s *Store) Write(ctx context.Context, userID, address string, material []byte) (Entry, error) {
	blob, err := s.cipher.Encrypt(material)
	if err != nil {
		return Entry{}, fmt.Errorf("encrypt credential for %s: %w", userID, err)
	}

	committed, err := s.repo.Upsert(ctx, Credential{UserID: userID, Address: address, EncryptedBlob: blob})
	if err != nil {
		return Entry{}, err
	}

	s.logger.Info("credential persisted",
		slog.String("user_id", userID),
		slog.String("address", committed.Address),
		slog.String("material", logging.RedactSecret(material)))

	return Entry{UserID: userID, Address: committed.Address, Material: material}, nil
}
