package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chatpay/walletvault/internal/idempotency"
	"github.com/chatpay/walletvault/internal/identity"
	"github.com/chatpay/walletvault/internal/logging"
)

// Options steers a GetOrCreate call. Zero value means "read only": return the
// existing credential or ErrNoWallet.
type Options struct {
	// ForceNew requests provisioning when no credential exists. With an
	// existing credential inside the cooldown window the request demotes to a
	// read instead of erroring.
	ForceNew bool
	// ImportMaterial, with ImportAddress, replaces whatever is stored:
	// encrypt-and-persist directly, skipping lookups and the throttle.
	ImportMaterial []byte
	ImportAddress  string
}

// Service orchestrates the credential lifecycle: cache lookup, durable read,
// throttled provisioning against the external provider, persistence, and
// cache population. It is the single source of truth for whether a user has
// a wallet.
type Service struct {
	resolver *identity.Service
	store    *Store
	cache    *Cache
	throttle Throttle
	provider Provider
	tokens   *idempotency.Generator
	network  string
	logger   *slog.Logger
}

// NewService wires the credential service from its collaborators.
func NewService(resolver *identity.Service, store *Store, cache *Cache, throttle Throttle, provider Provider, tokens *idempotency.Generator, network string, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		store:    store,
		cache:    cache,
		throttle: throttle,
		provider: provider,
		tokens:   tokens,
		network:  network,
		logger:   logger,
	}
}

// GetOrCreate returns the user's wallet credential, provisioning or importing
// one according to opts.
func (s *Service) GetOrCreate(ctx context.Context, externalID string, opts Options) (Entry, error) {
	user, err := s.resolver.Resolve(ctx, externalID)
	if err != nil {
		return Entry{}, fmt.Errorf("resolve user: %w", err)
	}

	if len(opts.ImportMaterial) > 0 {
		return s.importCredential(ctx, user, opts)
	}

	if entry, ok := s.cache.Get(user.ID); ok && !opts.ForceNew {
		return entry, nil
	}

	entry, err := s.store.Read(ctx, user.ID)
	switch {
	case err == nil:
		if !opts.ForceNew {
			s.cache.Put(user.ID, entry)
			return entry, nil
		}
	case errors.Is(err, ErrNotFound):
		// fall through to provisioning checks
	default:
		return Entry{}, err
	}

	existing := err == nil

	if !opts.ForceNew {
		return Entry{}, fmt.Errorf("%w: %s", ErrNoWallet, externalID)
	}

	if !s.throttle.Permits(ctx, user.ID) {
		if existing {
			// Re-creation inside the cooldown window is a harmless repeat
			// request: demote to returning what is already stored.
			s.logger.Info("creation throttled, returning existing credential",
				slog.String("user_id", user.ID),
				slog.String("address", entry.Address))
			s.cache.Put(user.ID, entry)
			return entry, nil
		}
		return Entry{}, fmt.Errorf("%w: user %s", ErrThrottled, user.ID)
	}

	return s.provision(ctx, user)
}

// HasWallet reports whether the user has a credential. A row that fails
// decryption still counts: inviting re-creation over a funded wallet would
// mask fund loss.
func (s *Service) HasWallet(ctx context.Context, externalID string) (bool, error) {
	user, err := s.resolver.Resolve(ctx, externalID)
	if err != nil {
		return false, fmt.Errorf("resolve user: %w", err)
	}
	if _, ok := s.cache.Get(user.ID); ok {
		return true, nil
	}
	return s.store.Exists(ctx, user.ID)
}

func (s *Service) provision(ctx context.Context, user identity.User) (Entry, error) {
	s.throttle.Record(ctx, user.ID)

	material := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(material); err != nil {
		return Entry{}, fmt.Errorf("generate key material: %w", err)
	}

	token := s.tokens.Token(user.ID)
	address, err := s.provider.CreateAddress(ctx, material, token, s.network)
	if err != nil {
		if errors.Is(err, ErrProvisioningFailed) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	entry, err := s.store.Write(ctx, user.ID, address, material)
	if err != nil {
		return Entry{}, err
	}

	s.cache.Put(user.ID, entry)
	s.logger.Info("wallet provisioned",
		slog.String("user_id", user.ID),
		slog.String("address", address),
		slog.String("idempotency_token", token),
		slog.String("network", s.network))
	return entry, nil
}

func (s *Service) importCredential(ctx context.Context, user identity.User, opts Options) (Entry, error) {
	if opts.ImportAddress == "" {
		return Entry{}, errors.New("import requires an address")
	}

	// Stale decrypted state must not outlive the row it mirrored.
	s.cache.Invalidate(user.ID)

	entry, err := s.store.Write(ctx, user.ID, opts.ImportAddress, opts.ImportMaterial)
	if err != nil {
		return Entry{}, err
	}

	s.cache.Put(user.ID, entry)
	s.logger.Info("wallet imported",
		slog.String("user_id", user.ID),
		slog.String("address", opts.ImportAddress),
		slog.String("material", logging.RedactSecret(opts.ImportMaterial)))
	return entry, nil
}
