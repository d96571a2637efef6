package wallet

import "context"

// Repository persists credential rows with encrypted key material. Upsert
// must guarantee at most one row per user even when writers race: the row is
// replaced whole, last writer wins.
type Repository interface {
	Get(ctx context.Context, userID string) (Credential, error)
	Upsert(ctx context.Context, cred Credential) (Credential, error)
}
