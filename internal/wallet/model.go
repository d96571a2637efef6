package wallet

import "time"

// Credential is the durable record of one user's managed wallet: the public
// address plus the encrypted key material blob. Address and blob are only
// ever replaced together.
type Credential struct {
	UserID        string
	Address       string
	EncryptedBlob string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Entry is the process-local, decrypted mirror of a Credential handed to
// callers and held by the cache. Material is plaintext key material; entries
// must never be logged.
type Entry struct {
	UserID   string
	Address  string
	Material []byte
}
