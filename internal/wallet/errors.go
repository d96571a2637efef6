package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates no credential row exists for the user.
	ErrNotFound = errors.New("credential not found")

	// ErrNoWallet indicates the user has no wallet and creation was not
	// requested. Recoverable: the caller should prompt the user to create one.
	ErrNoWallet = errors.New("no wallet for user")

	// ErrCorruptedCredential indicates a stored blob failed decryption or tag
	// verification. Requires manual remediation; never regenerate the wallet,
	// that would orphan funds held at the existing address.
	ErrCorruptedCredential = errors.New("credential corrupted")

	// ErrThrottled indicates a creation attempt landed inside the cooldown
	// window with no existing credential to fall back on.
	ErrThrottled = errors.New("wallet creation throttled")

	// ErrProvisioningFailed indicates the external wallet provider rejected or
	// failed the create-address call. Retryable; no credential state changed.
	ErrProvisioningFailed = errors.New("wallet provisioning failed")
)

// ExhaustedError reports that every write strategy in the persistence chain
// failed, carrying each attempt's reason for operability. The caller must
// assume nothing was committed.
type ExhaustedError struct {
	Attempts []AttemptFailure
}

// AttemptFailure records one strategy's failure.
type AttemptFailure struct {
	Strategy string
	Err      error
}

func (e *ExhaustedError) Error() string {
	reasons := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		reasons = append(reasons, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return "all write strategies exhausted: " + strings.Join(reasons, "; ")
}

// Postgres error classes that signal an access-policy rejection rather than a
// generic failure: insufficient_privilege and invalid_authorization_specification.
const (
	pgInsufficientPrivilege = "42501"
	pgInvalidAuthorization  = "28000"
)

// isAccessPolicyErr classifies a write failure as an access-policy rejection
// using the datastore's typed error codes, never message substrings.
func isAccessPolicyErr(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgInsufficientPrivilege || pgErr.Code == pgInvalidAuthorization
}
