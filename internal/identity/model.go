package identity

import "time"

// User is the internal record behind a stable external identifier such as a
// phone number or bot account id. The internal id is immutable once assigned.
type User struct {
	ID         string
	ExternalID string
	CreatedAt  time.Time
}
