package idempotency

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MinTokenLength is the shortest request token the wallet provider accepts.
const MinTokenLength = 36

// Generator produces unique, non-secret request tokens for the external
// wallet provider's create-address call. Tokens are safe to log.
type Generator struct{}

// NewGenerator builds a token generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Token returns a globally unique token scoped to the given user. The random
// uuid component alone satisfies the provider's 36-character minimum; the
// timestamp and user suffix aid log correlation.
func (g *Generator) Token(userID string) string {
	id := uuid.NewString()
	if len(id) < MinTokenLength {
		// A short uuid means the random-id primitive is broken, not that the
		// request failed. Do not retry.
		panic(fmt.Sprintf("idempotency: uuid %q shorter than %d characters", id, MinTokenLength))
	}
	return fmt.Sprintf("%s-%d-%s", id, time.Now().UnixNano(), userID)
}
