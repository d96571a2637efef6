package wallet

import (
	"context"
	"log/slog"
	"time"
)

// writeStrategy is one alternative path for committing a credential row.
// Strategies are tried in order until one succeeds; each returns the row as
// committed so the caller never has to guess what landed.
type writeStrategy interface {
	Name() string
	Write(ctx context.Context, cred Credential) (Credential, error)
}

// runWriteChain executes the strategies in order under a per-attempt timeout.
// Any failure, including a timeout, advances to the next strategy. When every
// strategy has failed the chain reports an *ExhaustedError carrying each
// attempt's reason, and the caller must assume nothing was committed.
func runWriteChain(ctx context.Context, strategies []writeStrategy, cred Credential, timeout time.Duration, logger *slog.Logger) (Credential, error) {
	attempts := make([]AttemptFailure, 0, len(strategies))

	for _, strategy := range strategies {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		}

		committed, err := strategy.Write(attemptCtx, cred)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			if len(attempts) > 0 {
				logger.Info("credential write recovered by fallback strategy",
					slog.String("strategy", strategy.Name()),
					slog.Int("failed_attempts", len(attempts)))
			}
			return committed, nil
		}

		attempts = append(attempts, AttemptFailure{Strategy: strategy.Name(), Err: err})
		logger.Warn("credential write strategy failed",
			slog.String("strategy", strategy.Name()),
			slog.Bool("access_policy", isAccessPolicyErr(err)),
			slog.Any("error", err))
	}

	return Credential{}, &ExhaustedError{Attempts: attempts}
}
