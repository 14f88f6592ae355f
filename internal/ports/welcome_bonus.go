package ports

import "context"

// WelcomeBonusPort grants the starting chip stack at most once per user.
type WelcomeBonusPort interface {
	// GrantWelcomeBonusOnce attempts to grant a one-time starting stack.
	// Returns granted=false when the stack was already granted.
	GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error)
}
