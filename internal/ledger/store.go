package ledger

import (
	"context"
	"errors"
	"sort"

	"paper-trader-go/internal/models"
)

// ErrProfileNotFound is returned when a user has no profile record.
// It is distinct from a transport or store failure: callers must never
// treat an unreadable store as an absent (or empty) record.
var ErrProfileNotFound = errors.New("ledger: profile not found")

// Store is the ledger collaborator contract: an append-only per-user trade
// log plus per-user profile and bot-settings records. Every call forwards
// an opaque per-request credential scoped to the authenticated user; the
// store enforces it, this layer only carries it.
type Store interface {
	// TradeLog returns all trade records for a user sorted by timestamp,
	// or an empty slice when the user has no history yet.
	TradeLog(ctx context.Context, userID, credential string) ([]models.TradeRecord, error)

	// AppendTrade stores one record under a freshly generated unique key.
	// Existing records are never overwritten.
	AppendTrade(ctx context.Context, userID, credential string, rec models.TradeRecord) error

	// ClearTradeLog removes every trade record for a user.
	ClearTradeLog(ctx context.Context, userID, credential string) error

	// Profile returns the user's profile, or ErrProfileNotFound.
	Profile(ctx context.Context, userID, credential string) (*models.UserProfile, error)

	// SaveProfile replaces the whole profile record. Callers merge first.
	SaveProfile(ctx context.Context, userID, credential string, profile models.UserProfile) error

	// BotSettings returns the user's bot settings, or nil when none exist.
	BotSettings(ctx context.Context, userID, credential string) (*models.BotSettings, error)

	// SaveBotSettings replaces the whole bot-settings record.
	SaveBotSettings(ctx context.Context, userID, credential string, settings models.BotSettings) error
}

// sortByTimestamp orders trades chronologically. The replay logic in the
// paper package requires this ordering; implementations call it before
// returning a log in case the backend does not guarantee retrieval order.
func sortByTimestamp(trades []models.TradeRecord) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})
}
