package ledger

import (
	"context"
	"fmt"
	"time"

	"paper-trader-go/internal/config"
	"paper-trader-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RTDBStore implements Store against a hosted hierarchical keyed store
// exposed over HTTP (Firebase-RTDB style). Records live under
// /trade_log/<user>, /users/<user> and /bot_settings/<user>; the
// per-request credential travels as the auth query parameter and is
// enforced server-side by the store's security rules.
type RTDBStore struct {
	client *resty.Client
	logger *zap.Logger
}

var _ Store = (*RTDBStore)(nil)

// NewRTDBStore creates a Store over the configured base URL.
func NewRTDBStore(cfg *config.Ledger, logger *zap.Logger) *RTDBStore {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(5 * time.Second)

	return &RTDBStore{client: client, logger: logger}
}

func (s *RTDBStore) TradeLog(ctx context.Context, userID, credential string) ([]models.TradeRecord, error) {
	// Keyed mapping of push-id -> record; null when the user has no history.
	var raw map[string]models.TradeRecord

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("auth", credential).
		SetResult(&raw).
		Get(fmt.Sprintf("/trade_log/%s.json", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read trade log: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to read trade log: status %s", resp.Status())
	}

	trades := make([]models.TradeRecord, 0, len(raw))
	for key, rec := range raw {
		rec.Key = key
		trades = append(trades, rec)
	}
	sortByTimestamp(trades)
	return trades, nil
}

func (s *RTDBStore) AppendTrade(ctx context.Context, userID, credential string, rec models.TradeRecord) error {
	// POST has push semantics: the store mints a fresh unique key, so an
	// existing record can never be overwritten.
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("auth", credential).
		SetBody(rec).
		Post(fmt.Sprintf("/trade_log/%s.json", userID))
	if err != nil {
		return fmt.Errorf("failed to append trade: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to append trade: status %s", resp.Status())
	}
	return nil
}

func (s *RTDBStore) ClearTradeLog(ctx context.Context, userID, credential string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("auth", credential).
		Delete(fmt.Sprintf("/trade_log/%s.json", userID))
	if err != nil {
		return fmt.Errorf("failed to clear trade log: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to clear trade log: status %s", resp.Status())
	}
	return nil
}

func (s *RTDBStore) Profile(ctx context.Context, userID, credential string) (*models.UserProfile, error) {
	var profile *models.UserProfile

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("auth", credential).
		SetResult(&profile).
		Get(fmt.Sprintf("/users/%s.json", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to read profile: status %s", resp.Status())
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *RTDBStore) SaveProfile(ctx context.Context, userID, credential string, profile models.UserProfile) error {
	// PUT replaces the whole record; callers merge before saving.
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("auth", credential).
		SetBody(profile).
		Put(fmt.Sprintf("/users/%s.json", userID))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to save profile: status %s", resp.Status())
	}
	return nil
}

func (s *RTDBStore) BotSettings(ctx context.Context, userID, credential string) (*models.BotSettings, error) {
	var settings *models.BotSettings

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("auth", credential).
		SetResult(&settings).
		Get(fmt.Sprintf("/bot_settings/%s.json", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read bot settings: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to read bot settings: status %s", resp.Status())
	}
	return settings, nil
}

func (s *RTDBStore) SaveBotSettings(ctx context.Context, userID, credential string, settings models.BotSettings) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("auth", credential).
		SetBody(settings).
		Put(fmt.Sprintf("/bot_settings/%s.json", userID))
	if err != nil {
		return fmt.Errorf("failed to save bot settings: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to save bot settings: status %s", resp.Status())
	}
	return nil
}
