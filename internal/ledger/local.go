package ledger

import (
	"context"
	"errors"
	"fmt"

	"paper-trader-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// tradeRow is the sqlite representation of one trade log entry.
type tradeRow struct {
	ID               uint   `gorm:"primarykey"`
	UserID           string `gorm:"index:idx_user_ts"`
	Key              string `gorm:"uniqueIndex"`
	Kind             string
	AssetSymbol      string
	EntryPrice       float64
	Quantity         float64
	TotalValue       float64
	ResultingBalance float64
	Timestamp        string `gorm:"index:idx_user_ts"`
	Note             string
}

type profileRow struct {
	UserID          string `gorm:"primarykey"`
	Username        string
	Email           string
	RiskTolerance   string
	ExperienceLevel string
	PreferredMarket string
	VirtualBalance  float64
}

type settingsRow struct {
	UserID           string `gorm:"primarykey"`
	SelectedAsset    string
	RiskTolerance    string
	ActiveIndicators string
	TradingWindow    string
	IsActive         bool
}

// Open creates a sqlite-backed database connection and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&tradeRow{}, &profileRow{}, &settingsRow{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return db, nil
}

// LocalStore implements Store on an embedded sqlite database for
// self-hosted deployments. The credential is accepted and ignored:
// in this mode the session layer in front of the store is trusted.
type LocalStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates a Store over an already opened database.
func NewLocalStore(db *gorm.DB, logger *zap.Logger) *LocalStore {
	return &LocalStore{db: db, logger: logger}
}

func (s *LocalStore) TradeLog(ctx context.Context, userID, _ string) ([]models.TradeRecord, error) {
	var rows []tradeRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read trade log: %w", err)
	}

	trades := make([]models.TradeRecord, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, models.TradeRecord{
			Key:              row.Key,
			Kind:             models.Side(row.Kind),
			AssetSymbol:      row.AssetSymbol,
			EntryPrice:       row.EntryPrice,
			Quantity:         row.Quantity,
			TotalValue:       row.TotalValue,
			ResultingBalance: row.ResultingBalance,
			Timestamp:        row.Timestamp,
			Note:             row.Note,
		})
	}
	sortByTimestamp(trades)
	return trades, nil
}

func (s *LocalStore) AppendTrade(ctx context.Context, userID, _ string, rec models.TradeRecord) error {
	row := tradeRow{
		UserID:           userID,
		Key:              uuid.NewString(),
		Kind:             string(rec.Kind),
		AssetSymbol:      rec.AssetSymbol,
		EntryPrice:       rec.EntryPrice,
		Quantity:         rec.Quantity,
		TotalValue:       rec.TotalValue,
		ResultingBalance: rec.ResultingBalance,
		Timestamp:        rec.Timestamp,
		Note:             rec.Note,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append trade: %w", err)
	}
	return nil
}

func (s *LocalStore) ClearTradeLog(ctx context.Context, userID, _ string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&tradeRow{}).Error; err != nil {
		return fmt.Errorf("failed to clear trade log: %w", err)
	}
	return nil
}

func (s *LocalStore) Profile(ctx context.Context, userID, _ string) (*models.UserProfile, error) {
	var row profileRow
	err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	return &models.UserProfile{
		Username:        row.Username,
		Email:           row.Email,
		RiskTolerance:   row.RiskTolerance,
		ExperienceLevel: row.ExperienceLevel,
		PreferredMarket: row.PreferredMarket,
		VirtualBalance:  row.VirtualBalance,
	}, nil
}

func (s *LocalStore) SaveProfile(ctx context.Context, userID, _ string, profile models.UserProfile) error {
	row := profileRow{
		UserID:          userID,
		Username:        profile.Username,
		Email:           profile.Email,
		RiskTolerance:   profile.RiskTolerance,
		ExperienceLevel: profile.ExperienceLevel,
		PreferredMarket: profile.PreferredMarket,
		VirtualBalance:  profile.VirtualBalance,
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *LocalStore) BotSettings(ctx context.Context, userID, _ string) (*models.BotSettings, error) {
	var row settingsRow
	err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bot settings: %w", err)
	}

	return &models.BotSettings{
		SelectedAsset:    row.SelectedAsset,
		RiskTolerance:    row.RiskTolerance,
		ActiveIndicators: row.ActiveIndicators,
		TradingWindow:    row.TradingWindow,
		IsActive:         row.IsActive,
	}, nil
}

func (s *LocalStore) SaveBotSettings(ctx context.Context, userID, _ string, settings models.BotSettings) error {
	row := settingsRow{
		UserID:           userID,
		SelectedAsset:    settings.SelectedAsset,
		RiskTolerance:    settings.RiskTolerance,
		ActiveIndicators: settings.ActiveIndicators,
		TradingWindow:    settings.TradingWindow,
		IsActive:         settings.IsActive,
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save bot settings: %w", err)
	}
	return nil
}
