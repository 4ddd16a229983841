package paper

import (
	"context"
	"testing"

	"paper-trader-go/internal/ledger"
	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockMarket is a mock implementation of the MarketData interface.
type MockMarket struct {
	mock.Mock
}

func (m *MockMarket) Route(assetID string) (string, marketdata.Source) {
	args := m.Called(assetID)
	return args.String(0), args.Get(1).(marketdata.Source)
}

func (m *MockMarket) Price(ctx context.Context, assetID string) float64 {
	args := m.Called(assetID)
	return args.Get(0).(float64)
}

func (m *MockMarket) SymbolPrice(ctx context.Context, symbol string) float64 {
	args := m.Called(symbol)
	return args.Get(0).(float64)
}

// MockStore is a mock implementation of the ledger.Store interface, used
// where tests need to inject store failures.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) TradeLog(ctx context.Context, userID, credential string) ([]models.TradeRecord, error) {
	args := m.Called(userID, credential)
	return args.Get(0).([]models.TradeRecord), args.Error(1)
}

func (m *MockStore) AppendTrade(ctx context.Context, userID, credential string, rec models.TradeRecord) error {
	args := m.Called(userID, credential, rec)
	return args.Error(0)
}

func (m *MockStore) ClearTradeLog(ctx context.Context, userID, credential string) error {
	args := m.Called(userID, credential)
	return args.Error(0)
}

func (m *MockStore) Profile(ctx context.Context, userID, credential string) (*models.UserProfile, error) {
	args := m.Called(userID, credential)
	profile, _ := args.Get(0).(*models.UserProfile)
	return profile, args.Error(1)
}

func (m *MockStore) SaveProfile(ctx context.Context, userID, credential string, profile models.UserProfile) error {
	args := m.Called(userID, credential, profile)
	return args.Error(0)
}

func (m *MockStore) BotSettings(ctx context.Context, userID, credential string) (*models.BotSettings, error) {
	args := m.Called(userID, credential)
	settings, _ := args.Get(0).(*models.BotSettings)
	return settings, args.Error(1)
}

func (m *MockStore) SaveBotSettings(ctx context.Context, userID, credential string, settings models.BotSettings) error {
	args := m.Called(userID, credential, settings)
	return args.Error(0)
}

var _ ledger.Store = (*MockStore)(nil)

// setupStore creates an isolated in-memory sqlite store with a
// bootstrapped profile for testUser.
func setupStore(t *testing.T) ledger.Store {
	t.Helper()

	db, err := ledger.Open("file::memory:")
	assert.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := ledger.NewLocalStore(db, zap.NewNop())
	err = NewAccount(zap.NewNop(), store).Bootstrap(context.Background(), testUser, testToken, "trader@example.com", "trader")
	assert.NoError(t, err)

	return store
}

const (
	testUser  = "user-1"
	testToken = "token-1"
)
