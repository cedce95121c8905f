package service

import (
	"github.com/paper-trader/internal/config"
	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/pkg/crypto"
	"github.com/shopspring/decimal"
)

// AccountService manages per-user settings and exchange credentials
type AccountService struct {
	settingsRepo *repository.SettingsRepository
	encryption   config.EncryptionConfig
}

// NewAccountService creates a new AccountService
func NewAccountService(settingsRepo *repository.SettingsRepository, encryption config.EncryptionConfig) *AccountService {
	return &AccountService{
		settingsRepo: settingsRepo,
		encryption:   encryption,
	}
}

// UpdateSettingsRequest carries the mutable settings fields. Pointer
// fields are applied only when present.
type UpdateSettingsRequest struct {
	ExchangeAPIKey     *string          `json:"exchange_api_key,omitempty"`
	ExchangeAPISecret  *string          `json:"exchange_api_secret,omitempty"`
	UseTestnet         *bool            `json:"use_testnet,omitempty"`
	PaperTradingMode   *bool            `json:"paper_trading_mode,omitempty"`
	AutoTradingEnabled *bool            `json:"auto_trading_enabled,omitempty"`
	DefaultTradeAmount *decimal.Decimal `json:"default_trade_amount,omitempty"`
	RiskPercentage     *decimal.Decimal `json:"risk_percentage,omitempty"`
}

// EnsureSettings provisions default settings for the user if missing
func (s *AccountService) EnsureSettings(userID uint) error {
	return s.settingsRepo.EnsureExists(userID)
}

// GetSettings returns the user's settings
func (s *AccountService) GetSettings(userID uint) (*models.UserSettings, error) {
	return s.settingsRepo.GetByUserID(userID)
}

// UpdateSettings applies the provided fields. Exchange credentials are
// encrypted at rest.
func (s *AccountService) UpdateSettings(userID uint, req *UpdateSettingsRequest) (*models.UserSettings, error) {
	settings, err := s.settingsRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if req.ExchangeAPIKey != nil {
		encrypted, err := crypto.EncryptAES(*req.ExchangeAPIKey, s.encryption.AESKey)
		if err != nil {
			return nil, err
		}
		settings.ExchangeAPIKeyEncrypted = encrypted
	}
	if req.ExchangeAPISecret != nil {
		encrypted, err := crypto.EncryptAES(*req.ExchangeAPISecret, s.encryption.AESKey)
		if err != nil {
			return nil, err
		}
		settings.ExchangeAPISecretEncrypted = encrypted
	}
	if req.UseTestnet != nil {
		settings.UseTestnet = *req.UseTestnet
	}
	if req.PaperTradingMode != nil {
		settings.PaperTradingMode = *req.PaperTradingMode
	}
	if req.AutoTradingEnabled != nil {
		settings.AutoTradingEnabled = *req.AutoTradingEnabled
	}
	if req.DefaultTradeAmount != nil {
		settings.DefaultTradeAmount = *req.DefaultTradeAmount
	}
	if req.RiskPercentage != nil {
		settings.RiskPercentage = *req.RiskPercentage
	}

	if err := s.settingsRepo.Update(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// DecryptAPIKey returns the plaintext exchange API key, or empty when
// no key is stored.
func (s *AccountService) DecryptAPIKey(settings *models.UserSettings) (string, error) {
	if settings.ExchangeAPIKeyEncrypted == "" {
		return "", nil
	}
	return crypto.DecryptAES(settings.ExchangeAPIKeyEncrypted, s.encryption.AESKey)
}
