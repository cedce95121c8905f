package repository

import (
	"errors"

	"github.com/paper-trader/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSettingsNotFound = errors.New("user settings not found")
)

// SettingsRepository handles user settings data access
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *SettingsRepository) WithTx(tx *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: tx}
}

// EnsureExists inserts default settings for the user unless a row
// already exists. The unique index on user_id makes this safe under
// concurrent registration.
func (r *SettingsRepository) EnsureExists(userID uint) error {
	settings := models.UserSettings{
		UserID:           userID,
		UseTestnet:       true,
		PaperTradingMode: true,
		PaperBalanceUSDT: models.DefaultPaperBalance,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&settings).Error
}

// GetByUserID retrieves settings for a user
func (r *SettingsRepository) GetByUserID(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	result := r.db.Where("user_id = ?", userID).First(&settings)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, result.Error
	}
	return &settings, nil
}

// GetByUserIDForUpdate retrieves settings for a user holding a row lock.
// SQLite has no SELECT FOR UPDATE so the lock is only requested on
// Postgres, where it serializes concurrent balance updates.
func (r *SettingsRepository) GetByUserIDForUpdate(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	query := r.db
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	result := query.Where("user_id = ?", userID).First(&settings)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, result.Error
	}
	return &settings, nil
}

// Update updates user settings
func (r *SettingsRepository) Update(settings *models.UserSettings) error {
	return r.db.Save(settings).Error
}

// UpdateBalance sets the paper balance for a user
func (r *SettingsRepository) UpdateBalance(userID uint, balance string) error {
	return r.db.Model(&models.UserSettings{}).
		Where("user_id = ?", userID).
		Update("paper_balance_usdt", balance).Error
}
