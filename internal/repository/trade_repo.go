package repository

import (
	"github.com/paper-trader/internal/models"
	"gorm.io/gorm"
)

// TradeRepository handles trade history data access
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *TradeRepository) WithTx(tx *gorm.DB) *TradeRepository {
	return &TradeRepository{db: tx}
}

// Create creates a new trade record
func (r *TradeRepository) Create(trade *models.TradeHistory) error {
	return r.db.Create(trade).Error
}

// GetByUserID retrieves the most recent trades for a user
func (r *TradeRepository) GetByUserID(userID uint, limit int) ([]models.TradeHistory, error) {
	var trades []models.TradeHistory
	result := r.db.Preload("TradingPair").
		Where("user_id = ?", userID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&trades)
	return trades, result.Error
}

// GetByUserIDPaginated retrieves trades for a user with pagination
func (r *TradeRepository) GetByUserIDPaginated(userID uint, page, pageSize int) ([]models.TradeHistory, int64, error) {
	var trades []models.TradeHistory
	var total int64

	if err := r.db.Model(&models.TradeHistory{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	result := r.db.Preload("TradingPair").
		Where("user_id = ?", userID).
		Order("executed_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&trades)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return trades, total, nil
}
