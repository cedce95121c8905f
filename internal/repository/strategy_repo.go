package repository

import (
	"errors"
	"time"

	"github.com/paper-trader/internal/models"
	"gorm.io/gorm"
)

var (
	ErrStrategyNotFound = errors.New("strategy not found")
)

// StrategyRepository handles trading strategy data access
type StrategyRepository struct {
	db *gorm.DB
}

// NewStrategyRepository creates a new StrategyRepository
func NewStrategyRepository(db *gorm.DB) *StrategyRepository {
	return &StrategyRepository{db: db}
}

// Create creates a new strategy
func (r *StrategyRepository) Create(strategy *models.TradingStrategy) error {
	return r.db.Create(strategy).Error
}

// GetByID retrieves a strategy by ID
func (r *StrategyRepository) GetByID(id uint) (*models.TradingStrategy, error) {
	var strategy models.TradingStrategy
	result := r.db.Preload("TradingPair").First(&strategy, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStrategyNotFound
		}
		return nil, result.Error
	}
	return &strategy, nil
}

// GetByIDAndUserID retrieves a strategy owned by the user
func (r *StrategyRepository) GetByIDAndUserID(id, userID uint) (*models.TradingStrategy, error) {
	var strategy models.TradingStrategy
	result := r.db.Preload("TradingPair").
		Where("id = ? AND user_id = ?", id, userID).First(&strategy)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStrategyNotFound
		}
		return nil, result.Error
	}
	return &strategy, nil
}

// GetByUserID retrieves all strategies for a user
func (r *StrategyRepository) GetByUserID(userID uint) ([]models.TradingStrategy, error) {
	var strategies []models.TradingStrategy
	result := r.db.Preload("TradingPair").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&strategies)
	return strategies, result.Error
}

// GetDue retrieves active strategies whose next execution time has
// arrived or was never scheduled.
func (r *StrategyRepository) GetDue(now time.Time) ([]models.TradingStrategy, error) {
	var strategies []models.TradingStrategy
	result := r.db.Preload("TradingPair").
		Where("is_active = ? AND (next_execution_at IS NULL OR next_execution_at <= ?)", true, now).
		Find(&strategies)
	return strategies, result.Error
}

// Update updates a strategy
func (r *StrategyRepository) Update(strategy *models.TradingStrategy) error {
	return r.db.Save(strategy).Error
}

// Delete soft deletes a strategy
func (r *StrategyRepository) Delete(id uint) error {
	return r.db.Delete(&models.TradingStrategy{}, id).Error
}

// CountActiveByUserID counts active strategies for a user
func (r *StrategyRepository) CountActiveByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.TradingStrategy{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}
