package repository

import (
	"errors"

	"github.com/paper-trader/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAlertNotFound = errors.New("price alert not found")
)

// AlertRepository handles price alert data access
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create creates a new price alert
func (r *AlertRepository) Create(alert *models.PriceAlert) error {
	return r.db.Create(alert).Error
}

// GetByIDAndUserID retrieves an alert owned by the user
func (r *AlertRepository) GetByIDAndUserID(id, userID uint) (*models.PriceAlert, error) {
	var alert models.PriceAlert
	result := r.db.Preload("TradingPair").
		Where("id = ? AND user_id = ?", id, userID).First(&alert)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, result.Error
	}
	return &alert, nil
}

// GetByUserID retrieves all alerts for a user
func (r *AlertRepository) GetByUserID(userID uint) ([]models.PriceAlert, error) {
	var alerts []models.PriceAlert
	result := r.db.Preload("TradingPair").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&alerts)
	return alerts, result.Error
}

// GetActiveUntriggered retrieves alerts that are armed and have not fired
func (r *AlertRepository) GetActiveUntriggered() ([]models.PriceAlert, error) {
	var alerts []models.PriceAlert
	result := r.db.Preload("TradingPair").
		Where("is_active = ? AND triggered = ?", true, false).
		Find(&alerts)
	return alerts, result.Error
}

// Update updates a price alert
func (r *AlertRepository) Update(alert *models.PriceAlert) error {
	return r.db.Save(alert).Error
}

// Delete deletes a price alert
func (r *AlertRepository) Delete(id uint) error {
	return r.db.Delete(&models.PriceAlert{}, id).Error
}
