package repository

import (
	"errors"

	"github.com/paper-trader/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPairNotFound = errors.New("trading pair not found")
)

// PairRepository handles trading pair data access
type PairRepository struct {
	db *gorm.DB
}

// NewPairRepository creates a new PairRepository
func NewPairRepository(db *gorm.DB) *PairRepository {
	return &PairRepository{db: db}
}

// Create creates a new trading pair
func (r *PairRepository) Create(pair *models.TradingPair) error {
	return r.db.Create(pair).Error
}

// GetByID retrieves a trading pair by ID
func (r *PairRepository) GetByID(id uint) (*models.TradingPair, error) {
	var pair models.TradingPair
	result := r.db.First(&pair, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPairNotFound
		}
		return nil, result.Error
	}
	return &pair, nil
}

// GetBySymbol retrieves a trading pair by symbol
func (r *PairRepository) GetBySymbol(symbol string) (*models.TradingPair, error) {
	var pair models.TradingPair
	result := r.db.Where("symbol = ?", symbol).First(&pair)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPairNotFound
		}
		return nil, result.Error
	}
	return &pair, nil
}

// GetActive retrieves all active trading pairs ordered by symbol
func (r *PairRepository) GetActive() ([]models.TradingPair, error) {
	var pairs []models.TradingPair
	result := r.db.Where("is_active = ?", true).Order("symbol ASC").Find(&pairs)
	return pairs, result.Error
}

// GetAll retrieves all trading pairs
func (r *PairRepository) GetAll() ([]models.TradingPair, error) {
	var pairs []models.TradingPair
	result := r.db.Order("symbol ASC").Find(&pairs)
	return pairs, result.Error
}

// Update updates a trading pair
func (r *PairRepository) Update(pair *models.TradingPair) error {
	return r.db.Save(pair).Error
}
