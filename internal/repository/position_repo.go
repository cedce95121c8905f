package repository

import (
	"errors"

	"github.com/paper-trader/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPositionNotFound = errors.New("position not found")
)

// PositionRepository handles position data access
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PositionRepository) WithTx(tx *gorm.DB) *PositionRepository {
	return &PositionRepository{db: tx}
}

// Create creates a new position
func (r *PositionRepository) Create(position *models.Position) error {
	return r.db.Create(position).Error
}

// GetByUserAndPair retrieves the position a user holds in a pair
func (r *PositionRepository) GetByUserAndPair(userID, pairID uint) (*models.Position, error) {
	var position models.Position
	result := r.db.Where("user_id = ? AND trading_pair_id = ?", userID, pairID).First(&position)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, result.Error
	}
	return &position, nil
}

// GetByUserAndPairForUpdate retrieves a position holding a row lock on
// Postgres. SQLite serializes writes on its own.
func (r *PositionRepository) GetByUserAndPairForUpdate(userID, pairID uint) (*models.Position, error) {
	var position models.Position
	query := r.db
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	result := query.Where("user_id = ? AND trading_pair_id = ?", userID, pairID).First(&position)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, result.Error
	}
	return &position, nil
}

// GetOrCreate returns the existing position for the user and pair, or a
// fresh zero-valued one persisted inside the current transaction.
func (r *PositionRepository) GetOrCreate(userID, pairID uint) (*models.Position, error) {
	position, err := r.GetByUserAndPairForUpdate(userID, pairID)
	if err == nil {
		return position, nil
	}
	if !errors.Is(err, ErrPositionNotFound) {
		return nil, err
	}
	position = &models.Position{
		UserID:        userID,
		TradingPairID: pairID,
	}
	if err := r.db.Create(position).Error; err != nil {
		return nil, err
	}
	return position, nil
}

// GetByUserID retrieves all positions for a user with pair preloaded
func (r *PositionRepository) GetByUserID(userID uint) ([]models.Position, error) {
	var positions []models.Position
	result := r.db.Preload("TradingPair").Where("user_id = ?", userID).Find(&positions)
	return positions, result.Error
}

// GetOpenByUser retrieves positions with a non-zero amount
func (r *PositionRepository) GetOpenByUser(userID uint) ([]models.Position, error) {
	var positions []models.Position
	result := r.db.Preload("TradingPair").
		Where("user_id = ? AND amount > 0", userID).
		Find(&positions)
	return positions, result.Error
}

// Update updates a position
func (r *PositionRepository) Update(position *models.Position) error {
	return r.db.Save(position).Error
}
