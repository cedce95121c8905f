package repository

import (
	"errors"
	"time"

	"github.com/paper-trader/internal/models"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository handles order data access
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create creates a new order
func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	result := r.db.Preload("TradingPair").First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}
	return &order, nil
}

// GetByIDAndUserID retrieves an order owned by the user
func (r *OrderRepository) GetByIDAndUserID(id, userID uint) (*models.Order, error) {
	var order models.Order
	result := r.db.Preload("TradingPair").
		Where("id = ? AND user_id = ?", id, userID).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}
	return &order, nil
}

// GetByUserIDPaginated retrieves orders for a user with pagination
func (r *OrderRepository) GetByUserIDPaginated(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	if err := r.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	result := r.db.Preload("TradingPair").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orders)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return orders, total, nil
}

// GetFilledByUserBetween retrieves filled orders in the window ordered by
// fill time ascending, with pair preloaded. A zero "from" means no lower
// bound and a zero "to" means no upper bound.
func (r *OrderRepository) GetFilledByUserBetween(userID uint, from, to time.Time) ([]models.Order, error) {
	query := r.db.Preload("TradingPair").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusFilled)
	if !from.IsZero() {
		query = query.Where("filled_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("filled_at <= ?", to)
	}

	var orders []models.Order
	result := query.Order("filled_at ASC").Find(&orders)
	return orders, result.Error
}

// Update updates an order
func (r *OrderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

// CountByUserID counts orders for a user
func (r *OrderRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
