package postgres

import (
	"context"
	"errors"
	"fmt"
	"kawaiiShop/domain"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// PlaceOrder decrements stock for every item and inserts the order with its
// items in a single transaction. A product without enough stock aborts the
// whole order with domain.ErrOutOfStock.
func (r *OrdersRepository) PlaceOrder(ctx context.Context, order *domain.Order) error {
	quantities := make(map[uint64]int, len(order.Items))
	for _, item := range order.Items {
		quantities[item.ProductID] += item.Quantity
	}

	// fixed lock order across concurrent checkouts
	ids := make([]uint64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			result := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", id, quantities[id]).
				UpdateColumn("stock", gorm.Expr("stock - ?", quantities[id]))
			if result.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("product %d: %w", id, domain.ErrOutOfStock)
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uint64) (domain.Order, error) {
	var order domain.Order
	err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, err
	}

	return order, nil
}

func (r *OrdersRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.DB.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrdersRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus is a compare-and-set on the order status.
func (r *OrdersRepository) UpdateStatus(ctx context.Context, id uint64, from, to string) error {
	result := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(map[string]interface{}{"order_status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.DB.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrOrderNotFound
		}
		return domain.ErrInvalidTransition
	}

	return nil
}

// Cancel locks the order row, checks that it is still pending, returns its
// items to stock and marks it cancelled.
func (r *OrdersRepository) Cancel(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		if order.OrderStatus != domain.OrderStatusPending {
			return domain.ErrInvalidTransition
		}

		var items []domain.OrderItem
		if err := tx.Where("order_id = ?", id).Order("product_id").Find(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			// restock even if the product was soft deleted meanwhile
			err := tx.Unscoped().Model(&domain.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to restock product %d: %w", item.ProductID, err)
			}
		}

		return tx.Model(&domain.Order{}).Where("id = ?", id).
			Updates(map[string]interface{}{"order_status": domain.OrderStatusCancelled, "updated_at": time.Now()}).Error
	})
}
