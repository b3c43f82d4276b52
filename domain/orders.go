package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusCompleted = "COMPLETED"

	OrderTypeStandard = "STANDARD"
	OrderTypeBlindBox = "BLIND_BOX"
)

var orderTransitions = map[string][]string{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped},
	OrderStatusShipped: {OrderStatusCompleted},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string    `gorm:"column:order_number;uniqueIndex;not null" json:"order_number"`
	UserID      uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	OrderType   string    `gorm:"column:order_type;not null" json:"order_type"`
	OrderStatus string    `gorm:"column:order_status;not null" json:"order_status"`
	Total       float64   `gorm:"column:total;type:numeric" json:"total"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID          uint64                          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint64                          `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID   uint64                          `gorm:"column:product_id;not null" json:"product_id"`
	ProductName string                          `gorm:"column:product_name;type:text" json:"product_name"`
	Quantity    int                             `gorm:"column:quantity;not null" json:"quantity"`
	PriceEach   float64                         `gorm:"column:price_each;type:numeric" json:"price_each"`
	Charms      datatypes.JSONSlice[string]     `gorm:"column:charms;type:jsonb" json:"charms,omitempty"`
	Subtotal    float64                         `gorm:"column:subtotal;type:numeric" json:"subtotal"`
	Draws       datatypes.JSONSlice[DrawRecord] `gorm:"column:draws;type:jsonb" json:"draws,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
