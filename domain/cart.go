package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Charms offered as per-unit customization add-ons.
var Charms = []string{"star", "heart", "bow", "bell", "moon", "cloud", "strawberry"}

func IsCharm(name string) bool {
	for _, c := range Charms {
		if c == name {
			return true
		}
	}
	return false
}

type CartItem struct {
	ID        uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint                        `gorm:"column:user_id;index;not null" json:"user_id"`
	ProductID uint64                      `gorm:"column:product_id;not null" json:"product_id"`
	Quantity  int                         `gorm:"column:quantity;not null" json:"quantity"`
	Charms    datatypes.JSONSlice[string] `gorm:"column:charms;type:jsonb" json:"charms"`
	CreatedAt time.Time                   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"column:updated_at" json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type CartLine struct {
	ItemID      uint64   `json:"item_id"`
	ProductID   uint64   `json:"product_id"`
	ProductName string   `json:"product_name"`
	ImageURL    string   `json:"image_url"`
	UnitPrice   float64  `json:"unit_price"`
	Quantity    int      `json:"quantity"`
	Charms      []string `json:"charms"`
	CharmPrice  float64  `json:"charm_price"`
	LineTotal   float64  `json:"line_total"`
}

type Cart struct {
	UserID    uint       `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	ItemCount int        `json:"item_count"`
	Subtotal  float64    `json:"subtotal"`
}
