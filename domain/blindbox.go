package domain

import "time"

// BlindBoxOutcome is one possible content of a blind box product.
type BlindBoxOutcome struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint64    `gorm:"column:product_id;index;not null" json:"product_id"`
	Position  int       `gorm:"column:position;not null" json:"position"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Image     string    `gorm:"column:image;type:text" json:"image"`
	Weight    float64   `gorm:"column:weight;type:numeric;not null" json:"weight"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (BlindBoxOutcome) TableName() string {
	return "blind_box_outcomes"
}

// DrawRecord is the persisted audit form of a single draw.
type DrawRecord struct {
	DrawIndex int    `json:"draw_index"`
	Name      string `json:"name"`
	Image     string `json:"image"`
}

type BlindBoxItem struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type BlindBoxProduct struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// BlindBoxPurchase is the purchase confirmation returned to the buyer.
type BlindBoxPurchase struct {
	OrderID uint64          `json:"order_id"`
	Items   []BlindBoxItem  `json:"items"`
	Product BlindBoxProduct `json:"product"`
}
