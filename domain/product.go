package domain

import (
	"time"

	"gorm.io/gorm"
)

// CREATE TABLE public.products (
//     id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     category_id   BIGINT REFERENCES categories(id),
//     name          TEXT NOT NULL,
//     description   TEXT,
//     price         NUMERIC NOT NULL,
//     stock         INTEGER NOT NULL DEFAULT 0,
//     image_url     TEXT,
//     model_url     TEXT,
//     is_blind_box  BOOLEAN DEFAULT FALSE,
//     created_at    TIMESTAMPTZ DEFAULT NOW(),
//     updated_at    TIMESTAMPTZ,
//     deleted_at    TIMESTAMPTZ
// );

type Product struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  uint64         `gorm:"column:category_id;index" json:"category_id"`
	Name        string         `gorm:"column:name;type:text;not null" json:"name"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Price       float64        `gorm:"column:price;type:numeric;not null" json:"price"`
	Stock       int            `gorm:"column:stock;not null;default:0" json:"stock"`
	ImageURL    string         `gorm:"column:image_url;type:text" json:"image_url"`
	ModelURL    string         `gorm:"column:model_url;type:text" json:"-"`
	IsBlindBox  bool           `gorm:"column:is_blind_box;default:false" json:"is_blind_box"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// derived, filled by the catalog service
	AverageRating float64 `gorm:"-" json:"average_rating"`
	ReviewCount   int64   `gorm:"-" json:"review_count"`
	ModelProxyURL string  `gorm:"-" json:"model_proxy_url,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	CategoryID uint64
	Query      string
	MinPrice   float64
	MaxPrice   float64
	Sort       string
	Page       int
	Limit      int
}

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int64     `json:"total"`
}

// RatingSummary is the aggregate of a product's reviews.
type RatingSummary struct {
	ProductID     uint64
	AverageRating float64
	ReviewCount   int64
}
