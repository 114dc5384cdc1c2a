package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product is one transaction record of the dashboard dataset. The same
// struct is stored in MongoDB (bson tags) and in the SQL drivers (gorm tags).
type Product struct {
	ID          int64     `bson:"id"          json:"id"          gorm:"primaryKey;autoIncrement:false"`
	Title       string    `bson:"title"       json:"title"       gorm:"size:512"`
	Price       float64   `bson:"price"       json:"price"       gorm:"not null;default:0;index"`
	Description string    `bson:"description" json:"description"`
	Category    string    `bson:"category"    json:"category"    gorm:"size:255"`
	Image       string    `bson:"image"       json:"image"       gorm:"size:1024"`
	Sold        bool      `bson:"sold"        json:"sold"`
	DateOfSale  time.Time `bson:"dateOfSale"  json:"dateOfSale"`

	// SaleMonth is derived from DateOfSale for the SQL drivers, where month
	// extraction differs per dialect.
	SaleMonth int `bson:"-" json:"-" gorm:"index"`

	// TitleLower and DescriptionLower hold the Unicode lower-cased text the
	// SQL drivers search, since LOWER() folds only ASCII on some dialects.
	TitleLower       string `bson:"-" json:"-" gorm:"size:512"`
	DescriptionLower string `bson:"-" json:"-"`
}

func (Product) TableName() string { return "products" }

// BeforeSave keeps the derived columns in step with the record.
func (p *Product) BeforeSave(*gorm.DB) error {
	p.SaleMonth = p.Month()
	p.TitleLower = strings.ToLower(p.Title)
	p.DescriptionLower = strings.ToLower(p.Description)
	return nil
}

// Month returns the calendar month of the sale, evaluated in UTC.
func (p Product) Month() int {
	return int(p.DateOfSale.UTC().Month())
}

// ProductSearch is the store-level filter produced from a free-text search.
// A zero value matches every product.
type ProductSearch struct {
	// Text matches title or description as a case-insensitive substring.
	Text string
	// Price, when set, also matches products with exactly this price.
	Price *float64
}

// Empty reports whether the search matches everything.
func (s ProductSearch) Empty() bool { return s.Text == "" && s.Price == nil }

// ProductPage is one window of a listing plus the pre-pagination count.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
}
