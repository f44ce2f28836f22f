package models

import "strings"

// Stock status values as reported by the storefront.
const (
	StockInStock     = "instock"
	StockOutOfStock  = "outofstock"
	StockOnBackorder = "onbackorder"
)

// CatalogProduct is a read-only snapshot of a storefront product.
type CatalogProduct struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	StockStatus  string   `json:"stock_status"`
	CategoryTags []string `json:"category_tags"`
}

// SearchText is the lowercased title and description the keyword and color rules run against.
func (p CatalogProduct) SearchText() string {
	return strings.ToLower(p.Title + " " + p.Description)
}

// InStock reports whether the product can be offered in an Edit.
func (p CatalogProduct) InStock() bool {
	return p.StockStatus == StockInStock
}
