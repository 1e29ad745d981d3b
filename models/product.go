package models

// Product is a catalog item. The warehouse stocks industrial supplies, so
// material and diameter matter for search.
type Product struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	Material       string  `json:"material"`
	DiameterMM     float64 `json:"diameter_mm,omitempty"`
	Unit           string  `json:"unit"`
	UnitPrice      float64 `json:"unit_price"`
	QuantityOnHand int     `json:"quantity_on_hand"`
}

// StockStatus reports availability for a single SKU.
type StockStatus struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	QuantityOnHand int    `json:"quantity_on_hand"`
	InStock        bool   `json:"in_stock"`
}
