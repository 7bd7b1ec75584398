package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain/field"
)

// StockItemRequest línea de un ingreso. Rows para productos UNIQUE (una por
// unidad); DynamicValues y Quantity para NON_UNIQUE.
type StockItemRequest struct {
	ProductID     string           `json:"productId" validate:"required"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      decimal.Decimal  `json:"unitCost"`
	Rows          []map[string]any `json:"rows"`
	DynamicValues map[string]any   `json:"dynamicValues"`
}

// StockRequest entrada para crear o reemplazar un ingreso de stock.
type StockRequest struct {
	ID            string             `json:"id" validate:"max=100"`
	VendorID      string             `json:"vendorId" validate:"required"`
	WarehouseID   string             `json:"warehouseId" validate:"required"`
	InvoiceNumber string             `json:"invoiceNumber" validate:"max=100"`
	PurchaseDate  string             `json:"purchaseDate" validate:"required,datetime=2006-01-02"`
	Items         []StockItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes         string             `json:"notes" validate:"max=2000"`
}

// StockListRequest filtros de GET /stocks.
type StockListRequest struct {
	PageRequest
	VendorID    string `query:"vendorId"`
	WarehouseID string `query:"warehouseId"`
	ProductID   string `query:"productId"`
}

// StockItemResponse línea de un ingreso.
type StockItemResponse struct {
	ProductID      string               `json:"productId"`
	ProductName    string               `json:"productName"`
	IdentifierType field.IdentifierType `json:"identifierType"`
	Quantity       decimal.Decimal      `json:"quantity"`
	UnitCost       decimal.Decimal      `json:"unitCost"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Rows           []field.Row          `json:"rows,omitempty"`
	DynamicValues  map[string]any       `json:"dynamicValues,omitempty"`
}

// StockResponse salida de un ingreso.
type StockResponse struct {
	ID            string              `json:"id"`
	VendorID      string              `json:"vendorId"`
	WarehouseID   string              `json:"warehouseId"`
	InvoiceNumber string              `json:"invoiceNumber"`
	PurchaseDate  string              `json:"purchaseDate"`
	Items         []StockItemResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	Notes         string              `json:"notes"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// StockListResponse lista paginada de ingresos.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
