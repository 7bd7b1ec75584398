package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain/field"
)

// Stock representa un ingreso de mercancía (lote de compra a un proveedor) en una bodega.
type Stock struct {
	ID            string
	VendorID      string
	WarehouseID   string
	InvoiceNumber string
	PurchaseDate  time.Time
	Items         []StockItem
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StockItem línea de un ingreso. Productos UNIQUE traen una fila por unidad en
// Rows (Quantity = len(Rows)); NON_UNIQUE traen DynamicValues y Quantity > 0.
type StockItem struct {
	ProductID      string
	ProductName    string
	IdentifierType field.IdentifierType
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	Rows           []field.Row
	DynamicValues  map[string]any
}

// Subtotal costo de la línea.
func (i StockItem) Subtotal() decimal.Decimal {
	return i.UnitCost.Mul(i.Quantity)
}

// Total costo del ingreso.
func (s *Stock) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
