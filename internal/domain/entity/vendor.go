package entity

import "time"

// Estados de proveedor.
const (
	VendorStatusActive   = "active"
	VendorStatusInactive = "inactive"
)

// Vendor proveedor al que se compran los lotes de stock.
type Vendor struct {
	ID          string
	Name        string
	ContactName string
	Phone       string
	Email       string
	Address     string
	TaxID       string // NIT / RUT
	Status      string // active, inactive
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive indica si el proveedor puede recibir nuevos ingresos.
func (v *Vendor) IsActive() bool { return v.Status != VendorStatusInactive }
