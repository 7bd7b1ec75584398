package entity

import "time"

// Warehouse representa una bodega donde se recibe mercancía.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
