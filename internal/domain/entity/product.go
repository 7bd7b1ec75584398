package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain/field"
)

// Product representa un producto del catálogo asignado a una categoría hoja.
// FieldConfigurations es la copia de las definiciones de campo tomada al
// guardar el producto; tiene prioridad sobre SelectedFieldIDs al resolver campos.
type Product struct {
	ID                  string
	Name                string
	Code                string // código de barras / referencia interna
	Description         string
	ProductGroupID      string // id de la categoría hoja
	IdentifierType      field.IdentifierType
	SelectedFieldIDs    []string
	FieldConfigurations []field.Definition
	Price               decimal.Decimal
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FieldSelection datos que determinan los campos de captura del producto.
func (p *Product) FieldSelection() field.Selection {
	return field.Selection{
		IdentifierType:      p.IdentifierType,
		SelectedFieldIDs:    p.SelectedFieldIDs,
		FieldConfigurations: p.FieldConfigurations,
	}
}
