package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest entrada para crear o reemplazar un producto.
type ProductRequest struct {
	ID               string          `json:"id" validate:"max=100"`
	Name             string          `json:"name" validate:"required,min=1,max=300"`
	Code             string          `json:"code" validate:"max=100"`
	Description      string          `json:"description"`
	ProductGroupID   string          `json:"productGroupId" validate:"required"`
	IdentifierType   string          `json:"identifierType" validate:"required,oneof=UNIQUE NON_UNIQUE"`
	SelectedFieldIDs []string        `json:"selectedFieldIds" validate:"omitempty,dive,required"`
	Price            decimal.Decimal `json:"price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                  string                    `json:"id"`
	Name                string                    `json:"name"`
	Code                string                    `json:"code"`
	Description         string                    `json:"description"`
	ProductGroupID      string                    `json:"productGroupId"`
	IdentifierType      string                    `json:"identifierType"`
	SelectedFieldIDs    []string                  `json:"selectedFieldIds"`
	FieldConfigurations []FieldDefinitionResponse `json:"fieldConfigurations"`
	Price               decimal.Decimal           `json:"price"`
	CreatedAt           time.Time                 `json:"createdAt"`
	UpdatedAt           time.Time                 `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
