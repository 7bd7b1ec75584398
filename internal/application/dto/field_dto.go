package dto

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain/field"
)

// FieldDefinitionRequest entrada para crear o reemplazar una definición de campo.
// Validations se interpreta según Type.
type FieldDefinitionRequest struct {
	ID            string                     `json:"id" validate:"max=100"`
	Key           string                     `json:"key" validate:"required,max=100"`
	Label         string                     `json:"label" validate:"required,max=200"`
	Type          string                     `json:"type" validate:"required,oneof=text number date select checkbox"`
	ApplicableFor []string                   `json:"applicableFor" validate:"required,min=1,dive,oneof=UNIQUE NON_UNIQUE"`
	IsRequired    bool                       `json:"isRequired"`
	Status        *bool                      `json:"status"`
	Options       []string                   `json:"options" validate:"omitempty,dive,max=200"`
	DefaultValue  any                        `json:"defaultValue"`
	Validations   map[string]json.RawMessage `json:"validations"`
	Placeholder   string                     `json:"placeholder" validate:"max=200"`
}

// FieldStatusRequest cambio de disponibilidad.
type FieldStatusRequest struct {
	Status *bool `json:"status" validate:"required"`
}

// FieldDefinitionResponse salida de una definición de campo.
type FieldDefinitionResponse struct {
	ID            string                 `json:"id"`
	Key           string                 `json:"key"`
	Label         string                 `json:"label"`
	Type          field.Type             `json:"type"`
	ApplicableFor []field.IdentifierType `json:"applicableFor"`
	IsRequired    bool                   `json:"isRequired"`
	Status        bool                   `json:"status"`
	Options       []string               `json:"options,omitempty"`
	DefaultValue  any                    `json:"defaultValue,omitempty"`
	Validations   field.Validations      `json:"validations,omitempty"`
	Placeholder   string                 `json:"placeholder,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// EntryRowResponse fila de captura inicial y los campos que la componen.
type EntryRowResponse struct {
	IdentifierType field.IdentifierType      `json:"identifierType"`
	Fields         []FieldDefinitionResponse `json:"fields"`
	Row            field.Row                 `json:"row"`
}
