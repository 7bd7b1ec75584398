// Package field define los campos dinámicos (field masters) y su interpretación
// al construir y validar filas de captura por producto.
package field

import (
	"encoding/json"
	"slices"
	"time"
)

// Type tipo de dato de un campo dinámico.
type Type string

const (
	TypeText     Type = "text"
	TypeNumber   Type = "number"
	TypeDate     Type = "date"
	TypeSelect   Type = "select"
	TypeCheckbox Type = "checkbox"
)

// Valid indica si el tipo es uno de los soportados.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeSelect, TypeCheckbox:
		return true
	}
	return false
}

// IdentifierType distingue productos serializados (una fila por unidad) de
// productos por cantidad.
type IdentifierType string

const (
	Unique    IdentifierType = "UNIQUE"
	NonUnique IdentifierType = "NON_UNIQUE"
)

// Valid indica si el identificador es UNIQUE o NON_UNIQUE.
func (i IdentifierType) Valid() bool { return i == Unique || i == NonUnique }

// DateLayout formato de fechas en valores y validaciones (input type=date).
const DateLayout = "2006-01-02"

// Definition definición de un campo dinámico.
// Status true = disponible; los campos no disponibles no se ofrecen en formularios nuevos.
type Definition struct {
	ID            string           `json:"id"`
	Key           string           `json:"key"`
	Label         string           `json:"label"`
	Type          Type             `json:"type"`
	ApplicableFor []IdentifierType `json:"applicableFor"`
	IsRequired    bool             `json:"isRequired"`
	Status        bool             `json:"status"`
	Options       []string         `json:"options,omitempty"`
	DefaultValue  any              `json:"defaultValue,omitempty"`
	Validations   Validations      `json:"validations,omitempty"`
	Placeholder   string           `json:"placeholder,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// AppliesTo indica si el campo aplica al tipo de identificador.
func (d Definition) AppliesTo(it IdentifierType) bool {
	return slices.Contains(d.ApplicableFor, it)
}

// UnmarshalJSON decodifica validations según el tipo del campo.
func (d *Definition) UnmarshalJSON(b []byte) error {
	type alias Definition
	aux := struct {
		*alias
		Validations map[string]json.RawMessage `json:"validations"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	v, err := ParseValidations(d.Type, aux.Validations)
	if err != nil {
		return err
	}
	d.Validations = v
	return nil
}
