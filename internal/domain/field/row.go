package field

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

// Row una fila de captura: key del campo → valor.
type Row map[string]any

// BuildEntryRow fila nueva con el valor por defecto de cada campo (o vacío).
func BuildEntryRow(fields []Definition) Row {
	row := make(Row, len(fields))
	for _, f := range fields {
		if f.DefaultValue != nil {
			row[f.Key] = f.DefaultValue
			continue
		}
		row[f.Key] = zeroValue(f.Type)
	}
	return row
}

// EntryBatch filas de un producto dentro de un ingreso de stock. Para
// productos UNIQUE ningún valor no vacío puede repetirse en la misma columna.
type EntryBatch struct {
	identifier IdentifierType
	fields     []Definition
	byKey      map[string]Definition
	rows       []Row
}

// NewEntryBatch lote vacío para los campos resueltos de un producto.
func NewEntryBatch(it IdentifierType, fields []Definition) *EntryBatch {
	byKey := make(map[string]Definition, len(fields))
	for _, f := range fields {
		byKey[f.Key] = f
	}
	return &EntryBatch{identifier: it, fields: fields, byKey: byKey}
}

// Len cantidad de filas.
func (b *EntryBatch) Len() int { return len(b.rows) }

// Rows copia de las filas.
func (b *EntryBatch) Rows() []Row {
	out := make([]Row, 0, len(b.rows))
	for _, r := range b.rows {
		out = append(out, maps.Clone(r))
	}
	return out
}

// AddRow agrega una fila con valores por defecto y devuelve su índice.
func (b *EntryBatch) AddRow() int {
	b.rows = append(b.rows, BuildEntryRow(b.fields))
	return len(b.rows) - 1
}

// Append agrega una fila ya capturada aplicando SetCell a cada columna en el
// orden de los campos; luego rechaza claves ajenas (en orden alfabético). Si
// alguna celda es rechazada la fila no se agrega.
func (b *EntryBatch) Append(values Row) error {
	idx := b.AddRow()
	for _, f := range b.fields {
		v, ok := values[f.Key]
		if !ok {
			continue
		}
		if err := b.SetCell(idx, f.Key, v); err != nil {
			b.rows = b.rows[:idx]
			return err
		}
	}
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if _, ok := b.byKey[key]; !ok {
			b.rows = b.rows[:idx]
			return domain.Validation(domain.CodeUnknownField, key, "el campo %q no aplica a este producto", key)
		}
	}
	return nil
}

// RemoveRow elimina la fila idx.
func (b *EntryBatch) RemoveRow(idx int) error {
	if idx < 0 || idx >= len(b.rows) {
		return domain.Validation(domain.CodeInvalidInput, "row", "fila %d fuera de rango", idx)
	}
	b.rows = append(b.rows[:idx], b.rows[idx+1:]...)
	return nil
}

// SetCell asigna value a la columna key de la fila idx. En productos UNIQUE,
// un valor igual en otra fila rechaza la edición y ambas filas quedan como estaban.
func (b *EntryBatch) SetCell(idx int, key string, value any) error {
	if idx < 0 || idx >= len(b.rows) {
		return domain.Validation(domain.CodeInvalidInput, "row", "fila %d fuera de rango", idx)
	}
	def, ok := b.byKey[key]
	if !ok {
		return domain.Validation(domain.CodeUnknownField, key, "el campo %q no aplica a este producto", key)
	}
	if b.identifier == Unique && demandsUniqueness(def) && !isEmpty(value) {
		want := CellString(value)
		for j, other := range b.rows {
			if j != idx && !isEmpty(other[key]) && CellString(other[key]) == want {
				return domain.Duplicate(domain.CodeDuplicateRowValue, key,
					"%s debe ser único: %q ya está en la fila %d", def.Label, want, j+1).
					WithDetails(map[string]any{"row": idx, "conflictRow": j, "field": def.Key})
			}
		}
	}
	b.rows[idx][key] = value
	return nil
}

// demandsUniqueness: un checkbox solo tiene dos valores y no identifica unidades.
func demandsUniqueness(def Definition) bool { return def.Type != TypeCheckbox }

// Validate aplica ValidateRowValue a cada celda de cada fila y, para UNIQUE,
// vuelve a comprobar la unicidad por columna (los valores por defecto de
// AddRow no pasan por SetCell).
func (b *EntryBatch) Validate() error {
	for i, row := range b.rows {
		for _, f := range b.fields {
			if err := ValidateRowValue(f, row[f.Key]); err != nil {
				return atRow(err, i)
			}
		}
	}
	if b.identifier != Unique {
		return nil
	}
	for _, f := range b.fields {
		if !demandsUniqueness(f) {
			continue
		}
		seen := make(map[string]int, len(b.rows))
		for i, row := range b.rows {
			if isEmpty(row[f.Key]) {
				continue
			}
			v := CellString(row[f.Key])
			if j, dup := seen[v]; dup {
				return domain.Duplicate(domain.CodeDuplicateRowValue, f.Key,
					"%s debe ser único: %q se repite en las filas %d y %d", f.Label, v, j+1, i+1).
					WithDetails(map[string]any{"row": i, "conflictRow": j, "field": f.Key})
			}
			seen[v] = i
		}
	}
	return nil
}

// ValidateValues valida el mapa dynamicValues de un producto NON_UNIQUE.
func ValidateValues(fields []Definition, values map[string]any) error {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Key] = true
		if err := ValidateRowValue(f, values[f.Key]); err != nil {
			return err
		}
	}
	for k := range values {
		if !known[k] {
			return domain.Validation(domain.CodeUnknownField, k, "el campo %q no aplica a este producto", k)
		}
	}
	return nil
}

func atRow(err error, row int) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return err
	}
	details := map[string]any{"row": row}
	maps.Copy(details, de.Details)
	cp := *de
	cp.Message = fmt.Sprintf("fila %d: %s", row+1, de.Message)
	cp.Details = details
	return &cp
}
