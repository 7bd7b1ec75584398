package field

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

// ValidateRowValue convierte raw al tipo del campo y aplica sus reglas en
// orden; devuelve la primera violación. Un valor vacío solo falla si el
// campo es requerido.
func ValidateRowValue(def Definition, raw any) error {
	label := def.Label
	if label == "" {
		label = def.Key
	}
	if isEmpty(raw) {
		if def.IsRequired {
			return domain.Validation(domain.CodeRequired, def.Key, "%s es requerido", label)
		}
		return nil
	}
	value, err := coerce(def, raw)
	if err != nil {
		return err
	}
	switch def.Type {
	case TypeSelect:
		if !slices.Contains(def.Options, value.(string)) {
			return domain.Validation(domain.CodeConstraint, def.Key,
				"%s: %q no es una opción válida", label, value)
		}
	case TypeCheckbox:
		return nil
	}
	if def.Validations == nil {
		return nil
	}
	if def.Validations.Kind() != def.Type {
		return domain.Validation(domain.CodeInvalidInput, def.Key,
			"%s tiene validaciones de tipo %q", label, def.Validations.Kind())
	}
	return def.Validations.check(label, value)
}

// coerce: number → decimal.Decimal, date → time.Time, checkbox → bool, resto → string.
func coerce(def Definition, raw any) (any, error) {
	label := def.Label
	if label == "" {
		label = def.Key
	}
	switch def.Type {
	case TypeNumber:
		d, err := toDecimal(raw)
		if err != nil {
			return nil, domain.Validation(domain.CodeInvalidInput, def.Key, "%s debe ser numérico", label)
		}
		return d, nil
	case TypeDate:
		s, ok := raw.(string)
		if !ok {
			return nil, domain.Validation(domain.CodeInvalidInput, def.Key, "%s debe ser una fecha YYYY-MM-DD", label)
		}
		d, err := time.Parse(DateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, domain.Validation(domain.CodeInvalidInput, def.Key, "%s debe ser una fecha YYYY-MM-DD", label)
		}
		return d, nil
	case TypeCheckbox:
		b, ok := toBool(raw)
		if !ok {
			return nil, domain.Validation(domain.CodeInvalidInput, def.Key, "%s debe ser verdadero o falso", label)
		}
		return b, nil
	}
	return CellString(raw), nil
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	}
	return decimal.Zero, fmt.Errorf("tipo %T no numérico", raw)
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}

func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

// CellString representación canónica de un valor de celda (comparación y etiquetas).
func CellString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return decimal.NewFromFloat(v).String()
	case decimal.Decimal:
		return v.String()
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d.String()
		}
		return v.String()
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}

// zeroValue valor vacío según el tipo para filas nuevas.
func zeroValue(t Type) any {
	if t == TypeCheckbox {
		return false
	}
	return ""
}
