package field

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

// Validations reglas de validación propias de un tipo de campo.
// Solo TextValidation, NumberValidation y DateValidation la implementan.
type Validations interface {
	Kind() Type
	consistent() error
	check(label string, value any) error
}

// TextValidation reglas para campos text. Longitudes en runas; pattern debe
// coincidir con el valor completo.
type TextValidation struct {
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

func (TextValidation) Kind() Type { return TypeText }

func (v TextValidation) consistent() error {
	if v.MinLength != nil && *v.MinLength < 0 {
		return domain.Validation(domain.CodeInvalidInput, "validations.minLength", "minLength no puede ser negativo")
	}
	if v.MaxLength != nil && *v.MaxLength < 0 {
		return domain.Validation(domain.CodeInvalidInput, "validations.maxLength", "maxLength no puede ser negativo")
	}
	if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
		return domain.Validation(domain.CodeInvalidInput, "validations",
			"minLength (%d) no puede ser mayor que maxLength (%d)", *v.MinLength, *v.MaxLength)
	}
	if v.Pattern != "" {
		if _, err := anchored(v.Pattern); err != nil {
			return domain.Validation(domain.CodeInvalidInput, "validations.pattern", "pattern inválido: %v", err)
		}
	}
	return nil
}

func (v TextValidation) check(label string, value any) error {
	s := value.(string)
	n := utf8.RuneCountInString(s)
	if v.MinLength != nil && n < *v.MinLength {
		return constraint(label, "minLength", "%s debe tener al menos %d caracteres", label, *v.MinLength)
	}
	if v.MaxLength != nil && n > *v.MaxLength {
		return constraint(label, "maxLength", "%s debe tener como máximo %d caracteres", label, *v.MaxLength)
	}
	if v.Pattern != "" {
		re, err := anchored(v.Pattern)
		if err != nil || !re.MatchString(s) {
			return constraint(label, "pattern", "%s no cumple el formato requerido", label)
		}
	}
	return nil
}

func anchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

// NumberValidation reglas para campos number. Step se mide desde MinValue (o 0).
type NumberValidation struct {
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal
	Step     *decimal.Decimal
}

func (NumberValidation) Kind() Type { return TypeNumber }

// MarshalJSON emite los límites como números JSON.
func (v NumberValidation) MarshalJSON() ([]byte, error) {
	out := map[string]json.Number{}
	if v.MinValue != nil {
		out["minValue"] = json.Number(v.MinValue.String())
	}
	if v.MaxValue != nil {
		out["maxValue"] = json.Number(v.MaxValue.String())
	}
	if v.Step != nil {
		out["step"] = json.Number(v.Step.String())
	}
	return json.Marshal(out)
}

func (v NumberValidation) consistent() error {
	if v.MinValue != nil && v.MaxValue != nil && v.MinValue.GreaterThan(*v.MaxValue) {
		return domain.Validation(domain.CodeInvalidInput, "validations",
			"minValue (%s) no puede ser mayor que maxValue (%s)", v.MinValue, v.MaxValue)
	}
	if v.Step != nil && !v.Step.IsPositive() {
		return domain.Validation(domain.CodeInvalidInput, "validations.step", "step debe ser mayor que cero")
	}
	return nil
}

func (v NumberValidation) check(label string, value any) error {
	d := value.(decimal.Decimal)
	if v.MinValue != nil && d.LessThan(*v.MinValue) {
		return constraint(label, "minValue", "%s debe ser mayor o igual a %s", label, v.MinValue)
	}
	if v.MaxValue != nil && d.GreaterThan(*v.MaxValue) {
		return constraint(label, "maxValue", "%s debe ser menor o igual a %s", label, v.MaxValue)
	}
	if v.Step != nil {
		base := decimal.Zero
		if v.MinValue != nil {
			base = *v.MinValue
		}
		if !d.Sub(base).Mod(*v.Step).IsZero() {
			return constraint(label, "step", "%s debe avanzar en pasos de %s", label, v.Step)
		}
	}
	return nil
}

// DateValidation reglas para campos date (YYYY-MM-DD, inclusivas).
type DateValidation struct {
	MinDate *time.Time
	MaxDate *time.Time
}

func (DateValidation) Kind() Type { return TypeDate }

// MarshalJSON emite las fechas en DateLayout.
func (v DateValidation) MarshalJSON() ([]byte, error) {
	out := map[string]string{}
	if v.MinDate != nil {
		out["minDate"] = v.MinDate.Format(DateLayout)
	}
	if v.MaxDate != nil {
		out["maxDate"] = v.MaxDate.Format(DateLayout)
	}
	return json.Marshal(out)
}

func (v DateValidation) consistent() error {
	if v.MinDate != nil && v.MaxDate != nil && v.MinDate.After(*v.MaxDate) {
		return domain.Validation(domain.CodeInvalidInput, "validations",
			"minDate (%s) no puede ser posterior a maxDate (%s)", v.MinDate.Format(DateLayout), v.MaxDate.Format(DateLayout))
	}
	return nil
}

func (v DateValidation) check(label string, value any) error {
	d := value.(time.Time)
	if v.MinDate != nil && d.Before(*v.MinDate) {
		return constraint(label, "minDate", "%s no puede ser anterior a %s", label, v.MinDate.Format(DateLayout))
	}
	if v.MaxDate != nil && d.After(*v.MaxDate) {
		return constraint(label, "maxDate", "%s no puede ser posterior a %s", label, v.MaxDate.Format(DateLayout))
	}
	return nil
}

func constraint(label, rule, format string, args ...any) error {
	return domain.Validation(domain.CodeConstraint, label, format, args...).
		WithDetails(map[string]any{"rule": rule})
}

var allowedKinds = map[Type][]string{
	TypeText:   {"minLength", "maxLength", "pattern"},
	TypeNumber: {"minValue", "maxValue", "step"},
	TypeDate:   {"minDate", "maxDate"},
}

// ParseValidations interpreta el mapa crudo de validaciones según el tipo.
// Un tipo que no acepta validaciones, o una clave ajena al tipo, es un error.
func ParseValidations(t Type, raw map[string]json.RawMessage) (Validations, error) {
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		if isNull(v) {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)
	allowed := allowedKinds[t]
	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return nil, domain.Validation(domain.CodeInvalidInput, "validations."+k,
				"la validación %q no aplica a campos de tipo %q", k, t)
		}
	}
	switch t {
	case TypeText:
		var v TextValidation
		var err error
		if v.MinLength, err = rawInt(raw, "minLength"); err != nil {
			return nil, err
		}
		if v.MaxLength, err = rawInt(raw, "maxLength"); err != nil {
			return nil, err
		}
		if r, ok := raw["pattern"]; ok && !isNull(r) {
			if err := json.Unmarshal(r, &v.Pattern); err != nil {
				return nil, invalidRule("pattern", "debe ser texto")
			}
		}
		return v, nil
	case TypeNumber:
		var v NumberValidation
		var err error
		if v.MinValue, err = rawDecimal(raw, "minValue"); err != nil {
			return nil, err
		}
		if v.MaxValue, err = rawDecimal(raw, "maxValue"); err != nil {
			return nil, err
		}
		if v.Step, err = rawDecimal(raw, "step"); err != nil {
			return nil, err
		}
		return v, nil
	case TypeDate:
		var v DateValidation
		var err error
		if v.MinDate, err = rawDate(raw, "minDate"); err != nil {
			return nil, err
		}
		if v.MaxDate, err = rawDate(raw, "maxDate"); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, nil
}

func isNull(r json.RawMessage) bool {
	s := strings.TrimSpace(string(r))
	return s == "" || s == "null"
}

func invalidRule(rule, msg string) error {
	return domain.Validation(domain.CodeInvalidInput, "validations."+rule, "%s %s", rule, msg)
}

func rawInt(raw map[string]json.RawMessage, k string) (*int, error) {
	r, ok := raw[k]
	if !ok || isNull(r) {
		return nil, nil
	}
	d, err := decimalFromRaw(r)
	if err != nil || !d.IsInteger() {
		return nil, invalidRule(k, "debe ser un entero")
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt)) || d.LessThan(decimal.NewFromInt(math.MinInt)) {
		return nil, invalidRule(k, "fuera de rango")
	}
	n := int(d.IntPart())
	return &n, nil
}

func rawDecimal(raw map[string]json.RawMessage, k string) (*decimal.Decimal, error) {
	r, ok := raw[k]
	if !ok || isNull(r) {
		return nil, nil
	}
	d, err := decimalFromRaw(r)
	if err != nil {
		return nil, invalidRule(k, "debe ser numérico")
	}
	return &d, nil
}

func rawDate(raw map[string]json.RawMessage, k string) (*time.Time, error) {
	r, ok := raw[k]
	if !ok || isNull(r) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(r, &s); err != nil {
		return nil, invalidRule(k, "debe ser una fecha YYYY-MM-DD")
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil, invalidRule(k, "debe ser una fecha YYYY-MM-DD")
	}
	return &d, nil
}

// decimalFromRaw acepta número JSON o número entre comillas.
func decimalFromRaw(r json.RawMessage) (decimal.Decimal, error) {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(r); err != nil {
		return decimal.Zero, fmt.Errorf("decimal: %w", err)
	}
	return d, nil
}
