package field_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func textField(id, key, label string, scope ...field.IdentifierType) field.Definition {
	return field.Definition{ID: id, Key: key, Label: label, Type: field.TypeText, ApplicableFor: scope, Status: true}
}

func parseDef(t *testing.T, raw string) field.Definition {
	t.Helper()
	var d field.Definition
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / unicidad
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DuplicateKeyRejected(t *testing.T) {
	reg := field.NewRegistry([]field.Definition{textField("f1", "serial_number", "Serial", field.Unique)})

	_, err := reg.Create(textField("", "serial_number", "Número de serie", field.NonUnique))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Equal(t, domain.CodeDuplicateKey, domain.CodeOf(err))
	assert.Len(t, reg.All(), 1)
}

func TestCreate_DuplicateLabelIgnoresCase(t *testing.T) {
	reg := field.NewRegistry([]field.Definition{textField("f1", "color", "Color", field.NonUnique)})

	_, err := reg.Create(textField("", "colour", "  COLOR ", field.Unique))
	assert.Equal(t, domain.CodeDuplicateLabel, domain.CodeOf(err))
}

func TestCreate_ScopedComboSameKeyDifferentCase(t *testing.T) {
	reg := field.NewRegistry([]field.Definition{textField("f1", "serial_no", "Serie", field.Unique)})

	_, err := reg.Create(textField("", "Serial_No", "Número de serie", field.Unique))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Equal(t, domain.CodeDuplicateScopedCombo, domain.CodeOf(err))

	created, err := reg.Create(textField("", "Serial_No", "Número de serie", field.NonUnique))
	require.NoError(t, err, "alcance distinto no colisiona")
	assert.NotEmpty(t, created.ID)
}

func TestCreate_RejectsInconsistentBounds(t *testing.T) {
	reg := field.NewRegistry(nil)
	def := parseDef(t, `{"key":"weight","label":"Peso","type":"number","applicableFor":["NON_UNIQUE"],
		"status":true,"validations":{"minValue":10,"maxValue":5}}`)

	_, err := reg.Create(def)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, reg.All())
}

func TestCreate_DefinitionRules(t *testing.T) {
	tests := []struct {
		name string
		def  field.Definition
		code domain.Code
	}{
		{"clave con espacio", textField("", "serial no", "Serie", field.Unique), domain.CodeInvalidKey},
		{"clave con dígito inicial", textField("", "1serial", "Serie", field.Unique), domain.CodeInvalidKey},
		{"sin label", textField("", "serial", " ", field.Unique), domain.CodeInvalidInput},
		{"sin alcance", textField("", "serial", "Serie"), domain.CodeInvalidInput},
		{"alcance inválido", textField("", "serial", "Serie", "BULK"), domain.CodeInvalidInput},
		{"select sin opciones", field.Definition{Key: "size", Label: "Talla", Type: field.TypeSelect,
			ApplicableFor: []field.IdentifierType{field.NonUnique}, Options: []string{" "}}, domain.CodeInvalidInput},
		{"tipo desconocido", field.Definition{Key: "x", Label: "X", Type: "color",
			ApplicableFor: []field.IdentifierType{field.NonUnique}}, domain.CodeInvalidInput},
		{"validaciones de otro tipo", field.Definition{Key: "lot", Label: "Lote", Type: field.TypeText,
			ApplicableFor: []field.IdentifierType{field.NonUnique}, Validations: field.DateValidation{}}, domain.CodeInvalidInput},
		{"default checkbox no booleano", field.Definition{Key: "gift", Label: "Regalo", Type: field.TypeCheckbox,
			ApplicableFor: []field.IdentifierType{field.NonUnique}, DefaultValue: "si"}, domain.CodeInvalidInput},
		{"default select fuera de opciones", field.Definition{Key: "size", Label: "Talla", Type: field.TypeSelect,
			ApplicableFor: []field.IdentifierType{field.NonUnique}, Options: []string{"S", "M"}, DefaultValue: "XL"}, domain.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := field.NewRegistry(nil)
			_, err := reg.Create(tt.def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.Equal(t, tt.code, domain.CodeOf(err))
		})
	}
}

func TestParseValidations_RejectsForeignRule(t *testing.T) {
	var d field.Definition
	err := json.Unmarshal([]byte(`{"key":"lot","label":"Lote","type":"text","validations":{"minValue":1}}`), &d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	err = json.Unmarshal([]byte(`{"key":"ok","label":"Ok","type":"checkbox","validations":{"minLength":1}}`), &d)
	assert.Error(t, err)
}

func TestParseValidations_RejectsOutOfRangeLength(t *testing.T) {
	_, err := field.ParseValidations(field.TypeText, map[string]json.RawMessage{"minLength": json.RawMessage(`1e20`)})
	require.Error(t, err)
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "validations.minLength", de.Field)
	assert.Contains(t, de.Message, "fuera de rango")

	v, err := field.ParseValidations(field.TypeText, map[string]json.RawMessage{"maxLength": json.RawMessage(`120`)})
	require.NoError(t, err)
	assert.Equal(t, 120, *v.(field.TextValidation).MaxLength)
}

func TestCreate_NormalizesDefinition(t *testing.T) {
	reg := field.NewRegistry(nil)
	def := field.Definition{
		Key: " size ", Label: " Talla ", Type: field.TypeSelect,
		ApplicableFor: []field.IdentifierType{field.NonUnique, field.NonUnique},
		Options:       []string{" S ", "", "M"},
	}
	got, err := reg.Create(def)
	require.NoError(t, err)
	assert.Equal(t, "size", got.Key)
	assert.Equal(t, "Talla", got.Label)
	assert.Equal(t, []field.IdentifierType{field.NonUnique}, got.ApplicableFor)
	assert.Equal(t, []string{"S", "M"}, got.Options)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / status / delete
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_ExcludesItselfFromUniqueness(t *testing.T) {
	reg := field.NewRegistry([]field.Definition{
		textField("f1", "serial", "Serie", field.Unique),
		textField("f2", "imei", "IMEI", field.Unique),
	})

	got, err := reg.Update("f1", textField("", "serial", "Serie", field.Unique, field.NonUnique))
	require.NoError(t, err)
	assert.Equal(t, "f1", got.ID)
	assert.Len(t, got.ApplicableFor, 2)

	_, err = reg.Update("f1", textField("", "imei", "Serie", field.Unique))
	assert.Equal(t, domain.CodeDuplicateKey, domain.CodeOf(err))
	cur, _ := reg.Get("f1")
	assert.Equal(t, "serial", cur.Key, "el registro no cambia si falla")

	_, err = reg.Update("missing", textField("", "x", "X", field.Unique))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSetStatusAndDelete(t *testing.T) {
	reg := field.NewRegistry([]field.Definition{textField("f1", "serial", "Serie", field.Unique)})

	got, err := reg.SetStatus("f1", false)
	require.NoError(t, err)
	assert.False(t, got.Status)
	assert.Empty(t, reg.Available(field.Unique))

	require.NoError(t, reg.Delete("f1"))
	assert.True(t, errors.Is(reg.Delete("f1"), domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución de campos por producto
// ──────────────────────────────────────────────────────────────────────────────

func TestResolveFieldsFor_Precedence(t *testing.T) {
	off := textField("f3", "color", "Color", field.Unique)
	off.Status = false
	reg := field.NewRegistry([]field.Definition{
		textField("f1", "serial", "Serie", field.Unique),
		textField("f2", "lot", "Lote", field.NonUnique),
		off,
	})

	t.Run("ids vivos filtrados por disponibilidad y alcance", func(t *testing.T) {
		got := reg.ResolveFieldsFor(field.Selection{
			IdentifierType:   field.Unique,
			SelectedFieldIDs: []string{"f2", "f1", "f3", "gone"},
		})
		require.Len(t, got, 1)
		assert.Equal(t, "serial", got[0].Key)
	})

	t.Run("la instantánea gana", func(t *testing.T) {
		snap := []field.Definition{textField("f9", "legacy", "Legado", field.Unique)}
		got := reg.ResolveFieldsFor(field.Selection{
			IdentifierType:      field.Unique,
			SelectedFieldIDs:    []string{"f1"},
			FieldConfigurations: snap,
		})
		assert.Equal(t, snap, got)
	})

	t.Run("instantánea vacía cae a ids vivos", func(t *testing.T) {
		got := reg.ResolveFieldsFor(field.Selection{
			IdentifierType:      field.NonUnique,
			SelectedFieldIDs:    []string{"f2"},
			FieldConfigurations: []field.Definition{},
		})
		require.Len(t, got, 1)
		assert.Equal(t, "lot", got[0].Key)
	})
}

func TestDefinitionJSONShape(t *testing.T) {
	def := parseDef(t, `{"id":"f1","key":"weight","label":"Peso","type":"number","applicableFor":["NON_UNIQUE"],
		"isRequired":true,"status":true,"validations":{"minValue":0,"maxValue":"99.5","step":0.5}}`)
	nv, ok := def.Validations.(field.NumberValidation)
	require.True(t, ok)
	assert.Equal(t, "99.5", nv.MaxValue.String())

	out, err := json.Marshal(def)
	require.NoError(t, err)
	var shape map[string]any
	require.NoError(t, json.Unmarshal(out, &shape))
	assert.Equal(t, map[string]any{"minValue": 0.0, "maxValue": 99.5, "step": 0.5}, shape["validations"])
	assert.NotContains(t, shape, "options")
}
