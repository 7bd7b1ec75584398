package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
)

func TestPgErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "field_masters_key_key"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, isUniqueViolation(unique))
	assert.Equal(t, "field_masters_key_key", uniqueConstraint(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(errors.New("conexión rechazada")))
	assert.Empty(t, uniqueConstraint(fk))
}

func TestStockItemsEncoding(t *testing.T) {
	items := []entity.StockItem{
		{
			ProductID: "p1", ProductName: "Teléfono", IdentifierType: field.Unique,
			Quantity: decimal.NewFromInt(2), UnitCost: decimal.RequireFromString("150.50"),
			Rows: []field.Row{{"serial": "SN1"}, {"serial": "SN2"}},
		},
		{
			ProductID: "p2", IdentifierType: field.NonUnique,
			Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(3),
			DynamicValues: map[string]any{"lot": "L-7"},
		},
	}
	raw, err := encodeItems(items)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"productId":"p1"`)
	assert.NotContains(t, string(raw), `"dynamicValues":null`)

	got, err := decodeItems(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, field.Unique, got[0].IdentifierType)
	assert.True(t, got[0].UnitCost.Equal(items[0].UnitCost))
	assert.Equal(t, "SN2", got[0].Rows[1]["serial"])
	assert.Equal(t, "L-7", got[1].DynamicValues["lot"])
	assert.Nil(t, got[1].Rows)
}
