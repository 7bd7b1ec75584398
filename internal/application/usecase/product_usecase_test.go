package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

type catalogFixture struct {
	categories *CategoryUseCase
	fields     *FieldUseCase
	fieldRepo  *memFieldRepo
	products   *memProductRepo
	stocks     *memStockRepo
	uc         *ProductUseCase
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		fieldRepo: &memFieldRepo{defs: []field.Definition{
			{ID: "f-serial", Key: "serial_no", Label: "Serial", Type: field.TypeText,
				ApplicableFor: []field.IdentifierType{field.Unique}, IsRequired: true, Status: true},
			{ID: "f-color", Key: "color", Label: "Color", Type: field.TypeSelect, Options: []string{"negro", "blanco"},
				ApplicableFor: []field.IdentifierType{field.Unique, field.NonUnique}, Status: true},
			{ID: "f-lote", Key: "lote", Label: "Lote", Type: field.TypeText,
				ApplicableFor: []field.IdentifierType{field.NonUnique}, Status: true},
			{ID: "f-old", Key: "legacy", Label: "Legado", Type: field.TypeText,
				ApplicableFor: []field.IdentifierType{field.Unique}, Status: false},
		}},
		products: newMemProductRepo(),
		stocks:   newMemStockRepo(),
	}
	f.categories, _ = newCategoryUC(newMemCategoryRepo(sampleTree()...), f.products)
	f.fields, _ = newFieldUC(f.fieldRepo)
	f.uc = NewProductUseCase(f.products, f.stocks, f.categories, f.fields, logger.Nop())
	return f
}

func phoneRequest() dto.ProductRequest {
	return dto.ProductRequest{
		ID:               "p-moto",
		Name:             "Moto G",
		Code:             "770001",
		ProductGroupID:   "2",
		IdentifierType:   "UNIQUE",
		SelectedFieldIDs: []string{"f-serial", "f-color"},
		Price:            decimal.NewFromInt(899900),
	}
}

func TestProductUseCase_CreateSnapshotsFields(t *testing.T) {
	f := newCatalogFixture()
	res, err := f.uc.Create(context.Background(), phoneRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"f-serial", "f-color"}, res.SelectedFieldIDs)
	require.Len(t, res.FieldConfigurations, 2)
	assert.Equal(t, "serial_no", res.FieldConfigurations[0].Key)

	stored, err := f.products.GetByID(context.Background(), "p-moto")
	require.NoError(t, err)
	require.Len(t, stored.FieldConfigurations, 2)
}

func TestProductUseCase_CreateRequiresLeafCategory(t *testing.T) {
	f := newCatalogFixture()
	in := phoneRequest()
	in.ProductGroupID = "3"
	_, err := f.uc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStructural))
	assert.Equal(t, domain.CodeNotLeaf, domain.CodeOf(err))

	in.ProductGroupID = "missing"
	_, err = f.uc.Create(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, f.products.items)
}

func TestProductUseCase_CreateRejectsUnusableFields(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"inexistente", []string{"f-nope"}},
		{"no disponible", []string{"f-old"}},
		{"no aplica al identificador", []string{"f-lote"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			in := phoneRequest()
			in.SelectedFieldIDs = tt.ids
			_, err := f.uc.Create(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, domain.CodeUnknownField, domain.CodeOf(err))
		})
	}
}

func TestProductUseCase_SnapshotSurvivesFieldChanges(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.uc.Create(ctx, phoneRequest())
	require.NoError(t, err)

	_, err = f.fields.SetStatus(ctx, "f-serial", false)
	require.NoError(t, err)
	require.NoError(t, f.fields.Delete(ctx, "f-color"))

	fields, err := f.uc.Fields(ctx, "p-moto")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.True(t, fields[0].Status)

	in := phoneRequest()
	in.Name = "Moto G 5G"
	res, err := f.uc.Update(ctx, "p-moto", in)
	require.NoError(t, err)
	assert.Len(t, res.FieldConfigurations, 2)
}

func TestProductUseCase_EntryRow(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.uc.Create(ctx, phoneRequest())
	require.NoError(t, err)

	row, err := f.uc.EntryRow(ctx, "p-moto")
	require.NoError(t, err)
	assert.Equal(t, field.Unique, row.IdentifierType)
	assert.Equal(t, field.Row{"serial_no": "", "color": ""}, row.Row)

	_, err = f.uc.EntryRow(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductUseCase_DeleteBlockedByStock(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	_, err := f.uc.Create(ctx, phoneRequest())
	require.NoError(t, err)
	require.NoError(t, f.stocks.Create(ctx, &entity.Stock{ID: "s1", Items: []entity.StockItem{{ProductID: "p-moto"}}}))

	err = f.uc.Delete(ctx, "p-moto")
	require.Error(t, err)
	assert.Equal(t, domain.CodeInUse, domain.CodeOf(err))

	delete(f.stocks.items, "s1")
	require.NoError(t, f.uc.Delete(ctx, "p-moto"))
	assert.True(t, errors.Is(f.uc.Delete(ctx, "p-moto"), domain.ErrNotFound))
}
