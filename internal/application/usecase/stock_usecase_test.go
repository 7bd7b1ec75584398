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
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

type stockFixture struct {
	*catalogFixture
	vendors  *memVendorRepo
	renderer *fakeRenderer
	stockUC  *StockUseCase
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	f := &stockFixture{
		catalogFixture: newCatalogFixture(),
		vendors: &memVendorRepo{items: map[string]*entity.Vendor{
			"v1": {ID: "v1", Name: "Distribuidora Andina", Status: entity.VendorStatusActive},
			"v2": {ID: "v2", Name: "Cerrado S.A.S.", Status: entity.VendorStatusInactive},
		}},
		renderer: &fakeRenderer{},
	}
	warehouses := &memWarehouseRepo{items: map[string]*entity.Warehouse{"w1": {ID: "w1", Name: "Principal"}}}
	f.stockUC = NewStockUseCase(f.stocks, f.products, f.vendors, warehouses, f.fields, f.renderer, logger.Nop())

	ctx := context.Background()
	_, err := f.uc.Create(ctx, phoneRequest())
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, dto.ProductRequest{
		ID:               "p-cable",
		Name:             "Cable USB-C",
		Code:             "880002",
		ProductGroupID:   "4",
		IdentifierType:   "NON_UNIQUE",
		SelectedFieldIDs: []string{"f-lote"},
	})
	require.NoError(t, err)
	return f
}

func purchase(items ...dto.StockItemRequest) dto.StockRequest {
	return dto.StockRequest{
		VendorID:      "v1",
		WarehouseID:   "w1",
		InvoiceNumber: "FV-1001",
		PurchaseDate:  "2026-02-10",
		Items:         items,
	}
}

func phones(serials ...string) dto.StockItemRequest {
	rows := make([]map[string]any, 0, len(serials))
	for _, s := range serials {
		rows = append(rows, map[string]any{"serial_no": s, "color": "negro"})
	}
	return dto.StockItemRequest{ProductID: "p-moto", UnitCost: decimal.NewFromInt(700000), Rows: rows}
}

func TestStockUseCase_CreateUniqueAndNonUnique(t *testing.T) {
	f := newStockFixture(t)
	res, err := f.stockUC.Create(context.Background(), purchase(
		phones("SN-0001", "SN-0002"),
		dto.StockItemRequest{ProductID: "p-cable", Quantity: decimal.NewFromInt(30), UnitCost: decimal.NewFromInt(5000),
			DynamicValues: map[string]any{"lote": "L-77"}},
	))
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "2026-02-10", res.PurchaseDate)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(1_550_000)), res.Total.String())
	assert.Len(t, f.stocks.items, 1)
}

func TestStockUseCase_RepeatedSerialRejected(t *testing.T) {
	f := newStockFixture(t)
	_, err := f.stockUC.Create(context.Background(), purchase(phones("SN-0001", "SN-0001")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Equal(t, domain.CodeDuplicateRowValue, domain.CodeOf(err))

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "serial_no", de.Field)
	assert.Equal(t, 0, de.Details["item"])
	assert.Equal(t, 1, de.Details["row"])
	assert.Empty(t, f.stocks.items)
}

func TestStockUseCase_Rejections(t *testing.T) {
	tests := []struct {
		name string
		edit func(*dto.StockRequest)
		code domain.Code
	}{
		{"proveedor inactivo", func(r *dto.StockRequest) { r.VendorID = "v2" }, domain.CodeInvalidInput},
		{"bodega inexistente", func(r *dto.StockRequest) { r.WarehouseID = "w9" }, domain.CodeInvalidInput},
		{"fecha inválida", func(r *dto.StockRequest) { r.PurchaseDate = "10/02/2026" }, domain.CodeInvalidInput},
		{"producto repetido", func(r *dto.StockRequest) { r.Items = append(r.Items, phones("SN-9")) }, domain.CodeInvalidInput},
		{"serial requerido", func(r *dto.StockRequest) { r.Items[0].Rows[0]["serial_no"] = "" }, domain.CodeRequired},
		{"color fuera de opciones", func(r *dto.StockRequest) { r.Items[0].Rows[0]["color"] = "rojo" }, domain.CodeConstraint},
		{"campo desconocido", func(r *dto.StockRequest) { r.Items[0].Rows[0]["imei"] = "1" }, domain.CodeUnknownField},
		{"cantidad distinta de filas", func(r *dto.StockRequest) { r.Items[0].Quantity = decimal.NewFromInt(3) }, domain.CodeInvalidInput},
		{"costo negativo", func(r *dto.StockRequest) { r.Items[0].UnitCost = decimal.NewFromInt(-1) }, domain.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStockFixture(t)
			in := purchase(phones("SN-0001"))
			tt.edit(&in)
			_, err := f.stockUC.Create(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.CodeOf(err))
			assert.Empty(t, f.stocks.items)
		})
	}
}

func TestStockUseCase_NonUniqueNeedsQuantity(t *testing.T) {
	f := newStockFixture(t)
	_, err := f.stockUC.Create(context.Background(), purchase(
		dto.StockItemRequest{ProductID: "p-cable", DynamicValues: map[string]any{"lote": "L-1"}},
	))
	require.Error(t, err)
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "quantity", de.Field)
}

func TestStockUseCase_LabelsAndList(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()
	created, err := f.stockUC.Create(ctx, purchase(
		phones("SN-0001", "SN-0002"),
		dto.StockItemRequest{ProductID: "p-cable", Quantity: decimal.NewFromInt(3), UnitCost: decimal.NewFromInt(5000)},
	))
	require.NoError(t, err)

	pdf, err := f.stockUC.Labels(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "Factura FV-1001", f.renderer.title)
	require.Len(t, f.renderer.labels, 5)
	assert.Equal(t, "SN-0001", f.renderer.labels[0].Value)
	assert.Equal(t, "SN-0002", f.renderer.labels[1].Value)
	assert.Equal(t, "880002", f.renderer.labels[4].Value)

	list, err := f.stockUC.List(ctx, dto.StockListRequest{ProductID: "p-cable"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)

	_, err = f.stockUC.Labels(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestItemLabels_CapsNonUnique(t *testing.T) {
	item := entity.StockItem{ProductID: "p", ProductName: "Tornillo", Quantity: decimal.NewFromInt(500)}
	assert.Len(t, itemLabels(item, nil, "P-1"), maxLabelsPerItem)

	item.Quantity = decimal.Zero
	assert.Len(t, itemLabels(item, nil, "P-1"), 1)
}
