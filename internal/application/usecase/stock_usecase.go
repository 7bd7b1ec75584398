package usecase

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// maxLabelsPerItem tope de etiquetas repetidas para un ítem NON_UNIQUE.
const maxLabelsPerItem = 50

// StockUseCase registra ingresos de mercancía validando las filas de captura
// de cada producto contra sus campos resueltos.
type StockUseCase struct {
	repo       repository.StockRepository
	products   repository.ProductRepository
	vendors    repository.VendorRepository
	warehouses repository.WarehouseRepository
	fields     FieldSource
	labels     LabelRenderer
	log        *logger.Logger
	now        func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	repo repository.StockRepository,
	products repository.ProductRepository,
	vendors repository.VendorRepository,
	warehouses repository.WarehouseRepository,
	fields FieldSource,
	labels LabelRenderer,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{
		repo:       repo,
		products:   products,
		vendors:    vendors,
		warehouses: warehouses,
		fields:     fields,
		labels:     labels,
		log:        log,
		now:        time.Now,
	}
}

// Create valida y registra un ingreso.
func (uc *StockUseCase) Create(ctx context.Context, in dto.StockRequest) (*dto.StockResponse, error) {
	now := uc.now()
	stock := &entity.Stock{ID: strings.TrimSpace(in.ID), CreatedAt: now, UpdatedAt: now}
	if stock.ID == "" {
		stock.ID = uuid.New().String()
	}
	if err := uc.apply(ctx, stock, in); err != nil {
		uc.log.Debug().Str("code", string(domain.CodeOf(err))).Err(err).Msg("ingreso de stock rechazado")
		return nil, err
	}
	if err := uc.repo.Create(ctx, stock); err != nil {
		return nil, err
	}
	uc.log.Info().Str("stock_id", stock.ID).Int("items", len(stock.Items)).Str("total", stock.Total().String()).Msg("ingreso de stock registrado")
	return toStockResponse(stock), nil
}

// Update reemplaza las líneas y datos del ingreso id.
func (uc *StockUseCase) Update(ctx context.Context, id string, in dto.StockRequest) (*dto.StockResponse, error) {
	stock, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(ctx, stock, in); err != nil {
		return nil, err
	}
	stock.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, stock); err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}

// GetByID obtiene un ingreso.
func (uc *StockUseCase) GetByID(ctx context.Context, id string) (*dto.StockResponse, error) {
	stock, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}

func (uc *StockUseCase) find(ctx context.Context, id string) (*entity.Stock, error) {
	stock, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.NotFound("ingreso %q no encontrado", id)
	}
	return stock, nil
}

// List lista ingresos filtrando por proveedor, bodega o producto.
func (uc *StockUseCase) List(ctx context.Context, in dto.StockListRequest) (*dto.StockListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.StockFilter{
		VendorID:    in.VendorID,
		WarehouseID: in.WarehouseID,
		ProductID:   in.ProductID,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStockResponse(s))
	}
	return &dto.StockListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// apply carga proveedor, bodega, productos y registro en paralelo, valida cada
// línea y copia el resultado sobre stock.
func (uc *StockUseCase) apply(ctx context.Context, stock *entity.Stock, in dto.StockRequest) error {
	purchaseDate, err := time.Parse(field.DateLayout, strings.TrimSpace(in.PurchaseDate))
	if err != nil {
		return domain.Validation(domain.CodeInvalidInput, "purchaseDate", "purchaseDate debe ser una fecha YYYY-MM-DD")
	}
	if len(in.Items) == 0 {
		return domain.Validation(domain.CodeInvalidInput, "items", "el ingreso requiere al menos un ítem")
	}
	seen := make(map[string]int, len(in.Items))
	for i, item := range in.Items {
		if j, dup := seen[item.ProductID]; dup {
			return domain.Validation(domain.CodeInvalidInput, "items",
				"el producto %q se repite en los ítems %d y %d", item.ProductID, j+1, i+1).
				WithDetails(map[string]any{"item": i, "conflictItem": j})
		}
		seen[item.ProductID] = i
	}

	products := make([]*entity.Product, len(in.Items))
	var reg *field.Registry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := uc.vendors.GetByID(gctx, in.VendorID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.Validation(domain.CodeInvalidInput, "vendorId", "el proveedor %q no existe", in.VendorID)
		}
		if !v.IsActive() {
			return domain.Validation(domain.CodeInvalidInput, "vendorId", "el proveedor %q está inactivo", v.Name)
		}
		return nil
	})
	g.Go(func() error {
		w, err := uc.warehouses.GetByID(gctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.Validation(domain.CodeInvalidInput, "warehouseId", "la bodega %q no existe", in.WarehouseID)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reg, err = uc.fields.Registry(gctx)
		return err
	})
	for i, item := range in.Items {
		g.Go(func() error {
			p, err := uc.products.GetByID(gctx, item.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return atItem(domain.Validation(domain.CodeInvalidInput, "productId", "el producto %q no existe", item.ProductID), i)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	items := make([]entity.StockItem, 0, len(in.Items))
	for i, req := range in.Items {
		item, err := buildItem(products[i], reg.ResolveFieldsFor(products[i].FieldSelection()), req)
		if err != nil {
			return atItem(err, i)
		}
		items = append(items, item)
	}

	stock.VendorID = in.VendorID
	stock.WarehouseID = in.WarehouseID
	stock.InvoiceNumber = strings.TrimSpace(in.InvoiceNumber)
	stock.PurchaseDate = purchaseDate
	stock.Notes = in.Notes
	stock.Items = items
	return nil
}

// buildItem valida una línea: UNIQUE exige una fila por unidad sin valores
// repetidos; NON_UNIQUE exige cantidad positiva y valores dinámicos válidos.
func buildItem(p *entity.Product, fields []field.Definition, req dto.StockItemRequest) (entity.StockItem, error) {
	if req.UnitCost.IsNegative() {
		return entity.StockItem{}, domain.Validation(domain.CodeInvalidInput, "unitCost", "el costo unitario no puede ser negativo")
	}
	item := entity.StockItem{
		ProductID:      p.ID,
		ProductName:    p.Name,
		IdentifierType: p.IdentifierType,
		UnitCost:       req.UnitCost,
	}
	if p.IdentifierType == field.Unique {
		if len(req.Rows) == 0 {
			return entity.StockItem{}, domain.Validation(domain.CodeInvalidInput, "rows", "el producto %q requiere una fila por unidad", p.Name)
		}
		if len(req.DynamicValues) > 0 {
			return entity.StockItem{}, domain.Validation(domain.CodeInvalidInput, "dynamicValues", "los productos UNIQUE se capturan por filas")
		}
		batch := field.NewEntryBatch(field.Unique, fields)
		for _, r := range req.Rows {
			if err := batch.Append(field.Row(r)); err != nil {
				return entity.StockItem{}, withRow(err, batch.Len())
			}
		}
		if err := batch.Validate(); err != nil {
			return entity.StockItem{}, err
		}
		qty := decimal.NewFromInt(int64(batch.Len()))
		if !req.Quantity.IsZero() && !req.Quantity.Equal(qty) {
			return entity.StockItem{}, domain.Validation(domain.CodeInvalidInput, "quantity",
				"la cantidad (%s) debe coincidir con el número de filas (%d)", req.Quantity, batch.Len())
		}
		item.Quantity = qty
		item.Rows = batch.Rows()
		return item, nil
	}
	if len(req.Rows) > 0 {
		return entity.StockItem{}, domain.Validation(domain.CodeInvalidInput, "rows", "los productos NON_UNIQUE se capturan por cantidad")
	}
	if !req.Quantity.IsPositive() {
		return entity.StockItem{}, domain.Validation(domain.CodeInvalidInput, "quantity", "la cantidad debe ser mayor que cero")
	}
	if err := field.ValidateValues(fields, req.DynamicValues); err != nil {
		return entity.StockItem{}, err
	}
	item.Quantity = req.Quantity
	item.DynamicValues = maps.Clone(req.DynamicValues)
	return item, nil
}

// atItem antepone el ítem al mensaje y lo agrega a los detalles.
func atItem(err error, idx int) error {
	return annotate(err, fmt.Sprintf("ítem %d", idx+1), "item", idx)
}

func withRow(err error, idx int) error {
	return annotate(err, fmt.Sprintf("fila %d", idx+1), "row", idx)
}

func annotate(err error, prefix, key string, idx int) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return err
	}
	details := map[string]any{key: idx}
	maps.Copy(details, de.Details)
	cp := *de
	cp.Message = prefix + ": " + de.Message
	cp.Details = details
	return &cp
}

// Labels hoja PDF con una etiqueta por unidad (UNIQUE) o por cantidad (NON_UNIQUE).
func (uc *StockUseCase) Labels(ctx context.Context, id string) ([]byte, error) {
	stock, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	reg, err := uc.fields.Registry(ctx)
	if err != nil {
		return nil, err
	}
	var labels []Label
	for _, item := range stock.Items {
		p, err := uc.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		var fields []field.Definition
		code := item.ProductID
		if p != nil {
			fields = reg.ResolveFieldsFor(p.FieldSelection())
			if p.Code != "" {
				code = p.Code
			}
		}
		labels = append(labels, itemLabels(item, fields, code)...)
	}
	title := "Ingreso " + stock.ID
	if stock.InvoiceNumber != "" {
		title = "Factura " + stock.InvoiceNumber
	}
	return uc.labels.RenderLabels(ctx, title, labels)
}

func itemLabels(item entity.StockItem, fields []field.Definition, code string) []Label {
	if item.IdentifierType == field.Unique {
		out := make([]Label, 0, len(item.Rows))
		for n, row := range item.Rows {
			value := rowLabelValue(fields, row)
			if value == "" {
				value = fmt.Sprintf("%s-%d", item.ProductID, n+1)
			}
			out = append(out, Label{Title: item.ProductName, Subtitle: code, Value: value})
		}
		return out
	}
	n := int(item.Quantity.IntPart())
	n = min(max(n, 1), maxLabelsPerItem)
	out := make([]Label, 0, n)
	for range n {
		out = append(out, Label{Title: item.ProductName, Subtitle: item.Quantity.String() + " und", Value: code})
	}
	return out
}

// rowLabelValue primer valor no vacío de un campo que no sea checkbox, en el
// orden de los campos; sin campos se usa el orden alfabético de las claves.
func rowLabelValue(fields []field.Definition, row field.Row) string {
	if len(fields) == 0 {
		keys := slices.Sorted(maps.Keys(row))
		for _, k := range keys {
			if _, isBool := row[k].(bool); isBool {
				continue
			}
			if v := field.CellString(row[k]); v != "" {
				return v
			}
		}
		return ""
	}
	for _, f := range fields {
		if f.Type == field.TypeCheckbox {
			continue
		}
		if v := field.CellString(row[f.Key]); v != "" {
			return v
		}
	}
	return ""
}

func toStockResponse(s *entity.Stock) *dto.StockResponse {
	items := make([]dto.StockItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.StockItemResponse{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			IdentifierType: it.IdentifierType,
			Quantity:       it.Quantity,
			UnitCost:       it.UnitCost,
			Subtotal:       it.Subtotal(),
			Rows:           it.Rows,
			DynamicValues:  it.DynamicValues,
		})
	}
	return &dto.StockResponse{
		ID:            s.ID,
		VendorID:      s.VendorID,
		WarehouseID:   s.WarehouseID,
		InvoiceNumber: s.InvoiceNumber,
		PurchaseDate:  s.PurchaseDate.Format(field.DateLayout),
		Items:         items,
		Total:         s.Total(),
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
