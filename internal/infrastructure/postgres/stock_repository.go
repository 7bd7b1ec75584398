package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo persiste ingresos de stock; las líneas y sus filas dinámicas se
// guardan embebidas en la columna items (JSONB).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// stockItemRecord forma persistida de entity.StockItem.
type stockItemRecord struct {
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	IdentifierType string          `json:"identifierType"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	Rows           []field.Row     `json:"rows,omitempty"`
	DynamicValues  map[string]any  `json:"dynamicValues,omitempty"`
}

func encodeItems(items []entity.StockItem) ([]byte, error) {
	records := make([]stockItemRecord, 0, len(items))
	for _, it := range items {
		records = append(records, stockItemRecord{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			IdentifierType: string(it.IdentifierType),
			Quantity:       it.Quantity,
			UnitCost:       it.UnitCost,
			Rows:           it.Rows,
			DynamicValues:  it.DynamicValues,
		})
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode stock items: %w", err)
	}
	return raw, nil
}

func decodeItems(raw []byte) ([]entity.StockItem, error) {
	var records []stockItemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode stock items: %w", err)
	}
	items := make([]entity.StockItem, 0, len(records))
	for _, r := range records {
		items = append(items, entity.StockItem{
			ProductID:      r.ProductID,
			ProductName:    r.ProductName,
			IdentifierType: field.IdentifierType(r.IdentifierType),
			Quantity:       r.Quantity,
			UnitCost:       r.UnitCost,
			Rows:           r.Rows,
			DynamicValues:  r.DynamicValues,
		})
	}
	return items, nil
}

const stockColumns = `id, vendor_id, warehouse_id, invoice_number, purchase_date, items, notes, created_at, updated_at`

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	var raw []byte
	if err := row.Scan(&s.ID, &s.VendorID, &s.WarehouseID, &s.InvoiceNumber, &s.PurchaseDate,
		&raw, &s.Notes, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	items, err := decodeItems(raw)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

// Create persiste un ingreso nuevo.
func (r *StockRepo) Create(ctx context.Context, stock *entity.Stock) error {
	items, err := encodeItems(stock.Items)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO stocks (`+stockColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		stock.ID, stock.VendorID, stock.WarehouseID, stock.InvoiceNumber, stock.PurchaseDate,
		items, stock.Notes, stock.CreatedAt, stock.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Duplicate(domain.CodeDuplicateID, "id", "ya existe un ingreso con id %q", stock.ID)
		}
		return domain.WrapTransport("insert stock", stock.ID, err)
	}
	return nil
}

// GetByID obtiene un ingreso; nil si no existe.
func (r *StockRepo) GetByID(ctx context.Context, id string) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, `SELECT `+stockColumns+` FROM stocks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapTransport("get stock", id, err)
	}
	return s, nil
}

// Update reemplaza el documento del ingreso.
func (r *StockRepo) Update(ctx context.Context, stock *entity.Stock) error {
	items, err := encodeItems(stock.Items)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE stocks SET vendor_id = $2, warehouse_id = $3, invoice_number = $4, purchase_date = $5,
			items = $6, notes = $7, updated_at = $8
		WHERE id = $1`,
		stock.ID, stock.VendorID, stock.WarehouseID, stock.InvoiceNumber, stock.PurchaseDate,
		items, stock.Notes, stock.UpdatedAt,
	)
	if err != nil {
		return domain.WrapTransport("update stock", stock.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("ingreso %q no encontrado", stock.ID)
	}
	return nil
}

// List lista ingresos por fecha de compra descendente aplicando los filtros no vacíos.
func (r *StockRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.Stock, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.VendorID != "" {
		add("vendor_id = $%d", f.VendorID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.ProductID != "" {
		probe, _ := json.Marshal([]map[string]string{{"productId": f.ProductID}})
		add("items @> $%d::jsonb", string(probe))
	}
	query := `SELECT ` + stockColumns + ` FROM stocks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, max(f.Offset, 0))
	query += fmt.Sprintf(" ORDER BY purchase_date DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapTransport("list stocks", "", err)
	}
	defer rows.Close()
	list := []*entity.Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, domain.WrapTransport("scan stock", "", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapTransport("list stocks", "", err)
	}
	return list, nil
}
