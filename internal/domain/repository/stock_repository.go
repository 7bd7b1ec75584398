package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// StockFilter filtros opcionales para listar ingresos.
type StockFilter struct {
	VendorID    string
	WarehouseID string
	ProductID   string
	Limit       int
	Offset      int
}

// StockRepository define el puerto de persistencia para ingresos de stock.
type StockRepository interface {
	Create(ctx context.Context, stock *entity.Stock) error
	GetByID(ctx context.Context, id string) (*entity.Stock, error)
	Update(ctx context.Context, stock *entity.Stock) error
	List(ctx context.Context, filter StockFilter) ([]*entity.Stock, error)
}
