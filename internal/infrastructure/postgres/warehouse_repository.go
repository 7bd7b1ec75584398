package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouses (id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.Name, w.Address, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Duplicate(domain.CodeDuplicateID, "id", "ya existe una bodega con id %q", w.ID)
		}
		return domain.WrapTransport("insert warehouse", w.ID, err)
	}
	return nil
}

// GetByID obtiene una bodega por ID; nil si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, `
		SELECT id, name, address, created_at, updated_at FROM warehouses WHERE id = $1`, id,
	).Scan(&w.ID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapTransport("get warehouse", id, err)
	}
	return &w, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE warehouses SET name = $2, address = $3, updated_at = $4 WHERE id = $1`,
		w.ID, w.Name, w.Address, w.UpdatedAt,
	)
	if err != nil {
		return domain.WrapTransport("update warehouse", w.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("bodega %q no encontrada", w.ID)
	}
	return nil
}

// List todas las bodegas por nombre.
func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, address, created_at, updated_at FROM warehouses ORDER BY name, id`)
	if err != nil {
		return nil, domain.WrapTransport("list warehouses", "", err)
	}
	defer rows.Close()
	list := []*entity.Warehouse{}
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, domain.WrapTransport("scan warehouse", "", err)
		}
		list = append(list, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapTransport("list warehouses", "", err)
	}
	return list, nil
}

// Delete elimina una bodega por ID. Falla con ErrReferential si tiene ingresos.
func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Referential(domain.CodeInUse, "la bodega %q tiene ingresos de stock", id)
		}
		return domain.WrapTransport("delete warehouse", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("bodega %q no encontrada", id)
	}
	return nil
}
