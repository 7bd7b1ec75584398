package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.VendorRepository = (*VendorRepo)(nil)

// VendorRepo implementación del puerto VendorRepository sobre PostgreSQL.
type VendorRepo struct {
	q Querier
}

// NewVendorRepository construye el adaptador de persistencia para proveedores.
func NewVendorRepository(q Querier) *VendorRepo {
	return &VendorRepo{q: q}
}

const vendorColumns = `id, name, contact_name, phone, email, address, tax_id, status, created_at, updated_at`

func scanVendor(row pgx.Row) (*entity.Vendor, error) {
	var v entity.Vendor
	err := row.Scan(&v.ID, &v.Name, &v.ContactName, &v.Phone, &v.Email, &v.Address, &v.TaxID,
		&v.Status, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

// Create persiste un nuevo proveedor.
func (r *VendorRepo) Create(ctx context.Context, v *entity.Vendor) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO vendors (`+vendorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.Name, v.ContactName, v.Phone, v.Email, v.Address, v.TaxID, v.Status, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Duplicate(domain.CodeDuplicateID, "id", "ya existe un proveedor con id %q", v.ID)
		}
		return domain.WrapTransport("insert vendor", v.ID, err)
	}
	return nil
}

// GetByID obtiene un proveedor; nil si no existe.
func (r *VendorRepo) GetByID(ctx context.Context, id string) (*entity.Vendor, error) {
	v, err := scanVendor(r.q.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapTransport("get vendor", id, err)
	}
	return v, nil
}

// Update actualiza un proveedor existente.
func (r *VendorRepo) Update(ctx context.Context, v *entity.Vendor) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE vendors SET name = $2, contact_name = $3, phone = $4, email = $5, address = $6,
			tax_id = $7, status = $8, updated_at = $9
		WHERE id = $1`,
		v.ID, v.Name, v.ContactName, v.Phone, v.Email, v.Address, v.TaxID, v.Status, v.UpdatedAt,
	)
	if err != nil {
		return domain.WrapTransport("update vendor", v.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("proveedor %q no encontrado", v.ID)
	}
	return nil
}

// Delete elimina un proveedor. Falla con ErrReferential si tiene ingresos.
func (r *VendorRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Referential(domain.CodeInUse, "el proveedor %q tiene ingresos de stock", id)
		}
		return domain.WrapTransport("delete vendor", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("proveedor %q no encontrado", id)
	}
	return nil
}

// List todos los proveedores por nombre.
func (r *VendorRepo) List(ctx context.Context) ([]*entity.Vendor, error) {
	rows, err := r.q.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name, id`)
	if err != nil {
		return nil, domain.WrapTransport("list vendors", "", err)
	}
	defer rows.Close()
	list := []*entity.Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, domain.WrapTransport("scan vendor", "", err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapTransport("list vendors", "", err)
	}
	return list, nil
}
