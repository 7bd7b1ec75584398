package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, code, description, product_group_id, identifier_type,
	selected_field_ids, field_configurations, price, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var identifier string
	var configs []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.ProductGroupID, &identifier,
		&p.SelectedFieldIDs, &configs, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.IdentifierType = field.IdentifierType(identifier)
	if len(configs) > 0 {
		if err := json.Unmarshal(configs, &p.FieldConfigurations); err != nil {
			return nil, fmt.Errorf("decode field configurations: %w", err)
		}
	}
	return &p, nil
}

func encodeConfigs(p *entity.Product) ([]byte, error) {
	configs := p.FieldConfigurations
	if configs == nil {
		configs = []field.Definition{}
	}
	return json.Marshal(configs)
}

func selectedIDs(p *entity.Product) []string {
	if p.SelectedFieldIDs == nil {
		return []string{}
	}
	return p.SelectedFieldIDs
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	configs, err := encodeConfigs(product)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		product.ID, product.Name, product.Code, product.Description, product.ProductGroupID,
		string(product.IdentifierType), selectedIDs(product), configs, product.Price,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Duplicate(domain.CodeDuplicateID, "id", "ya existe un producto con id %q", product.ID)
		}
		return domain.WrapTransport("insert product", product.ID, err)
	}
	return nil
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapTransport("get product", id, err)
	}
	return p, nil
}

// Update actualiza un producto existente.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	configs, err := encodeConfigs(product)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, code = $3, description = $4, product_group_id = $5, identifier_type = $6,
			selected_field_ids = $7, field_configurations = $8, price = $9, updated_at = $10
		WHERE id = $1`,
		product.ID, product.Name, product.Code, product.Description, product.ProductGroupID,
		string(product.IdentifierType), selectedIDs(product), configs, product.Price, product.UpdatedAt,
	)
	if err != nil {
		return domain.WrapTransport("update product", product.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto %q no encontrado", product.ID)
	}
	return nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return domain.WrapTransport("delete product", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto %q no encontrado", id)
	}
	return nil
}

// List lista productos con paginación, más recientes primero.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return r.list(ctx, "list products",
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListByGroupIDs productos cuyo product_group_id está en groupIDs.
func (r *ProductRepo) ListByGroupIDs(ctx context.Context, groupIDs []string) ([]*entity.Product, error) {
	if len(groupIDs) == 0 {
		return []*entity.Product{}, nil
	}
	return r.list(ctx, "list products by group",
		`SELECT `+productColumns+` FROM products WHERE product_group_id = ANY($1) ORDER BY created_at, id`, groupIDs)
}

func (r *ProductRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapTransport(op, "", err)
	}
	defer rows.Close()
	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.WrapTransport("scan product", "", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapTransport(op, "", err)
	}
	return list, nil
}
