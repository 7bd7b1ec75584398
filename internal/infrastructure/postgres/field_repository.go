package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.FieldRepository = (*FieldRepo)(nil)

// FieldRepo persiste definiciones de campo; la definición completa va en JSONB
// y key se duplica en columna para el constraint único.
type FieldRepo struct {
	q Querier
}

// NewFieldRepository construye el adaptador de persistencia para fieldMasters.
func NewFieldRepository(q Querier) *FieldRepo {
	return &FieldRepo{q: q}
}

// List todas las definiciones en orden de registro.
func (r *FieldRepo) List(ctx context.Context) ([]field.Definition, error) {
	rows, err := r.q.Query(ctx, `SELECT definition FROM field_masters ORDER BY position`)
	if err != nil {
		return nil, domain.WrapTransport("list field masters", "", err)
	}
	defer rows.Close()
	list := []field.Definition{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, domain.WrapTransport("scan field master", "", err)
		}
		var def field.Definition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("decode field master: %w", err)
		}
		list = append(list, def)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapTransport("list field masters", "", err)
	}
	return list, nil
}

// GetByID obtiene una definición; nil si no existe.
func (r *FieldRepo) GetByID(ctx context.Context, id string) (*field.Definition, error) {
	var raw []byte
	err := r.q.QueryRow(ctx, `SELECT definition FROM field_masters WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapTransport("get field master", id, err)
	}
	var def field.Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode field master: %w", err)
	}
	return &def, nil
}

// Create persiste una definición nueva.
func (r *FieldRepo) Create(ctx context.Context, def *field.Definition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode field master: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO field_masters (id, key, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		def.ID, def.Key, raw, def.CreatedAt, def.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if uniqueConstraint(err) == "field_masters_key_key" {
				return domain.Duplicate(domain.CodeDuplicateKey, "key", "ya existe un campo con la clave %q", def.Key)
			}
			return domain.Duplicate(domain.CodeDuplicateID, "id", "ya existe un campo con id %q", def.ID)
		}
		return domain.WrapTransport("insert field master", def.ID, err)
	}
	return nil
}

// Update reemplaza una definición existente.
func (r *FieldRepo) Update(ctx context.Context, def *field.Definition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode field master: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE field_masters SET key = $2, definition = $3, updated_at = $4 WHERE id = $1`,
		def.ID, def.Key, raw, def.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Duplicate(domain.CodeDuplicateKey, "key", "ya existe un campo con la clave %q", def.Key)
		}
		return domain.WrapTransport("update field master", def.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("campo %q no encontrado", def.ID)
	}
	return nil
}

// Delete elimina la definición.
func (r *FieldRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM field_masters WHERE id = $1`, id)
	if err != nil {
		return domain.WrapTransport("delete field master", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("campo %q no encontrado", id)
	}
	return nil
}
