package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/field"
)

// FieldRepository define el puerto de persistencia para definiciones de campo (fieldMasters).
type FieldRepository interface {
	List(ctx context.Context) ([]field.Definition, error)
	GetByID(ctx context.Context, id string) (*field.Definition, error)
	Create(ctx context.Context, def *field.Definition) error
	Update(ctx context.Context, def *field.Definition) error
	Delete(ctx context.Context, id string) error
}
