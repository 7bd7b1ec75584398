package usecase

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/category"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
)

// Cache caché compartido de lectura, invalidado tras cada escritura exitosa.
// Implementado por infrastructure/cache.
type Cache interface {
	FetchJSON(ctx context.Context, key string, dest any, loader func(ctx context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// CategoryLookup resuelve nodos del árbol actual (validación de productGroupId).
type CategoryLookup interface {
	FindNode(ctx context.Context, id string) (*category.Node, error)
}

// FieldSource provee el registro vigente de definiciones de campo.
type FieldSource interface {
	Registry(ctx context.Context) (*field.Registry, error)
}

// Label una etiqueta de código de barras.
type Label struct {
	Title    string
	Subtitle string
	Value    string
}

// LabelRenderer genera la hoja de etiquetas (PDF). Implementado por infrastructure/pdf.
type LabelRenderer interface {
	RenderLabels(ctx context.Context, title string, labels []Label) ([]byte, error)
}
