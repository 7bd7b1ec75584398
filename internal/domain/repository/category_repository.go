package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/category"
)

// CategoryRepository define el puerto de persistencia del árbol de categorías.
// El árbol se guarda completo como un único documento versionado.
type CategoryRepository interface {
	// Load devuelve el documento actual; uno vacío (versión 0) si nunca se guardó.
	Load(ctx context.Context) (*category.Document, error)
	// Save reemplaza el documento. Con expectedVersion != nil la escritura solo
	// procede si la versión almacenada coincide (domain.ErrConflict si no).
	// Devuelve la nueva versión.
	Save(ctx context.Context, doc *category.Document, expectedVersion *int64) (int64, error)
}
