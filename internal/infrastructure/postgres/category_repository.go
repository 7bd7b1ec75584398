package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/category"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// El árbol vive en una sola fila.
const categoryDocumentID = 1

// CategoryRepo persiste el árbol de categorías como un documento JSONB versionado.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

type storedDocument struct {
	List []*category.Node `json:"list"`
}

// Load obtiene el documento; si no existe devuelve un árbol vacío con versión 0.
func (r *CategoryRepo) Load(ctx context.Context) (*category.Document, error) {
	var raw []byte
	var version int64
	err := r.q.QueryRow(ctx,
		`SELECT document, version FROM category_documents WHERE id = $1`, categoryDocumentID,
	).Scan(&raw, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &category.Document{List: []*category.Node{}}, nil
		}
		return nil, domain.WrapTransport("load categories", "", err)
	}
	var stored storedDocument
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, domain.WrapTransport("decode categories", "", err)
	}
	if stored.List == nil {
		stored.List = []*category.Node{}
	}
	return &category.Document{List: stored.List, Version: version}, nil
}

// Save reemplaza el documento completo. Sin expectedVersion gana la última
// escritura; con expectedVersion la actualización es condicional.
func (r *CategoryRepo) Save(ctx context.Context, doc *category.Document, expectedVersion *int64) (int64, error) {
	list := doc.List
	if list == nil {
		list = []*category.Node{}
	}
	raw, err := json.Marshal(storedDocument{List: list})
	if err != nil {
		return 0, fmt.Errorf("encode categories: %w", err)
	}

	var version int64
	switch {
	case expectedVersion == nil:
		err = r.q.QueryRow(ctx, `
			INSERT INTO category_documents (id, document, version, updated_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (id) DO UPDATE
			SET document = EXCLUDED.document, version = category_documents.version + 1, updated_at = now()
			RETURNING version`, categoryDocumentID, raw,
		).Scan(&version)
	case *expectedVersion == 0:
		err = r.q.QueryRow(ctx, `
			INSERT INTO category_documents (id, document, version, updated_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (id) DO NOTHING
			RETURNING version`, categoryDocumentID, raw,
		).Scan(&version)
	default:
		err = r.q.QueryRow(ctx, `
			UPDATE category_documents
			SET document = $2, version = version + 1, updated_at = now()
			WHERE id = $1 AND version = $3
			RETURNING version`, categoryDocumentID, raw, *expectedVersion,
		).Scan(&version)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.Conflict("las categorías fueron modificadas por otra sesión (versión esperada %d)", *expectedVersion)
		}
		return 0, domain.WrapTransport("save categories", "", err)
	}
	return version, nil
}
