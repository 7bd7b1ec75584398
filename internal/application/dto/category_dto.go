package dto

import "github.com/jhoicas/catalogo-api/internal/domain/category"

// CategoryDocumentRequest cuerpo de PUT /categories: reemplaza el árbol completo.
// Version (o el header If-Match) activa la escritura condicional.
type CategoryDocumentRequest struct {
	List    []*category.Node `json:"list"`
	Version *int64           `json:"version,omitempty"`
}

// CategoryDocumentResponse documento completo con su versión.
type CategoryDocumentResponse struct {
	List    []*category.Node `json:"list"`
	Version int64            `json:"version"`
}

// CreateCategoryNodeRequest entrada para insertar un nodo. ParentID vacío = raíz.
type CreateCategoryNodeRequest struct {
	ParentID       string `json:"parentId" validate:"max=100"`
	ID             string `json:"id" validate:"max=100"`
	Name           string `json:"name" validate:"required,max=200"`
	Slug           string `json:"slug" validate:"max=200"`
	AllowItemEntry bool   `json:"allowItemEntry"`
	ProductName    string `json:"productName" validate:"max=200"`
	Version        *int64 `json:"version,omitempty"`
}

// UpdateCategoryNodeRequest cambios parciales sobre un nodo.
type UpdateCategoryNodeRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=200"`
	Slug           *string `json:"slug" validate:"omitempty,max=200"`
	AllowItemEntry *bool   `json:"allowItemEntry"`
	ProductName    *string `json:"productName" validate:"omitempty,max=200"`
	Version        *int64  `json:"version,omitempty"`
}

// MoveCategoryNodeRequest nuevo padre del nodo. ParentID vacío = raíz.
type MoveCategoryNodeRequest struct {
	ParentID string `json:"parentId" validate:"max=100"`
	Version  *int64 `json:"version,omitempty"`
}

// CategoryNodeResponse nodo (con sus hijos) y versión del documento resultante.
type CategoryNodeResponse struct {
	Node    *category.Node `json:"node"`
	Version int64          `json:"version"`
}

// CategoryPathResponse nombres desde la raíz hasta el nodo.
type CategoryPathResponse struct {
	ID   string   `json:"id"`
	Path []string `json:"path"`
}

// FlatCategoryResponse entrada de la lista plana en pre-orden.
type FlatCategoryResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	AllowItemEntry bool     `json:"allowItemEntry"`
	ParentID       string   `json:"parentId,omitempty"`
	Depth          int      `json:"depth"`
	Path           []string `json:"path"`
}

// DeleteCategoryResponse ids eliminados (el nodo y su subárbol).
type DeleteCategoryResponse struct {
	RemovedIDs []string `json:"removedIds"`
	Version    int64    `json:"version"`
}
