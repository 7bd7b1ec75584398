// Package category mantiene el árbol jerárquico de categorías de producto
// (grupos de producto) y sus invariantes: nombres únicos en todo el árbol
// y hojas terminales (allowItemEntry) que nunca reciben hijos.
package category

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
)

// Node representa una categoría. Un hijo pertenece a exactamente un padre.
type Node struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	AllowItemEntry bool    `json:"allowItemEntry"`
	ProductName    string  `json:"productName,omitempty"`
	Children       []*Node `json:"children"`
}

// MarshalJSON serializa children como [] aunque el slice sea nil.
func (n *Node) MarshalJSON() ([]byte, error) {
	type alias Node
	out := alias(*n)
	if out.Children == nil {
		out.Children = []*Node{}
	}
	return json.Marshal(out)
}

// IsLeaf indica si la categoría admite productos.
func (n *Node) IsLeaf() bool { return n.AllowItemEntry }

func (n *Node) clone() *Node {
	c := *n
	c.Children = make([]*Node, 0, len(n.Children))
	for _, ch := range n.Children {
		c.Children = append(c.Children, ch.clone())
	}
	return &c
}

// Document es el documento persistido completo: {list: [...]} más la versión
// con la que se leyó (0 si nunca se guardó).
type Document struct {
	List    []*Node `json:"list"`
	Version int64   `json:"version"`
}

// NodeInput datos para crear una categoría.
type NodeInput struct {
	ID             string
	Name           string
	Slug           string
	AllowItemEntry bool
	ProductName    string
}

// NodeUpdate cambios parciales sobre una categoría; nil = sin cambio.
type NodeUpdate struct {
	Name           *string
	Slug           *string
	AllowItemEntry *bool
	ProductName    *string
}

// ProductRef identifica un producto que referencia una categoría.
type ProductRef struct {
	ID   string
	Name string
}

// ProductRefs agrupa productos por productGroupId.
type ProductRefs map[string][]ProductRef

// DeleteResult ids eliminados en pre-orden (el nodo pedido primero).
type DeleteResult struct {
	RemovedIDs []string `json:"removedIds"`
}

// FlatNode es un nodo del recorrido en pre-orden con su profundidad y ruta.
type FlatNode struct {
	Node     *Node
	ParentID string
	Depth    int
	Path     []string
}

// normalizeName aplica trim + case folding Unicode para comparar nombres.
func normalizeName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
