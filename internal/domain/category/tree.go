package category

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

// Tree árbol de categorías en memoria. No es seguro para uso concurrente:
// cada operación de la aplicación trabaja sobre su propia copia.
type Tree struct {
	roots []*Node
	newID func() string
}

// Option configura un Tree.
type Option func(*Tree)

// WithIDGenerator reemplaza el generador de ids (por defecto uuid).
func WithIDGenerator(fn func() string) Option {
	return func(t *Tree) { t.newID = fn }
}

// New construye un árbol tomando posesión de roots. Completa children nil y
// slugs vacíos; no valida invariantes (ver Validate).
func New(roots []*Node, opts ...Option) *Tree {
	t := &Tree{roots: roots, newID: uuid.NewString}
	if t.roots == nil {
		t.roots = []*Node{}
	}
	for _, o := range opts {
		o(t)
	}
	t.walk(func(n *Node, _ *Node, _ int) bool {
		n.Name = strings.TrimSpace(n.Name)
		if n.Children == nil {
			n.Children = []*Node{}
		}
		if n.Slug == "" {
			n.Slug = slug.Make(n.Name)
		}
		return true
	})
	return t
}

// Roots devuelve la lista ordenada de raíces.
func (t *Tree) Roots() []*Node { return t.roots }

// Clone copia profunda del árbol.
func (t *Tree) Clone() *Tree {
	roots := make([]*Node, 0, len(t.roots))
	for _, r := range t.roots {
		roots = append(roots, r.clone())
	}
	return &Tree{roots: roots, newID: t.newID}
}

// Len cantidad total de nodos.
func (t *Tree) Len() int {
	n := 0
	t.walk(func(*Node, *Node, int) bool { n++; return true })
	return n
}

// walk recorre en pre-orden; fn devuelve false para detener el recorrido.
func (t *Tree) walk(fn func(n, parent *Node, depth int) bool) {
	var visit func(list []*Node, parent *Node, depth int) bool
	visit = func(list []*Node, parent *Node, depth int) bool {
		for _, n := range list {
			if !fn(n, parent, depth) {
				return false
			}
			if !visit(n.Children, n, depth+1) {
				return false
			}
		}
		return true
	}
	visit(t.roots, nil, 0)
}

func (t *Tree) locate(id string) (node, parent *Node) {
	t.walk(func(n, p *Node, _ int) bool {
		if n.ID == id {
			node, parent = n, p
			return false
		}
		return true
	})
	return node, parent
}

// FindByID búsqueda en profundidad; nil si no existe.
func (t *Tree) FindByID(id string) *Node {
	n, _ := t.locate(id)
	return n
}

// ParentOf devuelve el padre del nodo (nil si es raíz o no existe).
func (t *Tree) ParentOf(id string) *Node {
	_, p := t.locate(id)
	return p
}

// findByName busca un nodo con el mismo nombre normalizado, excluyendo excludeID.
func (t *Tree) findByName(name, excludeID string) *Node {
	want := normalizeName(name)
	var found *Node
	t.walk(func(n, _ *Node, _ int) bool {
		if n.ID != excludeID && normalizeName(n.Name) == want {
			found = n
			return false
		}
		return true
	})
	return found
}

func (t *Tree) checkName(name, excludeID string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domain.Validation(domain.CodeInvalidInput, "name", "el nombre de la categoría es requerido")
	}
	if dup := t.findByName(trimmed, excludeID); dup != nil {
		return "", domain.Duplicate(domain.CodeDuplicateName, "name",
			"ya existe una categoría llamada %q", dup.Name).
			WithDetails(map[string]any{"existingId": dup.ID})
	}
	return trimmed, nil
}

func (t *Tree) siblings(parent *Node) *[]*Node {
	if parent == nil {
		return &t.roots
	}
	return &parent.Children
}

// Insert agrega una categoría al final de los hijos de parentID ("" = raíz).
func (t *Tree) Insert(parentID string, in NodeInput) (*Node, error) {
	name, err := t.checkName(in.Name, "")
	if err != nil {
		return nil, err
	}
	var parent *Node
	if parentID != "" {
		parent = t.FindByID(parentID)
		if parent == nil {
			return nil, domain.NotFound("categoría padre %q no encontrada", parentID)
		}
		if parent.AllowItemEntry {
			return nil, domain.Structural(domain.CodeLeafViolation,
				"la categoría %q admite productos y no puede tener subcategorías", parent.Name)
		}
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = t.newID()
	} else if t.FindByID(id) != nil {
		return nil, domain.Duplicate(domain.CodeDuplicateID, "id", "ya existe una categoría con id %q", id)
	}
	s := strings.TrimSpace(in.Slug)
	if s == "" {
		s = slug.Make(name)
	}
	node := &Node{
		ID:             id,
		Name:           name,
		Slug:           s,
		AllowItemEntry: in.AllowItemEntry,
		ProductName:    in.ProductName,
		Children:       []*Node{},
	}
	list := t.siblings(parent)
	*list = append(*list, node)
	return node, nil
}

// Rename cambia el nombre; el propio nodo no cuenta como duplicado.
func (t *Tree) Rename(id, newName string) (*Node, error) {
	return t.Update(id, NodeUpdate{Name: &newName})
}

// SetAllowItemEntry marca o desmarca la categoría como terminal.
func (t *Tree) SetAllowItemEntry(id string, allow bool) (*Node, error) {
	return t.Update(id, NodeUpdate{AllowItemEntry: &allow})
}

// Update valida todos los cambios y solo entonces los aplica.
func (t *Tree) Update(id string, up NodeUpdate) (*Node, error) {
	node := t.FindByID(id)
	if node == nil {
		return nil, domain.NotFound("categoría %q no encontrada", id)
	}
	name := node.Name
	if up.Name != nil {
		n, err := t.checkName(*up.Name, id)
		if err != nil {
			return nil, err
		}
		name = n
	}
	if up.AllowItemEntry != nil && *up.AllowItemEntry && len(node.Children) > 0 {
		return nil, domain.Structural(domain.CodeHasChildren,
			"la categoría %q tiene %d subcategoría(s) y no puede marcarse como terminal", node.Name, len(node.Children))
	}
	node.Name = name
	if up.Slug != nil {
		s := strings.TrimSpace(*up.Slug)
		if s == "" {
			s = slug.Make(name)
		}
		node.Slug = s
	}
	if up.AllowItemEntry != nil {
		node.AllowItemEntry = *up.AllowItemEntry
	}
	if up.ProductName != nil {
		node.ProductName = *up.ProductName
	}
	return node, nil
}

// SubtreeIDs ids del subárbol de id (incluido) en pre-orden; nil si no existe.
func (t *Tree) SubtreeIDs(id string) []string {
	node := t.FindByID(id)
	if node == nil {
		return nil
	}
	ids := []string{}
	sub := &Tree{roots: []*Node{node}}
	sub.walk(func(n, _ *Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Delete elimina id y todo su subárbol si ningún producto referencia un nodo
// del subárbol. El primer nodo (pre-orden) con productos aparece en el error.
func (t *Tree) Delete(id string, refs ProductRefs) (DeleteResult, error) {
	node, parent := t.locate(id)
	if node == nil {
		return DeleteResult{}, domain.NotFound("categoría %q no encontrada", id)
	}
	ids := t.SubtreeIDs(id)
	for _, sid := range ids {
		products := refs[sid]
		if len(products) == 0 {
			continue
		}
		offender := t.FindByID(sid)
		first := products[0].Name
		if first == "" {
			first = products[0].ID
		}
		productIDs := make([]string, 0, len(products))
		for _, p := range products {
			productIDs = append(productIDs, p.ID)
		}
		return DeleteResult{}, domain.Referential(domain.CodeProductsExist,
			"no se puede eliminar %q: la categoría %q tiene %d producto(s) asociados (p. ej. %s)",
			node.Name, offender.Name, len(products), first).
			WithDetails(map[string]any{
				"categoryId":   offender.ID,
				"categoryName": offender.Name,
				"productCount": len(products),
				"productIds":   productIDs,
			})
	}
	list := t.siblings(parent)
	idx := slices.Index(*list, node)
	*list = slices.Delete(*list, idx, idx+1)
	return DeleteResult{RemovedIDs: ids}, nil
}

// Move reubica id como último hijo de newParentID ("" = raíz), revalidando
// hoja destino, ciclos y unicidad de nombre.
func (t *Tree) Move(id, newParentID string) (*Node, error) {
	node, parent := t.locate(id)
	if node == nil {
		return nil, domain.NotFound("categoría %q no encontrada", id)
	}
	var dest *Node
	if newParentID != "" {
		if slices.Contains(t.SubtreeIDs(id), newParentID) {
			return nil, domain.Structural(domain.CodeCycleAttempt,
				"no se puede mover %q dentro de sí misma o de una subcategoría", node.Name)
		}
		dest = t.FindByID(newParentID)
		if dest == nil {
			return nil, domain.NotFound("categoría destino %q no encontrada", newParentID)
		}
		if dest.AllowItemEntry {
			return nil, domain.Structural(domain.CodeLeafViolation,
				"la categoría %q admite productos y no puede tener subcategorías", dest.Name)
		}
	}
	if _, err := t.checkName(node.Name, node.ID); err != nil {
		return nil, err
	}
	if dest == parent {
		return node, nil
	}
	from := t.siblings(parent)
	idx := slices.Index(*from, node)
	*from = slices.Delete(*from, idx, idx+1)
	to := t.siblings(dest)
	*to = append(*to, node)
	return node, nil
}

// Validate verifica el árbol completo: ids y nombres no vacíos y únicos,
// hojas sin hijos. Se usa antes de reemplazar el documento entero.
func (t *Tree) Validate() error {
	ids := map[string]bool{}
	names := map[string]*Node{}
	var err error
	t.walk(func(n, _ *Node, _ int) bool {
		switch {
		case strings.TrimSpace(n.ID) == "":
			err = domain.Validation(domain.CodeInvalidInput, "id", "la categoría %q no tiene id", n.Name)
		case ids[n.ID]:
			err = domain.Duplicate(domain.CodeDuplicateID, "id", "id de categoría repetido %q", n.ID)
		case strings.TrimSpace(n.Name) == "":
			err = domain.Validation(domain.CodeInvalidInput, "name", "la categoría %q no tiene nombre", n.ID)
		case names[normalizeName(n.Name)] != nil:
			err = domain.Duplicate(domain.CodeDuplicateName, "name", "ya existe una categoría llamada %q", n.Name)
		case n.AllowItemEntry && len(n.Children) > 0:
			err = domain.Structural(domain.CodeLeafViolation,
				"la categoría %q admite productos y no puede tener subcategorías", n.Name)
		}
		if err != nil {
			return false
		}
		ids[n.ID] = true
		names[normalizeName(n.Name)] = n
		return true
	})
	return err
}
