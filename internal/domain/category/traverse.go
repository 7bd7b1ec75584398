package category

// PathTo nombres desde la raíz hasta id; nil si id no existe.
func (t *Tree) PathTo(id string) []string {
	var path []string
	var visit func(list []*Node, prefix []string) bool
	visit = func(list []*Node, prefix []string) bool {
		for _, n := range list {
			cur := append(prefix[:len(prefix):len(prefix)], n.Name)
			if n.ID == id {
				path = cur
				return true
			}
			if visit(n.Children, cur) {
				return true
			}
		}
		return false
	}
	visit(t.roots, nil)
	return path
}

// Flatten recorrido en pre-orden (el padre siempre antes que sus hijos).
func (t *Tree) Flatten() []FlatNode {
	out := make([]FlatNode, 0)
	var visit func(list []*Node, parentID string, prefix []string, depth int)
	visit = func(list []*Node, parentID string, prefix []string, depth int) {
		for _, n := range list {
			path := append(prefix[:len(prefix):len(prefix)], n.Name)
			out = append(out, FlatNode{Node: n, ParentID: parentID, Depth: depth, Path: path})
			visit(n.Children, n.ID, path, depth+1)
		}
	}
	visit(t.roots, "", nil, 0)
	return out
}

// Leaves categorías que admiten productos, en pre-orden.
func (t *Tree) Leaves() []FlatNode {
	var out []FlatNode
	for _, f := range t.Flatten() {
		if f.Node.AllowItemEntry {
			out = append(out, f)
		}
	}
	return out
}

// Rebuild reconstruye un árbol desde un recorrido plano usando ParentID.
// Los nodos se copian sin hijos; el orden relativo se conserva. Un ParentID
// desconocido deja el nodo como raíz.
func Rebuild(flat []FlatNode, opts ...Option) *Tree {
	byID := make(map[string]*Node, len(flat))
	roots := []*Node{}
	for _, f := range flat {
		n := *f.Node
		n.Children = []*Node{}
		byID[n.ID] = &n
		if parent, ok := byID[f.ParentID]; ok && f.ParentID != "" {
			parent.Children = append(parent.Children, &n)
			continue
		}
		roots = append(roots, &n)
	}
	return New(roots, opts...)
}
