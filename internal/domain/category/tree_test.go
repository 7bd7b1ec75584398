package category_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/category"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func sequentialIDs() category.Option {
	n := 0
	return category.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("cat_%d", n)
	})
}

func mustInsert(t *testing.T, tree *category.Tree, parentID, name string, leaf bool) *category.Node {
	t.Helper()
	n, err := tree.Insert(parentID, category.NodeInput{Name: name, AllowItemEntry: leaf})
	require.NoError(t, err, "insert %q", name)
	return n
}

func codeOf(err error) domain.Code { return domain.CodeOf(err) }

// sampleTree: Electronics > (Phones[leaf], Computers > (Laptops[leaf])), Home
func sampleTree(t *testing.T) *category.Tree {
	t.Helper()
	tree := category.New(nil, sequentialIDs())
	el := mustInsert(t, tree, "", "Electronics", false)
	mustInsert(t, tree, el.ID, "Phones", true)
	comp := mustInsert(t, tree, el.ID, "Computers", false)
	mustInsert(t, tree, comp.ID, "Laptops", true)
	mustInsert(t, tree, "", "Home", false)
	return tree
}

func names(flat []category.FlatNode) []string {
	out := make([]string, 0, len(flat))
	for _, f := range flat {
		out = append(out, f.Node.Name)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios
// ──────────────────────────────────────────────────────────────────────────────

func TestInsert_UnderLeafFailsWithLeafViolation(t *testing.T) {
	tree := category.New(nil)
	el := mustInsert(t, tree, "", "Electronics", false)
	phones := mustInsert(t, tree, el.ID, "Phones", true)

	_, err := tree.Insert(phones.ID, category.NodeInput{Name: "Android"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStructural)
	assert.Equal(t, domain.CodeLeafViolation, codeOf(err))
	assert.Empty(t, tree.FindByID(phones.ID).Children)
}

func TestInsert_DuplicateNameIsCaseInsensitive(t *testing.T) {
	tree := category.New(nil)
	mustInsert(t, tree, "", "Electronics", false)

	_, err := tree.Insert("", category.NodeInput{Name: "  electronics "})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, domain.CodeDuplicateName, codeOf(err))
	assert.Len(t, tree.Roots(), 1)
}

func TestInsert_DuplicateNameAtAnyDepth(t *testing.T) {
	tree := sampleTree(t)
	home := tree.Roots()[1]

	_, err := tree.Insert(home.ID, category.NodeInput{Name: "LAPTOPS"})
	assert.Equal(t, domain.CodeDuplicateName, codeOf(err))
}

func TestInsert_GeneratesSlugAndKeepsOrder(t *testing.T) {
	tree := category.New(nil)
	a := mustInsert(t, tree, "", "Árboles y Plantas", false)
	mustInsert(t, tree, "", "Zeta", false)
	mustInsert(t, tree, "", "Alfa", false)

	assert.Equal(t, "arboles-y-plantas", a.Slug)
	assert.Equal(t, []string{"Árboles y Plantas", "Zeta", "Alfa"}, names(tree.Flatten()))
}

func TestInsert_ExplicitIDAndUnknownParent(t *testing.T) {
	tree := category.New(nil)
	n, err := tree.Insert("", category.NodeInput{ID: "cat_phones", Name: "Phones"})
	require.NoError(t, err)
	assert.Equal(t, "cat_phones", n.ID)

	_, err = tree.Insert("", category.NodeInput{ID: "cat_phones", Name: "Otro"})
	assert.Equal(t, domain.CodeDuplicateID, codeOf(err))

	_, err = tree.Insert("nope", category.NodeInput{Name: "Huérfana"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tree.Insert("", category.NodeInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRename_ExcludesOwnName(t *testing.T) {
	tree := sampleTree(t)
	phones := tree.FindByID("cat_2")

	n, err := tree.Rename(phones.ID, "PHONES")
	require.NoError(t, err, "renombrar cambiando solo mayúsculas no es duplicado")
	assert.Equal(t, "PHONES", n.Name)

	_, err = tree.Rename(phones.ID, "home")
	assert.Equal(t, domain.CodeDuplicateName, codeOf(err))
	assert.Equal(t, "PHONES", tree.FindByID(phones.ID).Name)
}

func TestSetAllowItemEntry_FailsWithChildren(t *testing.T) {
	tree := sampleTree(t)

	_, err := tree.SetAllowItemEntry("cat_1", true)
	assert.ErrorIs(t, err, domain.ErrStructural)
	assert.Equal(t, domain.CodeHasChildren, codeOf(err))
	assert.False(t, tree.FindByID("cat_1").AllowItemEntry)

	n, err := tree.SetAllowItemEntry("cat_5", true)
	require.NoError(t, err)
	assert.True(t, n.AllowItemEntry)
}

func TestUpdate_IsAllOrNothing(t *testing.T) {
	tree := sampleTree(t)
	name := "Hogar"
	yes := true
	_, err := tree.Update("cat_3", category.NodeUpdate{Name: &name, AllowItemEntry: &yes})
	require.Error(t, err)
	assert.Equal(t, "Computers", tree.FindByID("cat_3").Name, "el nombre no debe aplicarse si otra regla falla")
}

func TestDelete_BlockedByProductInSubtree(t *testing.T) {
	tree := category.New(nil)
	el := mustInsert(t, tree, "", "Electronics", false)
	_, err := tree.Insert(el.ID, category.NodeInput{ID: "cat_phones", Name: "Phones", AllowItemEntry: true})
	require.NoError(t, err)

	refs := category.ProductRefs{"cat_phones": {{ID: "P1", Name: "P1"}}}

	_, err = tree.Delete("cat_phones", refs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrReferential)
	assert.Equal(t, domain.CodeProductsExist, codeOf(err))
	assert.Contains(t, err.Error(), "P1")

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Details["productCount"])
	assert.Equal(t, "cat_phones", de.Details["categoryId"])

	_, err = tree.Delete(el.ID, refs)
	assert.Equal(t, domain.CodeProductsExist, codeOf(err), "un ancestro tampoco puede borrarse")
	assert.NotNil(t, tree.FindByID("cat_phones"))
}

func TestDelete_CascadesAndPreservesSiblingOrder(t *testing.T) {
	tree := sampleTree(t)
	mustInsert(t, tree, "", "Garden", false)

	res, err := tree.Delete("cat_1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat_1", "cat_2", "cat_3", "cat_4"}, res.RemovedIDs)
	for _, id := range res.RemovedIDs {
		assert.Nil(t, tree.FindByID(id))
	}
	assert.Equal(t, []string{"Home", "Garden"}, names(tree.Flatten()))
}

func TestMove(t *testing.T) {
	tree := sampleTree(t)

	_, err := tree.Move("cat_1", "cat_4")
	assert.Equal(t, domain.CodeCycleAttempt, codeOf(err))

	_, err = tree.Move("cat_1", "cat_1")
	assert.Equal(t, domain.CodeCycleAttempt, codeOf(err))

	_, err = tree.Move("cat_5", "cat_2")
	assert.Equal(t, domain.CodeLeafViolation, codeOf(err))

	_, err = tree.Move("cat_3", "cat_5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Computers", "Laptops"}, tree.PathTo("cat_4"))
	assert.Nil(t, tree.ParentOf("cat_5"))

	_, err = tree.Move("cat_3", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Home", "Computers"}, namesAtDepth(tree, 0))
}

func namesAtDepth(tree *category.Tree, depth int) []string {
	var out []string
	for _, f := range tree.Flatten() {
		if f.Depth == depth {
			out = append(out, f.Node.Name)
		}
	}
	return out
}

func TestPathToAndFlatten(t *testing.T) {
	tree := sampleTree(t)

	assert.Equal(t, []string{"Electronics", "Computers", "Laptops"}, tree.PathTo("cat_4"))
	assert.Nil(t, tree.PathTo("missing"))

	flat := tree.Flatten()
	assert.Equal(t, []string{"Electronics", "Phones", "Computers", "Laptops", "Home"}, names(flat))
	assert.Equal(t, []int{0, 1, 1, 2, 0}, []int{flat[0].Depth, flat[1].Depth, flat[2].Depth, flat[3].Depth, flat[4].Depth})
	assert.Equal(t, "cat_3", flat[3].ParentID)
	assert.Len(t, tree.Leaves(), 2)
}

func TestClone_IsIndependent(t *testing.T) {
	tree := sampleTree(t)
	cp := tree.Clone()
	_, err := cp.Rename("cat_2", "Celulares")
	require.NoError(t, err)
	_, err = cp.Delete("cat_5", nil)
	require.NoError(t, err)

	assert.Equal(t, "Phones", tree.FindByID("cat_2").Name)
	assert.NotNil(t, tree.FindByID("cat_5"))
}

func parseRoots(t *testing.T, raw string) []*category.Node {
	t.Helper()
	var roots []*category.Node
	require.NoError(t, json.Unmarshal([]byte(raw), &roots))
	return roots
}

func TestValidate(t *testing.T) {
	roots := parseRoots(t, `[
		{"id":"a","name":"A","children":[{"id":"b","name":"B","allowItemEntry":true}]},
		{"id":"c","name":"b"}
	]`)
	assert.Equal(t, domain.CodeDuplicateName, codeOf(category.New(roots).Validate()))

	roots = parseRoots(t, `[{"id":"a","name":"A","allowItemEntry":true,"children":[{"id":"b","name":"B"}]}]`)
	assert.Equal(t, domain.CodeLeafViolation, codeOf(category.New(roots).Validate()))

	roots = parseRoots(t, `[{"id":"a","name":"A"},{"id":"a","name":"B"}]`)
	assert.Equal(t, domain.CodeDuplicateID, codeOf(category.New(roots).Validate()))

	roots = parseRoots(t, `[{"id":"a","name":"  "}]`)
	assert.ErrorIs(t, category.New(roots).Validate(), domain.ErrValidation)

	assert.NoError(t, sampleTree(t).Validate())
}

func TestDocumentJSONShape(t *testing.T) {
	tree := category.New(nil, sequentialIDs())
	mustInsert(t, tree, "", "Home", false)
	raw, err := json.Marshal(category.Document{List: tree.Roots()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[{"id":"cat_1","name":"Home","slug":"home","allowItemEntry":false,"children":[]}],"version":0}`, string(raw))
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func assertInvariants(t *testing.T, tree *category.Tree) {
	t.Helper()
	seen := map[string]string{}
	for _, f := range tree.Flatten() {
		key := strings.ToLower(strings.TrimSpace(f.Node.Name))
		if other, ok := seen[key]; ok {
			t.Fatalf("nombre repetido %q (%s y %s)", f.Node.Name, other, f.Node.ID)
		}
		seen[key] = f.Node.ID
		if f.Node.AllowItemEntry && len(f.Node.Children) > 0 {
			t.Fatalf("hoja %q con hijos", f.Node.Name)
		}
	}
}

func TestProperty_RandomMutationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := []string{"Alfa", "alfa", "Beta", "BETA ", "Gamma", "Delta", "delta", "Épsilon", "épsilon", "Zeta"}

	for round := 0; round < 50; round++ {
		tree := category.New(nil, sequentialIDs())
		for step := 0; step < 60; step++ {
			flat := tree.Flatten()
			pick := func() string {
				if len(flat) == 0 || rng.Intn(4) == 0 {
					return ""
				}
				return flat[rng.Intn(len(flat))].Node.ID
			}
			name := fmt.Sprintf("%s %d", pool[rng.Intn(len(pool))], rng.Intn(6))
			switch rng.Intn(5) {
			case 0, 1:
				parent := pick()
				before := tree.Len()
				_, err := tree.Insert(parent, category.NodeInput{Name: name, AllowItemEntry: rng.Intn(3) == 0})
				if p := tree.FindByID(parent); err == nil && p != nil {
					assert.False(t, p.AllowItemEntry, "insert bajo una hoja nunca debe tener éxito")
				}
				if err != nil {
					assert.Equal(t, before, tree.Len())
				}
			case 2:
				if id := pick(); id != "" {
					_, _ = tree.Rename(id, name)
				}
			case 3:
				if id := pick(); id != "" {
					_, _ = tree.Move(id, pick())
				}
			case 4:
				if id := pick(); id != "" {
					_, _ = tree.SetAllowItemEntry(id, rng.Intn(2) == 0)
				}
			}
			assertInvariants(t, tree)
		}
	}
}

func TestProperty_DeleteSucceedsIffNoProductInSubtree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 30; round++ {
		tree := category.New(nil, sequentialIDs())
		for i := 0; i < 25; i++ {
			flat := tree.Flatten()
			var parent string
			if len(flat) > 0 && rng.Intn(3) > 0 {
				parent = flat[rng.Intn(len(flat))].Node.ID
			}
			_, _ = tree.Insert(parent, category.NodeInput{Name: fmt.Sprintf("n%d", i), AllowItemEntry: rng.Intn(4) == 0})
		}
		refs := category.ProductRefs{}
		for _, f := range tree.Leaves() {
			if rng.Intn(2) == 0 {
				refs[f.Node.ID] = []category.ProductRef{{ID: "p-" + f.Node.ID}}
			}
		}
		flat := tree.Flatten()
		target := flat[rng.Intn(len(flat))].Node.ID
		subtree := tree.SubtreeIDs(target)
		referenced := false
		for _, id := range subtree {
			if len(refs[id]) > 0 {
				referenced = true
			}
		}

		_, err := tree.Delete(target, refs)
		if referenced {
			assert.ErrorIs(t, err, domain.ErrReferential)
			assert.NotNil(t, tree.FindByID(target))
			continue
		}
		require.NoError(t, err)
		for _, id := range subtree {
			assert.Nil(t, tree.FindByID(id))
		}
	}
}

func TestProperty_FlattenRebuildRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tree := category.New(nil, sequentialIDs())
	for i := 0; i < 40; i++ {
		flat := tree.Flatten()
		var parent string
		if len(flat) > 0 && rng.Intn(4) > 0 {
			parent = flat[rng.Intn(len(flat))].Node.ID
		}
		_, _ = tree.Insert(parent, category.NodeInput{Name: fmt.Sprintf("nodo-%02d", i), AllowItemEntry: rng.Intn(5) == 0})
	}

	rebuilt := category.Rebuild(tree.Flatten())

	a, err := json.Marshal(tree.Roots())
	require.NoError(t, err)
	b, err := json.Marshal(rebuilt.Roots())
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}
