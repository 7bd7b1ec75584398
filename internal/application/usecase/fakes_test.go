package usecase

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/category"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// passCache llama siempre al loader y decodifica una copia JSON, como el caché real.
type passCache struct {
	mu    sync.Mutex
	bumps int
}

func (c *passCache) FetchJSON(ctx context.Context, _ string, dest any, loader func(ctx context.Context) (any, error)) error {
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func (c *passCache) Bump(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bumps++
	return nil
}

type memCategoryRepo struct {
	raw     []byte
	version int64
	saves   int
}

func newMemCategoryRepo(roots ...*category.Node) *memCategoryRepo {
	r := &memCategoryRepo{}
	if roots == nil {
		roots = []*category.Node{}
	}
	r.raw, _ = json.Marshal(roots)
	return r
}

func (r *memCategoryRepo) Load(context.Context) (*category.Document, error) {
	doc := &category.Document{Version: r.version}
	if err := json.Unmarshal(r.raw, &doc.List); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *memCategoryRepo) Save(_ context.Context, doc *category.Document, expected *int64) (int64, error) {
	if expected != nil && *expected != r.version {
		return 0, domain.Conflict("versión %d desactualizada", *expected)
	}
	raw, err := json.Marshal(doc.List)
	if err != nil {
		return 0, err
	}
	r.raw = raw
	r.version++
	r.saves++
	return r.version, nil
}

type memFieldRepo struct {
	defs []field.Definition
}

func (r *memFieldRepo) List(context.Context) ([]field.Definition, error) {
	return slices.Clone(r.defs), nil
}

func (r *memFieldRepo) GetByID(_ context.Context, id string) (*field.Definition, error) {
	for _, d := range r.defs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, nil
}

func (r *memFieldRepo) Create(_ context.Context, def *field.Definition) error {
	r.defs = append(r.defs, *def)
	return nil
}

func (r *memFieldRepo) Update(_ context.Context, def *field.Definition) error {
	for i := range r.defs {
		if r.defs[i].ID == def.ID {
			r.defs[i] = *def
			return nil
		}
	}
	return domain.NotFound("campo %q no encontrado", def.ID)
}

func (r *memFieldRepo) Delete(_ context.Context, id string) error {
	r.defs = slices.DeleteFunc(r.defs, func(d field.Definition) bool { return d.ID == id })
	return nil
}

type memProductRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Product
	order []string
}

func newMemProductRepo(products ...*entity.Product) *memProductRepo {
	r := &memProductRepo{items: map[string]*entity.Product{}}
	for _, p := range products {
		_ = r.Create(context.Background(), p)
	}
	return r
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; ok {
		return domain.Duplicate(domain.CodeDuplicateID, "id", "ya existe un producto con id %q", p.ID)
	}
	cp := *p
	r.items[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

func (r *memProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Product{}
	for i, id := range r.order {
		if i < offset || len(out) >= limit {
			continue
		}
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *memProductRepo) ListByGroupIDs(_ context.Context, groupIDs []string) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Product{}
	for _, id := range r.order {
		if p := r.items[id]; slices.Contains(groupIDs, p.ProductGroupID) {
			out = append(out, p)
		}
	}
	return out, nil
}

type memStockRepo struct {
	items map[string]*entity.Stock
}

func newMemStockRepo() *memStockRepo { return &memStockRepo{items: map[string]*entity.Stock{}} }

func (r *memStockRepo) Create(_ context.Context, s *entity.Stock) error {
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *memStockRepo) GetByID(_ context.Context, id string) (*entity.Stock, error) {
	s, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memStockRepo) Update(_ context.Context, s *entity.Stock) error {
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *memStockRepo) List(_ context.Context, f repository.StockFilter) ([]*entity.Stock, error) {
	out := []*entity.Stock{}
	for _, s := range r.items {
		if f.VendorID != "" && s.VendorID != f.VendorID {
			continue
		}
		if f.ProductID != "" && !slices.ContainsFunc(s.Items, func(it entity.StockItem) bool { return it.ProductID == f.ProductID }) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type memVendorRepo struct {
	items map[string]*entity.Vendor
}

func (r *memVendorRepo) Create(_ context.Context, v *entity.Vendor) error {
	r.items[v.ID] = v
	return nil
}

func (r *memVendorRepo) GetByID(_ context.Context, id string) (*entity.Vendor, error) {
	return r.items[id], nil
}

func (r *memVendorRepo) Update(_ context.Context, v *entity.Vendor) error {
	r.items[v.ID] = v
	return nil
}

func (r *memVendorRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *memVendorRepo) List(context.Context) ([]*entity.Vendor, error) {
	out := []*entity.Vendor{}
	for _, v := range r.items {
		out = append(out, v)
	}
	return out, nil
}

type memWarehouseRepo struct {
	items map[string]*entity.Warehouse
}

func (r *memWarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.items[w.ID] = w
	return nil
}

func (r *memWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	return r.items[id], nil
}

func (r *memWarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.items[w.ID] = w
	return nil
}

func (r *memWarehouseRepo) List(context.Context) ([]*entity.Warehouse, error) {
	out := []*entity.Warehouse{}
	for _, w := range r.items {
		out = append(out, w)
	}
	return out, nil
}

func (r *memWarehouseRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type fakeRenderer struct {
	title  string
	labels []Label
}

func (f *fakeRenderer) RenderLabels(_ context.Context, title string, labels []Label) ([]byte, error) {
	f.title = title
	f.labels = labels
	return []byte("%PDF-fake"), nil
}

func ptr[T any](v T) *T { return &v }
