package usecase

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/category"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

const categoryCacheKey = "document"

var _ CategoryLookup = (*CategoryUseCase)(nil)

// CategoryUseCase operaciones sobre el árbol de categorías. Cada mutación se
// aplica sobre una copia recién leída y se persiste completa con escritura
// condicional a la versión leída; si algo falla la copia se descarta.
type CategoryUseCase struct {
	repo     repository.CategoryRepository
	products repository.ProductRepository
	cache    Cache
	log      *logger.Logger
	opts     []category.Option
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, products repository.ProductRepository, cache Cache, log *logger.Logger) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, products: products, cache: cache, log: log}
}

// load lee el documento a través del caché; el resultado es una copia propia.
func (uc *CategoryUseCase) load(ctx context.Context) (*category.Document, error) {
	var doc category.Document
	err := uc.cache.FetchJSON(ctx, categoryCacheKey, &doc, func(ctx context.Context) (any, error) {
		return uc.repo.Load(ctx)
	})
	if err != nil {
		return nil, err
	}
	if doc.List == nil {
		doc.List = []*category.Node{}
	}
	return &doc, nil
}

func (uc *CategoryUseCase) tree(ctx context.Context) (*category.Tree, int64, error) {
	doc, err := uc.load(ctx)
	if err != nil {
		return nil, 0, err
	}
	return category.New(doc.List, uc.opts...), doc.Version, nil
}

func (uc *CategoryUseCase) invalidate(ctx context.Context) {
	if err := uc.cache.Bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar caché de categorías")
	}
}

// mutate aplica fn sobre el árbol candidato y lo guarda. expected es la
// versión que el cliente dice tener (nil = la leída).
func (uc *CategoryUseCase) mutate(ctx context.Context, op string, expected *int64, fn func(ctx context.Context, t *category.Tree) error) (*category.Tree, int64, error) {
	t, version, err := uc.tree(ctx)
	if err != nil {
		return nil, 0, err
	}
	if expected != nil && *expected != version {
		return nil, 0, domain.Conflict("versión %d desactualizada; la vigente es %d", *expected, version)
	}
	if err := fn(ctx, t); err != nil {
		uc.log.Debug().Str("op", op).Str("code", string(domain.CodeOf(err))).Err(err).Msg("mutación de categorías rechazada")
		return nil, 0, err
	}
	newVersion, err := uc.repo.Save(ctx, &category.Document{List: t.Roots()}, &version)
	if err != nil {
		return nil, 0, domain.WrapTransport(op, "", err)
	}
	uc.invalidate(ctx)
	uc.log.Info().Str("op", op).Int64("version", newVersion).Int("nodes", t.Len()).Msg("categorías guardadas")
	return t, newVersion, nil
}

// Get documento completo.
func (uc *CategoryUseCase) Get(ctx context.Context) (*dto.CategoryDocumentResponse, error) {
	doc, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CategoryDocumentResponse{List: doc.List, Version: doc.Version}, nil
}

// Replace reemplaza el documento entero tras validar todos los invariantes.
// Una categoría con productos no puede desaparecer ni dejar de admitirlos.
// Sin versión la última escritura gana.
func (uc *CategoryUseCase) Replace(ctx context.Context, in dto.CategoryDocumentRequest) (*dto.CategoryDocumentResponse, error) {
	t := category.New(in.List, uc.opts...)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	current, _, err := uc.tree(ctx)
	if err != nil {
		return nil, err
	}
	var lost []*category.Node
	for _, f := range current.Leaves() {
		if n := t.FindByID(f.Node.ID); n == nil || !n.IsLeaf() {
			lost = append(lost, f.Node)
		}
	}
	if err := uc.ensureNoProducts(ctx, lost...); err != nil {
		uc.log.Debug().Str("op", "replace categories").Str("code", string(domain.CodeOf(err))).Err(err).Msg("mutación de categorías rechazada")
		return nil, err
	}
	version, err := uc.repo.Save(ctx, &category.Document{List: t.Roots()}, in.Version)
	if err != nil {
		return nil, domain.WrapTransport("replace categories", "", err)
	}
	uc.invalidate(ctx)
	uc.log.Info().Int64("version", version).Int("nodes", t.Len()).Msg("documento de categorías reemplazado")
	return &dto.CategoryDocumentResponse{List: t.Roots(), Version: version}, nil
}

// Insert agrega un nodo bajo in.ParentID (vacío = raíz).
func (uc *CategoryUseCase) Insert(ctx context.Context, in dto.CreateCategoryNodeRequest) (*dto.CategoryNodeResponse, error) {
	var node *category.Node
	t, version, err := uc.mutate(ctx, "insert category", in.Version, func(_ context.Context, t *category.Tree) error {
		var err error
		node, err = t.Insert(in.ParentID, category.NodeInput{
			ID:             in.ID,
			Name:           in.Name,
			Slug:           in.Slug,
			AllowItemEntry: in.AllowItemEntry,
			ProductName:    in.ProductName,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.CategoryNodeResponse{Node: t.FindByID(node.ID), Version: version}, nil
}

// Update aplica cambios parciales a un nodo. Desmarcar allowItemEntry en una
// categoría con productos se rechaza.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.UpdateCategoryNodeRequest) (*dto.CategoryNodeResponse, error) {
	t, version, err := uc.mutate(ctx, "update category", in.Version, func(ctx context.Context, t *category.Tree) error {
		if in.AllowItemEntry != nil && !*in.AllowItemEntry {
			if n := t.FindByID(id); n != nil && n.AllowItemEntry {
				if err := uc.ensureNoProducts(ctx, n); err != nil {
					return err
				}
			}
		}
		_, err := t.Update(id, category.NodeUpdate{
			Name:           in.Name,
			Slug:           in.Slug,
			AllowItemEntry: in.AllowItemEntry,
			ProductName:    in.ProductName,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.CategoryNodeResponse{Node: t.FindByID(id), Version: version}, nil
}

// ensureNoProducts falla con el primer nodo de nodes que tenga productos asignados.
func (uc *CategoryUseCase) ensureNoProducts(ctx context.Context, nodes ...*category.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	list, err := uc.products.ListByGroupIDs(ctx, ids)
	if err != nil {
		return err
	}
	counts := make(map[string]int, len(list))
	for _, p := range list {
		counts[p.ProductGroupID]++
	}
	for _, n := range nodes {
		if c := counts[n.ID]; c > 0 {
			return domain.Referential(domain.CodeProductsExist,
				"la categoría %q tiene %d producto(s) y debe seguir admitiéndolos", n.Name, c).
				WithDetails(map[string]any{"categoryId": n.ID, "productCount": c})
		}
	}
	return nil
}

// Move reubica un nodo como último hijo de in.ParentID.
func (uc *CategoryUseCase) Move(ctx context.Context, id string, in dto.MoveCategoryNodeRequest) (*dto.CategoryNodeResponse, error) {
	t, version, err := uc.mutate(ctx, "move category", in.Version, func(_ context.Context, t *category.Tree) error {
		_, err := t.Move(id, in.ParentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.CategoryNodeResponse{Node: t.FindByID(id), Version: version}, nil
}

// Delete elimina el nodo y su subárbol si ningún producto los referencia.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string, expected *int64) (*dto.DeleteCategoryResponse, error) {
	var res category.DeleteResult
	_, version, err := uc.mutate(ctx, "delete category", expected, func(ctx context.Context, t *category.Tree) error {
		refs := category.ProductRefs{}
		if ids := t.SubtreeIDs(id); len(ids) > 0 {
			list, err := uc.products.ListByGroupIDs(ctx, ids)
			if err != nil {
				return err
			}
			for _, p := range list {
				refs[p.ProductGroupID] = append(refs[p.ProductGroupID], category.ProductRef{ID: p.ID, Name: p.Name})
			}
		}
		var err error
		res, err = t.Delete(id, refs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.DeleteCategoryResponse{RemovedIDs: res.RemovedIDs, Version: version}, nil
}

// FindNode implementa CategoryLookup.
func (uc *CategoryUseCase) FindNode(ctx context.Context, id string) (*category.Node, error) {
	t, _, err := uc.tree(ctx)
	if err != nil {
		return nil, err
	}
	node := t.FindByID(id)
	if node == nil {
		return nil, domain.NotFound("categoría %q no encontrada", id)
	}
	return node, nil
}

// Node devuelve un nodo con sus hijos.
func (uc *CategoryUseCase) Node(ctx context.Context, id string) (*dto.CategoryNodeResponse, error) {
	t, version, err := uc.tree(ctx)
	if err != nil {
		return nil, err
	}
	node := t.FindByID(id)
	if node == nil {
		return nil, domain.NotFound("categoría %q no encontrada", id)
	}
	return &dto.CategoryNodeResponse{Node: node, Version: version}, nil
}

// Path nombres desde la raíz hasta id.
func (uc *CategoryUseCase) Path(ctx context.Context, id string) (*dto.CategoryPathResponse, error) {
	t, _, err := uc.tree(ctx)
	if err != nil {
		return nil, err
	}
	path := t.PathTo(id)
	if path == nil {
		return nil, domain.NotFound("categoría %q no encontrada", id)
	}
	return &dto.CategoryPathResponse{ID: id, Path: path}, nil
}

// Flat lista plana en pre-orden. leavesOnly filtra las categorías que admiten productos.
func (uc *CategoryUseCase) Flat(ctx context.Context, leavesOnly bool) ([]dto.FlatCategoryResponse, error) {
	t, _, err := uc.tree(ctx)
	if err != nil {
		return nil, err
	}
	flat := t.Flatten()
	if leavesOnly {
		flat = t.Leaves()
	}
	out := make([]dto.FlatCategoryResponse, 0, len(flat))
	for _, f := range flat {
		out = append(out, dto.FlatCategoryResponse{
			ID:             f.Node.ID,
			Name:           f.Node.Name,
			Slug:           f.Node.Slug,
			AllowItemEntry: f.Node.AllowItemEntry,
			ParentID:       f.ParentID,
			Depth:          f.Depth,
			Path:           f.Path,
		})
	}
	return out, nil
}
