package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// ProductUseCase casos de uso CRUD para productos. Un producto solo puede
// asignarse a una categoría hoja y guarda una copia de sus campos seleccionados.
type ProductUseCase struct {
	repo       repository.ProductRepository
	stocks     repository.StockRepository
	categories CategoryLookup
	fields     FieldSource
	log        *logger.Logger
	now        func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, stocks repository.StockRepository, categories CategoryLookup, fields FieldSource, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, stocks: stocks, categories: categories, fields: fields, log: log, now: time.Now}
}

// Create crea un producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error) {
	now := uc.now()
	product := &entity.Product{
		ID:        strings.TrimSpace(in.ID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := uc.apply(ctx, product, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Str("category_id", product.ProductGroupID).Msg("producto creado")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

func (uc *ProductUseCase) find(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto %q no encontrado", id)
	}
	return product, nil
}

// Update reemplaza los datos del producto id. Los campos que ya estaban en la
// copia conservan su definición guardada.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.ProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(ctx, product, in); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// apply valida la entrada contra la categoría y el registro de campos y la
// copia sobre product.
func (uc *ProductUseCase) apply(ctx context.Context, product *entity.Product, in dto.ProductRequest) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Validation(domain.CodeInvalidInput, "name", "el nombre del producto es requerido")
	}
	it := field.IdentifierType(in.IdentifierType)
	if !it.Valid() {
		return domain.Validation(domain.CodeInvalidInput, "identifierType", "identifierType %q no soportado", in.IdentifierType)
	}
	if in.Price.IsNegative() {
		return domain.Validation(domain.CodeInvalidInput, "price", "el precio no puede ser negativo")
	}

	var reg *field.Registry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		node, err := uc.categories.FindNode(gctx, in.ProductGroupID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validation(domain.CodeInvalidInput, "productGroupId", "la categoría %q no existe", in.ProductGroupID)
		}
		if err != nil {
			return err
		}
		if !node.IsLeaf() {
			return domain.Structural(domain.CodeNotLeaf,
				"la categoría %q no admite productos; elija una categoría hoja", node.Name).
				WithDetails(map[string]any{"categoryId": node.ID})
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reg, err = uc.fields.Registry(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snapshot, err := snapshotFields(reg, product, it, in.SelectedFieldIDs)
	if err != nil {
		return err
	}
	product.Name = name
	product.Code = strings.TrimSpace(in.Code)
	product.Description = in.Description
	product.ProductGroupID = in.ProductGroupID
	product.IdentifierType = it
	product.SelectedFieldIDs = make([]string, 0, len(snapshot))
	for _, d := range snapshot {
		product.SelectedFieldIDs = append(product.SelectedFieldIDs, d.ID)
	}
	product.FieldConfigurations = snapshot
	product.Price = in.Price
	return nil
}

// snapshotFields copia las definiciones de ids. Para un producto existente,
// las ya copiadas se conservan tal cual si el tipo de identificador no cambió.
func snapshotFields(reg *field.Registry, current *entity.Product, it field.IdentifierType, ids []string) ([]field.Definition, error) {
	kept := map[string]field.Definition{}
	if current.IdentifierType == it {
		for _, d := range current.FieldConfigurations {
			kept[d.ID] = d
		}
	}
	out := make([]field.Definition, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if d, ok := kept[id]; ok {
			out = append(out, d)
			continue
		}
		def, ok := reg.Get(id)
		if !ok {
			return nil, domain.Validation(domain.CodeUnknownField, "selectedFieldIds", "el campo %q no existe", id)
		}
		if !def.Status {
			return nil, domain.Validation(domain.CodeUnknownField, "selectedFieldIds", "el campo %q no está disponible", def.Label)
		}
		if !def.AppliesTo(it) {
			return nil, domain.Validation(domain.CodeUnknownField, "selectedFieldIds",
				"el campo %q no aplica a productos %s", def.Label, it)
		}
		out = append(out, def)
	}
	return out, nil
}

// Delete elimina un producto sin ingresos de stock.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.find(ctx, id); err != nil {
		return err
	}
	used, err := uc.stocks.List(ctx, repository.StockFilter{ProductID: id, Limit: 1})
	if err != nil {
		return err
	}
	if len(used) > 0 {
		return domain.Referential(domain.CodeInUse, "el producto %q tiene ingresos de stock", id).
			WithDetails(map[string]any{"productId": id, "stockId": used[0].ID})
	}
	return uc.repo.Delete(ctx, id)
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Fields campos de captura resueltos del producto.
func (uc *ProductUseCase) Fields(ctx context.Context, id string) ([]dto.FieldDefinitionResponse, error) {
	_, defs, err := uc.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return toFieldResponses(defs), nil
}

// EntryRow fila inicial de captura con los valores por defecto.
func (uc *ProductUseCase) EntryRow(ctx context.Context, id string) (*dto.EntryRowResponse, error) {
	product, defs, err := uc.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.EntryRowResponse{
		IdentifierType: product.IdentifierType,
		Fields:         toFieldResponses(defs),
		Row:            field.BuildEntryRow(defs),
	}, nil
}

func (uc *ProductUseCase) resolve(ctx context.Context, id string) (*entity.Product, []field.Definition, error) {
	product, err := uc.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reg, err := uc.fields.Registry(ctx)
	if err != nil {
		return nil, nil, err
	}
	return product, reg.ResolveFieldsFor(product.FieldSelection()), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	ids := p.SelectedFieldIDs
	if ids == nil {
		ids = []string{}
	}
	return &dto.ProductResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Code:                p.Code,
		Description:         p.Description,
		ProductGroupID:      p.ProductGroupID,
		IdentifierType:      string(p.IdentifierType),
		SelectedFieldIDs:    slices.Clone(ids),
		FieldConfigurations: toFieldResponses(p.FieldConfigurations),
		Price:               p.Price,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
