package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

const fieldCacheKey = "definitions"

var _ FieldSource = (*FieldUseCase)(nil)

// FieldUseCase administra las definiciones de campos dinámicos. Cada escritura
// se valida contra un registro construido desde una lectura fresca.
type FieldUseCase struct {
	repo  repository.FieldRepository
	cache Cache
	log   *logger.Logger
	now   func() time.Time
}

// NewFieldUseCase construye el caso de uso.
func NewFieldUseCase(repo repository.FieldRepository, cache Cache, log *logger.Logger) *FieldUseCase {
	return &FieldUseCase{repo: repo, cache: cache, log: log, now: time.Now}
}

// Registry registro vigente (vía caché).
func (uc *FieldUseCase) Registry(ctx context.Context) (*field.Registry, error) {
	var defs []field.Definition
	err := uc.cache.FetchJSON(ctx, fieldCacheKey, &defs, func(ctx context.Context) (any, error) {
		return uc.repo.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return field.NewRegistry(defs), nil
}

func (uc *FieldUseCase) invalidate(ctx context.Context) {
	if err := uc.cache.Bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar caché de campos")
	}
}

// List definiciones en orden de registro. onlyAvailable e identifier filtran.
func (uc *FieldUseCase) List(ctx context.Context, onlyAvailable bool, identifier field.IdentifierType) ([]dto.FieldDefinitionResponse, error) {
	reg, err := uc.Registry(ctx)
	if err != nil {
		return nil, err
	}
	defs := reg.All()
	if onlyAvailable {
		defs = reg.Available(identifier)
	} else if identifier != "" {
		filtered := defs[:0]
		for _, d := range defs {
			if d.AppliesTo(identifier) {
				filtered = append(filtered, d)
			}
		}
		defs = filtered
	}
	return toFieldResponses(defs), nil
}

// Get una definición por id.
func (uc *FieldUseCase) Get(ctx context.Context, id string) (*dto.FieldDefinitionResponse, error) {
	def, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, domain.NotFound("campo %q no encontrado", id)
	}
	out := toFieldResponse(*def)
	return &out, nil
}

// Create valida y registra una definición nueva.
func (uc *FieldUseCase) Create(ctx context.Context, in dto.FieldDefinitionRequest) (*dto.FieldDefinitionResponse, error) {
	def, err := toDefinition(in)
	if err != nil {
		return nil, err
	}
	reg, err := uc.Registry(ctx)
	if err != nil {
		return nil, err
	}
	def.CreatedAt = uc.now()
	def.UpdatedAt = def.CreatedAt
	created, err := reg.Create(def)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, &created); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	uc.log.Info().Str("field_id", created.ID).Str("key", created.Key).Msg("campo creado")
	out := toFieldResponse(created)
	return &out, nil
}

// Update reemplaza la definición id. Sin status se conserva la disponibilidad
// vigente. Las instantáneas ya guardadas en productos no cambian.
func (uc *FieldUseCase) Update(ctx context.Context, id string, in dto.FieldDefinitionRequest) (*dto.FieldDefinitionResponse, error) {
	def, err := toDefinition(in)
	if err != nil {
		return nil, err
	}
	reg, err := uc.Registry(ctx)
	if err != nil {
		return nil, err
	}
	// sin status se conserva la disponibilidad vigente; solo SetStatus la cambia.
	if in.Status == nil {
		if current, ok := reg.Get(id); ok {
			def.Status = current.Status
		}
	}
	def.UpdatedAt = uc.now()
	updated, err := reg.Update(id, def)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	out := toFieldResponse(updated)
	return &out, nil
}

// SetStatus marca la definición como disponible o no disponible.
func (uc *FieldUseCase) SetStatus(ctx context.Context, id string, available bool) (*dto.FieldDefinitionResponse, error) {
	reg, err := uc.Registry(ctx)
	if err != nil {
		return nil, err
	}
	def, err := reg.SetStatus(id, available)
	if err != nil {
		return nil, err
	}
	def.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, &def); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	out := toFieldResponse(def)
	return &out, nil
}

// Delete elimina la definición id.
func (uc *FieldUseCase) Delete(ctx context.Context, id string) error {
	reg, err := uc.Registry(ctx)
	if err != nil {
		return err
	}
	if err := reg.Delete(id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	uc.log.Info().Str("field_id", id).Msg("campo eliminado")
	return nil
}

// toDefinition convierte la entrada HTTP; status ausente = disponible.
func toDefinition(in dto.FieldDefinitionRequest) (field.Definition, error) {
	t := field.Type(in.Type)
	if !t.Valid() {
		return field.Definition{}, domain.Validation(domain.CodeInvalidInput, "type", "tipo de campo %q no soportado", in.Type)
	}
	validations, err := field.ParseValidations(t, in.Validations)
	if err != nil {
		return field.Definition{}, err
	}
	applicable := make([]field.IdentifierType, 0, len(in.ApplicableFor))
	for _, a := range in.ApplicableFor {
		applicable = append(applicable, field.IdentifierType(a))
	}
	status := true
	if in.Status != nil {
		status = *in.Status
	}
	return field.Definition{
		ID:            in.ID,
		Key:           in.Key,
		Label:         in.Label,
		Type:          t,
		ApplicableFor: applicable,
		IsRequired:    in.IsRequired,
		Status:        status,
		Options:       in.Options,
		DefaultValue:  in.DefaultValue,
		Validations:   validations,
		Placeholder:   in.Placeholder,
	}, nil
}

func toFieldResponse(d field.Definition) dto.FieldDefinitionResponse {
	return dto.FieldDefinitionResponse{
		ID:            d.ID,
		Key:           d.Key,
		Label:         d.Label,
		Type:          d.Type,
		ApplicableFor: d.ApplicableFor,
		IsRequired:    d.IsRequired,
		Status:        d.Status,
		Options:       d.Options,
		DefaultValue:  d.DefaultValue,
		Validations:   d.Validations,
		Placeholder:   d.Placeholder,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toFieldResponses(defs []field.Definition) []dto.FieldDefinitionResponse {
	out := make([]dto.FieldDefinitionResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, toFieldResponse(d))
	}
	return out
}
