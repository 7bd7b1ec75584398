package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// VendorUseCase casos de uso CRUD para proveedores.
type VendorUseCase struct {
	repo repository.VendorRepository
	now  func() time.Time
}

// NewVendorUseCase construye el caso de uso.
func NewVendorUseCase(repo repository.VendorRepository) *VendorUseCase {
	return &VendorUseCase{repo: repo, now: time.Now}
}

// Create registra un proveedor. Sin status queda activo.
func (uc *VendorUseCase) Create(ctx context.Context, in dto.VendorRequest) (*dto.VendorResponse, error) {
	v, err := vendorFromRequest(in)
	if err != nil {
		return nil, err
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	v.CreatedAt = uc.now()
	v.UpdatedAt = v.CreatedAt
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return toVendorResponse(v), nil
}

// GetByID obtiene un proveedor.
func (uc *VendorUseCase) GetByID(ctx context.Context, id string) (*dto.VendorResponse, error) {
	v, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVendorResponse(v), nil
}

func (uc *VendorUseCase) find(ctx context.Context, id string) (*entity.Vendor, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound("proveedor %q no encontrado", id)
	}
	return v, nil
}

// Update reemplaza los datos del proveedor id.
func (uc *VendorUseCase) Update(ctx context.Context, id string, in dto.VendorRequest) (*dto.VendorResponse, error) {
	current, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := vendorFromRequest(in)
	if err != nil {
		return nil, err
	}
	v.ID = current.ID
	v.CreatedAt = current.CreatedAt
	v.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return toVendorResponse(v), nil
}

// List lista todos los proveedores.
func (uc *VendorUseCase) List(ctx context.Context) ([]dto.VendorResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendorResponse, 0, len(list))
	for _, v := range list {
		out = append(out, *toVendorResponse(v))
	}
	return out, nil
}

// Delete elimina un proveedor; falla si tiene ingresos de stock.
func (uc *VendorUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func vendorFromRequest(in dto.VendorRequest) (*entity.Vendor, error) {
	v := &entity.Vendor{
		ID:          strings.TrimSpace(in.ID),
		Name:        strings.TrimSpace(in.Name),
		ContactName: strings.TrimSpace(in.ContactName),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		Address:     strings.TrimSpace(in.Address),
		TaxID:       strings.TrimSpace(in.TaxID),
		Status:      in.Status,
	}
	if v.Name == "" {
		return nil, domain.Validation(domain.CodeInvalidInput, "name", "el nombre del proveedor es requerido")
	}
	switch v.Status {
	case "":
		v.Status = entity.VendorStatusActive
	case entity.VendorStatusActive, entity.VendorStatusInactive:
	default:
		return nil, domain.Validation(domain.CodeInvalidInput, "status", "status %q no soportado", v.Status)
	}
	return v, nil
}

func toVendorResponse(v *entity.Vendor) *dto.VendorResponse {
	return &dto.VendorResponse{
		ID:          v.ID,
		Name:        v.Name,
		ContactName: v.ContactName,
		Phone:       v.Phone,
		Email:       v.Email,
		Address:     v.Address,
		TaxID:       v.TaxID,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
