package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/domain/field"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/metrics"
)

// FieldHandler maneja las definiciones de campos dinámicos (fieldMasters).
type FieldHandler struct {
	uc *usecase.FieldUseCase
	m  *metrics.Metrics
}

// NewFieldHandler construye el handler.
func NewFieldHandler(uc *usecase.FieldUseCase, m *metrics.Metrics) *FieldHandler {
	return &FieldHandler{uc: uc, m: m}
}

// List godoc
// @Summary      Listar campos dinámicos
// @Tags         fieldMasters
// @Produce      json
// @Param        available       query  bool    false  "Solo disponibles"
// @Param        identifierType  query  string  false  "UNIQUE o NON_UNIQUE"
// @Success      200  {array}  dto.FieldDefinitionResponse
// @Router       /api/fieldMasters [get]
func (h *FieldHandler) List(c *fiber.Ctx) error {
	it := field.IdentifierType(c.Query("identifierType"))
	if it != "" && !it.Valid() {
		return badRequest(c, h.m, "identifierType", "identifierType debe ser UNIQUE o NON_UNIQUE")
	}
	out, err := h.uc.List(c.UserContext(), c.QueryBool("available", false), it)
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener campo dinámico
// @Tags         fieldMasters
// @Produce      json
// @Param        id   path  string  true  "ID del campo"
// @Success      200  {object}  dto.FieldDefinitionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fieldMasters/{id} [get]
func (h *FieldHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear campo dinámico
// @Tags         fieldMasters
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FieldDefinitionRequest  true  "Definición"
// @Success      201   {object}  dto.FieldDefinitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fieldMasters [post]
func (h *FieldHandler) Create(c *fiber.Ctx) error {
	var in dto.FieldDefinitionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Reemplazar campo dinámico
// @Tags         fieldMasters
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del campo"
// @Param        body  body  dto.FieldDefinitionRequest  true  "Definición"
// @Success      200   {object}  dto.FieldDefinitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fieldMasters/{id} [put]
func (h *FieldHandler) Update(c *fiber.Ctx) error {
	var in dto.FieldDefinitionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}

// SetStatus godoc
// @Summary      Cambiar disponibilidad
// @Tags         fieldMasters
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del campo"
// @Param        body  body  dto.FieldStatusRequest  true  "Disponibilidad"
// @Success      200   {object}  dto.FieldDefinitionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fieldMasters/{id}/status [patch]
func (h *FieldHandler) SetStatus(c *fiber.Ctx) error {
	var in dto.FieldStatusRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	out, err := h.uc.SetStatus(c.UserContext(), c.Params("id"), *in.Status)
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar campo dinámico
// @Tags         fieldMasters
// @Param        id   path  string  true  "ID del campo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fieldMasters/{id} [delete]
func (h *FieldHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.m, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
