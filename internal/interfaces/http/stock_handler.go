package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/metrics"
)

// StockHandler maneja los ingresos de stock.
type StockHandler struct {
	uc *usecase.StockUseCase
	m  *metrics.Metrics
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *usecase.StockUseCase, m *metrics.Metrics) *StockHandler {
	return &StockHandler{uc: uc, m: m}
}

// Create godoc
// @Summary      Registrar ingreso de stock
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockRequest  true  "Ingreso"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stocks [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.StockRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener ingreso
// @Tags         stocks
// @Produce      json
// @Param        id   path  string  true  "ID del ingreso"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Reemplazar ingreso
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID del ingreso"
// @Param        body  body  dto.StockRequest  true  "Ingreso"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [put]
func (h *StockHandler) Update(c *fiber.Ctx) error {
	var in dto.StockRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ingresos
// @Tags         stocks
// @Produce      json
// @Param        vendorId     query  string  false  "Proveedor"
// @Param        warehouseId  query  string  false  "Bodega"
// @Param        productId    query  string  false  "Producto"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stocks [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var in dto.StockListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, h.m, "limit", "parámetros de consulta inválidos")
	}
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.m, err)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}

// Labels godoc
// @Summary      Hoja de etiquetas con código de barras
// @Tags         stocks
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del ingreso"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/{id}/labels.pdf [get]
func (h *StockHandler) Labels(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.Labels(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.m, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="etiquetas-`+id+`.pdf"`)
	return c.Send(pdf)
}
