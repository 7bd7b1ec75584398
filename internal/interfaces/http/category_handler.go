package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/metrics"
)

// CategoryHandler maneja el árbol de categorías. Las respuestas llevan la
// versión del documento en ETag; If-Match (o version en el cuerpo) hace la
// escritura condicional.
type CategoryHandler struct {
	uc *usecase.CategoryUseCase
	m  *metrics.Metrics
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *usecase.CategoryUseCase, m *metrics.Metrics) *CategoryHandler {
	return &CategoryHandler{uc: uc, m: m}
}

func setETag(c *fiber.Ctx, version int64) {
	c.Set(fiber.HeaderETag, strconv.Quote(strconv.FormatInt(version, 10)))
}

// expectedVersion versión del cuerpo o, si falta, la del header If-Match.
func (h *CategoryHandler) expectedVersion(c *fiber.Ctx, body *int64) (*int64, bool) {
	if body != nil {
		return body, true
	}
	raw := strings.TrimSpace(c.Get(fiber.HeaderIfMatch))
	if raw == "" || raw == "*" {
		return nil, true
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}

// Get godoc
// @Summary      Obtener el árbol de categorías
// @Tags         categories
// @Produce      json
// @Success      200  {object}  dto.CategoryDocumentResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/categories [get]
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext())
	if err != nil {
		return writeError(c, h.m, err)
	}
	setETag(c, out.Version)
	return c.JSON(out)
}

// Replace godoc
// @Summary      Reemplazar el árbol completo
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        If-Match  header  string                       false  "Versión esperada"
// @Param        body      body    dto.CategoryDocumentRequest  true   "Documento {list}"
// @Success      200  {object}  dto.CategoryDocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Router       /api/categories [put]
func (h *CategoryHandler) Replace(c *fiber.Ctx) error {
	var in dto.CategoryDocumentRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	version, ok := h.expectedVersion(c, in.Version)
	if !ok {
		return badRequest(c, h.m, "If-Match", "If-Match debe contener una versión numérica")
	}
	in.Version = version
	out, err := h.uc.Replace(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	setETag(c, out.Version)
	return c.JSON(out)
}

// Insert godoc
// @Summary      Insertar categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryNodeRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CategoryNodeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories/nodes [post]
func (h *CategoryHandler) Insert(c *fiber.Ctx) error {
	var in dto.CreateCategoryNodeRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	version, ok := h.expectedVersion(c, in.Version)
	if !ok {
		return badRequest(c, h.m, "If-Match", "If-Match debe contener una versión numérica")
	}
	in.Version = version
	out, err := h.uc.Insert(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	setETag(c, out.Version)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetNode godoc
// @Summary      Obtener categoría con sus hijos
// @Tags         categories
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryNodeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/nodes/{id} [get]
func (h *CategoryHandler) GetNode(c *fiber.Ctx) error {
	out, err := h.uc.Node(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.m, err)
	}
	setETag(c, out.Version)
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID de la categoría"
// @Param        body  body  dto.UpdateCategoryNodeRequest  true  "Cambios"
// @Success      200   {object}  dto.CategoryNodeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      412   {object}  dto.ErrorResponse
// @Router       /api/categories/nodes/{id} [patch]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCategoryNodeRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	version, ok := h.expectedVersion(c, in.Version)
	if !ok {
		return badRequest(c, h.m, "If-Match", "If-Match debe contener una versión numérica")
	}
	in.Version = version
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	setETag(c, out.Version)
	return c.JSON(out)
}

// Move godoc
// @Summary      Mover categoría bajo otro padre
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la categoría"
// @Param        body  body  dto.MoveCategoryNodeRequest  true  "Nuevo padre (vacío = raíz)"
// @Success      200   {object}  dto.CategoryNodeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories/nodes/{id}/move [post]
func (h *CategoryHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveCategoryNodeRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.m, err)
	}
	version, ok := h.expectedVersion(c, in.Version)
	if !ok {
		return badRequest(c, h.m, "If-Match", "If-Match debe contener una versión numérica")
	}
	in.Version = version
	out, err := h.uc.Move(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.m, err)
	}
	setETag(c, out.Version)
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar categoría y su subárbol
// @Tags         categories
// @Produce      json
// @Param        id        path    string  true   "ID de la categoría"
// @Param        If-Match  header  string  false  "Versión esperada"
// @Success      200  {object}  dto.DeleteCategoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/categories/nodes/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	version, ok := h.expectedVersion(c, nil)
	if !ok {
		return badRequest(c, h.m, "If-Match", "If-Match debe contener una versión numérica")
	}
	out, err := h.uc.Delete(c.UserContext(), c.Params("id"), version)
	if err != nil {
		return writeError(c, h.m, err)
	}
	setETag(c, out.Version)
	return c.JSON(out)
}

// Path godoc
// @Summary      Ruta de nombres desde la raíz
// @Tags         categories
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryPathResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/nodes/{id}/path [get]
func (h *CategoryHandler) Path(c *fiber.Ctx) error {
	out, err := h.uc.Path(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}

// Flat godoc
// @Summary      Lista plana en pre-orden
// @Tags         categories
// @Produce      json
// @Param        leaves  query  bool  false  "Solo categorías que admiten productos"
// @Success      200     {array}  dto.FlatCategoryResponse
// @Router       /api/categories/flat [get]
func (h *CategoryHandler) Flat(c *fiber.Ctx) error {
	out, err := h.uc.Flat(c.UserContext(), c.QueryBool("leaves", false))
	if err != nil {
		return writeError(c, h.m, err)
	}
	return c.JSON(out)
}
