package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/metrics"
)

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// valueCodes errores de captura de valores dinámicos: entidad no procesable.
var valueCodes = map[domain.Code]bool{
	domain.CodeRequired:     true,
	domain.CodeConstraint:   true,
	domain.CodeUnknownField: true,
}

// statusFor traduce la clase de error de dominio a código HTTP.
func statusFor(err error) int {
	var de *domain.Error
	switch {
	case errors.As(err, &de) && errors.Is(err, domain.ErrValidation) && valueCodes[de.Code]:
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrStructural),
		errors.Is(err, domain.ErrReferential):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrTransport):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// writeError responde con dto.ErrorResponse y cuenta los rechazos de dominio.
func writeError(c *fiber.Ctx, m *metrics.Metrics, err error) error {
	status := statusFor(err)
	body := dto.ErrorResponse{Code: string(domain.CodeOf(err)), Message: err.Error()}
	var de *domain.Error
	if errors.As(err, &de) {
		body.Field = de.Field
		body.Details = de.Details
	}
	switch {
	case status == fiber.StatusBadGateway:
		body.Code = string(domain.CodeTransport)
		body.Message = domain.ErrTransport.Error()
	case status >= fiber.StatusInternalServerError:
		body.Code = "INTERNAL"
		body.Message = "error interno"
	case body.Code == "":
		body.Code = string(domain.CodeInvalidInput)
	}
	if status < fiber.StatusInternalServerError && c.Method() != fiber.MethodGet {
		m.Rejected(body.Code)
	}
	return c.Status(status).JSON(body)
}

// parseBody decodifica el cuerpo JSON y aplica las reglas validate de dest.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return domain.Validation(domain.CodeInvalidInput, "", "cuerpo inválido: %v", err)
	}
	return validateStruct(dest)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.TrimPrefix(fe.Namespace(), reflect.Indirect(reflect.ValueOf(v)).Type().Name()+".")
		if fe.Param() != "" {
			return domain.Validation(domain.CodeInvalidInput, field, "%s no cumple la regla %s=%s", field, fe.Tag(), fe.Param())
		}
		return domain.Validation(domain.CodeInvalidInput, field, "%s no cumple la regla %s", field, fe.Tag())
	}
	return domain.Validation(domain.CodeInvalidInput, "", "entrada inválida: %v", err)
}

func badRequest(c *fiber.Ctx, m *metrics.Metrics, field, msg string) error {
	return writeError(c, m, domain.Validation(domain.CodeInvalidInput, field, "%s", msg))
}
