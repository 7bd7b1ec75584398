package domain

import (
	"errors"
	"fmt"
)

// Clases de error de dominio (sin dependencias externas).
// Toda falla de validación, duplicado, estructura o referencia se detecta
// antes de tocar el almacenamiento; ErrTransport es la única clase posible
// después de emitir una escritura.
var (
	ErrNotFound    = errors.New("recurso no encontrado")
	ErrValidation  = errors.New("entrada inválida")
	ErrDuplicate   = errors.New("recurso duplicado")
	ErrStructural  = errors.New("la operación viola la estructura del árbol")
	ErrReferential = errors.New("el recurso tiene referencias activas")
	ErrTransport   = errors.New("almacenamiento no disponible")
	ErrConflict    = errors.New("conflicto con el estado actual")
)

// Code identifica la causa concreta dentro de una clase de error.
type Code string

// Códigos de error expuestos por la API.
const (
	CodeInvalidInput  Code = "VALIDATION"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeTransport     Code = "TRANSPORT"
	CodeDuplicateID   Code = "DUPLICATE_ID"
	CodeDuplicateName Code = "DUPLICATE_NAME"
	CodeLeafViolation Code = "LEAF_VIOLATION"
	CodeHasChildren   Code = "HAS_CHILDREN"
	CodeCycleAttempt  Code = "CYCLE_ATTEMPT"
	CodeProductsExist Code = "PRODUCTS_EXIST"
	CodeNotLeaf       Code = "NOT_LEAF_CATEGORY"
	CodeInUse         Code = "IN_USE"

	CodeInvalidKey           Code = "INVALID_KEY"
	CodeDuplicateKey         Code = "DUPLICATE_KEY"
	CodeDuplicateLabel       Code = "DUPLICATE_LABEL"
	CodeDuplicateScopedCombo Code = "DUPLICATE_SCOPED_COMBO"
	CodeDuplicateRowValue    Code = "DUPLICATE_ROW_VALUE"
	CodeRequired             Code = "REQUIRED"
	CodeUnknownField         Code = "UNKNOWN_FIELD"
	CodeConstraint           Code = "CONSTRAINT"
)

// Error es un error de dominio con clase, código y contexto para el cliente.
type Error struct {
	Class   error
	Code    Code
	Message string
	Field   string
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

// Unwrap permite errors.Is(err, domain.ErrValidation) y similares.
func (e *Error) Unwrap() error { return e.Class }

// WithDetails adjunta datos estructurados (ids, conteos) al error.
func (e *Error) WithDetails(kv map[string]any) *Error {
	e.Details = kv
	return e
}

func newError(class error, code Code, field, format string, args ...any) *Error {
	return &Error{Class: class, Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validation construye un error de entrada mal formada.
func Validation(code Code, field, format string, args ...any) *Error {
	return newError(ErrValidation, code, field, format, args...)
}

// Duplicate construye un error de colisión de nombre, clave o etiqueta.
func Duplicate(code Code, field, format string, args ...any) *Error {
	return newError(ErrDuplicate, code, field, format, args...)
}

// Structural construye un error de violación de hoja, hijos o ciclo.
func Structural(code Code, format string, args ...any) *Error {
	return newError(ErrStructural, code, "", format, args...)
}

// Referential construye un error de borrado bloqueado por referencias.
func Referential(code Code, format string, args ...any) *Error {
	return newError(ErrReferential, code, "", format, args...)
}

// Conflict construye un error de escritura sobre una versión desactualizada.
func Conflict(format string, args ...any) *Error {
	return newError(ErrConflict, CodeConflict, "version", format, args...)
}

// NotFound construye un error de recurso inexistente.
func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, CodeNotFound, "", format, args...)
}

// TransportError envuelve una falla del almacenamiento con la operación y el id destino.
type TransportError struct {
	Op       string
	TargetID string
	Err      error
}

func (e *TransportError) Error() string {
	if e.TargetID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.TargetID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is hace que errors.Is(err, ErrTransport) sea verdadero.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// WrapTransport envuelve err como TransportError salvo que ya sea un error de dominio
// (duplicado por constraint único, conflicto de versión, no encontrado).
func WrapTransport(op, targetID string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	for _, class := range []error{ErrConflict, ErrDuplicate, ErrNotFound, ErrTransport} {
		if errors.Is(err, class) {
			return err
		}
	}
	return &TransportError{Op: op, TargetID: targetID, Err: err}
}

// CodeOf devuelve el código de un error de dominio o uno genérico según la clase.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrTransport):
		return CodeTransport
	case errors.Is(err, ErrValidation):
		return CodeInvalidInput
	}
	return ""
}
