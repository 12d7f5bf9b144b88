package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Clasificación de errores de negocio. El ErrorHandler central de cmd/server
// traduce cada código a su status HTTP y lo incluye en el cuerpo JSON para
// que el frontend distinga rechazos de validación de fallas transitorias.
const (
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
	CodeForbidden  = "forbidden"
	CodeConflict   = "conflict"
	CodeTransient  = "transient"
)

type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Status: fiber.StatusBadRequest, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Status: fiber.StatusForbidden, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Status: fiber.StatusConflict, Message: msg}
}

func Transient(msg string) *Error {
	return &Error{Code: CodeTransient, Status: fiber.StatusServiceUnavailable, Message: msg}
}

// As extrae un *Error de cualquier error envuelto.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
