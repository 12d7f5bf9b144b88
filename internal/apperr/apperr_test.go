package apperr_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watify-backend/internal/apperr"
)

func TestConstructores(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperr.Error
		wantCode   string
		wantStatus int
	}{
		{name: "Validation", err: apperr.Validation("m"), wantCode: apperr.CodeValidation, wantStatus: fiber.StatusBadRequest},
		{name: "NotFound", err: apperr.NotFound("m"), wantCode: apperr.CodeNotFound, wantStatus: fiber.StatusNotFound},
		{name: "Forbidden", err: apperr.Forbidden("m"), wantCode: apperr.CodeForbidden, wantStatus: fiber.StatusForbidden},
		{name: "Conflict", err: apperr.Conflict("m"), wantCode: apperr.CodeConflict, wantStatus: fiber.StatusConflict},
		{name: "Transient", err: apperr.Transient("m"), wantCode: apperr.CodeTransient, wantStatus: fiber.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.Equal(t, "m", tt.err.Error())
		})
	}
}

func TestAsDesenvuelve(t *testing.T) {
	inner := apperr.Conflict("la ruta ya fue cerrada")
	wrapped := fmt.Errorf("al finalizar: %w", inner)

	got, ok := apperr.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, inner, got)

	_, ok = apperr.As(fmt.Errorf("error cualquiera"))
	assert.False(t, ok)
}
