package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watify-backend/internal/apperr"
)

func TestValidateItems(t *testing.T) {
	items := []ItemInput{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("45")},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("180.50")},
	}

	rows, total, err := validateItems(items)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, decimal.RequireFromString("315.50").Equal(total), "total = %s", total)
	assert.True(t, decimal.RequireFromString("135").Equal(rows[0].Subtotal))
	assert.True(t, decimal.RequireFromString("180.50").Equal(rows[1].Subtotal))
}

func TestValidateItemsRechazos(t *testing.T) {
	tests := []struct {
		name  string
		items []ItemInput
	}{
		{name: "SinItems", items: nil},
		{name: "SinProducto", items: []ItemInput{{Quantity: 1, UnitPrice: decimal.NewFromInt(45)}}},
		{name: "CantidadCero", items: []ItemInput{{ProductID: 1, Quantity: 0, UnitPrice: decimal.NewFromInt(45)}}},
		{name: "CantidadNegativa", items: []ItemInput{{ProductID: 1, Quantity: -2, UnitPrice: decimal.NewFromInt(45)}}},
		{name: "PrecioNegativo", items: []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := validateItems(tt.items)
			require.Error(t, err)

			appErr, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.CodeValidation, appErr.Code)
		})
	}
}
