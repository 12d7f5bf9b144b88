package cashflow_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"watify-backend/internal/cashflow"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestCalcular(t *testing.T) {
	type args struct {
		efectivo          decimal.Decimal
		cantidadFacturada int
		precioRecarga     decimal.Decimal
		incidencias       decimal.Decimal
	}

	tests := []struct {
		name          string
		args          args
		wantFacturado decimal.Decimal
		wantSobre     decimal.Decimal
	}{
		{
			name:          "DiaConFacturaEIncidencias",
			args:          args{efectivo: d("1000"), cantidadFacturada: 4, precioRecarga: d("45"), incidencias: d("100")},
			wantFacturado: d("180"),
			wantSobre:     d("720"),
		},
		{
			name:          "IncidenciasConsumenTodoElSobre",
			args:          args{efectivo: d("1000"), cantidadFacturada: 0, precioRecarga: d("45"), incidencias: d("1000")},
			wantFacturado: d("0"),
			wantSobre:     d("0"),
		},
		{
			name:          "IncidenciasExcedenElEfectivo",
			args:          args{efectivo: d("500"), cantidadFacturada: 2, precioRecarga: d("45"), incidencias: d("600")},
			wantFacturado: d("90"),
			wantSobre:     d("0"),
		},
		{
			name: "AjusteNegativoRegresaDinero",
			// Un ajuste de 500→600 guarda amount = -100 y suma al sobre
			args:          args{efectivo: d("500"), cantidadFacturada: 0, precioRecarga: d("45"), incidencias: d("-100")},
			wantFacturado: d("0"),
			wantSobre:     d("600"),
		},
		{
			name:          "SinMovimientos",
			args:          args{efectivo: d("0"), cantidadFacturada: 0, precioRecarga: d("45"), incidencias: d("0")},
			wantFacturado: d("0"),
			wantSobre:     d("0"),
		},
		{
			name:          "CentavosSinPerderPrecision",
			args:          args{efectivo: d("1000.50"), cantidadFacturada: 3, precioRecarga: d("45.25"), incidencias: d("0.25")},
			wantFacturado: d("135.75"),
			wantSobre:     d("864.50"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cashflow.Calcular(tt.args.efectivo, tt.args.cantidadFacturada,
				tt.args.precioRecarga, tt.args.incidencias)

			assert.True(t, tt.wantFacturado.Equal(got.Facturado),
				"facturado = %s, se esperaba %s", got.Facturado, tt.wantFacturado)
			assert.True(t, tt.wantSobre.Equal(got.SobreDelDia),
				"sobre = %s, se esperaba %s", got.SobreDelDia, tt.wantSobre)
			assert.True(t, tt.args.efectivo.Equal(got.EfectivoBruto))
			assert.True(t, tt.args.incidencias.Equal(got.Incidencias))
		})
	}
}

func TestCalcularClampUnicoAlFinal(t *testing.T) {
	// El clamp es uno solo al final: con facturado que excede el efectivo y
	// una incidencia negativa, restar y clampear por pasos daría otro
	// resultado. 100 − 500 + 450 = 50, no 450.
	got := cashflow.Calcular(d("100"), 10, d("50"), d("-450"))
	assert.True(t, d("50").Equal(got.SobreDelDia), "sobre = %s", got.SobreDelDia)
}
