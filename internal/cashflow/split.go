package cashflow

import "github.com/shopspring/decimal"

// Split separa el efectivo de un chofer-día en "sobre de hoy" (lo que debe
// entregar físicamente) y "sobre facturado" (dinero ya asignado a un cliente
// facturado). Toda la aritmética corre en decimal; el redondeo ocurre solo
// al serializar.
type Split struct {
	// EfectivoBruto es la suma sin ajustes de los métodos tipo efectivo del
	// día; se expone para auditoría.
	EfectivoBruto decimal.Decimal `json:"efectivo_bruto"`
	// Facturado = cantidad facturada × precio base de la recarga.
	Facturado decimal.Decimal `json:"facturado"`
	// Incidencias es la suma firmada de los incidentes del día; un ajuste
	// negativo regresa dinero al sobre.
	Incidencias decimal.Decimal `json:"incidencias"`
	// SobreDelDia = max(0, efectivo − facturado − incidencias).
	SobreDelDia decimal.Decimal `json:"sobre_del_dia"`
}

// Calcular aplica la regla del sobre. El orden importa y el clamp es uno
// solo al final: primero se quita lo facturado, luego las incidencias, y
// hasta entonces se corta en cero. Clampear después de cada resta absorbería
// incidentes que deben dejar el sobre en cero.
func Calcular(efectivo decimal.Decimal, cantidadFacturada int, precioRecarga, incidencias decimal.Decimal) Split {
	facturado := precioRecarga.Mul(decimal.NewFromInt(int64(cantidadFacturada)))

	sobre := efectivo.Sub(facturado).Sub(incidencias)
	if sobre.IsNegative() {
		sobre = decimal.Zero
	}

	return Split{
		EfectivoBruto: efectivo,
		Facturado:     facturado,
		Incidencias:   incidencias,
		SobreDelDia:   sobre,
	}
}
