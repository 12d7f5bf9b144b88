package cashflow

import (
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PrecioRecarga obtiene el precio base del producto Recarga. Es el precio
// global, no el especial por empresa: así se valúa lo facturado.
func PrecioRecarga() (decimal.Decimal, error) {
	var product models.Product
	err := database.DB.Where("name = ?", models.ProductRecarga).First(&product).Error
	if err != nil {
		return decimal.Zero, err
	}
	return product.BasePrice, nil
}

// EfectivoDelDia suma las ventas del chofer en métodos tipo efectivo dentro
// del día del negocio. Se acota al día calendario, no a la ruta, para que
// una ruta que cruza medianoche cuadre con el tablero semanal.
func EfectivoDelDia(choferID uint, day string) (decimal.Decimal, error) {
	start, end, err := fechas.DayBounds(day)
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	err = database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(transactions.total), 0)").
		Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
		Where("payment_methods.is_cash_equivalent AND transactions.user_id = ?", choferID).
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", start, end).
		Scan(&total).Error
	return total, err
}

// IncidenciasDelDia suma los montos firmados de los incidentes del chofer
// en la fecha dada.
func IncidenciasDelDia(choferID uint, day string) (decimal.Decimal, error) {
	if _, err := fechas.ParseDay(day); err != nil {
		return decimal.Zero, err
	}

	// La columna date se compara contra el string YYYY-MM-DD; un time.Time
	// viajaría como timestamptz y el cast correría la fecha
	var total decimal.Decimal
	err := database.DB.Model(&models.WeeklyIncident{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("chofer_id = ? AND date = ?", choferID, day).
		Scan(&total).Error
	return total, err
}

// FacturadoDelDia suma los garrafones facturados en las rutas que el chofer
// arrancó ese día. Se ancla a la fecha de inicio de la ruta, igual que el
// tablero semanal.
func FacturadoDelDia(choferID uint, day string) (int, error) {
	start, end, err := fechas.DayBounds(day)
	if err != nil {
		return 0, err
	}

	var total int
	err = database.DB.Model(&models.RouteFactura{}).
		Select("COALESCE(SUM(route_facturas.cantidad), 0)").
		Joins("JOIN routes ON routes.id = route_facturas.route_id").
		Where("routes.user_id = ?", choferID).
		Where("routes.started_at >= ? AND routes.started_at < ?", start, end).
		Scan(&total).Error
	return total, err
}

// CantidadFacturada suma los garrafones declarados en facturas de la ruta.
// Recibe el handle para poder correr dentro de la transacción que valida
// el cupo de facturación.
func CantidadFacturada(db *gorm.DB, routeID uint) (int, error) {
	var total int
	err := db.Model(&models.RouteFactura{}).
		Select("COALESCE(SUM(cantidad), 0)").
		Where("route_id = ?", routeID).
		Scan(&total).Error
	return total, err
}

// GarrafonesEfectivoDeRuta cuenta los garrafones vendidos en la ruta con
// métodos tipo efectivo. Es el tope de lo que se puede facturar.
func GarrafonesEfectivoDeRuta(db *gorm.DB, routeID uint) (int, error) {
	var total int
	err := db.Model(&models.TransactionItem{}).
		Select("COALESCE(SUM(transaction_items.quantity), 0)").
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
		Where("transactions.route_id = ? AND payment_methods.is_cash_equivalent", routeID).
		Scan(&total).Error
	return total, err
}
