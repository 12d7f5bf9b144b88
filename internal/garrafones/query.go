package garrafones

import (
	"watify-backend/internal/database"
	"watify-backend/internal/models"
)

// ForRoute re-suma los contadores de la ruta desde las filas actuales de
// ventas y quebrados. Es la vista "viva": cada petición recalcula, no hay
// contadores cacheados que se puedan desincronizar.
func ForRoute(routeID uint, cargados int) (Cuenta, error) {
	type soldRow struct {
		Recargas int
		Nuevos   int
	}
	var sold soldRow
	err := database.DB.Model(&models.TransactionItem{}).
		Select(
			"COALESCE(SUM(CASE WHEN products.name = ? THEN transaction_items.quantity ELSE 0 END), 0) AS recargas, "+
				"COALESCE(SUM(CASE WHEN products.name = ? THEN transaction_items.quantity ELSE 0 END), 0) AS nuevos",
			models.ProductRecarga, models.ProductNuevo,
		).
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Joins("JOIN products ON products.id = transaction_items.product_id").
		Where("transactions.route_id = ?", routeID).
		Scan(&sold).Error
	if err != nil {
		return Cuenta{}, err
	}

	type brokenRow struct {
		Llenos int
		Vacios int
	}
	var broken brokenRow
	err = database.DB.Model(&models.BrokenGarrafon{}).
		Select("COALESCE(SUM(CASE WHEN was_full THEN 1 ELSE 0 END), 0) AS llenos, " +
			"COALESCE(SUM(CASE WHEN was_full THEN 0 ELSE 1 END), 0) AS vacios").
		Where("route_id = ?", routeID).
		Scan(&broken).Error
	if err != nil {
		return Cuenta{}, err
	}

	return Reconciliar(cargados, sold.Recargas, sold.Nuevos, broken.Llenos, broken.Vacios), nil
}
