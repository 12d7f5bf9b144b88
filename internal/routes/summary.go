package routes

import (
	"encoding/json"
	"errors"
	"time"

	"watify-backend/internal/database"
	"watify-backend/internal/garrafones"
	"watify-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MethodTotal struct {
	Method string          `json:"method"`
	Color  string          `json:"color"`
	Icon   string          `json:"icon"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

type CompanyTotal struct {
	Company string          `json:"company"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
}

type RouteSummary struct {
	RouteID       uint              `json:"route_id"`
	ByMethod      []MethodTotal     `json:"by_method"`
	Companies     []CompanyTotal    `json:"companies"`
	TotalNegocios decimal.Decimal   `json:"total_negocios"`
	Garrafones    garrafones.Cuenta `json:"garrafones"`
}

// BuildSummary arma el resumen financiero y de garrafones de una ruta desde
// las filas actuales. Es la misma computación para la vista viva de una ruta
// activa y para congelar el snapshot al finalizar.
func BuildSummary(route *models.Route) (*RouteSummary, error) {
	var byMethod []MethodTotal
	err := database.DB.Model(&models.Transaction{}).
		Select("payment_methods.name AS method, payment_methods.color, payment_methods.icon, "+
			"SUM(transactions.total) AS total, COUNT(transactions.id) AS count").
		Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
		Where("transactions.route_id = ?", route.ID).
		Group("payment_methods.id").
		Order("SUM(transactions.total) DESC").
		Scan(&byMethod).Error
	if err != nil {
		return nil, err
	}

	var companies []CompanyTotal
	err = database.DB.Model(&models.Transaction{}).
		Select("companies.name AS company, SUM(transactions.total) AS total, COUNT(transactions.id) AS count").
		Joins("JOIN companies ON companies.id = transactions.company_id").
		Where("transactions.route_id = ? AND transactions.company_id IS NOT NULL", route.ID).
		Group("companies.id").
		Order("companies.name").
		Scan(&companies).Error
	if err != nil {
		return nil, err
	}

	totalNegocios := decimal.Zero
	for _, co := range companies {
		totalNegocios = totalNegocios.Add(co.Total)
	}

	cuenta, err := garrafones.ForRoute(route.ID, route.GarrafonesLoaded)
	if err != nil {
		return nil, err
	}

	if byMethod == nil {
		byMethod = []MethodTotal{}
	}
	if companies == nil {
		companies = []CompanyTotal{}
	}

	return &RouteSummary{
		RouteID:       route.ID,
		ByMethod:      byMethod,
		Companies:     companies,
		TotalNegocios: totalNegocios,
		Garrafones:    cuenta,
	}, nil
}

var errRutaYaFinalizada = errors.New("la ruta ya está finalizada")

// closeRoute marca la ruta como finalizada y congela su resumen en la misma
// transacción. El update exige status activo: finalizar dos veces falla y el
// snapshot ya congelado no se toca.
func closeRoute(db *gorm.DB, route *models.Route, summary *RouteSummary) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Route{}).
			Where("id = ? AND status = ?", route.ID, models.RouteActive).
			Updates(map[string]interface{}{"status": models.RouteFinished, "finished_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errRutaYaFinalizada
		}
		route.Status = models.RouteFinished
		route.FinishedAt = &now
		return saveSnapshot(tx, route.ID, summary)
	})
}

// saveSnapshot congela el resumen de la ruta. Si ya existe un snapshot se
// conserva el original: el histórico es inmutable.
func saveSnapshot(tx *gorm.DB, routeID uint, summary *RouteSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	snap := models.RouteSummarySnapshot{RouteID: routeID, Payload: string(payload)}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "route_id"}},
		DoNothing: true,
	}).Create(&snap).Error
}

// loadSnapshot lee el resumen congelado de una ruta terminada.
func loadSnapshot(routeID uint) (*RouteSummary, error) {
	var snap models.RouteSummarySnapshot
	if err := database.DB.Where("route_id = ?", routeID).First(&snap).Error; err != nil {
		return nil, err
	}
	var summary RouteSummary
	if err := json.Unmarshal([]byte(snap.Payload), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
