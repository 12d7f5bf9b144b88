package audit

import (
	"encoding/json"

	"watify-backend/internal/database"
	"watify-backend/internal/models"

	"github.com/sirupsen/logrus"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog persiste el registro de auditoría. Nunca tumba la operación que
// lo originó: si falla, se reporta al log y la venta o incidencia sigue.
func WriteLog(opts LogOptions) {
	// jsonb no acepta string vacío, el ausente se guarda como null JSON
	beforeStr := "null"
	afterStr := "null"
	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"entity_type": opts.EntityType,
			"entity_id":   opts.EntityID,
		}).Error("No se pudo guardar el registro de auditoría")
	}
}
