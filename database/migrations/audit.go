package migrations

import (
	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateAuditTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating audit_log & notifications tables...")
	err := db.AutoMigrate(&models.AuditLog{}, &models.Notification{})
	if err != nil {
		configslog.Log.Error("Failed to migrate audit_log & notifications tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Audit_log & notifications tables migrated successfully")
	return nil
}
