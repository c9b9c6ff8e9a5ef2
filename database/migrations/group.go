package migrations

import (
	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateGroupsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating inviter_groups, inviters & categories tables...")
	err := db.AutoMigrate(&models.InviterGroup{}, &models.Inviter{}, &models.Category{})
	if err != nil {
		configslog.Log.Error("Failed to migrate inviter_groups, inviters & categories tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Inviter_groups, inviters & categories tables migrated successfully")
	return nil
}
