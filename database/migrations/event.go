package migrations

import (
	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateEventsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating events & event_group_quotas tables...")
	err := db.AutoMigrate(&models.Event{}, &models.EventGroupQuota{})
	if err != nil {
		configslog.Log.Error("Failed to migrate events & event_group_quotas tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Events & event_group_quotas tables migrated successfully")
	return nil
}
