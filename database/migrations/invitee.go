package migrations

import (
	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateInviteesTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating invitees table...")
	err := db.AutoMigrate(&models.Invitee{})
	if err != nil {
		configslog.Log.Error("Failed to migrate invitees table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Invitees table migrated successfully")
	return nil
}
