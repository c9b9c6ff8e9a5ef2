package migrations

import (
	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateEventInviteesTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating event_invitees table...")
	err := db.AutoMigrate(&models.EventInvitee{})
	if err != nil {
		configslog.Log.Error("Failed to migrate event_invitees table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Event_invitees table migrated successfully")
	return nil
}
