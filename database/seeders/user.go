package seeders

import (
	"errors"

	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedSystemAdmin ilk admin kullanıcıyı oluşturur; varsa dokunmaz.
func SeedSystemAdmin(db *gorm.DB) error {
	var existing models.User
	result := db.Where("username = ?", "admin").First(&existing)
	if result.Error == nil {
		configslog.SLog.Debug("Admin kullanıcısı zaten mevcut, oluşturma atlanıyor.")
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Admin kullanıcısı kontrol edilirken veritabanı hatası", zap.Error(result.Error))
		return result.Error
	}

	admin := models.User{
		Username: "admin",
		FullName: "Sistem Yöneticisi",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		configslog.Log.Error("Admin kullanıcısı oluşturulamadı", zap.Error(err))
		return err
	}
	configslog.SLog.Infof("Admin kullanıcısı oluşturuldu (ID: %d).", admin.ID)
	return nil
}
