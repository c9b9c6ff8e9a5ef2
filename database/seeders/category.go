package seeders

import (
	"errors"

	"davetli.app/configs/configslog"
	"davetli.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedCategories varsayılan davetli kategorilerini oluşturur.
func SeedCategories(db *gorm.DB) error {
	categories := []models.Category{
		{Name: "Protokol"},
		{Name: "VIP"},
		{Name: "Basın"},
		{Name: "Genel"},
	}

	configslog.SLog.Info("Kategori seed işlemi başlıyor...")
	for _, category := range categories {
		var existing models.Category
		result := db.Where("name = ?", category.Name).First(&existing)
		if result.Error == nil {
			configslog.SLog.Debugf("Kategori '%s' zaten mevcut, oluşturma atlanıyor.", category.Name)
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Kategori kontrol edilirken veritabanı hatası",
				zap.String("name", category.Name), zap.Error(result.Error))
			return result.Error
		}
		if err := db.Create(&category).Error; err != nil {
			configslog.Log.Error("Kategori oluşturulamadı",
				zap.String("name", category.Name), zap.Error(err))
			return err
		}
		configslog.SLog.Infof("Kategori '%s' oluşturuldu (ID: %d).", category.Name, category.ID)
	}
	return nil
}
