package configs

import (
	"time"

	"davetli.app/configs/configslog"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// ConnectDB PostgreSQL bağlantısını kurar ve global DB örneğini ayarlar.
func ConnectDB() *gorm.DB {
	cfg := GetConfig()

	gormDB, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		configslog.Log.Fatal("Veritabanına bağlanılamadı", zap.Error(err))
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		configslog.Log.Fatal("Veritabanı havuzu alınamadı", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	db = gormDB
	configslog.SLog.Info("Veritabanı bağlantısı kuruldu")
	return db
}

// GetDB mevcut DB örneğini döndürür.
func GetDB() *gorm.DB {
	return db
}

// SetDB DB örneğini dışarıdan ayarlar (testlerde in-memory sqlite için).
func SetDB(d *gorm.DB) {
	db = d
}
