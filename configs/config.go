package configs

import (
	"os"
	"strconv"

	"davetli.app/configs/configslog"

	"github.com/joho/godotenv"
)

// Config uygulamanın ortam değişkenlerinden okunan ayarları.
type Config struct {
	Port               string
	DatabaseURL        string
	LogLevel           string
	CheckinTokenSecret string
	CheckinTokenTTL    int    // saat cinsinden
	DefaultPhoneRegion string // telefon normalizasyonu için varsayılan ülke
}

var appConfig *Config

// LoadConfig .env dosyasını (varsa) ve ortam değişkenlerini okur.
func LoadConfig() *Config {
	if appConfig != nil {
		return appConfig
	}

	// .env opsiyonel; production'da ortam değişkenleri kullanılır
	if err := godotenv.Load(); err != nil {
		configslog.SLog.Info(".env dosyası bulunamadı, ortam değişkenleri kullanılıyor")
	}

	appConfig = &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=davetli port=5432 sslmode=disable"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CheckinTokenSecret: getEnv("CHECKIN_TOKEN_SECRET", ""),
		CheckinTokenTTL:    getEnvInt("CHECKIN_TOKEN_TTL_HOURS", 24),
		DefaultPhoneRegion: getEnv("DEFAULT_PHONE_REGION", "EG"),
	}

	configslog.InitLogger(appConfig.LogLevel)

	if appConfig.CheckinTokenSecret == "" {
		configslog.SLog.Warn("CHECKIN_TOKEN_SECRET tanımlı değil, check-in konsolu token üretemez")
	}

	return appConfig
}

// GetConfig yüklenmiş config'i döndürür (gerekirse yükler).
func GetConfig() *Config {
	if appConfig == nil {
		return LoadConfig()
	}
	return appConfig
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
