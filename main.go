package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/database"
	"davetli.app/routes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := configs.LoadConfig()
	configslog.InitLogger(cfg.LogLevel)
	defer configslog.Sync()

	db := configs.ConnectDB()
	database.Initialize(db, true, true)

	app := fiber.New(fiber.Config{
		AppName:     "davetli",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	routes.SetupRoutes(app)

	// Graceful shutdown: bekleyen istekler tamamlanır, sonra kapanır
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		configslog.SLog.Info("Kapatma sinyali alındı, sunucu durduruluyor...")
		if err := app.Shutdown(); err != nil {
			configslog.Log.Error("Sunucu kapatılırken hata oluştu", zap.Error(err))
		}
	}()

	configslog.SLog.Infof("Sunucu %s portunda dinliyor", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		configslog.Log.Fatal("Sunucu başlatılamadı", zap.Error(err))
	}
}
