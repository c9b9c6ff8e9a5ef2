package main

import (
	"flag"

	"davetli.app/configs"
	"davetli.app/configs/configslog"
	"davetli.app/database"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Veritabanı migrasyonlarını çalıştır")
	seedFlag := flag.Bool("seed", false, "Veritabanı seeder'larını çalıştır")
	flag.Parse()

	cfg := configs.LoadConfig()
	configslog.InitLogger(cfg.LogLevel)
	defer configslog.Sync()

	db := configs.ConnectDB()

	configslog.SLog.Info("Veritabanı başlatma işlemi çalıştırılıyor...")
	database.Initialize(db, *migrateFlag, *seedFlag)
	configslog.SLog.Info("Veritabanı başlatma işlemi tamamlandı.")
}
