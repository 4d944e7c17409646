package main

import (
	"flag"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/configs/configslog"
	"kiliheights.com/database"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configslog.InitLogger()
	defer configslog.SyncLogger()

	migrateFlag := flag.Bool("migrate", false, "run database migrations")
	seedFlag := flag.Bool("seed", false, "run database seeders")
	flag.Parse()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	database.Initialize(configsdatabase.GetDB(), *migrateFlag, *seedFlag)
}
