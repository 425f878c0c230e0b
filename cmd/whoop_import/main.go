// Command whoop_import loads a WHOOP history dump into the database.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jkor2/lifeof/internal/config"
	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/service"
	"github.com/jkor2/lifeof/internal/whoop"
)

func main() {
	configFile := flag.String("config", "", "config file")
	file := flag.String("file", "whoop_full.json", "dump with recovery, sleep and workouts arrays")
	truncate := flag.Bool("clear", false, "empty the WHOOP tables before importing")
	flag.Parse()

	logger.Init(config.LogConfig{Level: "info", Console: true})

	cfg := config.Load(*configFile)
	db, err := cfg.OpenGormDB()
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatal("migrate failed:", err)
	}

	dump, err := whoop.ReadDump(*file)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("dump loaded", "file", *file, "recovery", len(dump.Recovery), "sleep", len(dump.Sleep), "workouts", len(dump.Workouts))

	loc, err := whoop.Location(cfg.Whoop.Timezone)
	if err != nil {
		log.Fatal(err)
	}
	// the client is never called on the import path
	svc := service.NewWhoopService(db, whoop.NewClient(whoop.OptionsFrom(cfg.Whoop), nil), loc)
	summary, err := svc.Import(context.Background(), dump, *truncate)
	if err != nil {
		log.Fatal("import failed:", err)
	}
	logger.Info("=== import done ===", "recovery", summary["recovery"], "sleep", summary["sleep"], "workouts", summary["workouts"])
}
