package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/jkor2/lifeof/internal/config"
	"github.com/jkor2/lifeof/internal/handler"
	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/service"
	"github.com/jkor2/lifeof/internal/whoop"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	dumpPath := flag.String("whoop-dump", "", "write raw records of every full WHOOP sync to this file")
	flag.Parse()

	cfg := config.Load(*configFile)
	defer logger.Init(cfg.Log).Close()
	if err := cfg.Auth.Validate(); err != nil {
		slog.Error("refusing to start, set JWT_SECRET", "err", err)
		os.Exit(1)
	}

	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	loc, err := whoop.Location(cfg.Whoop.Timezone)
	if err != nil {
		slog.Warn("unknown whoop timezone, using UTC", "tz", cfg.Whoop.Timezone, "err", err)
	}
	if cfg.Whoop.ClientID == "" {
		slog.Warn("WHOOP_CLIENT_ID not set, WHOOP connect will fail")
	}
	if !cfg.Auth.Enabled() {
		slog.Warn("no admin password hash configured, write routes are open")
	}

	wc := whoop.NewClient(whoop.OptionsFrom(cfg.Whoop), whoop.StoreFrom(cfg.Whoop, cfg.Redis))
	whoopSvc := service.NewWhoopService(db, wc, loc)
	whoopSvc.DumpPath = *dumpPath
	entrySvc := service.NewEntryService(db)

	r := handler.NewRouter(handler.Deps{
		Config:     cfg,
		DB:         db,
		Auth:       service.NewAuthService(cfg.Auth),
		Attributes: service.NewAttributeService(db),
		Entries:    entrySvc,
		Export:     service.NewExportService(entrySvc),
		Whoop:      whoopSvc,
		Charts:     service.NewChartService(db, loc),
	})

	slog.Info("server starting", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
