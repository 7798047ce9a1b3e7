package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benpsk/stockview/internal/config"
	"github.com/benpsk/stockview/internal/inventory"
	"github.com/benpsk/stockview/internal/logging"
	"github.com/benpsk/stockview/internal/postgres"
	"github.com/benpsk/stockview/internal/remote"
	"github.com/benpsk/stockview/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := remote.FromConfig(cfg.Inventory)
	opts := inventory.OptionsFromConfig(cfg.Inventory)
	opts.Logger = log
	deps := server.Deps{Upstream: client, Logger: log}

	if cfg.Database.Enabled() {
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			log.WithError(err).Fatal("database")
		}
		defer db.Close()

		opts.Journal = postgres.NewMutationJournal(db)
		deps.DB = db
	} else {
		log.Info("DATABASE_URL not set, mutation journal disabled")
	}

	deps.View = inventory.NewView(client, opts)

	r := server.NewRouter(cfg, deps)
	srv := server.New(cfg, r, log)

	log.WithFields(logrus.Fields{
		"url":       listenURL(cfg.HTTPAddr),
		"inventory": client.Endpoint(),
	}).Info("listening")
	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Fatal("server")
	}
}

func listenURL(addr string) string {
	listen := addr
	if strings.HasPrefix(listen, ":") {
		listen = "127.0.0.1" + listen
	} else if strings.HasPrefix(listen, "0.0.0.0:") {
		listen = "127.0.0.1" + listen[len("0.0.0.0"):]
	}
	if !strings.Contains(listen, "://") {
		listen = "http://" + listen
	}
	return listen
}
