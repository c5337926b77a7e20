package main

import (
	"aria/app/client/mailer"
	"aria/app/client/neograph"
	"aria/app/client/postgres"
	"aria/app/client/rediscache"
	"aria/app/client/semantic"
	"aria/app/config"
	"aria/app/server"
	"aria/app/service/ai"
	"aria/app/service/chat"
	"aria/app/service/reminder"
	"aria/app/util/mylog"
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, postgres.NewClient)
	do.Provide(di, rediscache.NewClient)
	do.Provide(di, neograph.NewClient)
	do.Provide(di, semantic.NewClient)
	do.Provide(di, mailer.NewClient)
	do.Provide(di, ai.New)
	do.Provide(di, chat.New)
	do.Provide(di, reminder.New)
	do.Provide(di, server.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	do.MustInvoke[*reminder.Service](di).Start()

	go func() {
		if err := do.MustInvoke[*server.Server](di).Run(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-appCtx.Done()
}
