package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"surveyhub/internal/config"
	"surveyhub/internal/scheduler"
	"surveyhub/internal/server"
	"surveyhub/internal/storage"
	"surveyhub/internal/storage/providers"
	httptransport "surveyhub/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.InitDB(cfg.DatabaseUrl)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	allProviders := providers.New(db)
	scheduler.NewInvitationSweeper(allProviders.InvitationProvider, time.Minute).Start(ctx)

	router := httptransport.Router(allProviders, cfg)

	addr := ":" + cfg.Server.Port
	log.Printf("listening on %s", addr)
	if err := server.Start(ctx, addr, cfg.CORS.AllowedOrigin, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
