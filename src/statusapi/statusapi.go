package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JpegDev/poll-discord/src/shared/data"
	"github.com/JpegDev/poll-discord/src/shared/logger"
	"github.com/JpegDev/poll-discord/src/statusapi/config"
	"github.com/JpegDev/poll-discord/src/statusapi/webserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New("statusapi", cfg.Development())
	defer zlog.Sync()

	db := data.MustMySQL(cfg.Storage.MySQLDSN)
	store := data.NewPollStore(db)
	ledger := data.NewVoteLedger(db)

	router := webserver.New(cfg, store, ledger, zlog)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatalw("http server", "error", err)
		}
	}()

	zlog.Infow("status API listening", "port", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		zlog.Errorw("shutdown", "error", err)
	}
}
