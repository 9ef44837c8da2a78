package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JpegDev/poll-discord/src/pollbot/bot"
	"github.com/JpegDev/poll-discord/src/pollbot/components/audience"
	"github.com/JpegDev/poll-discord/src/pollbot/components/notify"
	"github.com/JpegDev/poll-discord/src/pollbot/components/poll"
	"github.com/JpegDev/poll-discord/src/pollbot/components/reminder"
	"github.com/JpegDev/poll-discord/src/pollbot/config"
	"github.com/JpegDev/poll-discord/src/shared/data"
	"github.com/JpegDev/poll-discord/src/shared/logger"
	"github.com/go-co-op/gocron"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New("pollbot", cfg.Development())
	defer zlog.Sync()

	db := data.MustMySQL(cfg.Storage.MySQLDSN)
	rdb := data.MustRedis(cfg.Storage.RedisURL)

	store := data.NewPollStore(db)
	ledger := data.NewVoteLedger(db)
	loc := cfg.Location()

	b, err := bot.New(bot.Config{
		Discord: cfg.Discord,
		Limits:  cfg.Limits,
		Store:   store,
		Ledger:  ledger,
		Redis:   rdb,
		Log:     zlog,
	})
	if err != nil {
		zlog.Fatalw("bot setup failed", "error", err)
	}

	resolver := audience.NewResolver(b.Session(), rdb, zlog)
	manager := poll.NewManager(poll.ManagerConfig{
		Store:    store,
		Ledger:   ledger,
		Session:  b.Session(),
		Audience: resolver,
		Redis:    rdb,
		Log:      zlog,
		Location: loc,
		Limits: poll.RenderLimits{
			MaxMentions:      cfg.Limits.MaxMentions,
			MaxContentLength: cfg.Limits.MaxContentLength,
		},
	})
	b.SetManager(manager)

	dispatcher := notify.NewDispatcher(b.Session(), loc, zlog)
	scheduler := reminder.NewScheduler(reminder.SchedulerConfig{
		Store:    store,
		Ledger:   ledger,
		Notifier: dispatcher,
		Closer:   manager,
		Audience: resolver,
		Rules:    cfg.Reminders,
		Location: loc,
		Log:      zlog,
	})

	if err := b.Start(); err != nil {
		zlog.Fatalw("discord connection failed", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Frequent trigger: deadline windows, weekly cycles, closure.
	go scheduler.Run(ctx)

	// Daily trigger, anchored to a wall-clock hour in the configured
	// timezone so restarts never drift it.
	daily := gocron.NewScheduler(loc)
	if _, err := daily.Cron(fmt.Sprintf("0 %d * * *", cfg.Reminders.DailyHour)).Do(func() {
		scheduler.DailySweep(ctx)
	}); err != nil {
		zlog.Fatalw("daily trigger setup failed", "error", err)
	}
	daily.StartAsync()

	zlog.Info("pollbot is running, press CTRL-C to exit")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	cancel()
	daily.Stop()
	if err := b.Stop(); err != nil {
		zlog.Errorw("discord shutdown failed", "error", err)
	}
	zlog.Info("pollbot stopped gracefully")
}
