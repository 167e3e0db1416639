// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"runners-bot/internal/config"
	"runners-bot/internal/discord"
	"runners-bot/internal/liveness"
	"runners-bot/internal/storage"
	v "runners-bot/internal/version"
	"runners-bot/pkg/jobmgr"
)

func main() {
	log.Printf("[INFO] Starting %s...", v.String())
	log.Printf("[INFO] %s", v.AppDescription)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Println("[ERR] Failed to flush storage:", err)
		}
	}()

	bot, err := discord.NewBot(cfg, store)
	if err != nil {
		log.Fatal("[ERR] ", err)
	}

	jobs := jobmgr.NewManager(ctx, func(msg string) {
		log.Println("[INFO] job", msg)
	})
	if err := jobs.StartAsync("liveness", func(ctx context.Context) error {
		return liveness.Run(ctx, cfg.LivenessAddr)
	}); err != nil {
		log.Fatal("[ERR] ", err)
	}
	if err := jobs.StartAsync("discord", bot.Run); err != nil {
		log.Fatal("[ERR] ", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...", s)
	case f := <-jobs.Failures():
		log.Println("[ERR]", f)
	}

	cancel()
	jobs.Wait()
	log.Println("[INFO] Discord bot exited cleanly")
}
