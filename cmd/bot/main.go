package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"blackjack-engine/internal/bot"
	"blackjack-engine/internal/config"
	"blackjack-engine/internal/database"
	"blackjack-engine/internal/player"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var playerRepo player.Repository
	if cfg.DatabaseURL != "" {
		pg, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer pg.Close()

		log.Println("Postgres connected")
		playerRepo = player.NewPostgresRepository(pg.Pool)
	} else {
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		log.Println("Database connected")
		playerRepo = player.NewRepository(db.DB)
	}

	rules := cfg.Rules()
	log.Printf("Table: %d decks, H17=%v, blackjack %s", rules.Decks, rules.DealerHitsSoft17, rules.PayoutLabel())

	b, err := bot.New(cfg, playerRepo)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := b.Run(ctx); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
