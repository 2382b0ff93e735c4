package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"blackjack-engine/internal/game"
)

type Config struct {
	BotToken     string
	DatabasePath string
	// DatabaseURL если задан, игроки хранятся в PostgreSQL вместо SQLite
	DatabaseURL  string
	HTTPAddr     string
	StartBalance int
	DefaultBet   int
	MinBet       int
	MaxBet       int
	Penetration  float64
	Table        game.Rules
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		BotToken:     os.Getenv("BOT_TOKEN"),
		DatabasePath: getString("DATABASE_PATH", "./blackjack.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		HTTPAddr:     getString("HTTP_ADDR", ":8080"),
		Table:        game.DefaultRules(),
	}

	var err error
	if cfg.StartBalance, err = getInt("START_BALANCE", 1000); err != nil {
		return nil, err
	}
	if cfg.DefaultBet, err = getInt("DEFAULT_BET", 100); err != nil {
		return nil, err
	}
	if cfg.MinBet, err = getInt("MIN_BET", 10); err != nil {
		return nil, err
	}
	if cfg.MaxBet, err = getInt("MAX_BET", 10000); err != nil {
		return nil, err
	}
	if cfg.Penetration, err = getFloat("PENETRATION", 0.75); err != nil {
		return nil, err
	}

	t := &cfg.Table
	if t.Decks, err = getInt("DECKS", t.Decks); err != nil {
		return nil, err
	}
	if t.DealerHitsSoft17, err = getBool("DEALER_HITS_SOFT_17", t.DealerHitsSoft17); err != nil {
		return nil, err
	}
	if t.BlackjackPayout, err = getFloat("BLACKJACK_PAYOUT", t.BlackjackPayout); err != nil {
		return nil, err
	}
	if t.DoubleAfterSplit, err = getBool("DOUBLE_AFTER_SPLIT", t.DoubleAfterSplit); err != nil {
		return nil, err
	}
	if t.Surrender, err = getBool("SURRENDER", t.Surrender); err != nil {
		return nil, err
	}
	if t.MaxSplitHands, err = getInt("MAX_SPLIT_HANDS", t.MaxSplitHands); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Table.Validate(); err != nil {
		return fmt.Errorf("invalid table rules: %w", err)
	}
	if c.MinBet <= 0 || c.MinBet > c.MaxBet {
		return fmt.Errorf("invalid bet limits: %d..%d", c.MinBet, c.MaxBet)
	}
	if c.DefaultBet < c.MinBet || c.DefaultBet > c.MaxBet {
		return fmt.Errorf("default bet %d is outside %d..%d", c.DefaultBet, c.MinBet, c.MaxBet)
	}
	if c.StartBalance < 0 {
		return fmt.Errorf("start balance must not be negative")
	}
	if c.Penetration <= 0 || c.Penetration > 1 {
		return fmt.Errorf("penetration must be in (0, 1], got %v", c.Penetration)
	}
	return nil
}

// Rules правила стола по умолчанию для новых сессий.
func (c *Config) Rules() game.Rules {
	return c.Table
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return b, nil
}
