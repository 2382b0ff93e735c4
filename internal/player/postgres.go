package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, chatID int64, startBalance, defaultBet int) (*Player, error) {
	player := &Player{ChatID: chatID}

	err := r.pool.QueryRow(ctx, `
		SELECT balance, wins, losses, draws, games, blackjacks, surrenders, last_bet
		  FROM players WHERE chat_id = $1
	`, chatID).Scan(
		&player.Balance, &player.Wins, &player.Losses, &player.Draws,
		&player.Games, &player.Blackjacks, &player.Surrenders, &player.LastBet,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		player.Balance = startBalance
		player.LastBet = defaultBet

		_, err = r.pool.Exec(ctx, `
			INSERT INTO players (chat_id, balance, last_bet)
			VALUES ($1, $2, $3)
			ON CONFLICT (chat_id) DO NOTHING
		`, chatID, player.Balance, player.LastBet)

		if err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
		return player, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (r *PostgresRepository) Save(ctx context.Context, player *Player) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE players
		   SET balance = $2, wins = $3, losses = $4, draws = $5, games = $6,
		       blackjacks = $7, surrenders = $8, last_bet = $9, updated_at = now()
		 WHERE chat_id = $1
	`, player.ChatID, player.Balance, player.Wins, player.Losses, player.Draws,
		player.Games, player.Blackjacks, player.Surrenders, player.LastBet)

	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetTopByBalance(ctx context.Context, limit int) ([]Stats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT chat_id, balance, wins, games
		  FROM players
		 WHERE games > 0
		 ORDER BY balance DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top: %w", err)
	}
	defer rows.Close()

	var stats []Stats
	for rows.Next() {
		var s Stats
		if err := rows.Scan(&s.ChatID, &s.Balance, &s.Wins, &s.Games); err != nil {
			return nil, err
		}
		s.WinRate = float64(s.Wins) / float64(s.Games) * 100
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (r *PostgresRepository) RecordHand(ctx context.Context, h HandRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hands (chat_id, bet, payout, result, player_cards, dealer_cards, true_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, h.ChatID, h.Bet, h.Payout, h.Result, h.PlayerCards, h.DealerCards, h.TrueCount)

	if err != nil {
		return fmt.Errorf("failed to record hand: %w", err)
	}
	return nil
}

func (r *PostgresRepository) History(ctx context.Context, chatID int64, limit int) ([]HandRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT chat_id, bet, payout, result, player_cards, dealer_cards, true_count, created_at
		  FROM hands
		 WHERE chat_id = $1
		 ORDER BY id DESC
		 LIMIT $2
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	hands, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (HandRecord, error) {
		var h HandRecord
		err := row.Scan(&h.ChatID, &h.Bet, &h.Payout, &h.Result,
			&h.PlayerCards, &h.DealerCards, &h.TrueCount, &h.CreatedAt)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return hands, nil
}

var _ Repository = (*PostgresRepository)(nil)
