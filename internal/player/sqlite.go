package player

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetOrCreate(ctx context.Context, chatID int64, startBalance, defaultBet int) (*Player, error) {
	player := &Player{ChatID: chatID}

	err := r.db.QueryRowContext(ctx, `
		SELECT balance, wins, losses, draws, games, blackjacks, surrenders, last_bet
		FROM players WHERE chat_id = ?
	`, chatID).Scan(
		&player.Balance, &player.Wins, &player.Losses, &player.Draws,
		&player.Games, &player.Blackjacks, &player.Surrenders, &player.LastBet,
	)

	if errors.Is(err, sql.ErrNoRows) {
		player.Balance = startBalance
		player.LastBet = defaultBet

		_, err = r.db.ExecContext(ctx, `
			INSERT INTO players (chat_id, balance, last_bet)
			VALUES (?, ?, ?)
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

func (r *SQLiteRepository) Save(ctx context.Context, player *Player) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players SET
			balance = ?, wins = ?, losses = ?, draws = ?, games = ?,
			blackjacks = ?, surrenders = ?, last_bet = ?, updated_at = CURRENT_TIMESTAMP
		WHERE chat_id = ?
	`, player.Balance, player.Wins, player.Losses, player.Draws, player.Games,
		player.Blackjacks, player.Surrenders, player.LastBet, player.ChatID)

	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTopByBalance(ctx context.Context, limit int) ([]Stats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, balance, wins, games
		FROM players
		WHERE games > 0
		ORDER BY balance DESC
		LIMIT ?
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

func (r *SQLiteRepository) RecordHand(ctx context.Context, h HandRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hands (chat_id, bet, payout, result, player_cards, dealer_cards, true_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, h.ChatID, h.Bet, h.Payout, h.Result, h.PlayerCards, h.DealerCards, h.TrueCount)

	if err != nil {
		return fmt.Errorf("failed to record hand: %w", err)
	}
	return nil
}

// History последние раунды игрока, новые первыми.
func (r *SQLiteRepository) History(ctx context.Context, chatID int64, limit int) ([]HandRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, bet, payout, result, player_cards, dealer_cards, true_count, created_at
		FROM hands
		WHERE chat_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var hands []HandRecord
	for rows.Next() {
		var h HandRecord
		if err := rows.Scan(&h.ChatID, &h.Bet, &h.Payout, &h.Result,
			&h.PlayerCards, &h.DealerCards, &h.TrueCount, &h.CreatedAt); err != nil {
			return nil, err
		}
		hands = append(hands, h)
	}

	return hands, rows.Err()
}

var _ Repository = (*SQLiteRepository)(nil)
