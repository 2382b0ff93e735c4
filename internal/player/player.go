package player

import (
	"context"
	"strings"
	"time"

	"blackjack-engine/internal/game"
)

type Player struct {
	ChatID     int64
	Balance    int
	Wins       int
	Losses     int
	Draws      int
	Games      int
	Blackjacks int
	Surrenders int
	LastBet    int
}

type Stats struct {
	ChatID  int64
	Balance int
	Wins    int
	Games   int
	WinRate float64
}

// HandRecord один сыгранный раунд для истории.
type HandRecord struct {
	ChatID      int64
	Bet         int
	Payout      int
	Result      string
	PlayerCards string
	DealerCards string
	TrueCount   float64
	CreatedAt   time.Time
}

func (h HandRecord) Net() int {
	return h.Payout - h.Bet
}

type Repository interface {
	GetOrCreate(ctx context.Context, chatID int64, startBalance, defaultBet int) (*Player, error)
	Save(ctx context.Context, player *Player) error
	GetTopByBalance(ctx context.Context, limit int) ([]Stats, error)
	RecordHand(ctx context.Context, hand HandRecord) error
	History(ctx context.Context, chatID int64, limit int) ([]HandRecord, error)
}

// NewHandRecord собирает запись истории из завершенного раунда.
// Руки после сплита разделяются " | ".
func NewHandRecord(chatID int64, s game.Settled, trueCount float64) HandRecord {
	results := make([]string, 0, len(s.Seats))
	hands := make([]string, 0, len(s.Seats))
	for _, seat := range s.Seats {
		results = append(results, seat.Result.String())
		hands = append(hands, game.FormatCards(seat.Hand.Cards))
	}

	return HandRecord{
		ChatID:      chatID,
		Bet:         s.TotalBet(),
		Payout:      s.TotalPayout(),
		Result:      strings.Join(results, ","),
		PlayerCards: strings.Join(hands, " | "),
		DealerCards: game.FormatCards(s.Dealer.Cards),
		TrueCount:   trueCount,
	}
}

func (p *Player) PlaceBet(amount int) bool {
	if amount > p.Balance {
		return false
	}
	p.Balance -= amount
	p.LastBet = amount
	return true
}

// Charge доплата за удвоение, сплит или страховку.
func (p *Player) Charge(amount int) error {
	if amount > p.Balance {
		return game.ReasonNotEnoughChips
	}
	p.Balance -= amount
	return nil
}

func (p *Player) CanAfford(amount int) bool {
	return p.Balance >= amount
}

// ApplyRound зачисляет выплату и обновляет статистику. Исход раунда
// считается по итоговому результату всех рук вместе со страховкой.
func (p *Player) ApplyRound(s game.Settled) {
	p.Balance += s.TotalPayout()
	p.Games++

	switch net := s.Net(); {
	case net > 0:
		p.Wins++
	case net < 0:
		p.Losses++
	default:
		p.Draws++
	}

	for _, seat := range s.Seats {
		switch seat.Result {
		case game.ResultBlackjack:
			p.Blackjacks++
		case game.ResultSurrender:
			p.Surrenders++
		}
	}
}

func (p *Player) WinRate() float64 {
	if p.Games == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Games) * 100
}
