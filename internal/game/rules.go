package game

import "fmt"

const (
	PayoutThreeToTwo = 1.5
	PayoutSixToFive  = 1.2
	PayoutEvenMoney  = 1.0
)

// Rules неизменяемы в течение шуза. Смена правил требует перестроить
// таблицы стратегии и сбросить счет.
type Rules struct {
	Decks            int     `json:"decks"`
	DealerHitsSoft17 bool    `json:"dealerHitsSoft17"`
	BlackjackPayout  float64 `json:"blackjackPayout"`
	DoubleAfterSplit bool    `json:"doubleAfterSplit"`
	Surrender        bool    `json:"surrender"`
	MaxSplitHands    int     `json:"maxSplitHands"`
}

func DefaultRules() Rules {
	return Rules{
		Decks:            6,
		DealerHitsSoft17: false,
		BlackjackPayout:  PayoutThreeToTwo,
		DoubleAfterSplit: true,
		Surrender:        false,
		MaxSplitHands:    4,
	}
}

func (r Rules) Validate() error {
	if r.Decks < 1 || r.Decks > 8 {
		return fmt.Errorf("decks must be between 1 and 8, got %d", r.Decks)
	}

	switch r.BlackjackPayout {
	case PayoutThreeToTwo, PayoutSixToFive, PayoutEvenMoney:
	default:
		return fmt.Errorf("blackjack payout must be 1.5, 1.2 or 1, got %g", r.BlackjackPayout)
	}

	if r.MaxSplitHands < 1 {
		return fmt.Errorf("max split hands must be at least 1, got %d", r.MaxSplitHands)
	}
	return nil
}

func (r Rules) ShoeSize() int {
	return r.Decks * CardsPerDeck
}

func (r Rules) PayoutLabel() string {
	switch r.BlackjackPayout {
	case PayoutThreeToTwo:
		return "3:2"
	case PayoutSixToFive:
		return "6:5"
	case PayoutEvenMoney:
		return "1:1"
	}
	return fmt.Sprintf("%g:1", r.BlackjackPayout)
}

// DealerShouldHit дилер берет до 17, мягкие 17 по правилам стола.
func DealerShouldHit(h Hand, rules Rules) bool {
	best := h.Best()
	if best < 17 {
		return true
	}
	return best == 17 && h.IsSoft() && rules.DealerHitsSoft17
}
