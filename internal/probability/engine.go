package probability

import (
	"math"

	"blackjack-engine/internal/game"
)

// minDecksRemaining ограничивает делитель true count в конце шуза.
const minDecksRemaining = 0.5

// Engine состав шуза и Hi-Lo счет для одной игровой сессии.
// Не потокобезопасен, доступ сериализует владелец.
type Engine struct {
	rules     game.Rules
	remaining [game.Ace + 1]int
	dealt     int
	running   int
}

func NewEngine(rules game.Rules) *Engine {
	e := &Engine{rules: rules}
	e.ResetShoe()
	return e
}

func (e *Engine) Rules() game.Rules {
	return e.rules
}

// SetRules новые правила делают старый счет недействительным.
func (e *Engine) SetRules(rules game.Rules) {
	e.rules = rules
	e.ResetShoe()
}

func (e *Engine) ResetShoe() {
	e.remaining = [game.Ace + 1]int{}
	for _, r := range game.Ranks {
		e.remaining[r] = 4 * e.rules.Decks
	}
	e.dealt = 0
	e.running = 0
}

// HiLo вес карты: 2-6 +1, 7-9 0, десятки и тузы -1.
func HiLo(r game.Rank) int {
	switch {
	case r >= game.Two && r <= game.Six:
		return 1
	case r >= game.Seven && r <= game.Nine:
		return 0
	case r.Valid():
		return -1
	}
	return 0
}

// UpdateDealtCards учитывает открытые карты. Карты, которых в шузе уже
// не осталось, пропускаются. Возвращает число учтенных карт.
func (e *Engine) UpdateDealtCards(cards ...game.Card) int {
	accepted := 0
	for _, c := range cards {
		if !c.Rank.Valid() || e.remaining[c.Rank] == 0 {
			continue
		}
		e.remaining[c.Rank]--
		e.dealt++
		e.running += HiLo(c.Rank)
		accepted++
	}
	return accepted
}

func (e *Engine) ShoeSize() int {
	return e.rules.ShoeSize()
}

func (e *Engine) CardsDealt() int {
	return e.dealt
}

func (e *Engine) CardsRemaining() int {
	return e.ShoeSize() - e.dealt
}

func (e *Engine) DecksRemaining() float64 {
	return math.Max(float64(e.CardsRemaining())/game.CardsPerDeck, minDecksRemaining)
}

func (e *Engine) RunningCount() int {
	return e.running
}

func (e *Engine) TrueCount() float64 {
	return float64(e.running) / e.DecksRemaining()
}

func (e *Engine) Remaining(r game.Rank) int {
	if !r.Valid() {
		return 0
	}
	return e.remaining[r]
}

type Composition struct {
	RunningCount   int                   `json:"runningCount"`
	TrueCount      float64               `json:"trueCount"`
	DecksRemaining float64               `json:"decksRemaining"`
	CardsDealt     int                   `json:"cardsDealt"`
	CardsRemaining int                   `json:"cardsRemaining"`
	Remaining      map[game.Rank]int     `json:"remaining"`
	Percentages    map[game.Rank]float64 `json:"percentages"`
}

func (e *Engine) Composition() Composition {
	c := Composition{
		RunningCount:   e.running,
		TrueCount:      e.TrueCount(),
		DecksRemaining: e.DecksRemaining(),
		CardsDealt:     e.dealt,
		CardsRemaining: e.CardsRemaining(),
		Remaining:      make(map[game.Rank]int, len(game.Ranks)),
		Percentages:    make(map[game.Rank]float64, len(game.Ranks)),
	}

	left := e.CardsRemaining()
	for _, r := range game.Ranks {
		c.Remaining[r] = e.remaining[r]
		if left > 0 {
			c.Percentages[r] = float64(e.remaining[r]) / float64(left) * 100
		}
	}
	return c
}

// shoe остаток по очкам карты: индекс 2..11, туз 11.
type shoe struct {
	counts [12]int
	total  int
}

func (e *Engine) shoe() shoe {
	var s shoe
	for _, r := range game.Ranks {
		s.counts[r.Value()] += e.remaining[r]
		s.total += e.remaining[r]
	}
	return s
}

func (s *shoe) prob(v int) float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.counts[v]) / float64(s.total)
}

// Snapshot все, что нужно аналитическому экрану, одной структурой.
type Snapshot struct {
	Composition Composition            `json:"composition"`
	Decision    *DecisionProbabilities `json:"decision,omitempty"`
	Dealer      *DealerProbabilities   `json:"dealer,omitempty"`
	HouseEdge   HouseEdge              `json:"houseEdge"`
}

func (e *Engine) Snapshot(player []game.Card, up game.Card) Snapshot {
	snap := Snapshot{
		Composition: e.Composition(),
		HouseEdge:   e.HouseEdge(),
	}
	if up.IsZero() {
		return snap
	}

	dealer := e.Dealer(up)
	snap.Dealer = &dealer
	if len(player) > 0 {
		decision := e.PlayerDecision(player, up)
		snap.Decision = &decision
	}
	return snap
}
