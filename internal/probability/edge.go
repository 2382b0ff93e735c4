package probability

import "blackjack-engine/internal/game"

// Преимущество казино в процентах. Точка отсчета: 6 колод, дилер стоит
// на мягких 17, блэкджек 3:2, удвоение после сплита, без сдачи.
const (
	baseHouseEdge    = 0.5
	trueCountEdge    = 0.5
	soft17Edge       = 0.22
	noDoubleSplit    = 0.14
	surrenderEdge    = -0.08
	sixFivePayout    = 1.39
	evenMoneyPayout  = 2.27
	noResplitEdge    = 0.03
	noSplitEdge      = 0.57
	minResplitsHands = 4
)

var deckEdge = map[int]float64{
	1: -0.48,
	2: -0.19,
	3: -0.10,
	4: -0.06,
	5: -0.03,
	6: 0,
	7: 0.01,
	8: 0.02,
}

type EdgeFactors struct {
	BlackjackPayout  float64 `json:"blackjackPayout"`
	DealerHitsSoft17 float64 `json:"dealerHitsSoft17"`
	DeckCount        float64 `json:"deckCount"`
	OtherRules       float64 `json:"otherRules"`
	DeckComposition  float64 `json:"deckComposition"`
}

type HouseEdge struct {
	CurrentHouseEdge float64     `json:"currentHouseEdge"`
	BaseHouseEdge    float64     `json:"baseHouseEdge"`
	DeckFavorsPlayer bool        `json:"deckFavorsPlayer"`
	Factors          EdgeFactors `json:"edgeFactors"`
}

func ruleFactors(rules game.Rules) EdgeFactors {
	var f EdgeFactors

	switch rules.BlackjackPayout {
	case game.PayoutSixToFive:
		f.BlackjackPayout = sixFivePayout
	case game.PayoutEvenMoney:
		f.BlackjackPayout = evenMoneyPayout
	}

	if rules.DealerHitsSoft17 {
		f.DealerHitsSoft17 = soft17Edge
	}

	f.DeckCount = deckEdge[rules.Decks]

	if !rules.DoubleAfterSplit {
		f.OtherRules += noDoubleSplit
	}
	if rules.Surrender {
		f.OtherRules += surrenderEdge
	}
	switch {
	case rules.MaxSplitHands <= 1:
		f.OtherRules += noSplitEdge
	case rules.MaxSplitHands < minResplitsHands:
		f.OtherRules += noResplitEdge
	}
	return f
}

// BaseHouseEdge преимущество казино по правилам, без учета состава шуза.
func BaseHouseEdge(rules game.Rules) float64 {
	f := ruleFactors(rules)
	return baseHouseEdge + f.BlackjackPayout + f.DealerHitsSoft17 + f.DeckCount + f.OtherRules
}

// HouseEdge каждая единица true count сдвигает преимущество к игроку на 0.5%.
func (e *Engine) HouseEdge() HouseEdge {
	f := ruleFactors(e.rules)
	base := BaseHouseEdge(e.rules)

	f.DeckComposition = -trueCountEdge * e.TrueCount()
	current := base + f.DeckComposition

	return HouseEdge{
		CurrentHouseEdge: current,
		BaseHouseEdge:    base,
		DeckFavorsPlayer: current < base,
		Factors:          f,
	}
}
