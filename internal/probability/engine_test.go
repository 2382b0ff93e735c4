package probability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blackjack-engine/internal/game"
)

func cards(t *testing.T, items ...string) []game.Card {
	t.Helper()
	out, err := game.ParseCards(items)
	require.NoError(t, err)
	return out
}

func card(t *testing.T, s string) game.Card {
	t.Helper()
	c, err := game.ParseCard(s)
	require.NoError(t, err)
	return c
}

func TestFreshEngine(t *testing.T) {
	e := NewEngine(game.DefaultRules())

	assert.Equal(t, 0, e.RunningCount())
	assert.Equal(t, 0.0, e.TrueCount())
	assert.Equal(t, 312, e.CardsRemaining())
	assert.Equal(t, 6.0, e.DecksRemaining())
	for _, r := range game.Ranks {
		assert.Equal(t, 24, e.Remaining(r))
	}
}

func TestHiLo(t *testing.T) {
	for _, r := range []game.Rank{game.Two, game.Three, game.Four, game.Five, game.Six} {
		assert.Equal(t, 1, HiLo(r), r.String())
	}
	for _, r := range []game.Rank{game.Seven, game.Eight, game.Nine} {
		assert.Equal(t, 0, HiLo(r), r.String())
	}
	for _, r := range []game.Rank{game.Ten, game.Jack, game.Queen, game.King, game.Ace} {
		assert.Equal(t, -1, HiLo(r), r.String())
	}
}

func TestUpdateDealtCards(t *testing.T) {
	e := NewEngine(game.DefaultRules())

	n := e.UpdateDealtCards(cards(t, "2S", "3H", "4D", "5C", "6S", "7H", "KD", "AS")...)
	assert.Equal(t, 8, n)
	assert.Equal(t, 3, e.RunningCount())
	assert.Equal(t, 304, e.CardsRemaining())
	assert.InDelta(t, 3/(304.0/52.0), e.TrueCount(), 1e-9)
	assert.Equal(t, 23, e.Remaining(game.Ace))
}

func TestUpdateSkipsImpossibleCards(t *testing.T) {
	rules := game.DefaultRules()
	rules.Decks = 1
	e := NewEngine(rules)

	n := e.UpdateDealtCards(cards(t, "AS", "AH", "AD", "AC", "AS")...)
	assert.Equal(t, 4, n)
	assert.Equal(t, -4, e.RunningCount())
	assert.Equal(t, 0, e.Remaining(game.Ace))

	assert.Equal(t, 0, e.UpdateDealtCards(game.Card{}))
}

func TestDecksRemainingFloor(t *testing.T) {
	rules := game.DefaultRules()
	rules.Decks = 1
	e := NewEngine(rules)

	var all []game.Card
	for _, r := range game.Ranks {
		for _, s := range game.Suits {
			if r == game.Two && s == game.Spades {
				continue
			}
			all = append(all, game.NewCard(r, s))
		}
	}
	e.UpdateDealtCards(all...)

	assert.Equal(t, 1, e.CardsRemaining())
	assert.Equal(t, 0.5, e.DecksRemaining())
	assert.InDelta(t, float64(e.RunningCount())/0.5, e.TrueCount(), 1e-9)
}

func TestResetShoeClearsState(t *testing.T) {
	e := NewEngine(game.DefaultRules())
	e.UpdateDealtCards(cards(t, "2S", "3H", "4D", "5C", "6S")...)
	require.NotZero(t, e.RunningCount())

	e.ResetShoe()
	assert.Equal(t, 0, e.RunningCount())
	assert.Equal(t, 0.0, e.TrueCount())
	assert.Equal(t, 0, e.CardsDealt())
	for _, r := range game.Ranks {
		assert.Equal(t, 24, e.Remaining(r))
	}
}

func TestSetRulesResets(t *testing.T) {
	e := NewEngine(game.DefaultRules())
	e.UpdateDealtCards(cards(t, "2S", "3H")...)

	rules := game.DefaultRules()
	rules.Decks = 2
	e.SetRules(rules)

	assert.Equal(t, 0, e.RunningCount())
	assert.Equal(t, 104, e.CardsRemaining())
	assert.Equal(t, 8, e.Remaining(game.King))
}

func TestComposition(t *testing.T) {
	e := NewEngine(game.DefaultRules())
	c := e.Composition()

	total := 0.0
	for _, p := range c.Percentages {
		total += p
	}
	assert.InDelta(t, 100, total, 1e-9)
	assert.InDelta(t, 100.0/13, c.Percentages[game.Ace], 1e-9)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"A":24`)
	assert.Contains(t, string(data), `"10":24`)
}

func TestDealerProbabilities(t *testing.T) {
	e := NewEngine(game.DefaultRules())

	for _, up := range []string{"2S", "6H", "10D", "AC"} {
		d := e.Dealer(card(t, up))

		sum := 0.0
		for _, p := range d.FinalTotalProbabilities {
			sum += p
		}
		assert.InDelta(t, 1, sum, 1e-9, up)
		assert.InDelta(t, 2*d.BustProbability-1, d.ExpectedValue, 1e-12, up)
	}

	six := e.Dealer(card(t, "6H"))
	assert.InDelta(t, 0.42, six.BustProbability, 0.01)
	assert.Equal(t, 0.0, six.BlackjackProbability)

	ace := e.Dealer(card(t, "AC"))
	assert.InDelta(t, 96.0/312, ace.BlackjackProbability, 1e-12)

	ten := e.Dealer(card(t, "KD"))
	assert.InDelta(t, 24.0/312, ten.BlackjackProbability, 1e-12)
	assert.Greater(t, six.BustProbability, ten.BustProbability)
}

func TestDealerHitsSoft17RaisesBust(t *testing.T) {
	s17 := NewEngine(game.DefaultRules())
	rules := game.DefaultRules()
	rules.DealerHitsSoft17 = true
	h17 := NewEngine(rules)

	up := card(t, "6H")
	assert.Greater(t, h17.Dealer(up).BustProbability, s17.Dealer(up).BustProbability)
	assert.Equal(t, 0.0, s17.Dealer(up).FinalTotalProbabilities["16"])
}

func TestPlayerDecision(t *testing.T) {
	e := NewEngine(game.DefaultRules())

	stiff := e.PlayerDecision(cards(t, "10S", "6H"), card(t, "6D"))
	assert.InDelta(t, 192.0/312, stiff.BustProbabilities.Hit, 1e-12)
	assert.Greater(t, stiff.StandEV, stiff.HitEV)
	assert.Equal(t, game.ActionStand, stiff.BestAction)
	assert.Equal(t, -0.5, stiff.SurrenderEV)
	assert.Nil(t, stiff.SplitEV)
	assert.Nil(t, stiff.InsuranceEV)

	eleven := e.PlayerDecision(cards(t, "6S", "5H"), card(t, "6D"))
	assert.Equal(t, 0.0, eleven.BustProbabilities.Hit)
	assert.Greater(t, eleven.DoubleDownEV, eleven.HitEV)
	assert.Greater(t, eleven.HitEV, eleven.StandEV)
	assert.Equal(t, game.ActionDouble, eleven.BestAction)

	twenty := e.PlayerDecision(cards(t, "KS", "QH"), card(t, "6D"))
	assert.Greater(t, twenty.StandEV, 0.5)
	assert.Less(t, twenty.HitEV, 0.0)
	assert.Nil(t, twenty.SplitEV)
	assert.Equal(t, game.ActionStand, twenty.BestAction)

	kings := e.PlayerDecision(cards(t, "KS", "KH"), card(t, "6D"))
	assert.NotNil(t, kings.SplitEV)

	eights := e.PlayerDecision(cards(t, "8S", "8H"), card(t, "6D"))
	require.NotNil(t, eights.SplitEV)
	assert.Greater(t, *eights.SplitEV, eights.StandEV)
	assert.Equal(t, game.ActionSplit, eights.BestAction)
}

func TestInsuranceEV(t *testing.T) {
	e := NewEngine(game.DefaultRules())

	d := e.PlayerDecision(cards(t, "10S", "7H"), card(t, "AD"))
	require.NotNil(t, d.InsuranceEV)
	assert.InDelta(t, -1.0/13, *d.InsuranceEV, 1e-12)
	assert.Nil(t, d.SplitEV)

	e.UpdateDealtCards(cards(t, "2S", "3S", "4S", "5S", "6S", "2H", "3H", "4H", "5H", "6H")...)
	d = e.PlayerDecision(cards(t, "10S", "7H"), card(t, "AD"))
	assert.Greater(t, *d.InsuranceEV, -1.0/13)
}

func TestPlayerBlackjackStandEV(t *testing.T) {
	e := NewEngine(game.DefaultRules())

	d := e.PlayerDecision(cards(t, "AS", "KH"), card(t, "6D"))
	assert.InDelta(t, 1.5, d.StandEV, 1e-12)

	d = e.PlayerDecision(cards(t, "AS", "KH"), card(t, "AD"))
	assert.InDelta(t, 1.5*(1-96.0/312), d.StandEV, 1e-12)
}

func TestPlayerDecisionEdgeCases(t *testing.T) {
	e := NewEngine(game.DefaultRules())

	assert.Equal(t, DecisionProbabilities{}, e.PlayerDecision(nil, card(t, "6D")))
	assert.Equal(t, DecisionProbabilities{}, e.PlayerDecision(cards(t, "10S"), game.Card{}))

	busted := e.PlayerDecision(cards(t, "10S", "6H", "9D"), card(t, "6D"))
	assert.Equal(t, game.ActionNone, busted.BestAction)
	assert.Equal(t, -1.0, busted.StandEV)
}

func TestHouseEdgeFreshShoe(t *testing.T) {
	e := NewEngine(game.DefaultRules())
	edge := e.HouseEdge()

	assert.Equal(t, edge.BaseHouseEdge, edge.CurrentHouseEdge)
	assert.False(t, edge.DeckFavorsPlayer)
	assert.InDelta(t, 0.5, edge.BaseHouseEdge, 1e-12)
}

func TestHouseEdgeRuleFactors(t *testing.T) {
	rules := game.DefaultRules()
	rules.BlackjackPayout = game.PayoutSixToFive
	rules.DealerHitsSoft17 = true
	rules.Decks = 1
	rules.DoubleAfterSplit = false
	rules.Surrender = true

	edge := NewEngine(rules).HouseEdge()
	assert.InDelta(t, 1.39, edge.Factors.BlackjackPayout, 1e-12)
	assert.InDelta(t, 0.22, edge.Factors.DealerHitsSoft17, 1e-12)
	assert.InDelta(t, -0.48, edge.Factors.DeckCount, 1e-12)
	assert.InDelta(t, 0.06, edge.Factors.OtherRules, 1e-12)
	assert.InDelta(t, 0.5+1.39+0.22-0.48+0.06, edge.BaseHouseEdge, 1e-12)
}

func TestHouseEdgeFollowsCount(t *testing.T) {
	e := NewEngine(game.DefaultRules())
	e.UpdateDealtCards(cards(t, "2S", "3S", "4S", "5S", "6S", "2H", "3H", "4H", "5H", "6H")...)

	edge := e.HouseEdge()
	assert.True(t, edge.DeckFavorsPlayer)
	assert.Less(t, edge.CurrentHouseEdge, edge.BaseHouseEdge)
	assert.InDelta(t, -0.5*e.TrueCount(), edge.Factors.DeckComposition, 1e-12)

	e.ResetShoe()
	e.UpdateDealtCards(cards(t, "KS", "KH", "AD", "QC")...)
	assert.False(t, e.HouseEdge().DeckFavorsPlayer)
}

func TestSnapshot(t *testing.T) {
	e := NewEngine(game.DefaultRules())

	snap := e.Snapshot(nil, game.Card{})
	assert.Nil(t, snap.Dealer)
	assert.Nil(t, snap.Decision)

	snap = e.Snapshot(cards(t, "10S", "7H"), card(t, "AD"))
	require.NotNil(t, snap.Dealer)
	require.NotNil(t, snap.Decision)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"splitEV":null`)
	assert.Contains(t, string(data), `"currentHouseEdge"`)
}
