package session

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blackjack-engine/internal/game"
)

// stackedShoe раздает карты по порядку, Reset подкладывает refill.
type stackedShoe struct {
	cards  []game.Card
	refill []game.Card
	resets int
}

func (s *stackedShoe) Draw() (game.Card, error) {
	if len(s.cards) == 0 {
		return game.Card{}, game.ReasonShoeEmpty
	}
	c := s.cards[0]
	s.cards = s.cards[1:]
	return c, nil
}

func (s *stackedShoe) Reset() {
	s.resets++
	s.cards = append([]game.Card(nil), s.refill...)
}

func (s *stackedShoe) Penetration() float64 { return 0 }

func cards(t *testing.T, items ...string) []game.Card {
	t.Helper()
	out, err := game.ParseCards(items)
	require.NoError(t, err)
	return out
}

func newStacked(t *testing.T, items ...string) (*Session, *stackedShoe) {
	t.Helper()
	s, err := New(Options{Rules: game.DefaultRules(), Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	stack := &stackedShoe{cards: cards(t, items...)}
	s.shoe = stack
	return s, stack
}

func TestRoundFlowAndCount(t *testing.T) {
	s, _ := newStacked(t, "10S", "9D", "2H", "7C", "5C", "KD")

	phase, err := s.Deal(10)
	require.NoError(t, err)
	require.IsType(t, game.PlayerTurn{}, phase)
	assert.True(t, s.InRound())

	c := s.Count()
	assert.Equal(t, 3, c.CardsDealt, "hole card is not counted")
	assert.Equal(t, 0, c.RunningCount)

	advice, err := s.Hint()
	require.NoError(t, err)
	assert.Equal(t, game.ActionHit, advice.Action)

	odds := s.Odds()
	require.NotNil(t, odds.Decision)
	require.NotNil(t, odds.Dealer)
	assert.Equal(t, 9, odds.Dealer.UpCard)

	phase, err = s.Act(game.ActionHit)
	require.NoError(t, err)
	require.IsType(t, game.PlayerTurn{}, phase)
	assert.Equal(t, 1, s.Count().RunningCount)

	phase, err = s.Act(game.ActionStand)
	require.NoError(t, err)
	settled, ok := phase.(game.Settled)
	require.True(t, ok)
	assert.Equal(t, game.ResultWin, settled.Seats[0].Result)
	assert.Equal(t, 20, settled.Seats[0].Payout)
	assert.False(t, s.InRound())

	c = s.Count()
	assert.Equal(t, 6, c.CardsDealt)
	assert.Equal(t, 0, c.RunningCount)
}

func TestDuplicateCardsCountedOnce(t *testing.T) {
	s, _ := newStacked(t, "8S", "9D", "8S", "7C")

	_, err := s.Deal(10)
	require.NoError(t, err)

	c := s.Count()
	assert.Equal(t, 3, c.CardsDealt)
	assert.Equal(t, 22, c.Remaining[game.Eight])
}

func TestActionErrors(t *testing.T) {
	s, _ := newStacked(t, "10S", "9D", "2H", "7C")

	_, err := s.Act(game.ActionHit)
	assert.ErrorIs(t, err, game.ReasonNotPlayerTurn)

	_, err = s.Hint()
	assert.ErrorIs(t, err, game.ReasonNotPlayerTurn)

	_, err = s.Deal(0)
	assert.ErrorIs(t, err, game.ReasonInvalidBet)

	_, err = s.Deal(10)
	require.NoError(t, err)

	_, err = s.Deal(10)
	assert.ErrorIs(t, err, game.ReasonRoundInProgress)

	before := s.Phase()
	_, err = s.Act(game.ActionSurrender)
	assert.ErrorIs(t, err, game.ReasonCannotSurrender)
	assert.Equal(t, before, s.Phase())

	_, err = s.Act(game.ActionInsurance)
	assert.ErrorIs(t, err, game.ReasonInsuranceUnavailable)
}

func TestDealerBlackjackBeforeDoubleOrSplit(t *testing.T) {
	for _, action := range []game.Action{game.ActionDouble, game.ActionSplit} {
		t.Run(action.String(), func(t *testing.T) {
			s, stack := newStacked(t, "8S", "AH", "8D", "KC", "3S", "4S")

			_, err := s.Deal(100)
			require.NoError(t, err)

			phase, err := s.Act(action)
			require.NoError(t, err)

			settled, ok := phase.(game.Settled)
			require.True(t, ok)
			assert.Equal(t, 100, settled.TotalBet())
			assert.Equal(t, 100, game.Staked(phase))
			assert.Equal(t, game.ResultLoss, settled.Seats[0].Result)
			assert.Len(t, stack.cards, 2)
			assert.False(t, s.InRound())
		})
	}
}

func TestReshuffleMidRound(t *testing.T) {
	s, stack := newStacked(t, "10S", "9D", "2H", "7C")
	stack.refill = cards(t, "5C", "KD")

	_, err := s.Deal(10)
	require.NoError(t, err)

	phase, err := s.Act(game.ActionHit)
	require.NoError(t, err)
	require.IsType(t, game.PlayerTurn{}, phase)
	assert.Equal(t, 1, stack.resets)
	assert.Equal(t, 1, s.Shuffles())

	c := s.Count()
	assert.Equal(t, 4, c.CardsDealt, "cards on the table are recounted")
	assert.Equal(t, 1, c.RunningCount)

	phase, err = s.Act(game.ActionStand)
	require.NoError(t, err)
	assert.IsType(t, game.Settled{}, phase)
}

func TestReshuffleAtPenetration(t *testing.T) {
	s, err := New(Options{
		Rules:       game.DefaultRules(),
		Penetration: 0.01,
		Rand:        rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)

	playRound(t, s)
	assert.Equal(t, 0, s.Shuffles())

	phase, err := s.Deal(10)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Shuffles())
	assert.Equal(t, len(game.VisibleCards(phase)), s.Count().CardsDealt)
}

func TestSetRules(t *testing.T) {
	s, _ := newStacked(t, "10S", "9D", "2H", "7C", "KD")

	_, err := s.Deal(10)
	require.NoError(t, err)

	rules := game.DefaultRules()
	rules.Decks = 2
	assert.ErrorIs(t, s.SetRules(rules), game.ReasonRoundInProgress)

	_, err = s.Act(game.ActionStand)
	require.NoError(t, err)

	require.NoError(t, s.SetRules(rules))
	assert.Equal(t, 2, s.Rules().Decks)
	assert.Equal(t, 104, s.Count().CardsRemaining)
	assert.Nil(t, s.Phase())

	rules.Decks = 9
	assert.Error(t, s.SetRules(rules))
}

func TestNewRejectsBadRules(t *testing.T) {
	rules := game.DefaultRules()
	rules.BlackjackPayout = 3
	_, err := New(Options{Rules: rules})
	assert.Error(t, err)
}

// playRound играет раунд по подсказкам базовой стратегии.
func playRound(t *testing.T, s *Session) game.Settled {
	t.Helper()

	phase, err := s.Deal(10)
	require.NoError(t, err)

	for steps := 0; steps < 20; steps++ {
		if settled, ok := phase.(game.Settled); ok {
			return settled
		}
		advice, err := s.Hint()
		require.NoError(t, err)
		phase, err = s.Act(advice.Action)
		require.NoError(t, err, advice.Explanation)
	}
	t.Fatalf("round did not settle: %s", phase.Name())
	return game.Settled{}
}

func TestManyRoundsFollowingAdvice(t *testing.T) {
	rules := game.DefaultRules()
	rules.Surrender = true
	s, err := New(Options{Rules: rules, Rand: rand.New(rand.NewSource(42))})
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		settled := playRound(t, s)
		for _, seat := range settled.Seats {
			assert.NotEqual(t, game.ResultNone, seat.Result)
		}
		c := s.Count()
		assert.LessOrEqual(t, c.CardsDealt, rules.ShoeSize())
	}
	assert.Greater(t, s.Shuffles(), 0)
}

func TestManager(t *testing.T) {
	m := NewManager(Options{Rules: game.DefaultRules(), Rand: rand.New(rand.NewSource(1))})

	assert.Nil(t, m.Get(1))

	a, err := m.GetOrCreate(1)
	require.NoError(t, err)
	b, err := m.GetOrCreate(1)
	require.NoError(t, err)
	assert.Same(t, a, b)

	var wg sync.WaitGroup
	for i := int64(0); i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s, err := m.GetOrCreate(id)
			assert.NoError(t, err)
			if _, err := s.Deal(10); err != nil {
				assert.ErrorIs(t, err, game.ReasonRoundInProgress)
			}
		}(100 + i%5)
	}
	wg.Wait()
	assert.Equal(t, 6, m.Len())

	m.Delete(1)
	assert.Nil(t, m.Get(1))
	assert.Equal(t, 5, m.Len())
}
