package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blackjack-engine/internal/game"
	"blackjack-engine/internal/player"
	"blackjack-engine/internal/probability"
	"blackjack-engine/internal/strategy"
)

func deal(t *testing.T, rules game.Rules, items ...string) (game.Phase, *game.StackedSource) {
	t.Helper()
	cards, err := game.ParseCards(items)
	require.NoError(t, err)
	src := game.NewStackedSource(cards...)
	phase, err := game.Deal(src, 10, rules)
	require.NoError(t, err)
	return phase, src
}

func TestFormatHand(t *testing.T) {
	cards, err := game.ParseCards([]string{"AS", "6H"})
	require.NoError(t, err)
	assert.Equal(t, "[A♠, 6♥] (7/17)", formatHand(game.NewHand(cards...)))

	cards, err = game.ParseCards([]string{"10S", "6H"})
	require.NoError(t, err)
	assert.Equal(t, "[10♠, 6♥] (16)", formatHand(game.NewHand(cards...)))

	cards[1].FaceUp = false
	assert.Equal(t, "[10♠, ?]", formatHand(game.NewHand(cards...)))
}

func TestFormatTable(t *testing.T) {
	phase, _ := deal(t, game.DefaultRules(), "10S", "AD", "6H", "7C")
	pt, ok := phase.(game.PlayerTurn)
	require.True(t, ok)

	text := formatTable(pt)
	assert.Contains(t, text, "🎴 Вы: [10♠, 6♥] (16)")
	assert.Contains(t, text, "🃏 Дилер: [A♦, ?]")
	assert.Contains(t, text, "можно застраховаться")
	assert.NotContains(t, text, "7♣")
}

func TestFormatTableSplit(t *testing.T) {
	phase, src := deal(t, game.DefaultRules(), "8S", "6D", "8H", "7C", "3C", "KD")
	phase, err := game.Act(phase, game.ActionSplit, src)
	require.NoError(t, err)
	pt, ok := phase.(game.PlayerTurn)
	require.True(t, ok)

	text := formatTable(pt)
	assert.Contains(t, text, "👉 Рука 1: [8♠, 3♣] (11) 💰 10")
	assert.Contains(t, text, "Рука 2: [8♥, K♦] (18) 💰 10")
}

func TestFormatSettled(t *testing.T) {
	phase, src := deal(t, game.DefaultRules(), "10S", "9D", "8H", "7C", "KC")
	phase, err := game.Act(phase, game.ActionStand, src)
	require.NoError(t, err)
	dt, ok := phase.(game.DealerTurn)
	require.True(t, ok)
	phase, err = dt.Play(src)
	require.NoError(t, err)
	settled, ok := phase.(game.Settled)
	require.True(t, ok)

	text := formatSettled(settled, 1010)
	assert.Contains(t, text, "🎴 Вы: [10♠, 8♥] (18) 🎉 Вы выиграли!")
	assert.Contains(t, text, "🃏 Дилер: [9♦, 7♣, K♣] (26)")
	assert.Contains(t, text, "💰 Выигрыш: +10")
	assert.Contains(t, text, "💵 Баланс: 1010")
}

func TestKeyboardOptions(t *testing.T) {
	rules := game.DefaultRules()
	rules.Surrender = true
	phase, _ := deal(t, rules, "8S", "AD", "8H", "7C")
	pt, ok := phase.(game.PlayerTurn)
	require.True(t, ok)

	opts := keyboardOptions(pt, 100)
	assert.Equal(t, GameKeyboardOptions{CanDouble: true, CanSplit: true, CanSurrender: true, CanInsure: true}, opts)

	poor := keyboardOptions(pt, 4)
	assert.False(t, poor.CanDouble)
	assert.False(t, poor.CanSplit)
	assert.False(t, poor.CanInsure)
	assert.True(t, poor.CanSurrender)

	kb := GameKeyboard(opts)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 4)
	assert.Len(t, kb.InlineKeyboard[1], 4)

	kb = GameKeyboard(GameKeyboardOptions{})
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 2)
}

func TestCallbackActions(t *testing.T) {
	for data, action := range callbackActions {
		assert.Equal(t, data, action.String())
	}
}

func TestFormatAdviceAndOdds(t *testing.T) {
	advice := strategy.Advice{Action: game.ActionStand, Explanation: "Жесткие 16 против 10: стоять"}
	assert.Equal(t, "💡 Стоять\nЖесткие 16 против 10: стоять", formatAdvice(advice))

	e := probability.NewEngine(game.DefaultRules())
	cards, err := game.ParseCards([]string{"10S", "7H", "AD"})
	require.NoError(t, err)

	text := formatOdds(e.Snapshot(cards[:2], cards[2]))
	assert.Contains(t, text, "• Страховка: -0.077")
	assert.NotContains(t, text, "• Сплит")
	assert.Contains(t, text, "Hi-Lo: +0")
	assert.Contains(t, text, "Преимущество казино: 0.50%")

	bare := formatOdds(e.Snapshot(nil, game.Card{}))
	assert.NotContains(t, bare, "EV")
}

func TestParseRuleChange(t *testing.T) {
	base := game.DefaultRules()

	r, err := parseRuleChange(base, "decks", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Decks)

	r, err = parseRuleChange(base, "H17", "on")
	require.NoError(t, err)
	assert.True(t, r.DealerHitsSoft17)

	r, err = parseRuleChange(base, "payout", "6:5")
	require.NoError(t, err)
	assert.Equal(t, game.PayoutSixToFive, r.BlackjackPayout)

	r, err = parseRuleChange(base, "surrender", "да")
	require.NoError(t, err)
	assert.True(t, r.Surrender)

	_, err = parseRuleChange(base, "decks", "12")
	assert.Error(t, err)
	_, err = parseRuleChange(base, "payout", "2:1")
	assert.Error(t, err)
	_, err = parseRuleChange(base, "das", "maybe")
	assert.Error(t, err)
	_, err = parseRuleChange(base, "color", "red")
	assert.Error(t, err)
}

func TestFormatHistory(t *testing.T) {
	assert.Contains(t, formatHistory(nil), "История пуста")

	at := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	text := formatHistory([]player.HandRecord{{
		Bet: 10, Payout: 25, Result: "blackjack",
		PlayerCards: "[A♠, K♥]", DealerCards: "[9♦, 7♣]", CreatedAt: at,
	}})
	assert.Contains(t, text, "14.03 18:30 [A♠, K♥] vs [9♦, 7♣] | blackjack | +15")
}

func TestUserError(t *testing.T) {
	assert.Equal(t, "❌ "+game.ReasonCannotDouble.Error(), userError(game.ReasonCannotDouble))
	assert.Equal(t, "❌ Ошибка. Попробуйте позже.", userError(assert.AnError))
}
