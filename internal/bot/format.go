package bot

import (
	"fmt"
	"strconv"
	"strings"

	"blackjack-engine/internal/game"
	"blackjack-engine/internal/player"
	"blackjack-engine/internal/probability"
	"blackjack-engine/internal/strategy"
)

var actionTitles = map[game.Action]string{
	game.ActionHit:       "Взять",
	game.ActionStand:     "Стоять",
	game.ActionDouble:    "Удвоить",
	game.ActionSplit:     "Сплит",
	game.ActionSurrender: "Сдаться",
	game.ActionInsurance: "Страховка",
}

func actionTitle(a game.Action) string {
	if t, ok := actionTitles[a]; ok {
		return t
	}
	return "Нет хода"
}

var resultTexts = map[game.Result]string{
	game.ResultWin:       "🎉 Вы выиграли!",
	game.ResultLoss:      "😔 Дилер выиграл!",
	game.ResultPush:      "🤝 Ничья!",
	game.ResultBlackjack: "🎰 BLACKJACK!",
	game.ResultBust:      "💥 Перебор!",
	game.ResultSurrender: "🏳 Сдача",
}

func resultText(r game.Result) string {
	if t, ok := resultTexts[r]; ok {
		return t
	}
	return r.String()
}

// formatHand карты и очки. Мягкая рука показывает оба значения,
// с закрытой картой очки не показываются.
func formatHand(h game.Hand) string {
	for _, c := range h.Cards {
		if !c.FaceUp {
			return h.String()
		}
	}

	values := h.Values()
	if h.IsSoft() {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = strconv.Itoa(v)
		}
		return fmt.Sprintf("%s (%s)", h, strings.Join(parts, "/"))
	}
	return fmt.Sprintf("%s (%d)", h, h.Best())
}

func formatTable(pt game.PlayerTurn) string {
	var sb strings.Builder

	if len(pt.Seats) == 1 {
		fmt.Fprintf(&sb, "🎴 Вы: %s\n", formatHand(pt.Seats[0].Hand))
	} else {
		for i, seat := range pt.Seats {
			marker := "  "
			if i == pt.Active {
				marker = "👉"
			}
			fmt.Fprintf(&sb, "%s Рука %d: %s 💰 %d\n", marker, i+1, formatHand(seat.Hand), seat.Bet)
		}
	}
	fmt.Fprintf(&sb, "🃏 Дилер: %s", formatHand(pt.Dealer))

	if pt.InsuranceOpen {
		sb.WriteString("\n🛡 У дилера туз: можно застраховаться")
	}
	if pt.Insurance > 0 {
		fmt.Fprintf(&sb, "\n🛡 Страховка: %d", pt.Insurance)
	}
	return sb.String()
}

func formatSettled(s game.Settled, balance int) string {
	var sb strings.Builder

	for i, seat := range s.Seats {
		label := "Вы"
		if len(s.Seats) > 1 {
			label = fmt.Sprintf("Рука %d", i+1)
		}
		fmt.Fprintf(&sb, "🎴 %s: %s %s\n", label, formatHand(seat.Hand), resultText(seat.Result))
	}
	fmt.Fprintf(&sb, "🃏 Дилер: %s\n", formatHand(s.Dealer))

	if s.Insurance > 0 {
		if s.InsurancePayout > 0 {
			fmt.Fprintf(&sb, "🛡 Страховка сыграла: +%d\n", s.InsurancePayout)
		} else {
			fmt.Fprintf(&sb, "🛡 Страховка сгорела: -%d\n", s.Insurance)
		}
	}

	switch net := s.Net(); {
	case net > 0:
		fmt.Fprintf(&sb, "\n💰 Выигрыш: +%d", net)
	case net < 0:
		fmt.Fprintf(&sb, "\n📉 Проигрыш: %d", net)
	default:
		sb.WriteString("\n🤝 Ставка возвращена")
	}
	fmt.Fprintf(&sb, "\n💵 Баланс: %d", balance)
	return sb.String()
}

func formatAdvice(a strategy.Advice) string {
	return fmt.Sprintf("💡 %s\n%s", actionTitle(a.Action), a.Explanation)
}

func formatEV(v float64) string {
	return fmt.Sprintf("%+.3f", v)
}

func formatOdds(snap probability.Snapshot) string {
	var sb strings.Builder

	if d := snap.Decision; d != nil {
		sb.WriteString("📈 EV на единицу ставки:\n")
		fmt.Fprintf(&sb, "• Взять: %s\n", formatEV(d.HitEV))
		fmt.Fprintf(&sb, "• Стоять: %s\n", formatEV(d.StandEV))
		fmt.Fprintf(&sb, "• Удвоить: %s\n", formatEV(d.DoubleDownEV))
		if d.SplitEV != nil {
			fmt.Fprintf(&sb, "• Сплит: %s\n", formatEV(*d.SplitEV))
		}
		if d.InsuranceEV != nil {
			fmt.Fprintf(&sb, "• Страховка: %s\n", formatEV(*d.InsuranceEV))
		}
		fmt.Fprintf(&sb, "• Сдаться: %s\n", formatEV(d.SurrenderEV))
		fmt.Fprintf(&sb, "\n💥 Перебор при доборе: %.1f%%\n", d.BustProbabilities.Hit*100)
		fmt.Fprintf(&sb, "✅ Лучший ход: %s\n", actionTitle(d.BestAction))
	}

	if dp := snap.Dealer; dp != nil {
		fmt.Fprintf(&sb, "🃏 Дилер: перебор %.1f%%, блэкджек %.1f%%\n",
			dp.BustProbability*100, dp.BlackjackProbability*100)
	}

	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(formatCount(snap.Composition))
	sb.WriteString("\n")
	sb.WriteString(formatEdge(snap.HouseEdge))
	return sb.String()
}

func formatCount(c probability.Composition) string {
	return fmt.Sprintf(
		"🔢 Hi-Lo: %+d | True count: %+.2f\n"+
			"🂠 Роздано %d, осталось %d (%.1f колод)\n"+
			"🔟 Десяток: %d | 🅰️ Тузов: %d",
		c.RunningCount, c.TrueCount,
		c.CardsDealt, c.CardsRemaining, c.DecksRemaining,
		c.Remaining[game.Ten]+c.Remaining[game.Jack]+c.Remaining[game.Queen]+c.Remaining[game.King],
		c.Remaining[game.Ace])
}

func formatEdge(e probability.HouseEdge) string {
	side := "🏦 Шуз на стороне казино"
	if e.DeckFavorsPlayer {
		side = "🔥 Шуз на стороне игрока"
	}
	return fmt.Sprintf("🎲 Преимущество казино: %.2f%% (базовое %.2f%%)\n%s",
		e.CurrentHouseEdge, e.BaseHouseEdge, side)
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}

func formatRules(r game.Rules) string {
	soft17 := "стоит на мягких 17 (S17)"
	if r.DealerHitsSoft17 {
		soft17 = "берет на мягких 17 (H17)"
	}
	return fmt.Sprintf(
		"📜 Правила стола:\n\n"+
			"🂠 Колод: %d\n"+
			"🃏 Дилер %s\n"+
			"🎰 Блэкджек платит %s\n"+
			"💰 Удвоение после сплита: %s\n"+
			"🏳 Сдача: %s\n"+
			"✂️ Рук после сплита: до %d\n\n"+
			"Изменить: /rules decks 2, /rules h17 on, /rules payout 6:5,\n"+
			"/rules das off, /rules surrender on, /rules splits 3",
		r.Decks, soft17, r.PayoutLabel(), yesNo(r.DoubleAfterSplit), yesNo(r.Surrender), r.MaxSplitHands)
}

func formatHistory(hands []player.HandRecord) string {
	if len(hands) == 0 {
		return "📜 История пуста. Сыграйте: /play"
	}

	var sb strings.Builder
	sb.WriteString("📜 Последние раунды:\n\n")
	for _, h := range hands {
		fmt.Fprintf(&sb, "%s %s vs %s | %s | %+d\n",
			h.CreatedAt.Format("02.01 15:04"), h.PlayerCards, h.DealerCards, h.Result, h.Net())
	}
	return sb.String()
}

// parseRuleChange разбирает "/rules <ключ> <значение>" в новые правила.
func parseRuleChange(r game.Rules, key, value string) (game.Rules, error) {
	onOff := func() (bool, error) {
		switch strings.ToLower(value) {
		case "on", "yes", "да", "1", "true":
			return true, nil
		case "off", "no", "нет", "0", "false":
			return false, nil
		}
		return false, fmt.Errorf("ожидается on или off, получено %q", value)
	}

	var err error
	switch strings.ToLower(key) {
	case "decks":
		r.Decks, err = strconv.Atoi(value)
	case "h17":
		r.DealerHitsSoft17, err = onOff()
	case "payout":
		switch value {
		case "3:2":
			r.BlackjackPayout = game.PayoutThreeToTwo
		case "6:5":
			r.BlackjackPayout = game.PayoutSixToFive
		case "1:1":
			r.BlackjackPayout = game.PayoutEvenMoney
		default:
			err = fmt.Errorf("выплата 3:2, 6:5 или 1:1")
		}
	case "das":
		r.DoubleAfterSplit, err = onOff()
	case "surrender":
		r.Surrender, err = onOff()
	case "splits":
		r.MaxSplitHands, err = strconv.Atoi(value)
	default:
		return r, fmt.Errorf("неизвестное правило %q", key)
	}
	if err != nil {
		return r, err
	}
	return r, r.Validate()
}
