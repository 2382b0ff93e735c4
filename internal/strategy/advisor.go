package strategy

import (
	"fmt"
	"sync/atomic"

	"blackjack-engine/internal/game"
)

type Options struct {
	CanDouble    bool `json:"canDouble"`
	CanSplit     bool `json:"canSplit"`
	CanSurrender bool `json:"canSurrender"`
}

type Advice struct {
	Action      game.Action `json:"action"`
	Kind        string      `json:"kind,omitempty"`
	Total       int         `json:"total,omitempty"`
	DealerUp    int         `json:"dealerUp,omitempty"`
	Explanation string      `json:"explanation"`
}

const (
	KindHard = "hard"
	KindSoft = "soft"
	KindPair = "pair"
)

var kindNames = map[string]string{
	KindHard: "Жесткие",
	KindSoft: "Мягкие",
	KindPair: "Пара",
}

var actionNames = map[game.Action]string{
	game.ActionHit:       "взять карту",
	game.ActionStand:     "стоять",
	game.ActionDouble:    "удвоить",
	game.ActionSplit:     "сплит",
	game.ActionSurrender: "сдаться",
}

// Recommend подсказка по таблице. Пустой ввод дает stand, сгоревшая рука ActionNone.
func (c *Chart) Recommend(player []game.Card, up game.Card, opts Options) Advice {
	if len(player) == 0 || up.IsZero() {
		return Advice{Action: game.ActionStand, Explanation: "Недостаточно данных для подсказки"}
	}

	h := game.NewHand(player...)
	if h.IsBusted() {
		return Advice{Action: game.ActionNone, Total: h.Best(), Explanation: "Перебор, ходов нет"}
	}

	upValue := up.Value()
	total := h.Best()
	opts.CanSurrender = opts.CanSurrender && c.rules.Surrender

	var kind string
	var cl cell
	switch {
	case h.CanSplit() && opts.CanSplit:
		kind, cl = KindPair, c.pairs[h.Cards[0].Value()][upValue]
	case h.IsSoft():
		kind, cl = KindSoft, c.soft[total][upValue]
	default:
		kind = KindHard
		if total < 5 {
			cl = cellHit
		} else {
			cl = c.hard[total][upValue]
		}
	}

	action, substituted := resolve(cl, total, opts)
	return Advice{
		Action:      action,
		Kind:        kind,
		Total:       total,
		DealerUp:    upValue,
		Explanation: explain(kind, h, upValue, action, cl, substituted),
	}
}

func resolve(cl cell, total int, opts Options) (game.Action, bool) {
	switch cl {
	case cellHit:
		return game.ActionHit, false
	case cellStand:
		return game.ActionStand, false
	case cellSplit:
		return game.ActionSplit, false
	case cellDouble:
		if opts.CanDouble {
			return game.ActionDouble, false
		}
		return game.ActionHit, true
	case cellDoubleStand:
		if opts.CanDouble {
			return game.ActionDouble, false
		}
		return game.ActionStand, true
	case cellSurrender:
		if opts.CanSurrender {
			return game.ActionSurrender, false
		}
		if total <= 15 {
			return game.ActionHit, true
		}
		return game.ActionStand, true
	}
	return game.ActionStand, false
}

func upLabel(up int) string {
	if up == 11 {
		return "A"
	}
	return fmt.Sprint(up)
}

func explain(kind string, h game.Hand, up int, action game.Action, cl cell, substituted bool) string {
	subject := fmt.Sprintf("%s %d", kindNames[kind], h.Best())
	if kind == KindPair {
		subject = fmt.Sprintf("%s %s", kindNames[kind], h.Cards[0].Rank)
	}

	msg := fmt.Sprintf("%s против %s: %s", subject, upLabel(up), actionNames[action])
	if !substituted {
		return msg
	}

	switch cl {
	case cellDouble, cellDoubleStand:
		return msg + " (удвоение недоступно)"
	case cellSurrender:
		return msg + " (сдаться нельзя)"
	}
	return msg
}

// Advisor держит таблицу для текущих правил. Смена правил всегда
// перестраивает таблицу целиком и подменяет ее атомарно.
type Advisor struct {
	chart atomic.Pointer[Chart]
}

func NewAdvisor(rules game.Rules) *Advisor {
	a := &Advisor{}
	a.SetRules(rules)
	return a
}

func (a *Advisor) SetRules(rules game.Rules) {
	a.chart.Store(BuildChart(rules))
}

func (a *Advisor) Chart() *Chart {
	return a.chart.Load()
}

func (a *Advisor) Rules() game.Rules {
	return a.Chart().rules
}

func (a *Advisor) Recommend(player []game.Card, up game.Card, opts Options) Advice {
	return a.Chart().Recommend(player, up, opts)
}
