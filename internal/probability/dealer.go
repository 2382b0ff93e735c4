package probability

import (
	"strconv"

	"blackjack-engine/internal/game"
)

// outcome распределение итога дилера. natural отдельно от 21.
type outcome struct {
	totals  [22]float64
	bust    float64
	natural float64
}

// withoutNatural распределение при условии, что дилер уже проверил
// закрытую карту и блэкджека нет.
func (o outcome) withoutNatural() outcome {
	rest := 1 - o.natural
	if rest <= 0 {
		return outcome{}
	}
	out := outcome{bust: o.bust / rest}
	for t := range o.totals {
		out.totals[t] = o.totals[t] / rest
	}
	return out
}

// dealerOutcomes полный перебор добора дилера по оставшимся картам,
// карты вынимаются без возврата.
func dealerOutcomes(s shoe, up int, rules game.Rules) outcome {
	var out outcome

	var walk func(hard, aces, n int, p float64)
	walk = func(hard, aces, n int, p float64) {
		best, soft := hard, false
		if aces > 0 && hard+10 <= 21 {
			best, soft = hard+10, true
		}

		switch {
		case n == 2 && best == 21:
			out.natural += p
			return
		case best > 21:
			out.bust += p
			return
		}

		stands := best >= 17 && !(best == 17 && soft && rules.DealerHitsSoft17)
		if n >= 2 && stands || s.total == 0 {
			out.totals[best] += p
			return
		}

		for v := 2; v <= 11; v++ {
			cnt := s.counts[v]
			if cnt == 0 {
				continue
			}
			q := p * float64(cnt) / float64(s.total)

			s.counts[v]--
			s.total--
			if v == 11 {
				walk(hard+1, aces+1, n+1, q)
			} else {
				walk(hard+v, aces, n+1, q)
			}
			s.counts[v]++
			s.total++
		}
	}

	if up == 11 {
		walk(1, 1, 1, 1)
	} else {
		walk(up, 0, 1, 1)
	}
	return out
}

// DealerProbabilities ExpectedValue это EV игрока, который выигрывает
// только при переборе дилера.
type DealerProbabilities struct {
	UpCard                  int                `json:"upCard"`
	BustProbability         float64            `json:"bustProbability"`
	BlackjackProbability    float64            `json:"blackjackProbability"`
	ExpectedValue           float64            `json:"expectedValue"`
	FinalTotalProbabilities map[string]float64 `json:"finalTotalProbabilities"`
}

// Dealer распределение итогов дилера по открытой карте и текущему составу шуза.
func (e *Engine) Dealer(up game.Card) DealerProbabilities {
	if up.IsZero() {
		return DealerProbabilities{FinalTotalProbabilities: map[string]float64{}}
	}

	o := dealerOutcomes(e.shoe(), up.Value(), e.rules)

	final := make(map[string]float64, 6)
	for t := 17; t <= 21; t++ {
		final[strconv.Itoa(t)] = o.totals[t]
	}
	final["21"] += o.natural
	final["bust"] = o.bust

	return DealerProbabilities{
		UpCard:                  up.Value(),
		BustProbability:         o.bust,
		BlackjackProbability:    o.natural,
		ExpectedValue:           o.bust - (1 - o.bust),
		FinalTotalProbabilities: final,
	}
}
