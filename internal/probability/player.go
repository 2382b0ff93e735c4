package probability

import (
	"math"

	"blackjack-engine/internal/game"
)

const surrenderEV = -0.5

type BustProbabilities struct {
	// Hit вероятность перебора следующей картой.
	Hit    float64 `json:"hit"`
	Dealer float64 `json:"dealer"`
}

// DecisionProbabilities EV в единицах исходной ставки. SplitEV и
// InsuranceEV равны nil, если действие неприменимо.
type DecisionProbabilities struct {
	HitEV             float64           `json:"hitEV"`
	StandEV           float64           `json:"standEV"`
	DoubleDownEV      float64           `json:"doubleDownEV"`
	SplitEV           *float64          `json:"splitEV"`
	InsuranceEV       *float64          `json:"insuranceEV"`
	SurrenderEV       float64           `json:"surrenderEV"`
	BustProbabilities BustProbabilities `json:"bustProbabilities"`
	BestAction        game.Action       `json:"bestAction"`
	DealerBlackjack   float64           `json:"dealerBlackjackProbability"`
}

// evaluator EV решений игрока. Дилер считается точно по составу шуза и
// при условии, что блэкджека у него нет (дилер уже проверил карту).
// Добор игрока считается по текущим долям карт без выемки.
type evaluator struct {
	rules  game.Rules
	probs  [12]float64
	dealer outcome
	memo   map[[2]int]float64
}

func newEvaluator(s shoe, dealer outcome, rules game.Rules) *evaluator {
	ev := &evaluator{
		rules:  rules,
		dealer: dealer,
		memo:   make(map[[2]int]float64),
	}
	for v := 2; v <= 11; v++ {
		ev.probs[v] = s.prob(v)
	}
	return ev
}

func bestTotal(hard, aces int) int {
	if aces > 0 && hard+10 <= 21 {
		return hard + 10
	}
	return hard
}

func addCard(hard, aces, v int) (int, int) {
	if v == 11 {
		return hard + 1, aces + 1
	}
	return hard + v, aces
}

func (ev *evaluator) stand(total int) float64 {
	if total > 21 {
		return -1
	}
	win := ev.dealer.bust
	lose := 0.0
	for t := 17; t <= 21; t++ {
		switch {
		case t < total:
			win += ev.dealer.totals[t]
		case t > total:
			lose += ev.dealer.totals[t]
		}
	}
	// итог дилера ниже 17 бывает только на пустом шузе
	for t := 0; t < 17; t++ {
		if total > t {
			win += ev.dealer.totals[t]
		} else if total < t {
			lose += ev.dealer.totals[t]
		}
	}
	return win - lose
}

// best оптимальная игра из состояния: стоять или брать дальше.
func (ev *evaluator) best(hard, aces int) float64 {
	total := bestTotal(hard, aces)
	if total > 21 {
		return -1
	}
	if total == 21 {
		return ev.stand(21)
	}
	return math.Max(ev.stand(total), ev.hit(hard, aces))
}

func (ev *evaluator) hit(hard, aces int) float64 {
	key := [2]int{hard, min(aces, 1)}
	if v, ok := ev.memo[key]; ok {
		return v
	}

	sum := 0.0
	for v := 2; v <= 11; v++ {
		p := ev.probs[v]
		if p == 0 {
			continue
		}
		h, a := addCard(hard, aces, v)
		sum += p * ev.best(h, a)
	}
	ev.memo[key] = sum
	return sum
}

func (ev *evaluator) double(hard, aces int) float64 {
	sum := 0.0
	for v := 2; v <= 11; v++ {
		p := ev.probs[v]
		if p == 0 {
			continue
		}
		h, a := addCard(hard, aces, v)
		sum += p * 2 * ev.stand(bestTotal(h, a))
	}
	return sum
}

func (ev *evaluator) bustOnHit(hard, aces int) float64 {
	sum := 0.0
	for v := 2; v <= 11; v++ {
		h, a := addCard(hard, aces, v)
		if bestTotal(h, a) > 21 {
			sum += ev.probs[v]
		}
	}
	return sum
}

// splitHand EV одной руки после сплита: на тузы одна карта.
func (ev *evaluator) splitHand(card int) float64 {
	hard, aces := addCard(0, 0, card)
	sum := 0.0
	for v := 2; v <= 11; v++ {
		p := ev.probs[v]
		if p == 0 {
			continue
		}
		h, a := addCard(hard, aces, v)
		if card == 11 {
			sum += p * ev.stand(bestTotal(h, a))
			continue
		}
		best := ev.best(h, a)
		if ev.rules.DoubleAfterSplit {
			best = math.Max(best, ev.double(h, a))
		}
		sum += p * best
	}
	return sum
}

// PlayerDecision EV всех действий для руки игрока против открытой карты.
// Пустой ввод дает пустую запись.
func (e *Engine) PlayerDecision(player []game.Card, up game.Card) DecisionProbabilities {
	if len(player) == 0 || up.IsZero() {
		return DecisionProbabilities{}
	}

	h := game.NewHand(player...)
	s := e.shoe()
	full := dealerOutcomes(s, up.Value(), e.rules)
	ev := newEvaluator(s, full.withoutNatural(), e.rules)

	hard, aces := 0, 0
	for _, c := range player {
		hard, aces = addCard(hard, aces, c.Value())
	}

	d := DecisionProbabilities{
		SurrenderEV:     surrenderEV,
		DealerBlackjack: full.natural,
		BustProbabilities: BustProbabilities{
			Hit:    ev.bustOnHit(hard, aces),
			Dealer: ev.dealer.bust,
		},
	}

	if h.IsBusted() {
		d.HitEV, d.StandEV, d.DoubleDownEV = -1, -1, -2
		d.BustProbabilities.Hit = 1
		d.BestAction = game.ActionNone
		return d
	}

	d.StandEV = ev.stand(h.Best())
	d.HitEV = ev.hit(hard, aces)
	d.DoubleDownEV = ev.double(hard, aces)
	if h.IsBlackjack() {
		d.StandEV = e.rules.BlackjackPayout * (1 - full.natural)
	}

	if h.CanSplit() && e.rules.MaxSplitHands > 1 {
		v := 2 * ev.splitHand(h.Cards[0].Value())
		d.SplitEV = &v
	}

	if up.Rank == game.Ace {
		p10 := s.prob(10)
		v := 2*p10 - (1 - p10)
		d.InsuranceEV = &v
	}

	d.BestAction = d.best(e.rules, len(player) == 2)
	return d
}

func (d DecisionProbabilities) best(rules game.Rules, firstTwo bool) game.Action {
	action, value := game.ActionStand, d.StandEV
	if d.HitEV > value {
		action, value = game.ActionHit, d.HitEV
	}
	if firstTwo && d.DoubleDownEV > value {
		action, value = game.ActionDouble, d.DoubleDownEV
	}
	if d.SplitEV != nil && *d.SplitEV > value {
		action, value = game.ActionSplit, *d.SplitEV
	}
	if firstTwo && rules.Surrender && d.SurrenderEV > value {
		action = game.ActionSurrender
	}
	return action
}
