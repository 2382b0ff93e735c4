package game

import (
	"encoding/json"
	"fmt"
	"math"
)

type Result uint8

const (
	ResultNone Result = iota
	ResultWin
	ResultLoss
	ResultPush
	ResultBlackjack
	ResultBust
	ResultSurrender
)

var resultNames = map[Result]string{
	ResultWin:       "win",
	ResultLoss:      "loss",
	ResultPush:      "push",
	ResultBlackjack: "blackjack",
	ResultBust:      "bust",
	ResultSurrender: "surrender",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "none"
}

func ParseResult(s string) (Result, error) {
	for r, name := range resultNames {
		if name == s {
			return r, nil
		}
	}
	if s == "" || s == "none" {
		return ResultNone, nil
	}
	return ResultNone, fmt.Errorf("unknown result %q", s)
}

// ResultNone сериализуется в null: раунд еще не рассчитан.
func (r Result) MarshalJSON() ([]byte, error) {
	if r == ResultNone {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *Result) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ResultNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Result) IsWin() bool {
	return r == ResultWin || r == ResultBlackjack
}

func (r Result) IsLoss() bool {
	return r == ResultLoss || r == ResultBust || r == ResultSurrender
}

// DetermineRoundResult порядок важен: перебор игрока, потом блэкджеки,
// потом перебор дилера и сравнение очков.
func DetermineRoundResult(player, dealer Hand) Result {
	if player.Best() > 21 {
		return ResultBust
	}

	playerBJ := player.IsBlackjack()
	dealerBJ := dealer.IsBlackjack()

	switch {
	case playerBJ && !dealerBJ:
		return ResultBlackjack
	case playerBJ && dealerBJ:
		return ResultPush
	case dealerBJ:
		return ResultLoss
	}

	if dealer.Best() > 21 {
		return ResultWin
	}

	playerScore, dealerScore := player.Best(), dealer.Best()
	switch {
	case playerScore > dealerScore:
		return ResultWin
	case playerScore < dealerScore:
		return ResultLoss
	}
	return ResultPush
}

// Payout сколько вернуть игроку вместе со ставкой.
func Payout(result Result, bet int, rules Rules) int {
	switch result {
	case ResultWin:
		return bet * 2
	case ResultBlackjack:
		// поправка на двоичное представление 1.2
		return bet + int(math.Floor(float64(bet)*rules.BlackjackPayout+1e-9))
	case ResultPush:
		return bet
	case ResultSurrender:
		// нечетная ставка округляется в пользу игрока
		return bet - bet/2
	}
	return 0
}
