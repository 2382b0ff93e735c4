package game

// Reason закрытый список причин отказа. Реализует error, текст можно
// показывать игроку напрямую.
type Reason uint8

const (
	ReasonNotPlayerTurn Reason = iota + 1
	ReasonShoeEmpty
	ReasonNoCards
	ReasonCannotDouble
	ReasonCannotSplit
	ReasonCannotSurrender
	ReasonInsuranceUnavailable
	ReasonNotEnoughChips
	ReasonInvalidBet
	ReasonUnknownAction
	ReasonRoundInProgress
)

var reasonMessages = map[Reason]string{
	ReasonNotPlayerTurn:        "Сейчас не ваш ход",
	ReasonShoeEmpty:            "Шуз пуст, нужна перетасовка",
	ReasonNoCards:              "В руке нет карт",
	ReasonCannotDouble:         "Удвоение недоступно",
	ReasonCannotSplit:          "Сплит недоступен",
	ReasonCannotSurrender:      "Сдаться сейчас нельзя",
	ReasonInsuranceUnavailable: "Страховка недоступна",
	ReasonNotEnoughChips:       "Недостаточно фишек",
	ReasonInvalidBet:           "Неверная ставка",
	ReasonUnknownAction:        "Неизвестное действие",
	ReasonRoundInProgress:      "Раунд еще не закончен",
}

func (r Reason) Error() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "unknown reason"
}
