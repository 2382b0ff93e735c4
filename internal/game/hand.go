package game

// Hand упорядоченный список карт в порядке раздачи. Add не меняет
// исходную руку, а возвращает новую.
type Hand struct {
	Cards     []Card `json:"cards"`
	FromSplit bool   `json:"fromSplit,omitempty"`
}

func NewHand(cards ...Card) Hand {
	return Hand{Cards: append([]Card(nil), cards...)}
}

func (h Hand) Add(c Card) Hand {
	cards := make([]Card, len(h.Cards), len(h.Cards)+1)
	copy(cards, h.Cards)
	return Hand{Cards: append(cards, c), FromSplit: h.FromSplit}
}

func (h Hand) Len() int {
	return len(h.Cards)
}

func (h Hand) aces() int {
	n := 0
	for _, c := range h.Cards {
		if c.Rank == Ace {
			n++
		}
	}
	return n
}

// hardTotal все тузы считаются за 1.
func (h Hand) hardTotal() int {
	total := 0
	for _, c := range h.Cards {
		if c.Rank == Ace {
			total++
			continue
		}
		total += c.Value()
	}
	return total
}

// Values все допустимые суммы по возрастанию. Сумма "все тузы по 1" есть
// всегда, даже при переборе; остальные только если не больше 21.
func (h Hand) Values() []int {
	hard := h.hardTotal()
	values := []int{hard}
	for k := 1; k <= h.aces(); k++ {
		v := hard + 10*k
		if v > 21 {
			break
		}
		values = append(values, v)
	}
	return values
}

// Best наибольшая сумма не больше 21, иначе наименьший перебор.
func (h Hand) Best() int {
	values := h.Values()
	best := -1
	for _, v := range values {
		if v <= 21 && v > best {
			best = v
		}
	}
	if best >= 0 {
		return best
	}
	return values[0]
}

func (h Hand) IsSoft() bool {
	return len(h.Values()) > 1
}

func (h Hand) IsBusted() bool {
	for _, v := range h.Values() {
		if v <= 21 {
			return false
		}
	}
	return true
}

// IsBlackjack только две первые карты, один туз, и не после сплита.
func (h Hand) IsBlackjack() bool {
	if len(h.Cards) != 2 || h.FromSplit {
		return false
	}
	return h.Best() == 21 && h.aces() == 1
}

func (h Hand) CanSplit() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank == h.Cards[1].Rank
}

// IsPair пара по очкам: K+Q тоже пара десяток для таблицы стратегии.
func (h Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Value() == h.Cards[1].Value()
}

// HandState снимок руки для отображения и сохранения.
type HandState struct {
	Cards       []Card `json:"cards"`
	Values      []int  `json:"values"`
	Best        int    `json:"best"`
	IsSoft      bool   `json:"isSoft"`
	IsBusted    bool   `json:"isBusted"`
	IsBlackjack bool   `json:"isBlackjack"`
	CanSplit    bool   `json:"canSplit"`
}

func (h Hand) State() HandState {
	return HandState{
		Cards:       append([]Card(nil), h.Cards...),
		Values:      h.Values(),
		Best:        h.Best(),
		IsSoft:      h.IsSoft(),
		IsBusted:    h.IsBusted(),
		IsBlackjack: h.IsBlackjack(),
		CanSplit:    h.CanSplit(),
	}
}

func (h Hand) String() string {
	return FormatCards(h.Cards)
}
