package game

import (
	"math/rand"
	"time"
)

const CardsPerDeck = 52

type CardSource interface {
	Draw() (Card, error)
}

// Shoe это несколько колод, которые раздаются подряд до перетасовки.
type Shoe struct {
	cards []Card
	decks int
	next  int
	rng   *rand.Rand
}

// NewShoe создает перетасованный шуз. rng можно передать для воспроизводимой раздачи.
func NewShoe(decks int, rng *rand.Rand) *Shoe {
	if decks < 1 {
		decks = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Shoe{
		cards: make([]Card, 0, decks*CardsPerDeck),
		decks: decks,
		rng:   rng,
	}
	s.Reset()
	return s
}

// Reset собирает все карты обратно и тасует.
func (s *Shoe) Reset() {
	s.cards = s.cards[:0]
	for i := 0; i < s.decks; i++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				s.cards = append(s.cards, NewCard(rank, suit))
			}
		}
	}
	s.next = 0
	s.Shuffle()
}

// Shuffle тасует только оставшиеся карты.
func (s *Shoe) Shuffle() {
	rest := s.cards[s.next:]
	s.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
}

func (s *Shoe) Draw() (Card, error) {
	if s.next >= len(s.cards) {
		return Card{}, ReasonShoeEmpty
	}

	card := s.cards[s.next]
	s.next++
	return card, nil
}

func (s *Shoe) Remaining() int {
	return len(s.cards) - s.next
}

func (s *Shoe) Size() int {
	return len(s.cards)
}

func (s *Shoe) Decks() int {
	return s.decks
}

// Penetration доля уже розданных карт.
func (s *Shoe) Penetration() float64 {
	if len(s.cards) == 0 {
		return 0
	}
	return float64(s.next) / float64(len(s.cards))
}

// StackedSource раздает карты в заданном порядке.
type StackedSource struct {
	cards []Card
}

func NewStackedSource(cards ...Card) *StackedSource {
	return &StackedSource{cards: append([]Card(nil), cards...)}
}

func (s *StackedSource) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ReasonShoeEmpty
	}

	card := s.cards[0]
	s.cards = s.cards[1:]
	card.FaceUp = true
	return card, nil
}

func (s *StackedSource) Remaining() int {
	return len(s.cards)
}
