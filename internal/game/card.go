package game

import (
	"fmt"
	"strings"
)

type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

var suitSymbols = map[Suit]string{
	Spades:   "♠",
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
}

var suitLetters = map[Suit]string{
	Spades:   "S",
	Hearts:   "H",
	Diamonds: "D",
	Clubs:    "C",
}

func (s Suit) String() string {
	if sym, ok := suitSymbols[s]; ok {
		return sym
	}
	return "?"
}

func (s Suit) MarshalText() ([]byte, error) {
	letter, ok := suitLetters[s]
	if !ok {
		return nil, fmt.Errorf("unknown suit %d", s)
	}
	return []byte(letter), nil
}

func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseSuit(s string) (Suit, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for suit, letter := range suitLetters {
		if s == letter || s == suitSymbols[suit] {
			return suit, nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", s)
}

// Rank начинается с 2, нулевое значение означает "нет карты".
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var rankNames = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8", Nine: "9", Ten: "10",
	Jack: "J", Queen: "Q", King: "K", Ace: "A",
}

func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Value: 2-10 по номиналу, картинки 10, туз 11.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten && r <= King:
		return 10
	case r.Valid():
		return int(r)
	}
	return 0
}

func (r Rank) IsTen() bool {
	return r.Value() == 10
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "?"
}

func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown rank %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func ParseRank(s string) (Rank, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "T" {
		return Ten, nil
	}
	for rank, name := range rankNames {
		if s == name {
			return rank, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

type Card struct {
	Rank   Rank `json:"rank"`
	Suit   Suit `json:"suit"`
	FaceUp bool `json:"faceUp"`
}

func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit, FaceUp: true}
}

func (c Card) Value() int {
	return c.Rank.Value()
}

func (c Card) IsZero() bool {
	return !c.Rank.Valid()
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ParseCard принимает "AS", "10h", "K♦", "T♣".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Card{}, fmt.Errorf("empty card")
	}

	runes := []rune(s)
	if len(runes) < 2 {
		return Card{}, fmt.Errorf("card %q: missing suit", s)
	}

	rank, err := ParseRank(string(runes[:len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	suit, err := ParseSuit(string(runes[len(runes)-1:]))
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	return NewCard(rank, suit), nil
}

func ParseCards(items []string) ([]Card, error) {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		c, err := ParseCard(item)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func FormatCards(cards []Card) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		if !c.FaceUp {
			parts = append(parts, "?")
			continue
		}
		parts = append(parts, c.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
