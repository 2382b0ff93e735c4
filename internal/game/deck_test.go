package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShoeComposition(t *testing.T) {
	shoe := NewShoe(6, rand.New(rand.NewSource(42)))
	require.Equal(t, 312, shoe.Size())
	require.Equal(t, 312, shoe.Remaining())

	counts := map[Rank]int{}
	for {
		c, err := shoe.Draw()
		if err != nil {
			assert.ErrorIs(t, err, ReasonShoeEmpty)
			break
		}
		assert.True(t, c.FaceUp)
		counts[c.Rank]++
	}

	for _, r := range Ranks {
		assert.Equal(t, 24, counts[r], "rank %s", r)
	}
	assert.Equal(t, 1.0, shoe.Penetration())
}

func TestShoeSeededShuffleIsReproducible(t *testing.T) {
	a := NewShoe(2, rand.New(rand.NewSource(99)))
	b := NewShoe(2, rand.New(rand.NewSource(99)))

	for i := 0; i < 50; i++ {
		ca, err := a.Draw()
		require.NoError(t, err)
		cb, err := b.Draw()
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	}
}

func TestShoeReset(t *testing.T) {
	shoe := NewShoe(1, rand.New(rand.NewSource(3)))
	for i := 0; i < 30; i++ {
		_, err := shoe.Draw()
		require.NoError(t, err)
	}
	assert.InDelta(t, 30.0/52.0, shoe.Penetration(), 1e-9)

	shoe.Reset()
	assert.Equal(t, 52, shoe.Remaining())
	assert.Equal(t, 0.0, shoe.Penetration())
}

func TestParseCard(t *testing.T) {
	tests := []struct {
		in   string
		want Card
	}{
		{"AS", NewCard(Ace, Spades)},
		{"10h", NewCard(Ten, Hearts)},
		{"K♦", NewCard(King, Diamonds)},
		{"tc", NewCard(Ten, Clubs)},
		{"2D", NewCard(Two, Diamonds)},
	}
	for _, tt := range tests {
		got, err := ParseCard(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "A", "1S", "AX", "11H"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, bad)
	}
}

func TestRankValue(t *testing.T) {
	assert.Equal(t, 11, Ace.Value())
	assert.Equal(t, 10, King.Value())
	assert.Equal(t, 10, Ten.Value())
	assert.Equal(t, 7, Seven.Value())
	assert.Equal(t, 0, Rank(0).Value())
}

func TestFormatCardsHidesHoleCard(t *testing.T) {
	c := NewCard(Nine, Clubs)
	c.FaceUp = false
	assert.Equal(t, "[A♠, ?]", FormatCards([]Card{NewCard(Ace, Spades), c}))
}
