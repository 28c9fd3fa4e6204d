package deck

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCountingDeck builds a full keynote-sized deck whose renderers record calls.
func newCountingDeck(t *testing.T) (*Deck, []int) {
	t.Helper()
	calls := make([]int, Count)
	var slides []Slide
	for _, id := range AllSlides() {
		id := id
		slides = append(slides, Slide{
			ID:    id,
			Title: id.Label(),
			Render: func(w io.Writer) error {
				calls[id]++
				_, err := fmt.Fprintf(w, "slide:%s", id.Key())
				return err
			},
		})
	}
	d, err := New(slides)
	require.NoError(t, err)
	return d, calls
}

func TestGoToRendersExactlyThatSlide(t *testing.T) {
	for n := 0; n < Count; n++ {
		t.Run(SlideID(n).Key(), func(t *testing.T) {
			d, calls := newCountingDeck(t)
			d.GoTo(n)
			require.Equal(t, n, d.Active())

			var buf bytes.Buffer
			require.NoError(t, d.Render(&buf))
			assert.Equal(t, "slide:"+SlideID(n).Key(), buf.String())

			for i, c := range calls {
				if i == n {
					assert.Equal(t, 1, c)
				} else {
					assert.Zero(t, c, "slide %d must not render", i)
				}
			}
		})
	}
}

func TestGoToOutOfRange(t *testing.T) {
	d, _ := newCountingDeck(t)
	d.GoTo(4)

	assert.False(t, d.GoTo(-1))
	assert.False(t, d.GoTo(Count))
	assert.False(t, d.GoTo(4), "same index is not a move")
	assert.Equal(t, 4, d.Active())
}

func TestEnds(t *testing.T) {
	d, _ := newCountingDeck(t)

	assert.False(t, d.HasPrevious())
	assert.False(t, d.Previous())
	assert.Equal(t, 0, d.Active())

	d.GoTo(Count - 1)
	assert.False(t, d.HasNext())
	assert.False(t, d.Next())
	assert.Equal(t, Count-1, d.Active())
}

func TestWalkForward(t *testing.T) {
	d, _ := newCountingDeck(t)
	for i := 0; i < 12; i++ {
		require.True(t, d.Next())
	}
	assert.Equal(t, 12, d.Active())
	assert.False(t, d.Next())
	assert.Equal(t, 12, d.Active())
	assert.Equal(t, 1.0, d.Progress())
}

func TestProgress(t *testing.T) {
	d, _ := newCountingDeck(t)
	assert.InDelta(t, 1.0/13, d.Progress(), 1e-12)
	d.GoTo(6)
	assert.InDelta(t, 7.0/13, d.Progress(), 1e-12)
}

func TestBeginAndSelect(t *testing.T) {
	d, _ := newCountingDeck(t)
	assert.True(t, d.Begin())
	assert.Equal(t, 1, d.Active())

	assert.True(t, d.Select(Looker))
	assert.Equal(t, 6, d.Active())
	assert.Equal(t, Looker, d.ActiveSlide().ID)

	assert.False(t, d.Select(SlideID(99)))
	assert.Equal(t, 6, d.Active())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoSlides)

	_, err = New([]Slide{{ID: Hero}})
	assert.Error(t, err)

	noop := func(io.Writer) error { return nil }
	_, err = New([]Slide{{ID: Hero, Render: noop}, {ID: Hero, Render: noop}})
	assert.Error(t, err)
}

func TestSlideIDs(t *testing.T) {
	for _, id := range AllSlides() {
		got, ok := ParseSlideID(id.Key())
		require.True(t, ok)
		assert.Equal(t, id, got)
	}
	assert.Equal(t, "0. Start", Hero.Label())
	assert.Equal(t, "12. Conclusion", Conclusion.Label())

	_, ok := ParseSlideID("12. Conclusion")
	assert.False(t, ok, "labels are not identifiers")
	assert.Equal(t, "", SlideID(-1).Key())
}
