// Package deck holds the navigable slide sequence of one presenter session.
package deck

import (
	"errors"
	"fmt"
	"io"
)

// RenderFunc writes one slide's visual output.
type RenderFunc func(w io.Writer) error

type Slide struct {
	ID     SlideID
	Title  string
	Render RenderFunc
}

// Deck is an ordered, fixed sequence of slides with one active position.
// The slice is never modified after New; only the active index moves.
type Deck struct {
	slides []Slide
	index  map[SlideID]int
	active int
}

var ErrNoSlides = errors.New("deck needs at least one slide")

func New(slides []Slide) (*Deck, error) {
	if len(slides) == 0 {
		return nil, ErrNoSlides
	}

	d := &Deck{
		slides: append([]Slide(nil), slides...),
		index:  make(map[SlideID]int, len(slides)),
	}
	for i, s := range d.slides {
		if s.Render == nil {
			return nil, fmt.Errorf("slide %d (%s) has no renderer", i, s.ID)
		}
		if _, dup := d.index[s.ID]; dup {
			return nil, fmt.Errorf("slide %s appears twice", s.ID)
		}
		d.index[s.ID] = i
	}
	return d, nil
}

func (d *Deck) Len() int {
	return len(d.slides)
}

func (d *Deck) Active() int {
	return d.active
}

func (d *Deck) ActiveSlide() Slide {
	return d.slides[d.active]
}

// Slides returns the sequence in order.
func (d *Deck) Slides() []Slide {
	return append([]Slide(nil), d.slides...)
}

// GoTo moves to index when it is in range and reports whether the active
// slide changed. Out-of-range targets are ignored.
func (d *Deck) GoTo(index int) bool {
	if index < 0 || index >= len(d.slides) || index == d.active {
		return false
	}
	d.active = index
	return true
}

func (d *Deck) Next() bool {
	return d.GoTo(d.active + 1)
}

func (d *Deck) Previous() bool {
	return d.GoTo(d.active - 1)
}

func (d *Deck) HasNext() bool {
	return d.active < len(d.slides)-1
}

func (d *Deck) HasPrevious() bool {
	return d.active > 0
}

// Begin is the hero slide's call to action: jump to the first content slide.
func (d *Deck) Begin() bool {
	return d.GoTo(1)
}

// Select moves to the slide with the given identifier.
func (d *Deck) Select(id SlideID) bool {
	i, ok := d.index[id]
	if !ok {
		return false
	}
	return d.GoTo(i)
}

// Progress is (active+1)/N.
func (d *Deck) Progress() float64 {
	return float64(d.active+1) / float64(len(d.slides))
}

// Render invokes the renderer of the active slide only.
func (d *Deck) Render(w io.Writer) error {
	return d.slides[d.active].Render(w)
}
