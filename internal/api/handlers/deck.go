package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"microcasa/internal/api/middleware"
	"microcasa/internal/deck"
	"microcasa/internal/web"
)

// DeckHandler serves the slide pages and navigation of the caller's session.
type DeckHandler struct {
	renderer *web.Renderer
}

func NewDeckHandler(renderer *web.Renderer) *DeckHandler {
	return &DeckHandler{renderer: renderer}
}

// Page renders the active slide.
func (h *DeckHandler) Page(c *gin.Context) {
	writePage(c, h.renderer, http.StatusOK)
}

// GoTo handles sidebar selection by slide key.
func (h *DeckHandler) GoTo(c *gin.Context) {
	id, ok := deck.ParseSlideID(c.Param("slide"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown slide"})
		return
	}
	h.navigate(c, "goto", func(d *deck.Deck) bool { return d.Select(id) })
}

func (h *DeckHandler) Next(c *gin.Context) {
	h.navigate(c, "next", (*deck.Deck).Next)
}

func (h *DeckHandler) Previous(c *gin.Context) {
	h.navigate(c, "previous", (*deck.Deck).Previous)
}

func (h *DeckHandler) Begin(c *gin.Context) {
	h.navigate(c, "begin", (*deck.Deck).Begin)
}

func (h *DeckHandler) navigate(c *gin.Context, action string, move func(*deck.Deck) bool) {
	middleware.Session(c).Navigate(action, move)
	c.Redirect(http.StatusSeeOther, "/")
}

type slideInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Title string `json:"title"`
}

// State reports the deck cursor as JSON.
func (h *DeckHandler) State(c *gin.Context) {
	d := middleware.Session(c).Deck

	slides := make([]slideInfo, 0, d.Len())
	for _, s := range d.Slides() {
		slides = append(slides, slideInfo{Key: s.ID.Key(), Label: s.ID.Label(), Title: s.Title})
	}

	c.JSON(http.StatusOK, gin.H{
		"index":        d.Active(),
		"active":       d.ActiveSlide().ID.Key(),
		"count":        d.Len(),
		"progress":     d.Progress(),
		"has_next":     d.HasNext(),
		"has_previous": d.HasPrevious(),
		"slides":       slides,
	})
}

// writePage renders the full page into a buffer first so a template error
// still produces a clean 500.
func writePage(c *gin.Context, r *web.Renderer, status int) {
	var buf bytes.Buffer
	if err := r.Page(&buf, middleware.Session(c)); err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Failed to render slide")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
