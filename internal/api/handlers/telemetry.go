package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"microcasa/internal/api/middleware"
	"microcasa/internal/charts"
	"microcasa/internal/deck"
	"microcasa/internal/metrics"
	"microcasa/internal/research"
	"microcasa/internal/storage"
	"microcasa/internal/telemetry"
	"microcasa/internal/web"
)

// TelemetryHandler serves the simulated sensor table of the caller's session.
type TelemetryHandler struct {
	data     *research.Data
	renderer *web.Renderer
	storage  *storage.Client
	pacer    telemetry.Pacer
	pace     time.Duration
	log      *zap.Logger
}

// NewTelemetryHandler creates a TelemetryHandler. A nil store disables exports.
func NewTelemetryHandler(data *research.Data, renderer *web.Renderer, store *storage.Client, pacer telemetry.Pacer, pace time.Duration, log *zap.Logger) *TelemetryHandler {
	return &TelemetryHandler{
		data:     data,
		renderer: renderer,
		storage:  store,
		pacer:    pacer,
		pace:     pace,
		log:      log,
	}
}

type stepEvent struct {
	Step    telemetry.Step `json:"step"`
	Log     []string       `json:"log"`
	Address string         `json:"address"`
}

// Simulate runs one burst and streams every step as a server-sent event.
// The burst always runs to completion, even if the client goes away.
func (h *TelemetryHandler) Simulate(c *gin.Context) {
	s := middleware.Session(c)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	steps := s.Simulate(h.pacer, h.pace, func(step telemetry.Step, log []string) {
		c.SSEvent("step", stepEvent{Step: step, Log: log, Address: telemetry.RegisterAddress})
		c.Writer.Flush()
	})

	alerts := 0
	for _, st := range steps {
		if st.Status == telemetry.StatusAlert {
			alerts++
		}
	}
	c.SSEvent("done", gin.H{"readings": s.Feed.Len(), "alerts": alerts})
}

// Submit validates and appends a manual reading. Browsers get the page back,
// API clients get JSON.
func (h *TelemetryHandler) Submit(c *gin.Context) {
	var input struct {
		Temperature *float64 `form:"temperature" json:"temperature" binding:"required"`
		Location    string   `form:"location" json:"location"`
	}
	s := middleware.Session(c)
	asJSON := c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEJSON
	if !asJSON {
		// The outcome is shown next to the form.
		s.Navigate("goto", func(d *deck.Deck) bool { return d.Select(deck.AppSheet) })
	}

	if err := c.ShouldBind(&input); err != nil {
		if asJSON {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			writePage(c, h.renderer, http.StatusBadRequest)
		}
		return
	}

	r, err := s.Submit(*input.Temperature, strings.TrimSpace(input.Location))
	switch {
	case errors.Is(err, telemetry.ErrOutOfRange) && asJSON:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": telemetry.OutOfRangeMessage})
	case errors.Is(err, telemetry.ErrOutOfRange):
		writePage(c, h.renderer, http.StatusUnprocessableEntity)
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record reading"})
	case asJSON:
		c.JSON(http.StatusCreated, r)
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// Table returns every reading of the session, as JSON or with ?format=csv.
func (h *TelemetryHandler) Table(c *gin.Context) {
	rows := middleware.Session(c).Feed.All()

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := telemetry.WriteCSV(&buf, rows); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode table"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="telemetry.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"data":  rows,
	})
}

// Chart returns a Plotly figure by name.
func (h *TelemetryHandler) Chart(c *gin.Context) {
	fig, err := charts.Build(c.Param("name"), h.data, middleware.Session(c).Feed.All())
	if errors.Is(err, charts.ErrUnknownChart) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown chart"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build chart"})
		return
	}
	c.JSON(http.StatusOK, fig)
}

// Export writes a CSV snapshot of the table to object storage.
func (h *TelemetryHandler) Export(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export storage is not configured"})
		return
	}
	s := middleware.Session(c)
	rows := s.Feed.All()

	key, err := h.storage.ExportTelemetry(c.Request.Context(), s.ID, time.Now(), rows)
	if err != nil {
		metrics.Exports.WithLabelValues("failed").Inc()
		h.log.Error("telemetry export failed", zap.String("session", s.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to export telemetry"})
		return
	}
	metrics.Exports.WithLabelValues("ok").Inc()
	h.log.Info("telemetry exported", zap.String("session", s.ID), zap.String("key", key), zap.Int("rows", len(rows)))

	c.JSON(http.StatusCreated, gin.H{"key": key, "rows": len(rows)})
}

// Exports lists the snapshots taken by the session.
func (h *TelemetryHandler) Exports(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export storage is not configured"})
		return
	}
	s := middleware.Session(c)

	keys, err := h.storage.ListExports(c.Request.Context(), s.ID)
	if err != nil {
		h.log.Error("list exports failed", zap.String("session", s.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list exports"})
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"data": keys})
}

// Download streams one snapshot of the session back to the client.
func (h *TelemetryHandler) Download(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export storage is not configured"})
		return
	}
	s := middleware.Session(c)

	file, ok := exportFile(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
		return
	}

	obj, err := h.storage.DownloadExport(c.Request.Context(), s.ID+"/"+file)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.ContentLength, "text/csv; charset=utf-8", obj.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + file + `"`,
	})
}

// DeleteExport removes one snapshot of the session.
func (h *TelemetryHandler) DeleteExport(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export storage is not configured"})
		return
	}
	s := middleware.Session(c)

	file, ok := exportFile(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
		return
	}

	err := h.storage.DeleteExport(c.Request.Context(), s.ID, file)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
		return
	}
	if err != nil {
		h.log.Error("delete export failed", zap.String("session", s.ID), zap.String("file", file), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete export"})
		return
	}
	h.log.Info("telemetry export deleted", zap.String("session", s.ID), zap.String("file", file))
	c.Status(http.StatusNoContent)
}

// exportFile is the snapshot file name of the request, confined to the session's prefix.
func exportFile(c *gin.Context) (string, bool) {
	file := path.Base(c.Param("file"))
	if file == "." || file == "/" || !strings.HasSuffix(file, ".csv") {
		return "", false
	}
	return file, true
}
