package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microcasa/internal/config"
	"microcasa/internal/deck"
	"microcasa/internal/research"
	"microcasa/internal/session"
	"microcasa/internal/storage"
	"microcasa/internal/telemetry"
	"microcasa/internal/web"
)

const cookieName = "microcasa_session"

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T, withStorage bool) (*testClient, *session.Manager) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Session.Secret = "test-secret"
	cfg.Session.CookieName = cookieName
	cfg.Session.TTLHours = 1
	cfg.Telemetry.BurstPaceMS = 800

	data := research.Default()
	renderer, err := web.NewRenderer(data)
	require.NoError(t, err)

	sessions := session.NewManager(session.Options{
		Slides:      renderer.Slides,
		FeedOptions: []telemetry.Option{telemetry.WithSource(rand.New(rand.NewSource(1)))},
	})

	deps := Deps{
		Sessions: sessions,
		Renderer: renderer,
		Research: data,
		Pacer:    telemetry.NoPacer{},
	}
	if withStorage {
		deps.Storage = storage.NewWithProvider(storage.NewLocalProvider(t.TempDir()), "telemetry")
	}

	return &testClient{t: t, handler: New(cfg, deps).Handler()}, sessions
}

// do sends a request with the current session cookie and keeps any new one.
func (tc *testClient) do(method, path string, form url.Values, accept string) *httptest.ResponseRecorder {
	tc.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}

	rec := httptest.NewRecorder()
	tc.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			tc.cookie = c
		}
	}
	return rec
}

func (tc *testClient) deckState() map[string]any {
	tc.t.Helper()
	rec := tc.do(http.MethodGet, "/api/v1/deck", nil, "")
	require.Equal(tc.t, http.StatusOK, rec.Code)

	var state map[string]any
	require.NoError(tc.t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func (tc *testClient) tableCount() int {
	tc.t.Helper()
	rec := tc.do(http.MethodGet, "/api/v1/telemetry", nil, "")
	require.Equal(tc.t, http.StatusOK, rec.Code)

	var body struct {
		Count int                 `json:"count"`
		Data  []telemetry.Reading `json:"data"`
	}
	require.NoError(tc.t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(tc.t, body.Data, body.Count)
	return body.Count
}

func TestHealth(t *testing.T) {
	tc, _ := newTestServer(t, false)

	rec := tc.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Nil(t, tc.cookie, "health checks do not start sessions")
}

func TestPageStartsSession(t *testing.T) {
	tc, sessions := newTestServer(t, false)

	rec := tc.do(http.MethodGet, "/", nil, "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "BEGIN KEYNOTE PRESENTATION")
	require.NotNil(t, tc.cookie)
	assert.True(t, tc.cookie.HttpOnly)

	tc.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, 1, sessions.Len(), "the cookie resumes the same session")
}

func TestNavigation(t *testing.T) {
	tc, _ := newTestServer(t, false)

	rec := tc.do(http.MethodPost, "/nav/previous", nil, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.EqualValues(t, 0, tc.deckState()["index"])

	tc.do(http.MethodPost, "/nav/begin", nil, "")
	assert.EqualValues(t, 1, tc.deckState()["index"])

	tc.do(http.MethodPost, "/nav/next", nil, "")
	state := tc.deckState()
	assert.EqualValues(t, 2, state["index"])
	assert.Equal(t, "solution", state["active"])
	assert.EqualValues(t, deck.Count, state["count"])
	assert.InDelta(t, 3.0/13.0, state["progress"], 1e-9)

	tc.do(http.MethodPost, "/nav/goto/conclusion", nil, "")
	state = tc.deckState()
	assert.EqualValues(t, int(deck.Conclusion), state["index"])
	assert.Equal(t, false, state["has_next"])
	assert.Equal(t, true, state["has_previous"])

	tc.do(http.MethodPost, "/nav/next", nil, "")
	assert.EqualValues(t, int(deck.Conclusion), tc.deckState()["index"])
}

func TestSidebarSelectionByKey(t *testing.T) {
	tc, _ := newTestServer(t, false)

	for _, id := range deck.AllSlides() {
		rec := tc.do(http.MethodPost, "/nav/goto/"+id.Key(), nil, "")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.EqualValues(t, int(id), tc.deckState()["index"], id.Key())
	}

	rec := tc.do(http.MethodPost, "/nav/goto/appendix", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidCookieStartsNewSession(t *testing.T) {
	tc, sessions := newTestServer(t, false)

	tc.do(http.MethodPost, "/nav/begin", nil, "")
	require.NotNil(t, tc.cookie)

	tc.cookie = &http.Cookie{Name: cookieName, Value: tc.cookie.Value + "x"}
	assert.EqualValues(t, 0, tc.deckState()["index"])
	assert.Equal(t, 2, sessions.Len())
}

func TestSubmitOutOfRange(t *testing.T) {
	tc, _ := newTestServer(t, false)
	require.Equal(t, telemetry.SeedSize, tc.tableCount())

	rec := tc.do(http.MethodPost, "/submit", url.Values{"temperature": {"51"}, "location": {"Ward 3"}}, "text/html")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), telemetry.OutOfRangeMessage)
	assert.Equal(t, "appsheet", tc.deckState()["active"])

	rec = tc.do(http.MethodPost, "/submit", url.Values{"temperature": {"51"}}, "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"`+telemetry.OutOfRangeMessage+`"}`, rec.Body.String())

	assert.Equal(t, telemetry.SeedSize, tc.tableCount())
}

func TestSubmitAccepted(t *testing.T) {
	tc, _ := newTestServer(t, false)

	rec := tc.do(http.MethodPost, "/submit", url.Values{"temperature": {"50"}, "location": {"Sector 9"}}, "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)

	var r telemetry.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, 50.0, r.Temperature)
	assert.Equal(t, telemetry.FormHumidity, r.Humidity)
	assert.Equal(t, "Sector 9", r.Location)

	rec = tc.do(http.MethodPost, "/submit", url.Values{"temperature": {"32.5"}, "location": {"Sector 7"}}, "text/html")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Equal(t, telemetry.SeedSize+2, tc.tableCount())

	rec = tc.do(http.MethodPost, "/submit", url.Values{"location": {"Sector 7"}}, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRejectsNonFinite(t *testing.T) {
	tc, _ := newTestServer(t, false)

	for _, v := range []string{"NaN", "+Inf", "-Inf"} {
		rec := tc.do(http.MethodPost, "/submit", url.Values{"temperature": {v}}, "application/json")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, v)
	}

	assert.Equal(t, telemetry.SeedSize, tc.tableCount())
	rec := tc.do(http.MethodGet, "/api/v1/charts/temperature-trend", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, json.Valid(rec.Body.Bytes()))
}

func TestSubmitMissingTemperatureFromBrowser(t *testing.T) {
	tc, _ := newTestServer(t, false)

	rec := tc.do(http.MethodPost, "/submit", url.Values{"temperature": {"warm"}}, "text/html")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `name="temperature"`)
	assert.Equal(t, "appsheet", tc.deckState()["active"])
	assert.Equal(t, telemetry.SeedSize, tc.tableCount())
}

func TestSimulateStreamsSteps(t *testing.T) {
	tc, _ := newTestServer(t, false)

	rec := tc.do(http.MethodPost, "/simulate", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	body := rec.Body.String()
	assert.Equal(t, telemetry.BurstSize, strings.Count(body, "event:step"))
	assert.Equal(t, 1, strings.Count(body, "event:done"))
	assert.Contains(t, body, `"address":"0x3F"`)
	assert.Contains(t, body, telemetry.BootLog[0])

	assert.Equal(t, telemetry.SeedSize+telemetry.BurstSize, tc.tableCount())

	tc.do(http.MethodPost, "/nav/goto/wokwi", nil, "")
	page := tc.do(http.MethodGet, "/", nil, "")
	assert.Contains(t, page.Body.String(), "Address: 0x3F")
	assert.NotContains(t, page.Body.String(), "System Offline")
}

func TestCharts(t *testing.T) {
	tc, _ := newTestServer(t, false)

	rec := tc.do(http.MethodGet, "/api/v1/charts/density-map", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "densitymapbox")

	rec = tc.do(http.MethodGet, "/api/v1/charts/pie", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTableAsCSV(t *testing.T) {
	tc, _ := newTestServer(t, false)

	rec := tc.do(http.MethodGet, "/api/v1/telemetry?format=csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, telemetry.SeedSize+1)
	assert.True(t, strings.HasPrefix(lines[0], "seq,"))
}

func TestExport(t *testing.T) {
	tc, _ := newTestServer(t, true)
	tc.do(http.MethodPost, "/simulate", nil, "")

	rec := tc.do(http.MethodPost, "/api/v1/telemetry/export", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var out struct {
		Key  string `json:"key"`
		Rows int    `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, telemetry.SeedSize+telemetry.BurstSize, out.Rows)

	rec = tc.do(http.MethodGet, "/api/v1/telemetry/exports", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, []string{out.Key}, list.Data)

	file := out.Key[strings.LastIndex(out.Key, "/")+1:]
	rec = tc.do(http.MethodGet, "/api/v1/telemetry/exports/"+file, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, out.Rows+1)

	rec = tc.do(http.MethodGet, "/api/v1/telemetry/exports/missing.csv", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Another session cannot remove the snapshot.
	other := &testClient{t: t, handler: tc.handler}
	rec = other.do(http.MethodDelete, "/api/v1/telemetry/exports/"+file, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = tc.do(http.MethodDelete, "/api/v1/telemetry/exports/"+file, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = tc.do(http.MethodGet, "/api/v1/telemetry/exports", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Data)

	rec = tc.do(http.MethodDelete, "/api/v1/telemetry/exports/"+file, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportWithoutStorage(t *testing.T) {
	tc, _ := newTestServer(t, false)

	rec := tc.do(http.MethodPost, "/api/v1/telemetry/export", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
