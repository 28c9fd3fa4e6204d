// Package web renders the keynote as server-side HTML.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"microcasa/internal/charts"
	"microcasa/internal/deck"
	"microcasa/internal/research"
	"microcasa/internal/session"
	"microcasa/internal/telemetry"
	"microcasa/internal/utils"
)

var funcMap = template.FuncMap{
	"rangeError": func() string { return telemetry.OutOfRangeMessage },
	"percent": func(p float64) string { return fmt.Sprintf("%.1f", p*100) },
	// bbox frames a reading for the OpenStreetMap embed.
	"bbox": func(r telemetry.Reading) string {
		const pad = 0.004
		return fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", r.Longitude-pad, r.Latitude-pad, r.Longitude+pad, r.Latitude+pad)
	},
}

// Renderer turns sessions into pages. It is safe for concurrent use.
type Renderer struct {
	data *research.Data
	tmpl *template.Template
	body map[string]template.HTML
}

func NewRenderer(data *research.Data) (*Renderer, error) {
	t, err := template.New("web").Funcs(funcMap).Parse(tmplLayout + tmplFragments + tmplSlides)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	body := make(map[string]template.HTML, len(data.Slides))
	for _, s := range data.Slides {
		var buf bytes.Buffer
		if err := md.Convert([]byte(s.Body), &buf); err != nil {
			return nil, fmt.Errorf("slide %s markdown: %w", s.Key, err)
		}
		// The research document is trusted content compiled into the binary.
		body[s.Key] = template.HTML(buf.String())
	}

	for _, id := range deck.AllSlides() {
		if t.Lookup("slide-"+id.Key()) == nil {
			return nil, fmt.Errorf("no template for slide %s", id.Key())
		}
	}

	return &Renderer{data: data, tmpl: t, body: body}, nil
}

// ── Page ──────────────────────────────────────────────────────────────────────

type sidebarEntry struct {
	Key    string
	Label  string
	Active bool
}

type pageView struct {
	Title       string
	Footer      string
	Sidebar     []sidebarEntry
	Progress    float64
	HasPrevious bool
	HasNext     bool
	Body        template.HTML
}

// Page writes the full document for the session's active slide.
// The caller holds the session lock.
func (r *Renderer) Page(w io.Writer, s *session.Session) error {
	var body bytes.Buffer
	if err := s.Deck.Render(&body); err != nil {
		return err
	}

	view := pageView{
		Title:       r.data.Title,
		Footer:      r.data.Footer,
		Progress:    s.Deck.Progress(),
		HasPrevious: s.Deck.HasPrevious(),
		HasNext:     s.Deck.HasNext(),
		Body:        template.HTML(body.String()),
	}
	for i, sl := range s.Deck.Slides() {
		view.Sidebar = append(view.Sidebar, sidebarEntry{
			Key:    sl.ID.Key(),
			Label:  sl.ID.Label(),
			Active: i == s.Deck.Active(),
		})
	}
	return r.tmpl.ExecuteTemplate(w, "page", view)
}

// ── Slides ────────────────────────────────────────────────────────────────────

type slideView struct {
	Copy     research.SlideCopy
	Body     template.HTML
	Research *research.Data
}

type chartView struct {
	ID   string
	JSON template.JS
}

type registerView struct {
	Address string
	Step    *telemetry.Step
}

// Slides is a session.SlideFactory.
func (r *Renderer) Slides(s *session.Session) []deck.Slide {
	builders := map[deck.SlideID]func(slideView) (any, error){
		deck.Solution: func(v slideView) (any, error) {
			return struct {
				slideView
				Stages []charts.Stage
			}{v, charts.Pipeline(r.data).Stages()}, nil
		},
		deck.Wokwi: func(v slideView) (any, error) {
			reg := registerView{Address: telemetry.RegisterAddress}
			if n := len(s.LastBurst); n > 0 {
				reg.Step = &s.LastBurst[n-1]
			}
			return struct {
				slideView
				Log      []string
				Register registerView
			}{v, s.BurstLog, reg}, nil
		},
		deck.AppSheet: func(v slideView) (any, error) {
			return r.phoneView(v, s), nil
		},
		deck.Looker: func(v slideView) (any, error) {
			rows := s.Feed.All()
			density, err := chartBlock(charts.NameDensityMap, charts.DensityMap(rows))
			if err != nil {
				return nil, err
			}
			trend, err := chartBlock(charts.NameTemperatureTrend, charts.TemperatureTrend(rows))
			if err != nil {
				return nil, err
			}
			return struct {
				slideView
				Readings   int
				DensityMap chartView
				Trend      chartView
			}{v, len(rows), density, trend}, nil
		},
		deck.Methodology:  r.withChart(charts.NameEntryProfile),
		deck.QuantResults: r.withChart(charts.NameDomainScores),
		deck.DeepDive:     r.withChart(charts.NameItemGains),
		deck.Trajectories: r.withChart(charts.NameTrajectories),
	}

	slides := make([]deck.Slide, 0, deck.Count)
	for _, id := range deck.AllSlides() {
		id := id
		sc := r.data.Slide(id.Key())
		build := builders[id]
		slides = append(slides, deck.Slide{
			ID:    id,
			Title: sc.Title,
			Render: func(w io.Writer) error {
				v := slideView{Copy: sc, Body: r.body[id.Key()], Research: r.data}
				var data any = v
				if build != nil {
					var err error
					if data, err = build(v); err != nil {
						return err
					}
				}
				return r.tmpl.ExecuteTemplate(w, "slide-"+id.Key(), data)
			},
		})
	}
	return slides
}

func (r *Renderer) withChart(name string) func(slideView) (any, error) {
	return func(v slideView) (any, error) {
		fig, err := charts.Build(name, r.data, nil)
		if err != nil {
			return nil, err
		}
		c, err := chartBlock(name, fig)
		if err != nil {
			return nil, err
		}
		return struct {
			slideView
			Chart chartView
		}{v, c}, nil
	}
}

func chartBlock(name string, fig charts.Figure) (chartView, error) {
	raw, err := json.Marshal(fig)
	if err != nil {
		return chartView{}, err
	}
	// json.Marshal escapes <, > and & so the figure is safe inside <script>.
	return chartView{ID: name, JSON: template.JS(raw)}, nil
}

type appSheetView struct {
	slideView
	MobileLocation    string
	MobileTemperature float64
	MobileGeo         string
	FormTemperature   float64
	FormLocation      string
	Submission        *session.Submission
}

// phoneView fills the mock phone with the last accepted submission, or
// the classroom example when there is none.
func (r *Renderer) phoneView(v slideView, s *session.Session) appSheetView {
	view := appSheetView{
		slideView:         v,
		MobileLocation:    "Lab_Sector_7",
		MobileTemperature: 32.5,
		MobileGeo:         "5.3562, 100.3015",
		FormTemperature:   32.5,
		FormLocation:      "Sector 7",
		Submission:        s.LastSubmission,
	}
	if sub := s.LastSubmission; sub != nil {
		view.FormTemperature = sub.Temperature
		view.FormLocation = sub.Location
		if sub.OK() {
			view.MobileLocation = utils.LocationID(sub.Location, "Unlabelled")
			view.MobileTemperature = sub.Temperature
			view.MobileGeo = sub.Reading.Geo()
		}
	}
	return view
}
