package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"microcasa/internal/charts"
	"microcasa/internal/deck"
	"microcasa/internal/research"
	"microcasa/internal/session"
	"microcasa/internal/telemetry"
	"microcasa/internal/utils"
)

// recentRows is how many readings the Looker slide lists.
const recentRows = 8

// Markdown renders slides as markdown for the terminal presenter.
type Markdown struct {
	Data *research.Data
}

// Slides is a session.SlideFactory.
func (md Markdown) Slides(s *session.Session) []deck.Slide {
	extras := map[deck.SlideID]func(w io.Writer) error{
		deck.Hero:         md.hero,
		deck.Solution:     md.pipeline,
		deck.Wokwi:        func(w io.Writer) error { return serialMonitor(w, s) },
		deck.AppSheet:     func(w io.Writer) error { return phone(w, s) },
		deck.Looker:       func(w io.Writer) error { return dashboard(w, s.Feed.All()) },
		deck.Methodology:  md.demographics,
		deck.QuantResults: md.domains,
		deck.DeepDive:     md.items,
		deck.Trajectories: md.trajectories,
		deck.Qualitative:  md.quotes,
	}

	slides := make([]deck.Slide, 0, deck.Count)
	for _, id := range deck.AllSlides() {
		id := id
		sc := md.Data.Slide(id.Key())
		extra := extras[id]
		slides = append(slides, deck.Slide{
			ID:    id,
			Title: sc.Title,
			Render: func(w io.Writer) error {
				title := sc.Title
				if id == deck.Hero {
					title = md.Data.Headline
				}
				fmt.Fprintf(w, "# %s\n\n", title)
				if sc.Subtitle != "" {
					fmt.Fprintf(w, "_%s_\n\n", sc.Subtitle)
				}
				if _, err := io.WriteString(w, strings.TrimSpace(sc.Body)+"\n\n"); err != nil {
					return err
				}
				if extra == nil {
					return nil
				}
				return extra(w)
			},
		})
	}
	return slides
}

func (md Markdown) hero(w io.Writer) error {
	_, err := fmt.Fprintf(w, "**PRESENTERS:** %s  \n_%s_\n\n> Press **b** to begin the keynote.\n",
		md.Data.Presenters, md.Data.Affiliation)
	return err
}

func (md Markdown) pipeline(w io.Writer) error {
	for _, st := range charts.Pipeline(md.Data).Stages() {
		fmt.Fprintf(w, "- **%s** %s\n", st.Node.Label, st.Node.Caption)
		if st.Out != "" {
			fmt.Fprintf(w, "  - ↓ _%s_\n", st.Out)
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func serialMonitor(w io.Writer, s *session.Session) error {
	io.WriteString(w, "## Virtual Serial Monitor\n\n```\n")
	if len(s.BurstLog) == 0 {
		io.WriteString(w, "Waiting for upload...\n")
	}
	for _, line := range s.BurstLog {
		io.WriteString(w, line+"\n")
	}
	io.WriteString(w, "```\n\n## Live Register View\n\n```\n")

	fmt.Fprintf(w, "REGISTER MAP:\nAddress: %s\nPayload: JSON\n----------------\n", telemetry.RegisterAddress)
	if n := len(s.LastBurst); n > 0 {
		r := s.LastBurst[n-1].Reading
		fmt.Fprintf(w, "Temp: %.1f\nHumid: %.1f\nGeo: %s\n", r.Temperature, r.Humidity, r.Geo())
	} else {
		io.WriteString(w, "System Offline\n")
	}
	_, err := io.WriteString(w, "```\n\n> Press **s** to compile & upload to the simulator.\n")
	return err
}

func phone(w io.Writer, s *session.Session) error {
	loc, temp, geo := "Lab_Sector_7", 32.5, "5.3562, 100.3015"
	sub := s.LastSubmission
	if sub.OK() {
		loc, temp, geo = utils.LocationID(sub.Location, "Unlabelled"), sub.Temperature, sub.Reading.Geo()
	}
	fmt.Fprintf(w, "## Field Sensor V1\n\n| Field | Value |\n|---|---|\n| LOCATION ID | %s |\n| SENSOR READING (°C) | %.1f |\n| GEOSPATIAL TAG | %s |\n\n", loc, temp, geo)

	switch {
	case sub == nil:
	case sub.OK():
		fmt.Fprintf(w, "**Data synced! GPS Tagged:** %s\n\n", sub.Reading.Geo())
	default:
		fmt.Fprintf(w, "**%s** (%.1f °C)\n\n", telemetry.OutOfRangeMessage, sub.Temperature)
	}
	_, err := io.WriteString(w, "> Press **f** to submit 32.5 °C, **x** to submit 51 °C.\n")
	return err
}

func dashboard(w io.Writer, rows []telemetry.Reading) error {
	alerts, peak := 0, 0.0
	for i, r := range rows {
		if r.Temperature >= telemetry.AlertThreshold {
			alerts++
		}
		if i == 0 || r.Temperature > peak {
			peak = r.Temperature
		}
	}
	fmt.Fprintf(w, "## Risk Dashboard\n\n**%d readings**, %d at or above %.0f °C, peak %.1f °C.\n\n",
		len(rows), alerts, telemetry.AlertThreshold, peak)

	start := len(rows) - recentRows
	if start < 0 {
		start = 0
	}
	io.WriteString(w, "| # | Temp °C | Humidity % | Geo | Source |\n|---|---|---|---|---|\n")
	for _, r := range rows[start:] {
		fmt.Fprintf(w, "| %d | %.1f | %.1f | %s | %s |\n", r.Seq, r.Temperature, r.Humidity, r.Geo(), r.Origin)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (md Markdown) demographics(w io.Writer) error {
	d := md.Data.Demographics
	_, err := fmt.Fprintf(w, "| Baseline | %% |\n|---|---|\n| Science background | %d |\n| Zero coding experience | %d |\n| No low-code experience | %d |\n| Never built a dashboard | %d |\n\n",
		d.ScienceBg, d.ZeroCoding, d.NoLowCode, d.NoDashboard)
	return err
}

func (md Markdown) domains(w io.Writer) error {
	io.WriteString(w, "| Domain | Pre | Post | Gain | d |\n|---|---|---|---|---|\n")
	for _, dom := range md.Data.Domains {
		fmt.Fprintf(w, "| %s | %.2f | %.2f | %+.2f | %.2f |\n", dom.Name, dom.Pre, dom.Post, dom.Gain, dom.EffectSize)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (md Markdown) items(w io.Writer) error {
	items := append([]research.KnowledgeItem(nil), md.Data.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Gain > items[j].Gain })

	io.WriteString(w, "| Item | Pre | Post | Gain |\n|---|---|---|---|\n")
	for _, it := range items {
		fmt.Fprintf(w, "| %s | %.2f | %.2f | %+.2f |\n", it.Item, it.Pre, it.Post, it.Gain)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (md Markdown) trajectories(w io.Writer) error {
	io.WriteString(w, "| Student | Pre-Test | Post-Test |\n|---|---|---|\n")
	for _, tr := range md.Data.Trajectories {
		fmt.Fprintf(w, "| %s | %.1f | %.1f |\n", tr.Student, tr.Pre, tr.Post)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (md Markdown) quotes(w io.Writer) error {
	for _, q := range md.Data.Quotes {
		fmt.Fprintf(w, "> **THEME: %s**\n>\n> _\"%s\"_\n\n", q.Theme, q.Text)
	}
	return nil
}
