package charts

import (
	"errors"
	"sort"

	"microcasa/internal/research"
	"microcasa/internal/telemetry"
)

// Chart names served by the API and referenced by slide templates.
const (
	NameDomainScores     = "domain-scores"
	NameItemGains        = "item-gains"
	NameTrajectories     = "trajectories"
	NameEntryProfile     = "entry-profile"
	NameDensityMap       = "density-map"
	NameTemperatureTrend = "temperature-trend"
)

var ErrUnknownChart = errors.New("unknown chart")

// Build returns the named figure. Research charts ignore rows; telemetry
// charts ignore the research data.
func Build(name string, d *research.Data, rows []telemetry.Reading) (Figure, error) {
	switch name {
	case NameDomainScores:
		return DomainScores(d), nil
	case NameItemGains:
		return ItemGains(d), nil
	case NameTrajectories:
		return Trajectories(d), nil
	case NameEntryProfile:
		return EntryProfile(d), nil
	case NameDensityMap:
		return DensityMap(rows), nil
	case NameTemperatureTrend:
		return TemperatureTrend(rows), nil
	}
	return Figure{}, ErrUnknownChart
}

// Names lists every chart Build knows.
func Names() []string {
	return []string{
		NameDomainScores,
		NameItemGains,
		NameTrajectories,
		NameEntryProfile,
		NameDensityMap,
		NameTemperatureTrend,
	}
}

// DomainScores is the grouped pre/post bar chart of aggregated domains.
func DomainScores(d *research.Data) Figure {
	names := make([]string, len(d.Domains))
	pre := make([]float64, len(d.Domains))
	post := make([]float64, len(d.Domains))
	for i, dom := range d.Domains {
		names[i] = dom.Name
		pre[i] = dom.Pre
		post[i] = dom.Post
	}

	return Figure{
		Data: []Trace{
			{Type: "bar", Name: "Pre-Test", X: names, Y: pre, Marker: &Marker{Color: "#95a5a6"}},
			{Type: "bar", Name: "Post-Test", X: names, Y: post, Marker: &Marker{Color: "#c0392b"}},
		},
		Layout: Layout{
			Title:    "Mean Likert Scores (1-5)",
			Barmode:  "group",
			Height:   500,
			Template: "plotly_white",
		},
	}
}

// ItemGains is the horizontal bar of per-item knowledge gains, smallest first.
func ItemGains(d *research.Data) Figure {
	items := append([]research.KnowledgeItem(nil), d.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Gain < items[j].Gain })

	labels := make([]string, len(items))
	gains := make([]float64, len(items))
	for i, it := range items {
		labels[i] = it.Item
		gains[i] = it.Gain
	}

	return Figure{
		Data: []Trace{{
			Type:        "bar",
			Orientation: "h",
			X:           gains,
			Y:           labels,
			Text:        gains,
			Marker:      &Marker{Color: gains, Colorscale: "Reds"},
		}},
		Layout: Layout{
			Title:  "Net Gain per Technical Topic (Max +2.00)",
			Height: 500,
			YAxis:  &Axis{CategoryOrder: "total ascending"},
		},
	}
}

// Trajectories draws one Pre-Test -> Post-Test line per student.
func Trajectories(d *research.Data) Figure {
	phases := []string{"Pre-Test", "Post-Test"}
	traces := make([]Trace, 0, len(d.Trajectories))
	for _, tr := range d.Trajectories {
		traces = append(traces, Trace{
			Type:   "scatter",
			Mode:   "lines+markers",
			Name:   tr.Student,
			X:      phases,
			Y:      []float64{tr.Pre, tr.Post},
			Line:   &Line{Width: 3},
			Marker: &Marker{Size: 12},
		})
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Title:      "Individual Trajectories: Intent to Automate Repetitive Tasks (N=8)",
			Template:   "plotly_white",
			Height:     500,
			ShowLegend: boolPtr(true),
			XAxis:      &Axis{Title: "Assessment Phase"},
			YAxis:      &Axis{Title: "Intent Score (1-5)"},
		},
	}
}

// EntryProfile shows baseline competency; coding and dashboard values are
// the complements of the "no experience" percentages.
func EntryProfile(d *research.Data) Figure {
	demo := d.Demographics
	values := []float64{
		float64(demo.ScienceBg),
		float64(100 - demo.ZeroCoding),
		float64(100 - demo.NoDashboard),
	}

	return Figure{
		Data: []Trace{{
			Type:        "bar",
			Orientation: "h",
			X:           values,
			Y:           []string{"Science Bg (Strong)", "Coding Exp (Weak)", "Dashboard Exp (Weak)"},
			Marker:      &Marker{Color: values},
		}},
		Layout: Layout{
			Title: "Entry Profile Competency (%)",
			XAxis: &Axis{Range: []float64{0, 100}},
		},
	}
}

// DensityMap is the temperature-weighted heatmap over the campus.
func DensityMap(rows []telemetry.Reading) Figure {
	lat := make([]float64, len(rows))
	lon := make([]float64, len(rows))
	z := make([]float64, len(rows))
	for i, r := range rows {
		lat[i] = r.Latitude
		lon[i] = r.Longitude
		z[i] = r.Temperature
	}

	return Figure{
		Data: []Trace{{
			Type:       "densitymapbox",
			Lat:        lat,
			Lon:        lon,
			Z:          z,
			Radius:     20,
			Colorscale: "Viridis",
		}},
		Layout: Layout{
			Title:  "Real-Time Sensor Density Heatmap",
			Height: 500,
			Mapbox: &Mapbox{
				Style:  "carto-positron",
				Zoom:   14,
				Center: LatLon{Lat: telemetry.ReferenceLat, Lon: telemetry.ReferenceLon},
			},
			Margin: &Margin{T: 40},
		},
	}
}

// TemperatureTrend plots temperature in table order with the critical line.
func TemperatureTrend(rows []telemetry.Reading) Figure {
	x := make([]int, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = i
		y[i] = r.Temperature
	}

	return Figure{
		Data: []Trace{{
			Type: "scatter",
			Mode: "lines+markers",
			Name: "temp",
			X:    x,
			Y:    y,
		}},
		Layout: Layout{
			Title: "Incoming Data Stream",
			Shapes: []Shape{{
				Type: "line",
				XRef: "paper",
				X0:   0,
				X1:   1,
				Y0:   telemetry.CriticalThreshold,
				Y1:   telemetry.CriticalThreshold,
				Line: Line{Color: "red", Dash: "dash"},
			}},
			Annotations: []Annotation{{
				Text:    "Critical Threshold",
				XRef:    "paper",
				X:       1,
				Y:       telemetry.CriticalThreshold,
				XAnchor: "right",
				YAnchor: "bottom",
			}},
		},
	}
}
