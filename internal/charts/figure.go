// Package charts builds Plotly figure specifications for the deck's
// visualisations. Figures are plain data; the browser draws them.
package charts

// Figure is a Plotly figure: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type        string    `json:"type"`
	Name        string    `json:"name,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	Orientation string    `json:"orientation,omitempty"`
	X           any       `json:"x,omitempty"`
	Y           any       `json:"y,omitempty"`
	Text        any       `json:"text,omitempty"`
	Lat         []float64 `json:"lat,omitempty"`
	Lon         []float64 `json:"lon,omitempty"`
	Z           []float64 `json:"z,omitempty"`
	Radius      int       `json:"radius,omitempty"`
	Colorscale  string    `json:"colorscale,omitempty"`
	Marker      *Marker   `json:"marker,omitempty"`
	Line        *Line     `json:"line,omitempty"`
}

type Marker struct {
	Color      any    `json:"color,omitempty"`
	Colorscale string `json:"colorscale,omitempty"`
	Size       int    `json:"size,omitempty"`
}

type Line struct {
	Color string `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
	Dash  string `json:"dash,omitempty"`
}

type Layout struct {
	Title       string       `json:"title,omitempty"`
	Barmode     string       `json:"barmode,omitempty"`
	Height      int          `json:"height,omitempty"`
	Template    string       `json:"template,omitempty"`
	ShowLegend  *bool        `json:"showlegend,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	Mapbox      *Mapbox      `json:"mapbox,omitempty"`
	Margin      *Margin      `json:"margin,omitempty"`
	Shapes      []Shape      `json:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

type Axis struct {
	Title         string    `json:"title,omitempty"`
	Range         []float64 `json:"range,omitempty"`
	CategoryOrder string    `json:"categoryorder,omitempty"`
}

type Mapbox struct {
	Style  string `json:"style"`
	Zoom   int    `json:"zoom"`
	Center LatLon `json:"center"`
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Margin struct {
	R int `json:"r"`
	T int `json:"t"`
	L int `json:"l"`
	B int `json:"b"`
}

// Shape is a layout shape; only horizontal reference lines are used.
type Shape struct {
	Type string  `json:"type"`
	XRef string  `json:"xref"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
	Y0   float64 `json:"y0"`
	Y1   float64 `json:"y1"`
	Line Line    `json:"line"`
}

type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ShowArrow bool    `json:"showarrow"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
}

func boolPtr(b bool) *bool { return &b }
