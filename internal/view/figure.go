package view

import (
	"encoding/json"
	"fmt"
)

// Plotly figure types. Only the attributes the dashboard sets are modeled;
// field names follow the plotly.js schema so the browser can pass the
// decoded JSON straight to Plotly.react.

type (
	Figures struct {
		Map     MapFigure     `json:"map"`
		Scatter ScatterFigure `json:"scatter"`
		// Month is the selected month, empty when the index is out of range.
		Month     string `json:"month"`
		Normalize bool   `json:"normalize"`
	}

	MapFigure struct {
		Data   []ChoroplethTrace `json:"data"`
		Layout Layout            `json:"layout"`
	}

	ScatterFigure struct {
		Data   []ScatterTrace `json:"data"`
		Layout Layout         `json:"layout"`
	}

	ChoroplethTrace struct {
		Type string `json:"type"`
		// GeoJSON is the URL the browser fetches the province boundaries from.
		GeoJSON       string     `json:"geojson"`
		FeatureIDKey  string     `json:"featureidkey"`
		Locations     []string   `json:"locations"`
		Z             []float64  `json:"z"`
		ColorScale    Colorscale `json:"colorscale"`
		ColorBar      ColorBar   `json:"colorbar"`
		HoverTemplate string     `json:"hovertemplate"`
	}

	ScatterTrace struct {
		Type          string   `json:"type"`
		Mode          string   `json:"mode"`
		X             []string `json:"x"`
		Y             []string `json:"y"`
		Marker        Marker   `json:"marker"`
		HoverTemplate string   `json:"hovertemplate"`
	}

	Marker struct {
		Size       []float64  `json:"size"`
		Color      []float64  `json:"color"`
		ColorScale Colorscale `json:"colorscale"`
		ShowScale  bool       `json:"showscale"`
		ColorBar   ColorBar   `json:"colorbar"`
		SizeMode   string     `json:"sizemode"`
		SizeRef    float64    `json:"sizeref"`
		SizeMin    float64    `json:"sizemin"`
	}

	ColorBar struct {
		Title Title `json:"title"`
	}

	Title struct {
		Text string `json:"text"`
	}

	Layout struct {
		Geo    *Geo    `json:"geo,omitempty"`
		XAxis  *Axis   `json:"xaxis,omitempty"`
		YAxis  *Axis   `json:"yaxis,omitempty"`
		Margin Margin  `json:"margin"`
		Legend *Legend `json:"legend,omitempty"`
	}

	Geo struct {
		Scope     string `json:"scope"`
		FitBounds string `json:"fitbounds"`
		Visible   bool   `json:"visible"`
	}

	Axis struct {
		Title      Title  `json:"title"`
		Type       string `json:"type"`
		Automargin bool   `json:"automargin"`
	}

	Margin struct {
		L int `json:"l"`
		R int `json:"r"`
		T int `json:"t"`
		B int `json:"b"`
	}

	Legend struct {
		ItemSizing string `json:"itemsizing"`
	}
)

// ColorStop is one [position, color] pair of a Plotly colorscale.
type ColorStop struct {
	Pos   float64
	Color string
}

func (s ColorStop) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{s.Pos, s.Color})
}

func (s *ColorStop) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("color stop: %w", err)
	}
	if err := json.Unmarshal(raw[0], &s.Pos); err != nil {
		return fmt.Errorf("color stop position: %w", err)
	}
	if err := json.Unmarshal(raw[1], &s.Color); err != nil {
		return fmt.Errorf("color stop color: %w", err)
	}
	return nil
}

type Colorscale []ColorStop
