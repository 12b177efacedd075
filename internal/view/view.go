// Package view derives the dashboard figures from the loaded dataset and the
// state of the two controls.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"previaje/internal/core"
	plog "previaje/internal/log"
	"previaje/internal/metrics"
)

// GeometryURL is where the browser fetches the simplified provinces.
const GeometryURL = "/api/geometry"

const (
	labelOrigin      = "Provincia de origen"
	labelDestination = "Provincia de destino"
	labelTravelers   = "Viajeros"
	labelPerCapita   = "Viajeros por habitante"

	// maxMarkerPx is the diameter of the largest scatter marker.
	maxMarkerPx = 40
)

// State is the value of the dashboard controls.
type State struct {
	DateIndex int
	Normalize bool
}

// DefaultState selects the first month with absolute counts.
func DefaultState() State {
	return State{}
}

// Data is the read side of the loaded dataset.
type Data interface {
	Dates() core.DateIndex
	Month(month string) []core.Travel
	Populations() []core.Population
}

// Render builds the map and scatter figures for st. It has no side effects.
// An index outside the date range yields empty figures.
func Render(d Data, st State) Figures {
	month, ok := d.Dates().Value(st.DateIndex)
	rows := []core.Travel{}
	if ok {
		rows = d.Month(month)
	}

	palette := PaletteFor(st.Normalize)
	if st.Normalize {
		rows = core.Normalize(rows, d.Populations())
	}

	return Figures{
		Map:       mapFigure(core.SumByDestination(rows), palette, st.Normalize),
		Scatter:   scatterFigure(rows, palette, st.Normalize),
		Month:     month,
		Normalize: st.Normalize,
	}
}

func mapFigure(totals []core.DestinationTotal, p Palette, normalize bool) MapFigure {
	locations := make([]string, len(totals))
	z := make([]float64, len(totals))
	for i, t := range totals {
		locations[i] = t.Destination
		z[i] = t.Travelers
	}

	return MapFigure{
		Data: []ChoroplethTrace{{
			Type:          "choropleth",
			GeoJSON:       GeometryURL,
			FeatureIDKey:  "id",
			Locations:     locations,
			Z:             z,
			ColorScale:    p.Scale(),
			ColorBar:      ColorBar{Title: Title{Text: valueLabel(normalize)}},
			HoverTemplate: "%{location}<br>" + valueFormat("z", normalize) + "<extra></extra>",
		}},
		Layout: Layout{
			Geo: &Geo{
				Scope:     "south america",
				FitBounds: "locations",
				Visible:   false,
			},
			Margin: Margin{L: 0, R: 0, T: 30, B: 0},
		},
	}
}

func scatterFigure(rows []core.Travel, p Palette, normalize bool) ScatterFigure {
	x := make([]string, len(rows))
	y := make([]string, len(rows))
	v := make([]float64, len(rows))
	var peak float64
	for i, r := range rows {
		x[i] = r.Origin
		y[i] = r.Destination
		v[i] = r.Travelers
		peak = math.Max(peak, r.Travelers)
	}

	return ScatterFigure{
		Data: []ScatterTrace{{
			Type: "scatter",
			Mode: "markers",
			X:    x,
			Y:    y,
			Marker: Marker{
				Size:       v,
				Color:      v,
				ColorScale: p.Scale(),
				ShowScale:  true,
				ColorBar:   ColorBar{Title: Title{Text: valueLabel(normalize)}},
				SizeMode:   "area",
				SizeRef:    SizeRef(peak),
				SizeMin:    2,
			},
			HoverTemplate: labelOrigin + ": %{x}<br>" + labelDestination + ": %{y}<br>" +
				valueFormat("marker.color", normalize) + "<extra></extra>",
		}},
		Layout: Layout{
			XAxis:  &Axis{Title: Title{Text: labelOrigin}, Type: "category", Automargin: true},
			YAxis:  &Axis{Title: Title{Text: labelDestination}, Type: "category", Automargin: true},
			Margin: Margin{L: 10, R: 10, T: 30, B: 10},
			Legend: &Legend{ItemSizing: "constant"},
		},
	}
}

// SizeRef scales area-sized markers so that peak maps to maxMarkerPx.
func SizeRef(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	return 2 * peak / (maxMarkerPx * maxMarkerPx)
}

func valueLabel(normalize bool) string {
	if normalize {
		return labelPerCapita
	}
	return labelTravelers
}

func valueFormat(field string, normalize bool) string {
	if normalize {
		return labelPerCapita + ": %{" + field + ":.6f}"
	}
	return labelTravelers + ": %{" + field + ":,.0f}"
}

// Mark labels one slider position.
type Mark struct {
	Value int    `json:"value"`
	Label string `json:"label"`
	Month string `json:"month"`
}

// SliderSpec describes the discrete month slider.
type SliderSpec struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Step  int    `json:"step"`
	Value int    `json:"value"`
	Marks []Mark `json:"marks"`
}

// Slider returns positions 0..N-1 labeled by month. Max is -1 when there
// are no months.
func Slider(d Data) SliderSpec {
	labels := d.Dates().Labels()
	marks := make([]Mark, len(labels))
	for i, m := range labels {
		marks[i] = Mark{Value: i, Label: core.ShortLabel(m), Month: m}
	}
	return SliderSpec{
		Min:   0,
		Max:   len(labels) - 1,
		Step:  1,
		Value: DefaultState().DateIndex,
		Marks: marks,
	}
}

// Controller renders figures for the HTTP layer, rejecting indexes outside
// the slider range and recording each render.
type Controller struct {
	data    Data
	logger  *plog.Logger
	metrics *metrics.Metrics
}

func NewController(d Data, logger *plog.Logger, m *metrics.Metrics) *Controller {
	if logger == nil {
		logger = plog.Default(plog.ComponentView)
	} else {
		logger = logger.WithComponent(plog.ComponentView)
	}
	return &Controller{data: d, logger: logger, metrics: m}
}

// Render validates st and renders it.
func (c *Controller) Render(ctx context.Context, st State) (Figures, error) {
	n := c.data.Dates().Len()
	if st.DateIndex < 0 || st.DateIndex >= n {
		return Figures{}, fmt.Errorf("%w: %d not in [0, %d)", core.ErrDateIndexOutOfRange, st.DateIndex, n)
	}

	start := time.Now()
	figs := Render(c.data, st)
	elapsed := time.Since(start)
	c.metrics.ObserveRender(st.Normalize, elapsed)

	fields := plog.NewFields().
		WithView(st.DateIndex, figs.Month, st.Normalize).
		WithOperation(plog.OpRender)
	fields[plog.FieldRows] = len(figs.Scatter.Data[0].X)
	c.logger.LogFields(ctx, slog.LevelDebug, "Figures rendered", fields)
	return figs, nil
}

// Slider returns the slider for the controller's dataset.
func (c *Controller) Slider() SliderSpec {
	return Slider(c.data)
}
