package view

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"previaje/internal/core"
	"previaje/internal/metrics"
)

type fakeData struct {
	travel []core.Travel
	pops   []core.Population
	order  core.DateOrder
}

func (f fakeData) Dates() core.DateIndex { return core.NewDateIndex(f.travel, f.order) }

func (f fakeData) Month(month string) []core.Travel { return core.SelectMonth(f.travel, month) }

func (f fakeData) Populations() []core.Population {
	return append([]core.Population(nil), f.pops...)
}

func exampleData() fakeData {
	return fakeData{
		travel: []core.Travel{
			{Month: "2021-01", Origin: "A", Destination: "B", Travelers: 10},
			{Month: "2021-01", Origin: "A", Destination: "C", Travelers: 5},
			{Month: "2021-02", Origin: "A", Destination: "B", Travelers: 3},
		},
		pops:  []core.Population{{Province: "B", People: 100}, {Province: "C", People: 50}},
		order: core.OrderFile,
	}
}

func mapValues(f Figures) map[string]float64 {
	tr := f.Map.Data[0]
	out := make(map[string]float64, len(tr.Locations))
	for i, loc := range tr.Locations {
		out[loc] = tr.Z[i]
	}
	return out
}

func TestRenderAggregatesByDestination(t *testing.T) {
	d := exampleData()
	key, ok := d.Dates().Key("2021-01")
	require.True(t, ok)

	figs := Render(d, State{DateIndex: key})

	assert.Equal(t, "2021-01", figs.Month)
	assert.Equal(t, map[string]float64{"B": 10, "C": 5}, mapValues(figs))

	sc := figs.Scatter.Data[0]
	assert.Equal(t, []string{"A", "A"}, sc.X)
	assert.Equal(t, []string{"B", "C"}, sc.Y)
	assert.Equal(t, []float64{10, 5}, sc.Marker.Size)
	assert.Equal(t, sc.Marker.Size, sc.Marker.Color)
}

func TestRenderMapMatchesGroupBy(t *testing.T) {
	d := exampleData()
	for key, month := range d.Dates().Labels() {
		want := map[string]float64{}
		for _, r := range d.travel {
			if r.Month == month {
				want[r.Destination] += r.Travelers
			}
		}
		assert.Equal(t, want, mapValues(Render(d, State{DateIndex: key})), month)
	}
}

func TestRenderNormalize(t *testing.T) {
	d := exampleData()

	abs := Render(d, State{DateIndex: 0})
	norm := Render(d, State{DateIndex: 0, Normalize: true})

	assert.InDelta(t, 10.0/100, mapValues(norm)["B"], 1e-12)
	assert.InDelta(t, 5.0/50, mapValues(norm)["C"], 1e-12)
	assert.Equal(t, Purp.Scale(), norm.Map.Data[0].ColorScale)
	assert.Equal(t, Purp.Scale(), norm.Scatter.Data[0].Marker.ColorScale)
	assert.Equal(t, Teal.Scale(), abs.Map.Data[0].ColorScale)
	assert.Equal(t, "Viajeros por habitante", norm.Map.Data[0].ColorBar.Title.Text)

	// on then off gives back the absolute figures
	again := Render(d, State{DateIndex: 0})
	assert.Equal(t, abs, again)
	assert.Equal(t, 10.0, d.travel[0].Travelers, "render must not modify the table")
}

func TestRenderUnmatchedDestinationStaysAbsolute(t *testing.T) {
	d := exampleData()
	d.travel = append(d.travel, core.Travel{Month: "2021-01", Origin: "A", Destination: "Z", Travelers: 7})

	figs := Render(d, State{DateIndex: 0, Normalize: true})
	assert.Equal(t, 7.0, mapValues(figs)["Z"])
}

func TestRenderEmptySelection(t *testing.T) {
	d := exampleData()
	for _, idx := range []int{-1, 2, 99} {
		figs := Render(d, State{DateIndex: idx, Normalize: idx%2 == 0})
		require.Len(t, figs.Map.Data, 1)
		require.Len(t, figs.Scatter.Data, 1)
		assert.Empty(t, figs.Map.Data[0].Locations)
		assert.Empty(t, figs.Map.Data[0].Z)
		assert.Empty(t, figs.Scatter.Data[0].X)
		assert.Equal(t, "", figs.Month)
		assert.Equal(t, 1.0, figs.Scatter.Data[0].Marker.SizeRef)
	}
}

func TestEmptyFiguresEncodeArrays(t *testing.T) {
	b, err := json.Marshal(Render(exampleData(), State{DateIndex: 42}))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"locations":[]`)
	assert.Contains(t, string(b), `"x":[]`)
}

func TestFigureLayout(t *testing.T) {
	figs := Render(exampleData(), DefaultState())

	tr := figs.Map.Data[0]
	assert.Equal(t, GeometryURL, tr.GeoJSON)
	assert.Equal(t, "id", tr.FeatureIDKey)
	require.NotNil(t, figs.Map.Layout.Geo)
	assert.Equal(t, "south america", figs.Map.Layout.Geo.Scope)
	assert.Equal(t, "locations", figs.Map.Layout.Geo.FitBounds)

	require.NotNil(t, figs.Scatter.Layout.XAxis)
	assert.Equal(t, "Provincia de origen", figs.Scatter.Layout.XAxis.Title.Text)
	assert.Equal(t, "Provincia de destino", figs.Scatter.Layout.YAxis.Title.Text)
	assert.Equal(t, "area", figs.Scatter.Data[0].Marker.SizeMode)
	assert.InDelta(t, 2*10.0/(40*40), figs.Scatter.Data[0].Marker.SizeRef, 1e-12)
}

func TestColorscaleJSON(t *testing.T) {
	b, err := json.Marshal(Teal.Scale())
	require.NoError(t, err)
	assert.True(t, json.Valid(b))
	assert.Contains(t, string(b), `[0,"rgb(209, 238, 234)"]`)
	assert.Contains(t, string(b), `[1,"rgb(42, 86, 116)"]`)

	var back Colorscale
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Teal.Scale(), back)
}

func TestSlider(t *testing.T) {
	d := exampleData()
	d.travel = append(d.travel, core.Travel{Month: "2020-12", Origin: "A", Destination: "B", Travelers: 1})

	s := Slider(d)
	assert.Equal(t, 0, s.Min)
	assert.Equal(t, 2, s.Max)
	assert.Equal(t, 1, s.Step)
	require.Len(t, s.Marks, 3)
	assert.Equal(t, Mark{Value: 2, Label: "2020-12", Month: "2020-12"}, s.Marks[2])

	d.order = core.OrderChronological
	assert.Equal(t, "2020-12", Slider(d).Marks[0].Month)

	empty := Slider(fakeData{order: core.OrderFile})
	assert.Equal(t, -1, empty.Max)
	assert.Empty(t, empty.Marks)
}

func TestControllerRejectsOutOfRange(t *testing.T) {
	c := NewController(exampleData(), nil, metrics.New())

	_, err := c.Render(context.Background(), State{DateIndex: 2})
	require.ErrorIs(t, err, core.ErrDateIndexOutOfRange)
	_, err = c.Render(context.Background(), State{DateIndex: -1})
	require.ErrorIs(t, err, core.ErrDateIndexOutOfRange)

	figs, err := c.Render(context.Background(), State{DateIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"B": 3}, mapValues(figs))
}
