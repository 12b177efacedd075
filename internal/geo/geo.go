// Package geo loads province boundaries and prepares them for the map.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// NameProperty is the feature property holding the province name.
const NameProperty = "name"

// DefaultRatio keeps roughly one vertex in ten.
const DefaultRatio = 0.1

var ErrMissingName = errors.New("feature without name property")

// Stats summarizes a simplification pass.
type Stats struct {
	Features       int
	VerticesBefore int
	VerticesAfter  int
}

// rawFeature mirrors a GeoJSON feature loosely so that numeric ids do not
// break decoding.
type rawFeature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

// Decode reads a GeoJSON FeatureCollection.
func Decode(r io.Reader) (*geojson.FeatureCollection, error) {
	var raw rawCollection
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if raw.Type != "FeatureCollection" {
		return nil, fmt.Errorf("unexpected geojson type %q", raw.Type)
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(raw.Features))}
	for i, rf := range raw.Features {
		var g geom.T
		if err := geojson.Unmarshal(rf.Geometry, &g); err != nil {
			return nil, fmt.Errorf("feature %d: decode geometry: %w", i, err)
		}
		f := &geojson.Feature{Geometry: g, Properties: rf.Properties}
		if rf.ID != nil {
			f.ID = fmt.Sprint(rf.ID)
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, nil
}

// Stride returns the sampling step that keeps about ratio*n of n vertices.
// Rings too small to reduce (n*ratio < 1) are kept whole.
func Stride(n int, ratio float64) int {
	if n <= 0 || float64(n)*ratio < 1 {
		return 1
	}
	s := int(math.Floor(float64(n) / (float64(n) * ratio)))
	if s < 1 {
		return 1
	}
	return s
}

// Simplify returns a copy of fc whose polygons keep only their outer ring,
// sampled every Stride vertices, and whose feature ids are the province
// names. The input collection is not modified.
func Simplify(fc *geojson.FeatureCollection, ratio float64) (*geojson.FeatureCollection, Stats, error) {
	var st Stats
	if fc == nil {
		return &geojson.FeatureCollection{}, st, nil
	}
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultRatio
	}

	out := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(fc.Features))}
	for i, f := range fc.Features {
		name, err := featureName(f)
		if err != nil {
			return nil, st, fmt.Errorf("feature %d: %w", i, err)
		}

		g, before, after, err := simplifyGeometry(f.Geometry, ratio)
		if err != nil {
			return nil, st, fmt.Errorf("feature %q: %w", name, err)
		}
		st.Features++
		st.VerticesBefore += before
		st.VerticesAfter += after

		props := make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			props[k] = v
		}
		out.Features = append(out.Features, &geojson.Feature{
			ID:         name,
			Geometry:   g,
			Properties: props,
		})
	}
	return out, st, nil
}

func simplifyGeometry(g geom.T, ratio float64) (geom.T, int, int, error) {
	switch t := g.(type) {
	case *geom.Polygon:
		ring, before := sampleOuterRing(t, ratio)
		p, err := geom.NewPolygon(t.Layout()).SetCoords([][]geom.Coord{ring})
		if err != nil {
			return nil, 0, 0, fmt.Errorf("rebuild polygon: %w", err)
		}
		return p, before, len(ring), nil
	case *geom.MultiPolygon:
		coords := make([][][]geom.Coord, 0, t.NumPolygons())
		var before, after int
		for i := 0; i < t.NumPolygons(); i++ {
			ring, n := sampleOuterRing(t.Polygon(i), ratio)
			before += n
			after += len(ring)
			coords = append(coords, [][]geom.Coord{ring})
		}
		mp, err := geom.NewMultiPolygon(t.Layout()).SetCoords(coords)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("rebuild multipolygon: %w", err)
		}
		return mp, before, after, nil
	case nil:
		return nil, 0, 0, errors.New("missing geometry")
	default:
		return nil, 0, 0, fmt.Errorf("unsupported geometry %T", g)
	}
}

func sampleOuterRing(p *geom.Polygon, ratio float64) ([]geom.Coord, int) {
	if p.NumLinearRings() == 0 {
		return []geom.Coord{}, 0
	}
	coords := p.LinearRing(0).Coords()
	n := len(coords)
	step := Stride(n, ratio)
	out := make([]geom.Coord, 0, n/step+1)
	for i := 0; i < n; i += step {
		out = append(out, coords[i])
	}
	return out, n
}

func featureName(f *geojson.Feature) (string, error) {
	v, ok := f.Properties[NameProperty]
	if !ok {
		return "", ErrMissingName
	}
	name, ok := v.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", ErrMissingName
	}
	return name, nil
}

// Names returns the feature ids of fc in order.
func Names(fc *geojson.FeatureCollection) []string {
	if fc == nil {
		return nil
	}
	out := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, f.ID)
	}
	return out
}

// Encode writes fc as GeoJSON.
func Encode(w io.Writer, fc *geojson.FeatureCollection) error {
	b, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode feature collection: %w", err)
	}
	_, err = w.Write(b)
	return err
}
