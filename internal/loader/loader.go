// Package loader reads the dashboard inputs once at startup and shapes them
// into an immutable Dataset.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/sync/errgroup"

	"previaje/internal/core"
	"previaje/internal/dataset"
	"previaje/internal/geo"
	plog "previaje/internal/log"
	"previaje/internal/metrics"
)

// Table names used in logs and metrics.
const (
	TablePopulations   = "populations"
	TableTravel        = "travel"
	TableBeneficiaries = "beneficiaries"
	TableGeometry      = "geometry"
)

// Options controls how the inputs are shaped.
type Options struct {
	Order         core.DateOrder
	SimplifyRatio float64
	// StrictJoins turns a travel destination without population record or
	// geometry feature into an error wrapping dataset.ErrJoinMismatch.
	StrictJoins bool

	Logger  *plog.Logger
	Metrics *metrics.Metrics
}

// DefaultOptions returns chronological order, 10% geometry and strict joins.
func DefaultOptions() Options {
	return Options{
		Order:         core.OrderChronological,
		SimplifyRatio: geo.DefaultRatio,
		StrictJoins:   true,
	}
}

func (o Options) logger() *plog.Logger {
	if o.Logger == nil {
		return plog.Default(plog.ComponentLoader)
	}
	return o.Logger.WithComponent(plog.ComponentLoader)
}

// Load reads the three tables and the geometry concurrently, then builds the
// Dataset. Any read error cancels the remaining reads.
func Load(ctx context.Context, tables dataset.Tables, geometry dataset.GeometryReader, opts Options) (*Dataset, error) {
	logger := opts.logger()
	start := time.Now()

	var (
		pops   []core.Population
		travel []core.Travel
		rows   []core.BeneficiaryRow
		fc     *geojson.FeatureCollection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.Now()
		var err error
		if pops, err = tables.Populations(gctx); err != nil {
			return fmt.Errorf("load %s: %w", TablePopulations, err)
		}
		logTable(gctx, logger, opts.Metrics, TablePopulations, len(pops), t)
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		var err error
		if travel, err = tables.Travel(gctx); err != nil {
			return fmt.Errorf("load %s: %w", TableTravel, err)
		}
		logTable(gctx, logger, opts.Metrics, TableTravel, len(travel), t)
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		var err error
		if rows, err = tables.Beneficiaries(gctx); err != nil {
			return fmt.Errorf("load %s: %w", TableBeneficiaries, err)
		}
		logTable(gctx, logger, opts.Metrics, TableBeneficiaries, len(rows), t)
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		var err error
		if fc, err = readGeometry(gctx, geometry); err != nil {
			return fmt.Errorf("load %s: %w", TableGeometry, err)
		}
		logTable(gctx, logger, opts.Metrics, TableGeometry, len(fc.Features), t)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds, err := New(pops, travel, rows, fc, opts)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	opts.Metrics.ObserveLoad(elapsed)
	logger.InfoContext(ctx, "Dataset loaded",
		plog.FieldOperation, plog.OpLoad,
		plog.FieldMonths, ds.dates.Len(),
		plog.FieldFeatures, len(ds.geometry.Features),
		"beneficiary_groups", len(ds.beneficiaries),
		plog.FieldDuration, elapsed.Milliseconds())
	return ds, nil
}

func readGeometry(ctx context.Context, r dataset.GeometryReader) (*geojson.FeatureCollection, error) {
	rc, err := r.Geometry(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return geo.Decode(rc)
}

func logTable(ctx context.Context, logger *plog.Logger, m *metrics.Metrics, table string, rows int, start time.Time) {
	m.SetTableRows(table, rows)
	fields := plog.NewFields().
		WithTable(table, rows).
		WithOperation(plog.OpLoad)
	fields[plog.FieldDuration] = time.Since(start).Milliseconds()
	logger.LogFields(ctx, slog.LevelInfo, "Table loaded", fields)
}

// New shapes already-read inputs into a Dataset: the geometry is simplified
// and keyed by province name, months are indexed, beneficiaries are summed
// over editions and province names are checked across tables.
func New(pops []core.Population, travel []core.Travel, rows []core.BeneficiaryRow, fc *geojson.FeatureCollection, opts Options) (*Dataset, error) {
	logger := opts.logger()
	order := opts.Order
	if order == "" {
		order = core.OrderChronological
	}
	if !order.IsValid() {
		return nil, fmt.Errorf("invalid date order %q", order)
	}

	simplified, st, err := geo.Simplify(fc, opts.SimplifyRatio)
	if err != nil {
		return nil, fmt.Errorf("simplify geometry: %w", err)
	}
	logger.Debug("Geometry simplified",
		plog.FieldFeatures, st.Features,
		"vertices_before", st.VerticesBefore,
		"vertices_after", st.VerticesAfter)

	var buf bytes.Buffer
	if err := geo.Encode(&buf, simplified); err != nil {
		return nil, err
	}

	report := dataset.CheckJoins(pops, travel, geo.Names(simplified))
	if !report.OK() {
		if opts.StrictJoins {
			return nil, report.Err()
		}
		for _, m := range report.MissingPopulation {
			logger.Warn("Destination has no population record, normalized values stay absolute",
				"province", m.Name, "suggestion", m.Suggestion)
		}
		for _, m := range report.MissingGeometry {
			logger.Warn("Destination has no geometry feature, it will not appear on the map",
				"province", m.Name, "suggestion", m.Suggestion)
		}
	}

	return &Dataset{
		populations:   append([]core.Population(nil), pops...),
		travel:        append([]core.Travel(nil), travel...),
		beneficiaries: core.AggregateBeneficiaries(rows),
		dates:         core.NewDateIndex(travel, order),
		geometry:      simplified,
		geometryJSON:  buf.Bytes(),
		joins:         report,
		stats:         st,
	}, nil
}

// Dataset holds the load-once tables. It is safe for concurrent readers and
// never changes after construction; accessors return copies.
type Dataset struct {
	populations   []core.Population
	travel        []core.Travel
	beneficiaries []core.Beneficiary
	dates         core.DateIndex
	geometry      *geojson.FeatureCollection
	geometryJSON  []byte
	joins         dataset.JoinReport
	stats         geo.Stats
}

func (d *Dataset) Populations() []core.Population {
	return append([]core.Population(nil), d.populations...)
}

func (d *Dataset) Travel() []core.Travel {
	return append([]core.Travel(nil), d.travel...)
}

// Beneficiaries returns the aggregated table sorted by province, age bracket
// and gender.
func (d *Dataset) Beneficiaries() []core.Beneficiary {
	return append([]core.Beneficiary(nil), d.beneficiaries...)
}

func (d *Dataset) Dates() core.DateIndex {
	return d.dates
}

// Month returns the travel rows of month.
func (d *Dataset) Month(month string) []core.Travel {
	return core.SelectMonth(d.travel, month)
}

// GeometryNames returns the feature ids of the simplified geometry.
func (d *Dataset) GeometryNames() []string {
	return geo.Names(d.geometry)
}

// WriteGeometry writes the simplified geometry as GeoJSON.
func (d *Dataset) WriteGeometry(w io.Writer) (int, error) {
	return w.Write(d.geometryJSON)
}

// GeometrySize is the length of the encoded geometry in bytes.
func (d *Dataset) GeometrySize() int {
	return len(d.geometryJSON)
}

// Joins reports destinations missing from the population table or geometry.
// It is empty when the dataset was loaded with strict joins.
func (d *Dataset) Joins() dataset.JoinReport {
	return d.joins
}

func (d *Dataset) SimplifyStats() geo.Stats {
	return d.stats
}
