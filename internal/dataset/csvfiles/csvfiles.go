// Package csvfiles reads the dashboard tables from comma separated files.
package csvfiles

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"previaje/internal/core"
	"previaje/internal/dataset"
)

// Paths locates each input relative to the source root.
type Paths struct {
	Populations   string
	Geometry      string
	Travel        string
	Beneficiaries string
}

// DefaultPaths is the layout of the published data bundle.
func DefaultPaths() Paths {
	return Paths{
		Populations:   "Auxiliary/poblaciones.csv",
		Geometry:      "Auxiliary/arg_provincias.geojson",
		Travel:        "viajes_origen_destino_mes.csv",
		Beneficiaries: "personas_beneficiarias.csv",
	}
}

type Source struct {
	fsys  fs.FS
	paths Paths
	comma rune
}

var _ dataset.Source = (*Source)(nil)

// New reads inputs from fsys.
func New(fsys fs.FS, paths Paths) *Source {
	return &Source{fsys: fsys, paths: paths, comma: ','}
}

// NewFromDir reads inputs below dir.
func NewFromDir(dir string, paths Paths) *Source {
	return New(os.DirFS(dir), paths)
}

func (s *Source) Populations(_ context.Context) ([]core.Population, error) {
	values, err := s.readAll(s.paths.Populations)
	if err != nil {
		return nil, err
	}
	return dataset.ParsePopulations(values)
}

func (s *Source) Travel(_ context.Context) ([]core.Travel, error) {
	values, err := s.readAll(s.paths.Travel)
	if err != nil {
		return nil, err
	}
	return dataset.ParseTravel(values)
}

func (s *Source) Beneficiaries(_ context.Context) ([]core.BeneficiaryRow, error) {
	values, err := s.readAll(s.paths.Beneficiaries)
	if err != nil {
		return nil, err
	}
	return dataset.ParseBeneficiaries(values)
}

func (s *Source) Geometry(_ context.Context) (io.ReadCloser, error) {
	f, err := s.fsys.Open(path.Clean(s.paths.Geometry))
	if err != nil {
		return nil, fmt.Errorf("open geometry %s: %w", s.paths.Geometry, err)
	}
	return f, nil
}

func (s *Source) readAll(name string) ([][]string, error) {
	f, err := s.fsys.Open(path.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = s.comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	values, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return values, nil
}
