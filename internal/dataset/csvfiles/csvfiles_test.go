package csvfiles

import (
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"previaje/internal/dataset"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"Auxiliary/poblaciones.csv": {Data: []byte("\ufeffprovincia,poblacion\nSalta,1441351\nJujuy,\"797.955\"\n")},
		"Auxiliary/arg_provincias.geojson": {Data: []byte(`{"type":"FeatureCollection","features":[]}`)},
		"viajes_origen_destino_mes.csv": {Data: []byte(
			"mes_inicio,provincia_origen,provincia_destino,viajeros\n" +
				"2021-01-01,Salta,Jujuy,120\n" +
				"\n" +
				"2021-01-01,Jujuy,Salta,80.5\n")},
		"personas_beneficiarias.csv": {Data: []byte(
			"provincia,tramo_edad,genero,personas_beneficiarias,edicion\n" +
				"Salta,18-29,F,10,1\n" +
				"Salta,18-29,F,5,2\n")},
	}
}

func TestSourceReadsTables(t *testing.T) {
	s := New(testFS(), DefaultPaths())
	ctx := context.Background()

	pops, err := s.Populations(ctx)
	if err != nil {
		t.Fatalf("populations: %v", err)
	}
	if len(pops) != 2 || pops[0].Province != "Salta" || pops[1].People != 797955 {
		t.Fatalf("unexpected populations: %+v", pops)
	}

	travel, err := s.Travel(ctx)
	if err != nil {
		t.Fatalf("travel: %v", err)
	}
	if len(travel) != 2 || travel[1].Travelers != 80.5 || travel[1].Destination != "Salta" {
		t.Fatalf("unexpected travel: %+v", travel)
	}

	bens, err := s.Beneficiaries(ctx)
	if err != nil {
		t.Fatalf("beneficiaries: %v", err)
	}
	if len(bens) != 2 || bens[1].Edition != "2" {
		t.Fatalf("unexpected beneficiaries: %+v", bens)
	}

	rc, err := s.Geometry(ctx)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	defer rc.Close()
	if b, _ := io.ReadAll(rc); len(b) == 0 {
		t.Fatalf("empty geometry")
	}
}

func TestSourceMissingFile(t *testing.T) {
	paths := DefaultPaths()
	paths.Travel = "nope.csv"
	if _, err := New(testFS(), paths).Travel(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSourceMissingColumn(t *testing.T) {
	fsys := testFS()
	fsys["personas_beneficiarias.csv"] = &fstest.MapFile{Data: []byte("provincia,genero\nSalta,F\n")}
	_, err := New(fsys, DefaultPaths()).Beneficiaries(context.Background())
	if !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}
