// Package assets embeds a small sample of the published dataset so the
// dashboard can run without downloading the full data bundle.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed sample
var sampleFS embed.FS

// Sample returns the embedded dataset laid out like the published bundle:
// Auxiliary/poblaciones.csv, Auxiliary/arg_provincias.geojson,
// viajes_origen_destino_mes.csv and personas_beneficiarias.csv.
func Sample() (fs.FS, error) {
	return fs.Sub(sampleFS, "sample")
}
