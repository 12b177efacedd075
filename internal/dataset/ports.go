// Package dataset defines where the dashboard input tables come from.
package dataset

import (
	"context"
	"io"

	"previaje/internal/core"
)

// Ports for inbound adapters.
type (
	PopulationReader interface {
		// Populations returns one record per province.
		Populations(ctx context.Context) ([]core.Population, error)
	}

	TravelReader interface {
		// Travel returns the origin-destination monthly counts in source order.
		Travel(ctx context.Context) ([]core.Travel, error)
	}

	BeneficiaryReader interface {
		// Beneficiaries returns the raw beneficiaries table, editions included.
		Beneficiaries(ctx context.Context) ([]core.BeneficiaryRow, error)
	}

	// GeometryReader opens the province boundaries as GeoJSON.
	GeometryReader interface {
		Geometry(ctx context.Context) (io.ReadCloser, error)
	}

	// Source provides every table the dashboard needs.
	Source interface {
		PopulationReader
		TravelReader
		BeneficiaryReader
		GeometryReader
	}
)

// Tables provides the three tabular inputs without geometry.
type Tables interface {
	PopulationReader
	TravelReader
	BeneficiaryReader
}

type combined struct {
	Tables
	GeometryReader
}

// WithGeometry pairs a tables-only source with a geometry reader.
func WithGeometry(t Tables, g GeometryReader) Source {
	return combined{Tables: t, GeometryReader: g}
}
