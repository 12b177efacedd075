// Package memory holds the dashboard tables in process memory.
package memory

import (
	"bytes"
	"context"
	"errors"
	"io"

	"previaje/internal/core"
	"previaje/internal/dataset"
)

type Store struct {
	populations   []core.Population
	travel        []core.Travel
	beneficiaries []core.BeneficiaryRow
	geometry      []byte
}

var _ dataset.Source = (*Store)(nil)

// New returns a store over copies of the given tables. geometry is GeoJSON.
func New(pops []core.Population, travel []core.Travel, bens []core.BeneficiaryRow, geometry []byte) *Store {
	return &Store{
		populations:   append([]core.Population(nil), pops...),
		travel:        append([]core.Travel(nil), travel...),
		beneficiaries: append([]core.BeneficiaryRow(nil), bens...),
		geometry:      append([]byte(nil), geometry...),
	}
}

func (s *Store) Populations(_ context.Context) ([]core.Population, error) {
	return append([]core.Population(nil), s.populations...), nil
}

func (s *Store) Travel(_ context.Context) ([]core.Travel, error) {
	return append([]core.Travel(nil), s.travel...), nil
}

func (s *Store) Beneficiaries(_ context.Context) ([]core.BeneficiaryRow, error) {
	return append([]core.BeneficiaryRow(nil), s.beneficiaries...), nil
}

func (s *Store) Geometry(_ context.Context) (io.ReadCloser, error) {
	if len(s.geometry) == 0 {
		return nil, errors.New("memory store has no geometry")
	}
	return io.NopCloser(bytes.NewReader(s.geometry)), nil
}
