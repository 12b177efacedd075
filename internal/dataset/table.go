package dataset

import (
	"errors"
	"fmt"
	"strings"

	"previaje/internal/core"
)

// Column names as published in the open data portal.
const (
	ColProvince      = "provincia"
	ColPopulation    = "poblacion"
	ColMonth         = "mes_inicio"
	ColOrigin        = "provincia_origen"
	ColDestination   = "provincia_destino"
	ColTravelers     = "viajeros"
	ColAgeBracket    = "tramo_edad"
	ColGender        = "genero"
	ColBeneficiaries = "personas_beneficiarias"
	ColEdition       = "edicion"
)

var ErrMissingColumn = errors.New("missing column")

// header resolves column positions by name.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// require returns the positions of names, or an error listing the missing ones.
func (h header) require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		pos, ok := h[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		idx[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ","))
	}
	return idx, nil
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParsePopulations converts a string matrix whose first row is the header.
func ParsePopulations(values [][]string) ([]core.Population, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("populations: %w: empty table", ErrMissingColumn)
	}
	idx, err := newHeader(values[0]).require(ColProvince, ColPopulation)
	if err != nil {
		return nil, fmt.Errorf("populations: %w", err)
	}
	out := make([]core.Population, 0, len(values)-1)
	for i, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		n, err := core.ParseInt(safeGet(row, idx[1]))
		if err != nil {
			return nil, fmt.Errorf("populations line %d: %s: %w", i+2, ColPopulation, err)
		}
		p := core.Population{Province: safeGet(row, idx[0]), People: n}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("populations line %d: %w", i+2, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseTravel converts a string matrix whose first row is the header.
func ParseTravel(values [][]string) ([]core.Travel, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("travel: %w: empty table", ErrMissingColumn)
	}
	idx, err := newHeader(values[0]).require(ColMonth, ColOrigin, ColDestination, ColTravelers)
	if err != nil {
		return nil, fmt.Errorf("travel: %w", err)
	}
	out := make([]core.Travel, 0, len(values)-1)
	for i, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		n, err := core.ParseCount(safeGet(row, idx[3]))
		if err != nil {
			return nil, fmt.Errorf("travel line %d: %s: %w", i+2, ColTravelers, err)
		}
		t := core.Travel{
			Month:       safeGet(row, idx[0]),
			Origin:      safeGet(row, idx[1]),
			Destination: safeGet(row, idx[2]),
			Travelers:   n,
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("travel line %d: %w", i+2, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseBeneficiaries converts a string matrix whose first row is the header.
func ParseBeneficiaries(values [][]string) ([]core.BeneficiaryRow, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("beneficiaries: %w: empty table", ErrMissingColumn)
	}
	idx, err := newHeader(values[0]).require(ColProvince, ColAgeBracket, ColGender, ColBeneficiaries, ColEdition)
	if err != nil {
		return nil, fmt.Errorf("beneficiaries: %w", err)
	}
	out := make([]core.BeneficiaryRow, 0, len(values)-1)
	for i, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		n, err := core.ParseInt(safeGet(row, idx[3]))
		if err != nil {
			return nil, fmt.Errorf("beneficiaries line %d: %s: %w", i+2, ColBeneficiaries, err)
		}
		b := core.BeneficiaryRow{
			Province:      safeGet(row, idx[0]),
			AgeBracket:    safeGet(row, idx[1]),
			Gender:        safeGet(row, idx[2]),
			Beneficiaries: n,
			Edition:       safeGet(row, idx[4]),
		}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("beneficiaries line %d: %w", i+2, err)
		}
		out = append(out, b)
	}
	return out, nil
}
