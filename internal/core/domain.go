package core

import (
	"errors"
	"math"
	"strings"
)

type (
	// Population is the number of inhabitants of a province.
	Population struct {
		Province string
		People   int64
	}

	// Travel counts the travelers that went from Origin to Destination
	// during the month starting at Month.
	Travel struct {
		Month       string
		Origin      string
		Destination string
		Travelers   float64
	}

	// BeneficiaryRow is one line of the beneficiaries table as published,
	// before editions are summed away.
	BeneficiaryRow struct {
		Province      string
		AgeBracket    string
		Gender        string
		Beneficiaries int64
		Edition       string
	}

	// Beneficiary is the beneficiaries count for a (province, age bracket,
	// gender) triple across all editions of the program.
	Beneficiary struct {
		Province      string
		AgeBracket    string
		Gender        string
		Beneficiaries int64
	}

	// DestinationTotal is the traveler count summed for one destination.
	DestinationTotal struct {
		Destination string
		Travelers   float64
	}
)

var (
	ErrEmptyProvince       = errors.New("empty province")
	ErrEmptyMonth          = errors.New("empty month")
	ErrNegativeCount       = errors.New("negative count")
	ErrInvalidPopulation   = errors.New("population must be positive")
	ErrDateIndexOutOfRange = errors.New("date index out of range")
)

func (p Population) Validate() error {
	if strings.TrimSpace(p.Province) == "" {
		return ErrEmptyProvince
	}
	if p.People <= 0 {
		return ErrInvalidPopulation
	}
	return nil
}

func (t Travel) Validate() error {
	if strings.TrimSpace(t.Month) == "" {
		return ErrEmptyMonth
	}
	if strings.TrimSpace(t.Origin) == "" || strings.TrimSpace(t.Destination) == "" {
		return ErrEmptyProvince
	}
	if t.Travelers < 0 || math.IsNaN(t.Travelers) {
		return ErrNegativeCount
	}
	return nil
}

func (b BeneficiaryRow) Validate() error {
	if strings.TrimSpace(b.Province) == "" {
		return ErrEmptyProvince
	}
	if b.Beneficiaries < 0 {
		return ErrNegativeCount
	}
	return nil
}
