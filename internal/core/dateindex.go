package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateOrder selects how slider positions are assigned to months.
type DateOrder string

const (
	// OrderChronological sorts months by date. Months that cannot be parsed
	// keep their relative file order after the parsed ones.
	OrderChronological DateOrder = "chronological"
	// OrderFile keeps the order in which months first appear in the source.
	OrderFile DateOrder = "file"
)

// IsValid reports whether o is a known order.
func (o DateOrder) IsValid() bool {
	switch o {
	case OrderChronological, OrderFile:
		return true
	default:
		return false
	}
}

// monthLayouts are the month-start formats found in published exports.
var monthLayouts = []string{"2006-01-02", "2006-01", "02/01/2006", "01/2006"}

// ParseMonth parses a month-start value.
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse month %q: unknown format", s)
}

// DateIndex maps slider positions to the distinct months of the travel table.
// Keys are 0..Len()-1; every month appears exactly once.
type DateIndex struct {
	values []string
	keys   map[string]int
}

// NewDateIndex enumerates the distinct months of rows.
func NewDateIndex(rows []Travel, order DateOrder) DateIndex {
	seen := make(map[string]struct{})
	var values []string
	for _, r := range rows {
		if _, ok := seen[r.Month]; ok {
			continue
		}
		seen[r.Month] = struct{}{}
		values = append(values, r.Month)
	}

	if order == OrderChronological {
		sortChronologically(values)
	}

	keys := make(map[string]int, len(values))
	for i, v := range values {
		keys[v] = i
	}
	return DateIndex{values: values, keys: keys}
}

func sortChronologically(values []string) {
	parsed := make(map[string]time.Time, len(values))
	for _, v := range values {
		if t, err := ParseMonth(v); err == nil {
			parsed[v] = t
		}
	}
	sort.SliceStable(values, func(i, j int) bool {
		ti, iok := parsed[values[i]]
		tj, jok := parsed[values[j]]
		switch {
		case iok && jok:
			return ti.Before(tj)
		case iok:
			return true
		default:
			return false
		}
	})
}

// Len returns the number of distinct months.
func (d DateIndex) Len() int {
	return len(d.values)
}

// Value returns the month mapped to key.
func (d DateIndex) Value(key int) (string, bool) {
	if key < 0 || key >= len(d.values) {
		return "", false
	}
	return d.values[key], true
}

// Key returns the slider position of month.
func (d DateIndex) Key(month string) (int, bool) {
	k, ok := d.keys[month]
	return k, ok
}

// Labels returns the months in key order.
func (d DateIndex) Labels() []string {
	return append([]string(nil), d.values...)
}

// ShortLabel formats month as "2021-01" when it parses, otherwise as is.
func ShortLabel(month string) string {
	t, err := ParseMonth(month)
	if err != nil {
		return month
	}
	return t.Format("2006-01")
}
