package core

import "sort"

// AggregateBeneficiaries sums beneficiaries over editions, returning one row
// per (province, age bracket, gender) sorted by those three keys.
func AggregateBeneficiaries(rows []BeneficiaryRow) []Beneficiary {
	type key struct{ province, age, gender string }
	sums := make(map[key]int64)
	for _, r := range rows {
		sums[key{r.Province, r.AgeBracket, r.Gender}] += r.Beneficiaries
	}

	out := make([]Beneficiary, 0, len(sums))
	for k, v := range sums {
		out = append(out, Beneficiary{
			Province:      k.province,
			AgeBracket:    k.age,
			Gender:        k.gender,
			Beneficiaries: v,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Province != b.Province {
			return a.Province < b.Province
		}
		if a.AgeBracket != b.AgeBracket {
			return a.AgeBracket < b.AgeBracket
		}
		return a.Gender < b.Gender
	})
	return out
}

// SelectMonth returns the rows whose month equals month, in source order.
// The result never aliases rows.
func SelectMonth(rows []Travel, month string) []Travel {
	out := make([]Travel, 0)
	for _, r := range rows {
		if r.Month == month {
			out = append(out, r)
		}
	}
	return out
}

// Normalize divides the traveler count of every row by the population of its
// destination. Rows whose destination has no population record keep their
// absolute count. The input is left untouched.
func Normalize(rows []Travel, populations []Population) []Travel {
	people := make(map[string]int64, len(populations))
	for _, p := range populations {
		people[p.Province] = p.People
	}

	out := make([]Travel, len(rows))
	copy(out, rows)
	for i := range out {
		if n, ok := people[out[i].Destination]; ok && n > 0 {
			out[i].Travelers /= float64(n)
		}
	}
	return out
}

// SumByDestination groups rows by destination and sums their traveler counts.
// The result is sorted by destination name.
func SumByDestination(rows []Travel) []DestinationTotal {
	sums := make(map[string]float64)
	for _, r := range rows {
		sums[r.Destination] += r.Travelers
	}

	out := make([]DestinationTotal, 0, len(sums))
	for d, v := range sums {
		out = append(out, DestinationTotal{Destination: d, Travelers: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Destination < out[j].Destination })
	return out
}
