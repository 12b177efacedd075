package core

import (
	"math"
	"testing"
)

func sampleTravel() []Travel {
	return []Travel{
		{Month: "2021-01-01", Origin: "A", Destination: "B", Travelers: 10},
		{Month: "2021-01-01", Origin: "A", Destination: "C", Travelers: 5},
		{Month: "2021-02-01", Origin: "A", Destination: "B", Travelers: 3},
	}
}

func TestSelectMonthAndSumByDestination(t *testing.T) {
	rows := sampleTravel()
	sel := SelectMonth(rows, "2021-01-01")
	if len(sel) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sel))
	}
	got := SumByDestination(sel)
	want := []DestinationTotal{{"B", 10}, {"C", 5}}
	if len(got) != len(want) {
		t.Fatalf("expected %d totals, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("total %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestSumByDestinationMergesOrigins(t *testing.T) {
	rows := []Travel{
		{Month: "m", Origin: "A", Destination: "B", Travelers: 1},
		{Month: "m", Origin: "C", Destination: "B", Travelers: 2.5},
		{Month: "m", Origin: "B", Destination: "A", Travelers: 4},
	}
	got := SumByDestination(rows)
	if len(got) != 2 || got[0].Destination != "A" || got[1].Destination != "B" {
		t.Fatalf("unexpected grouping: %+v", got)
	}
	if got[1].Travelers != 3.5 {
		t.Fatalf("B total: got %v", got[1].Travelers)
	}
}

func TestSelectMonthEmpty(t *testing.T) {
	sel := SelectMonth(sampleTravel(), "1999-01-01")
	if sel == nil || len(sel) != 0 {
		t.Fatalf("expected empty non-nil selection, got %#v", sel)
	}
	if totals := SumByDestination(sel); len(totals) != 0 {
		t.Fatalf("expected no totals, got %+v", totals)
	}
}

func TestNormalize(t *testing.T) {
	rows := sampleTravel()
	pops := []Population{{Province: "B", People: 1000}}
	got := Normalize(rows, pops)

	if got[0].Travelers != 10.0/1000 {
		t.Fatalf("B normalized: got %v", got[0].Travelers)
	}
	if got[2].Travelers != 3.0/1000 {
		t.Fatalf("B normalized (feb): got %v", got[2].Travelers)
	}
	// C has no population record and keeps its absolute count
	if got[1].Travelers != 5 {
		t.Fatalf("C should be unmodified, got %v", got[1].Travelers)
	}
	// input untouched
	if rows[0].Travelers != 10 {
		t.Fatalf("input mutated: %v", rows[0].Travelers)
	}
}

func TestNormalizeMatchesDivision(t *testing.T) {
	rows := []Travel{
		{Month: "m", Origin: "X", Destination: "Córdoba", Travelers: 12345},
		{Month: "m", Origin: "Y", Destination: "Salta", Travelers: 777},
	}
	pops := []Population{{"Córdoba", 3978984}, {"Salta", 1441351}}
	got := Normalize(rows, pops)
	for i, p := range []int64{3978984, 1441351} {
		want := rows[i].Travelers / float64(p)
		if math.Abs(got[i].Travelers-want) > 1e-15 {
			t.Fatalf("row %d: got %v want %v", i, got[i].Travelers, want)
		}
	}
}

func TestAggregateBeneficiaries(t *testing.T) {
	rows := []BeneficiaryRow{
		{Province: "Salta", AgeBracket: "18-29", Gender: "F", Beneficiaries: 10, Edition: "1"},
		{Province: "Salta", AgeBracket: "18-29", Gender: "F", Beneficiaries: 7, Edition: "2"},
		{Province: "Salta", AgeBracket: "18-29", Gender: "M", Beneficiaries: 3, Edition: "1"},
		{Province: "Jujuy", AgeBracket: "30-39", Gender: "F", Beneficiaries: 4, Edition: "3"},
	}
	got := AggregateBeneficiaries(rows)
	want := []Beneficiary{
		{"Jujuy", "30-39", "F", 4},
		{"Salta", "18-29", "F", 17},
		{"Salta", "18-29", "M", 3},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (Population{Province: "Salta", People: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []interface{ Validate() error }{
		Population{Province: "", People: 1},
		Population{Province: "Salta", People: 0},
		Travel{Month: "", Origin: "A", Destination: "B"},
		Travel{Month: "m", Origin: "", Destination: "B"},
		Travel{Month: "m", Origin: "A", Destination: "B", Travelers: -1},
		BeneficiaryRow{Province: " "},
		BeneficiaryRow{Province: "Salta", Beneficiaries: -2},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
