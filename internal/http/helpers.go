package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"previaje/internal/core"
	"previaje/internal/view"
)

// tableRow is one line of the beneficiaries table, formatted for display.
type tableRow struct {
	Province      string
	AgeBracket    string
	Gender        string
	Beneficiaries string
}

var countPrinter = message.NewPrinter(language.Spanish)

// formatCount renders n with Spanish digit grouping, e.g. 80150 as "80.150".
func formatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}

func beneficiaryTable(bens []core.Beneficiary) []tableRow {
	rows := make([]tableRow, len(bens))
	for i, b := range bens {
		rows[i] = tableRow{
			Province:      b.Province,
			AgeBracket:    b.AgeBracket,
			Gender:        b.Gender,
			Beneficiaries: formatCount(b.Beneficiaries),
		}
	}
	return rows
}

// parseViewState reads the slider index and normalize flag from the query.
// Both are optional and default to the initial control state.
func parseViewState(r *http.Request) (view.State, error) {
	st := view.DefaultState()
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("date")); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return st, fmt.Errorf("invalid date index %q: must be an integer", v)
		}
		st.DateIndex = i
	}
	if v := strings.TrimSpace(q.Get("normalize")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return st, fmt.Errorf("invalid normalize flag %q: must be true or false", v)
		}
		st.Normalize = b
	}
	return st, nil
}
