package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fortuna/hardwood/internal/store"
)

var csvHeader = []string{
	"season", "date", "gid", "tid1", "tid2",
	"result", "margin", "totscore", "HA", "rank1", "rank2", "poss",
	"pace1", "pace2", "effdiff", "raweffdiff", "effsum", "neteffsum",
	"offeffdiff", "offastrdiff", "offorbpdiff", "offtovrdiff", "offefgpdiff", "offftrdiff",
	"defeffdiff", "defastrdiff", "deforbpdiff", "deftovrdiff", "defefgpdiff", "defftrdiff",
}

// WriteCSV writes feature rows in the training-data layout. NaN cells
// are written literally so downstream tooling can treat them as
// missing values.
func WriteCSV(w io.Writer, rows []FeatureRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing feature header: %w", err)
	}

	for i := range rows {
		if err := cw.Write(encodeFeatureRow(&rows[i])); err != nil {
			return fmt.Errorf("writing feature row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func encodeFeatureRow(r *FeatureRow) []string {
	fields := []string{
		strconv.Itoa(r.Season),
		r.Date.Format(store.DateLayout),
		r.GID,
		r.TID1,
		r.TID2,
		strconv.Itoa(r.Result),
		strconv.Itoa(r.Margin),
		strconv.Itoa(r.TotScore),
		strconv.Itoa(r.HA),
		ftoa(r.Rank1),
		ftoa(r.Rank2),
		ftoa(r.Poss),
		ftoa(r.Pace1),
		ftoa(r.Pace2),
		ftoa(r.EffDiff),
		ftoa(r.RawEffDiff),
		ftoa(r.EffSum),
		ftoa(r.NetEffSum),
	}
	for _, d := range []RateDiffs{r.Off, r.Def} {
		fields = append(fields,
			ftoa(d.Eff), ftoa(d.Astr), ftoa(d.Orbp),
			ftoa(d.Tovr), ftoa(d.Efgp), ftoa(d.Ftr))
	}
	return fields
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
