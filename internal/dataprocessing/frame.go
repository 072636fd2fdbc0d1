package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"impulseradar/internal/errors"
)

// NullValue is the cell text gota reads as a missing string element. As
// with pandas' default NA markers, a literal "NaN" cell is missing.
const NullValue = "NaN"

// NewStringFrame builds a frame of string columns from column-major values.
// NullValue entries become missing elements.
func NewStringFrame(columns []string, values [][]string) (dataframe.DataFrame, error) {
	if len(columns) != len(values) {
		return dataframe.DataFrame{}, fmt.Errorf("got %d value columns for %d names", len(values), len(columns))
	}
	cols := make([]series.Series, len(columns))
	for j, name := range columns {
		cols[j] = series.New(values[j], series.String, name)
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}

// MissingColumns returns the names that are not columns of df, in the
// order given
func MissingColumns(df dataframe.DataFrame, names ...string) []string {
	have := make(map[string]struct{}, df.Ncol())
	for _, n := range df.Names() {
		have[n] = struct{}{}
	}
	var missing []string
	for _, n := range names {
		if _, ok := have[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

func requireColumns(df dataframe.DataFrame, names ...string) error {
	if missing := MissingColumns(df, names...); len(missing) > 0 {
		return errors.NewAppValidationError(
			fmt.Sprintf("input is missing required columns: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// cellText returns the element text, or "" for a missing element
func cellText(e series.Element) string {
	if e.IsNA() {
		return ""
	}
	return e.String()
}

// rawText returns the element text with missing elements as NullValue, so
// that series.New restores them as missing
func rawText(e series.Element) string {
	if e.IsNA() {
		return NullValue
	}
	return e.String()
}

// subset is Subset with an error return. An empty selection yields a frame
// with the same columns and no rows.
func subset(df dataframe.DataFrame, rows []int) (dataframe.DataFrame, error) {
	if len(rows) == df.Nrow() {
		return df.Copy(), nil
	}
	if len(rows) == 0 {
		return emptyLike(df), nil
	}
	out := df.Subset(rows)
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}

func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	cols := make([]series.Series, df.Ncol())
	for j, name := range df.Names() {
		cols[j] = series.New([]string{}, df.Col(name).Type(), name)
	}
	return dataframe.New(cols...)
}
