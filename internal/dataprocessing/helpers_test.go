package dataprocessing

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/require"
)

var testHeader = []string{
	"Age", "Gender", "Income (USD)", "Education Level", "Social Media Usage (Hours/Day)",
	"Social Media Platforms", "Influence Level", "City", "Purchase Decision",
}

// newTestFrame builds a string frame from rows; "<nil>" marks a missing cell.
func newTestFrame(t *testing.T, columns []string, rows ...[]string) dataframe.DataFrame {
	t.Helper()
	values := make([][]string, len(columns))
	for j := range values {
		values[j] = make([]string, 0, len(rows))
	}
	for _, raw := range rows {
		require.Len(t, raw, len(columns))
		for j, v := range raw {
			if v == "<nil>" {
				v = NullValue
			}
			values[j] = append(values[j], v)
		}
	}
	df, err := NewStringFrame(columns, values)
	require.NoError(t, err)
	return df
}

// columnText returns the column as text with missing cells as "<nil>"
func columnText(t *testing.T, df dataframe.DataFrame, column string) []string {
	t.Helper()
	col := df.Col(column)
	require.NoError(t, col.Err)
	out := make([]string, col.Len())
	for i := range out {
		if e := col.Elem(i); e.IsNA() {
			out[i] = "<nil>"
		} else {
			out[i] = e.String()
		}
	}
	return out
}

func testRecord(age, platforms, city, decision string) []string {
	return []string{age, "Female", "50000", "Bachelor", "3.5", platforms, "High", city, decision}
}

func testSchema() FeatureSchema {
	return FeatureSchema{
		TargetColumn:       "Purchase Decision",
		NumericColumns:     []string{"Age", "Income (USD)", "Social Media Usage (Hours/Day)"},
		CategoricalColumns: []string{"Gender", "Education Level", "Influence Level", "Social Media Platforms", "City"},
		PositiveLabel:      "Yes",
		NegativeLabel:      "No",
	}
}
