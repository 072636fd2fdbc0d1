package dataprocessing

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"impulseradar/internal/errors"
)

// AppendProbabilities returns df with a float probability column added, one
// value per row in row order. df itself is not modified.
func AppendProbabilities(df dataframe.DataFrame, column string, probs []float64) (dataframe.DataFrame, error) {
	if len(probs) != df.Nrow() {
		return dataframe.DataFrame{}, errors.NewAppValidationError(
			fmt.Sprintf("got %d probabilities for %d rows", len(probs), df.Nrow()))
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return dataframe.DataFrame{}, errors.NewModelError(fmt.Sprintf("probability %v out of range", p), nil).
				WithContext("row", i)
		}
	}
	if len(MissingColumns(df, column)) == 0 {
		return dataframe.DataFrame{}, errors.NewAppValidationError(fmt.Sprintf("column %q already exists", column))
	}

	out := df.Mutate(series.New(probs, series.Float, column))
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.NewAppValidationError(out.Err.Error())
	}
	return out, nil
}
