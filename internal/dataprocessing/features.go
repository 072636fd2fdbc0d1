package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"impulseradar/internal/errors"
	"impulseradar/pkg/contracts/domain"
)

// FeatureSchema selects the model inputs and the target encoding
type FeatureSchema struct {
	TargetColumn       string
	NumericColumns     []string
	CategoricalColumns []string
	PositiveLabel      string
	NegativeLabel      string
}

// BuildFeatures splits a cleaned frame into numeric features, categorical
// features and the encoded binary target.
func BuildFeatures(df dataframe.DataFrame, schema FeatureSchema) (*domain.FeatureSet, error) {
	required := make([]string, 0, len(schema.NumericColumns)+len(schema.CategoricalColumns)+1)
	required = append(required, schema.NumericColumns...)
	required = append(required, schema.CategoricalColumns...)
	required = append(required, schema.TargetColumn)
	if err := requireColumns(df, required...); err != nil {
		return nil, err
	}

	numCols := selectColumns(df, schema.NumericColumns)
	catCols := selectColumns(df, schema.CategoricalColumns)
	target := df.Col(schema.TargetColumn)

	n := df.Nrow()
	fs := &domain.FeatureSet{
		NumericNames:     append([]string(nil), schema.NumericColumns...),
		CategoricalNames: append([]string(nil), schema.CategoricalColumns...),
		Numeric:          make([][]float64, n),
		Categorical:      make([][]string, n),
		Target:           make([]float64, n),
	}

	for i := 0; i < n; i++ {
		nums := make([]float64, len(numCols))
		for k, col := range numCols {
			v, err := parseNumeric(col.Elem(i))
			if err != nil {
				return nil, errors.NewParsingError("invalid numeric feature value", err).
					WithContext("row", i).
					WithContext("column", schema.NumericColumns[k])
			}
			nums[k] = v
		}
		fs.Numeric[i] = nums

		cats := make([]string, len(catCols))
		for k, col := range catCols {
			cats[k] = cellText(col.Elem(i))
		}
		fs.Categorical[i] = cats

		fs.Target[i] = EncodeTarget(target.Elem(i), schema.PositiveLabel, schema.NegativeLabel)
	}

	return fs, nil
}

// EncodeTarget maps the positive label to 1 and the negative label to 0.
// Any other value, a missing one included, maps to NaN.
func EncodeTarget(e series.Element, positive, negative string) float64 {
	if e.IsNA() {
		return math.NaN()
	}
	switch e.String() {
	case positive:
		return 1
	case negative:
		return 0
	default:
		return math.NaN()
	}
}

func selectColumns(df dataframe.DataFrame, names []string) []series.Series {
	cols := make([]series.Series, len(names))
	for k, name := range names {
		cols[k] = df.Col(name)
	}
	return cols
}

// parseNumeric parses a numeric element, tolerating thousands separators
// in string columns
func parseNumeric(e series.Element) (float64, error) {
	if e.IsNA() {
		return 0, fmt.Errorf("value is missing")
	}
	if e.Type() != series.String {
		v := e.Float()
		if math.IsInf(v, 0) {
			return 0, fmt.Errorf("%v is not a finite number", v)
		}
		return v, nil
	}
	text := e.String()
	raw := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", text)
	}
	return v, nil
}
