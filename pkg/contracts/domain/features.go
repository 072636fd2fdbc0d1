package domain

// FeatureSet is the model input built from a cleaned table. Row i of every
// slice describes row i of the table it was built from.
type FeatureSet struct {
	NumericNames     []string    `json:"numeric_names"`
	CategoricalNames []string    `json:"categorical_names"`
	Numeric          [][]float64 `json:"numeric"`
	Categorical      [][]string  `json:"categorical"`
	// Target holds 1 for "Yes", 0 for "No" and NaN for any other label.
	Target []float64 `json:"target"`
}

// Len returns the number of samples.
func (f *FeatureSet) Len() int {
	if len(f.Numeric) > 0 {
		return len(f.Numeric)
	}
	return len(f.Categorical)
}
