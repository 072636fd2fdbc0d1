package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCitySummary_Values(t *testing.T) {
	s := CitySummary{City: "LA", TotalUsers: 3, AvgPurchaseProb: 0.25, PurchasesYes: 2}

	assert.Equal(t, []interface{}{"LA", 3, 0.25, 2}, s.Values())
	assert.Len(t, CitySummaryHeaders(), len(s.Values()))
}

func TestFeatureSet_Len(t *testing.T) {
	assert.Equal(t, 2, (&FeatureSet{Numeric: [][]float64{{1}, {2}}}).Len())
	assert.Equal(t, 1, (&FeatureSet{Categorical: [][]string{{"LA"}}}).Len())
	assert.Equal(t, 0, (&FeatureSet{}).Len())
}
