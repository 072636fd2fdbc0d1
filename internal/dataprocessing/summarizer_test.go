package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impulseradar/internal/errors"
	"impulseradar/pkg/contracts/domain"
)

var scoredColumns = []string{"City", "Purchase Decision", "purchase_prob"}

func newTestSummarizer() *Summarizer {
	return NewSummarizer(nil, SummarizerConfig{
		LocationColumn:    "City",
		TargetColumn:      "Purchase Decision",
		ProbabilityColumn: "purchase_prob",
		PositiveLabel:     "Yes",
	})
}

func TestSummarizer_Summarize(t *testing.T) {
	df := newTestFrame(t, scoredColumns,
		[]string{"LA", "Yes", "0.9"},
		[]string{"LA", "Yes", "0.8"},
		[]string{"LA", "No", "0.1"},
		[]string{"NY", "No", "0.2"},
		[]string{"SF", "Yes", "0.95"},
		[]string{"<nil>", "Yes", "0.99"},
	)

	got, err := newTestSummarizer().Summarize(context.Background(), df)
	require.NoError(t, err)

	require.Len(t, got, 3, "missing city excluded")
	assert.Equal(t, "SF", got[0].City)
	assert.Equal(t, "LA", got[1].City)
	assert.Equal(t, "NY", got[2].City)

	la := got[1]
	assert.Equal(t, 3, la.TotalUsers)
	assert.Equal(t, 2, la.PurchasesYes)
	assert.InDelta(t, 0.6, la.AvgPurchaseProb, 1e-12)

	for i, s := range got {
		assert.LessOrEqual(t, s.PurchasesYes, s.TotalUsers)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].AvgPurchaseProb, s.AvgPurchaseProb)
		}
	}
}

func TestSummarizer_CountsRawLabelOnly(t *testing.T) {
	df := newTestFrame(t, scoredColumns,
		[]string{"LA", "yes", "0.5"},
		[]string{"LA", "Yes ", "0.5"},
		[]string{"LA", "Yes", "0.5"},
	)

	got, err := newTestSummarizer().Summarize(context.Background(), df)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].PurchasesYes)
}

func TestSummarizer_TiesKeepCityOrder(t *testing.T) {
	df := newTestFrame(t, scoredColumns,
		[]string{"Zurich", "No", "0.5"},
		[]string{"Austin", "No", "0.5"},
		[]string{"Miami", "No", "0.7"},
		[]string{"Boston", "No", "0.5"},
	)

	got, err := newTestSummarizer().Summarize(context.Background(), df)
	require.NoError(t, err)

	cities := make([]string, len(got))
	for i, s := range got {
		cities[i] = s.City
	}
	assert.Equal(t, []string{"Miami", "Austin", "Boston", "Zurich"}, cities)
}

func TestSummarizer_FloatProbabilities(t *testing.T) {
	df := newTestFrame(t, []string{"City", "Purchase Decision"},
		[]string{"007", "Yes"},
		[]string{"007", "No"},
		[]string{"1.50", "No"},
	)
	scored, err := AppendProbabilities(df, "purchase_prob", []float64{0.25, 0.75, 0.1})
	require.NoError(t, err)

	got, err := newTestSummarizer().Summarize(context.Background(), scored)
	require.NoError(t, err)

	assert.Equal(t, []domain.CitySummary{
		{City: "007", TotalUsers: 2, AvgPurchaseProb: 0.5, PurchasesYes: 1},
		{City: "1.50", TotalUsers: 1, AvgPurchaseProb: 0.1, PurchasesYes: 0},
	}, got, "city names keep their text")
}

func TestSummarizer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		row     []string
		errType errors.ErrorType
	}{
		{
			name:    "missing city column",
			columns: []string{"Purchase Decision", "purchase_prob"},
			row:     []string{"Yes", "0.1"},
			errType: errors.ErrTypeValidation,
		},
		{
			name:    "missing probability column",
			columns: []string{"City", "Purchase Decision"},
			row:     []string{"LA", "Yes"},
			errType: errors.ErrTypeValidation,
		},
		{
			name:    "unparsable probability",
			columns: scoredColumns,
			row:     []string{"LA", "Yes", "high"},
			errType: errors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df := newTestFrame(t, tt.columns, tt.row)
			_, err := newTestSummarizer().Summarize(context.Background(), df)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType))
		})
	}
}

func TestSummarizer_Empty(t *testing.T) {
	got, err := newTestSummarizer().Summarize(context.Background(), newTestFrame(t, scoredColumns))
	require.NoError(t, err)
	assert.Empty(t, got)
}
