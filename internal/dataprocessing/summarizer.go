package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"impulseradar/internal/errors"
	"impulseradar/pkg/contracts/domain"
)

// SummarizerConfig names the columns the city summary reads
type SummarizerConfig struct {
	LocationColumn    string
	TargetColumn      string
	ProbabilityColumn string
	PositiveLabel     string
}

// Summarizer builds the city-level summary from scored rows
type Summarizer struct {
	logger *slog.Logger
	config SummarizerConfig
}

// NewSummarizer creates a new city summarizer with the given configuration.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger, config: config}
}

const (
	keyColumn  = "key"
	probColumn = "prob"
	yesColumn  = "yes"
	cityColumn = "city"
)

var (
	countColumn = aggregated(probColumn, dataframe.Aggregation_COUNT)
	meanColumn  = aggregated(probColumn, dataframe.Aggregation_MEAN)
	sumColumn   = aggregated(yesColumn, dataframe.Aggregation_SUM)
)

// aggregated is the column name Groups.Aggregation gives its results
func aggregated(column string, typ dataframe.AggregationType) string {
	return fmt.Sprintf("%s_%s", column, typ)
}

// Summarize groups rows by city and computes the row count, the mean
// probability and the number of rows whose raw label equals the positive
// label. Rows with a missing city are left out of the summary. Cities are
// ordered by mean probability descending; ties keep ascending city order.
func (s *Summarizer) Summarize(ctx context.Context, df dataframe.DataFrame) ([]domain.CitySummary, error) {
	for _, column := range []string{s.config.LocationColumn, s.config.TargetColumn, s.config.ProbabilityColumn} {
		if len(MissingColumns(df, column)) > 0 {
			return nil, errors.NewAppValidationError(fmt.Sprintf("column %q not found", column))
		}
	}

	compact, cities, err := s.compact(df)
	if err != nil {
		return nil, err
	}
	summaries := []domain.CitySummary{}
	if len(cities) > 0 {
		summaries, err = s.aggregate(compact, cities)
		if err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "City summary generated",
		slog.Int("cities", len(summaries)),
		slog.Int("rows", df.Nrow()))

	return summaries, nil
}

// compact reduces df to a group key, the probability and a positive-label
// indicator per row with a city. Group keys are codes into the returned
// city list so that the aggregated frame keeps them as plain strings.
func (s *Summarizer) compact(df dataframe.DataFrame) (dataframe.DataFrame, []string, error) {
	city := df.Col(s.config.LocationColumn)
	target := df.Col(s.config.TargetColumn)
	prob := df.Col(s.config.ProbabilityColumn)

	codes := make(map[string]string)
	var cities []string
	keys := make([]string, 0, df.Nrow())
	probs := make([]float64, 0, df.Nrow())
	yes := make([]float64, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		c := city.Elem(i)
		if c.IsNA() {
			continue
		}
		p, err := probability(prob.Elem(i))
		if err != nil {
			return dataframe.DataFrame{}, nil, errors.NewParsingError("invalid probability value", err).WithContext("row", i)
		}

		name := c.String()
		code, ok := codes[name]
		if !ok {
			code = "c" + strconv.Itoa(len(cities))
			codes[name] = code
			cities = append(cities, name)
		}
		keys = append(keys, code)
		probs = append(probs, p)
		if t := target.Elem(i); !t.IsNA() && t.String() == s.config.PositiveLabel {
			yes = append(yes, 1)
		} else {
			yes = append(yes, 0)
		}
	}

	compact := dataframe.New(
		series.New(keys, series.String, keyColumn),
		series.New(probs, series.Float, probColumn),
		series.New(yes, series.Float, yesColumn),
	)
	if compact.Err != nil {
		return dataframe.DataFrame{}, nil, errors.NewAppValidationError(compact.Err.Error())
	}
	return compact, cities, nil
}

func (s *Summarizer) aggregate(compact dataframe.DataFrame, cities []string) ([]domain.CitySummary, error) {
	groups := compact.GroupBy(keyColumn)
	if groups.Err != nil {
		return nil, errors.NewAppValidationError(groups.Err.Error())
	}
	agg := groups.Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_COUNT, dataframe.Aggregation_MEAN, dataframe.Aggregation_SUM},
		[]string{probColumn, probColumn, yesColumn},
	)
	if agg.Err != nil {
		return nil, errors.NewAppValidationError(agg.Err.Error())
	}

	n := agg.Nrow()
	names := make([]string, n)
	counts := make([]float64, n)
	means := make([]float64, n)
	sums := make([]float64, n)
	key, count, mean, sum := agg.Col(keyColumn), agg.Col(countColumn), agg.Col(meanColumn), agg.Col(sumColumn)
	for i := 0; i < n; i++ {
		idx, err := strconv.Atoi(strings.TrimPrefix(key.Elem(i).String(), "c"))
		if err != nil || idx < 0 || idx >= len(cities) {
			return nil, errors.NewAppValidationError(fmt.Sprintf("unexpected group key %q", key.Elem(i).String()))
		}
		names[i] = cities[idx]
		counts[i] = count.Elem(i).Float()
		means[i] = mean.Elem(i).Float()
		sums[i] = sum.Elem(i).Float()
	}

	ranked := dataframe.New(
		series.New(names, series.String, cityColumn),
		series.New(counts, series.Float, countColumn),
		series.New(means, series.Float, meanColumn),
		series.New(sums, series.Float, sumColumn),
	).Arrange(dataframe.Sort(cityColumn)).Arrange(dataframe.RevSort(meanColumn))
	if ranked.Err != nil {
		return nil, errors.NewAppValidationError(ranked.Err.Error())
	}

	summaries := make([]domain.CitySummary, ranked.Nrow())
	city, count, mean, sum := ranked.Col(cityColumn), ranked.Col(countColumn), ranked.Col(meanColumn), ranked.Col(sumColumn)
	for i := range summaries {
		summaries[i] = domain.CitySummary{
			City:            city.Elem(i).String(),
			TotalUsers:      int(math.Round(count.Elem(i).Float())),
			AvgPurchaseProb: mean.Elem(i).Float(),
			PurchasesYes:    int(math.Round(sum.Elem(i).Float())),
		}
	}
	return summaries, nil
}

// probability reads a scored value from a float or string column
func probability(e series.Element) (float64, error) {
	if e.IsNA() {
		return 0, fmt.Errorf("value is missing")
	}
	if e.Type() == series.String {
		return strconv.ParseFloat(e.String(), 64)
	}
	return e.Float(), nil
}
