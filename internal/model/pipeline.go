package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/ezoic/scigo/metrics"
	"github.com/ezoic/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"

	"impulseradar/internal/errors"
	"impulseradar/pkg/contracts/domain"
)

// FitReport summarizes the fitted classifier on its own training rows
type FitReport struct {
	Samples   int     `json:"samples"`
	Features  int     `json:"features"`
	Positives int     `json:"positives"`
	LogLoss   float64 `json:"log_loss"`
	Accuracy  float64 `json:"accuracy"`
	AUC       float64 `json:"auc"`
}

// Pipeline chains the one-hot encoder and the logistic classifier. The design
// matrix holds the indicator columns first, followed by the numeric columns
// in their configured order. Categories unseen during Fit encode as all zeros.
type Pipeline struct {
	encoder    *preprocessing.OneHotEncoder
	classifier *Classifier
	logger     *slog.Logger

	numericNames     []string
	categoricalNames []string
}

// NewPipeline creates an unfitted pipeline
func NewPipeline(cfg LogisticConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		encoder:    preprocessing.NewOneHotEncoder(),
		classifier: NewClassifier(cfg),
		logger:     logger.With(slog.String("component", "model")),
	}
}

// Fit learns the categories and the classifier weights from fs, then scores
// the training rows for the report
func (p *Pipeline) Fit(ctx context.Context, fs *domain.FeatureSet) (FitReport, error) {
	n := fs.Len()
	if n == 0 {
		return FitReport{}, errors.NewModelError("no rows left to train on", nil)
	}
	if len(fs.Target) != n {
		return FitReport{}, errors.NewModelError(
			fmt.Sprintf("got %d targets for %d rows", len(fs.Target), n), nil)
	}

	positives := 0
	for i, y := range fs.Target {
		if math.IsNaN(y) {
			return FitReport{}, errors.NewModelError("target label is neither positive nor negative", nil).
				WithContext("row", i)
		}
		if y == 1 {
			positives++
		}
	}
	if positives == 0 || positives == n {
		return FitReport{}, errors.NewModelError("training data contains a single target class", nil).
			WithContext("rows", n).
			WithContext("positives", positives)
	}

	p.numericNames = append([]string(nil), fs.NumericNames...)
	p.categoricalNames = append([]string(nil), fs.CategoricalNames...)
	if len(p.categoricalNames) > 0 {
		if err := p.encoder.Fit(fs.Categorical); err != nil {
			return FitReport{}, errors.NewModelError("failed to fit categorical encoder", err)
		}
	}

	X, err := p.design(fs)
	if err != nil {
		return FitReport{}, err
	}

	if err := p.classifier.Fit(ctx, X, fs.Target); err != nil {
		if ctx.Err() != nil {
			return FitReport{}, err
		}
		return FitReport{}, errors.NewModelError("failed to fit classifier", err).
			WithContext("rows", n)
	}

	report, err := p.evaluate(ctx, X, fs.Target)
	if err != nil {
		return FitReport{}, err
	}
	report.Positives = positives

	p.logger.DebugContext(ctx, "Classifier parameters",
		slog.Any("params", p.classifier.Params()),
		slog.Any("features", p.FeatureNames()))
	return report, nil
}

func (p *Pipeline) evaluate(ctx context.Context, X *mat.Dense, y []float64) (FitReport, error) {
	n, cols := X.Dims()
	report := FitReport{Samples: n, Features: cols}

	probs, err := p.classifier.PredictProba(ctx, X)
	if err != nil {
		return FitReport{}, p.scoreError(ctx, err)
	}
	yTrue := mat.NewVecDense(n, append([]float64(nil), y...))
	yPred := mat.NewVecDense(n, probs)

	if report.LogLoss, err = metrics.BinaryLogLoss(yTrue, yPred); err != nil {
		return FitReport{}, errors.NewModelError("failed to compute training log-loss", err)
	}
	if report.AUC, err = metrics.AUC(yTrue, yPred); err != nil {
		return FitReport{}, errors.NewModelError("failed to compute training AUC", err)
	}
	if report.Accuracy, err = p.classifier.Accuracy(X, y); err != nil {
		return FitReport{}, errors.NewModelError("failed to compute training accuracy", err)
	}
	return report, nil
}

// PredictProba returns the positive class probability for every row of fs
func (p *Pipeline) PredictProba(ctx context.Context, fs *domain.FeatureSet) ([]float64, error) {
	if !p.classifier.Fitted() {
		return nil, errors.NewModelError("pipeline is not fitted", nil)
	}
	if fs.Len() == 0 {
		return []float64{}, nil
	}
	X, err := p.design(fs)
	if err != nil {
		return nil, err
	}
	probs, err := p.classifier.PredictProba(ctx, X)
	if err != nil {
		return nil, p.scoreError(ctx, err)
	}
	return probs, nil
}

func (p *Pipeline) scoreError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	return errors.NewModelError("failed to score rows", err)
}

// FeatureNames returns the design matrix column names
func (p *Pipeline) FeatureNames() []string {
	var names []string
	if len(p.categoricalNames) > 0 {
		names = p.encoder.GetFeatureNamesOut(p.categoricalNames)
	}
	return append(names, p.numericNames...)
}

func (p *Pipeline) design(fs *domain.FeatureSet) (*mat.Dense, error) {
	n := fs.Len()
	if len(fs.NumericNames) != len(p.numericNames) || len(fs.CategoricalNames) != len(p.categoricalNames) {
		return nil, errors.NewModelError("feature columns differ from the fitted ones", nil)
	}

	width := 0
	var encoded mat.Matrix
	if len(p.categoricalNames) > 0 {
		if len(fs.Categorical) != n {
			return nil, errors.NewModelError("categorical features are missing rows", nil)
		}
		var err error
		if encoded, err = p.encoder.Transform(fs.Categorical); err != nil {
			return nil, errors.NewModelError("failed to encode categorical features", err)
		}
		_, width = encoded.Dims()
	}

	cols := width + len(p.numericNames)
	if cols == 0 {
		return nil, errors.NewModelError("no features to train on", nil)
	}
	X := mat.NewDense(n, cols, nil)
	if width > 0 {
		X.Slice(0, n, 0, width).(*mat.Dense).Copy(encoded)
	}
	for i := 0; i < n && len(p.numericNames) > 0; i++ {
		if i >= len(fs.Numeric) || len(fs.Numeric[i]) != len(p.numericNames) {
			return nil, errors.NewModelError("numeric feature row has the wrong width", nil).WithContext("row", i)
		}
		for k, v := range fs.Numeric[i] {
			X.Set(i, width+k, v)
		}
	}
	return X, nil
}
