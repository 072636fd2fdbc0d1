package model

import (
	"context"
	"fmt"
	"math"
	"runtime"

	linearmodel "github.com/ezoic/scigo/sklearn/linear_model"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// minChunkRows keeps tiny inputs on a single goroutine
const minChunkRows = 256

// LogisticConfig holds the classifier hyperparameters
type LogisticConfig struct {
	// C is the inverse L2 regularization strength.
	C float64
	// MaxIter bounds the L-BFGS major iterations.
	MaxIter int
	// Tolerance is the gradient threshold that ends the fit.
	Tolerance float64
	// Workers bounds the goroutines used for scoring; 0 means one per CPU.
	Workers int
}

// DefaultLogisticConfig returns the lbfgs defaults with the raised iteration cap
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		C:         1.0,
		MaxIter:   1000,
		Tolerance: 1e-4,
		Workers:   runtime.NumCPU(),
	}
}

// Classifier is a binary logistic regression backed by scigo's lbfgs solver
type Classifier struct {
	config LogisticConfig
	lr     *linearmodel.LogisticRegression
}

// NewClassifier creates an unfitted classifier. Zero fields fall back to
// the defaults.
func NewClassifier(cfg LogisticConfig) *Classifier {
	def := DefaultLogisticConfig()
	if cfg.C <= 0 {
		cfg.C = def.C
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = def.MaxIter
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &Classifier{config: cfg}
}

// Fit trains on X with 0/1 targets y. scigo minimizes the mean log-loss plus
// ||w||²/(2C), so C is scaled by the sample count to fit
// C·Σloss + ||w||²/2. The intercept is not penalized.
func (c *Classifier) Fit(ctx context.Context, X *mat.Dense, y []float64) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return fmt.Errorf("design matrix is empty (%dx%d)", n, p)
	}
	if len(y) != n {
		return fmt.Errorf("got %d targets for %d rows", len(y), n)
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("target %v at row %d is not 0 or 1", v, i)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lr := linearmodel.NewLogisticRegression(
		linearmodel.WithLRSolver("lbfgs"),
		linearmodel.WithLRC(c.config.C*float64(n)),
		linearmodel.WithLRMaxIter(c.config.MaxIter),
		linearmodel.WithLRTol(c.config.Tolerance),
		linearmodel.WithLRRandomState(0),
	)
	if err := lr.Fit(X, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.lr = lr
	return nil
}

// Fitted reports whether Fit has succeeded
func (c *Classifier) Fitted() bool {
	return c.lr != nil
}

// Params returns the solver hyperparameters as scigo reports them
func (c *Classifier) Params() map[string]interface{} {
	if c.lr == nil {
		return nil
	}
	return c.lr.GetParams()
}

// Accuracy returns the fraction of rows whose thresholded prediction matches y
func (c *Classifier) Accuracy(X *mat.Dense, y []float64) (float64, error) {
	if c.lr == nil {
		return 0, fmt.Errorf("classifier is not fitted")
	}
	n, _ := X.Dims()
	if len(y) != n {
		return 0, fmt.Errorf("got %d targets for %d rows", len(y), n)
	}
	return c.lr.Score(X, mat.NewDense(n, 1, append([]float64(nil), y...))), nil
}

// PredictProba returns P(y=1) for every row of X. Rows are scored in
// chunks on up to Workers goroutines; the result is in row order.
func (c *Classifier) PredictProba(ctx context.Context, X *mat.Dense) ([]float64, error) {
	if c.lr == nil {
		return nil, fmt.Errorf("classifier is not fitted")
	}
	n, p := X.Dims()
	out := make([]float64, n)
	if n == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Workers)
	for _, ch := range chunks(n, c.config.Workers) {
		lo, hi := ch[0], ch[1]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			proba, err := c.lr.PredictProba(X.Slice(lo, hi, 0, p))
			if err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				v := proba.At(i-lo, 1)
				if math.IsNaN(v) {
					return fmt.Errorf("probability at row %d is NaN", i)
				}
				out[i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// chunks splits [0,n) into at most workers contiguous ranges
func chunks(n, workers int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	if limit := (n + minChunkRows - 1) / minChunkRows; workers > limit {
		workers = limit
	}
	size := (n + workers - 1) / workers
	out := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		out = append(out, [2]int{lo, hi})
	}
	return out
}
