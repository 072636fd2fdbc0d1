package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gota/gota/dataframe"

	"impulseradar/internal/config"
	"impulseradar/internal/dataprocessing"
	"impulseradar/internal/errors"
	"impulseradar/internal/exporter"
	"impulseradar/internal/infrastructure"
	"impulseradar/internal/model"
	"impulseradar/pkg/contracts"
	"impulseradar/pkg/contracts/domain"
)

// Stage names used for spans, metrics and logs
const (
	StageLoad      = "load"
	StageClean     = "clean"
	StageFeatures  = "features"
	StageFit       = "fit"
	StageScore     = "score"
	StageSummarize = "summarize"
	StageWrite     = "write"
)

// Application represents the main application container
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Tracing *infrastructure.TracingProvider
	Metrics *infrastructure.RunMetrics

	now func() time.Time
}

// RunResult describes a successful pipeline run
type RunResult struct {
	TraceID        string                    `json:"trace_id"`
	InputPath      string                    `json:"input_path"`
	OutputPath     string                    `json:"output_path"`
	SummaryCSVPath string                    `json:"summary_csv_path,omitempty"`
	Clean          dataprocessing.CleanStats `json:"clean"`
	RowsScored     int                       `json:"rows_scored"`
	Cities         int                       `json:"cities"`
	Fit            model.FitReport           `json:"fit"`
	Duration       time.Duration             `json:"duration"`
}

// NewApplication creates a new application instance. The configuration must
// already carry any command-line overrides.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	tracing, err := infrastructure.InitializeTracing(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return &Application{
		Config:  cfg,
		Logger:  infrastructure.WithComponent(logger, "app"),
		Tracing: tracing,
		Metrics: infrastructure.NewRunMetrics(),
		now:     time.Now,
	}, nil
}

// Run executes the pipeline once: load, clean, build features, fit, score,
// summarize and write. Any stage failure aborts the run.
func (a *Application) Run(ctx context.Context) (*RunResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	started := a.now()

	pipelineCfg := a.Config.Pipeline
	result := &RunResult{
		TraceID:        infrastructure.GetTraceID(ctx),
		InputPath:      pipelineCfg.InputPath,
		OutputPath:     pipelineCfg.OutputPath,
		SummaryCSVPath: pipelineCfg.SummaryCSVPath,
	}

	a.Logger.InfoContext(ctx, "Pipeline starting",
		slog.String("version", contracts.GetVersionString()),
		slog.String("input", pipelineCfg.InputPath),
		slog.String("output", pipelineCfg.OutputPath))

	err := a.run(ctx, result)
	result.Duration = a.now().Sub(started)

	if err == nil {
		a.Metrics.MarkSuccess(a.now())
	}
	if path := a.Config.Telemetry.MetricsTextfile; path != "" {
		if werr := a.Metrics.WriteTextfile(path); werr != nil {
			a.Logger.WarnContext(ctx, "Failed to write metrics textfile",
				slog.String("path", path),
				slog.String("error", werr.Error()))
		}
	}

	if err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Pipeline failed",
			slog.Duration("duration", result.Duration))
		return nil, err
	}

	a.Logger.InfoContext(ctx, "Pipeline finished",
		slog.String("output", result.OutputPath),
		slog.Int("rows_scored", result.RowsScored),
		slog.Int("cities", result.Cities),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (a *Application) run(ctx context.Context, result *RunResult) error {
	pipelineCfg := a.Config.Pipeline
	schema := pipelineCfg.Schema

	var table dataframe.DataFrame
	err := a.stage(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		table, err = dataprocessing.ParseFile(ctx, pipelineCfg.InputPath, dataprocessing.ParseOptions{
			SheetName: pipelineCfg.SheetName,
			Logger:    a.Logger,
		})
		if err != nil {
			return err
		}
		a.Metrics.RowsLoaded.Set(float64(table.Nrow()))
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{"rows": table.Nrow()})
		return nil
	})
	if err != nil {
		return err
	}

	err = a.stage(ctx, StageClean, func(ctx context.Context) error {
		cleaner, err := dataprocessing.NewCleaner(a.Logger, dataprocessing.CleanerConfig{
			TargetColumn:      schema.Target,
			PlatformColumn:    schema.Platform,
			PlatformSeparator: schema.PlatformSeparator,
		})
		if err != nil {
			return err
		}
		var stats dataprocessing.CleanStats
		table, stats, err = cleaner.Clean(ctx, table)
		if err != nil {
			return err
		}
		result.Clean = stats
		a.Metrics.RowsDropped.WithLabelValues("duplicate").Set(float64(stats.Duplicates))
		a.Metrics.RowsDropped.WithLabelValues("missing_target").Set(float64(stats.MissingTarget))
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"rows.duplicates":     stats.Duplicates,
			"rows.missing_target": stats.MissingTarget,
			"rows.exploded":       stats.Exploded,
		})
		return nil
	})
	if err != nil {
		return err
	}

	var features *domain.FeatureSet
	err = a.stage(ctx, StageFeatures, func(ctx context.Context) error {
		var err error
		features, err = dataprocessing.BuildFeatures(table, dataprocessing.FeatureSchema{
			TargetColumn:       schema.Target,
			NumericColumns:     schema.NumericColumns,
			CategoricalColumns: schema.CategoricalColumns,
			PositiveLabel:      schema.PositiveLabel,
			NegativeLabel:      schema.NegativeLabel,
		})
		return err
	})
	if err != nil {
		return err
	}

	pipeline := model.NewPipeline(model.LogisticConfig{
		C:         a.Config.Model.C,
		MaxIter:   a.Config.Model.MaxIter,
		Tolerance: a.Config.Model.Tolerance,
		Workers:   a.Config.Model.Workers,
	}, a.Logger)

	err = a.stage(ctx, StageFit, func(ctx context.Context) error {
		report, err := pipeline.Fit(ctx, features)
		if err != nil {
			return err
		}
		result.Fit = report
		a.Metrics.ObserveFit(report.LogLoss, report.Accuracy, report.AUC)
		a.Logger.InfoContext(ctx, "Classifier fitted",
			slog.Int("samples", report.Samples),
			slog.Int("features", report.Features),
			slog.Float64("log_loss", report.LogLoss),
			slog.Float64("accuracy", report.Accuracy),
			slog.Float64("auc", report.AUC))
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"model.samples":  report.Samples,
			"model.features": report.Features,
			"model.log_loss": report.LogLoss,
			"model.accuracy": report.Accuracy,
			"model.auc":      report.AUC,
		})
		return nil
	})
	if err != nil {
		return err
	}

	err = a.stage(ctx, StageScore, func(ctx context.Context) error {
		probs, err := pipeline.PredictProba(ctx, features)
		if err != nil {
			return err
		}
		table, err = dataprocessing.AppendProbabilities(table, schema.ProbabilityColumn, probs)
		if err != nil {
			return err
		}
		result.RowsScored = len(probs)
		a.Metrics.RowsScored.Set(float64(len(probs)))
		return nil
	})
	if err != nil {
		return err
	}

	var summaries []domain.CitySummary
	err = a.stage(ctx, StageSummarize, func(ctx context.Context) error {
		summarizer := dataprocessing.NewSummarizer(a.Logger, dataprocessing.SummarizerConfig{
			LocationColumn:    schema.Location,
			TargetColumn:      schema.Target,
			ProbabilityColumn: schema.ProbabilityColumn,
			PositiveLabel:     schema.PositiveLabel,
		})
		var err error
		summaries, err = summarizer.Summarize(ctx, table)
		if err != nil {
			return err
		}
		result.Cities = len(summaries)
		a.Metrics.Cities.Set(float64(len(summaries)))
		return nil
	})
	if err != nil {
		return err
	}

	return a.stage(ctx, StageWrite, func(ctx context.Context) error {
		writer := exporter.NewWorkbookWriter(a.Logger, exporter.WorkbookOptions{
			RowLevelSheet:    config.RowLevelSheet,
			CitySummarySheet: config.CitySummarySheet,
		})
		if err := writer.Write(ctx, pipelineCfg.OutputPath, table, summaries); err != nil {
			return err
		}
		if pipelineCfg.SummaryCSVPath != "" {
			return exporter.NewCSVWriter(a.Logger).WriteCitySummary(pipelineCfg.SummaryCSVPath, summaries)
		}
		return nil
	})
}

// stage runs fn inside a span, times it and logs the outcome. Failures are
// reported once, by Run.
func (a *Application) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := a.Tracing.StartStage(ctx, name)
	defer span.End()

	started := a.now()
	err := fn(ctx)
	elapsed := a.now().Sub(started)
	a.Metrics.ObserveStage(name, elapsed)

	if err != nil {
		err = errors.InStage(err, name)
		infrastructure.RecordError(ctx, err)
		a.Logger.DebugContext(ctx, "Stage failed",
			slog.String("stage", name),
			slog.Duration("duration", elapsed))
		return err
	}

	a.Logger.InfoContext(ctx, "Stage completed",
		slog.String("stage", name),
		slog.Duration("duration", elapsed))
	return nil
}

// Close flushes pending spans
func (a *Application) Close(ctx context.Context) error {
	if a.Tracing == nil {
		return nil
	}
	return a.Tracing.Shutdown(ctx)
}
