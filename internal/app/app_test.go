package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impulseradar/internal/config"
	"impulseradar/internal/errors"
	"impulseradar/internal/shared/testutil"
)

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Pipeline.InputPath = input
	cfg.Pipeline.OutputPath = filepath.Join(dir, "out", "result.xlsx")
	cfg.Model.Workers = 2
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()

	application, _ := newLoggedApp(t, cfg)
	return application
}

func newLoggedApp(t *testing.T, cfg *config.Config) (*Application, *testutil.CaptureHandler) {
	t.Helper()

	logger, logs := testutil.NewTestLogger(t)
	application, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close(context.Background()) })
	return application, logs
}

func TestRun_ExplodesAndSummarizes(t *testing.T) {
	input := testutil.WriteDataset(t,
		testutil.Record(25, "Male", "FB,IG", "LA", "Yes"),
		testutil.Record(41, "Female", "", "LA", "No"),
	)
	cfg := testConfig(t, input)

	application, logs := newLoggedApp(t, cfg)
	result, err := application.Run(context.Background())
	require.NoError(t, err)
	testutil.AssertNoErrors(t, logs)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Pipeline finished")
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Classifier fitted")
	assert.Len(t, logs.Find(slog.LevelInfo, "Stage completed"), 7)

	assert.Equal(t, 3, result.RowsScored)
	assert.Equal(t, 1, result.Cities)
	assert.Equal(t, 2, result.Clean.Loaded)
	assert.NotEmpty(t, result.TraceID)

	rows := testutil.ReadSheet(t, cfg.Pipeline.OutputPath, config.RowLevelSheet)
	require.Len(t, rows, 4)
	assert.Equal(t, "purchase_prob", rows[0][len(rows[0])-1])
	assert.Equal(t, "FB", rows[1][5])
	assert.Equal(t, "IG", rows[2][5])
	assert.Equal(t, "Yes", rows[1][8])
	assert.Equal(t, "Yes", rows[2][8])
	assert.Equal(t, "No", rows[3][8])

	summary := testutil.ReadSheet(t, cfg.Pipeline.OutputPath, config.CitySummarySheet)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"City", "Total_Users", "Avg_Purchase_Prob", "Purchases_Yes"}, summary[0])
	assert.Equal(t, "LA", summary[1][0])
	assert.Equal(t, "3", summary[1][1])
	assert.Equal(t, "2", summary[1][3])
}

func TestRun_CleaningProperties(t *testing.T) {
	input := testutil.WriteDataset(t,
		testutil.Record(22, "Male", "TikTok", "LA", "Yes"),
		testutil.Record(22, "Male", "TikTok", "LA", "Yes"),
		testutil.Record(35, "Female", "Facebook; Instagram", "NY", "No"),
		testutil.Record(29, "Female", "Instagram", "NY", nil),
		testutil.Record(58, "Male", "Facebook", "Chicago", "No"),
		testutil.Record(27, "Female", "TikTok,Instagram", "Chicago", "Yes"),
	)
	cfg := testConfig(t, input)
	dir := t.TempDir()
	cfg.Pipeline.SummaryCSVPath = filepath.Join(dir, "summary.csv")
	cfg.Telemetry.MetricsTextfile = filepath.Join(dir, "metrics", "impulseradar.prom")
	cfg.Telemetry.TraceExporter = "file"
	cfg.Telemetry.TraceFile = filepath.Join(dir, "traces.json")

	application := newTestApp(t, cfg)
	result, err := application.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, result.Clean.Loaded)
	assert.Equal(t, 1, result.Clean.Duplicates)
	assert.Equal(t, 1, result.Clean.MissingTarget)
	// 4 labeled rows, two of which hold two platforms.
	assert.Equal(t, 6, result.RowsScored)

	rows := testutil.ReadSheet(t, cfg.Pipeline.OutputPath, config.RowLevelSheet)
	require.Len(t, rows, 7)
	for _, row := range rows[1:] {
		assert.NotEmpty(t, row[8], "target must never be empty")
		prob, err := strconv.ParseFloat(row[9], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, prob, 0.0)
		assert.LessOrEqual(t, prob, 1.0)
	}
	assert.Equal(t, "Facebook", rows[2][5])
	assert.Equal(t, "Instagram", rows[3][5])

	summary := testutil.ReadSheet(t, cfg.Pipeline.OutputPath, config.CitySummarySheet)
	require.Len(t, summary, 4)
	prev := 2.0
	total := 0
	for _, row := range summary[1:] {
		avg, err := strconv.ParseFloat(row[2], 64)
		require.NoError(t, err)
		assert.LessOrEqual(t, avg, prev, "cities must be ordered by average descending")
		prev = avg
		n, err := strconv.Atoi(row[1])
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, result.RowsScored, total)

	csvContent, err := os.ReadFile(cfg.Pipeline.SummaryCSVPath)
	require.NoError(t, err)
	assert.Contains(t, string(csvContent), "City,Total_Users,Avg_Purchase_Prob,Purchases_Yes")

	metrics, err := os.ReadFile(cfg.Telemetry.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "impulseradar_rows_scored 6")
	assert.Contains(t, string(metrics), `impulseradar_rows_dropped{reason="duplicate"} 1`)
	assert.Contains(t, string(metrics), "impulseradar_last_success_timestamp_seconds")
	assert.Contains(t, string(metrics), `impulseradar_model_fit{measure="auc"}`)

	require.NoError(t, application.Close(context.Background()))
	traces, err := os.ReadFile(cfg.Telemetry.TraceFile)
	require.NoError(t, err)
	for _, stage := range []string{StageLoad, StageClean, StageFeatures, StageFit, StageScore, StageSummarize, StageWrite} {
		assert.Contains(t, string(traces), `"Name": "`+stage+`"`)
	}
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T) *config.Config
		wantType  errors.ErrorType
		wantStage string
	}{
		{
			name: "missing input",
			setup: func(t *testing.T) *config.Config {
				return testConfig(t, filepath.Join(t.TempDir(), "missing.xlsx"))
			},
			wantType:  errors.ErrTypeParsing,
			wantStage: StageLoad,
		},
		{
			name: "single class",
			setup: func(t *testing.T) *config.Config {
				return testConfig(t, testutil.WriteDataset(t,
					testutil.Record(22, "Male", "TikTok", "LA", "Yes"),
					testutil.Record(35, "Female", "Facebook", "NY", "Yes"),
				))
			},
			wantType:  errors.ErrTypeModel,
			wantStage: StageFit,
		},
		{
			name: "unknown label",
			setup: func(t *testing.T) *config.Config {
				return testConfig(t, testutil.WriteDataset(t,
					testutil.Record(22, "Male", "TikTok", "LA", "Yes"),
					testutil.Record(35, "Female", "Facebook", "NY", "Maybe"),
				))
			},
			wantType: errors.ErrTypeModel,
		},
		{
			name: "missing column",
			setup: func(t *testing.T) *config.Config {
				cfg := testConfig(t, testutil.WriteDataset(t,
					testutil.Record(22, "Male", "TikTok", "LA", "Yes"),
				))
				cfg.Pipeline.Schema.NumericColumns = []string{"Age", "Height"}
				return cfg
			},
			wantType: errors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.setup(t)
			application, logs := newLoggedApp(t, cfg)
			_, err := application.Run(context.Background())
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
			testutil.AssertLogContains(t, logs, slog.LevelDebug, "Stage failed")

			var appErr *errors.AppError
			require.ErrorAs(t, err, &appErr)
			if tt.wantStage != "" {
				assert.Equal(t, tt.wantStage, appErr.Stage)
			} else {
				assert.NotEmpty(t, appErr.Stage)
			}

			var errorLogs []testutil.LogRecord
			for _, r := range logs.Records() {
				if r.Level >= slog.LevelError {
					errorLogs = append(errorLogs, r)
				}
			}
			require.Len(t, errorLogs, 1, "a failure is logged once")
			failed := logs.Find(slog.LevelError, "Pipeline failed")
			require.Len(t, failed, 1)
			assert.Equal(t, string(tt.wantType), failed[0].Attrs["error_type"])
			assert.Equal(t, appErr.Stage, failed[0].Attrs["stage"])

			_, statErr := os.Stat(cfg.Pipeline.OutputPath)
			assert.True(t, os.IsNotExist(statErr), "no output on failure")
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	input := testutil.WriteDataset(t, testutil.Record(22, "Male", "TikTok", "LA", "Yes"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestApp(t, testConfig(t, input)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	_, err := NewApplication(nil, nil)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Model.C = 0
	_, err = NewApplication(cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}
