package dataprocessing

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"impulseradar/internal/errors"
)

// CleanerConfig names the columns the cleaner operates on
type CleanerConfig struct {
	TargetColumn      string
	PlatformColumn    string
	PlatformSeparator string
}

// CleanStats reports what each cleaning step did
type CleanStats struct {
	Loaded        int `json:"loaded"`
	Duplicates    int `json:"duplicates"`
	MissingTarget int `json:"missing_target"`
	Exploded      int `json:"exploded"`
}

// Cleaner removes duplicates and unlabeled rows, then expands the
// multi-valued platform column into one row per platform.
type Cleaner struct {
	logger         *slog.Logger
	targetColumn   string
	platformColumn string
	separator      *regexp.Regexp
}

// NewCleaner creates a cleaner, compiling the platform separator pattern
func NewCleaner(logger *slog.Logger, cfg CleanerConfig) (*Cleaner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sep, err := regexp.Compile(cfg.PlatformSeparator)
	if err != nil {
		return nil, errors.NewConfigError("invalid platform separator pattern", err).
			WithContext("pattern", cfg.PlatformSeparator)
	}
	return &Cleaner{
		logger:         logger,
		targetColumn:   cfg.TargetColumn,
		platformColumn: cfg.PlatformColumn,
		separator:      sep,
	}, nil
}

// Clean runs deduplication, missing-target removal and platform explode in
// that order. The input frame is not modified.
func (c *Cleaner) Clean(ctx context.Context, df dataframe.DataFrame) (dataframe.DataFrame, CleanStats, error) {
	stats := CleanStats{Loaded: df.Nrow()}

	if err := requireColumns(df, c.targetColumn, c.platformColumn); err != nil {
		return dataframe.DataFrame{}, stats, err
	}

	deduped, err := Deduplicate(df)
	if err != nil {
		return dataframe.DataFrame{}, stats, err
	}
	stats.Duplicates = df.Nrow() - deduped.Nrow()

	labeled, err := DropMissing(deduped, c.targetColumn)
	if err != nil {
		return dataframe.DataFrame{}, stats, err
	}
	stats.MissingTarget = deduped.Nrow() - labeled.Nrow()

	exploded, err := ExplodeColumn(labeled, c.platformColumn, c.separator)
	if err != nil {
		return dataframe.DataFrame{}, stats, err
	}
	stats.Exploded = exploded.Nrow()

	c.logger.InfoContext(ctx, "Cleaning complete",
		slog.Int("loaded", stats.Loaded),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("missing_target", stats.MissingTarget),
		slog.Int("exploded_rows", stats.Exploded))

	return exploded, stats, nil
}

// Deduplicate returns a frame without exact duplicate rows. The first
// occurrence is kept and row order is preserved.
func Deduplicate(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	cols := columnsOf(df)
	seen := make(map[string]struct{}, df.Nrow())
	rows := make([]int, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		key := rowKey(cols, i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, i)
	}
	out, err := subset(df, rows)
	if err != nil {
		return dataframe.DataFrame{}, errors.NewAppError(errors.ErrTypeValidation, "failed to drop duplicate rows", err)
	}
	return out, nil
}

// rowKey encodes row i unambiguously: missing flag and value length
// precede each value.
func rowKey(cols []series.Series, i int) string {
	var b strings.Builder
	for _, col := range cols {
		e := col.Elem(i)
		if e.IsNA() {
			b.WriteString("N;")
			continue
		}
		v := e.String()
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// DropMissing returns a frame without the rows whose column value is missing
func DropMissing(df dataframe.DataFrame, column string) (dataframe.DataFrame, error) {
	if err := requireColumns(df, column); err != nil {
		return dataframe.DataFrame{}, err
	}
	present := 0
	for _, missing := range df.Col(column).IsNaN() {
		if !missing {
			present++
		}
	}
	if present == 0 {
		return emptyLike(df), nil
	}

	out := df.Filter(dataframe.F{
		Colname:    column,
		Comparator: series.CompFunc,
		Comparando: func(e series.Element) bool { return !e.IsNA() },
	})
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.NewAppError(errors.ErrTypeValidation, "failed to drop unlabeled rows", out.Err).
			WithContext("column", column)
	}
	return out, nil
}

// ExplodeColumn splits the column on sep and emits one row per token in
// place of the original row. Missing values are treated as empty strings, so
// a row with no value still yields exactly one row holding "".
func ExplodeColumn(df dataframe.DataFrame, column string, sep *regexp.Regexp) (dataframe.DataFrame, error) {
	if err := requireColumns(df, column); err != nil {
		return dataframe.DataFrame{}, err
	}
	cols := columnsOf(df)
	target := df.Col(column)
	values := make([][]string, len(cols))
	for i := 0; i < df.Nrow(); i++ {
		for _, token := range sep.Split(cellText(target.Elem(i)), -1) {
			for j, col := range cols {
				if col.Name == column {
					values[j] = append(values[j], token)
					continue
				}
				values[j] = append(values[j], rawText(col.Elem(i)))
			}
		}
	}

	rebuilt := make([]series.Series, len(cols))
	for j, col := range cols {
		if values[j] == nil {
			values[j] = []string{}
		}
		typ := col.Type()
		if col.Name == column {
			typ = series.String
		}
		rebuilt[j] = series.New(values[j], typ, col.Name)
	}
	out := dataframe.New(rebuilt...)
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.NewAppError(errors.ErrTypeValidation, "failed to explode column", out.Err).
			WithContext("column", column)
	}
	return out, nil
}

func columnsOf(df dataframe.DataFrame) []series.Series {
	names := df.Names()
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = df.Col(name)
	}
	return cols
}
