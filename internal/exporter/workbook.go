package exporter

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"impulseradar/internal/errors"
	"impulseradar/pkg/contracts/domain"
)

// WorkbookOptions names the output sheets
type WorkbookOptions struct {
	RowLevelSheet    string
	CitySummarySheet string
}

// WorkbookWriter writes the scored rows and the city summary into one
// workbook, one sheet each.
type WorkbookWriter struct {
	options WorkbookOptions
	logger  *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger, options WorkbookOptions) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if options.RowLevelSheet == "" {
		options.RowLevelSheet = "Row_Level"
	}
	if options.CitySummarySheet == "" {
		options.CitySummarySheet = "City_Summary"
	}
	return &WorkbookWriter{options: options, logger: logger.With(slog.String("component", "exporter"))}
}

// Write saves rows and summaries to path, replacing any existing file
func (w *WorkbookWriter) Write(ctx context.Context, path string, rows dataframe.DataFrame, summaries []domain.CitySummary) error {
	if rows.Err != nil {
		return errors.NewAppError(errors.ErrTypeValidation, "no rows to write", rows.Err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), w.options.RowLevelSheet); err != nil {
		return errors.NewStorageError("failed to name row-level sheet", err)
	}
	if _, err := f.NewSheet(w.options.CitySummarySheet); err != nil {
		return errors.NewStorageError("failed to create summary sheet", err)
	}

	if err := w.writeRows(ctx, f, rows); err != nil {
		return err
	}
	if err := w.writeSummary(f, summaries); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewStorageError("failed to create output directory", err).
				WithContext("path", dir)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save workbook", err).
			WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "workbook written",
		slog.String("path", path),
		slog.Int("rows", rows.Nrow()),
		slog.Int("cities", len(summaries)))
	return nil
}

func (w *WorkbookWriter) writeRows(ctx context.Context, f *excelize.File, rows dataframe.DataFrame) error {
	sheet := w.options.RowLevelSheet
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.NewStorageError("failed to open row-level sheet", err)
	}

	names := rows.Names()
	cols := make([]series.Series, len(names))
	header := make([]interface{}, len(names))
	for j, name := range names {
		header[j] = name
		cols[j] = rows.Col(name)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.NewStorageError("failed to write row-level header", err)
	}

	values := make([]interface{}, len(cols))
	for i := 0; i < rows.Nrow(); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j, col := range cols {
			values[j] = cellValue(col.Elem(i))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("row index out of range", err).WithContext("row", i)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return errors.NewStorageError("failed to write row", err).WithContext("row", i)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.NewStorageError("failed to flush row-level sheet", err)
	}
	return nil
}

func (w *WorkbookWriter) writeSummary(f *excelize.File, summaries []domain.CitySummary) error {
	sheet := w.options.CitySummarySheet
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.NewStorageError("failed to open summary sheet", err)
	}

	headers := domain.CitySummaryHeaders()
	header := make([]interface{}, len(headers))
	for j, name := range headers {
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.NewStorageError("failed to write summary header", err)
	}

	for i, s := range summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("summary index out of range", err).WithContext("row", i)
		}
		if err := sw.SetRow(cell, s.Values()); err != nil {
			return errors.NewStorageError("failed to write summary row", err).WithContext("city", s.City)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.NewStorageError("failed to flush summary sheet", err)
	}
	return nil
}

// cellValue converts an element into the value excelize stores: nil for a
// missing value, the number for numeric columns, and for text a number only
// when it is a plain decimal.
func cellValue(e series.Element) interface{} {
	if e.IsNA() {
		return nil
	}
	switch e.Type() {
	case series.Float:
		v := e.Float()
		if math.IsInf(v, 0) {
			return e.String()
		}
		return v
	case series.Int:
		if n, err := e.Int(); err == nil {
			return int64(n)
		}
	case series.Bool:
		if b, err := e.Bool(); err == nil {
			return b
		}
	}
	text := e.String()
	if !looksNumeric(text) {
		return text
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return text
	}
	return f
}

// looksNumeric accepts optionally signed decimals with an optional exponent.
// Values with a leading zero such as postal codes stay text.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	body := strings.TrimPrefix(s, "-")
	if body == "" {
		return false
	}
	if len(body) > 1 && body[0] == '0' && body[1] != '.' && body[1] != 'e' && body[1] != 'E' {
		return false
	}
	digits, dot, exp := 0, false, false
	for k := 0; k < len(body); k++ {
		switch ch := body[k]; {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '.' && !dot && !exp:
			dot = true
		case (ch == 'e' || ch == 'E') && !exp && digits > 0:
			exp = true
			if k+1 < len(body) && (body[k+1] == '+' || body[k+1] == '-') {
				k++
			}
			if k+1 >= len(body) {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

