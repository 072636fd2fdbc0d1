package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"

	"impulseradar/internal/errors"
)

// ParseOptions controls how a workbook is read
type ParseOptions struct {
	// SheetName selects the sheet to read; empty means the first sheet.
	SheetName string
	Logger    *slog.Logger
}

// ParseFile reads a workbook sheet into a frame of string columns. The first
// row is the header; header names are stripped of surrounding whitespace.
// Empty cells are missing.
func ParseFile(ctx context.Context, filePath string, opts ParseOptions) (dataframe.DataFrame, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, errors.NewParsingError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	sheetName := opts.SheetName
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, errors.NewParsingError("workbook has no sheets", nil).WithContext("path", filePath)
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return dataframe.DataFrame{}, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheetName), err).
			WithContext("path", filePath)
	}
	rows = trimTrailingEmptyRows(rows)
	if len(rows) == 0 {
		return dataframe.DataFrame{}, errors.NewParsingError(fmt.Sprintf("sheet %q is empty", sheetName), nil).
			WithContext("path", filePath)
	}

	columns := normalizeHeaders(rows[0])
	values := make([][]string, len(columns))
	for j := range values {
		values[j] = make([]string, 0, len(rows)-1)
	}
	for _, raw := range rows[1:] {
		for j := range columns {
			v := NullValue
			if j < len(raw) && raw[j] != "" {
				v = raw[j]
			}
			values[j] = append(values[j], v)
		}
	}
	df, err := NewStringFrame(columns, values)
	if err != nil {
		return dataframe.DataFrame{}, errors.NewParsingError("failed to build table", err).
			WithContext("path", filePath)
	}

	logger.InfoContext(ctx, "Workbook loaded",
		slog.String("path", filePath),
		slog.String("sheet_name", sheetName),
		slog.Int("columns", df.Ncol()),
		slog.Int("rows", df.Nrow()))

	return df, nil
}

// normalizeHeaders strips header names, names blank headers after their
// position and suffixes repeated names with ".N".
func normalizeHeaders(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for j, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", j)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[j] = name
	}
	return names
}

func trimTrailingEmptyRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isEmptyRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
