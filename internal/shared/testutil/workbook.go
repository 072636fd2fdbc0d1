package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// DatasetHeader is the header row of the social media dataset
var DatasetHeader = []interface{}{
	"Age", "Gender", "Income (USD)", "Education Level", "Social Media Usage (Hours/Day)",
	"Social Media Platforms", "Influence Level", "City", "Purchase Decision",
}

// Record builds one dataset row. A nil platforms or decision leaves the
// cell empty.
func Record(age int, gender string, platforms interface{}, city string, decision interface{}) []interface{} {
	return []interface{}{age, gender, 1000 * age, "Bachelor", 2.5, platforms, "High", city, decision}
}

// WriteWorkbook saves rows into a one-sheet workbook inside a temporary
// directory and returns its path
func WriteWorkbook(t testing.TB, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "" {
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	} else {
		sheet = f.GetSheetName(0)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteDataset saves the dataset header followed by records
func WriteDataset(t testing.TB, records ...[]interface{}) string {
	t.Helper()
	return WriteWorkbook(t, "", append([][]interface{}{DatasetHeader}, records...))
}

// ReadSheet returns the raw cell values of sheet
func ReadSheet(t testing.TB, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}
