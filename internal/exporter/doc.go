// Package exporter writes the pipeline results.
//
// WorkbookWriter saves the scored rows and the city summary into a two-sheet
// workbook using excelize stream writers. CSVWriter writes the optional CSV
// mirror of the city summary with a UTF-8 BOM for Excel compatibility.
//
// Example usage:
//
//	w := exporter.NewWorkbookWriter(logger, exporter.WorkbookOptions{})
//	err := w.Write(ctx, "Impulse_Radar_Output.xlsx", rows, summaries)
package exporter
