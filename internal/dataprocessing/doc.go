// Package dataprocessing turns a raw social-media usage workbook into model
// inputs and summaries.
//
// # Data Flow
//
//	Workbook → ParseFile → DataFrame → Cleaner → BuildFeatures → (model) → AppendProbabilities → Summarizer
//
// Tables are gota data frames of string columns; ParseFile marks empty cells
// as missing elements. The scored probability column is a float series.
//
// Cleaning removes exact duplicate rows, drops rows without a purchase
// decision, and explodes the platform column so a user listing
// "Facebook; Instagram" becomes two rows that differ only in that column.
//
// # Error Handling
//
// Functions return application errors from internal/errors: PARSING for
// unreadable workbooks or malformed numeric cells, VALIDATION for missing
// columns.
package dataprocessing
