// Package shared holds code used by several packages that does not belong
// to any one pipeline stage.
//
// The testutil subpackage provides test helpers: an in-memory slog handler
// for asserting on log output, and workbook fixtures for the social media
// dataset.
//
//	logger, logs := testutil.NewTestLogger(t)
//	path := testutil.WriteDataset(t, testutil.Record(25, "Male", "FB,IG", "LA", "Yes"))
package shared
