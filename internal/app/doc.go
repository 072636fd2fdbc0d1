// Package app wires the pipeline stages together and runs them once.
//
// # Run Flow
//
// Application.Run executes, in order:
//
//	1. load       read the input workbook into a table
//	2. clean      drop duplicates and unlabeled rows, explode platforms
//	3. features   split numeric and categorical inputs, encode the target
//	4. fit        fit the one-hot encoder and the logistic classifier
//	5. score      append the purchase probability to every row
//	6. summarize  build the per-city summary
//	7. write      save the two-sheet workbook and the optional CSV mirror
//
// Each stage runs inside its own span and records its duration in the run
// metrics. A failing stage aborts the run; no partial output is written
// beyond what the failing stage already saved.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer application.Close(context.Background())
//	result, err := application.Run(ctx)
//
// # Error Handling
//
// Errors are returned to the caller unchanged so the command can log the
// typed error and pick the exit code. The package never calls os.Exit.
package app
