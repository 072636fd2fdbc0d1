package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"impulseradar/internal/app"
	"impulseradar/internal/config"
	"impulseradar/internal/infrastructure"
	"impulseradar/pkg/contracts"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("impulseradar", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inPath := flags.String("in", "", "input workbook (defaults to "+config.DefaultInputPath+")")
	outPath := flags.String("out", "", "output workbook (defaults to "+config.DefaultOutputPath+")")
	configPath := flags.String("config", "", "YAML configuration file (defaults to "+config.DefaultConfigFile+" when present)")
	sheet := flags.String("sheet", "", "input sheet name (defaults to the first sheet)")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	// Command-line flags take precedence over the file and the environment.
	if *inPath != "" {
		cfg.Pipeline.InputPath = *inPath
	}
	if *outPath != "" {
		cfg.Pipeline.OutputPath = *outPath
	}
	if *sheet != "" {
		cfg.Pipeline.SheetName = *sheet
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize application", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Close(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	result, err := application.Run(ctx)
	if err != nil {
		return 1
	}

	fmt.Fprintf(stdout, "Finished! Deduplicated results saved to: %s\n", result.OutputPath)
	return 0
}
