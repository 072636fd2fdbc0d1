// Package config provides configuration management for Impulse Radar.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later sources
// overriding earlier ones:
//
//	1. Built-in defaults (Default)
//	2. A YAML file (-config flag, or impulseradar.yaml in the working directory)
//	3. Environment variables, optionally seeded from a .env file
//
// Command-line flags are applied by the caller on top of the loaded result.
//
// # Environment Variables
//
// All environment variables follow the pattern IMPULSE_<SECTION>_<FIELD>:
//
//	IMPULSE_PIPELINE_INPUT_PATH=data/Social_Media_Dataset.xlsx
//	IMPULSE_PIPELINE_OUTPUT_PATH=out/Impulse_Radar_Output.xlsx
//	IMPULSE_MODEL_MAX_ITER=1000
//	IMPULSE_LOGGING_LEVEL=debug
//	IMPULSE_TELEMETRY_TRACE_EXPORTER=file
//
// List values such as IMPULSE_PIPELINE_SCHEMA_NUMERIC_COLUMNS are comma
// separated.
//
// # Validation
//
// Validate runs struct-tag validation and additionally compiles the platform
// separator pattern. Failures are returned as CONFIG application errors.
package config
