package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"impulseradar/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Model     ModelConfig     `yaml:"model" envconfig:"MODEL"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig contains the input/output locations and the input schema
type PipelineConfig struct {
	InputPath      string       `yaml:"input_path" envconfig:"INPUT_PATH" validate:"required"`
	OutputPath     string       `yaml:"output_path" envconfig:"OUTPUT_PATH" validate:"required"`
	SheetName      string       `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	SummaryCSVPath string       `yaml:"summary_csv_path" envconfig:"SUMMARY_CSV_PATH"`
	Schema         SchemaConfig `yaml:"schema" envconfig:"SCHEMA"`
}

// SchemaConfig names the columns the pipeline reads
type SchemaConfig struct {
	Target             string   `yaml:"target" envconfig:"TARGET" validate:"required"`
	Location           string   `yaml:"location" envconfig:"LOCATION" validate:"required"`
	Platform           string   `yaml:"platform" envconfig:"PLATFORM" validate:"required"`
	PlatformSeparator  string   `yaml:"platform_separator" envconfig:"PLATFORM_SEPARATOR" validate:"required"`
	NumericColumns     []string `yaml:"numeric_columns" envconfig:"NUMERIC_COLUMNS" validate:"required,min=1,dive,required"`
	CategoricalColumns []string `yaml:"categorical_columns" envconfig:"CATEGORICAL_COLUMNS" validate:"required,min=1,dive,required"`
	ProbabilityColumn  string   `yaml:"probability_column" envconfig:"PROBABILITY_COLUMN" validate:"required"`
	PositiveLabel      string   `yaml:"positive_label" envconfig:"POSITIVE_LABEL" validate:"required"`
	NegativeLabel      string   `yaml:"negative_label" envconfig:"NEGATIVE_LABEL" validate:"required,nefield=PositiveLabel"`
}

// ModelConfig contains classifier settings
type ModelConfig struct {
	MaxIter   int     `yaml:"max_iter" envconfig:"MAX_ITER" validate:"min=1"`
	C         float64 `yaml:"c" envconfig:"C" validate:"gt=0"`
	Tolerance float64 `yaml:"tolerance" envconfig:"TOLERANCE" validate:"gt=0"`
	// Workers bounds the goroutines evaluating the loss; 0 means one per CPU.
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"min=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig contains tracing and metrics output settings
type TelemetryConfig struct {
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout file"`
	TraceFile       string `yaml:"trace_file" envconfig:"TRACE_FILE" validate:"required_if=TraceExporter file"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputPath:  DefaultInputPath,
			OutputPath: DefaultOutputPath,
			Schema: SchemaConfig{
				Target:             TargetColumn,
				Location:           LocationColumn,
				Platform:           PlatformColumn,
				PlatformSeparator:  PlatformSeparatorExpr,
				NumericColumns:     DefaultNumericColumns(),
				CategoricalColumns: DefaultCategoricalColumns(),
				ProbabilityColumn:  ProbabilityColumn,
				PositiveLabel:      PositiveLabel,
				NegativeLabel:      NegativeLabel,
			},
		},
		Model: ModelConfig{
			MaxIter:   DefaultMaxIter,
			C:         DefaultC,
			Tolerance: DefaultTolerance,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogPath,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first when present. An empty
// path falls back to DefaultConfigFile if that file exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NewConfigError("failed to load .env file", err)
	}

	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, errors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	// Fields without a matching variable are left untouched.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate normalizes and checks the configuration
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Telemetry.TraceExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.TraceExporter))

	if err := validator.New().Struct(c); err != nil {
		return errors.NewConfigError("config validation failed", err)
	}

	if _, err := regexp.Compile(c.Pipeline.Schema.PlatformSeparator); err != nil {
		return errors.NewConfigError("invalid platform separator pattern", err).
			WithContext("pattern", c.Pipeline.Schema.PlatformSeparator)
	}

	seen := make(map[string]struct{})
	for _, col := range c.Pipeline.Schema.FeatureColumns() {
		if col == c.Pipeline.Schema.Target {
			return errors.NewConfigError(fmt.Sprintf("target column %q cannot be a feature", col), nil)
		}
		if _, dup := seen[col]; dup {
			return errors.NewConfigError(fmt.Sprintf("feature column %q is listed twice", col), nil)
		}
		seen[col] = struct{}{}
	}

	if c.Pipeline.InputPath == c.Pipeline.OutputPath {
		return errors.NewConfigError(fmt.Sprintf("output path %q would overwrite the input", c.Pipeline.OutputPath), nil)
	}
	return nil
}

// FeatureColumns returns every column the model reads, numeric first.
func (s SchemaConfig) FeatureColumns() []string {
	cols := make([]string, 0, len(s.NumericColumns)+len(s.CategoricalColumns))
	cols = append(cols, s.NumericColumns...)
	return append(cols, s.CategoricalColumns...)
}
