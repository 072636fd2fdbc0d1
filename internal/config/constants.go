package config

// Application constants
const (
	AppName   = "Impulse Radar"
	EnvPrefix = "IMPULSE"

	DefaultInputPath  = "Social_Media_Dataset.xlsx"
	DefaultOutputPath = "Impulse_Radar_Output.xlsx"
	DefaultLogPath    = "logs/impulseradar.log"
	DefaultConfigFile = "impulseradar.yaml"

	// Output sheet names
	RowLevelSheet    = "Row_Level"
	CitySummarySheet = "City_Summary"

	// Input schema
	TargetColumn          = "Purchase Decision"
	LocationColumn        = "City"
	PlatformColumn        = "Social Media Platforms"
	ProbabilityColumn     = "purchase_prob"
	PositiveLabel         = "Yes"
	NegativeLabel         = "No"
	PlatformSeparatorExpr = `[;,]\s*`

	// Classifier defaults
	DefaultMaxIter   = 1000
	DefaultC         = 1.0
	DefaultTolerance = 1e-4
)

// DefaultNumericColumns returns the numeric feature columns in model order.
func DefaultNumericColumns() []string {
	return []string{
		"Age",
		"Income (USD)",
		"Social Media Usage (Hours/Day)",
	}
}

// DefaultCategoricalColumns returns the categorical feature columns in model order.
func DefaultCategoricalColumns() []string {
	return []string{
		"Gender",
		"Education Level",
		"Influence Level",
		PlatformColumn,
		LocationColumn,
	}
}
