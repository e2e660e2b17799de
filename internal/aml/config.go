// Detection threshold configuration for the pattern engine. Thresholds are
// tunable without redeploying detector logic; the scoring formulas stay in code.
package aml

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DetectionConfig holds every numeric threshold used by the detectors,
// the aggregator weights and the cache/fan-out timing knobs.
type DetectionConfig struct {
	Version     string            `yaml:"version"`
	Structuring StructuringConfig `yaml:"structuring"`
	RapidMove   RapidMoveConfig   `yaml:"rapid_movement"`
	Velocity    VelocityConfig    `yaml:"velocity"`
	RoundAmount RoundAmountConfig `yaml:"round_amount"`

	// Aggregation weights by pattern type
	PatternWeights map[PatternType]float64 `yaml:"pattern_weights"`
	// Compounding increment applied per additional simultaneous finding
	CompoundingStep float64 `yaml:"compounding_step"`

	AnalysisTimeout time.Duration `yaml:"analysis_timeout"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
}

// StructuringConfig defines sub-reporting-threshold clustering detection
type StructuringConfig struct {
	SingleThreshold int64         `yaml:"single_threshold"` // minor units
	DailyAggregate  int64         `yaml:"daily_aggregate"`  // minor units
	MinTransactions int           `yaml:"min_transactions"`
	Window          time.Duration `yaml:"window"`
}

// RapidMoveConfig defines rapid fund movement detection
type RapidMoveConfig struct {
	AmountThreshold  int64         `yaml:"amount_threshold"` // minor units
	MinTransactions  int           `yaml:"min_transactions"`
	TimeWindow       time.Duration `yaml:"time_window"`
	MaxAvgGapMinutes float64       `yaml:"max_avg_gap_minutes"`
}

// VelocityConfig defines hourly frequency/volume limits
type VelocityConfig struct {
	HourlyLimit   int           `yaml:"hourly_limit"`
	AmountPerHour int64         `yaml:"amount_per_hour"` // minor units
	Window        time.Duration `yaml:"window"`
}

// RoundAmountConfig defines round-amount clustering detection
type RoundAmountConfig struct {
	ThresholdCount int           `yaml:"threshold_count"`
	Window         time.Duration `yaml:"window"`
	CommonValues   []int64       `yaml:"common_values"` // minor units
}

// DefaultDetectionConfig returns the built-in threshold set.
func DefaultDetectionConfig() *DetectionConfig {
	return &DetectionConfig{
		Version: "v1",
		Structuring: StructuringConfig{
			SingleThreshold: 9000,
			DailyAggregate:  10000,
			MinTransactions: 3,
			Window:          24 * time.Hour,
		},
		RapidMove: RapidMoveConfig{
			AmountThreshold:  5000,
			MinTransactions:  5,
			TimeWindow:       60 * time.Minute,
			MaxAvgGapMinutes: 10,
		},
		Velocity: VelocityConfig{
			HourlyLimit:   10,
			AmountPerHour: 25000,
			Window:        time.Hour,
		},
		RoundAmount: RoundAmountConfig{
			ThresholdCount: 5,
			Window:         48 * time.Hour,
			CommonValues:   []int64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
		},
		PatternWeights: map[PatternType]float64{
			PatternStructuring:      3.0,
			PatternRapidMovement:    2.5,
			PatternUnusualVelocity:  2.0,
			PatternHighRiskMerchant: 1.5,
			PatternRoundAmount:      1.0,
		},
		CompoundingStep: 0.15,
		AnalysisTimeout: 300 * time.Millisecond,
		CacheTTL:        5 * time.Minute,
	}
}

// LoadDetectionConfig reads a DetectionConfig from a YAML file, falling back
// to defaults for the file-not-found case.
func LoadDetectionConfig(path string) (*DetectionConfig, error) {
	if path == "" {
		return DefaultDetectionConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDetectionConfig(), nil
		}
		return nil, fmt.Errorf("error reading detection config: %w", err)
	}

	cfg := DefaultDetectionConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing detection config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("detection config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the threshold set for internal consistency.
func (c *DetectionConfig) Validate() error {
	if c.Structuring.SingleThreshold <= 0 {
		return fmt.Errorf("structuring single_threshold must be positive")
	}
	if c.Structuring.DailyAggregate <= 0 {
		return fmt.Errorf("structuring daily_aggregate must be positive")
	}
	if c.Structuring.MinTransactions <= 0 {
		return fmt.Errorf("structuring min_transactions must be positive")
	}
	if c.RapidMove.AmountThreshold <= 0 {
		return fmt.Errorf("rapid_movement amount_threshold must be positive")
	}
	if c.RapidMove.MaxAvgGapMinutes <= 0 {
		return fmt.Errorf("rapid_movement max_avg_gap_minutes must be positive")
	}
	if c.Velocity.HourlyLimit <= 0 {
		return fmt.Errorf("velocity hourly_limit must be positive")
	}
	if c.Velocity.AmountPerHour <= 0 {
		return fmt.Errorf("velocity amount_per_hour must be positive")
	}
	if c.RoundAmount.ThresholdCount <= 0 {
		return fmt.Errorf("round_amount threshold_count must be positive")
	}
	for pattern, w := range c.PatternWeights {
		if w <= 0 {
			return fmt.Errorf("pattern weight for %s must be positive", pattern)
		}
	}
	if c.CompoundingStep < 0 {
		return fmt.Errorf("compounding_step must not be negative")
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("analysis_timeout must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive")
	}
	return nil
}
