package aml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDetectionConfig_IsValid(t *testing.T) {
	cfg := DefaultDetectionConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(9000), cfg.Structuring.SingleThreshold)
	assert.Equal(t, int64(10000), cfg.Structuring.DailyAggregate)
	assert.Equal(t, 10, cfg.Velocity.HourlyLimit)
	assert.Equal(t, 5, cfg.RoundAmount.ThresholdCount)
	assert.Equal(t, 3.0, cfg.PatternWeights[PatternStructuring])
	assert.Equal(t, 1.0, cfg.PatternWeights[PatternRoundAmount])
}

func TestLoadDetectionConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadDetectionConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDetectionConfig().Structuring, cfg.Structuring)
}

func TestLoadDetectionConfig_OverridesMergeOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detection.yaml")
	data := []byte("structuring:\n  single_threshold: 9500\n  daily_aggregate: 10000\n  min_transactions: 3\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadDetectionConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(9500), cfg.Structuring.SingleThreshold)
	// Untouched sections keep their defaults.
	assert.Equal(t, 10, cfg.Velocity.HourlyLimit)
}

func TestLoadDetectionConfig_RejectsInvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detection.yaml")
	data := []byte("velocity:\n  hourly_limit: -1\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := LoadDetectionConfig(path)
	assert.Error(t, err)
}

func TestDetectionConfig_ValidateCatchesBadWeights(t *testing.T) {
	cfg := DefaultDetectionConfig()
	cfg.PatternWeights[PatternStructuring] = 0
	assert.Error(t, cfg.Validate())
}
