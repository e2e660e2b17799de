package detector_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
	"github.com/cardwatch/amlengine/internal/aml/detector"
	"github.com/cardwatch/amlengine/internal/aml/window"
)

func TestRoundAmountDetector_FiresOnFifthRoundAmount(t *testing.T) {
	store := window.NewMemoryStore()
	cfg := aml.DefaultDetectionConfig().RoundAmount
	d := detector.NewRoundAmountDetector(cfg, store, zap.NewNop().Sugar())

	now := time.Now()
	amounts := []int64{500, 1000, 1000, 2000, 2500}

	var activity *aml.SuspiciousActivity
	for i, amount := range amounts {
		var err error
		activity, err = d.Detect(context.Background(), txn(
			fmt.Sprintf("tx-%d", i), "entity-ra1", amount, now.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		if i < len(amounts)-1 {
			assert.Nil(t, activity, "transaction %d must not fire", i+1)
		}
	}

	require.NotNil(t, activity, "fifth round amount within 48h must fire")
	assert.Equal(t, aml.PatternRoundAmount, activity.Pattern)
	assert.Equal(t, 45, activity.RiskScore)
	assert.Equal(t, 0.6, activity.Confidence)
	assert.Equal(t, float64(5), activity.ActualValue)
	assert.Contains(t, activity.Evidence, "round_amounts")
}

func TestRoundAmountDetector_NonRoundAmountNeverCounts(t *testing.T) {
	store := window.NewMemoryStore()
	cfg := aml.DefaultDetectionConfig().RoundAmount
	d := detector.NewRoundAmountDetector(cfg, store, zap.NewNop().Sugar())

	now := time.Now()
	for i, amount := range []int64{500, 1000, 1000, 2000} {
		_, err := d.Detect(context.Background(), txn(
			fmt.Sprintf("tx-%d", i), "entity-ra2", amount, now))
		require.NoError(t, err)
	}

	// 1233 is not round: it neither enters the window nor fires.
	activity, err := d.Detect(context.Background(), txn("tx-odd", "entity-ra2", 1233, now))
	require.NoError(t, err)
	assert.Nil(t, activity)

	// The next round amount is the fifth entry and fires.
	activity, err = d.Detect(context.Background(), txn("tx-5", "entity-ra2", 2500, now))
	require.NoError(t, err)
	require.NotNil(t, activity)
	assert.Equal(t, float64(5), activity.ActualValue)
}

func TestRoundAmountDetector_StoreErrorPropagates(t *testing.T) {
	cfg := aml.DefaultDetectionConfig().RoundAmount
	d := detector.NewRoundAmountDetector(cfg, failingStore{}, zap.NewNop().Sugar())

	activity, err := d.Detect(context.Background(), txn("tx", "entity-ra3", 500, time.Now()))
	require.Error(t, err)
	assert.Nil(t, activity)
}
