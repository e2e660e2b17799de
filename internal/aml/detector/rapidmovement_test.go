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
)

func historyRecords(entity string, amounts []int64, start time.Time, gap time.Duration) []aml.HistoryRecord {
	records := make([]aml.HistoryRecord, 0, len(amounts))
	for i, amount := range amounts {
		records = append(records, aml.HistoryRecord{
			ID:        fmt.Sprintf("h-%d", i),
			EntityID:  entity,
			Amount:    amount,
			Currency:  "USD",
			Timestamp: start.Add(time.Duration(i) * gap),
		})
	}
	return records
}

func TestRapidMovementDetector_FiresOnFastHighVolume(t *testing.T) {
	cfg := aml.DefaultDetectionConfig().RapidMove
	start := time.Now().Add(-20 * time.Minute)
	history := fakeHistory{
		records: historyRecords("entity-r1", []int64{1200, -1200, 1200, -1200, 1200}, start, 2*time.Minute),
	}
	d := detector.NewRapidMovementDetector(cfg, history, zap.NewNop().Sugar())

	activity, err := d.Detect(context.Background(), txn("tx", "entity-r1", 1200, time.Now()))
	require.NoError(t, err)
	require.NotNil(t, activity)
	assert.Equal(t, aml.PatternRapidMovement, activity.Pattern)
	assert.Equal(t, 0.7, activity.Confidence)
	// Absolute amounts sum to 6000 with a 2-minute average gap:
	// (6000/5000)*60 + (10/2)*40 = 272, clamped to 100.
	assert.Equal(t, 100, activity.RiskScore)
	assert.Equal(t, float64(6000), activity.ActualValue)
}

func TestRapidMovementDetector_NoFindingBelowMinTransactions(t *testing.T) {
	cfg := aml.DefaultDetectionConfig().RapidMove
	history := fakeHistory{
		records: historyRecords("entity-r2", []int64{5000, 5000}, time.Now().Add(-10*time.Minute), time.Minute),
	}
	d := detector.NewRapidMovementDetector(cfg, history, zap.NewNop().Sugar())

	activity, err := d.Detect(context.Background(), txn("tx", "entity-r2", 5000, time.Now()))
	require.NoError(t, err)
	assert.Nil(t, activity)
}

func TestRapidMovementDetector_NoFindingWhenGapsAreSlow(t *testing.T) {
	cfg := aml.DefaultDetectionConfig().RapidMove
	// 5 transactions, 12 minutes apart on average: volume is there, speed is not.
	history := fakeHistory{
		records: historyRecords("entity-r3", []int64{2000, 2000, 2000, 2000, 2000}, time.Now().Add(-50*time.Minute), 12*time.Minute),
	}
	d := detector.NewRapidMovementDetector(cfg, history, zap.NewNop().Sugar())

	activity, err := d.Detect(context.Background(), txn("tx", "entity-r3", 2000, time.Now()))
	require.NoError(t, err)
	assert.Nil(t, activity)
}

func TestRapidMovementDetector_HistoryErrorPropagates(t *testing.T) {
	cfg := aml.DefaultDetectionConfig().RapidMove
	d := detector.NewRapidMovementDetector(cfg, fakeHistory{err: errStoreDown}, zap.NewNop().Sugar())

	activity, err := d.Detect(context.Background(), txn("tx", "entity-r4", 100, time.Now()))
	require.Error(t, err)
	assert.Nil(t, activity)
}
