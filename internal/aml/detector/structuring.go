package detector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
	"github.com/cardwatch/amlengine/internal/aml/window"
)

const structuringFamily = "structuring"

// StructuringDetector flags transactions engineered to stay just under the
// reporting threshold while aggregating to a large total.
type StructuringDetector struct {
	cfg    aml.StructuringConfig
	store  window.Store
	logger *zap.SugaredLogger
}

// NewStructuringDetector creates a structuring detector over the given window store.
func NewStructuringDetector(cfg aml.StructuringConfig, store window.Store, logger *zap.SugaredLogger) *StructuringDetector {
	return &StructuringDetector{cfg: cfg, store: store, logger: logger}
}

func (d *StructuringDetector) Name() aml.PatternType { return aml.PatternStructuring }

func (d *StructuringDetector) Detect(ctx context.Context, tx *aml.Transaction) (*aml.SuspiciousActivity, error) {
	key := window.Key(structuringFamily, tx.EntityID)
	entry := aml.WindowEntry{
		ID:              tx.ID,
		Amount:          tx.Amount,
		TimestampMillis: tx.Timestamp.UnixMilli(),
	}
	if err := d.store.Append(ctx, key, entry, d.cfg.Window); err != nil {
		return nil, err
	}

	since := time.Now().Add(-d.cfg.Window).UnixMilli()
	entries, err := d.store.RangeSince(ctx, key, since)
	if err != nil {
		return nil, err
	}
	if len(entries) < d.cfg.MinTransactions {
		return nil, nil
	}

	var totalAmount int64
	belowThresholdCount := 0
	lowerBound := 0.8 * float64(d.cfg.SingleThreshold)
	for _, e := range entries {
		totalAmount += e.Amount
		if float64(e.Amount) >= lowerBound && e.Amount < d.cfg.SingleThreshold {
			belowThresholdCount++
		}
	}

	if totalAmount < d.cfg.DailyAggregate || belowThresholdCount < d.cfg.MinTransactions {
		return nil, nil
	}

	score := clampScore(
		float64(totalAmount)/float64(d.cfg.DailyAggregate)*50 +
			float64(belowThresholdCount)/float64(len(entries))*50,
	)

	d.logger.Infow("structuring pattern detected",
		"entity_id", tx.EntityID,
		"total_amount", totalAmount,
		"below_threshold_count", belowThresholdCount,
		"window_count", len(entries),
	)

	return &aml.SuspiciousActivity{
		ID:         uuid.New(),
		EntityID:   tx.EntityID,
		Pattern:    aml.PatternStructuring,
		RiskScore:  score,
		Confidence: 0.8,
		DetectedAt: time.Now(),
		Evidence: map[string]interface{}{
			"total_amount":          totalAmount,
			"below_threshold_count": belowThresholdCount,
			"window_count":          len(entries),
			"single_threshold":      d.cfg.SingleThreshold,
		},
		Threshold:   float64(d.cfg.DailyAggregate),
		ActualValue: float64(totalAmount),
	}, nil
}
