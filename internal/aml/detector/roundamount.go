package detector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
	"github.com/cardwatch/amlengine/internal/aml/window"
)

const roundAmountFamily = "round_amount"

// Fixed outputs: round-amount clustering is a structuring proxy with the
// lowest interpretive confidence of the five detectors.
const (
	roundAmountRiskScore  = 45
	roundAmountConfidence = 0.6
)

// RoundAmountDetector flags clustering of suspiciously round amounts.
// Non-round transactions never enter the window.
type RoundAmountDetector struct {
	cfg    aml.RoundAmountConfig
	store  window.Store
	logger *zap.SugaredLogger
	common map[int64]struct{}
}

// NewRoundAmountDetector creates a round-amount detector over the given window store.
func NewRoundAmountDetector(cfg aml.RoundAmountConfig, store window.Store, logger *zap.SugaredLogger) *RoundAmountDetector {
	common := make(map[int64]struct{}, len(cfg.CommonValues))
	for _, v := range cfg.CommonValues {
		common[v] = struct{}{}
	}
	return &RoundAmountDetector{cfg: cfg, store: store, logger: logger, common: common}
}

func (d *RoundAmountDetector) Name() aml.PatternType { return aml.PatternRoundAmount }

func (d *RoundAmountDetector) isRound(amount int64) bool {
	if amount%100 == 0 || amount%50 == 0 {
		return true
	}
	_, ok := d.common[amount]
	return ok
}

func (d *RoundAmountDetector) Detect(ctx context.Context, tx *aml.Transaction) (*aml.SuspiciousActivity, error) {
	if !d.isRound(tx.Amount) {
		return nil, nil
	}

	key := window.Key(roundAmountFamily, tx.EntityID)
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
	if len(entries) < d.cfg.ThresholdCount {
		return nil, nil
	}

	amounts := make([]int64, 0, len(entries))
	for _, e := range entries {
		amounts = append(amounts, e.Amount)
	}

	d.logger.Infow("round amount pattern detected",
		"entity_id", tx.EntityID,
		"round_count", len(entries),
	)

	return &aml.SuspiciousActivity{
		ID:         uuid.New(),
		EntityID:   tx.EntityID,
		Pattern:    aml.PatternRoundAmount,
		RiskScore:  roundAmountRiskScore,
		Confidence: roundAmountConfidence,
		DetectedAt: time.Now(),
		Evidence: map[string]interface{}{
			"round_amounts": amounts,
			"round_count":   len(entries),
		},
		Threshold:   float64(d.cfg.ThresholdCount),
		ActualValue: float64(len(entries)),
	}, nil
}
