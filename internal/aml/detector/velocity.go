package detector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
	"github.com/cardwatch/amlengine/internal/aml/window"
)

const velocityFamily = "velocity"

// VelocityDetector flags abnormal transaction frequency or volume in the last
// hour. Hard numeric trigger, so it carries the highest confidence of all
// detectors.
type VelocityDetector struct {
	cfg    aml.VelocityConfig
	store  window.Store
	logger *zap.SugaredLogger
}

// NewVelocityDetector creates a velocity detector over the given window store.
func NewVelocityDetector(cfg aml.VelocityConfig, store window.Store, logger *zap.SugaredLogger) *VelocityDetector {
	return &VelocityDetector{cfg: cfg, store: store, logger: logger}
}

func (d *VelocityDetector) Name() aml.PatternType { return aml.PatternUnusualVelocity }

func (d *VelocityDetector) Detect(ctx context.Context, tx *aml.Transaction) (*aml.SuspiciousActivity, error) {
	key := window.Key(velocityFamily, tx.EntityID)
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

	hourlyCount := len(entries)
	var hourlyAmount int64
	for _, e := range entries {
		hourlyAmount += e.Amount
	}

	countBreached := hourlyCount > d.cfg.HourlyLimit
	amountBreached := hourlyAmount > d.cfg.AmountPerHour
	if !countBreached && !amountBreached {
		return nil, nil
	}

	countComponent := float64(hourlyCount) / float64(d.cfg.HourlyLimit) * 50
	amountComponent := float64(hourlyAmount) / float64(d.cfg.AmountPerHour) * 50
	raw := countComponent
	if amountComponent > raw {
		raw = amountComponent
	}
	score := clampScore(raw)

	threshold := float64(d.cfg.HourlyLimit)
	actual := float64(hourlyCount)
	if !countBreached {
		threshold = float64(d.cfg.AmountPerHour)
		actual = float64(hourlyAmount)
	}

	d.logger.Infow("velocity pattern detected",
		"entity_id", tx.EntityID,
		"hourly_count", hourlyCount,
		"hourly_amount", hourlyAmount,
	)

	return &aml.SuspiciousActivity{
		ID:         uuid.New(),
		EntityID:   tx.EntityID,
		Pattern:    aml.PatternUnusualVelocity,
		RiskScore:  score,
		Confidence: 0.9,
		DetectedAt: time.Now(),
		Evidence: map[string]interface{}{
			"hourly_count":  hourlyCount,
			"hourly_amount": hourlyAmount,
		},
		Threshold:   threshold,
		ActualValue: actual,
	}, nil
}
