package detector

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
)

// HistoryService is the external read-only transaction history collaborator.
type HistoryService interface {
	RecentTransactions(ctx context.Context, entityID string, since time.Time) ([]aml.HistoryRecord, error)
}

// RapidMovementDetector flags funds entering and leaving an entity unusually
// fast. Unlike the other window-backed detectors it reads the external
// history service.
type RapidMovementDetector struct {
	cfg     aml.RapidMoveConfig
	history HistoryService
	logger  *zap.SugaredLogger
}

// NewRapidMovementDetector creates a rapid-movement detector over the history service.
func NewRapidMovementDetector(cfg aml.RapidMoveConfig, history HistoryService, logger *zap.SugaredLogger) *RapidMovementDetector {
	return &RapidMovementDetector{cfg: cfg, history: history, logger: logger}
}

func (d *RapidMovementDetector) Name() aml.PatternType { return aml.PatternRapidMovement }

func (d *RapidMovementDetector) Detect(ctx context.Context, tx *aml.Transaction) (*aml.SuspiciousActivity, error) {
	since := time.Now().Add(-d.cfg.TimeWindow)
	records, err := d.history.RecentTransactions(ctx, tx.EntityID, since)
	if err != nil {
		return nil, err
	}
	if len(records) < d.cfg.MinTransactions {
		return nil, nil
	}

	var totalAmount int64
	timestamps := make([]time.Time, 0, len(records))
	for _, r := range records {
		amount := r.Amount
		if amount < 0 {
			amount = -amount
		}
		totalAmount += amount
		timestamps = append(timestamps, r.Timestamp)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	var gapSum float64
	for i := 1; i < len(timestamps); i++ {
		gapSum += timestamps[i].Sub(timestamps[i-1]).Minutes()
	}
	avgGapMinutes := gapSum / float64(len(timestamps)-1)

	if totalAmount < d.cfg.AmountThreshold || avgGapMinutes >= d.cfg.MaxAvgGapMinutes {
		return nil, nil
	}

	var score int
	if avgGapMinutes <= 0 {
		// All transactions within the same instant; maximum urgency signal.
		score = 100
	} else {
		score = clampScore(
			float64(totalAmount)/float64(d.cfg.AmountThreshold)*60 +
				d.cfg.MaxAvgGapMinutes/avgGapMinutes*40,
		)
	}

	d.logger.Infow("rapid movement pattern detected",
		"entity_id", tx.EntityID,
		"total_amount", totalAmount,
		"avg_gap_minutes", avgGapMinutes,
		"record_count", len(records),
	)

	return &aml.SuspiciousActivity{
		ID:         uuid.New(),
		EntityID:   tx.EntityID,
		Pattern:    aml.PatternRapidMovement,
		RiskScore:  score,
		Confidence: 0.7,
		DetectedAt: time.Now(),
		Evidence: map[string]interface{}{
			"total_amount":    totalAmount,
			"avg_gap_minutes": avgGapMinutes,
			"record_count":    len(records),
		},
		Threshold:   float64(d.cfg.AmountThreshold),
		ActualValue: float64(totalAmount),
	}, nil
}
