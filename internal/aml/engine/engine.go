// Package engine is the single public entry point of the AML detection
// engine: it enforces tenant isolation, consults the analysis cache, fans out
// to the pattern detectors in parallel, aggregates their findings and caches
// the result. Callers are responsible for downstream audit logging and
// alerting based on the returned result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
	"github.com/cardwatch/amlengine/internal/aml/cache"
	"github.com/cardwatch/amlengine/internal/aml/detector"
	"github.com/cardwatch/amlengine/internal/aml/scoring"
	"github.com/cardwatch/amlengine/pkg/metrics"
)

// IsolationService is the external tenant-isolation collaborator. It must
// succeed before any detector runs; isolation is a correctness boundary, not
// an availability one, so it never fails open.
type IsolationService interface {
	EnforceIsolation(ctx context.Context, entityID string) error
}

// FraudService is the optional, best-effort fraud-correlation collaborator.
type FraudService interface {
	AnalyzeTransaction(ctx context.Context, view aml.FraudView) (*aml.FraudResult, error)
}

// Engine orchestrates one analysis per transaction.
type Engine struct {
	detectors  []detector.Detector
	aggregator *scoring.Aggregator
	cache      cache.AnalysisCache
	isolation  IsolationService
	fraud      FraudService // may be nil
	cfg        *aml.DetectionConfig
	logger     *zap.SugaredLogger
}

// New creates an engine over the given detectors and collaborators. fraud may
// be nil to disable cross-service correlation.
func New(
	detectors []detector.Detector,
	aggregator *scoring.Aggregator,
	analysisCache cache.AnalysisCache,
	isolation IsolationService,
	fraud FraudService,
	cfg *aml.DetectionConfig,
	logger *zap.SugaredLogger,
) *Engine {
	return &Engine{
		detectors:  detectors,
		aggregator: aggregator,
		cache:      analysisCache,
		isolation:  isolation,
		fraud:      fraud,
		cfg:        cfg,
		logger:     logger,
	}
}

// AnalyzeTransaction runs the full analysis for one transaction. It returns
// either a complete result or the isolation error; infrastructure failures in
// detectors and the cache never surface to the caller. Safe to call
// repeatedly for the same transaction within the cache TTL.
func (e *Engine) AnalyzeTransaction(ctx context.Context, tx *aml.Transaction) (*aml.AMLAnalysisResult, error) {
	start := time.Now()

	if err := e.isolation.EnforceIsolation(ctx, tx.EntityID); err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("isolation enforcement for entity %s: %w", tx.EntityID, err)
	}

	if cached, err := e.cache.Get(ctx, tx.EntityID); err == nil {
		metrics.CacheHits.Inc()
		metrics.AnalysesTotal.WithLabelValues("cached").Inc()
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		e.logger.Warnw("analysis cache read failed, proceeding uncached",
			"entity_id", tx.EntityID, "error", err)
	}
	metrics.CacheMisses.Inc()

	activities := e.runDetectors(ctx, tx)
	result := e.aggregator.Aggregate(tx.EntityID, activities)

	if err := e.cache.Set(ctx, result, e.cfg.CacheTTL); err != nil {
		e.logger.Warnw("analysis cache write failed",
			"entity_id", tx.EntityID, "error", err)
	}

	metrics.AnalysisLatency.Observe(time.Since(start).Seconds())
	outcome := "clean"
	if result.Suspicious() {
		outcome = "suspicious"
	}
	metrics.AnalysesTotal.WithLabelValues(outcome).Inc()

	return result, nil
}

type detectorOutcome struct {
	activity *aml.SuspiciousActivity
}

// runDetectors fans out to all detectors in parallel and joins their results.
// Detectors still running at the overall timeout are treated as no finding,
// preserving the payment-path latency guarantee.
func (e *Engine) runDetectors(ctx context.Context, tx *aml.Transaction) []aml.SuspiciousActivity {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.AnalysisTimeout)
	defer cancel()

	results := make(chan detectorOutcome, len(e.detectors))
	for _, d := range e.detectors {
		go func(d detector.Detector) {
			started := time.Now()
			defer metrics.DetectorLatency.WithLabelValues(string(d.Name())).Observe(time.Since(started).Seconds())
			results <- detectorOutcome{activity: e.detectSafe(ctx, d, tx)}
		}(d)
	}

	var activities []aml.SuspiciousActivity
	for range e.detectors {
		select {
		case out := <-results:
			if out.activity != nil {
				activities = append(activities, *out.activity)
			}
		case <-ctx.Done():
			e.logger.Warnw("analysis timed out, unfinished detectors treated as no finding",
				"entity_id", tx.EntityID, "collected", len(activities))
			return activities
		}
	}
	return activities
}

// detectSafe is the per-detector error boundary: infrastructure errors and
// panics degrade to no finding (fail-open), logged and counted.
func (e *Engine) detectSafe(ctx context.Context, d detector.Detector, tx *aml.Transaction) (activity *aml.SuspiciousActivity) {
	defer func() {
		if r := recover(); r != nil {
			metrics.DetectorFailures.WithLabelValues(string(d.Name())).Inc()
			e.logger.Errorw("detector panicked, treating as no finding",
				"detector", d.Name(), "entity_id", tx.EntityID, "panic", r)
			activity = nil
		}
	}()

	act, err := d.Detect(ctx, tx)
	if err != nil {
		metrics.DetectorFailures.WithLabelValues(string(d.Name())).Inc()
		e.logger.Errorw("detector failed, treating as no finding",
			"detector", d.Name(), "entity_id", tx.EntityID, "error", err)
		return nil
	}
	return act
}

// ShareWithFraudService forwards the transaction to the fraud-correlation
// service for cross-signal correlation. Best effort: failures are logged,
// never propagated.
func (e *Engine) ShareWithFraudService(ctx context.Context, tx *aml.Transaction) {
	if e.fraud == nil {
		return
	}

	view := aml.FraudView{
		TransactionID: tx.ID,
		EntityID:      tx.EntityID,
		Amount:        decimal.NewFromInt(tx.Amount).Div(decimal.NewFromInt(100)).StringFixed(2),
		Currency:      tx.Currency,
		MerchantName:  tx.MerchantName,
		Timestamp:     tx.Timestamp,
	}

	result, err := e.fraud.AnalyzeTransaction(ctx, view)
	if err != nil {
		e.logger.Warnw("fraud correlation failed",
			"transaction_id", tx.ID, "entity_id", tx.EntityID, "error", err)
		return
	}
	e.logger.Debugw("fraud correlation completed",
		"transaction_id", tx.ID, "score", result.Score)
}
