// Package scoring combines detector findings into one auditable analysis
// result. Aggregation is a pure function: it never errors and always produces
// a result, including the empty-findings case.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cardwatch/amlengine/internal/aml"
)

// Risk-level cut points on the aggregate score.
const (
	criticalCutPoint = 80
	highCutPoint     = 60
	mediumCutPoint   = 35
)

// Recommended-action cut points, independent of the weighting formula.
const (
	reportCutPoint  = 75
	reviewCutPoint  = 50
	monitorCutPoint = 25
)

// Aggregator weights detector findings by pattern type and compounds
// co-occurring signals.
type Aggregator struct {
	weights         map[aml.PatternType]float64
	compoundingStep float64
}

// NewAggregator creates an aggregator with the configured pattern weights.
func NewAggregator(cfg *aml.DetectionConfig) *Aggregator {
	return &Aggregator{
		weights:         cfg.PatternWeights,
		compoundingStep: cfg.CompoundingStep,
	}
}

// Aggregate combines zero or more findings into one result. Findings are
// ordered by pattern weight descending (type name breaks ties) so repeated
// analyses of identical inputs produce identical output.
func (a *Aggregator) Aggregate(entityID string, activities []aml.SuspiciousActivity) *aml.AMLAnalysisResult {
	result := &aml.AMLAnalysisResult{
		ID:         uuid.New(),
		EntityID:   entityID,
		Activities: activities,
		AnalyzedAt: time.Now(),
	}

	if len(activities) == 0 {
		result.Activities = []aml.SuspiciousActivity{}
		result.OverallRiskScore = 0
		result.RiskLevel = aml.RiskLevelLow
		result.Action = aml.ActionNone
		return result
	}

	sort.Slice(result.Activities, func(i, j int) bool {
		wi, wj := a.weight(result.Activities[i].Pattern), a.weight(result.Activities[j].Pattern)
		if wi != wj {
			return wi > wj
		}
		return result.Activities[i].Pattern < result.Activities[j].Pattern
	})

	var weightedSum, weightSum float64
	for _, act := range result.Activities {
		w := a.weight(act.Pattern)
		weightedSum += float64(act.RiskScore) * w * act.Confidence
		weightSum += w
	}

	base := weightedSum / weightSum
	compounded := base * (1 + a.compoundingStep*float64(len(result.Activities)-1))

	score := int(math.Round(compounded))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	result.OverallRiskScore = score
	result.RiskLevel = riskLevelFor(score)
	result.Action = actionFor(score)
	return result
}

func (a *Aggregator) weight(p aml.PatternType) float64 {
	if w, ok := a.weights[p]; ok {
		return w
	}
	return 1.0
}

func riskLevelFor(score int) aml.RiskLevel {
	switch {
	case score >= criticalCutPoint:
		return aml.RiskLevelCritical
	case score >= highCutPoint:
		return aml.RiskLevelHigh
	case score >= mediumCutPoint:
		return aml.RiskLevelMedium
	default:
		return aml.RiskLevelLow
	}
}

func actionFor(score int) aml.RecommendedAction {
	switch {
	case score >= reportCutPoint:
		return aml.ActionReport
	case score >= reviewCutPoint:
		return aml.ActionReview
	case score >= monitorCutPoint:
		return aml.ActionMonitor
	default:
		return aml.ActionNone
	}
}
