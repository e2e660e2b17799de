// Package detector holds the five independent AML pattern detectors. Each
// detector consumes one transaction (plus, for most, a sliding window of the
// entity's recent activity) and returns either no finding or one
// SuspiciousActivity. Detectors never read each other's output; their only
// shared state is the window store, partitioned by family key.
package detector

import (
	"context"
	"math"

	"github.com/cardwatch/amlengine/internal/aml"
)

// Detector evaluates a single transaction for one pattern family.
// A nil activity with a nil error means no finding. An error indicates an
// infrastructure failure; the engine applies the fail-open policy.
type Detector interface {
	Name() aml.PatternType
	Detect(ctx context.Context, tx *aml.Transaction) (*aml.SuspiciousActivity, error)
}

// clampScore bounds a raw score into [0,100] and rounds to nearest integer.
func clampScore(raw float64) int {
	if raw > 100 {
		return 100
	}
	if raw < 0 {
		return 0
	}
	return int(math.Round(raw))
}
