package detector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
	"github.com/cardwatch/amlengine/internal/aml/mcc"
)

// Fixed outputs for the binary MCC check: no window or history involved.
const (
	merchantRiskScore  = 60
	merchantConfidence = 0.8
)

// HighRiskMerchantDetector flags transactions at merchants whose category
// code is on the high-risk list. Pure function over the transaction.
type HighRiskMerchantDetector struct {
	registry *mcc.Registry
	logger   *zap.SugaredLogger
}

// NewHighRiskMerchantDetector creates the MCC detector over the given registry.
func NewHighRiskMerchantDetector(registry *mcc.Registry, logger *zap.SugaredLogger) *HighRiskMerchantDetector {
	return &HighRiskMerchantDetector{registry: registry, logger: logger}
}

func (d *HighRiskMerchantDetector) Name() aml.PatternType { return aml.PatternHighRiskMerchant }

func (d *HighRiskMerchantDetector) Detect(_ context.Context, tx *aml.Transaction) (*aml.SuspiciousActivity, error) {
	if !d.registry.IsHighRisk(tx.MerchantCategoryCode) {
		return nil, nil
	}

	d.logger.Infow("high-risk merchant category",
		"entity_id", tx.EntityID,
		"mcc", tx.MerchantCategoryCode,
		"merchant", tx.MerchantName,
	)

	return &aml.SuspiciousActivity{
		ID:         uuid.New(),
		EntityID:   tx.EntityID,
		Pattern:    aml.PatternHighRiskMerchant,
		RiskScore:  merchantRiskScore,
		Confidence: merchantConfidence,
		DetectedAt: time.Now(),
		Evidence: map[string]interface{}{
			"merchant_category_code": tx.MerchantCategoryCode,
			"merchant_name":          tx.MerchantName,
		},
		Threshold:   1,
		ActualValue: 1,
	}, nil
}
