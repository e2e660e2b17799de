package detector_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
	"github.com/cardwatch/amlengine/internal/aml/detector"
	"github.com/cardwatch/amlengine/internal/aml/mcc"
)

func TestHighRiskMerchantDetector_FiresOnGamblingMCC(t *testing.T) {
	d := detector.NewHighRiskMerchantDetector(mcc.NewRegistry(), zap.NewNop().Sugar())

	tx := txn("tx", "entity-m1", 37, time.Now())
	tx.MerchantCategoryCode = "7995"
	tx.MerchantName = "Lucky Sevens"

	activity, err := d.Detect(context.Background(), tx)
	require.NoError(t, err)
	require.NotNil(t, activity)
	assert.Equal(t, aml.PatternHighRiskMerchant, activity.Pattern)
	assert.Equal(t, 60, activity.RiskScore)
	assert.Equal(t, 0.8, activity.Confidence)
	assert.Equal(t, float64(1), activity.Threshold)
	assert.Equal(t, float64(1), activity.ActualValue)
}

func TestHighRiskMerchantDetector_ScoreIndependentOfAmount(t *testing.T) {
	d := detector.NewHighRiskMerchantDetector(mcc.NewRegistry(), zap.NewNop().Sugar())

	for _, amount := range []int64{1, 9000, 10000000} {
		tx := txn("tx", "entity-m2", amount, time.Now())
		tx.MerchantCategoryCode = "7995"

		activity, err := d.Detect(context.Background(), tx)
		require.NoError(t, err)
		require.NotNil(t, activity)
		assert.Equal(t, 60, activity.RiskScore)
	}
}

func TestHighRiskMerchantDetector_NoFindingForOrdinaryMCC(t *testing.T) {
	d := detector.NewHighRiskMerchantDetector(mcc.NewRegistry(), zap.NewNop().Sugar())

	tx := txn("tx", "entity-m3", 5000, time.Now())
	tx.MerchantCategoryCode = "5411" // grocery stores

	activity, err := d.Detect(context.Background(), tx)
	require.NoError(t, err)
	assert.Nil(t, activity)
}

func TestHighRiskMerchantDetector_WhitelistOverridesBlocklist(t *testing.T) {
	registry := mcc.NewRegistry()
	require.NoError(t, registry.AddToWhitelist("7995"))
	d := detector.NewHighRiskMerchantDetector(registry, zap.NewNop().Sugar())

	tx := txn("tx", "entity-m4", 5000, time.Now())
	tx.MerchantCategoryCode = "7995"

	activity, err := d.Detect(context.Background(), tx)
	require.NoError(t, err)
	assert.Nil(t, activity)
}
