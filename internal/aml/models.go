package aml

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel represents the risk level derived from an aggregate score
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// PatternType identifies one of the supported suspicious-activity patterns
type PatternType string

const (
	PatternStructuring      PatternType = "STRUCTURING"
	PatternRapidMovement    PatternType = "RAPID_MOVEMENT"
	PatternUnusualVelocity  PatternType = "UNUSUAL_VELOCITY"
	PatternHighRiskMerchant PatternType = "HIGH_RISK_MERCHANT"
	PatternRoundAmount      PatternType = "ROUND_AMOUNT_PATTERN"
)

// RecommendedAction is the action derived from the aggregate risk score
type RecommendedAction string

const (
	ActionNone    RecommendedAction = "NONE"
	ActionMonitor RecommendedAction = "MONITOR"
	ActionReview  RecommendedAction = "REVIEW"
	ActionReport  RecommendedAction = "REPORT"
)

// TransactionKind classifies the transaction for analysis purposes
type TransactionKind string

const (
	KindPurchase   TransactionKind = "PURCHASE"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
	KindRefund     TransactionKind = "REFUND"
	KindFee        TransactionKind = "FEE"
)

// Transaction is the immutable input to an analysis. EntityID is an opaque,
// tenant-isolated identifier, never a raw account or card number. Amount is
// in integer minor units.
type Transaction struct {
	ID                   string          `json:"id"`
	EntityID             string          `json:"entity_id"`
	Amount               int64           `json:"amount"`
	Currency             string          `json:"currency"`
	Timestamp            time.Time       `json:"timestamp"`
	MerchantName         string          `json:"merchant_name"`
	MerchantCategoryCode string          `json:"merchant_category_code"`
	Kind                 TransactionKind `json:"kind"`
}

// WindowEntry is the minimal projection of a transaction persisted into a
// sliding window. Entries are append-only and expire with the window key.
type WindowEntry struct {
	ID              string `json:"id"`
	Amount          int64  `json:"amount"`
	TimestampMillis int64  `json:"timestamp_millis"`
}

// SuspiciousActivity is a single detector finding. Created once when a
// detector fires; ownership transfers to the aggregator immediately.
type SuspiciousActivity struct {
	ID          uuid.UUID              `json:"id"`
	EntityID    string                 `json:"entity_id"`
	Pattern     PatternType            `json:"pattern"`
	RiskScore   int                    `json:"risk_score"` // 0-100, detector-local
	Confidence  float64                `json:"confidence"` // 0.0-1.0
	DetectedAt  time.Time              `json:"detected_at"`
	Evidence    map[string]interface{} `json:"evidence"`
	Threshold   float64                `json:"threshold"`
	ActualValue float64                `json:"actual_value"`
}

// AMLAnalysisResult is the outcome of one full analysis for an entity.
// A later analysis for the same entity supersedes it; results are never merged.
type AMLAnalysisResult struct {
	ID               uuid.UUID            `json:"id"`
	EntityID         string               `json:"entity_id"`
	Activities       []SuspiciousActivity `json:"activities"`
	OverallRiskScore int                  `json:"overall_risk_score"` // 0-100
	RiskLevel        RiskLevel            `json:"risk_level"`
	Action           RecommendedAction    `json:"recommended_action"`
	AnalyzedAt       time.Time            `json:"analyzed_at"`
}

// Suspicious reports whether any detector fired.
func (r *AMLAnalysisResult) Suspicious() bool {
	return len(r.Activities) > 0
}

// HistoryRecord is one transaction returned by the external history service.
type HistoryRecord struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entity_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// FraudView is the projection of a transaction shared with the external
// fraud-correlation service. Amounts are converted to decimal major units
// at the boundary.
type FraudView struct {
	TransactionID string    `json:"transaction_id"`
	EntityID      string    `json:"entity_id"`
	Amount        string    `json:"amount"` // decimal major units
	Currency      string    `json:"currency"`
	MerchantName  string    `json:"merchant_name"`
	Timestamp     time.Time `json:"timestamp"`
}

// FraudResult is the fraud-correlation service's opaque response.
type FraudResult struct {
	Score  float64  `json:"score"`
	Labels []string `json:"labels"`
}
