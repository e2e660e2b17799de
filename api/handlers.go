package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
)

// AnalyzeRequest carries one transaction for analysis. Amount is in integer
// minor units; entity_id is an opaque tenant-isolated identifier.
type AnalyzeRequest struct {
	TransactionID        string `json:"transaction_id" validate:"required"`
	EntityID             string `json:"entity_id" validate:"required"`
	Amount               int64  `json:"amount" validate:"required"`
	Currency             string `json:"currency" validate:"required,len=3"`
	Timestamp            int64  `json:"timestamp" validate:"required"` // unix millis
	MerchantName         string `json:"merchant_name"`
	MerchantCategoryCode string `json:"merchant_category_code" validate:"omitempty,len=4,numeric"`
	Kind                 string `json:"kind" validate:"omitempty,oneof=PURCHASE WITHDRAWAL REFUND FEE"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := &aml.Transaction{
		ID:                   req.TransactionID,
		EntityID:             req.EntityID,
		Amount:               req.Amount,
		Currency:             req.Currency,
		Timestamp:            time.UnixMilli(req.Timestamp),
		MerchantName:         req.MerchantName,
		MerchantCategoryCode: req.MerchantCategoryCode,
		Kind:                 aml.TransactionKind(req.Kind),
	}

	result, err := s.engine.AnalyzeTransaction(c.Request.Context(), tx)
	if err != nil {
		s.logger.Error("analysis failed", zap.String("entity_id", req.EntityID), zap.Error(err))
		c.JSON(http.StatusForbidden, gin.H{"error": "isolation enforcement failed"})
		return
	}

	// Best-effort cross-signal correlation; never blocks the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.engine.ShareWithFraudService(ctx, tx)
	}()

	c.JSON(http.StatusOK, result)
}

// LimitsCheckRequest asks whether an amount would violate the entity's
// spending-velocity limits.
type LimitsCheckRequest struct {
	EntityID string `json:"entity_id" validate:"required"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Record   bool   `json:"record"` // record the spend if allowed
}

func (s *Server) handleLimitsCheck(c *gin.Context) {
	var req LimitsCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.limits.Check(req.EntityID, req.Amount); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"allowed": false,
			"reason":  err.Error(),
			"usage":   s.limits.Usage(req.EntityID),
		})
		return
	}
	if req.Record {
		s.limits.Record(req.EntityID, req.Amount)
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed": true,
		"usage":   s.limits.Usage(req.EntityID),
	})
}

// BlocklistRequest adds merchant category codes to the high-risk blocklist.
type BlocklistRequest struct {
	Codes []string `json:"codes" validate:"required,min=1"`
}

func (s *Server) handleAddBlocklist(c *gin.Context) {
	var req BlocklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.registry.AddToBlocklist(req.Codes...); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocklist": s.registry.Blocklist()})
}

func (s *Server) handleRemoveBlocklist(c *gin.Context) {
	code := c.Param("code")
	s.registry.RemoveFromBlocklist(code)
	c.JSON(http.StatusOK, gin.H{"blocklist": s.registry.Blocklist()})
}
