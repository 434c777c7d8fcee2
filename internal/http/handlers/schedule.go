package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/domain/schedule"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
)

type ScheduleHandler struct{}

func NewScheduleHandler() *ScheduleHandler {
	return &ScheduleHandler{}
}

type previewRequest struct {
	TotalAmount        decimal.Decimal `json:"total_amount"`
	DownPaymentPercent decimal.Decimal `json:"down_payment_percentage"`
	NumInstallments    int             `json:"num_installments"`
	EnableFees         bool            `json:"enable_fees"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	StartDate          string          `json:"start_date"`
	Frequency          string          `json:"payment_frequency"`
}

// Preview is a pure computation over the request body; nothing is persisted.
func (h *ScheduleHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	startDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "field": "start_date", "message": "must be YYYY-MM-DD"})
		return
	}
	freq, err := trust.ParseFrequency(req.Frequency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "field": "payment_frequency", "message": err.Error()})
		return
	}

	preview, err := schedule.GeneratePreview(schedule.PreviewInput{
		TotalAmount:        req.TotalAmount,
		DownPaymentPercent: req.DownPaymentPercent,
		NumInstallments:    req.NumInstallments,
		EnableFees:         req.EnableFees,
		InterestRate:       req.InterestRate,
		StartDate:          startDate,
		Frequency:          freq,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, preview)
}
