package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	businessdomain "github.com/faithadeola/TrustRail/internal/domain/business"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
	"github.com/faithadeola/TrustRail/internal/http/middleware"
)

type BusinessService interface {
	Get(ctx context.Context, id string) (*businessdomain.Entity, error)
	ResolveSlug(ctx context.Context, slug string) (*businessdomain.Entity, *businessdomain.PaymentRules, error)
	UpdateProfile(ctx context.Context, id string, in businessdomain.UpdateInput) (*businessdomain.Entity, error)
	Rules(ctx context.Context, businessID string) (*businessdomain.PaymentRules, error)
	UpdateRules(ctx context.Context, rules businessdomain.PaymentRules) (*businessdomain.PaymentRules, error)
	RegeneratePaymentLink(ctx context.Context, businessID string) (string, error)
}

type BusinessHandler struct {
	businessService BusinessService
}

func NewBusinessHandler(businessService BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

func (h *BusinessHandler) GetProfile(c *gin.Context) {
	businessID := middleware.BusinessID(c)
	item, err := h.businessService.Get(c.Request.Context(), businessID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "business_not_found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Industry string `json:"industry"`
}

func (h *BusinessHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	item, err := h.businessService.UpdateProfile(c.Request.Context(), middleware.BusinessID(c), businessdomain.UpdateInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Industry: req.Industry,
	})
	if err != nil {
		writeBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *BusinessHandler) GetRules(c *gin.Context) {
	rules, err := h.businessService.Rules(c.Request.Context(), middleware.BusinessID(c))
	if err != nil {
		writeBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

type updateRulesRequest struct {
	DownPaymentPercent   decimal.Decimal  `json:"down_payment_percentage"`
	MaxInstallmentPeriod int              `json:"max_instalment_period"`
	EnableFees           bool             `json:"enable_fees"`
	InterestRate         decimal.Decimal  `json:"interest_rate"`
	Trust                trust.RuleConfig `json:"trust"`
}

func (h *BusinessHandler) UpdateRules(c *gin.Context) {
	var req updateRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	rules, err := h.businessService.UpdateRules(c.Request.Context(), businessdomain.PaymentRules{
		BusinessID:           middleware.BusinessID(c),
		DownPaymentPercent:   req.DownPaymentPercent,
		MaxInstallmentPeriod: req.MaxInstallmentPeriod,
		EnableFees:           req.EnableFees,
		InterestRate:         req.InterestRate,
		Trust:                req.Trust,
	})
	if err != nil {
		writeBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *BusinessHandler) RegeneratePaymentLink(c *gin.Context) {
	slug, err := h.businessService.RegeneratePaymentLink(c.Request.Context(), middleware.BusinessID(c))
	if err != nil {
		writeBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_slug": slug})
}

// ResolveSlug backs the public checkout page: it exposes the business profile
// and the schedule policy a customer needs before submitting an application.
func (h *BusinessHandler) ResolveSlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_slug"})
		return
	}

	entity, rules, err := h.businessService.ResolveSlug(c.Request.Context(), slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "business_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"business": gin.H{
			"id":       entity.ID,
			"name":     entity.Name,
			"industry": entity.Industry,
		},
		"rules": gin.H{
			"down_payment_percentage": rules.DownPaymentPercent,
			"max_instalment_period":   rules.MaxInstallmentPeriod,
			"enable_fees":             rules.EnableFees,
			"interest_rate":           rules.InterestRate,
		},
	})
}

func writeBusinessError(c *gin.Context, err error) {
	var validationErr *businessdomain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "field": validationErr.Field, "message": validationErr.Message})
	case errors.Is(err, businessdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "business_not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
