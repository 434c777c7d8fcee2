package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appdomain "github.com/faithadeola/TrustRail/internal/domain/application"
	businessdomain "github.com/faithadeola/TrustRail/internal/domain/business"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
	"github.com/faithadeola/TrustRail/internal/http/middleware"
)

type ApplicationService interface {
	Submit(ctx context.Context, in appdomain.SubmitInput) (*appdomain.Entity, error)
	Get(ctx context.Context, id string) (*appdomain.Entity, error)
	List(ctx context.Context, f appdomain.ListFilter) ([]appdomain.Entity, error)
	DashboardAnalytics(ctx context.Context, businessID string) (*appdomain.DashboardAnalytics, error)
}

type ApplicationHandler struct {
	applicationService ApplicationService
}

func NewApplicationHandler(applicationService ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

type submitApplicationRequest struct {
	BusinessID string `json:"business_id" binding:"required"`

	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
	BVN           string `json:"bvn"`

	PaymentType      string           `json:"payment_type" binding:"required"`
	TotalAmount      *decimal.Decimal `json:"total_amount"`
	RecurringAmount  *decimal.Decimal `json:"recurring_amount"`
	CommitmentMonths int              `json:"commitment_months"`

	PaymentFrequency   string `json:"payment_frequency" binding:"required"`
	PreferredStartDate string `json:"preferred_start_date" binding:"required"`

	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountName   string `json:"account_name"`
}

// Submit is the public checkout endpoint; the customer is not authenticated,
// the target business comes from the payment-link payload.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req submitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	startDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.PreferredStartDate))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "field": "preferred_start_date", "message": "must be YYYY-MM-DD"})
		return
	}

	created, err := h.applicationService.Submit(c.Request.Context(), appdomain.SubmitInput{
		BusinessID:         req.BusinessID,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		BVN:                req.BVN,
		PaymentType:        appdomain.PaymentType(strings.ToUpper(strings.TrimSpace(req.PaymentType))),
		TotalAmount:        nullDecimal(req.TotalAmount),
		RecurringAmount:    nullDecimal(req.RecurringAmount),
		CommitmentMonths:   req.CommitmentMonths,
		PaymentFrequency:   req.PaymentFrequency,
		PreferredStartDate: startDate,
		BankName:           req.BankName,
		AccountNumber:      req.AccountNumber,
		AccountName:        req.AccountName,
	})
	if err != nil {
		writeApplicationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.applicationService.List(c.Request.Context(), appdomain.ListFilter{
		BusinessID: middleware.BusinessID(c),
		Status:     trust.Status(strings.TrimSpace(c.Query("status"))),
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_applications_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	applicationID := strings.TrimSpace(c.Param("applicationId"))
	if applicationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_application_id"})
		return
	}

	item, err := h.applicationService.Get(c.Request.Context(), applicationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "application_not_found"})
		return
	}
	if item.BusinessID != middleware.BusinessID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "application_not_found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ApplicationHandler) DashboardAnalytics(c *gin.Context) {
	analytics, err := h.applicationService.DashboardAnalytics(c.Request.Context(), middleware.BusinessID(c))
	if err != nil {
		writeApplicationError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func writeApplicationError(c *gin.Context, err error) {
	var validationErr *appdomain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "field": validationErr.Field, "message": validationErr.Message})
	case errors.Is(err, businessdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "business_not_found"})
	case errors.Is(err, appdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application_not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
