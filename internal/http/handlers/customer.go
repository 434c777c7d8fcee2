package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	customerdomain "github.com/faithadeola/TrustRail/internal/domain/customer"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
	"github.com/faithadeola/TrustRail/internal/http/middleware"
)

type CustomerService interface {
	Get(ctx context.Context, businessID, customerHash string) (*customerdomain.Entity, error)
	List(ctx context.Context, f customerdomain.ListFilter) ([]customerdomain.Entity, error)
}

type CustomerHandler struct {
	customerService CustomerService
}

func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.customerService.List(c.Request.Context(), customerdomain.ListFilter{
		BusinessID: middleware.BusinessID(c),
		Tier:       trust.Tier(strings.ToUpper(strings.TrimSpace(c.Query("tier")))),
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_customers_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CustomerHandler) Get(c *gin.Context) {
	customerHash := strings.TrimSpace(c.Param("customerHash"))
	if customerHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_customer_hash"})
		return
	}

	item, err := h.customerService.Get(c.Request.Context(), middleware.BusinessID(c), customerHash)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer_not_found"})
		return
	}
	c.JSON(http.StatusOK, item)
}
