package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/ingest"
)

type EventRecorder interface {
	Record(ctx context.Context, ev ingest.PaymentEvent) error
}

type WebhookHandler struct {
	recorder EventRecorder
}

func NewWebhookHandler(recorder EventRecorder) *WebhookHandler {
	return &WebhookHandler{recorder: recorder}
}

type paymentEventRequest struct {
	Event         string          `json:"event"`
	ApplicationID string          `json:"application_id"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// ReceivePaymentEvent accepts provider payment webhooks. Events are stored
// first and projected asynchronously by the ingest loop, so the provider gets
// an ack as soon as the row is durable.
func (h *WebhookHandler) ReceivePaymentEvent(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	var req paymentEventRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.Event == "" || req.ApplicationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.recorder.Record(c.Request.Context(), ingest.PaymentEvent{
		EventName:     req.Event,
		ApplicationID: req.ApplicationID,
		Amount:        req.Amount,
		OccurredAt:    req.OccurredAt,
		RawData:       raw,
	}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_rejected", "message": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}
