package notification

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification_not_found")

type Type string

const (
	TypeApplicationApproved Type = "application_approved"
	TypeApplicationReview   Type = "application_review"
	TypeApplicationDeclined Type = "application_declined"
	TypePaymentReceived     Type = "payment_received"
	TypePaymentFailed       Type = "payment_failed"
	TypeCustomerRestricted  Type = "customer_restricted"
)

type Entity struct {
	ID         int64     `json:"id"`
	BusinessID string    `json:"business_id"`
	Type       Type      `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateInput struct {
	BusinessID string
	Type       Type
	Title      string
	Message    string
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	ListByBusiness(ctx context.Context, businessID string, unreadOnly bool, limit, offset int32) ([]Entity, error)
	MarkRead(ctx context.Context, businessID string, id int64) error
	MarkAllRead(ctx context.Context, businessID string) error
	CountUnread(ctx context.Context, businessID string) (int64, error)
}
