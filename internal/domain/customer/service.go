package customer

import (
	"context"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// HashID derives the stable per-business customer key from the customer's
// email. Two businesses sharing a customer see independent aggregates.
func HashID(businessID, email string) string {
	input := strings.ToLower(strings.TrimSpace(businessID)) + ":" + strings.ToLower(strings.TrimSpace(email))
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, businessID, customerHash string) (*Entity, error) {
	return s.repo.Get(ctx, businessID, customerHash)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}
