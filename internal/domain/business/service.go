package business

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

var hundred = decimal.NewFromInt(100)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, in CreateInput) (*Entity, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "required"}
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, &ValidationError{Field: "email", Message: "valid email required"}
	}

	created, err := s.repo.Create(ctx, in, PaymentSlug(in.Name))
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.UpsertRules(ctx, DefaultPaymentRules(created.ID)); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveSlug looks a business up by its public payment-link slug, returning
// the checkout policy alongside the profile.
func (s *Service) ResolveSlug(ctx context.Context, slug string) (*Entity, *PaymentRules, error) {
	entity, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, nil, err
	}
	rules, err := s.Rules(ctx, entity.ID)
	if err != nil {
		return nil, nil, err
	}
	return entity, rules, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateInput) (*Entity, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "required"}
	}
	return s.repo.Update(ctx, id, in)
}

// Rules returns the stored configuration, falling back to defaults for a
// business that has never saved one.
func (s *Service) Rules(ctx context.Context, businessID string) (*PaymentRules, error) {
	rules, err := s.repo.GetRules(ctx, businessID)
	if err == nil {
		return rules, nil
	}
	if _, lookupErr := s.repo.GetByID(ctx, businessID); lookupErr != nil {
		return nil, lookupErr
	}
	defaults := DefaultPaymentRules(businessID)
	return &defaults, nil
}

func (s *Service) UpdateRules(ctx context.Context, rules PaymentRules) (*PaymentRules, error) {
	if err := rules.Trust.Validate(); err != nil {
		return nil, &ValidationError{Field: "trust", Message: err.Error()}
	}
	if rules.MaxInstallmentPeriod < 1 {
		return nil, &ValidationError{Field: "max_instalment_period", Message: "must be at least 1"}
	}
	if rules.DownPaymentPercent.IsNegative() || rules.DownPaymentPercent.GreaterThan(hundred) {
		return nil, &ValidationError{Field: "down_payment_percentage", Message: "must be within 0-100"}
	}
	if rules.EnableFees && rules.InterestRate.IsNegative() {
		return nil, &ValidationError{Field: "interest_rate", Message: "must not be negative"}
	}
	if _, err := s.repo.GetByID(ctx, rules.BusinessID); err != nil {
		return nil, err
	}
	return s.repo.UpsertRules(ctx, rules)
}

func (s *Service) RegeneratePaymentLink(ctx context.Context, businessID string) (string, error) {
	entity, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return "", err
	}
	slug := PaymentSlug(entity.Name)
	if err := s.repo.SetPaymentSlug(ctx, businessID, slug); err != nil {
		return "", err
	}
	return slug, nil
}

// PaymentSlug derives a shareable link slug from the business name plus a
// keccak-derived suffix so two businesses with the same name never collide.
func PaymentSlug(name string) string {
	base := slugify(name)
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(name + ":" + uuid.NewString()))
	suffix := hex.EncodeToString(h.Sum(nil))[:6]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
