package trust

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusApproved    Status = "approved"
	StatusUnderReview Status = "under_review"
	StatusDeclined    Status = "declined"
)

// Tier is the display/policy bucket derived from a trust score and a
// business's configured thresholds. It is independent of the approval
// decision.
type Tier string

const (
	TierTrusted    Tier = "TRUSTED"
	TierVerified   Tier = "VERIFIED"
	TierNew        Tier = "NEW"
	TierRestricted Tier = "RESTRICTED"
	TierDefaulted  Tier = "DEFAULTED"
)

// DownPaymentPercent returns the down-payment policy attached to a tier:
// trusted customers pay nothing up front, defaulted and restricted customers
// are not extended installment credit at all.
func (t Tier) DownPaymentPercent() decimal.Decimal {
	switch t {
	case TierTrusted:
		return decimal.Zero
	case TierVerified:
		return decimal.NewFromInt(20)
	case TierNew:
		return decimal.NewFromInt(50)
	default:
		return decimal.NewFromInt(100)
	}
}

type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyDaily    Frequency = "daily"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyMonthly, FrequencyBiweekly, FrequencyWeekly, FrequencyDaily:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("unknown payment frequency %q", s)
	}
}

// RuleConfig is a business's risk configuration. Tier thresholds drive the
// display bucketing, the auto thresholds drive the approval decision, and the
// remaining fields drive the payment-history reputation policy applied by the
// ingestion loop.
type RuleConfig struct {
	TrustedMin    int `json:"trusted_min"`
	VerifiedMin   int `json:"verified_min"`
	NewMin        int `json:"new_min"`
	RestrictedMin int `json:"restricted_min"`

	AutoApproveThreshold int `json:"auto_approve_threshold"`
	AutoDeclineThreshold int `json:"auto_decline_threshold"`

	MaxOutstandingBalance   decimal.Decimal `json:"max_outstanding_balance"`
	ConsecutiveFailureLimit int             `json:"consecutive_failure_limit"`
	LatePaymentPenalty      int             `json:"late_payment_penalty"`
	OnTimeBonus             int             `json:"on_time_bonus"`
	MinHistoryForTrusted    int             `json:"min_history_for_trusted"`
}

// DefaultRuleConfig is the canonical default applied when a business has not
// stored its own configuration.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		TrustedMin:    80,
		VerifiedMin:   60,
		NewMin:        40,
		RestrictedMin: 20,

		AutoApproveThreshold: 70,
		AutoDeclineThreshold: 40,

		MaxOutstandingBalance:   decimal.NewFromInt(500000),
		ConsecutiveFailureLimit: 3,
		LatePaymentPenalty:      10,
		OnTimeBonus:             5,
		MinHistoryForTrusted:    5,
	}
}

// Validate rejects overlapping or inverted tier thresholds and inconsistent
// decision cutoffs before a configuration is persisted.
func (c RuleConfig) Validate() error {
	for name, v := range map[string]int{
		"trusted_min":            c.TrustedMin,
		"verified_min":           c.VerifiedMin,
		"new_min":                c.NewMin,
		"restricted_min":         c.RestrictedMin,
		"auto_approve_threshold": c.AutoApproveThreshold,
		"auto_decline_threshold": c.AutoDeclineThreshold,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be within 0-100", name)
		}
	}
	if !(c.TrustedMin > c.VerifiedMin && c.VerifiedMin > c.NewMin && c.NewMin > c.RestrictedMin) {
		return fmt.Errorf("tier thresholds must satisfy trusted_min > verified_min > new_min > restricted_min")
	}
	if c.AutoApproveThreshold <= c.AutoDeclineThreshold {
		return fmt.Errorf("auto_approve_threshold must be greater than auto_decline_threshold")
	}
	if c.MaxOutstandingBalance.IsNegative() {
		return fmt.Errorf("max_outstanding_balance must not be negative")
	}
	if c.ConsecutiveFailureLimit < 1 {
		return fmt.Errorf("consecutive_failure_limit must be at least 1")
	}
	if c.LatePaymentPenalty < 0 {
		return fmt.Errorf("late_payment_penalty must not be negative")
	}
	if c.OnTimeBonus < 0 {
		return fmt.Errorf("on_time_bonus must not be negative")
	}
	if c.MinHistoryForTrusted < 0 {
		return fmt.Errorf("min_history_for_trusted must not be negative")
	}
	return nil
}
