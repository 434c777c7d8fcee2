package trust

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

const (
	baseScore       = 50
	bvnBonus        = 20
	monthlyBonus    = 10
	jitterUpperBand = 15
)

var (
	amountBandSmall  = decimal.NewFromInt(50000)
	amountBandMedium = decimal.NewFromInt(100000)
	amountBandLarge  = decimal.NewFromInt(200000)
)

type ScoreInput struct {
	HasBVN           bool
	Amount           decimal.Decimal
	PaymentFrequency Frequency
}

// Evaluator computes trust scores. The jitter source is injected so scoring
// stays reproducible: the default evaluator adds none, and production can opt
// into a seeded band via WithSeededJitter.
type Evaluator struct {
	jitter func() int
}

type Option func(*Evaluator)

func WithJitterSource(fn func() int) Option {
	return func(e *Evaluator) { e.jitter = fn }
}

// WithSeededJitter draws uniformly from [0, 15) using the given seed.
func WithSeededJitter(seed int64) Option {
	rng := rand.New(rand.NewSource(seed))
	return func(e *Evaluator) {
		e.jitter = func() int { return rng.Intn(jitterUpperBand) }
	}
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{jitter: func() int { return 0 }}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the 0-100 trust score for a new application: 50 base,
// +20 when a BVN is supplied, a risk adjustment that favours smaller amounts,
// and +10 for monthly cadence.
func (e *Evaluator) Score(in ScoreInput) int {
	score := baseScore
	if in.HasBVN {
		score += bvnBonus
	}
	score += amountAdjustment(in.Amount)
	if in.PaymentFrequency == FrequencyMonthly {
		score += monthlyBonus
	}
	score += e.jitter()
	return clamp(score)
}

func amountAdjustment(amount decimal.Decimal) int {
	switch {
	case amount.LessThan(amountBandSmall):
		return 20
	case amount.LessThan(amountBandMedium):
		return 15
	case amount.LessThan(amountBandLarge):
		return 10
	default:
		return 0
	}
}

// Decide maps a score onto the approval decision using the business's
// configured cutoffs, inclusive on the upper bound of each bracket.
func Decide(score int, cfg RuleConfig) Status {
	switch {
	case score >= cfg.AutoApproveThreshold:
		return StatusApproved
	case score >= cfg.AutoDeclineThreshold:
		return StatusUnderReview
	default:
		return StatusDeclined
	}
}

// TierFor buckets a score against the configured tier thresholds,
// evaluated high to low.
func TierFor(score int, cfg RuleConfig) Tier {
	switch {
	case score >= cfg.TrustedMin:
		return TierTrusted
	case score >= cfg.VerifiedMin:
		return TierVerified
	case score >= cfg.NewMin:
		return TierNew
	case score >= cfg.RestrictedMin:
		return TierRestricted
	default:
		return TierDefaulted
	}
}

// TierWithHistory applies the minimum-history gate: a customer may not be
// classified trusted until they have enough successful payments, regardless
// of raw score.
func TierWithHistory(score, successfulPayments int, cfg RuleConfig) Tier {
	tier := TierFor(score, cfg)
	if tier == TierTrusted && successfulPayments < cfg.MinHistoryForTrusted {
		return TierVerified
	}
	return tier
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
