package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/domain/trust"
)

var hundred = decimal.NewFromInt(100)

type PreviewInput struct {
	TotalAmount        decimal.Decimal
	DownPaymentPercent decimal.Decimal
	NumInstallments    int
	EnableFees         bool
	InterestRate       decimal.Decimal
	StartDate          time.Time
	Frequency          trust.Frequency
}

type Installment struct {
	Number  int             `json:"number"`
	DueDate time.Time       `json:"date"`
	Amount  decimal.Decimal `json:"amount"`
}

type Preview struct {
	DownPayment       decimal.Decimal `json:"down_payment"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	NumInstallments   int             `json:"num_installments"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	Total             decimal.Decimal `json:"total"`
	Schedule          []Installment   `json:"schedule"`
}

// GeneratePreview produces the amortization preview for an installment plan.
// Interest is flat-rate: when fees are enabled each period is charged
// remaining * rate / 100, so the total interest is that amount times the
// number of installments. The function is pure; calling it twice with the
// same input yields the same schedule.
func GeneratePreview(in PreviewInput) (*Preview, error) {
	if !in.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("total_amount must be positive")
	}
	if in.NumInstallments < 1 {
		return nil, fmt.Errorf("num_installments must be at least 1")
	}
	if in.DownPaymentPercent.IsNegative() || in.DownPaymentPercent.GreaterThan(hundred) {
		return nil, fmt.Errorf("down_payment_percentage must be within 0-100")
	}
	if in.EnableFees && in.InterestRate.IsNegative() {
		return nil, fmt.Errorf("interest_rate must not be negative")
	}
	if _, err := trust.ParseFrequency(string(in.Frequency)); err != nil {
		return nil, err
	}

	downPayment := in.TotalAmount.Mul(in.DownPaymentPercent).Div(hundred)
	remaining := in.TotalAmount.Sub(downPayment)

	totalInterest := decimal.Zero
	if in.EnableFees {
		periodInterest := remaining.Mul(in.InterestRate).Div(hundred)
		totalInterest = periodInterest.Mul(decimal.NewFromInt(int64(in.NumInstallments)))
	}

	installmentAmount := remaining.Add(totalInterest).Div(decimal.NewFromInt(int64(in.NumInstallments)))

	installments := make([]Installment, 0, in.NumInstallments)
	for i := 1; i <= in.NumInstallments; i++ {
		installments = append(installments, Installment{
			Number:  i,
			DueDate: dueDate(in.StartDate, in.Frequency, i),
			Amount:  installmentAmount,
		})
	}

	return &Preview{
		DownPayment:       downPayment,
		InstallmentAmount: installmentAmount,
		NumInstallments:   in.NumInstallments,
		TotalInterest:     totalInterest,
		Total:             in.TotalAmount.Add(totalInterest),
		Schedule:          installments,
	}, nil
}

// dueDate computes the date of period i (1-indexed). Monthly plans use
// calendar-month arithmetic; the other frequencies use fixed day intervals.
func dueDate(start time.Time, freq trust.Frequency, period int) time.Time {
	switch freq {
	case trust.FrequencyMonthly:
		return start.AddDate(0, period-1, 0)
	case trust.FrequencyBiweekly:
		return start.AddDate(0, 0, 14*(period-1))
	case trust.FrequencyWeekly:
		return start.AddDate(0, 0, 7*(period-1))
	default:
		return start.AddDate(0, 0, period-1)
	}
}
