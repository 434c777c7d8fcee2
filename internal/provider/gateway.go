package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type MandateInput struct {
	ApplicationID   string
	AccountNumber   string
	BankName        string
	RecurringAmount decimal.Decimal
	Frequency       string
}

// Gateway is the payment provider boundary: NUBAN account resolution and
// recurring-debit mandate registration.
type Gateway interface {
	VerifyAccount(ctx context.Context, bankName, accountNumber string) (string, error)
	RegisterMandate(ctx context.Context, in MandateInput) (string, error)
}

// StubGateway echoes deterministic responses for local development and tests.
type StubGateway struct{}

func NewStubGateway() *StubGateway {
	return &StubGateway{}
}

func (g *StubGateway) VerifyAccount(_ context.Context, bankName, accountNumber string) (string, error) {
	if strings.TrimSpace(accountNumber) == "" {
		return "", fmt.Errorf("missing account number")
	}
	suffix := accountNumber
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return fmt.Sprintf("STUB ACCOUNT %s (%s)", suffix, strings.ToUpper(strings.TrimSpace(bankName))), nil
}

func (g *StubGateway) RegisterMandate(_ context.Context, in MandateInput) (string, error) {
	if strings.TrimSpace(in.ApplicationID) == "" {
		return "", fmt.Errorf("missing application id")
	}
	prefix := in.ApplicationID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("mnd_stub_%s_%x", prefix, time.Now().UTC().UnixNano()), nil
}
