package provider

import (
	"fmt"
	"strings"

	"github.com/faithadeola/TrustRail/internal/config"
)

func NewGatewayFromConfig(cfg config.Config) (Gateway, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.ProviderMode))
	if mode == "" || mode == "stub" {
		return NewStubGateway(), nil
	}
	if mode != "live" {
		return nil, fmt.Errorf("invalid PROVIDER_MODE: %s", cfg.ProviderMode)
	}
	return NewHTTPGateway(cfg.ProviderBaseURL, cfg.ProviderAPIKey)
}
