// Package routing decides which provider serves a completion request
// and orchestrates the retry/escalation cascade when providers fail.
package routing

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/llm-gateway/services/gear"
	"github.com/upb/llm-gateway/services/providers"
	"github.com/upb/llm-gateway/services/tokens"
)

// TokenThreshold is the estimated token count above which routing
// prefers the secondary provider regardless of cost.
const TokenThreshold = 10000

// Selector chooses a provider for one request. Selection is pure: it
// reads gear state and provider availability but never mutates either.
type Selector struct {
	registry  *providers.Registry
	estimator tokens.Estimator
	logger    *zap.Logger
}

// NewSelector creates a selector. A nil estimator falls back to the
// character heuristic.
func NewSelector(registry *providers.Registry, estimator tokens.Estimator, logger *zap.Logger) *Selector {
	if estimator == nil {
		estimator = tokens.Heuristic{}
	}
	return &Selector{
		registry:  registry,
		estimator: estimator,
		logger:    logger,
	}
}

// Select returns the provider for one attempt. The decision is
// request-scoped and never persisted.
//
// Order: a configured forced provider wins; multimodal requests must go
// to the secondary provider; payloads over TokenThreshold estimated
// tokens prefer the secondary provider; everything else prefers the
// primary provider.
func (s *Selector) Select(req *providers.Request, current gear.Gear) (providers.Identity, error) {
	if req.ForcedProvider != nil {
		forced := *req.ForcedProvider
		if s.registry.Available(forced) {
			return forced, nil
		}
		s.logger.Warn("forced provider unavailable, falling through to automatic selection",
			zap.String("request_id", req.ID),
			zap.String("forced_provider", forced.String()))
	}

	if req.Multimodal {
		if s.registry.Available(providers.Secondary) {
			return providers.Secondary, nil
		}
		return "", fmt.Errorf("%w: multimodal requests require the secondary provider", ErrNoProviderAvailable)
	}

	estimated := s.estimator.Estimate(req.JoinedContent())
	if estimated > TokenThreshold {
		if s.registry.Available(providers.Secondary) {
			s.logger.Debug("routing large payload to secondary provider",
				zap.String("request_id", req.ID),
				zap.Int("estimated_tokens", estimated))
			return providers.Secondary, nil
		}
		if s.registry.Available(providers.Primary) {
			s.logger.Warn("payload exceeds token threshold but secondary provider unavailable, using primary",
				zap.String("request_id", req.ID),
				zap.Int("estimated_tokens", estimated),
				zap.String("gear", current.String()))
			return providers.Primary, nil
		}
		return "", ErrNoProviderAvailable
	}

	if s.registry.Available(providers.Primary) {
		return providers.Primary, nil
	}
	if s.registry.Available(providers.Secondary) {
		return providers.Secondary, nil
	}
	return "", ErrNoProviderAvailable
}
