package routing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/llm-gateway/services/autorepair"
	"github.com/upb/llm-gateway/services/classify"
	"github.com/upb/llm-gateway/services/gear"
	"github.com/upb/llm-gateway/services/providers"
)

// Coordinator runs the fallback cascade. A caller either gets a
// successful response, possibly served by a fallback provider and
// tagged as such, or one of the typed routing errors; transient
// failures with a viable alternative never surface.
//
// The cascade attempts every fallback at most once per direction and
// never loops: primary/high may retry as primary/low, and either
// provider may hand off to the other exactly once.
type Coordinator struct {
	registry *providers.Registry
	selector *Selector
	gears    *gear.Controller
	repair   autorepair.Dispatcher
	logger   *zap.Logger
}

// NewCoordinator creates a coordinator. A nil repair dispatcher
// disables auto-repair dispatch.
func NewCoordinator(registry *providers.Registry, selector *Selector, gears *gear.Controller, repair autorepair.Dispatcher, logger *zap.Logger) *Coordinator {
	if repair == nil {
		repair = autorepair.NopDispatcher{}
	}
	return &Coordinator{
		registry: registry,
		selector: selector,
		gears:    gears,
		repair:   repair,
		logger:   logger,
	}
}

// Complete serves one completion request, retrying across gears and
// providers as the failure classification allows.
func (c *Coordinator) Complete(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	entryGear := c.gears.Current()
	decision, err := c.selector.Select(req, entryGear)
	if err != nil {
		return nil, err
	}

	resp, model, err := c.attempt(ctx, decision, req)
	if err == nil {
		c.observeSuccess(decision)
		return resp, nil
	}

	class := classify.Classify(err)
	c.logger.Warn("provider attempt failed",
		zap.String("request_id", req.ID),
		zap.String("provider", decision.String()),
		zap.String("model", model),
		zap.String("class", class.String()),
		zap.Error(err))

	switch class {
	case classify.ModelDecommissioned:
		return c.recoverDecommissioned(ctx, req, decision, model, err)
	case classify.RateLimit:
		return c.recoverRateLimit(ctx, req, decision, entryGear, err)
	case classify.Critical:
		// Never retried; the only local action is to file a repair
		// request, then the original error reaches the caller.
		c.scheduleCritical(req, err)
		return nil, err
	default:
		return nil, err
	}
}

// attempt executes one provider call. The blocking round trip runs in
// its own goroutine; a cancelled caller is released immediately even
// while the HTTP exchange is still in flight.
func (c *Coordinator) attempt(ctx context.Context, identity providers.Identity, req *providers.Request) (*providers.Response, string, error) {
	provider, err := c.registry.Get(identity)
	if err != nil {
		return nil, "", err
	}

	model := provider.DefaultModel()
	gearLabel := ""
	if identity == providers.Primary {
		g, m := c.gears.Snapshot()
		model = m
		gearLabel = g.String()
	}

	type outcome struct {
		resp *providers.Response
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		resp, err := provider.Complete(ctx, req, model)
		done <- outcome{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, model, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return nil, model, out.err
		}
		if gearLabel != "" {
			out.resp.Gear = gearLabel
		}
		return out.resp, model, nil
	}
}

// observeSuccess recovers the gear after any successful primary
// completion made while in low gear.
func (c *Coordinator) observeSuccess(identity providers.Identity) {
	if identity == providers.Primary && c.gears.Current() == gear.Low {
		c.gears.ShiftToHigh()
	}
}

// recoverDecommissioned hands the request to the other provider once
// and files a repair request carrying the remediation hint.
func (c *Coordinator) recoverDecommissioned(ctx context.Context, req *providers.Request, from providers.Identity, model string, cause error) (*providers.Response, error) {
	decomErr := &ModelDecommissionedError{
		Model:       model,
		Replacement: c.replacementModel(from),
		Cause:       cause,
	}

	c.scheduleRepair(&autorepair.RepairRequest{
		IssueTitle: fmt.Sprintf("Decommissioned model: %s", model),
		FilePath:   req.FileContext,
		FixCode:    decomErr.RemediationHint(),
	})

	other := from.Other()
	if c.registry.Available(other) {
		resp, _, err := c.attempt(ctx, other, req)
		if err != nil {
			return nil, err
		}
		resp.FallbackFrom = &from
		c.observeSuccess(other)
		c.logger.Info("recovered decommissioned model via fallback",
			zap.String("request_id", req.ID),
			zap.String("from", from.String()),
			zap.String("to", other.String()))
		return resp, nil
	}

	return nil, decomErr
}

// recoverRateLimit walks the rate-limit cascade: primary downshifts
// once, then either provider escalates to the other once.
func (c *Coordinator) recoverRateLimit(ctx context.Context, req *providers.Request, decision providers.Identity, entryGear gear.Gear, cause error) (*providers.Response, error) {
	if decision == providers.Primary && entryGear == gear.High {
		c.gears.ShiftToLow()

		resp, retryModel, retryErr := c.attempt(ctx, providers.Primary, req)
		if retryErr == nil {
			c.observeSuccess(providers.Primary)
			return resp, nil
		}

		switch classify.Classify(retryErr) {
		case classify.RateLimit:
			if c.registry.Available(providers.Secondary) {
				resp, _, err := c.attempt(ctx, providers.Secondary, req)
				if err != nil {
					return nil, err
				}
				from := providers.Primary
				resp.FallbackFrom = &from
				c.logger.Info("escalated to secondary provider after both gears rate limited",
					zap.String("request_id", req.ID))
				return resp, nil
			}
			return nil, &RateLimitExhaustedError{
				Exhausted: []string{"primary/high", "primary/low"},
				Cause:     retryErr,
			}
		case classify.ModelDecommissioned:
			return c.recoverDecommissioned(ctx, req, providers.Primary, retryModel, retryErr)
		case classify.Critical:
			c.scheduleCritical(req, retryErr)
			return nil, retryErr
		default:
			// Not a rate-limit failure; do not mask it as one.
			return nil, retryErr
		}
	}

	// Secondary was rate limited, or primary was already in low gear:
	// the only remaining move is one cross-provider handoff.
	other := decision.Other()
	if c.registry.Available(other) {
		resp, _, err := c.attempt(ctx, other, req)
		if err != nil {
			return nil, err
		}
		resp.FallbackFrom = &decision
		c.observeSuccess(other)
		return resp, nil
	}

	exhausted := []string{decision.String()}
	if decision == providers.Primary {
		exhausted = []string{"primary/low"}
	}
	return nil, &RateLimitExhaustedError{Exhausted: exhausted, Cause: cause}
}

// replacementModel suggests what a decommissioned model should be
// replaced with: the fallback provider's default when registered, else
// the failing provider's own default.
func (c *Coordinator) replacementModel(from providers.Identity) string {
	if p, err := c.registry.Get(from.Other()); err == nil {
		return p.DefaultModel()
	}
	if p, err := c.registry.Get(from); err == nil {
		return p.DefaultModel()
	}
	return ""
}

// scheduleCritical files a repair request carrying the raw error text.
// The collaborator decides whether a fix exists; the gateway only
// forwards.
func (c *Coordinator) scheduleCritical(req *providers.Request, cause error) {
	c.scheduleRepair(&autorepair.RepairRequest{
		IssueTitle: fmt.Sprintf("Critical LLM gateway failure: %s", issueTitle(cause)),
		FilePath:   req.FileContext,
		FixCode:    cause.Error(),
	})
}

// scheduleRepair dispatches in the background. Dispatch failures are
// logged and discarded; the coordinator's failure surface stays limited
// to provider errors.
func (c *Coordinator) scheduleRepair(repairReq *autorepair.RepairRequest) {
	go func() {
		if err := c.repair.Dispatch(context.Background(), repairReq); err != nil {
			c.logger.Warn("auto-repair dispatch failed",
				zap.String("issue_title", repairReq.IssueTitle),
				zap.Error(err))
		}
	}()
}

// issueTitle condenses an error into a single short line.
func issueTitle(err error) string {
	line := err.Error()
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if len(line) > 100 {
		line = line[:100]
	}
	return line
}
