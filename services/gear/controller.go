// Package gear owns the mutable model-tier state of the primary
// provider. The gateway runs the primary provider in one of two gears:
// High (the capable default model) and Low (a cheaper model entered
// after a rate limit). Gear state is the only cross-request mutable
// state in the gateway.
package gear

import (
	"sync"

	"go.uber.org/zap"
)

// Gear identifies a primary-provider model tier.
type Gear int

const (
	// High is the capable default tier. A fresh controller starts here.
	High Gear = iota

	// Low is the cheaper fallback tier, entered only via an explicit
	// rate-limit downshift from High.
	Low
)

// String returns the lower-case tier name.
func (g Gear) String() string {
	if g == Low {
		return "low"
	}
	return "high"
}

// Controller guards the current gear and resolves the primary model for
// it. All reads and writes go through a single mutex so concurrent
// requests never race on a shift.
type Controller struct {
	mu        sync.Mutex
	current   Gear
	highModel string
	lowModel  string
	logger    *zap.Logger
}

// NewController creates a controller in High gear.
func NewController(highModel, lowModel string, logger *zap.Logger) *Controller {
	return &Controller{
		current:   High,
		highModel: highModel,
		lowModel:  lowModel,
		logger:    logger,
	}
}

// Current returns the active gear.
func (c *Controller) Current() Gear {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CurrentModel returns the primary model for the active gear.
func (c *Controller) CurrentModel() string {
	_, model := c.Snapshot()
	return model
}

// Snapshot returns the active gear and its model under one lock
// acquisition, so callers get a consistent pair even while another
// request is shifting.
func (c *Controller) Snapshot() (Gear, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == Low {
		return Low, c.lowModel
	}
	return High, c.highModel
}

// ShiftToLow moves to Low gear. No-op when already in Low.
func (c *Controller) ShiftToLow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == Low {
		return
	}
	c.current = Low
	c.logger.Info("gear shift",
		zap.String("from", High.String()),
		zap.String("to", Low.String()),
		zap.String("model", c.lowModel))
}

// ShiftToHigh moves back to High gear. No-op when already in High.
func (c *Controller) ShiftToHigh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == High {
		return
	}
	c.current = High
	c.logger.Info("gear shift",
		zap.String("from", Low.String()),
		zap.String("to", High.String()),
		zap.String("model", c.highModel))
}
