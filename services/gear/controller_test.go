package gear

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestController() *Controller {
	return NewController("model-high", "model-low", zap.NewNop())
}

func TestController_StartsInHigh(t *testing.T) {
	c := newTestController()

	assert.Equal(t, High, c.Current())
	assert.Equal(t, "model-high", c.CurrentModel())
}

func TestController_ShiftToLow(t *testing.T) {
	c := newTestController()

	c.ShiftToLow()
	assert.Equal(t, Low, c.Current())
	assert.Equal(t, "model-low", c.CurrentModel())
}

func TestController_ShiftIdempotence(t *testing.T) {
	c := newTestController()

	t.Run("double shift to low", func(t *testing.T) {
		c.ShiftToLow()
		c.ShiftToLow()
		assert.Equal(t, Low, c.Current())
		assert.Equal(t, "model-low", c.CurrentModel())
	})

	t.Run("double shift to high", func(t *testing.T) {
		c.ShiftToHigh()
		c.ShiftToHigh()
		assert.Equal(t, High, c.Current())
		assert.Equal(t, "model-high", c.CurrentModel())
	})
}

func TestController_Snapshot(t *testing.T) {
	c := newTestController()

	g, model := c.Snapshot()
	assert.Equal(t, High, g)
	assert.Equal(t, "model-high", model)

	c.ShiftToLow()
	g, model = c.Snapshot()
	assert.Equal(t, Low, g)
	assert.Equal(t, "model-low", model)
}

func TestController_ConcurrentShifts(t *testing.T) {
	c := newTestController()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.ShiftToLow()
		}()
		go func() {
			defer wg.Done()
			c.ShiftToHigh()
		}()
	}
	wg.Wait()

	// Whichever shift landed last, the state is one of the two gears
	// and model resolution matches it.
	g, model := c.Snapshot()
	if g == Low {
		assert.Equal(t, "model-low", model)
	} else {
		assert.Equal(t, "model-high", model)
	}
}

func TestGear_String(t *testing.T) {
	assert.Equal(t, "high", High.String())
	assert.Equal(t, "low", Low.String())
}
