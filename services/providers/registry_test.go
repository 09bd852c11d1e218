package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	identity  Identity
	available bool
	model     string
}

func (s *stubProvider) Identity() Identity    { return s.identity }
func (s *stubProvider) Available() bool       { return s.available }
func (s *stubProvider) DefaultModel() string  { return s.model }
func (s *stubProvider) Complete(ctx context.Context, req *Request, model string) (*Response, error) {
	return &Response{Provider: s.identity, Model: model}, nil
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	t.Run("registers provider", func(t *testing.T) {
		err := registry.Register(&stubProvider{identity: Primary, available: true})
		require.NoError(t, err)

		got, err := registry.Get(Primary)
		require.NoError(t, err)
		assert.Equal(t, Primary, got.Identity())
	})

	t.Run("rejects duplicate identity", func(t *testing.T) {
		err := registry.Register(&stubProvider{identity: Primary})
		assert.ErrorIs(t, err, ErrProviderAlreadyRegistered)
	})

	t.Run("rejects nil provider", func(t *testing.T) {
		assert.Error(t, registry.Register(nil))
	})
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get(Secondary)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestRegistry_Available(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubProvider{identity: Primary, available: true}))
	require.NoError(t, registry.Register(&stubProvider{identity: Secondary, available: false}))

	assert.True(t, registry.Available(Primary))
	assert.False(t, registry.Available(Secondary), "registered but unconfigured")
	assert.False(t, registry.Available("tertiary"), "never registered")
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubProvider{identity: Primary}))
	require.NoError(t, registry.Register(&stubProvider{identity: Secondary}))

	assert.ElementsMatch(t, []Identity{Primary, Secondary}, registry.List())
}
