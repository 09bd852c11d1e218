package providers

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderAlreadyRegistered is returned when registering a
	// duplicate identity.
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// Registry holds the configured provider instances, keyed by identity.
// Registration happens once during construction; afterwards the
// registry is effectively read-only.
type Registry struct {
	mu        sync.RWMutex
	providers map[Identity]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[Identity]Provider),
	}
}

// Register adds a provider instance.
func (r *Registry) Register(provider Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	identity := provider.Identity()
	if _, exists := r.providers[identity]; exists {
		return fmt.Errorf("%w: %s", ErrProviderAlreadyRegistered, identity)
	}

	r.providers[identity] = provider
	return nil
}

// Get returns the provider registered under identity.
func (r *Registry) Get(identity Identity) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[identity]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, identity)
	}
	return provider, nil
}

// Available reports whether identity is registered and configured.
func (r *Registry) Available(identity Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[identity]
	return exists && provider.Available()
}

// List returns the registered identities.
func (r *Registry) List() []Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := make([]Identity, 0, len(r.providers))
	for identity := range r.providers {
		identities = append(identities, identity)
	}
	return identities
}
