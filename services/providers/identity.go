package providers

// Identity names one of the two modeled providers.
type Identity string

const (
	// Primary serves text-only traffic in two gears.
	Primary Identity = "primary"

	// Secondary serves a single tier and all multimodal traffic.
	Secondary Identity = "secondary"
)

// String returns the provider name.
func (i Identity) String() string {
	return string(i)
}

// Other returns the opposite provider, for cross-provider fallback.
func (i Identity) Other() Identity {
	if i == Primary {
		return Secondary
	}
	return Primary
}
