// Package classify labels provider errors from their unstructured
// message text. Vendors rarely return machine-readable failure codes
// through every SDK path, so the gateway matches lower-cased error text
// against curated keyword tables. The tables are exported and versioned
// so tests can enumerate every keyword without invoking a real
// provider.
package classify

import "strings"

// Class is the failure label derived for one error. It is computed
// fresh on every classification and never stored.
type Class int

const (
	// Other is any failure no keyword table matched. Not retried,
	// not dispatched.
	Other Class = iota

	// RateLimit indicates quota exhaustion or throttling; recoverable
	// by downshifting gears or escalating providers.
	RateLimit

	// ModelDecommissioned indicates the requested model was retired by
	// the vendor; recoverable by cross-provider fallback.
	ModelDecommissioned

	// Critical indicates an auth or programming failure that retries
	// cannot fix; forwarded to the self-repair collaborator.
	Critical
)

// String returns the class label.
func (c Class) String() string {
	switch c {
	case RateLimit:
		return "rate_limit"
	case ModelDecommissioned:
		return "model_decommissioned"
	case Critical:
		return "critical"
	default:
		return "other"
	}
}

// KeywordTableVersion identifies the curated keyword lists below.
// Bump it when adding or removing keywords.
const KeywordTableVersion = "v1"

// Keyword tables, matched case-insensitively as substrings.
var (
	RateLimitKeywords = []string{
		"rate limit",
		"quota",
		"too many requests",
		"429",
	}

	DecommissionedKeywords = []string{
		"model_decommissioned",
		"decommissioned",
		"model has been deprecated",
	}

	CriticalKeywords = []string{
		"authentication",
		"auth",
		"unauthorized",
		"401",
		"403",
		"syntax",
		"import",
		"module",
		"indentation",
		"name error",
		"attribute error",
		"type error",
	}
)

// Classify labels err by matching its lower-cased message against the
// keyword tables. Precedence is RateLimit, then ModelDecommissioned,
// then Critical: status-code substrings like "401" can coincidentally
// appear in rate-limit or decommission messages, so the transient
// classes are checked first.
func Classify(err error) Class {
	if err == nil {
		return Other
	}

	message := strings.ToLower(err.Error())

	switch {
	case containsAny(message, RateLimitKeywords):
		return RateLimit
	case containsAny(message, DecommissionedKeywords):
		return ModelDecommissioned
	case containsAny(message, CriticalKeywords):
		return Critical
	default:
		return Other
	}
}

func containsAny(message string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}
