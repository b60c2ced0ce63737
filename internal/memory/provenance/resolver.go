// Package provenance resolves the confidence score and authorship metadata
// attached to a fact before it is persisted.
package provenance

import (
	"errors"
	"fmt"
)

// MaxCognitiveState is the upper bound of the cognitive-state scale supplied
// by the user profile provider, and the default when no profile exists.
const MaxCognitiveState = 100

// Validation errors surfaced to callers before any I/O happens.
var (
	ErrMissingProxyAgent    = errors.New("proxy-authored facts require a proxy_agent name")
	ErrConfidenceOutOfRange = errors.New("confidence override must be within [0.0, 1.0]")
)

// Input carries the caller-supplied provenance fields for one fact.
type Input struct {
	// Confidence is an optional explicit override; nil means unset.
	Confidence *float64
	// IsProxy marks the fact as authored by an automated agent on the
	// user's behalf.
	IsProxy bool
	// ProxyAgent names the authoring agent; required when IsProxy is set.
	ProxyAgent string
}

// Resolution is the resolved provenance to persist with the fact.
type Resolution struct {
	Confidence float64
	IsProxy    bool
	ProxyAgent string
}

// Resolve computes confidence and authorship, first applicable rule wins:
//
//  1. proxy-authored facts are fully trusted (confidence 1.0) and must name
//     their agent;
//  2. an explicit confidence override is used verbatim after range
//     validation;
//  3. otherwise confidence derives from the user's cognitive state
//     (cognitiveState/100), so an impaired or unreliable self-reporter
//     yields down-weighted facts.
//
// A ProxyAgent supplied without IsProxy is dropped: the persisted invariant
// is that proxy_agent is set if and only if is_proxy is true.
func Resolve(in Input, cognitiveState int) (Resolution, error) {
	if in.IsProxy {
		if in.ProxyAgent == "" {
			return Resolution{}, ErrMissingProxyAgent
		}
		return Resolution{Confidence: 1.0, IsProxy: true, ProxyAgent: in.ProxyAgent}, nil
	}

	if in.Confidence != nil {
		c := *in.Confidence
		if c < 0.0 || c > 1.0 {
			return Resolution{}, fmt.Errorf("%w: got %v", ErrConfidenceOutOfRange, c)
		}
		return Resolution{Confidence: c}, nil
	}

	if cognitiveState < 0 {
		cognitiveState = 0
	}
	if cognitiveState > MaxCognitiveState {
		cognitiveState = MaxCognitiveState
	}
	return Resolution{Confidence: float64(cognitiveState) / float64(MaxCognitiveState)}, nil
}
