package provenance

import (
	"errors"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestResolveProxyAlwaysFullConfidence(t *testing.T) {
	// The explicit override must lose to the proxy rule.
	in := Input{Confidence: floatPtr(0.3), IsProxy: true, ProxyAgent: "scheduler-bot"}

	r, err := Resolve(in, 40)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", r.Confidence)
	}
	if !r.IsProxy || r.ProxyAgent != "scheduler-bot" {
		t.Errorf("provenance = %+v, want proxy with agent preserved", r)
	}
}

func TestResolveProxyRequiresAgent(t *testing.T) {
	_, err := Resolve(Input{IsProxy: true}, 100)
	if !errors.Is(err, ErrMissingProxyAgent) {
		t.Errorf("error = %v, want ErrMissingProxyAgent", err)
	}
}

func TestResolveExplicitOverride(t *testing.T) {
	r, err := Resolve(Input{Confidence: floatPtr(0.42)}, 10)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.Confidence != 0.42 {
		t.Errorf("Confidence = %v, want 0.42 (verbatim override)", r.Confidence)
	}
}

func TestResolveOverrideOutOfRange(t *testing.T) {
	for _, c := range []float64{-0.1, 1.1, 2.0} {
		_, err := Resolve(Input{Confidence: floatPtr(c)}, 100)
		if !errors.Is(err, ErrConfidenceOutOfRange) {
			t.Errorf("Resolve(override=%v) error = %v, want ErrConfidenceOutOfRange", c, err)
		}
	}
}

func TestResolveCognitiveStateFallback(t *testing.T) {
	tests := []struct {
		state int
		want  float64
	}{
		{100, 1.0},
		{75, 0.75},
		{0, 0.0},
		{150, 1.0}, // clamped
		{-5, 0.0},  // clamped
	}
	for _, tt := range tests {
		r, err := Resolve(Input{}, tt.state)
		if err != nil {
			t.Fatalf("Resolve(state=%d) error = %v", tt.state, err)
		}
		if r.Confidence != tt.want {
			t.Errorf("Resolve(state=%d) confidence = %v, want %v", tt.state, r.Confidence, tt.want)
		}
	}
}

func TestResolveDropsAgentWithoutProxyFlag(t *testing.T) {
	r, err := Resolve(Input{ProxyAgent: "stray-agent"}, 100)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.IsProxy || r.ProxyAgent != "" {
		t.Errorf("provenance = %+v, want non-proxy with empty agent", r)
	}
}
