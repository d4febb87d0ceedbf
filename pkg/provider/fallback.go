package provider

import (
	"context"
	"fmt"
	"strings"
)

// FallbackGenerator tries each wrapped generator in order, moving to the
// next on any error. When every backend fails the per-backend failures are
// aggregated into one CallError.
type FallbackGenerator struct {
	backends []Generator
}

var _ Generator = (*FallbackGenerator)(nil)

// NewFallbackGenerator composes backends into one Generator. A single
// backend is returned unwrapped.
func NewFallbackGenerator(backends ...Generator) (Generator, error) {
	if len(backends) == 0 {
		return nil, &ConfigError{Reason: "no generator backends configured"}
	}
	if len(backends) == 1 {
		return backends[0], nil
	}
	return &FallbackGenerator{backends: backends}, nil
}

func (g *FallbackGenerator) Name() string {
	return compositeName(len(g.backends), func(i int) string { return g.backends[i].Name() })
}

func (g *FallbackGenerator) GenerateOutline(ctx context.Context, req OutlineRequest) (*OutlineResult, error) {
	var failures []Failure
	var last error
	for _, backend := range g.backends {
		res, err := backend.GenerateOutline(ctx, req)
		if err == nil {
			return res, nil
		}
		failures = append(failures, Failure{Provider: backend.Name(), Message: err.Error()})
		last = err
	}
	return nil, &CallError{Op: "GenerateOutline", Failures: failures, cause: last}
}

func (g *FallbackGenerator) GenerateScript(ctx context.Context, req ScriptRequest) (*ScriptResult, error) {
	var failures []Failure
	var last error
	for _, backend := range g.backends {
		res, err := backend.GenerateScript(ctx, req)
		if err == nil {
			return res, nil
		}
		failures = append(failures, Failure{Provider: backend.Name(), Message: err.Error()})
		last = err
	}
	return nil, &CallError{Op: "GenerateScript", Failures: failures, cause: last}
}

// FallbackSynthesizer is the synthesis counterpart of FallbackGenerator.
type FallbackSynthesizer struct {
	backends []Synthesizer
}

var _ Synthesizer = (*FallbackSynthesizer)(nil)

// NewFallbackSynthesizer composes backends into one Synthesizer. A single
// backend is returned unwrapped.
func NewFallbackSynthesizer(backends ...Synthesizer) (Synthesizer, error) {
	if len(backends) == 0 {
		return nil, &ConfigError{Reason: "no synthesizer backends configured"}
	}
	if len(backends) == 1 {
		return backends[0], nil
	}
	return &FallbackSynthesizer{backends: backends}, nil
}

func (s *FallbackSynthesizer) Name() string {
	return compositeName(len(s.backends), func(i int) string { return s.backends[i].Name() })
}

func (s *FallbackSynthesizer) Speak(ctx context.Context, req SpeechRequest) (*SpeechResult, error) {
	var failures []Failure
	var last error
	for _, backend := range s.backends {
		res, err := backend.Speak(ctx, req)
		if err == nil {
			return res, nil
		}
		failures = append(failures, Failure{Provider: backend.Name(), Message: err.Error()})
		last = err
	}
	return nil, &CallError{Op: "Speak", Failures: failures, cause: last}
}

func compositeName(n int, name func(int) string) string {
	names := make([]string, n)
	for i := range names {
		names[i] = name(i)
	}
	return fmt.Sprintf("fallback(%s)", strings.Join(names, ","))
}
