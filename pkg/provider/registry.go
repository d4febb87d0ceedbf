package provider

import "strings"

// DefaultBackend is used when no backend list is configured.
const DefaultBackend = "mock"

// GeneratorFactory builds one named generator backend.
type GeneratorFactory func() (Generator, error)

// SynthesizerFactory builds one named synthesizer backend.
type SynthesizerFactory func() (Synthesizer, error)

// Registry maps backend names to factories. Resolution turns an ordered,
// comma-separated backend list into a single (possibly fallback-composed)
// capability instance.
type Registry struct {
	generators   map[string]GeneratorFactory
	synthesizers map[string]SynthesizerFactory
}

func NewRegistry() *Registry {
	return &Registry{
		generators:   make(map[string]GeneratorFactory),
		synthesizers: make(map[string]SynthesizerFactory),
	}
}

func (r *Registry) RegisterGenerator(name string, factory GeneratorFactory) {
	r.generators[name] = factory
}

func (r *Registry) RegisterSynthesizer(name string, factory SynthesizerFactory) {
	r.synthesizers[name] = factory
}

// ResolveGenerator builds the generator for an ordered backend name list.
// An unknown name is a ConfigError; an empty list resolves to
// DefaultBackend.
func (r *Registry) ResolveGenerator(names []string) (Generator, error) {
	names = normalizeList(names)
	backends := make([]Generator, 0, len(names))
	for _, name := range names {
		factory, ok := r.generators[name]
		if !ok {
			return nil, &ConfigError{Provider: name, Reason: "unknown generator backend"}
		}
		backend, err := factory()
		if err != nil {
			return nil, err
		}
		backends = append(backends, backend)
	}
	return NewFallbackGenerator(backends...)
}

// ResolveSynthesizer is the synthesis counterpart of ResolveGenerator.
func (r *Registry) ResolveSynthesizer(names []string) (Synthesizer, error) {
	names = normalizeList(names)
	backends := make([]Synthesizer, 0, len(names))
	for _, name := range names {
		factory, ok := r.synthesizers[name]
		if !ok {
			return nil, &ConfigError{Provider: name, Reason: "unknown synthesizer backend"}
		}
		backend, err := factory()
		if err != nil {
			return nil, err
		}
		backends = append(backends, backend)
	}
	return NewFallbackSynthesizer(backends...)
}

// SplitList parses a comma-separated backend list, trimming blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeList(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		out = []string{DefaultBackend}
	}
	return out
}
