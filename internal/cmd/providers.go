package cmd

import (
	"fmt"
	"strings"

	"github.com/castforge/castforge/internal/config"
	"github.com/castforge/castforge/pkg/jobstore"
	"github.com/castforge/castforge/pkg/provider"
	"github.com/castforge/castforge/pkg/provider/gemini"
	"github.com/castforge/castforge/pkg/provider/mock"
	"github.com/castforge/castforge/pkg/provider/openai"
)

// buildRegistry registers every backend the binary ships with.
func buildRegistry(cfg *config.Config) *provider.Registry {
	reg := provider.NewRegistry()

	reg.RegisterGenerator("mock", func() (provider.Generator, error) {
		return mock.NewGenerator(), nil
	})
	reg.RegisterGenerator("openai", func() (provider.Generator, error) {
		return openai.NewGenerator(openai.Config{
			APIKey:  cfg.Providers.OpenAI.APIKey,
			BaseURL: cfg.Providers.OpenAI.BaseURL,
			Model:   cfg.Providers.OpenAI.Model,
		}), nil
	})
	reg.RegisterGenerator("gemini", func() (provider.Generator, error) {
		return gemini.NewGenerator(gemini.Config{
			APIKey:  cfg.Providers.Gemini.APIKey,
			BaseURL: cfg.Providers.Gemini.BaseURL,
			Model:   cfg.Providers.Gemini.Model,
		}), nil
	})

	reg.RegisterSynthesizer("mock", func() (provider.Synthesizer, error) {
		return mock.NewSynthesizer(), nil
	})
	reg.RegisterSynthesizer("openai", func() (provider.Synthesizer, error) {
		return openai.NewSynthesizer(openai.Config{
			APIKey:      cfg.Providers.OpenAI.APIKey,
			BaseURL:     cfg.Providers.OpenAI.BaseURL,
			SpeechModel: cfg.Providers.OpenAI.SpeechModel,
			Voice:       cfg.Providers.OpenAI.Voice,
		}), nil
	})

	return reg
}

// buildProviders resolves the configured ordered backend chains.
func buildProviders(cfg *config.Config) (provider.Generator, provider.Synthesizer, jobstore.ProviderInfo, error) {
	reg := buildRegistry(cfg)

	genNames := provider.SplitList(cfg.Providers.Generators)
	gen, err := reg.ResolveGenerator(genNames)
	if err != nil {
		return nil, nil, jobstore.ProviderInfo{}, fmt.Errorf("resolve generators %q: %w", cfg.Providers.Generators, err)
	}

	synNames := provider.SplitList(cfg.Providers.Synthesizers)
	syn, err := reg.ResolveSynthesizer(synNames)
	if err != nil {
		return nil, nil, jobstore.ProviderInfo{}, fmt.Errorf("resolve synthesizers %q: %w", cfg.Providers.Synthesizers, err)
	}

	info := jobstore.ProviderInfo{
		Generator:   strings.Join(normalizeNames(genNames), ","),
		Synthesizer: strings.Join(normalizeNames(synNames), ","),
	}
	return gen, syn, info, nil
}

func normalizeNames(names []string) []string {
	if len(names) == 0 {
		return []string{provider.DefaultBackend}
	}
	return names
}
