package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/castforge/castforge/pkg/provider"
)

const generatorName = "openai"

// Generator produces outlines and scripts via the chat completions API.
type Generator struct {
	client *client
}

var _ provider.Generator = (*Generator)(nil)

func NewGenerator(cfg Config, opts ...Option) *Generator {
	return &Generator{client: newClient(cfg, opts...)}
}

func (g *Generator) Name() string { return generatorName }

const outlineSystemPrompt = `You are a podcast planner. Respond with JSON only, shaped as
{"title": string, "sections": [{"heading": string, "bullets": [string]}]}.
Plan 3 to 6 sections. Headings become chapter titles; keep them short.`

func (g *Generator) GenerateOutline(ctx context.Context, req provider.OutlineRequest) (*provider.OutlineResult, error) {
	if err := g.client.requireKey(generatorName); err != nil {
		return nil, err
	}

	input := req.Input
	user := fmt.Sprintf(
		"Topic: %s\nLanguage: %s\nTone: %s\nStyle: %s\nTarget audience: %s\nShow format: %s\nTarget duration: %d minutes",
		input.Topic, input.Language, input.Tone, input.ContentType, input.TargetAudience, input.Format, input.DurationMinutes)

	content, usage, err := g.client.complete(ctx, outlineSystemPrompt, user, true)
	if err != nil {
		return nil, fmt.Errorf("generate outline: %w", err)
	}

	var outline provider.Outline
	if err := decodeModelJSON(content, &outline); err != nil {
		return nil, fmt.Errorf("generate outline: parse payload: %w", err)
	}
	if outline.Title == "" || len(outline.Sections) == 0 {
		return nil, fmt.Errorf("generate outline: model returned an empty outline")
	}
	return &provider.OutlineResult{Outline: outline, Usage: usage}, nil
}

const scriptSystemPrompt = `You are a podcast scriptwriter. Write the full episode script in
Markdown. Use one level-2 heading (##) per outline section, with the
spoken text below it. Do not add stage directions or speaker labels.`

func (g *Generator) GenerateScript(ctx context.Context, req provider.ScriptRequest) (*provider.ScriptResult, error) {
	if err := g.client.requireKey(generatorName); err != nil {
		return nil, err
	}

	outlineJSON, err := json.Marshal(req.Outline)
	if err != nil {
		return nil, fmt.Errorf("generate script: marshal outline: %w", err)
	}

	input := req.Input
	user := fmt.Sprintf(
		"Write the script for this outline:\n%s\n\nLanguage: %s\nTone: %s\nTarget audience: %s\nTarget duration: %d minutes (about %d words).",
		outlineJSON, input.Language, input.Tone, input.TargetAudience,
		input.DurationMinutes, input.DurationMinutes*140)

	content, usage, err := g.client.complete(ctx, scriptSystemPrompt, user, false)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	return &provider.ScriptResult{Markdown: content, Usage: usage}, nil
}
