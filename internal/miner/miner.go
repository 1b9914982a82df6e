package miner

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadminer/internal/model"
	"github.com/sells-group/leadminer/pkg/anthropic"
)

// Miner runs lead mining and script generation against the analysis model.
type Miner struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	locale    model.Locale
}

// Options tunes a Miner. Zero values fall back to Sonnet, DefaultMaxTokens,
// and the English locale.
type Options struct {
	Model     string
	MaxTokens int64
	Locale    model.Locale
}

// New creates a Miner on top of an Anthropic client.
func New(client anthropic.Client, opts Options) *Miner {
	m := &Miner{
		client:    client,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		locale:    opts.Locale,
	}
	if m.model == "" {
		m.model = ModelSonnet
	}
	if m.maxTokens <= 0 {
		m.maxTokens = DefaultMaxTokens
	}
	if m.locale == "" {
		m.locale = model.LocaleEN
	}
	return m
}

// Mine sends one corpus to the model and parses the structured leads out of
// the response. No retry; the caller decides what a failure means.
func (m *Miner) Mine(ctx context.Context, corpus string) ([]model.MinedLead, anthropic.TokenUsage, error) {
	resp, err := m.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     m.model,
		MaxTokens: m.maxTokens,
		System:    MiningSystemPrompt(),
		Messages:  []anthropic.Message{{Role: "user", Content: MiningPrompt(corpus)}},
	})
	if err != nil {
		return nil, anthropic.TokenUsage{}, eris.Wrap(err, "miner: mine")
	}
	resp.Usage.LogCost(m.model, "mine")

	leads, err := ParseLeads(resp.Text)
	if err != nil {
		return nil, resp.Usage, err
	}
	zap.L().Info("mining complete",
		zap.Int("leads", len(leads)),
		zap.String("model", m.model),
	)
	return leads, resp.Usage, nil
}

// GenerateScript produces one outreach script for a lead.
func (m *Miner) GenerateScript(ctx context.Context, l model.MinedLead) (string, anthropic.TokenUsage, error) {
	resp, err := m.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     m.model,
		MaxTokens: 1024,
		System:    ScriptSystemPrompt(),
		Messages:  []anthropic.Message{{Role: "user", Content: ScriptPrompt(l, m.locale)}},
	})
	if err != nil {
		return "", anthropic.TokenUsage{}, eris.Wrapf(err, "miner: script for %s", l.AccountName)
	}
	resp.Usage.LogCost(m.model, "script")
	return resp.Text, resp.Usage, nil
}

// scriptConcurrency bounds parallel script requests.
const scriptConcurrency = 4

// GenerateScripts produces scripts for many leads with bounded concurrency.
// Results come back keyed by lead identity; the first failure cancels the
// rest.
func (m *Miner) GenerateScripts(ctx context.Context, leads []model.MinedLead) (map[string]string, error) {
	scripts := make([]string, len(leads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scriptConcurrency)
	for i, l := range leads {
		g.Go(func() error {
			s, _, err := m.GenerateScript(ctx, l)
			if err != nil {
				return err
			}
			scripts[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(leads))
	for i, l := range leads {
		out[l.Key()] = scripts[i]
	}
	return out, nil
}
