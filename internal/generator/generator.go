package generator

import (
	"context"
	"path/filepath"

	"insightgen/internal/insight"
	"insightgen/internal/templates"

	"github.com/rs/zerolog/log"
)

// Submitter delivers one generated insight. It reports acceptance rather than an error:
// failures are already logged by the transport and never stop a run.
type Submitter interface {
	PostInsight(ctx context.Context, rec *insight.Record, label string) bool
}

// Recorder observes every generated insight and its outcome.
type Recorder interface {
	Add(window string, rec *insight.Record, posted bool)
}

// WindowResult is the outcome of one window.
type WindowResult struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Requested int    `json:"requested"`
	Posted    int    `json:"posted"`
	Failed    int    `json:"failed"`
	// Unsent counts requested insights that were never submitted.
	Unsent int `json:"unsent,omitempty"`
	// Skipped is set when the window never ran: its category had no templates,
	// or the run was interrupted before it started.
	Skipped bool `json:"skipped,omitempty"`
}

// Summary is the outcome of a run. Posted, Failed and Skipped always add up to
// the run config's total.
type Summary struct {
	Windows     []WindowResult `json:"windows"`
	Posted      int            `json:"posted"`
	Failed      int            `json:"failed"`
	Skipped     int            `json:"skipped"`
	Interrupted bool           `json:"interrupted,omitempty"`
}

func (s *Summary) add(res WindowResult) {
	s.Posted += res.Posted
	s.Failed += res.Failed
	s.Skipped += res.Unsent
	s.Windows = append(s.Windows, res)
}

// Generator drives selection, mutation and submission for every configured window.
type Generator struct {
	store    *templates.Store
	selector *Selector
	mutator  *Mutator
	client   Submitter
	recorder Recorder
}

// New creates a generator. Cursors start at zero for every category.
func New(store *templates.Store, mutator *Mutator, client Submitter) *Generator {
	return &Generator{
		store:    store,
		selector: NewSelector(store),
		mutator:  mutator,
		client:   client,
	}
}

// SetRecorder attaches a recorder that sees every generated insight.
func (g *Generator) SetRecorder(r Recorder) {
	g.recorder = r
}

// Run generates and submits insights window by window, in the fixed order forecast,
// current, past. A cancelled context stops the run before the next submission; the
// insights that were not sent are counted as skipped.
func (g *Generator) Run(ctx context.Context, cfg RunConfig) Summary {
	var sum Summary
	warned := make(map[templates.Category]bool)
	announced := make(map[templates.Category]bool)

	for _, w := range Windows() {
		res := WindowResult{Key: w.Key, Label: w.Label, Requested: cfg.Count(w.Key)}

		if sum.Interrupted {
			res.Skipped = true
			res.Unsent = res.Requested
			sum.add(res)
			continue
		}

		if !announced[w.Category] {
			announced[w.Category] = true
			log.Info().
				Str("category", string(w.Category)).
				Int("templates", g.store.Count(w.Category)).
				Msgf("Generating %s insights...", w.Category)
		}

		if g.selector.Len(w.Category) == 0 {
			if !warned[w.Category] {
				warned[w.Category] = true
				log.Warn().Str("category", string(w.Category)).Msgf("No %s insights found in %s folder", w.Category, w.Category)
			}
			res.Skipped = true
			res.Unsent = res.Requested
			sum.add(res)
			continue
		}

		for i := 0; i < res.Requested; i++ {
			if err := ctx.Err(); err != nil {
				log.Warn().Err(err).Str("window", w.Label).Msg("Generation interrupted")
				sum.Interrupted = true
				break
			}

			tmpl, ok := g.selector.Next(w.Category)
			if !ok {
				break
			}
			rec := g.mutator.Mutate(tmpl, w.Rule)

			posted := g.client.PostInsight(ctx, rec, w.Label)
			if posted {
				res.Posted++
			} else {
				res.Failed++
			}
			if g.recorder != nil {
				g.recorder.Add(w.Label, rec, posted)
			}
		}

		res.Unsent = res.Requested - res.Posted - res.Failed
		sum.add(res)
	}

	ev := log.Info()
	if sum.Interrupted {
		ev = log.Warn()
	}
	ev.Int("posted", sum.Posted).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Bool("interrupted", sum.Interrupted).
		Msg("Insight generation completed")
	return sum
}

// TemplateDir returns the folder that holds the templates for a run config file.
func TemplateDir(configPath string) string {
	return filepath.Dir(configPath)
}

// Prepare loads the run config at configPath and the templates next to it, and
// returns a generator ready to run.
func Prepare(ctx context.Context, configPath string, mutator *Mutator, client Submitter) (*Generator, RunConfig, error) {
	cfg, err := LoadRunConfig(configPath)
	if err != nil {
		return nil, RunConfig{}, err
	}
	store, err := templates.Load(ctx, TemplateDir(configPath))
	if err != nil {
		return nil, RunConfig{}, err
	}
	return New(store, mutator, client), cfg, nil
}
