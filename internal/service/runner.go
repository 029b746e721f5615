package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"insightgen/internal/generator"
	"insightgen/internal/inventory"

	"github.com/rs/zerolog/log"
)

// Runner starts generation runs. Runs share the device pool but each gets its own
// template cursors, device cursor and random source.
type Runner struct {
	client generator.Submitter
	pool   *inventory.PoolLoader
	now    func() time.Time

	mu    sync.Mutex
	seeds *rand.Rand
}

// NewRunner creates a runner. A zero seed makes every run time-seeded; a non-zero seed
// makes the sequence of runs reproducible. A nil clock means time.Now.
func NewRunner(client generator.Submitter, pool *inventory.PoolLoader, seed int64, now func() time.Time) *Runner {
	return &Runner{client: client, pool: pool, now: now, seeds: generator.NewRand(seed)}
}

func (r *Runner) nextRand() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rand.New(rand.NewSource(r.seeds.Int63()))
}

// Generate runs the config at configPath against the templates next to it.
// rec may be nil.
func (r *Runner) Generate(ctx context.Context, configPath string, rec generator.Recorder) (generator.Summary, error) {
	rng := r.nextRand()

	dir, err := r.pool.Directory(ctx, rand.New(rand.NewSource(rng.Int63())))
	if err != nil {
		return generator.Summary{}, err
	}
	log.Info().Int("devices", dir.Count()).Str("selection", string(dir.Policy())).Msg("Device pool ready")

	g, cfg, err := generator.Prepare(ctx, configPath, generator.NewMutator(dir, rng, r.now), r.client)
	if err != nil {
		return generator.Summary{}, err
	}
	if rec != nil {
		g.SetRecorder(rec)
	}
	return g.Run(ctx, cfg), nil
}
