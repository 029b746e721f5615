package service

import (
	"context"

	"insightgen/internal/generator"
	"insightgen/internal/journal"

	"github.com/rs/zerolog/log"
)

// ReplayResult counts the outcome of re-posting a saved journal.
type ReplayResult struct {
	Entries     int  `json:"entries"`
	Posted      int  `json:"posted"`
	Failed      int  `json:"failed"`
	Skipped     int  `json:"skipped"`
	Interrupted bool `json:"interrupted,omitempty"`
}

// Replayer re-posts the insights of a saved run exactly as they were generated.
type Replayer struct {
	client generator.Submitter
}

// NewReplayer creates a replayer.
func NewReplayer(client generator.Submitter) *Replayer {
	return &Replayer{client: client}
}

// Replay posts every journal entry under its original window label. With failedOnly,
// entries that were accepted the first time are skipped. A cancelled context stops the
// replay and counts the remaining entries as skipped.
func (r *Replayer) Replay(ctx context.Context, j *journal.Journal, failedOnly bool) ReplayResult {
	entries := j.Entries()
	res := ReplayResult{Entries: len(entries)}

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("remaining", len(entries)-i).Msg("Replay interrupted")
			res.Interrupted = true
			res.Skipped += len(entries) - i
			break
		}
		if failedOnly && e.Posted {
			res.Skipped++
			continue
		}
		if r.client.PostInsight(ctx, e.Insight.Clone(), e.Window) {
			res.Posted++
		} else {
			res.Failed++
		}
	}

	log.Info().
		Int("entries", res.Entries).
		Int("posted", res.Posted).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Msg("Journal replay completed")
	return res
}
