package service

import (
	"context"
	"errors"
	"fmt"

	"insightgen/internal/insight"

	"github.com/rs/zerolog/log"
)

// ErrMissingTargetDomain is returned when no target domain is configured for a migration.
var ErrMissingTargetDomain = errors.New("AIOPS_DOMAIN must be set to the target domain")

// Transferer reads insights from one domain and writes them to another.
type Transferer interface {
	FetchInsights(ctx context.Context, domain string) ([]*insight.Record, error)
	PostInsightTo(ctx context.Context, domain string, rec *insight.Record) bool
}

// MigrationResult counts the outcome of one migration.
type MigrationResult struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Fetched     int    `json:"fetched"`
	Transferred int    `json:"transferred"`
	Failed      int    `json:"failed"`
}

// Success reports whether every fetched insight reached the target.
func (r MigrationResult) Success() bool {
	return r.Failed == 0
}

// Migrator copies insights from a source domain to the configured target domain.
type Migrator struct {
	client Transferer
	target string
}

// NewMigrator creates a migrator writing to target.
func NewMigrator(client Transferer, target string) *Migrator {
	return &Migrator{client: client, target: target}
}

// Migrate fetches up to the platform limit of insights from source and re-submits each
// one unmodified to the target. Records already transferred are not rolled back when a
// later one fails.
func (m *Migrator) Migrate(ctx context.Context, source string) (MigrationResult, error) {
	res := MigrationResult{Source: source, Target: m.target}
	if m.target == "" {
		return res, ErrMissingTargetDomain
	}
	if source == "" {
		return res, fmt.Errorf("source domain is required")
	}

	log.Info().Str("source", source).Str("target", m.target).Msg("Migrating insights")

	records, err := m.client.FetchInsights(ctx, source)
	if err != nil {
		return res, fmt.Errorf("failed to load insights from %s: %w", source, err)
	}
	res.Fetched = len(records)
	log.Info().Int("count", res.Fetched).Str("source", source).Msg("Loaded insights")

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			res.Failed += res.Fetched - res.Transferred - res.Failed
			return res, fmt.Errorf("migration interrupted: %w", err)
		}
		if m.client.PostInsightTo(ctx, m.target, rec) {
			res.Transferred++
		} else {
			res.Failed++
		}
	}

	log.Info().
		Int("transferred", res.Transferred).
		Int("failed", res.Failed).
		Msg("Migration completed")
	return res, nil
}
