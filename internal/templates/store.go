package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"insightgen/internal/insight"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Category is the temporal class of a template: what the insight describes relative to now.
type Category string

const (
	Forecast Category = "forecast"
	Current  Category = "current"
	Past     Category = "past"
)

// Categories lists every category in generation order.
var Categories = []Category{Forecast, Current, Past}

// Store holds the loaded templates of each category. Sequences are fixed once built.
type Store struct {
	sets map[Category][]*insight.Record
}

// NewStore builds a store from already loaded sequences.
func NewStore(sets map[Category][]*insight.Record) *Store {
	s := &Store{sets: make(map[Category][]*insight.Record, len(sets))}
	for c, recs := range sets {
		cp := make([]*insight.Record, len(recs))
		copy(cp, recs)
		s.sets[c] = cp
	}
	return s
}

// Templates returns the sequence for c. Callers must treat the records as read-only.
func (s *Store) Templates(c Category) []*insight.Record {
	return s.sets[c]
}

// Count returns the number of templates loaded for c.
func (s *Store) Count(c Category) int {
	return len(s.sets[c])
}

// Load reads the forecast, current and past folders under baseDir.
// Missing folders and unreadable files are logged and leave the category short, never fail the load.
func Load(ctx context.Context, baseDir string) (*Store, error) {
	results := make([][]*insight.Record, len(Categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range Categories {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = LoadDir(filepath.Join(baseDir, string(c)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	sets := make(map[Category][]*insight.Record, len(Categories))
	for i, c := range Categories {
		sets[c] = results[i]
		log.Debug().Str("category", string(c)).Int("count", len(results[i])).Msg("Loaded templates")
	}
	return &Store{sets: sets}, nil
}

// LoadDir parses every *.json file in dir, in file name order.
func LoadDir(dir string) []*insight.Record {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", dir).Msg("Template folder does not exist")
		} else {
			log.Warn().Err(err).Str("path", dir).Msg("Could not read template folder")
		}
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var records []*insight.Record
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Could not read template")
			continue
		}
		rec, err := insight.Parse(data)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Could not parse template")
			continue
		}
		records = append(records, rec)
	}
	return records
}
