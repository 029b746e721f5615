package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"insightgen/internal/insight"

	"github.com/rs/zerolog/log"
)

// ErrNoJournal is returned by Latest when the folder holds no saved run.
var ErrNoJournal = errors.New("no saved journal found")

const runPrefix = "run-"

// Entry is one generated insight together with the window it was produced for.
type Entry struct {
	Window  string          `json:"window"`
	Posted  bool            `json:"posted"`
	At      time.Time       `json:"at"`
	Insight *insight.Record `json:"insight"`
}

// Journal keeps every insight a run generated, in submission order.
type Journal struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{now: time.Now}
}

// Add records one generated insight. It satisfies generator.Recorder.
func (j *Journal) Add(window string, rec *insight.Record, posted bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, Entry{
		Window:  window,
		Posted:  posted,
		At:      j.now().UTC(),
		Insight: rec.Clone(),
	})
}

// Len returns the number of recorded entries.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Entries returns a copy of the recorded entries.
func (j *Journal) Entries() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// NewRunID returns an identifier for a run started at t, usable as a file name.
func NewRunID(t time.Time) string {
	return runPrefix + t.UTC().Format("20060102T150405Z")
}

// Path returns the journal file for a run.
func Path(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.jsonl", runID))
}

// Latest returns the most recent run saved in dir. Run IDs sort by start time.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, runPrefix+"*.jsonl"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoJournal, dir)
	}
	sort.Strings(matches)
	return strings.TrimSuffix(filepath.Base(matches[len(matches)-1]), ".jsonl"), nil
}

// Save writes the journal to <dir>/<runID>.jsonl, one entry per line.
// An empty journal writes nothing and returns an empty path.
func (j *Journal) Save(dir, runID string) (string, error) {
	entries := j.Entries()
	if len(entries) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create journal dir: %w", err)
	}

	path := Path(dir, runID)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp journal file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, e := range entries {
		if err := encoder.Encode(e); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return "", fmt.Errorf("failed to encode entry: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to rename journal file: %w", err)
	}

	log.Info().Str("run", runID).Int("count", len(entries)).Str("path", path).Msg("Journal saved")
	return path, nil
}

// Load reads a saved journal. Lines that do not decode are skipped.
func Load(dir, runID string) (*Journal, error) {
	file, err := os.Open(Path(dir, runID))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	j := New()
	scanner := bufio.NewScanner(file)
	// records can be larger than the default 64KiB token
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil || e.Insight == nil {
			log.Warn().Err(err).Str("run", runID).Msg("Skipping invalid JSON line in journal")
			continue
		}
		j.entries = append(j.entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading journal: %w", err)
	}
	return j, nil
}
