package inventory

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Source decides where the device pool comes from.
type Source string

const (
	SourceGenerate Source = "generate"
	SourceFetch    Source = "fetch"
)

// Fallback decides what happens when a fetched pool is unavailable.
type Fallback string

const (
	FallbackNone      Fallback = "none"
	FallbackSynthetic Fallback = "synthetic"
)

// Config holds the device pool settings.
type Config struct {
	Count     int
	Selection Policy
	Source    Source
	Fallback  Fallback

	// Fetch settings
	FetchRetries int
	RetryDelay   time.Duration
}

// ParseSource accepts "generate" or "fetch". Empty means generate.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SourceGenerate):
		return SourceGenerate, nil
	case string(SourceFetch):
		return SourceFetch, nil
	default:
		return "", fmt.Errorf("unknown device source %q (want generate or fetch)", s)
	}
}

// ParseFallback accepts "synthetic" or "none". Empty means synthetic.
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FallbackSynthetic):
		return FallbackSynthetic, nil
	case string(FallbackNone):
		return FallbackNone, nil
	default:
		return "", fmt.Errorf("unknown device fallback %q (want synthetic or none)", s)
	}
}

// Lister looks devices up on the platform.
type Lister interface {
	ListDevices(ctx context.Context, limit int) ([]Device, error)
}

var (
	namePrefixes = []string{
		"firewall", "gateway", "router", "switch", "security",
		"border", "core", "edge", "dmz", "internal",
		"external", "backup", "primary", "secondary", "main",
	}
	nameLocations = []string{
		"hq", "dc1", "dc2", "site1", "site2", "branch1", "branch2",
		"east", "west", "north", "south", "central", "remote",
	}
)

// GeneratePool creates n synthetic devices named <prefix>_<location>_<NNN>.
func GeneratePool(n int, rng *rand.Rand) []Device {
	devices := make([]Device, 0, n)
	for i := 0; i < n; i++ {
		devices = append(devices, Device{
			UID: newUID(rng),
			Name: fmt.Sprintf("%s_%s_%03d",
				namePrefixes[rng.Intn(len(namePrefixes))],
				nameLocations[rng.Intn(len(nameLocations))],
				1+rng.Intn(999)),
			Type: DeviceTypeFTD,
		})
	}
	return devices
}

// FallbackDevice is the single device used when the platform lookup yields nothing.
func FallbackDevice(rng *rand.Rand) Device {
	return Device{UID: newUID(rng), Name: "fallback_device_001", Type: DeviceTypeFTD}
}

func newUID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// BuildPool populates the pool once according to cfg.
func BuildPool(ctx context.Context, cfg Config, lister Lister, rng *rand.Rand) ([]Device, error) {
	if cfg.Source != SourceFetch {
		if cfg.Count <= 0 {
			return nil, fmt.Errorf("device count must be positive, got %d: %w", cfg.Count, ErrEmptyPool)
		}
		return GeneratePool(cfg.Count, rng), nil
	}

	devices, err := fetchPool(ctx, cfg, lister)
	if err == nil && len(devices) > 0 {
		log.Info().Int("count", len(devices)).Msg("Loaded devices from platform")
		return devices, nil
	}

	if cfg.Fallback == FallbackSynthetic {
		log.Warn().Err(err).Msg("Device lookup returned nothing, using a synthetic fallback device")
		return []Device{FallbackDevice(rng)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("device lookup failed: %w: %w", err, ErrEmptyPool)
	}
	return nil, ErrEmptyPool
}

func fetchPool(ctx context.Context, cfg Config, lister Lister) ([]Device, error) {
	if lister == nil {
		return nil, fmt.Errorf("no device lister configured")
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	retries := cfg.FetchRetries
	if retries < 0 {
		retries = 0
	}

	policy := retrypolicy.NewBuilder[[]Device]().
		WithMaxRetries(retries).
		WithBackoff(delay, 10*delay).
		Build()

	attempt := 0
	raw, err := failsafe.With(policy).WithContext(ctx).Get(func() ([]Device, error) {
		attempt++
		devs, err := lister.ListDevices(ctx, cfg.Count)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Device lookup failed")
		}
		return devs, err
	})
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(raw))
	for _, d := range raw {
		if d.UID == "" {
			continue
		}
		d.Type = DeviceTypeFTD
		devices = append(devices, d)
	}
	return devices, nil
}

// PoolLoader builds the pool at most once per process and shares it between concurrent callers.
type PoolLoader struct {
	cfg    Config
	lister Lister

	rngMu sync.Mutex
	rng   *rand.Rand

	group singleflight.Group
	mu    sync.RWMutex
	pool  []Device
}

// NewPoolLoader creates a loader; nothing is fetched until Pool is called.
func NewPoolLoader(cfg Config, lister Lister, rng *rand.Rand) *PoolLoader {
	return &PoolLoader{cfg: cfg, lister: lister, rng: rng}
}

// Pool returns the cached pool, building it on first use. Failed builds are not cached.
func (l *PoolLoader) Pool(ctx context.Context) ([]Device, error) {
	l.mu.RLock()
	pool := l.pool
	l.mu.RUnlock()
	if pool != nil {
		return pool, nil
	}

	v, err, _ := l.group.Do("pool", func() (interface{}, error) {
		l.rngMu.Lock()
		devices, err := BuildPool(ctx, l.cfg, l.lister, l.rng)
		l.rngMu.Unlock()
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.pool = devices
		l.mu.Unlock()
		return devices, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Device), nil
}

// Directory builds a fresh directory over the shared pool. Each directory has its own cursor.
func (l *PoolLoader) Directory(ctx context.Context, rng *rand.Rand) (*Directory, error) {
	pool, err := l.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return NewDirectory(pool, l.cfg.Selection, rng)
}
