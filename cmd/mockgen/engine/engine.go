package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"insightgen/internal/generator"
	"insightgen/internal/insight"
	"insightgen/internal/templates"

	"github.com/google/uuid"
)

type GeneratorConfig struct {
	Scenario string // "network" or "security"
	Count    int    // templates per category
	Now      time.Time
	Seed     int64
}

// Fixture is a run config plus the templates it runs against.
type Fixture struct {
	Config    generator.RunConfig
	Templates map[templates.Category][]*insight.Record
}

type catalogEntry struct {
	title  string
	metric string
	unit   string
}

var catalogs = map[string][]catalogEntry{
	"network": {
		{"Interface errors rising", "ifInErrors", "errors/s"},
		{"Tunnel flapping", "vpnTunnelFlaps", "flaps/h"},
		{"Bandwidth saturation", "ifUtilization", "%"},
		{"Packet drops on uplink", "ifOutDiscards", "packets/s"},
		{"High connection rate", "connRate", "conn/s"},
	},
	"security": {
		{"Snort CPU spike", "snortCpu", "%"},
		{"Intrusion events surge", "idsEvents", "events/min"},
		{"Certificate expiring", "certDaysLeft", "days"},
		{"Blocked flows increasing", "aclDenies", "flows/s"},
		{"Threat feed update failed", "feedAgeHours", "hours"},
	},
}

// Generate builds a fixture. Unknown scenarios fall back to "network".
func Generate(cfg GeneratorConfig) Fixture {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Count <= 0 {
		cfg.Count = 1
	}
	catalog, ok := catalogs[cfg.Scenario]
	if !ok {
		catalog = catalogs["network"]
	}
	rng := generator.NewRand(cfg.Seed)

	fx := Fixture{
		Config: generator.RunConfig{
			Forecast: generator.ForecastCounts{Next0To7: 2, Next7To30: 2, Next30To90: 1},
			Present:  3,
			Past:     generator.PastCounts{Last0To12: 2, Last12To24: 1, Last24To48: 1},
		},
		Templates: make(map[templates.Category][]*insight.Record),
	}

	for _, c := range templates.Categories {
		for i := 0; i < cfg.Count; i++ {
			entry := catalog[(i+rng.Intn(len(catalog)))%len(catalog)]
			fx.Templates[c] = append(fx.Templates[c], template(c, entry, cfg.Now, rng))
		}
	}
	return fx
}

func template(c templates.Category, e catalogEntry, now time.Time, rng *rand.Rand) *insight.Record {
	stamp := generator.FormatTimestamp(now)

	rec := insight.NewRecord()
	rec.Set(insight.FieldUID, newUID(rng))
	rec.Set(insight.FieldTitle, e.title)
	rec.Set("description", fmt.Sprintf("%s detected on the device.", e.title))
	rec.Set(insight.FieldSeverity, "INFORMATIONAL")
	rec.Set("state", strings.ToUpper(string(c)))

	device := insight.NewRecord()
	device.Set("uid", newUID(rng))
	device.Set("name", "template_device_001")
	device.Set("type", "FTD")
	rec.Set(insight.FieldImpactedResources, []any{device})

	data := insight.NewRecord()
	data.Set("metric", e.metric)
	data.Set("unit", e.unit)
	data.Set("threshold", json.Number(fmt.Sprint(50+rng.Intn(50))))

	switch c {
	case templates.Forecast:
		rec.Set(insight.FieldBreachDate, stamp)
		data.Set(insight.FieldBreachDate, stamp)
	case templates.Past:
		rec.Set(insight.FieldUpdatedTime, stamp)
	}
	rec.Set(insight.FieldData, data)
	return rec
}

func newUID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Save writes config.json and one file per template under <category>/ in outDir.
func Save(outDir string, fx Fixture) error {
	if err := writeJSON(filepath.Join(outDir, "config.json"), fx.Config); err != nil {
		return err
	}
	for _, c := range templates.Categories {
		dir := filepath.Join(outDir, string(c))
		for i, rec := range fx.Templates[c] {
			name := fmt.Sprintf("%03d_%s.json", i+1, slug(rec.StringOr(insight.FieldTitle, "insight")))
			if err := writeJSON(filepath.Join(dir, name), rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
