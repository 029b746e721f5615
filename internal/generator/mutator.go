package generator

import (
	"math/rand"
	"time"

	"insightgen/internal/insight"
	"insightgen/internal/inventory"

	"github.com/google/uuid"
)

// Severities is the set a generated insight's severity is drawn from.
var Severities = []string{"CRITICAL", "WARNING", "INFORMATIONAL"}

// DeviceSource supplies substitute impacted resources.
type DeviceSource interface {
	Device() inventory.Device
}

// Mutator turns a template into a fresh generated insight.
// It is not safe for concurrent use; the rng is owned by the mutator.
type Mutator struct {
	devices DeviceSource
	rng     *rand.Rand
	now     func() time.Time
}

// NewMutator creates a mutator. A nil clock means time.Now.
func NewMutator(devices DeviceSource, rng *rand.Rand, now func() time.Time) *Mutator {
	if now == nil {
		now = time.Now
	}
	return &Mutator{devices: devices, rng: rng, now: now}
}

// Mutate returns a modified copy of rec. rule may be nil to keep timestamps untouched.
func (m *Mutator) Mutate(rec *insight.Record, rule TemporalRule) *insight.Record {
	out := rec.Clone()
	if out == nil {
		out = insight.NewRecord()
	}

	out.Set(insight.FieldUID, m.newUID())
	out.Set(insight.FieldSeverity, Severities[m.rng.Intn(len(Severities))])

	if list, ok := out.List(insight.FieldImpactedResources); ok && len(list) > 0 && m.devices != nil {
		out.Set(insight.FieldImpactedResources, []any{m.devices.Device().Record()})
	}

	if rule != nil {
		m.applyRule(out, rule)
	}
	return out
}

// applyRule writes the rule's timestamp at the top level, and inside data only
// when data already carries that field.
func (m *Mutator) applyRule(rec *insight.Record, rule TemporalRule) {
	stamp := FormatTimestamp(m.now().Add(rule.Offset(m.rng)))
	field := rule.Field()

	rec.Set(field, stamp)
	if data, ok := rec.Object(insight.FieldData); ok && data.Has(field) {
		data.Set(field, stamp)
	}
}

func (m *Mutator) newUID() string {
	id, err := uuid.NewRandomFromReader(m.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewRand returns the random source for a run. A zero seed draws one from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
