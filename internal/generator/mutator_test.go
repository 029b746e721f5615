package generator

import (
	"encoding/json"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"insightgen/internal/insight"
	"insightgen/internal/inventory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDevice struct {
	dev   inventory.Device
	calls int
}

func (f *fixedDevice) Device() inventory.Device {
	f.calls++
	return f.dev
}

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 123999000, time.UTC)

func clock() time.Time { return fixedNow }

func newTestMutator(seed int64) (*Mutator, *fixedDevice) {
	dev := &fixedDevice{dev: inventory.Device{UID: "dev-1", Name: "edge_hq_001", Type: inventory.DeviceTypeFTD}}
	return NewMutator(dev, rand.New(rand.NewSource(seed)), clock), dev
}

const forecastTemplate = `{
  "uid": "template-uid",
  "title": "Interface errors rising",
  "severity": "INFORMATIONAL",
  "impactedResources": [{"uid": "old-1"}, {"uid": "old-2"}],
  "breachDate": "2020-01-01T00:00:00.000+00:00",
  "data": {"breachDate": "2020-01-01T00:00:00.000+00:00", "metric": "ifErrors"}
}`

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}\+00:00$`)

func TestFormatTimestamp_TruncatesMicroseconds(t *testing.T) {
	assert.Equal(t, "2024-05-06T07:08:09.123+00:00", FormatTimestamp(fixedNow))

	local := time.Date(2024, 5, 6, 9, 8, 9, 999999999, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2024-05-06T07:08:09.999+00:00", FormatTimestamp(local))
}

func TestMutate_UniqueIdentifiers(t *testing.T) {
	m, _ := newTestMutator(1)
	tmpl := records(t, forecastTemplate)[0]

	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		uid := m.Mutate(tmpl, nil).StringOr(insight.FieldUID, "")
		require.Len(t, uid, 36)
		parsed, err := uuid.Parse(uid)
		require.NoError(t, err)
		require.Equal(t, uuid.Version(4), parsed.Version())
		require.False(t, seen[uid], "duplicate uid %s after %d mutations", uid, i)
		seen[uid] = true
	}
}

func TestMutate_SeverityFromFixedSet(t *testing.T) {
	m, _ := newTestMutator(2)
	tmpl := records(t, forecastTemplate)[0]

	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		counts[m.Mutate(tmpl, nil).StringOr(insight.FieldSeverity, "")]++
	}
	assert.Len(t, counts, 3)
	for _, s := range Severities {
		assert.Greater(t, counts[s], 800, "severity %s should be drawn roughly a third of the time", s)
	}
}

func TestMutate_DeviceSubstitution(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantPresent bool
		wantLen     int
		wantCalls   int
	}{
		{"absent stays absent", `{"uid":"a"}`, false, 0, 0},
		{"empty list kept", `{"uid":"a","impactedResources":[]}`, true, 0, 0},
		{"non-list untouched", `{"uid":"a","impactedResources":"none"}`, true, -1, 0},
		{"single replaced", `{"uid":"a","impactedResources":[{"uid":"x"}]}`, true, 1, 1},
		{"many collapse to one", `{"uid":"a","impactedResources":[{"uid":"x"},{"uid":"y"},{"uid":"z"}]}`, true, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, dev := newTestMutator(3)
			out := m.Mutate(records(t, tt.doc)[0], nil)

			assert.Equal(t, tt.wantPresent, out.Has(insight.FieldImpactedResources))
			assert.Equal(t, tt.wantCalls, dev.calls)
			if tt.wantLen < 0 {
				return
			}
			if !tt.wantPresent {
				return
			}
			list, ok := out.List(insight.FieldImpactedResources)
			require.True(t, ok)
			require.Len(t, list, tt.wantLen)
			if tt.wantLen == 1 {
				got := list[0].(*insight.Record)
				assert.Equal(t, "dev-1", got.StringOr("uid", ""))
				assert.Equal(t, "edge_hq_001", got.StringOr("name", ""))
				assert.Equal(t, "FTD", got.StringOr("type", ""))
			}
		})
	}
}

func TestMutate_TemporalFieldTopLevelAndNested(t *testing.T) {
	m, _ := newTestMutator(4)
	out := m.Mutate(records(t, forecastTemplate)[0], ForwardDays{Min: 7, Max: 7})

	want := "2024-05-13T07:08:09.123+00:00"
	assert.Equal(t, want, out.StringOr(insight.FieldBreachDate, ""))
	data, ok := out.Object(insight.FieldData)
	require.True(t, ok)
	assert.Equal(t, want, data.StringOr(insight.FieldBreachDate, ""))
	assert.Equal(t, "ifErrors", data.StringOr("metric", ""))
}

func TestMutate_NestedFieldNotAdded(t *testing.T) {
	m, _ := newTestMutator(5)
	out := m.Mutate(records(t, `{"uid":"a","data":{"metric":"cpu"}}`)[0], BackwardHours{Min: 1, Max: 1})

	assert.Equal(t, "2024-05-06T06:08:09.123+00:00", out.StringOr(insight.FieldUpdatedTime, ""))
	data, _ := out.Object(insight.FieldData)
	assert.False(t, data.Has(insight.FieldUpdatedTime))
}

func TestMutate_NoRuleKeepsTimestamps(t *testing.T) {
	m, _ := newTestMutator(6)
	out := m.Mutate(records(t, forecastTemplate)[0], nil)

	assert.Equal(t, "2020-01-01T00:00:00.000+00:00", out.StringOr(insight.FieldBreachDate, ""))
	assert.False(t, out.Has(insight.FieldUpdatedTime))
}

func TestMutate_OriginalUntouched(t *testing.T) {
	tmpl := records(t, forecastTemplate)[0]
	pristine, err := json.Marshal(tmpl)
	require.NoError(t, err)

	m, _ := newTestMutator(7)
	for _, w := range Windows() {
		m.Mutate(tmpl, w.Rule)
	}

	after, err := json.Marshal(tmpl)
	require.NoError(t, err)
	assert.JSONEq(t, string(pristine), string(after))
}

func TestMutate_SeedIsDeterministic(t *testing.T) {
	tmpl := records(t, forecastTemplate)[0]
	m1, _ := newTestMutator(99)
	m2, _ := newTestMutator(99)

	a, err := json.Marshal(m1.Mutate(tmpl, ForwardDays{Min: 30, Max: 90}))
	require.NoError(t, err)
	b, err := json.Marshal(m2.Mutate(tmpl, ForwardDays{Min: 30, Max: 90}))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRules_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	tests := []struct {
		name     string
		rule     TemporalRule
		field    string
		min, max time.Duration
	}{
		{"hours with floor", ForwardHoursWithFloor{Min: 3, Max: 7, Floor: 3}, insight.FieldBreachDate, 3 * time.Hour, 7 * time.Hour},
		{"floor lifts undershoot", ForwardHoursWithFloor{Min: 0, Max: 7, Floor: 3}, insight.FieldBreachDate, 3 * time.Hour, 7 * time.Hour},
		{"days 7-30", ForwardDays{Min: 7, Max: 30}, insight.FieldBreachDate, 7 * 24 * time.Hour, 30 * 24 * time.Hour},
		{"days up to 14", ForwardDaysUpTo{Max: 14}, insight.FieldBreachDate, 24 * time.Hour, 14 * 24 * time.Hour},
		{"backward 12-24", BackwardHours{Min: 12, Max: 24}, insight.FieldUpdatedTime, -24 * time.Hour, -12 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.field, tt.rule.Field())
			for i := 0; i < 1000; i++ {
				off := tt.rule.Offset(rng)
				require.GreaterOrEqual(t, off, tt.min)
				require.LessOrEqual(t, off, tt.max)
				require.Zero(t, off%time.Hour, "offsets are whole hours")
			}
		})
	}
}

func TestMutate_ForwardHoursWithFloorTimestamps(t *testing.T) {
	m, _ := newTestMutator(11)
	tmpl := records(t, `{"uid":"a"}`)[0]
	rule := ForwardHoursWithFloor{Min: 3, Max: 7, Floor: 3}
	base := fixedNow.Truncate(time.Millisecond)

	for i := 0; i < 1000; i++ {
		stamp := m.Mutate(tmpl, rule).StringOr(insight.FieldBreachDate, "")
		require.Regexp(t, timestampPattern, stamp)
		ts, err := time.Parse(TimestampLayout, stamp)
		require.NoError(t, err)
		off := ts.Sub(base)
		require.GreaterOrEqual(t, off, 3*time.Hour)
		require.LessOrEqual(t, off, 7*time.Hour)
	}
}

func TestRandInclusive_Degenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 5, randInclusive(rng, 5, 5))
	assert.Equal(t, 5, randInclusive(rng, 5, 2))
}

func TestNewRand(t *testing.T) {
	assert.Equal(t, NewRand(7).Int63(), NewRand(7).Int63())
	assert.NotNil(t, NewRand(0))
}
