package generator

import (
	"math/rand"
	"time"

	"insightgen/internal/insight"
	"insightgen/internal/templates"
)

// TimestampLayout is ISO-8601 with milliseconds and an explicit UTC offset.
// time.Format truncates fractional seconds, so microseconds never round up.
const TimestampLayout = "2006-01-02T15:04:05.000+00:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// TemporalRule rewrites one timestamp field relative to the current time.
type TemporalRule interface {
	// Field is the record key the rule writes.
	Field() string
	// Offset draws the signed distance from now.
	Offset(rng *rand.Rand) time.Duration
}

// ForwardDays sets breachDate to now + U[Min, Max] days.
type ForwardDays struct {
	Min, Max int
}

func (r ForwardDays) Field() string { return insight.FieldBreachDate }

func (r ForwardDays) Offset(rng *rand.Rand) time.Duration {
	return time.Duration(randInclusive(rng, r.Min, r.Max)) * 24 * time.Hour
}

// ForwardHoursWithFloor sets breachDate to now + max(U[Min, Max], Floor) hours.
type ForwardHoursWithFloor struct {
	Min, Max, Floor int
}

func (r ForwardHoursWithFloor) Field() string { return insight.FieldBreachDate }

func (r ForwardHoursWithFloor) Offset(rng *rand.Rand) time.Duration {
	hours := randInclusive(rng, r.Min, r.Max)
	if hours < r.Floor {
		hours = r.Floor
	}
	return time.Duration(hours) * time.Hour
}

// ForwardDaysUpTo sets breachDate to now + U[1, Max] days.
type ForwardDaysUpTo struct {
	Max int
}

func (r ForwardDaysUpTo) Field() string { return insight.FieldBreachDate }

func (r ForwardDaysUpTo) Offset(rng *rand.Rand) time.Duration {
	return time.Duration(randInclusive(rng, 1, r.Max)) * 24 * time.Hour
}

// BackwardHours sets updatedTime to now - U[Min, Max] hours.
type BackwardHours struct {
	Min, Max int
}

func (r BackwardHours) Field() string { return insight.FieldUpdatedTime }

func (r BackwardHours) Offset(rng *rand.Rand) time.Duration {
	return -time.Duration(randInclusive(rng, r.Min, r.Max)) * time.Hour
}

// randInclusive draws uniformly from [lo, hi]. A reversed range collapses to lo.
func randInclusive(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Window is one configured bucket of generated insights.
type Window struct {
	Key      string
	Label    string
	Category templates.Category
	// Rule is nil for windows that keep the template's timestamps.
	Rule TemporalRule
}

// Window keys as they appear in the run configuration.
const (
	KeyNext0To7   = "forecast_insight.next_0_to_7"
	KeyNext7To30  = "forecast_insight.next_7_to_30"
	KeyNext30To90 = "forecast_insight.next_30_to_90"
	KeyPresent    = "present"
	KeyLast0To12  = "past.last_0_to_12"
	KeyLast12To24 = "past.last_12_to_24"
	KeyLast24To48 = "past.last_24_to_48"
)

// Windows returns the fixed generation plan in execution order.
func Windows() []Window {
	return []Window{
		{Key: KeyNext0To7, Label: "FORECAST: Next 0-7 hours", Category: templates.Forecast, Rule: ForwardHoursWithFloor{Min: 3, Max: 7, Floor: 3}},
		{Key: KeyNext7To30, Label: "FORECAST: Next 7-30 days", Category: templates.Forecast, Rule: ForwardDays{Min: 7, Max: 30}},
		{Key: KeyNext30To90, Label: "FORECAST: Next 30-90 days", Category: templates.Forecast, Rule: ForwardDays{Min: 30, Max: 90}},
		{Key: KeyPresent, Label: "CURRENT: Active insights", Category: templates.Current},
		{Key: KeyLast0To12, Label: "PAST: Last 0-12 hours", Category: templates.Past, Rule: BackwardHours{Min: 0, Max: 12}},
		{Key: KeyLast12To24, Label: "PAST: Last 12-24 hours", Category: templates.Past, Rule: BackwardHours{Min: 12, Max: 24}},
		{Key: KeyLast24To48, Label: "PAST: Last 24-48 hours", Category: templates.Past, Rule: BackwardHours{Min: 24, Max: 48}},
	}
}
