package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrInvalidRunConfig wraps every problem with the run configuration file.
var ErrInvalidRunConfig = errors.New("invalid run configuration")

// ForecastCounts are the forecast window repetitions.
type ForecastCounts struct {
	Next0To7   int `json:"next_0_to_7"`
	Next7To30  int `json:"next_7_to_30"`
	Next30To90 int `json:"next_30_to_90"`
}

// PastCounts are the past window repetitions.
type PastCounts struct {
	Last0To12  int `json:"last_0_to_12"`
	Last12To24 int `json:"last_12_to_24"`
	Last24To48 int `json:"last_24_to_48"`
}

// RunConfig says how many insights to generate per window. Missing sections mean zero.
type RunConfig struct {
	Forecast ForecastCounts `json:"forecast_insight"`
	Present  int            `json:"present"`
	Past     PastCounts     `json:"past"`
}

// Count returns the repetitions configured for a window key.
func (c RunConfig) Count(key string) int {
	switch key {
	case KeyNext0To7:
		return c.Forecast.Next0To7
	case KeyNext7To30:
		return c.Forecast.Next7To30
	case KeyNext30To90:
		return c.Forecast.Next30To90
	case KeyPresent:
		return c.Present
	case KeyLast0To12:
		return c.Past.Last0To12
	case KeyLast12To24:
		return c.Past.Last12To24
	case KeyLast24To48:
		return c.Past.Last24To48
	default:
		return 0
	}
}

// Total returns the number of insights the config asks for.
func (c RunConfig) Total() int {
	total := 0
	for _, w := range Windows() {
		total += c.Count(w.Key)
	}
	return total
}

func countSchema() *jsonschema.Schema {
	zero := 0.0
	return &jsonschema.Schema{Type: "integer", Minimum: &zero}
}

func sectionSchema(keys ...string) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(keys))
	for _, k := range keys {
		props[k] = countSchema()
	}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

// RunConfigSchema describes the accepted configuration document.
func RunConfigSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"forecast_insight": sectionSchema("next_0_to_7", "next_7_to_30", "next_30_to_90"),
			"present":          countSchema(),
			"past":             sectionSchema("last_0_to_12", "last_12_to_24", "last_24_to_48"),
		},
	}
}

var resolvedRunConfigSchema *jsonschema.Resolved

func init() {
	rs, err := RunConfigSchema().Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("run config schema: %v", err))
	}
	resolvedRunConfigSchema = rs
}

// ParseRunConfig validates and decodes a configuration document.
func ParseRunConfig(data []byte) (RunConfig, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return RunConfig{}, fmt.Errorf("%w: %v", ErrInvalidRunConfig, err)
	}
	if err := resolvedRunConfigSchema.Validate(doc); err != nil {
		return RunConfig{}, fmt.Errorf("%w: %v", ErrInvalidRunConfig, err)
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("%w: %v", ErrInvalidRunConfig, err)
	}
	return cfg, nil
}

// LoadRunConfig reads and validates the configuration file at path.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("%w: %v", ErrInvalidRunConfig, err)
	}
	return ParseRunConfig(data)
}
