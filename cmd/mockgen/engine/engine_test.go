package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"insightgen/internal/generator"
	"insightgen/internal/insight"
	"insightgen/internal/templates"
)

func TestGenerate(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	fx := Generate(GeneratorConfig{Scenario: "security", Count: 4, Now: now, Seed: 1})

	for _, c := range templates.Categories {
		if got := len(fx.Templates[c]); got != 4 {
			t.Errorf("%s: got %d templates, want 4", c, got)
		}
	}

	forecast := fx.Templates[templates.Forecast][0]
	if forecast.StringOr(insight.FieldBreachDate, "") != "2024-03-01T10:00:00.000+00:00" {
		t.Errorf("forecast template breachDate = %q", forecast.StringOr(insight.FieldBreachDate, ""))
	}
	past := fx.Templates[templates.Past][0]
	if !past.Has(insight.FieldUpdatedTime) {
		t.Error("past template should carry updatedTime")
	}
	if fx.Config.Total() == 0 {
		t.Error("sample config requests nothing")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	now := time.Now()
	a := Generate(GeneratorConfig{Count: 2, Now: now, Seed: 7})
	b := Generate(GeneratorConfig{Count: 2, Now: now, Seed: 7})

	ua := a.Templates[templates.Current][1].StringOr(insight.FieldUID, "")
	ub := b.Templates[templates.Current][1].StringOr(insight.FieldUID, "")
	if ua != ub {
		t.Errorf("same seed gave different uids: %s vs %s", ua, ub)
	}
}

func TestSave_RoundTripsThroughLoaders(t *testing.T) {
	dir := t.TempDir()
	fx := Generate(GeneratorConfig{Count: 3, Seed: 2})
	if err := Save(dir, fx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg, err := generator.LoadRunConfig(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}
	if cfg != fx.Config {
		t.Errorf("config = %+v, want %+v", cfg, fx.Config)
	}

	store, err := templates.Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("templates.Load: %v", err)
	}
	for _, c := range templates.Categories {
		if store.Count(c) != 3 {
			t.Errorf("%s: loaded %d templates, want 3", c, store.Count(c))
		}
	}
	got := store.Templates(templates.Forecast)[0].Keys()
	want := fx.Templates[templates.Forecast][0].Keys()
	if len(got) != len(want) || got[0] != want[0] || got[len(got)-1] != want[len(want)-1] {
		t.Errorf("key order not preserved: %v vs %v", got, want)
	}
}
