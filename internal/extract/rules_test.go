package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}
}

func TestLoadRulesEmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules.FullMinChars != 300 || rules.SummaryMinChars != 200 {
		t.Errorf("unexpected defaults: full=%d summary=%d", rules.FullMinChars, rules.SummaryMinChars)
	}
}

func TestLoadRulesOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "full_min_chars: 150\nsummary_phrase_denylist:\n  - \"publicidad\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules.FullMinChars != 150 {
		t.Errorf("full_min_chars = %d, want overridden 150", rules.FullMinChars)
	}
	if rules.SummaryMinChars != 200 {
		t.Errorf("summary_min_chars = %d, want default 200", rules.SummaryMinChars)
	}
	if len(rules.SummaryPhraseDenylist) != 1 || rules.SummaryPhraseDenylist[0] != "publicidad" {
		t.Errorf("denylist = %v, want replaced", rules.SummaryPhraseDenylist)
	}
	if len(rules.FullSelectors) == 0 {
		t.Error("full selectors lost on overlay")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}

func TestValidateRejectsBadSelector(t *testing.T) {
	rules := DefaultRules()
	rules.FullSelectors = append(rules.FullSelectors, `div[[broken`)

	err := rules.Validate()
	if err == nil {
		t.Fatal("expected selector error")
	}
	if !strings.Contains(err.Error(), "invalid selector") {
		t.Errorf("error = %v", err)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	rules := DefaultRules()
	rules.SummaryMinChars = 0
	if err := rules.Validate(); err == nil {
		t.Fatal("expected threshold error")
	}

	rules = DefaultRules()
	rules.FullSelectors = nil
	if err := rules.Validate(); err == nil {
		t.Fatal("expected empty selector list error")
	}
}
