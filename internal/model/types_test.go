package model

import (
	"encoding/json"
	"testing"
)

func TestCorrelationKindAliases(t *testing.T) {
	cases := []struct {
		raw  string
		want CorrelationKind
	}{
		{`"r"`, KindPearson},
		{`"pearson_r"`, KindPearson},
		{`"V"`, KindCramerV},
		{`"cramers_v"`, KindCramerV},
		{`"η"`, KindEta},
		{`"eta"`, KindEta},
		{`"eta_squared"`, KindEta},
	}
	for _, tc := range cases {
		var kind CorrelationKind
		if err := json.Unmarshal([]byte(tc.raw), &kind); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if kind != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.raw, tc.want, kind)
		}
	}

	var kind CorrelationKind
	if err := json.Unmarshal([]byte(`"spearman"`), &kind); err == nil {
		t.Fatalf("expected unknown correlation type to fail")
	}
}

func TestIndicatorTokens(t *testing.T) {
	mi := MissingIndicators{Custom: true, CustomTokens: " -999, missing, ,? "}
	tokens := mi.Tokens()
	want := []string{"-999", "missing", "?"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tokens)
		}
	}

	off := MissingIndicators{Custom: false, CustomTokens: "-999"}
	if off.Tokens() != nil {
		t.Fatalf("tokens should be nil when custom is off")
	}
}

func TestIndicatorValidity(t *testing.T) {
	cases := []struct {
		name string
		mi   MissingIndicators
		want bool
	}{
		{"none", MissingIndicators{}, false},
		{"blanks", MissingIndicators{Blanks: true}, true},
		{"na", MissingIndicators{NA: true}, true},
		{"custom with tokens", MissingIndicators{Custom: true, CustomTokens: "-999"}, true},
		{"custom without tokens", MissingIndicators{Custom: true}, false},
		{"custom empty tokens blocks blanks", MissingIndicators{Blanks: true, Custom: true, CustomTokens: " , "}, false},
	}
	for _, tc := range cases {
		if got := tc.mi.Valid(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestMostCorrelated(t *testing.T) {
	empty := FeatureRecord{Name: "age"}
	if empty.MostCorrelated() != nil {
		t.Fatalf("expected nil for no correlations")
	}
	record := FeatureRecord{
		Name: "age",
		Correlated: []CorrelationEntry{
			{FeatureName: "income", Value: -0.9, Kind: KindPearson},
			{FeatureName: "savings", Value: 0.4, Kind: KindPearson},
		},
	}
	top := record.MostCorrelated()
	if top == nil || top.FeatureName != "income" {
		t.Fatalf("expected first entry, got %+v", top)
	}
}

func TestHasHeaderRow(t *testing.T) {
	if (WizardConfig{}).HasHeaderRow() {
		t.Fatalf("unset header choice must not report a header row")
	}
	if !(WizardConfig{HeaderRow: HeaderPresent}).HasHeaderRow() {
		t.Fatalf("expected header row")
	}
	if (WizardConfig{HeaderRow: HeaderAbsent}).HasHeaderRow() {
		t.Fatalf("absent header must not report a header row")
	}
}
