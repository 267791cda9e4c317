package dashui

import (
	"strings"
	"testing"

	"gapscope/internal/model"
)

func TestCorrelationCellStates(t *testing.T) {
	loading := &model.FeatureRecord{LoadingCorrelation: true}
	if got := correlationCell(loading); got != "loading..." {
		t.Fatalf("expected loading marker, got %q", got)
	}

	failed := &model.FeatureRecord{AnalysisErr: "timeout"}
	if got := correlationCell(failed); got != "unavailable" {
		t.Fatalf("expected unavailable marker, got %q", got)
	}

	isolated := &model.FeatureRecord{Correlated: []model.CorrelationEntry{}}
	if got := correlationCell(isolated); got != "none" {
		t.Fatalf("expected none, got %q", got)
	}

	correlated := &model.FeatureRecord{
		Correlated: []model.CorrelationEntry{
			{FeatureName: "income", Value: -0.82, Kind: model.KindPearson},
		},
	}
	got := correlationCell(correlated)
	if !strings.Contains(got, "income") || !strings.Contains(got, "-0.82") {
		t.Fatalf("unexpected cell %q", got)
	}
}

func TestInformativeCellStates(t *testing.T) {
	loading := &model.FeatureRecord{LoadingInformative: true}
	if got := informativeCell(loading); got != "loading..." {
		t.Fatalf("expected loading marker, got %q", got)
	}

	unset := &model.FeatureRecord{}
	if got := informativeCell(unset); got != "-" {
		t.Fatalf("expected dash for unset analysis, got %q", got)
	}

	yes := &model.FeatureRecord{Informative: &model.Informative{IsInformative: true, PValue: 0.012}}
	if got := informativeCell(yes); !strings.Contains(got, "yes") || !strings.Contains(got, "0.012") {
		t.Fatalf("unexpected cell %q", got)
	}

	no := &model.FeatureRecord{Informative: &model.Informative{}}
	if got := informativeCell(no); got != "no" {
		t.Fatalf("expected no, got %q", got)
	}
}

func TestBuildFeatureRows(t *testing.T) {
	rows := buildFeatureRows([]model.FeatureRecord{
		{Name: "age", DataType: model.TypeNumerical, MissingCount: 4, MissingPercentage: 8.5},
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row[0] != "age" || row[1] != "numerical" || row[2] != "4" || row[3] != "8.5%" {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestNextLimitCycles(t *testing.T) {
	if nextLimit(10) != 25 || nextLimit(25) != 50 || nextLimit(50) != 100 {
		t.Fatalf("unexpected limit progression")
	}
	if nextLimit(100) != 10 {
		t.Fatalf("expected wrap to 10")
	}
	if nextLimit(33) != 10 {
		t.Fatalf("expected unknown limits to reset to 10")
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	if got := truncateLine("a long dashboard status line", 10); got != "a long ..." {
		t.Fatalf("unexpected truncation %q", got)
	}
}
