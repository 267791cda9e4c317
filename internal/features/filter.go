// Package features derives the rendered table from the aggregator's
// collection: type and correlation filtering plus column sorting. All
// functions are pure and never mutate the input records.
package features

import (
	"math"

	"gapscope/internal/model"
)

// FilterState holds the dashboard's filter toggles and thresholds.
// Invariant: at least one of Numerical/Categorical and at least one of
// ShowCorrelated/ShowUncorrelated is always true; the Toggle methods
// flip the sibling on instead of deactivating the last active flag.
type FilterState struct {
	Numerical   bool
	Categorical bool

	ShowCorrelated   bool
	ShowUncorrelated bool

	Thresholds model.Thresholds

	Sort SortState
}

// DefaultFilterState shows everything with the service's default thresholds.
func DefaultFilterState() FilterState {
	return FilterState{
		Numerical:        true,
		Categorical:      true,
		ShowCorrelated:   true,
		ShowUncorrelated: true,
		Thresholds:       model.DefaultThresholds(),
	}
}

// ToggleNumerical flips the numerical type filter. Turning off the last
// enabled type re-enables its sibling so the table is never forced empty.
func (s *FilterState) ToggleNumerical() {
	s.Numerical = !s.Numerical
	if !s.Numerical && !s.Categorical {
		s.Categorical = true
	}
}

// ToggleCategorical flips the categorical type filter with the same
// sibling re-enable rule.
func (s *FilterState) ToggleCategorical() {
	s.Categorical = !s.Categorical
	if !s.Numerical && !s.Categorical {
		s.Numerical = true
	}
}

// ToggleCorrelated flips whether correlated features are shown. At least
// one of the correlation toggles stays on.
func (s *FilterState) ToggleCorrelated() {
	s.ShowCorrelated = !s.ShowCorrelated
	if !s.ShowCorrelated && !s.ShowUncorrelated {
		s.ShowUncorrelated = true
	}
}

// ToggleUncorrelated flips whether uncorrelated features are shown.
func (s *FilterState) ToggleUncorrelated() {
	s.ShowUncorrelated = !s.ShowUncorrelated
	if !s.ShowCorrelated && !s.ShowUncorrelated {
		s.ShowCorrelated = true
	}
}

// Apply filters and sorts a copy of the collection.
func Apply(records []model.FeatureRecord, state FilterState) []model.FeatureRecord {
	kept := make([]model.FeatureRecord, 0, len(records))
	for _, record := range records {
		if !passesTypeFilter(record, state) {
			continue
		}
		if !passesCorrelationFilter(record, state) {
			continue
		}
		kept = append(kept, record)
	}
	sortRecords(kept, state.Sort)
	return kept
}

// passesTypeFilter keeps records whose recognized type is enabled.
// Records without a recognized data type are dropped.
func passesTypeFilter(record model.FeatureRecord, state FilterState) bool {
	switch record.DataType {
	case model.TypeNumerical:
		return state.Numerical
	case model.TypeCategorical:
		return state.Categorical
	}
	return false
}

// passesCorrelationFilter applies the inclusion toggles. A record whose
// analysis is still loading always passes to avoid flicker.
func passesCorrelationFilter(record model.FeatureRecord, state FilterState) bool {
	if record.LoadingCorrelation {
		return true
	}
	hasCorrelation := len(record.Correlated) > 0
	if hasCorrelation {
		return state.ShowCorrelated && anyEntryPasses(record.Correlated, state.Thresholds)
	}
	return state.ShowUncorrelated
}

func anyEntryPasses(entries []model.CorrelationEntry, t model.Thresholds) bool {
	for _, entry := range entries {
		if entryPasses(entry, t) {
			return true
		}
	}
	return false
}

// entryPasses compares an entry against its kind-specific threshold.
// Pearson's r may be negative, so its comparison uses the absolute value;
// Cramér's V and eta-squared are non-negative and compared directly.
func entryPasses(entry model.CorrelationEntry, t model.Thresholds) bool {
	switch entry.Kind {
	case model.KindPearson:
		return math.Abs(entry.Value) >= t.Pearson
	case model.KindCramerV:
		return entry.Value >= t.CramerV
	case model.KindEta:
		return entry.Value >= t.Eta
	}
	return false
}
