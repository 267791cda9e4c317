package features

import (
	"sort"
	"strings"

	"gapscope/internal/model"
)

// SortOrder is the state of one sortable column.
type SortOrder int

const (
	NoSort SortOrder = iota
	Ascending
	Descending
	Alphabetical
	ReverseAlphabetical
)

// SortState tracks the three sortable columns. At most one is active;
// the Set methods clear the other two.
type SortState struct {
	Feature    SortOrder
	Number     SortOrder
	Percentage SortOrder
}

// SetFeature activates a name sort and clears the numeric sorts.
func (s *SortState) SetFeature(order SortOrder) {
	*s = SortState{Feature: order}
}

// SetNumber activates a missing-count sort and clears the others.
func (s *SortState) SetNumber(order SortOrder) {
	*s = SortState{Number: order}
}

// SetPercentage activates a missing-percentage sort and clears the others.
func (s *SortState) SetPercentage(order SortOrder) {
	*s = SortState{Percentage: order}
}

// CycleFeature steps the name sort through off/A-Z/Z-A.
func (s *SortState) CycleFeature() {
	switch s.Feature {
	case Alphabetical:
		s.SetFeature(ReverseAlphabetical)
	case ReverseAlphabetical:
		s.SetFeature(NoSort)
	default:
		s.SetFeature(Alphabetical)
	}
}

// CycleNumber steps the missing-count sort through off/asc/desc.
func (s *SortState) CycleNumber() {
	s.SetNumber(cycleNumeric(s.Number))
}

// CyclePercentage steps the missing-percentage sort through off/asc/desc.
func (s *SortState) CyclePercentage() {
	s.SetPercentage(cycleNumeric(s.Percentage))
}

func cycleNumeric(order SortOrder) SortOrder {
	switch order {
	case Ascending:
		return Descending
	case Descending:
		return NoSort
	default:
		return Ascending
	}
}

// sortRecords orders the slice in place per the active column. NoSort on
// every column preserves the stable input order.
func sortRecords(records []model.FeatureRecord, state SortState) {
	switch {
	case state.Feature != NoSort:
		direction := ascendingFor(state.Feature)
		sort.SliceStable(records, func(i, j int) bool {
			cmp := compareNames(records[i].Name, records[j].Name)
			if direction {
				return cmp < 0
			}
			return cmp > 0
		})
	case state.Number != NoSort:
		direction := ascendingFor(state.Number)
		sort.SliceStable(records, func(i, j int) bool {
			if direction {
				return records[i].MissingCount < records[j].MissingCount
			}
			return records[i].MissingCount > records[j].MissingCount
		})
	case state.Percentage != NoSort:
		direction := ascendingFor(state.Percentage)
		sort.SliceStable(records, func(i, j int) bool {
			if direction {
				return records[i].MissingPercentage < records[j].MissingPercentage
			}
			return records[i].MissingPercentage > records[j].MissingPercentage
		})
	}
}

func ascendingFor(order SortOrder) bool {
	return order == Ascending || order == Alphabetical
}

// compareNames orders feature names case-insensitively, falling back to a
// byte comparison for ties so the order is total.
func compareNames(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		if la < lb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
