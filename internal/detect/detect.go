// Package detect implements the missing-indicator auto-detection heuristic.
package detect

import (
	"strings"

	"gapscope/internal/model"
)

// Result carries the suggested indicator pre-checks for a sampled grid.
type Result struct {
	Blanks bool
	NA     bool
}

// naTokens are matched case-insensitively and exactly; values with extra
// surrounding content never count.
var naTokens = []string{"N/A", "NA", "n/a"}

// Suggest scans every sampled cell once. Blanks are empty or
// whitespace-only values; N/A requires an exact case-insensitive token match.
func Suggest(grid model.PreviewGrid) Result {
	var res Result
	for _, row := range grid.DataRows {
		for _, cell := range row {
			if res.Blanks && res.NA {
				return res
			}
			if strings.TrimSpace(cell.Value) == "" {
				res.Blanks = true
				continue
			}
			if isNAToken(cell.Value) {
				res.NA = true
			}
		}
	}
	return res
}

func isNAToken(value string) bool {
	for _, token := range naTokens {
		if strings.EqualFold(value, token) {
			return true
		}
	}
	return false
}
