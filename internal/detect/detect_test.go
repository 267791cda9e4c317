package detect

import (
	"testing"

	"gapscope/internal/model"
)

func grid(values ...string) model.PreviewGrid {
	row := make([]model.Cell, len(values))
	for i, v := range values {
		row[i] = model.Cell{Value: v}
	}
	return model.PreviewGrid{
		TitleRow: []string{"a", "b", "c"},
		DataRows: [][]model.Cell{row},
	}
}

func TestSuggestBlankAndNA(t *testing.T) {
	result := Suggest(grid("1", "", "N/A"))
	if !result.Blanks {
		t.Fatalf("expected blank cell to suggest blanks")
	}
	if !result.NA {
		t.Fatalf("expected N/A cell to suggest na")
	}
}

func TestSuggestWhitespaceCountsAsBlank(t *testing.T) {
	result := Suggest(grid("1", "  ", "3"))
	if !result.Blanks {
		t.Fatalf("expected whitespace-only cell to suggest blanks")
	}
	if result.NA {
		t.Fatalf("whitespace should not suggest na")
	}
}

func TestSuggestNAVariants(t *testing.T) {
	for _, token := range []string{"N/A", "NA", "n/a", "na", "Na"} {
		result := Suggest(grid("1", token, "3"))
		if !result.NA {
			t.Fatalf("expected %q to suggest na", token)
		}
	}
}

func TestSuggestExactTokenMatchOnly(t *testing.T) {
	// A trailing space makes the cell a different value, not an NA token.
	result := Suggest(grid("1", "NA ", "3"))
	if result.NA {
		t.Fatalf("padded token should not suggest na")
	}
	if result.Blanks {
		t.Fatalf("padded token should not suggest blanks")
	}
	if Suggest(grid("NAN", "NAME", "banana")).NA {
		t.Fatalf("substrings should not suggest na")
	}
}

func TestSuggestCleanGrid(t *testing.T) {
	result := Suggest(grid("1", "2", "3"))
	if result.Blanks || result.NA {
		t.Fatalf("expected no suggestions, got %+v", result)
	}
}
