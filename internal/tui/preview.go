package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"gapscope/internal/model"
)

const (
	previewMaxRows = 8
	previewMinCol  = 4
	previewMaxCol  = 16
)

// renderPreview lays out the sampled grid with missing cells highlighted.
// The title row is styled as a header only when the config says the file
// has one.
func renderPreview(grid model.PreviewGrid, width int, hasHeader bool) string {
	if len(grid.TitleRow) == 0 && len(grid.DataRows) == 0 {
		return previewEmptyStyle.Render("No preview available.")
	}
	widths := previewColumnWidths(grid, width)

	var lines []string
	if len(grid.TitleRow) > 0 {
		cells := make([]string, 0, len(grid.TitleRow))
		for i, title := range grid.TitleRow {
			if i >= len(widths) {
				break
			}
			label := padCell(title, widths[i])
			if hasHeader {
				cells = append(cells, previewHeaderStyle.Render(label))
			} else {
				cells = append(cells, previewCellStyle.Render(label))
			}
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	shown := grid.DataRows
	extra := 0
	if len(shown) > previewMaxRows {
		extra = len(shown) - previewMaxRows
		shown = shown[:previewMaxRows]
	}
	for _, row := range shown {
		cells := make([]string, 0, len(row))
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			label := cell.Value
			if cell.Missing && strings.TrimSpace(label) == "" {
				label = "∅"
			}
			label = padCell(label, widths[i])
			if cell.Missing {
				cells = append(cells, previewMissingStyle.Render(label))
			} else {
				cells = append(cells, previewCellStyle.Render(label))
			}
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	if extra > 0 {
		lines = append(lines, previewEmptyStyle.Render(fmt.Sprintf("… %d more sampled rows", extra)))
	}
	return strings.Join(lines, "\n")
}

// previewColumnWidths sizes each column to its content, capped so wide
// grids still fit a terminal.
func previewColumnWidths(grid model.PreviewGrid, width int) []int {
	count := len(grid.TitleRow)
	for _, row := range grid.DataRows {
		if len(row) > count {
			count = len(row)
		}
	}
	widths := make([]int, count)
	for i := range widths {
		widths[i] = previewMinCol
	}
	for i, title := range grid.TitleRow {
		widths[i] = maxInt(widths[i], runewidth.StringWidth(title))
	}
	for _, row := range grid.DataRows {
		for i, cell := range row {
			widths[i] = maxInt(widths[i], runewidth.StringWidth(cell.Value))
		}
	}
	budget := width - count // separators
	for i := range widths {
		widths[i] = minInt(widths[i], previewMaxCol)
	}
	// Shrink right-to-left when the terminal is narrow.
	total := 0
	for _, w := range widths {
		total += w
	}
	for i := count - 1; i >= 0 && budget > 0 && total > budget; i-- {
		over := total - budget
		shrink := minInt(over, widths[i]-previewMinCol)
		widths[i] -= shrink
		total -= shrink
	}
	return widths
}

func padCell(s string, width int) string {
	s = runewidth.Truncate(s, width, "…")
	return s + strings.Repeat(" ", maxInt(0, width-runewidth.StringWidth(s)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
