package dashui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"gapscope/internal/model"
)

func featureTableColumns() []table.Column {
	return []table.Column{
		{Title: "Feature", Width: 22},
		{Title: "Type", Width: 11},
		{Title: "Missing", Width: 8},
		{Title: "Missing %", Width: 10},
		{Title: "Most Correlated", Width: 26},
		{Title: "Informative", Width: 14},
	}
}

func buildFeatureRows(records []model.FeatureRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for i := range records {
		record := &records[i]
		rows = append(rows, table.Row{
			record.Name,
			typeLabel(record.DataType),
			fmt.Sprintf("%d", record.MissingCount),
			fmt.Sprintf("%.1f%%", record.MissingPercentage),
			correlationCell(record),
			informativeCell(record),
		})
	}
	return rows
}

func typeLabel(t model.DataType) string {
	switch t {
	case model.TypeNumerical:
		return "numerical"
	case model.TypeCategorical:
		return "categorical"
	}
	return string(t)
}

func correlationCell(record *model.FeatureRecord) string {
	switch {
	case record.LoadingCorrelation:
		return "loading..."
	case record.AnalysisErr != "":
		return "unavailable"
	}
	entry := record.MostCorrelated()
	if entry == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%s=%.2f)", entry.FeatureName, entry.Kind, entry.Value)
}

func informativeCell(record *model.FeatureRecord) string {
	switch {
	case record.LoadingInformative:
		return "loading..."
	case record.AnalysisErr != "":
		return "unavailable"
	case record.Informative == nil:
		return "-"
	case record.Informative.IsInformative:
		return fmt.Sprintf("yes (p=%.3f)", record.Informative.PValue)
	}
	return "no"
}

func featureTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
