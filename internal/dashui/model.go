// Package dashui provides the Bubble Tea dashboard interface.
package dashui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gapscope/internal/aggregate"
	"gapscope/internal/api"
	"gapscope/internal/features"
	"gapscope/internal/model"
	"gapscope/internal/session"
)

const (
	tabMissing = iota
	tabComplete
	tabRecommendations
	tabSummary
)

var limitSteps = []int{10, 25, 50, 100}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#C89A3A")).
			Padding(0, 1)
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	sectionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea dashboard UI.
type Model struct {
	agg     *aggregate.Aggregator
	client  *api.Client
	changes <-chan session.TypeChange

	filter features.FilterState

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	featTable  table.Model
	featLayout tableLayout
	rowNames   []string

	width  int
	height int

	spin    spinner.Model
	loading bool

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	complete        []model.FeatureRecord
	completePaging  model.Pagination
	completePage    int
	completeLoaded  bool
	completeLoading bool
	completeErr     string

	recs       []model.Recommendation
	recsLoaded bool
	recsErr    string

	cases         model.CaseSummary
	featCounts    model.FeatureSummary
	mechanism     model.Mechanism
	summaryLoaded bool
	summaryErr    string

	errMsg string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

type aggEventMsg struct {
	event aggregate.Event
	ok    bool
}

type typeChangeMsg struct {
	ok bool
}

type completeMsg struct {
	records []model.FeatureRecord
	paging  model.Pagination
	err     error
}

type recsMsg struct {
	recs []model.Recommendation
	err  error
}

type summaryMsg struct {
	cases  model.CaseSummary
	counts model.FeatureSummary
	mech   model.Mechanism
	err    error
}

// NewModel constructs a dashboard model. The change channel resyncs the
// complete-features tab whenever a data-type edit is confirmed.
func NewModel(agg *aggregate.Aggregator, client *api.Client, changes <-chan session.TypeChange) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = headerStyle

	m := &Model{
		agg:     agg,
		client:  client,
		changes: changes,
		filter:  features.DefaultFilterState(),
		tabs:    []string{"Missing Features", "Complete Features", "Recommendations", "Summary"},
		spin:    sp,
		loading: true,
	}
	m.filter.Thresholds = agg.Thresholds()
	m.initInputs()
	m.initFeatureTable()
	m.initViewports()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.agg.Load(context.Background())
	return tea.Batch(m.spin.Tick, m.waitForEvent(), m.waitForTypeChange())
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.agg.Events()
		return aggEventMsg{event: event, ok: ok}
	}
}

func (m *Model) waitForTypeChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return func() tea.Msg {
		_, ok := <-m.changes
		return typeChangeMsg{ok: ok}
	}
}

func (m *Model) loadCompleteCmd() tea.Cmd {
	page := m.completePage
	limit := m.agg.Limit()
	return func() tea.Msg {
		records, paging, err := m.client.CompleteFeatures(context.Background(), page, limit)
		return completeMsg{records: records, paging: paging, err: err}
	}
}

func (m *Model) loadRecsCmd() tea.Cmd {
	return func() tea.Msg {
		recs, err := m.client.Recommendations(context.Background())
		return recsMsg{recs: recs, err: err}
	}
}

func (m *Model) loadSummaryCmd() tea.Cmd {
	return func() tea.Msg {
		cases, err := m.client.CaseCount(context.Background())
		if err != nil {
			return summaryMsg{err: err}
		}
		counts, err := m.client.FeatureCount(context.Background())
		if err != nil {
			return summaryMsg{err: err}
		}
		mech, err := m.client.Mechanism(context.Background())
		if err != nil {
			return summaryMsg{err: err}
		}
		return summaryMsg{cases: cases, counts: counts, mech: mech}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case spinner.TickMsg:
		if !m.anythingLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refreshMissing()
		return m, cmd
	case aggEventMsg:
		if !msg.ok {
			return m, nil
		}
		m.handleEvent(msg.event)
		return m, tea.Batch(m.waitForEvent(), m.spin.Tick)
	case typeChangeMsg:
		if !msg.ok {
			return m, nil
		}
		// A confirmed type edit moves rows between the two tables.
		m.completeLoaded = false
		var cmd tea.Cmd
		if m.activeTab == tabComplete {
			cmd = m.startCompleteLoad()
		}
		return m, tea.Batch(m.waitForTypeChange(), cmd)
	case completeMsg:
		m.completeLoading = false
		m.completeLoaded = true
		if msg.err != nil {
			m.completeErr = msg.err.Error()
		} else {
			m.completeErr = ""
			m.complete = msg.records
			m.completePaging = msg.paging
		}
		m.renderTabContents()
		return m, nil
	case recsMsg:
		m.recsLoaded = true
		if msg.err != nil {
			m.recsErr = msg.err.Error()
		} else {
			m.recsErr = ""
			m.recs = msg.recs
		}
		m.renderTabContents()
		return m, nil
	case summaryMsg:
		m.summaryLoaded = true
		if msg.err != nil {
			m.summaryErr = msg.err.Error()
		} else {
			m.summaryErr = ""
			m.cases = msg.cases
			m.featCounts = msg.counts
			m.mechanism = msg.mech
		}
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(event aggregate.Event) {
	switch event.Kind {
	case aggregate.EventList:
		m.loading = false
		m.errMsg = ""
	case aggregate.EventListFailed:
		m.loading = false
	case aggregate.EventTypeChangeFailed:
		if event.Err != nil {
			m.errMsg = "type change rejected: " + event.Err.Error()
		}
	case aggregate.EventTypeChanged:
		m.errMsg = ""
	}
	m.refreshMissing()
}

func (m *Model) anythingLoading() bool {
	if m.loading || m.completeLoading {
		return true
	}
	records, _, _ := m.agg.Snapshot()
	for i := range records {
		if records[i].LoadingCorrelation || records[i].LoadingInformative {
			return true
		}
	}
	return false
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
		return m, tea.Quit
	}
	if m.filterMode {
		return m.updateFilter(msg)
	}
	switch msg.String() {
	case "left", "h":
		return m, m.moveTab(-1)
	case "right", "l":
		return m, m.moveTab(1)
	case "/":
		return m.startFilter()
	case "r":
		return m, m.reload()
	}
	switch m.activeTab {
	case tabMissing:
		return m.updateMissingKey(msg)
	case tabComplete:
		return m.updateCompleteKey(msg)
	default:
		vp := m.viewports[m.activeTab]
		var cmd tea.Cmd
		vp, cmd = vp.Update(msg)
		m.viewports[m.activeTab] = vp
		return m, cmd
	}
}

func (m *Model) updateMissingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, paging, _ := m.agg.Snapshot()
	switch msg.String() {
	case "1":
		m.filter.ToggleNumerical()
	case "2":
		m.filter.ToggleCategorical()
	case "3":
		m.filter.ToggleCorrelated()
	case "4":
		m.filter.ToggleUncorrelated()
	case "f":
		m.filter.Sort.CycleFeature()
	case "m":
		m.filter.Sort.CycleNumber()
	case "o":
		m.filter.Sort.CyclePercentage()
	case "n":
		if paging.HasNext {
			m.loading = true
			m.agg.SetPage(context.Background(), m.agg.Page()+1)
			return m, m.spin.Tick
		}
		return m, nil
	case "p":
		if paging.HasPrev {
			m.loading = true
			m.agg.SetPage(context.Background(), m.agg.Page()-1)
			return m, m.spin.Tick
		}
		return m, nil
	case "=":
		m.loading = true
		m.agg.SetLimit(context.Background(), nextLimit(m.agg.Limit()))
		return m, m.spin.Tick
	case "t":
		m.flipSelectedType()
		return m, m.spin.Tick
	case "g", "home":
		m.featTable.GotoTop()
		return m, nil
	case "G", "end":
		m.featTable.GotoBottom()
		return m, nil
	default:
		var cmd tea.Cmd
		m.featTable, cmd = m.featTable.Update(msg)
		return m, cmd
	}
	m.refreshMissing()
	return m, nil
}

func (m *Model) updateCompleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		if m.completePaging.HasNext {
			m.completePage++
			return m, m.startCompleteLoad()
		}
	case "p":
		if m.completePaging.HasPrev {
			m.completePage--
			return m, m.startCompleteLoad()
		}
	default:
		vp := m.viewports[tabComplete]
		var cmd tea.Cmd
		vp, cmd = vp.Update(msg)
		m.viewports[tabComplete] = vp
		return m, cmd
	}
	return m, nil
}

// reload refetches whatever the active tab shows.
func (m *Model) reload() tea.Cmd {
	switch m.activeTab {
	case tabMissing:
		m.loading = true
		m.agg.Load(context.Background())
		return m.spin.Tick
	case tabComplete:
		return m.startCompleteLoad()
	case tabRecommendations:
		m.recsLoaded = false
		m.renderTabContents()
		return m.loadRecsCmd()
	case tabSummary:
		m.summaryLoaded = false
		m.renderTabContents()
		return m.loadSummaryCmd()
	}
	return nil
}

func (m *Model) startCompleteLoad() tea.Cmd {
	m.completeLoading = true
	m.renderTabContents()
	return tea.Batch(m.loadCompleteCmd(), m.spin.Tick)
}

func (m *Model) moveTab(delta int) tea.Cmd {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabMissing {
		m.featTable.Focus()
	} else {
		m.featTable.Blur()
	}

	var load tea.Cmd
	switch {
	case m.activeTab == tabComplete && !m.completeLoaded && !m.completeLoading:
		load = m.startCompleteLoad()
	case m.activeTab == tabRecommendations && !m.recsLoaded:
		load = m.loadRecsCmd()
	case m.activeTab == tabSummary && !m.summaryLoaded:
		load = m.loadSummaryCmd()
	}
	m.renderTabContents()
	return tea.Batch(tea.ClearScreen, load)
}

func (m *Model) flipSelectedType() {
	idx := m.featTable.Cursor()
	if idx < 0 || idx >= len(m.rowNames) {
		return
	}
	name := m.rowNames[idx]
	records, _, _ := m.agg.Snapshot()
	for i := range records {
		if records[i].Name != name {
			continue
		}
		newType := model.TypeCategorical
		if records[i].DataType == model.TypeCategorical {
			newType = model.TypeNumerical
		}
		m.agg.SetDataType(context.Background(), name, newType)
		m.refreshMissing()
		return
	}
}

func nextLimit(current int) int {
	for i, step := range limitSteps {
		if step == current {
			return limitSteps[(i+1)%len(limitSteps)]
		}
	}
	return limitSteps[0]
}

// refreshMissing rebuilds the table rows from the aggregator snapshot,
// with the filter and sort state applied.
func (m *Model) refreshMissing() {
	records, _, _ := m.agg.Snapshot()
	visible := features.Apply(records, m.filter)
	m.rowNames = make([]string, len(visible))
	for i := range visible {
		m.rowNames[i] = visible[i].Name
	}
	m.featTable.SetRows(buildFeatureRows(visible))
	m.featLayout.rowCount = len(visible)
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initFeatureTable() {
	m.featTable = table.New(
		table.WithColumns(featureTableColumns()),
		table.WithRows(nil),
		table.WithHeight(1),
	)
	m.featTable.SetStyles(featureTableStyles())
	m.featTable.Focus()
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newThresholdInput("Pearson |r| >= "),
		newThresholdInput("Cramer's V >= "),
		newThresholdInput("Eta squared >= "),
	}
	m.setInputsFromThresholds()
}

func newThresholdInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromThresholds() {
	t := m.filter.Thresholds
	m.filterInputs[0].SetValue(strconv.FormatFloat(t.Pearson, 'f', -1, 64))
	m.filterInputs[1].SetValue(strconv.FormatFloat(t.CramerV, 'f', -1, 64))
	m.filterInputs[2].SetValue(strconv.FormatFloat(t.Eta, 'f', -1, 64))
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromThresholds()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		thresholds, err := m.parseThresholds()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		if thresholds != m.filter.Thresholds {
			m.filter.Thresholds = thresholds
			m.loading = true
			// Every in-memory analysis is stale under new cutoffs.
			m.agg.SetThresholds(context.Background(), thresholds)
		}
		m.refreshMissing()
		return m, m.spin.Tick
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) parseThresholds() (model.Thresholds, error) {
	var t model.Thresholds
	values := []*float64{&t.Pearson, &t.CramerV, &t.Eta}
	for i, input := range m.filterInputs {
		raw := strings.TrimSpace(input.Value())
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return t, fmt.Errorf("invalid threshold %q (use a number in [0, 1])", raw)
		}
		if parsed < 0 || parsed > 1 {
			return t, fmt.Errorf("threshold %v out of range [0, 1]", parsed)
		}
		*values[i] = parsed
	}
	return t, nil
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	if m.agg.ListError() != "" {
		headerHeight++
	}
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.setFeatureTableSize(m.width, bodyHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) setFeatureTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.featLayout.width == width && m.featLayout.height == viewportHeight {
		return
	}
	m.featLayout.width = width
	m.featLayout.height = viewportHeight
	m.featTable.SetWidth(width)
	m.featTable.SetHeight(viewportHeight)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	out := padLines(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width)
	out += "\n" + padLines(m.renderStatusLine(), m.width)
	if banner := m.agg.ListError(); banner != "" {
		out += "\n" + padLines(bannerStyle.Render(truncateLine("Limited view: "+banner, m.width-2)), m.width)
	}
	return out
}

func (m *Model) renderStatusLine() string {
	_, paging, _ := m.agg.Snapshot()
	t := m.filter.Thresholds
	status := fmt.Sprintf("Page %d/%d  limit=%d  total=%d  r>=%.2f V>=%.2f eta>=%.2f  %s",
		paging.Page+1, maxInt(1, paging.TotalPages), m.agg.Limit(), paging.Total,
		t.Pearson, t.CramerV, t.Eta, m.filterSummary())
	if m.anythingLoading() {
		status = m.spin.View() + " " + status
	}
	return headerStyle.Render(truncateLine(status, m.width))
}

func (m *Model) filterSummary() string {
	var parts []string
	if !m.filter.Numerical {
		parts = append(parts, "no-num")
	}
	if !m.filter.Categorical {
		parts = append(parts, "no-cat")
	}
	if !m.filter.ShowCorrelated {
		parts = append(parts, "uncorrelated-only")
	}
	if !m.filter.ShowUncorrelated {
		parts = append(parts, "correlated-only")
	}
	if sortLabel := describeSort(m.filter.Sort); sortLabel != "" {
		parts = append(parts, "sort="+sortLabel)
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}

func describeSort(s features.SortState) string {
	switch {
	case s.Feature == features.Alphabetical:
		return "name asc"
	case s.Feature == features.ReverseAlphabetical:
		return "name desc"
	case s.Number == features.Ascending:
		return "missing asc"
	case s.Number == features.Descending:
		return "missing desc"
	case s.Percentage == features.Ascending:
		return "pct asc"
	case s.Percentage == features.Descending:
		return "pct desc"
	}
	return ""
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	switch m.activeTab {
	case tabMissing:
		return m.renderMissing(height)
	default:
		return fitLines(m.viewports[m.activeTab].View(), m.width, height)
	}
}

func (m *Model) renderMissing(height int) string {
	if m.loading && m.featLayout.rowCount == 0 {
		return fitLines(m.spin.View()+" Loading features...", m.width, height)
	}
	if m.featLayout.rowCount == 0 {
		return fitLines("No features match the current filters.", m.width, height)
	}
	return fitLines(tableMutedStyle.Render(m.featTable.View()), m.width, height)
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Correlation thresholds (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabComplete].SetContent(m.renderComplete(width))
	m.viewports[tabRecommendations].SetContent(m.renderRecommendations(width))
	m.viewports[tabSummary].SetContent(m.renderSummary(width))
}

func (m *Model) renderComplete(width int) string {
	if m.completeLoading {
		return "Loading complete features..."
	}
	if m.completeErr != "" {
		return errorStyle.Render("Failed to load complete features: " + m.completeErr)
	}
	if m.completeLoaded && len(m.complete) == 0 {
		return "Every feature has missing values."
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Features without missing values"))
	b.WriteString("\n\n")
	for i := range m.complete {
		record := &m.complete[i]
		line := fmt.Sprintf("%-24s %-12s", truncateLine(record.Name, 24), typeLabel(record.DataType))
		b.WriteString(truncateLine(line, width))
		b.WriteString("\n")
	}
	paging := m.completePaging
	if paging.TotalPages > 1 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("Page %d/%d (%d total)  n/p to page", paging.Page+1, paging.TotalPages, paging.Total)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderRecommendations(width int) string {
	if !m.recsLoaded {
		return "Loading recommendations..."
	}
	if m.recsErr != "" {
		return errorStyle.Render("Failed to load recommendations: " + m.recsErr)
	}
	if len(m.recs) == 0 {
		return "No recommendations for this dataset."
	}
	var b strings.Builder
	for _, rec := range m.recs {
		b.WriteString(sectionStyle.Render(rec.Type))
		b.WriteString("\n")
		b.WriteString(truncateLine(rec.Reason, width))
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(truncateLine("Features: "+strings.Join(rec.Features, ", "), width)))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderSummary(width int) string {
	if !m.summaryLoaded {
		return "Loading summary..."
	}
	if m.summaryErr != "" {
		return errorStyle.Render("Failed to load summary: " + m.summaryErr)
	}
	cards := []string{
		metricCard("Cases", fmt.Sprintf("%d", m.cases.TotalCases)),
		metricCard("Missing Cells", fmt.Sprintf("%.1f%%", m.cases.MissingPercentage)),
		metricCard("Features w/ Missing", fmt.Sprintf("%d", m.featCounts.FeaturesWithMissing)),
		metricCard("Affected Features", fmt.Sprintf("%.1f%%", m.featCounts.MissingFeaturePercentage)),
		metricCard("Mechanism", fmt.Sprintf("%s (p=%.3f)", m.mechanism.Mechanism, m.mechanism.PValue)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down  Reload: r  Thresholds: /  Quit: q"
	if m.activeTab == tabMissing {
		help = "Filters: 1/2/3/4  Sort: f/m/o  Page: n/p  Limit: =  Type: t  Thresholds: /  Quit: q"
	}
	if m.activeTab == tabComplete {
		help = "Nav: left/right  Page: n/p  Reload: r  Quit: q"
	}
	out := headerStyle.Render(truncateLine(help, m.width))
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return out
}
