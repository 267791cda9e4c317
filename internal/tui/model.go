// Package tui provides the Bubble Tea onboarding wizard.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gapscope/internal/api"
	"gapscope/internal/detect"
	"gapscope/internal/model"
	"gapscope/internal/store"
	"gapscope/internal/wizard"
)

// Model implements the onboarding wizard UI.
type Model struct {
	machine *wizard.Machine
	client  *api.Client
	store   *store.Store // may be nil when history is disabled
	path    string

	uploadID int64

	width  int
	height int

	spin   spinner.Model
	tokens textinput.Model

	debounce      *wizard.Debouncer
	tokensFocused bool

	preview    model.PreviewGrid
	hasPreview bool
	previewErr string

	suggest        api.Suggestions
	suggestReady   bool
	suggestApplied bool

	targetIndex int

	uploading bool
	uploadErr string
	busy      bool
	errMsg    string

	done bool
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	stepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BC96F"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

	previewHeaderStyle  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#F0F0F0"))
	previewCellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	previewMissingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	previewEmptyStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#6E6E6E"))
)

type uploadDoneMsg struct{ err error }

type previewMsg struct {
	grid model.PreviewGrid
	err  error
}

type detectMsg struct {
	suggest api.Suggestions
	err     error
}

type advanceDoneMsg struct{ err error }

type debounceMsg struct{ seq int }

// NewModel constructs a wizard model for the given dataset path.
func NewModel(machine *wizard.Machine, client *api.Client, st *store.Store, path string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = stepStyle

	tokens := textinput.New()
	tokens.Placeholder = "-999, missing, ?"
	tokens.CharLimit = 200
	tokens.Width = 40

	return &Model{
		machine:   machine,
		client:    client,
		store:     st,
		path:      path,
		spin:      sp,
		tokens:    tokens,
		debounce:  wizard.NewDebouncer(wizard.DefaultDebounce),
		uploading: true,
	}
}

// Completed reports whether the wizard reached the dashboard step.
func (m *Model) Completed() bool {
	return m.done
}

// Config returns the wizard's accumulated configuration.
func (m *Model) Config() model.WizardConfig {
	return m.machine.Config()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.uploadCmd())
}

func (m *Model) uploadCmd() tea.Cmd {
	return func() tea.Msg {
		return uploadDoneMsg{err: m.client.ValidateUpload(context.Background(), m.path)}
	}
}

func (m *Model) previewCmd() tea.Cmd {
	cfg := m.machine.Config()
	return func() tea.Msg {
		grid, err := m.client.PreviewLive(context.Background(), cfg)
		return previewMsg{grid: grid, err: err}
	}
}

func (m *Model) detectCmd() tea.Cmd {
	return func() tea.Msg {
		suggest, err := m.client.DetectMissingOptions(context.Background())
		return detectMsg{suggest: suggest, err: err}
	}
}

func (m *Model) advanceCmd() tea.Cmd {
	// Only the persistence call runs off the event loop; the step
	// transition commits back on it when advanceDoneMsg arrives, so the
	// machine is never mutated concurrently with View.
	machine := m.machine
	return func() tea.Msg {
		return advanceDoneMsg{err: machine.Persist(context.Background())}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case uploadDoneMsg:
		m.uploading = false
		if msg.err != nil {
			m.uploadErr = msg.err.Error()
			return m, nil
		}
		m.uploadErr = ""
		m.machine.MarkUploaded()
		// The upload step has nothing to persist, so this cannot fail.
		_ = m.machine.Advance(context.Background())
		m.recordUpload()
		return m, tea.Batch(m.previewCmd(), m.detectCmd())
	case previewMsg:
		if msg.err != nil {
			m.previewErr = msg.err.Error()
			return m, nil
		}
		m.preview = msg.grid
		m.hasPreview = true
		m.previewErr = ""
		return m, nil
	case detectMsg:
		if msg.err != nil {
			// The service could not help; fall back to scanning the
			// sampled grid locally once it is available.
			if m.hasPreview {
				local := detect.Suggest(m.preview)
				m.suggest = api.Suggestions{Blanks: local.Blanks, NA: local.NA}
				m.suggestReady = true
			}
			return m, nil
		}
		m.suggest = msg.suggest
		m.suggestReady = true
		// While a persist is in flight the machine must stay untouched;
		// a suggestion landing then is moot anyway, the step is being left.
		if !m.busy && m.machine.Step() == wizard.StepMissingValues {
			m.applySuggestions()
			m.syncTokensInput()
		}
		return m, nil
	case debounceMsg:
		if m.debounce.Current(msg.seq) {
			m.debounce.Flush()
			return m, m.previewCmd()
		}
		return m, nil
	case advanceDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.machine.Commit()
		return m, m.enterStep()
	case tea.KeyMsg:
		return m.updateKey(msg)
	default:
		return m, nil
	}
}

// enterStep runs the side effects of arriving at the current step.
func (m *Model) enterStep() tea.Cmd {
	switch m.machine.Step() {
	case wizard.StepMissingValues:
		m.applySuggestions()
		m.syncTokensInput()
	case wizard.StepTarget:
		m.clampTargetIndex()
	case wizard.StepDashboard:
		m.saveConfig()
		m.done = true
		return tea.Quit
	}
	return nil
}

// applySuggestions pre-checks the detected indicators, once per upload
// and only when the user has not configured anything yet.
func (m *Model) applySuggestions() {
	if m.suggestApplied || !m.suggestReady {
		return
	}
	m.suggestApplied = true
	cfg := m.machine.Config()
	if cfg.Indicators != (model.MissingIndicators{}) {
		return
	}
	cfg.Indicators.Blanks = m.suggest.Blanks
	cfg.Indicators.NA = m.suggest.NA
	m.machine.SetIndicators(cfg.Indicators)
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}
	switch m.machine.Step() {
	case wizard.StepUpload:
		return m.updateUpload(key)
	case wizard.StepHeaderRow:
		return m.updateHeaderRow(key)
	case wizard.StepMissingValues:
		return m.updateMissingValues(msg, key)
	case wizard.StepTarget:
		return m.updateTarget(key)
	}
	return m, nil
}

func (m *Model) updateUpload(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		if m.uploadErr != "" {
			m.uploading = true
			m.uploadErr = ""
			return m, tea.Batch(m.spin.Tick, m.uploadCmd())
		}
	case "enter":
		if m.machine.CanProceed() {
			// Revisited after a retreat; the file is already validated.
			_ = m.machine.Advance(context.Background())
			return m, m.previewCmd()
		}
	}
	return m, nil
}

func (m *Model) updateHeaderRow(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "left":
		m.machine.Retreat()
		return m, nil
	case "y", "up":
		m.machine.SetHeaderRow(model.HeaderPresent)
		return m, m.previewCmd()
	case "n", "down":
		m.machine.SetHeaderRow(model.HeaderAbsent)
		return m, m.previewCmd()
	case "enter":
		return m.beginAdvance()
	}
	return m, nil
}

func (m *Model) updateMissingValues(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	if m.tokensFocused {
		return m.updateTokensInput(msg, key)
	}
	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "left":
		m.machine.Retreat()
		return m, nil
	case "1":
		return m.toggleIndicator(func(i *model.MissingIndicators) { i.Blanks = !i.Blanks })
	case "2":
		return m.toggleIndicator(func(i *model.MissingIndicators) { i.NA = !i.NA })
	case "3":
		cfg := m.machine.Config()
		cfg.Indicators.Custom = !cfg.Indicators.Custom
		m.machine.SetIndicators(cfg.Indicators)
		if cfg.Indicators.Custom {
			m.focusTokens()
			return m, textinput.Blink
		}
		return m, m.previewCmd()
	case "tab", "e":
		if m.machine.Config().Indicators.Custom {
			m.focusTokens()
			return m, textinput.Blink
		}
	case "enter":
		return m.beginAdvance()
	}
	return m, nil
}

func (m *Model) updateTokensInput(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "enter", "tab":
		m.blurTokens()
		m.debounce.Flush()
		return m, m.previewCmd()
	}
	before := m.tokens.Value()
	var cmd tea.Cmd
	m.tokens, cmd = m.tokens.Update(msg)
	after := m.tokens.Value()
	if after == before {
		return m, cmd
	}

	cfg := m.machine.Config()
	cfg.Indicators.CustomTokens = after
	m.machine.SetIndicators(cfg.Indicators)

	// A comma ends a token, so refresh immediately instead of waiting
	// out the debounce window.
	if key == "," {
		m.debounce.Flush()
		return m, tea.Batch(cmd, m.previewCmd())
	}
	seq := m.debounce.Touch()
	timer := tea.Tick(m.debounce.Delay(), func(t time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
	return m, tea.Batch(cmd, timer)
}

func (m *Model) toggleIndicator(apply func(*model.MissingIndicators)) (tea.Model, tea.Cmd) {
	cfg := m.machine.Config()
	apply(&cfg.Indicators)
	m.machine.SetIndicators(cfg.Indicators)
	return m, m.previewCmd()
}

func (m *Model) focusTokens() {
	m.tokensFocused = true
	m.tokens.Focus()
}

func (m *Model) blurTokens() {
	m.tokensFocused = false
	m.tokens.Blur()
}

func (m *Model) syncTokensInput() {
	m.tokens.SetValue(m.machine.Config().Indicators.CustomTokens)
}

func (m *Model) updateTarget(key string) (tea.Model, tea.Cmd) {
	features := m.targetFeatures()
	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "left":
		m.machine.Retreat()
		return m, nil
	case "up", "k":
		if m.targetIndex > 0 {
			m.targetIndex--
			m.selectTarget(features)
		}
	case "down", "j":
		if m.targetIndex < len(features)-1 {
			m.targetIndex++
			m.selectTarget(features)
		}
	case "n":
		m.setTargetType(features, model.TargetNumerical)
	case "c":
		m.setTargetType(features, model.TargetCategorical)
	case "s":
		if err := m.machine.Skip(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		return m, m.enterStep()
	case "enter":
		return m.beginAdvance()
	}
	return m, nil
}

// selectTarget keeps the chosen type when the highlight moves.
func (m *Model) selectTarget(features []string) {
	if m.targetIndex >= len(features) {
		return
	}
	cfg := m.machine.Config()
	if cfg.TargetType != "" {
		m.machine.SetTarget(features[m.targetIndex], cfg.TargetType)
	}
}

func (m *Model) setTargetType(features []string, t model.TargetType) {
	if len(features) == 0 {
		return
	}
	m.clampTargetIndex()
	m.machine.SetTarget(features[m.targetIndex], t)
}

func (m *Model) clampTargetIndex() {
	features := m.targetFeatures()
	if m.targetIndex >= len(features) {
		m.targetIndex = 0
	}
}

// targetFeatures lists the selectable feature names from the preview.
func (m *Model) targetFeatures() []string {
	return m.preview.TitleRow
}

func (m *Model) beginAdvance() (tea.Model, tea.Cmd) {
	if !m.machine.CanProceed() {
		m.errMsg = fmt.Sprintf("step %s is incomplete", m.machine.Step())
		return m, nil
	}
	m.busy = true
	m.errMsg = ""
	return m, tea.Batch(m.spin.Tick, m.advanceCmd())
}

func (m *Model) recordUpload() {
	if m.store == nil {
		return
	}
	record := model.UploadRecord{
		Path:       m.path,
		Filename:   filepath.Base(m.path),
		UploadedAt: time.Now(),
	}
	id, err := m.store.RecordUpload(context.Background(), record)
	if err != nil {
		return // history is best effort
	}
	m.uploadID = id
}

func (m *Model) saveConfig() {
	if m.store == nil || m.uploadID == 0 {
		return
	}
	_ = m.store.SaveConfig(context.Background(), m.uploadID, m.machine.Config())
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("gapscope"))
	b.WriteString("  ")
	b.WriteString(stepStyle.Render(m.stepLabel()))
	b.WriteString("\n\n")

	switch m.machine.Step() {
	case wizard.StepUpload:
		b.WriteString(m.viewUpload())
	case wizard.StepHeaderRow:
		b.WriteString(m.viewHeaderRow())
	case wizard.StepMissingValues:
		b.WriteString(m.viewMissingValues())
	case wizard.StepTarget:
		b.WriteString(m.viewTarget())
	case wizard.StepDashboard:
		b.WriteString(dimStyle.Render("Opening dashboard..."))
	}

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m *Model) stepLabel() string {
	step := m.machine.Step()
	if step == wizard.StepDashboard {
		return "done"
	}
	return fmt.Sprintf("step %d of 4: %s", int(step)+1, step)
}

func (m *Model) viewUpload() string {
	switch {
	case m.uploading:
		return m.spin.View() + " Validating " + filepath.Base(m.path)
	case m.uploadErr != "":
		return errorStyle.Render("Upload failed: " + m.uploadErr)
	default:
		return checkedStyle.Render("Validated "+filepath.Base(m.path)) + "\n" +
			dimStyle.Render("Press enter to continue.")
	}
}

func (m *Model) viewHeaderRow() string {
	var b strings.Builder
	b.WriteString("Does the first row contain feature names?\n\n")
	choice := m.machine.Config().HeaderRow
	b.WriteString(renderChoice("Yes, it is a header row", choice == model.HeaderPresent))
	b.WriteString("\n")
	b.WriteString(renderChoice("No, it is data", choice == model.HeaderAbsent))
	b.WriteString("\n\n")
	b.WriteString(m.viewPreviewPane())
	return b.String()
}

func (m *Model) viewMissingValues() string {
	cfg := m.machine.Config()
	var b strings.Builder
	b.WriteString("Which values should count as missing?\n\n")
	b.WriteString(renderCheckbox("1", "Blank cells", cfg.Indicators.Blanks))
	b.WriteString("\n")
	b.WriteString(renderCheckbox("2", "N/A variants", cfg.Indicators.NA))
	b.WriteString("\n")
	b.WriteString(renderCheckbox("3", "Custom tokens", cfg.Indicators.Custom))
	if cfg.Indicators.Custom {
		b.WriteString("\n    ")
		b.WriteString(m.tokens.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewPreviewPane())
	return b.String()
}

func (m *Model) viewTarget() string {
	features := m.targetFeatures()
	cfg := m.machine.Config()
	var b strings.Builder
	b.WriteString("Choose the target feature, or skip.\n\n")
	if len(features) == 0 {
		b.WriteString(dimStyle.Render("No feature names available."))
		return b.String()
	}
	for i, name := range features {
		line := "  " + name
		if name == cfg.TargetFeature && cfg.TargetType != "" {
			line += dimStyle.Render("  (" + string(cfg.TargetType) + ")")
		}
		if i == m.targetIndex {
			b.WriteString(selectedStyle.Render("> " + strings.TrimPrefix(line, "  ")))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewPreviewPane() string {
	if m.previewErr != "" {
		return errorStyle.Render("Preview unavailable: " + m.previewErr)
	}
	if !m.hasPreview {
		return m.spin.View() + " Loading preview"
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	return renderPreview(m.preview, width, m.machine.Config().HasHeaderRow())
}

func (m *Model) helpLine() string {
	if m.busy {
		return m.spin.View() + " saving"
	}
	switch m.machine.Step() {
	case wizard.StepUpload:
		if m.uploadErr != "" {
			return "r retry · q quit"
		}
		return "enter continue · q quit"
	case wizard.StepHeaderRow:
		return "y/n choose · enter continue · esc back · q quit"
	case wizard.StepMissingValues:
		if m.tokensFocused {
			return "type tokens, comma separated · enter/esc done"
		}
		return "1/2/3 toggle · tab edit tokens · enter continue · esc back · q quit"
	case wizard.StepTarget:
		return "up/down choose · n numerical · c categorical · s skip · enter continue · esc back"
	}
	return ""
}

func renderChoice(label string, chosen bool) string {
	if chosen {
		return selectedStyle.Render("(x) " + label)
	}
	return dimStyle.Render("( ) " + label)
}

func renderCheckbox(key, label string, checked bool) string {
	box := "[ ]"
	style := dimStyle
	if checked {
		box = "[x]"
		style = checkedStyle
	}
	return style.Render(fmt.Sprintf("%s %s %s", box, key, label))
}
