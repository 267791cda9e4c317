// Package wizard sequences the onboarding steps and their persistence.
package wizard

import (
	"context"
	"fmt"

	"gapscope/internal/model"
)

// Step identifies a wizard screen. Upload is initial, Dashboard terminal.
type Step int

const (
	StepUpload Step = iota
	StepHeaderRow
	StepMissingValues
	StepTarget
	StepDashboard
)

// String implements fmt.Stringer.
func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepHeaderRow:
		return "header-row"
	case StepMissingValues:
		return "missing-values"
	case StepTarget:
		return "target"
	case StepDashboard:
		return "dashboard"
	}
	return "unknown"
}

// Persister saves a step's slice of the configuration to the analysis
// service before the machine transitions.
type Persister interface {
	SubmitFeatureNames(ctx context.Context, hasHeaderRow bool) error
	SubmitMissingDataOptions(ctx context.Context, indicators model.MissingIndicators) error
	SubmitData(ctx context.Context, cfg model.WizardConfig) error
}

// Machine validates and sequences the wizard. A failed persistence call
// blocks the transition; the machine stays on the same step and the call
// is retryable.
type Machine struct {
	persister Persister
	step      Step
	cfg       model.WizardConfig
	uploaded  bool
}

// NewMachine starts a machine at the upload step with an empty config.
func NewMachine(persister Persister) *Machine {
	return &Machine{persister: persister}
}

// Step returns the current step.
func (m *Machine) Step() Step {
	return m.step
}

// Config returns the accumulated wizard answers.
func (m *Machine) Config() model.WizardConfig {
	return m.cfg
}

// MarkUploaded records that the dataset passed server-side validation.
func (m *Machine) MarkUploaded() {
	m.uploaded = true
}

// SetHeaderRow records the header-row answer.
func (m *Machine) SetHeaderRow(choice model.HeaderChoice) {
	m.cfg.HeaderRow = choice
}

// SetIndicators replaces the missing-value indicator set.
func (m *Machine) SetIndicators(indicators model.MissingIndicators) {
	m.cfg.Indicators = indicators
}

// SetTarget records the target feature and its declared type.
func (m *Machine) SetTarget(feature string, targetType model.TargetType) {
	m.cfg.TargetFeature = feature
	m.cfg.TargetType = targetType
}

// CanProceed reports whether the current step's validity predicate holds.
func (m *Machine) CanProceed() bool {
	switch m.step {
	case StepUpload:
		return m.uploaded
	case StepHeaderRow:
		return m.cfg.HeaderRow != model.HeaderUnset
	case StepMissingValues:
		return m.cfg.Indicators.Valid()
	case StepTarget:
		return m.cfg.TargetFeature != "" && m.cfg.TargetType != ""
	}
	return false
}

// Persist runs the current step's persistence call without transitioning.
// The machine is not goroutine-safe, so a caller that persists off its
// event loop keeps all mutation on the loop: Persist in the background,
// then Commit back on the loop once it succeeded. The returned error
// carries the service's message verbatim when persistence fails.
func (m *Machine) Persist(ctx context.Context) error {
	if !m.CanProceed() {
		return fmt.Errorf("step %s is incomplete", m.step)
	}
	switch m.step {
	case StepUpload:
		// Upload validation already happened; nothing to persist.
	case StepHeaderRow:
		if err := m.persister.SubmitFeatureNames(ctx, m.cfg.HasHeaderRow()); err != nil {
			return err
		}
	case StepMissingValues:
		if err := m.persister.SubmitMissingDataOptions(ctx, m.cfg.Indicators); err != nil {
			return err
		}
	case StepTarget:
		if err := m.persister.SubmitData(ctx, m.cfg); err != nil {
			return err
		}
	}
	return nil
}

// Commit applies the forward transition after a successful Persist.
func (m *Machine) Commit() {
	if m.step < StepDashboard {
		m.step++
	}
}

// Advance persists the current step and moves forward.
func (m *Machine) Advance(ctx context.Context) error {
	if err := m.Persist(ctx); err != nil {
		return err
	}
	m.Commit()
	return nil
}

// Skip leaves the target step without choosing a target. It clears the
// target fields and advances unconditionally, with no persistence call.
func (m *Machine) Skip() error {
	if m.step != StepTarget {
		return fmt.Errorf("step %s cannot be skipped", m.step)
	}
	m.cfg.TargetFeature = ""
	m.cfg.TargetType = ""
	m.step = StepDashboard
	return nil
}

// Retreat moves back one step. Always permitted; entered data is kept.
func (m *Machine) Retreat() {
	if m.step > StepUpload {
		m.step--
	}
}

// Reset destroys the session for a new upload.
func (m *Machine) Reset() {
	m.step = StepUpload
	m.cfg = model.WizardConfig{}
	m.uploaded = false
}
