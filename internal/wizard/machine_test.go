package wizard

import (
	"context"
	"errors"
	"testing"

	"gapscope/internal/model"
)

type fakePersister struct {
	headerCalls int
	headerErr   error

	indicatorCalls int
	indicatorErr   error
	lastIndicators model.MissingIndicators

	submitCalls int
	submitErr   error
	lastConfig  model.WizardConfig
}

func (p *fakePersister) SubmitFeatureNames(_ context.Context, _ bool) error {
	p.headerCalls++
	return p.headerErr
}

func (p *fakePersister) SubmitMissingDataOptions(_ context.Context, indicators model.MissingIndicators) error {
	p.indicatorCalls++
	p.lastIndicators = indicators
	return p.indicatorErr
}

func (p *fakePersister) SubmitData(_ context.Context, cfg model.WizardConfig) error {
	p.submitCalls++
	p.lastConfig = cfg
	return p.submitErr
}

func advanceToTarget(t *testing.T, m *Machine) {
	t.Helper()
	ctx := context.Background()
	m.MarkUploaded()
	if err := m.Advance(ctx); err != nil {
		t.Fatalf("advance from upload: %v", err)
	}
	m.SetHeaderRow(model.HeaderPresent)
	if err := m.Advance(ctx); err != nil {
		t.Fatalf("advance from header-row: %v", err)
	}
	m.SetIndicators(model.MissingIndicators{Blanks: true})
	if err := m.Advance(ctx); err != nil {
		t.Fatalf("advance from missing-values: %v", err)
	}
}

func TestAdvanceRequiresUpload(t *testing.T) {
	m := NewMachine(&fakePersister{})
	if m.CanProceed() {
		t.Fatalf("expected upload step to be incomplete")
	}
	if err := m.Advance(context.Background()); err == nil {
		t.Fatalf("expected advance to fail before upload")
	}
	if m.Step() != StepUpload {
		t.Fatalf("expected to stay on upload, got %s", m.Step())
	}
}

func TestAdvanceRequiresHeaderAnswer(t *testing.T) {
	m := NewMachine(&fakePersister{})
	m.MarkUploaded()
	if err := m.Advance(context.Background()); err != nil {
		t.Fatalf("advance from upload: %v", err)
	}
	if err := m.Advance(context.Background()); err == nil {
		t.Fatalf("expected advance to fail with unset header answer")
	}
	if m.Step() != StepHeaderRow {
		t.Fatalf("expected to stay on header-row, got %s", m.Step())
	}
}

func TestAdvancePersistsEachStep(t *testing.T) {
	p := &fakePersister{}
	m := NewMachine(p)
	advanceToTarget(t, m)

	if p.headerCalls != 1 {
		t.Fatalf("expected 1 header call, got %d", p.headerCalls)
	}
	if p.indicatorCalls != 1 {
		t.Fatalf("expected 1 indicator call, got %d", p.indicatorCalls)
	}
	if !p.lastIndicators.Blanks {
		t.Fatalf("expected blanks indicator to be persisted")
	}

	m.SetTarget("income", model.TargetNumerical)
	if err := m.Advance(context.Background()); err != nil {
		t.Fatalf("advance from target: %v", err)
	}
	if m.Step() != StepDashboard {
		t.Fatalf("expected dashboard, got %s", m.Step())
	}
	if p.submitCalls != 1 {
		t.Fatalf("expected 1 submit call, got %d", p.submitCalls)
	}
	if p.lastConfig.TargetFeature != "income" || p.lastConfig.TargetType != model.TargetNumerical {
		t.Fatalf("unexpected submitted config: %+v", p.lastConfig)
	}
}

func TestFailedPersistenceBlocksTransition(t *testing.T) {
	p := &fakePersister{headerErr: errors.New("header row index out of range")}
	m := NewMachine(p)
	m.MarkUploaded()
	if err := m.Advance(context.Background()); err != nil {
		t.Fatalf("advance from upload: %v", err)
	}
	m.SetHeaderRow(model.HeaderPresent)

	err := m.Advance(context.Background())
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if err.Error() != "header row index out of range" {
		t.Fatalf("expected verbatim service message, got %q", err)
	}
	if m.Step() != StepHeaderRow {
		t.Fatalf("expected to stay on header-row, got %s", m.Step())
	}

	// The same transition succeeds once the service recovers.
	p.headerErr = nil
	if err := m.Advance(context.Background()); err != nil {
		t.Fatalf("retry advance: %v", err)
	}
	if m.Step() != StepMissingValues {
		t.Fatalf("expected missing-values, got %s", m.Step())
	}
	if p.headerCalls != 2 {
		t.Fatalf("expected 2 header calls, got %d", p.headerCalls)
	}
}

func TestPersistDoesNotTransition(t *testing.T) {
	p := &fakePersister{}
	m := NewMachine(p)
	m.MarkUploaded()
	if err := m.Advance(context.Background()); err != nil {
		t.Fatalf("advance from upload: %v", err)
	}
	m.SetHeaderRow(model.HeaderPresent)

	if err := m.Persist(context.Background()); err != nil {
		t.Fatalf("persist header-row: %v", err)
	}
	if p.headerCalls != 1 {
		t.Fatalf("expected one header submission, got %d", p.headerCalls)
	}
	if m.Step() != StepHeaderRow {
		t.Fatalf("persist must leave the step unchanged, got %s", m.Step())
	}

	m.Commit()
	if m.Step() != StepMissingValues {
		t.Fatalf("expected commit to move forward, got %s", m.Step())
	}
}

func TestPersistFailureKeepsStep(t *testing.T) {
	p := &fakePersister{headerErr: errors.New("header row index out of range")}
	m := NewMachine(p)
	m.MarkUploaded()
	if err := m.Advance(context.Background()); err != nil {
		t.Fatalf("advance from upload: %v", err)
	}
	m.SetHeaderRow(model.HeaderPresent)

	err := m.Persist(context.Background())
	if err == nil || err.Error() != "header row index out of range" {
		t.Fatalf("expected the service message verbatim, got %v", err)
	}
	if m.Step() != StepHeaderRow {
		t.Fatalf("expected to stay on header-row, got %s", m.Step())
	}
}

func TestCommitStopsAtDashboard(t *testing.T) {
	m := NewMachine(&fakePersister{})
	advanceToTarget(t, m)
	if err := m.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	m.Commit()
	if m.Step() != StepDashboard {
		t.Fatalf("expected dashboard to be terminal, got %s", m.Step())
	}
}

func TestSkipClearsTargetWithoutPersisting(t *testing.T) {
	p := &fakePersister{}
	m := NewMachine(p)
	advanceToTarget(t, m)
	m.SetTarget("income", model.TargetNumerical)

	if err := m.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if m.Step() != StepDashboard {
		t.Fatalf("expected dashboard, got %s", m.Step())
	}
	cfg := m.Config()
	if cfg.TargetFeature != "" || cfg.TargetType != "" {
		t.Fatalf("expected cleared target, got %+v", cfg)
	}
	if p.submitCalls != 0 {
		t.Fatalf("skip must not persist, got %d submit calls", p.submitCalls)
	}
}

func TestSkipOnlyFromTargetStep(t *testing.T) {
	m := NewMachine(&fakePersister{})
	if err := m.Skip(); err == nil {
		t.Fatalf("expected skip to fail outside the target step")
	}
}

func TestRetreatKeepsAnswers(t *testing.T) {
	m := NewMachine(&fakePersister{})
	advanceToTarget(t, m)

	m.Retreat()
	if m.Step() != StepMissingValues {
		t.Fatalf("expected missing-values, got %s", m.Step())
	}
	if !m.Config().Indicators.Blanks {
		t.Fatalf("expected indicators to survive retreat")
	}

	m.Retreat()
	m.Retreat()
	m.Retreat() // already at upload; stays put
	if m.Step() != StepUpload {
		t.Fatalf("expected upload, got %s", m.Step())
	}
	if m.Config().HeaderRow != model.HeaderPresent {
		t.Fatalf("expected header answer to survive retreat")
	}
}

func TestResetClearsEverything(t *testing.T) {
	m := NewMachine(&fakePersister{})
	advanceToTarget(t, m)
	m.Reset()
	if m.Step() != StepUpload {
		t.Fatalf("expected upload after reset, got %s", m.Step())
	}
	if m.Config() != (model.WizardConfig{}) {
		t.Fatalf("expected empty config after reset, got %+v", m.Config())
	}
	if m.CanProceed() {
		t.Fatalf("expected upload flag to be cleared")
	}
}
