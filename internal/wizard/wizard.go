// Package wizard implements the multi-step flyer creation flow. A Wizard is
// not safe for concurrent use; Sessions serializes access per session.
package wizard

import (
	"errors"
	"fmt"

	"flygen/internal/domain"
)

var (
	ErrInvalidStep       = errors.New("wizard: invalid step")
	ErrUnknownIntent     = errors.New("wizard: unknown intent")
	ErrNoProject         = errors.New("wizard: no project")
	ErrNotAtCategoryStep = errors.New("wizard: not at category step")
	ErrNoPendingCancel   = errors.New("wizard: no pending cancellation")
	ErrInvalidDecision   = errors.New("wizard: invalid cancel decision")
	ErrCategoryImmutable = errors.New("wizard: project category cannot change")
	ErrUnknownLoadSource = errors.New("wizard: unknown load source")
	ErrSessionNotFound   = errors.New("wizard: session not found")
	ErrTooManySessions   = errors.New("wizard: too many sessions")
)

// LoadSource tells LoadProject where a project came from.
type LoadSource string

const (
	SourceTemplate LoadSource = "template"
	SourceSample   LoadSource = "sample"
	SourceDraft    LoadSource = "draft"
)

// CancelDecision is the explicit outcome of a cancellation prompt.
type CancelDecision string

const (
	DecisionSaveDraft CancelDecision = "saveDraft"
	DecisionDiscard   CancelDecision = "discard"
)

// DraftSnapshot is the project and step handed over on a saveDraft decision.
type DraftSnapshot struct {
	Project *domain.Project
	Step    Step
}

// Wizard tracks the current step and the project being edited.
type Wizard struct {
	catalog       domain.Catalog
	step          Step
	phase         CategoryPhase
	intent        domain.Intent
	project       *domain.Project
	cancelPending bool
}

func New(catalog domain.Catalog) *Wizard {
	return &Wizard{catalog: catalog}
}

func (w *Wizard) Step() Step               { return w.step }
func (w *Wizard) Phase() CategoryPhase     { return w.phase }
func (w *Wizard) Intent() domain.Intent    { return w.intent }
func (w *Wizard) Project() *domain.Project { return w.project }
func (w *Wizard) CancelPending() bool      { return w.cancelPending }
func (w *Wizard) Catalog() domain.Catalog  { return w.catalog }
func (w *Wizard) HasProject() bool         { return w.project != nil }
func (w *Wizard) MissingFields() []domain.TextField {
	return w.project.MissingRequired(w.catalog)
}

// SelectIntent records the intent and moves the category step into its
// output-type phase.
func (w *Wizard) SelectIntent(intent domain.Intent) error {
	if w.step != StepCategory {
		return ErrNotAtCategoryStep
	}
	if _, ok := w.catalog.OutputTypes(intent); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIntent, intent)
	}
	w.intent = intent
	w.phase = PhaseOutputType
	return nil
}

// BackToIntentSelection unwinds the output-type phase. It reports whether
// anything changed.
func (w *Wizard) BackToIntentSelection() bool {
	if w.step != StepCategory || w.phase != PhaseOutputType {
		return false
	}
	w.phase = PhaseIntent
	w.intent = ""
	return true
}

// OutputTypes lists the categories offered for the selected intent, or all
// categories when no intent is selected.
func (w *Wizard) OutputTypes() []domain.Category {
	if cats, ok := w.catalog.OutputTypes(w.intent); ok {
		return cats
	}
	infos := w.catalog.Categories()
	out := make([]domain.Category, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Category)
	}
	return out
}

// SelectCategory starts a fresh project unless the same category is already
// being edited.
func (w *Wizard) SelectCategory(category domain.Category) error {
	if w.step != StepCategory {
		return ErrNotAtCategoryStep
	}
	if !w.catalog.Has(category) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if w.project == nil || w.project.Category != category {
		w.project = domain.NewProject(category, w.catalog)
	}
	w.phase = PhaseOutputType
	return nil
}

// CanGoNext evaluates the validity predicate of the current step.
func (w *Wizard) CanGoNext() bool {
	if w.project == nil {
		return false
	}
	switch w.step {
	case StepTextContent:
		return w.project.ValidForGeneration(w.catalog)
	default:
		return true
	}
}

// GoToNextStep advances one step when the current step is valid. It is a
// no-op at review.
func (w *Wizard) GoToNextStep() bool {
	if w.step >= StepReview || !w.CanGoNext() {
		return false
	}
	w.step++
	return true
}

// GoToPreviousStep moves back one level: the output-type phase first, then
// the previous top-level step.
func (w *Wizard) GoToPreviousStep() bool {
	if w.step == StepCategory {
		return w.BackToIntentSelection()
	}
	w.step--
	return true
}

// GoToStep jumps to step without validation. Steps past category need a
// project to edit.
func (w *Wizard) GoToStep(step Step) error {
	if !step.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
	}
	if step != StepCategory && w.project == nil {
		return ErrNoProject
	}
	w.step = step
	return nil
}

// LoadProject replaces the working project. Drafts resume at their saved
// step; templates and samples open at text content.
func (w *Wizard) LoadProject(p *domain.Project, source LoadSource, step Step) error {
	if p == nil {
		return ErrNoProject
	}
	if !w.catalog.Has(p.Category) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, p.Category)
	}
	switch source {
	case SourceDraft:
		if !step.Valid() {
			step = StepTextContent
		}
	case SourceTemplate, SourceSample:
		step = StepTextContent
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLoadSource, source)
	}
	if p.Text == nil {
		p.Text = make(map[domain.TextField]string)
	}
	w.project = p
	w.step = step
	w.phase = PhaseOutputType
	w.intent = ""
	w.cancelPending = false
	return nil
}

// UpdateProject applies fn to the working project. The category is fixed
// for the lifetime of a project.
func (w *Wizard) UpdateProject(fn func(p *domain.Project) error) error {
	if w.project == nil {
		return ErrNoProject
	}
	next := w.project.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if next.Category != w.project.Category {
		return ErrCategoryImmutable
	}
	next.Touch()
	w.project = next
	return nil
}

// RequestCancel reports whether leaving needs a save-or-discard decision.
// With nothing to lose the wizard resets immediately.
func (w *Wizard) RequestCancel() bool {
	if w.project == nil {
		w.Reset()
		return false
	}
	w.cancelPending = true
	return true
}

// KeepEditing withdraws a pending cancellation.
func (w *Wizard) KeepEditing() {
	w.cancelPending = false
}

// ConfirmCancel resolves a pending cancellation. For saveDraft with a
// project, persist receives a snapshot before the wizard resets; a persist
// error leaves the wizard untouched. It reports whether a snapshot was
// persisted.
func (w *Wizard) ConfirmCancel(decision CancelDecision, persist func(*DraftSnapshot) error) (bool, error) {
	if !w.cancelPending {
		return false, ErrNoPendingCancel
	}
	saved := false
	switch decision {
	case DecisionSaveDraft:
		if w.project != nil && persist != nil {
			if err := persist(&DraftSnapshot{Project: w.project.Clone(), Step: w.step}); err != nil {
				return false, err
			}
			saved = true
		}
	case DecisionDiscard:
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	w.Reset()
	return saved, nil
}

// Reset returns the wizard to its initial state.
func (w *Wizard) Reset() {
	w.step = StepCategory
	w.phase = PhaseIntent
	w.intent = ""
	w.project = nil
	w.cancelPending = false
}

// State is a serializable view of the wizard.
type State struct {
	Step          Step               `json:"step"`
	Phase         CategoryPhase      `json:"phase"`
	Intent        domain.Intent      `json:"intent,omitempty"`
	CanGoNext     bool               `json:"can_go_next"`
	MissingFields []domain.TextField `json:"missing_fields,omitempty"`
	CancelPending bool               `json:"cancel_pending"`
	Project       *domain.Project    `json:"project,omitempty"`
}

func (w *Wizard) State() State {
	return State{
		Step:          w.step,
		Phase:         w.phase,
		Intent:        w.intent,
		CanGoNext:     w.CanGoNext(),
		MissingFields: w.MissingFields(),
		CancelPending: w.cancelPending,
		Project:       w.project.Clone(),
	}
}
