package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"flygen/internal/domain"
	"flygen/internal/wizard"

	"github.com/go-chi/chi/v5"
)

type sessionResponse struct {
	SessionID string       `json:"session_id"`
	State     wizard.State `json:"state"`
}

type moveResponse struct {
	Moved bool         `json:"moved"`
	State wizard.State `json:"state"`
}

// withSession runs fn on the caller's session and answers with the
// resulting state.
func (a *App) withSession(w http.ResponseWriter, r *http.Request, fn func(wz *wizard.Wizard) error) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "session_id")
	var state wizard.State
	err := a.Sessions.With(id, userID, func(wz *wizard.Wizard) error {
		if err := fn(wz); err != nil {
			return err
		}
		state = wz.State()
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sessionResponse{SessionID: id, State: state})
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	id, err := a.Sessions.Create(userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var state wizard.State
	_ = a.Sessions.With(id, userID, func(wz *wizard.Wizard) error {
		state = wz.State()
		return nil
	})
	a.json(w, http.StatusCreated, sessionResponse{SessionID: id, State: state})
}

func (a *App) SessionState(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(*wizard.Wizard) error { return nil })
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Sessions.Delete(chi.URLParam(r, "session_id"), userID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type intentRequest struct {
	Intent domain.Intent `json:"intent"`
}

func (a *App) SelectIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.withSession(w, r, func(wz *wizard.Wizard) error { return wz.SelectIntent(req.Intent) })
}

func (a *App) BackToIntent(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(wz *wizard.Wizard) error {
		wz.BackToIntentSelection()
		return nil
	})
}

type categoryRequest struct {
	Category domain.Category `json:"category"`
}

func (a *App) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.withSession(w, r, func(wz *wizard.Wizard) error { return wz.SelectCategory(req.Category) })
}

// move runs a navigation call that reports whether it changed anything.
func (a *App) move(w http.ResponseWriter, r *http.Request, fn func(wz *wizard.Wizard) bool) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var resp moveResponse
	err := a.Sessions.With(chi.URLParam(r, "session_id"), userID, func(wz *wizard.Wizard) error {
		resp.Moved = fn(wz)
		resp.State = wz.State()
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) NextStep(w http.ResponseWriter, r *http.Request) {
	a.move(w, r, (*wizard.Wizard).GoToNextStep)
}

func (a *App) PreviousStep(w http.ResponseWriter, r *http.Request) {
	a.move(w, r, (*wizard.Wizard).GoToPreviousStep)
}

type gotoRequest struct {
	Step wizard.Step `json:"step"`
}

func (a *App) GoToStep(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid step")
		return
	}
	a.withSession(w, r, func(wz *wizard.Wizard) error { return wz.GoToStep(req.Step) })
}

// projectPatch is a partial project update. Nil members are left alone;
// an empty text value clears that field.
type projectPatch struct {
	Text                map[domain.TextField]string `json:"text,omitempty"`
	Visuals             *domain.VisualConfig        `json:"visuals,omitempty"`
	Colors              *domain.ColorConfig         `json:"colors,omitempty"`
	Output              *domain.OutputConfig        `json:"output,omitempty"`
	Logo                *domain.LogoAttachment      `json:"logo,omitempty"`
	RemoveLogo          bool                        `json:"remove_logo,omitempty"`
	Imagery             *domain.ImageryConfig       `json:"imagery,omitempty"`
	QR                  *domain.QRSettings          `json:"qr,omitempty"`
	TargetAudience      *string                     `json:"target_audience,omitempty"`
	SpecialInstructions *string                     `json:"special_instructions,omitempty"`
	AdditionalNotes     *string                     `json:"additional_notes,omitempty"`
}

func (pp projectPatch) apply(catalog domain.Catalog, p *domain.Project) error {
	for field, value := range pp.Text {
		if _, ok := catalog.Descriptor(p.Category, field); !ok {
			return fmt.Errorf("%w: field %q not used by %s", domain.ErrInvalidProject, field, p.Category)
		}
		p.Text[field] = value
	}
	if pp.Visuals != nil {
		v := *pp.Visuals
		if v.TextProminence == "" {
			v.TextProminence = p.Visuals.TextProminence
		}
		if v.ImageryType == "" {
			v.ImageryType = p.Visuals.ImageryType
		}
		if !v.TextProminence.Valid() {
			return fmt.Errorf("%w: text prominence %q", domain.ErrInvalidProject, v.TextProminence)
		}
		if !v.ImageryType.Valid() {
			return fmt.Errorf("%w: imagery type %q", domain.ErrInvalidProject, v.ImageryType)
		}
		p.Visuals = v
	}
	if pp.Colors != nil {
		c := *pp.Colors
		if c.Background == "" {
			c.Background = p.Colors.Background
		}
		if !c.Background.Valid() {
			return fmt.Errorf("%w: background %q", domain.ErrInvalidProject, c.Background)
		}
		p.Colors = c
	}
	if pp.Output != nil {
		if !domain.IsAllowedAspectRatio(pp.Output.AspectRatio) {
			return fmt.Errorf("%w: aspect ratio %q", domain.ErrInvalidProject, pp.Output.AspectRatio)
		}
		p.Output = *pp.Output
	}
	switch {
	case pp.RemoveLogo:
		p.Logo = nil
	case pp.Logo != nil:
		logo := *pp.Logo
		if err := checkPlacement("logo", &logo.Placement); err != nil {
			return err
		}
		p.Logo = &logo
	}
	if pp.Imagery != nil {
		if !pp.Imagery.Source.Valid() {
			return fmt.Errorf("%w: imagery source %q", domain.ErrInvalidProject, pp.Imagery.Source)
		}
		p.Imagery = *pp.Imagery
	}
	if pp.QR != nil {
		qr := *pp.QR
		if qr.Enabled && !qr.Type.Valid() {
			return fmt.Errorf("%w: qr type %q", domain.ErrInvalidProject, qr.Type)
		}
		if err := checkPlacement("qr", &qr.Placement); err != nil {
			return err
		}
		p.QR = &qr
	}
	if pp.TargetAudience != nil {
		p.TargetAudience = strings.TrimSpace(*pp.TargetAudience)
	}
	if pp.SpecialInstructions != nil {
		p.SpecialInstructions = *pp.SpecialInstructions
	}
	if pp.AdditionalNotes != nil {
		p.AdditionalNotes = *pp.AdditionalNotes
	}
	return nil
}

// checkPlacement defaults an empty corner and rejects unknown ones.
func checkPlacement(what string, c *domain.Corner) error {
	if *c == "" {
		*c = domain.DefaultCorner
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %s placement %q", domain.ErrInvalidProject, what, *c)
	}
	return nil
}

func (a *App) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch projectPatch
	if err := a.decode(r, &patch); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.withSession(w, r, func(wz *wizard.Wizard) error {
		return wz.UpdateProject(func(p *domain.Project) error { return patch.apply(a.Catalog, p) })
	})
}

type loadRequest struct {
	Source     wizard.LoadSource `json:"source"`
	TemplateID string            `json:"template_id,omitempty"`
}

func (a *App) LoadProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req loadRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	project, step, err := a.resolveLoad(r.Context(), userID, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.withSession(w, r, func(wz *wizard.Wizard) error { return wz.LoadProject(project, req.Source, step) })
}

func (a *App) resolveLoad(ctx context.Context, userID string, req loadRequest) (*domain.Project, wizard.Step, error) {
	switch req.Source {
	case wizard.SourceDraft:
		d, err := a.Drafts.Load(ctx, userID)
		if err != nil {
			return nil, 0, err
		}
		return d.Project, d.Step, nil
	case wizard.SourceTemplate, wizard.SourceSample:
		tpl, ok := domain.LookupTemplate(req.TemplateID)
		if !ok || string(tpl.Kind) != string(req.Source) {
			return nil, 0, fmt.Errorf("%s %q: %w", req.Source, req.TemplateID, domain.ErrNotFound)
		}
		return tpl.Project(a.Catalog), wizard.StepTextContent, nil
	default:
		return nil, 0, fmt.Errorf("%w: %q", wizard.ErrUnknownLoadSource, req.Source)
	}
}

type cancelResponse struct {
	DecisionRequired bool         `json:"decision_required"`
	State            wizard.State `json:"state"`
}

func (a *App) RequestCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var resp cancelResponse
	err := a.Sessions.With(chi.URLParam(r, "session_id"), userID, func(wz *wizard.Wizard) error {
		resp.DecisionRequired = wz.RequestCancel()
		resp.State = wz.State()
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) KeepEditing(w http.ResponseWriter, r *http.Request) {
	a.withSession(w, r, func(wz *wizard.Wizard) error {
		wz.KeepEditing()
		return nil
	})
}

type confirmCancelRequest struct {
	Decision wizard.CancelDecision `json:"decision"`
}

type confirmCancelResponse struct {
	DraftSaved bool         `json:"draft_saved"`
	State      wizard.State `json:"state"`
}

// ConfirmCancel resolves the pending cancellation. A saveDraft decision is
// written before the wizard resets, so a failed save leaves the session
// untouched.
func (a *App) ConfirmCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req confirmCancelRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	var resp confirmCancelResponse
	err := a.Sessions.With(chi.URLParam(r, "session_id"), userID, func(wz *wizard.Wizard) error {
		saved, err := wz.ConfirmCancel(req.Decision, func(snap *wizard.DraftSnapshot) error {
			_, err := a.Drafts.Save(r.Context(), userID, snap.Project, snap.Step)
			return err
		})
		if err != nil {
			return err
		}
		resp.DraftSaved = saved
		resp.State = wz.State()
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, resp)
}
