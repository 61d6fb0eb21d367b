package handlers

import (
	"net/http"
	"time"

	"flygen/internal/domain"
	"flygen/internal/wizard"
)

type draftSummary struct {
	Category domain.Category `json:"category"`
	Headline string          `json:"headline"`
	Step     wizard.Step     `json:"step"`
	SavedAt  time.Time       `json:"saved_at"`
}

// Draft describes the saved draft without its attachments. Resuming goes
// through the wizard load endpoint.
func (a *App) Draft(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	d, err := a.Drafts.Load(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, draftSummary{
		Category: d.Project.Category,
		Headline: d.Project.Value(domain.FieldHeadline),
		Step:     d.Step,
		SavedAt:  d.SavedAt,
	})
}

func (a *App) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Drafts.Delete(r.Context(), userID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
