package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Generate renders the session's current project into a saved flyer.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	project, err := a.projectSnapshot(userID, chi.URLParam(r, "session_id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Flyers.Generate(r.Context(), userID, project)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, res)
}

func (a *App) ListFlyers(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := a.Flyers.List(r.Context(), userID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		a.json(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) FlyerImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	flyer, data, err := a.Flyers.Image(r.Context(), userID, chi.URLParam(r, "flyer_id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", flyer.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *App) DeleteFlyer(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Flyers.Delete(r.Context(), userID, chi.URLParam(r, "flyer_id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ExportFlyers(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	archive, count, err := a.Flyers.Export(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	name := fmt.Sprintf("flyers-%s.zip", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Flyer-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
