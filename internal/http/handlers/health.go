package handlers

import (
	"net/http"

	"flygen/internal/domain"
	"flygen/internal/wizard"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

type categoryResponse struct {
	domain.CategoryInfo
	Fields []domain.FieldDescriptor `json:"fields"`
}

type catalogResponse struct {
	Categories   []categoryResponse                  `json:"categories"`
	Intents      map[domain.Intent][]domain.Category `json:"intents"`
	AspectRatios []string                            `json:"aspect_ratios"`
	Steps        []wizard.Step                       `json:"steps"`
	Templates    []domain.Template                   `json:"templates"`
	GenerateCost int                                 `json:"generate_cost"`
}

// ShowCatalog returns the static configuration the client renders the wizard
// from.
func (a *App) ShowCatalog(w http.ResponseWriter, r *http.Request) {
	resp := catalogResponse{
		Intents:      make(map[domain.Intent][]domain.Category),
		AspectRatios: domain.AspectRatios(),
		Steps:        wizard.Steps(),
		Templates:    domain.Templates(""),
	}
	for _, info := range a.Catalog.Categories() {
		resp.Categories = append(resp.Categories, categoryResponse{CategoryInfo: info, Fields: a.Catalog.Fields(info.Category)})
	}
	for _, intent := range a.Catalog.Intents() {
		cats, _ := a.Catalog.OutputTypes(intent)
		resp.Intents[intent] = cats
	}
	if a.Flyers != nil {
		resp.GenerateCost = a.Flyers.Cost()
	}
	a.json(w, http.StatusOK, resp)
}
