package domain

// TemplateKind separates starter templates from finished samples.
type TemplateKind string

const (
	KindTemplate TemplateKind = "template"
	KindSample   TemplateKind = "sample"
)

// Template is a prefilled starting point for a new project.
type Template struct {
	ID          string               `json:"id"`
	Kind        TemplateKind         `json:"kind"`
	Name        string               `json:"name"`
	Category    Category             `json:"category"`
	Text        map[TextField]string `json:"text"`
	Style       string               `json:"style"`
	Mood        string               `json:"mood"`
	Preset      string               `json:"preset"`
	Background  BackgroundStyle      `json:"background"`
	AspectRatio string               `json:"aspect_ratio"`
}

var builtinTemplates = []Template{
	{
		ID:       "tpl-summer-festival",
		Kind:     KindTemplate,
		Name:     "Summer Festival",
		Category: CategoryEvent,
		Text: map[TextField]string{
			FieldHeadline: "Summer Music Festival",
			FieldCTAText:  "Get Tickets",
		},
		Style: "bold", Mood: "energetic", Preset: "sunset", Background: BackgroundGradient, AspectRatio: "4:5",
	},
	{
		ID:       "tpl-flash-sale",
		Kind:     KindTemplate,
		Name:     "Flash Sale",
		Category: CategorySalePromo,
		Text: map[TextField]string{
			FieldHeadline:     "Flash Sale",
			FieldDiscountText: "Up to 50% off",
		},
		Style: "modern", Mood: "urgent", Preset: "electric", Background: BackgroundSolid, AspectRatio: "1:1",
	},
	{
		ID:       "tpl-now-hiring",
		Kind:     KindTemplate,
		Name:     "Now Hiring",
		Category: CategoryJobPosting,
		Text: map[TextField]string{
			FieldHeadline: "We're Hiring",
			FieldCTAText:  "Apply Today",
		},
		Style: "minimal", Mood: "professional", Preset: "brandClassic", Background: BackgroundLight, AspectRatio: "4:5",
	},
	{
		ID:       "sample-bistro-opening",
		Kind:     KindSample,
		Name:     "Bistro Grand Opening",
		Category: CategoryGrandOpening,
		Text: map[TextField]string{
			FieldHeadline:     "Grand Opening",
			FieldSubheadline:  "Luna Bistro",
			FieldDate:         "Friday, May 3",
			FieldAddress:      "48 Harbor Street",
			FieldBodyText:     "Free tasting menu for the first 100 guests",
			FieldCTAText:      "Reserve a table",
			FieldSocialHandle: "@lunabistro",
		},
		Style: "elegant", Mood: "warm", Preset: "earthy", Background: BackgroundTextured, AspectRatio: "4:5",
	},
	{
		ID:       "sample-yoga-class",
		Kind:     KindSample,
		Name:     "Sunrise Yoga",
		Category: CategoryFitnessWellness,
		Text: map[TextField]string{
			FieldHeadline: "Sunrise Yoga",
			FieldBodyText: "All levels welcome. Mats provided.",
			FieldDate:     "Every Saturday",
			FieldTime:     "7:00 AM",
			FieldPrice:    "$12 drop-in",
			FieldWebsite:  "sunriseyoga.example",
		},
		Style: "minimal", Mood: "calm", Preset: "pastel", Background: BackgroundLight, AspectRatio: "9:16",
	},
}

// Templates lists the built-in templates and samples of kind, or all of
// them when kind is empty.
func Templates(kind TemplateKind) []Template {
	out := make([]Template, 0, len(builtinTemplates))
	for _, t := range builtinTemplates {
		if kind == "" || t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// LookupTemplate finds a built-in template by id.
func LookupTemplate(id string) (Template, bool) {
	for _, t := range builtinTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Project instantiates a fresh project from the template.
func (t Template) Project(catalog Catalog) *Project {
	p := NewProject(t.Category, catalog)
	for field, value := range t.Text {
		p.Text[field] = value
	}
	if t.Style != "" {
		p.Visuals.Style = t.Style
	}
	if t.Mood != "" {
		p.Visuals.Mood = t.Mood
	}
	if t.Preset != "" {
		p.Colors.Preset = t.Preset
	}
	if t.Background != "" {
		p.Colors.Background = t.Background
	}
	if IsAllowedAspectRatio(t.AspectRatio) {
		p.Output.AspectRatio = t.AspectRatio
	}
	return p
}
