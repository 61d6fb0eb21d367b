package flyers

import (
	"fmt"
	"strings"

	"flygen/internal/domain"
)

// palettes maps preset names to a short colour description for the model.
var palettes = map[string]string{
	"brandClassic": "navy, white and warm gold",
	"sunset":       "coral, amber and deep purple",
	"ocean":        "teal, sky blue and sand",
	"forest":       "deep green, moss and cream",
	"monochrome":   "black, white and greys",
	"pastel":       "soft pink, mint and lavender",
	"bold":         "red, black and bright yellow",
}

// textOrder fixes the order text fields appear in the prompt.
var textOrder = []domain.TextField{
	domain.FieldHeadline, domain.FieldSubheadline, domain.FieldBodyText,
	domain.FieldDate, domain.FieldTime, domain.FieldVenueName, domain.FieldAddress,
	domain.FieldPrice, domain.FieldDiscountText, domain.FieldPromoCode, domain.FieldCTAText,
	domain.FieldPhone, domain.FieldEmail, domain.FieldWebsite, domain.FieldSocialHandle,
	domain.FieldAdditionalInfo,
}

// BuildFlyerPrompt converts a project into a natural language instruction for
// a text-to-image model. Only non-empty fields are mentioned.
func BuildFlyerPrompt(p *domain.Project) string {
	if p == nil {
		return ""
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("Design a print-ready %s flyer.", categoryPhrase(p.Category)))

	if p.Visuals.ImageryType == domain.ImageryTextFree {
		lines = append(lines, "Do not render any text; leave clear space for typography to be added later.")
	} else {
		var text []string
		for _, field := range textOrder {
			if v := p.Value(field); v != "" {
				text = append(text, fmt.Sprintf("%s: %q", field, v))
			}
		}
		if len(text) > 0 {
			lines = append(lines, "Render this text exactly as written: "+strings.Join(text, "; ")+".")
		}
		if p.Visuals.TextProminence != "" {
			lines = append(lines, fmt.Sprintf("Typography prominence: %s.", p.Visuals.TextProminence))
		}
	}

	var direction []string
	if style := strings.TrimSpace(p.Visuals.Style); style != "" {
		direction = append(direction, fmt.Sprintf("%s style", style))
	}
	if mood := strings.TrimSpace(p.Visuals.Mood); mood != "" {
		direction = append(direction, fmt.Sprintf("%s mood", mood))
	}
	if len(direction) > 0 {
		lines = append(lines, "Visual direction: "+strings.Join(direction, ", ")+".")
	}

	palette := palettes[p.Colors.Preset]
	if palette == "" {
		palette = strings.TrimSpace(p.Colors.Preset)
	}
	if palette != "" {
		bg := p.Colors.Background
		if bg == "" {
			bg = domain.BackgroundSolid
		}
		lines = append(lines, fmt.Sprintf("Colour palette: %s with a %s background.", palette, bg))
	}

	switch p.Imagery.Source {
	case domain.ImageryUserPhotos:
		lines = append(lines, fmt.Sprintf("Feature the %d supplied photo(s) as the main imagery without distorting them.", len(p.Imagery.Photos)))
	case domain.ImageryAIDescription:
		if desc := strings.TrimSpace(p.Imagery.Description); desc != "" {
			lines = append(lines, fmt.Sprintf("Main imagery: %s.", desc))
		}
	}

	if include := cleanList(p.Visuals.IncludeElements); len(include) > 0 {
		lines = append(lines, "Include: "+strings.Join(include, ", ")+".")
	}
	if avoid := cleanList(p.Visuals.AvoidElements); len(avoid) > 0 {
		lines = append(lines, "Avoid: "+strings.Join(avoid, ", ")+".")
	}
	if p.Logo != nil && len(p.Logo.Data) > 0 {
		lines = append(lines, fmt.Sprintf("Reserve the %s corner for the brand logo.", cornerPhrase(p.Logo.Placement)))
	}
	if p.QR != nil && p.QR.Enabled {
		lines = append(lines, fmt.Sprintf("Reserve a square quiet zone in the %s corner for a QR code.", cornerPhrase(p.QR.Placement)))
	}
	if audience := strings.TrimSpace(p.TargetAudience); audience != "" {
		lines = append(lines, fmt.Sprintf("Target audience: %s.", audience))
	}
	if instr := strings.TrimSpace(p.SpecialInstructions); instr != "" {
		lines = append(lines, fmt.Sprintf("Creative guidance: %s.", instr))
	}
	if notes := strings.TrimSpace(p.AdditionalNotes); notes != "" {
		lines = append(lines, fmt.Sprintf("Additional notes: %s.", notes))
	}
	lines = append(lines, fmt.Sprintf("Aspect ratio %s. Sharp, balanced layout with strong hierarchy.", coalesce(p.Output.AspectRatio, domain.DefaultAspectRatio)))
	return strings.Join(lines, "\n")
}

// ImageSize maps an aspect ratio to an image model size token.
func ImageSize(aspect string) string {
	switch strings.TrimSpace(aspect) {
	case "1:1":
		return "1024x1024"
	case "16:9":
		return "1536x1024"
	default:
		return "1024x1536"
	}
}

func categoryPhrase(c domain.Category) string {
	var b strings.Builder
	for i, r := range string(c) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(' ')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func cornerPhrase(c domain.Corner) string {
	if c == "" {
		c = domain.CornerBottomRight
	}
	return categoryPhrase(domain.Category(c))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func coalesce(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
