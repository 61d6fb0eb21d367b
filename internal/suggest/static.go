package suggest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"flygen/internal/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const staticProviderName = "static"

var itemSeparators = regexp.MustCompile(`[,;\n•]+|\s+and\s+|\s*&\s*`)

var categoryElements = map[domain.Category][]string{
	domain.CategoryEvent:            {"stage lights", "crowd silhouettes", "confetti"},
	domain.CategorySalePromo:        {"price tags", "shopping bags", "bold percentage badge"},
	domain.CategoryRestaurantFood:   {"plated dishes", "fresh ingredients", "steam swirls"},
	domain.CategoryRealEstate:       {"house exterior", "key icon", "floor plan outline"},
	domain.CategoryJobPosting:       {"team at work", "briefcase icon", "handshake"},
	domain.CategoryGrandOpening:     {"ribbon cutting", "balloons", "storefront"},
	domain.CategoryFitnessWellness:  {"dumbbells", "yoga mat", "water bottle"},
	domain.CategoryPartyCelebration: {"balloons", "streamers", "party hats"},
	domain.CategoryClassWorkshop:    {"notebook", "whiteboard", "lightbulb"},
	domain.CategoryServiceBusiness:  {"tools", "checkmark badge", "friendly staff"},
	domain.CategoryAnnouncement:     {"megaphone", "spotlight", "banner"},
}

// StaticSuggester produces deterministic suggestions without a network call.
// It is used when no model API key is configured.
type StaticSuggester struct{}

func NewStaticSuggester() *StaticSuggester {
	return &StaticSuggester{}
}

func (s *StaticSuggester) Elements(ctx context.Context, req Request) (*ElementSuggestions, error) {
	if req.Project == nil {
		return nil, fmt.Errorf("%w: no project", ErrNoSuggestions)
	}
	c := cases.Title(language.Und)
	elements := categoryElements[req.Project.Category]
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: unknown category", ErrNoSuggestions)
	}
	style := coalesce(req.Project.Visuals.Style, domain.DefaultStyle)
	mood := coalesce(req.Project.Visuals.Mood, domain.DefaultMood)
	return &ElementSuggestions{
		Elements:     append([]string(nil), elements...),
		Instructions: fmt.Sprintf("%s layout with a %s tone; keep %s readable.", c.String(style), mood, coalesce(req.Project.Value(domain.FieldHeadline), "the headline")),
		Provider:     staticProviderName,
	}, nil
}

func (s *StaticSuggester) SmartExtras(ctx context.Context, req Request) (*SmartExtras, error) {
	if req.Project == nil {
		return nil, fmt.Errorf("%w: no project", ErrNoSuggestions)
	}
	items := DetectItems(req.Project.Value(domain.FieldBodyText))
	out := &SmartExtras{
		DetectedItems:      items,
		DecorativeElements: append([]string(nil), categoryElements[req.Project.Category]...),
		Provider:           staticProviderName,
	}
	for _, item := range items {
		out.PhotoPrompts = append(out.PhotoPrompts, fmt.Sprintf("Close-up photo of %s on a clean background", item))
	}
	out.normalize()
	if len(out.DetectedItems) == 0 && len(out.DecorativeElements) == 0 {
		return nil, fmt.Errorf("%w: nothing detected", ErrNoSuggestions)
	}
	return out, nil
}

// DetectItems splits free text into a de-duplicated item list.
func DetectItems(text string) []string {
	parts := itemSeparators.Split(text, -1)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), ".!-:")
		if part == "" || len(part) > 60 {
			continue
		}
		items = append(items, part)
	}
	return normalizeList(items)
}

var _ Suggester = (*StaticSuggester)(nil)
