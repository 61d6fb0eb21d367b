package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const maxPhotoCount = 10

// StripCodeFence removes a surrounding markdown code fence (```json ... ```)
// from a model response. Text without a fence is returned trimmed, so the
// function is idempotent.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		lang := strings.TrimSpace(trimmed[:nl])
		if lang == "" || isFenceLanguage(lang) {
			trimmed = trimmed[nl+1:]
		}
	} else {
		trimmed = strings.TrimPrefix(trimmed, "json")
		trimmed = strings.TrimPrefix(trimmed, "JSON")
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func isFenceLanguage(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// extractJSONFragment strips fences and any prose around the outermost JSON
// object.
func extractJSONFragment(raw string) string {
	text := StripCodeFence(raw)
	if text == "" {
		return ""
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func decodeObject(raw string, required []string, out any) error {
	frag := extractJSONFragment(raw)
	if frag == "" {
		return fmt.Errorf("%w: empty response", ErrNoSuggestions)
	}
	if !gjson.Valid(frag) || !gjson.Parse(frag).IsObject() {
		return fmt.Errorf("%w: malformed json", ErrProviderFailure)
	}
	found := false
	for _, field := range required {
		if gjson.Get(frag, field).Exists() {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: missing %s", ErrNoSuggestions, strings.Join(required, "/"))
	}
	if err := json.Unmarshal([]byte(frag), out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrProviderFailure, err)
	}
	return nil
}

// ParseElementSuggestions decodes a free-form suggestion response.
func ParseElementSuggestions(raw string) (*ElementSuggestions, error) {
	var out ElementSuggestions
	if err := decodeObject(raw, []string{"elements", "instructions"}, &out); err != nil {
		return nil, err
	}
	out.Elements = normalizeList(out.Elements)
	out.Instructions = strings.TrimSpace(out.Instructions)
	if len(out.Elements) == 0 && out.Instructions == "" {
		return nil, fmt.Errorf("%w: empty elements", ErrNoSuggestions)
	}
	return &out, nil
}

// ParseSmartExtras decodes a smart extras response and normalizes photo
// counts. Detected items fix the count; the model's count applies only when
// nothing was detected. Multiple photos are allowed whenever the count
// exceeds one.
func ParseSmartExtras(raw string) (*SmartExtras, error) {
	var out SmartExtras
	if err := decodeObject(raw, []string{"detectedItems", "photoPrompts", "decorativeElements"}, &out); err != nil {
		return nil, err
	}
	out.normalize()
	if len(out.DetectedItems) == 0 && len(out.PhotoPrompts) == 0 && len(out.DecorativeElements) == 0 {
		return nil, fmt.Errorf("%w: empty extras", ErrNoSuggestions)
	}
	return &out, nil
}

func (s *SmartExtras) normalize() {
	s.DetectedItems = normalizeList(s.DetectedItems)
	s.PhotoPrompts = normalizeList(s.PhotoPrompts)
	s.DecorativeElements = normalizeList(s.DecorativeElements)
	if len(s.DetectedItems) > 0 {
		s.PhotoCount = len(s.DetectedItems)
	}
	if s.PhotoCount <= 0 {
		s.PhotoCount = 1
	}
	if s.PhotoCount > maxPhotoCount {
		s.PhotoCount = maxPhotoCount
	}
	s.AllowsMultiplePhotos = s.PhotoCount > 1
}

func normalizeList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
