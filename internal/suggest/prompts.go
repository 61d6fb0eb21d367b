package suggest

import (
	"encoding/json"
	"sort"
	"strings"

	"flygen/internal/domain"
)

const systemPrompt = "You are a graphic design assistant for small business flyers. Respond with valid JSON only."

type promptPayload struct {
	Task         string            `json:"task"`
	Category     domain.Category   `json:"category"`
	Locale       string            `json:"locale,omitempty"`
	Text         map[string]string `json:"text,omitempty"`
	Style        string            `json:"style,omitempty"`
	Mood         string            `json:"mood,omitempty"`
	Audience     string            `json:"audience,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	ResponseJSON string            `json:"response_format"`
}

func basePayload(req Request) promptPayload {
	payload := promptPayload{Locale: coalesce(req.Locale, "en")}
	p := req.Project
	if p == nil {
		return payload
	}
	payload.Category = p.Category
	payload.Style = p.Visuals.Style
	payload.Mood = p.Visuals.Mood
	payload.Audience = strings.TrimSpace(p.TargetAudience)
	payload.Notes = strings.TrimSpace(p.AdditionalNotes)
	keys := make([]string, 0, len(p.Text))
	for field := range p.Text {
		keys = append(keys, string(field))
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := p.Value(domain.TextField(k))
		if v == "" {
			continue
		}
		if payload.Text == nil {
			payload.Text = make(map[string]string)
		}
		payload.Text[k] = v
	}
	return payload
}

func buildElementsPrompt(req Request) string {
	payload := basePayload(req)
	payload.Task = "Suggest up to 6 short visual elements to include on this flyer and one sentence of design instructions."
	payload.ResponseJSON = `{"elements":["string"],"instructions":"string"}`
	return encodePayload(payload)
}

func buildSmartExtrasPrompt(req Request) string {
	payload := basePayload(req)
	payload.Task = "List the concrete items mentioned in the flyer text that deserve their own photo, a photo prompt for each, and up to 5 decorative elements."
	payload.ResponseJSON = `{"detectedItems":["string"],"photoCount":0,"photoPrompts":["string"],"decorativeElements":["string"]}`
	return encodePayload(payload)
}

func encodePayload(p promptPayload) string {
	b, err := json.Marshal(p)
	if err != nil {
		return p.Task
	}
	return string(b)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
