package suggest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"flygen/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func chatCompletion(content string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(content)
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"` + escaped + `"}}]}`
}

func restaurantProject() *domain.Project {
	p := domain.NewProject(domain.CategoryRestaurantFood, domain.DefaultCatalog())
	p.SetText(domain.FieldHeadline, "Luigi's Trattoria")
	p.SetText(domain.FieldBodyText, "Margherita pizza, Caesar salad and Tiramisu")
	return p
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line", in: "```json {\"a\":1}```", want: `{"a":1}`},
		{name: "padding", in: "  \n```JSON\n{\"a\":1}\n```  ", want: `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := StripCodeFence(tc.in)
			if got != tc.want {
				t.Fatalf("StripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if again := StripCodeFence(got); again != got {
				t.Fatalf("StripCodeFence not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestParseFencedMatchesBare(t *testing.T) {
	bare := `{"elements":["balloons","confetti"],"instructions":"Keep it bright."}`
	fenced := "```json\n" + bare + "\n```"

	a, err := ParseElementSuggestions(bare)
	require.NoError(t, err)
	b, err := ParseElementSuggestions(fenced)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"balloons", "confetti"}, a.Elements)
}

func TestParseElementSuggestionsErrors(t *testing.T) {
	_, err := ParseElementSuggestions(`{"foo":"bar"}`)
	assert.ErrorIs(t, err, ErrNoSuggestions)

	_, err = ParseElementSuggestions(`{"elements":[],"instructions":"  "}`)
	assert.ErrorIs(t, err, ErrNoSuggestions)

	_, err = ParseElementSuggestions(`{"elements":["a",}`)
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)

	_, err = ParseElementSuggestions("")
	assert.ErrorIs(t, err, ErrNoSuggestions)
}

func TestParseSmartExtrasPhotoCount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		count    int
		multiple bool
	}{
		{name: "defaults to detected", raw: `{"detectedItems":["pizza","salad","tiramisu"]}`, count: 3, multiple: true},
		{name: "items override model count", raw: `{"detectedItems":["pizza","salad","tiramisu"],"photoCount":1}`, count: 3, multiple: true},
		{name: "model count without items", raw: `{"decorativeElements":["ribbons"],"photoCount":2}`, count: 2, multiple: true},
		{name: "single item", raw: `{"detectedItems":["pizza"]}`, count: 1, multiple: false},
		{name: "model says false", raw: `{"detectedItems":["a","b"],"photoCount":2,"allowsMultiplePhotos":false}`, count: 2, multiple: true},
		{name: "decor only", raw: `{"decorativeElements":["ribbons"]}`, count: 1, multiple: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSmartExtras(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.count, got.PhotoCount)
			assert.Equal(t, tc.multiple, got.AllowsMultiplePhotos)
		})
	}
}

func TestParseSmartExtrasMissingFields(t *testing.T) {
	_, err := ParseSmartExtras(`{"elements":["x"]}`)
	assert.ErrorIs(t, err, ErrNoSuggestions)
}

func TestOpenAISuggesterSmartExtras(t *testing.T) {
	var gotPath, gotAuth string
	s, err := NewOpenAISuggester(OpenAIOptions{
		APIKey:  "test-key",
		BaseURL: "http://llm.test/v1/",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			content := "```json\n{\"detectedItems\":[\"Margherita pizza\",\"Caesar salad\",\"Tiramisu\"],\"photoPrompts\":[\"pizza\",\"salad\",\"dessert\"]}\n```"
			return jsonResponse(http.StatusOK, chatCompletion(content)), nil
		})},
	})
	require.NoError(t, err)

	got, err := s.SmartExtras(context.Background(), Request{Project: restaurantProject()})
	require.NoError(t, err)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Len(t, got.DetectedItems, 3)
	assert.Equal(t, 3, got.PhotoCount)
	assert.True(t, got.AllowsMultiplePhotos)
	assert.Equal(t, openAIProviderName, got.Provider)
}

func TestOpenAISuggesterProviderFailure(t *testing.T) {
	var reasons []string
	calls := 0
	s, err := NewOpenAISuggester(OpenAIOptions{
		APIKey:  "test-key",
		BaseURL: "http://llm.test/v1/",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return jsonResponse(http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`), nil
		})},
		OnFailure: func(reason string, err error) { reasons = append(reasons, reason) },
	})
	require.NoError(t, err)

	_, err = s.Elements(context.Background(), Request{Project: restaurantProject()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Equal(t, 1, calls, "no automatic retry")
	assert.Equal(t, []string{"http_500"}, reasons)
	assert.Equal(t, FailureMessage, UserMessage(err))
}

func TestOpenAISuggesterTransportError(t *testing.T) {
	s, err := NewOpenAISuggester(OpenAIOptions{
		APIKey:  "test-key",
		BaseURL: "http://llm.test/v1/",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: refused")
		})},
	})
	require.NoError(t, err)

	_, err = s.Elements(context.Background(), Request{Project: restaurantProject()})
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestNewOpenAISuggesterRequiresKey(t *testing.T) {
	_, err := NewOpenAISuggester(OpenAIOptions{APIKey: "  "})
	assert.Error(t, err)
}

func TestStaticSuggesterDetectsItems(t *testing.T) {
	s := NewStaticSuggester()
	got, err := s.SmartExtras(context.Background(), Request{Project: restaurantProject()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Margherita pizza", "Caesar salad", "Tiramisu"}, got.DetectedItems)
	assert.Equal(t, 3, got.PhotoCount)
	assert.True(t, got.AllowsMultiplePhotos)
	assert.Len(t, got.PhotoPrompts, 3)

	el, err := s.Elements(context.Background(), Request{Project: restaurantProject()})
	require.NoError(t, err)
	assert.NotEmpty(t, el.Elements)
	assert.Contains(t, el.Instructions, "Modern")
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, FailureMessage, UserMessage(ErrNoSuggestions))
}
