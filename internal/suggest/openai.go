package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openAIProviderName = "openai"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultTimeout     = 15 * time.Second
	defaultMaxTokens   = 600
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	Timeout      time.Duration
	HTTPClient   *http.Client
	// OnFailure is called with a short reason for every failed call.
	OnFailure func(reason string, err error)
}

// OpenAISuggester calls the chat completions API once per request. Failures
// are returned to the caller; there is no retry and no silent fallback.
type OpenAISuggester struct {
	client    openai.Client
	model     string
	timeout   time.Duration
	onFailure func(reason string, err error)
}

func NewOpenAISuggester(opts OpenAIOptions) (*OpenAISuggester, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("openai api key is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if org := strings.TrimSpace(opts.Organization); org != "" {
		reqOpts = append(reqOpts, option.WithOrganization(org))
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	reqOpts = append(reqOpts, option.WithHTTPClient(httpClient))
	return &OpenAISuggester{
		client:    openai.NewClient(reqOpts...),
		model:     coalesce(opts.Model, defaultOpenAIModel),
		timeout:   timeout,
		onFailure: opts.OnFailure,
	}, nil
}

func (o *OpenAISuggester) Elements(ctx context.Context, req Request) (*ElementSuggestions, error) {
	text, err := o.complete(ctx, buildElementsPrompt(req), 0.7)
	if err != nil {
		return nil, err
	}
	out, err := ParseElementSuggestions(text)
	if err != nil {
		o.fail("parse_elements", err)
		return nil, err
	}
	out.Provider = openAIProviderName
	return out, nil
}

func (o *OpenAISuggester) SmartExtras(ctx context.Context, req Request) (*SmartExtras, error) {
	text, err := o.complete(ctx, buildSmartExtrasPrompt(req), 0.4)
	if err != nil {
		return nil, err
	}
	out, err := ParseSmartExtras(text)
	if err != nil {
		o.fail("parse_extras", err)
		return nil, err
	}
	out.Provider = openAIProviderName
	return out, nil
}

func (o *OpenAISuggester) complete(ctx context.Context, user string, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(defaultMaxTokens),
	})
	if err != nil {
		reason := "http_request"
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			reason = fmt.Sprintf("http_%d", apiErr.StatusCode)
		}
		o.fail(reason, err)
		return "", fmt.Errorf("%w: %s: %v", ErrProviderFailure, reason, err)
	}
	if len(resp.Choices) == 0 {
		o.fail("empty_choices", nil)
		return "", fmt.Errorf("%w: no choices", ErrNoSuggestions)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		o.fail("empty_response", nil)
		return "", fmt.Errorf("%w: empty response", ErrNoSuggestions)
	}
	return text, nil
}

func (o *OpenAISuggester) fail(reason string, err error) {
	if o.onFailure != nil {
		o.onFailure(reason, err)
	}
}

var _ Suggester = (*OpenAISuggester)(nil)
