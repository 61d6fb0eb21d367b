package flyers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"flygen/internal/domain"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// GenerateRequest is the normalized input handed to an image generator.
type GenerateRequest struct {
	Prompt      string
	AspectRatio string
	RequestID   string
}

type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*domain.GeneratedImage, error)
}

const (
	openAIImageProvider = "openai"
	defaultImageModel   = "gpt-image-1"
	maxImageBytes       = 20 << 20
)

type OpenAIImageOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
}

// OpenAIImageGenerator renders flyers through the images API.
type OpenAIImageGenerator struct {
	client openai.Client
	http   *http.Client
	model  string
}

func NewOpenAIImageGenerator(opts OpenAIImageOptions) (*OpenAIImageGenerator, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("openai api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithHTTPClient(httpClient),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if org := strings.TrimSpace(opts.Organization); org != "" {
		reqOpts = append(reqOpts, option.WithOrganization(org))
	}
	return &OpenAIImageGenerator{
		client: openai.NewClient(reqOpts...),
		http:   httpClient,
		model:  coalesce(opts.Model, defaultImageModel),
	}, nil
}

func (g *OpenAIImageGenerator) Generate(ctx context.Context, req GenerateRequest) (*domain.GeneratedImage, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("flyers: empty prompt")
	}
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: req.Prompt,
		Model:  openai.ImageModel(g.model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(ImageSize(req.AspectRatio)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: images: %v", domain.ErrProviderFailure, err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: images: empty data", domain.ErrProviderFailure)
	}
	first := resp.Data[0]
	var data []byte
	switch {
	case first.B64JSON != "":
		data, err = base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("%w: images: decode: %v", domain.ErrProviderFailure, err)
		}
	case first.URL != "":
		data, err = g.download(ctx, first.URL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: images: no payload", domain.ErrProviderFailure)
	}
	return &domain.GeneratedImage{Data: data, MIME: http.DetectContentType(data), Provider: openAIImageProvider}, nil
}

func (g *OpenAIImageGenerator) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: images: %v", domain.ErrProviderFailure, err)
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: images: download: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: images: download status %d", domain.ErrProviderFailure, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: images: read: %v", domain.ErrProviderFailure, err)
	}
	return data, nil
}

// PlaceholderGenerator renders a flat PNG swatch. It is used when no image
// model is configured.
type PlaceholderGenerator struct {
	Fill color.RGBA
}

func NewPlaceholderGenerator() *PlaceholderGenerator {
	return &PlaceholderGenerator{Fill: color.RGBA{R: 0x1f, G: 0x3a, B: 0x5f, A: 0xff}}
}

func (g *PlaceholderGenerator) Generate(ctx context.Context, req GenerateRequest) (*domain.GeneratedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := placeholderSize(req.AspectRatio)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, g.Fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &domain.GeneratedImage{Data: buf.Bytes(), MIME: "image/png", Provider: "placeholder"}, nil
}

func placeholderSize(aspect string) (int, int) {
	switch aspect {
	case "1:1":
		return 64, 64
	case "9:16":
		return 54, 96
	case "16:9":
		return 96, 54
	case "letter":
		return 68, 88
	default:
		return 64, 80
	}
}

var (
	_ Generator = (*OpenAIImageGenerator)(nil)
	_ Generator = (*PlaceholderGenerator)(nil)
)
