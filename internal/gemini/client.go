package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

const (
	defaultFlashModel  = "gemini-2.5-flash-image"
	defaultImagenModel = "imagen-3.0-generate-001"
	defaultUltraModel  = "imagen-4.0-generate-001"
	defaultTierTimeout = 90 * time.Second
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger

	FlashModel  string
	ImagenModel string
	UltraModel  string
	TierTimeout time.Duration
}

type Client struct {
	models      modelsAPI
	logger      *slog.Logger
	flashModel  string
	imagenModel string
	ultraModel  string
	tierTimeout time.Duration
}

// New builds a client. Without an API key no SDK client is created and
// GenerateImages fails with ErrMissingAPIKey, so the primary URL path keeps
// working on deployments that never configured Gemini.
func New(ctx context.Context, opts Options) (*Client, error) {
	c := newClient(nil, opts)

	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimSpace(opts.BaseURL),
			APIVersion: strings.TrimSpace(opts.APIVersion),
		},
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.models = sdk.Models
	return c, nil
}

func newClient(models modelsAPI, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	timeout := opts.TierTimeout
	if timeout <= 0 {
		timeout = defaultTierTimeout
	}

	return &Client{
		models:      models,
		logger:      logger,
		flashModel:  firstNonEmpty(opts.FlashModel, defaultFlashModel),
		imagenModel: firstNonEmpty(opts.ImagenModel, defaultImagenModel),
		ultraModel:  firstNonEmpty(opts.UltraModel, defaultUltraModel),
		tierTimeout: timeout,
	}
}

func (c *Client) Configured() bool {
	return c.models != nil
}

// GenerateImages walks the tiers in order and stops at the first one that
// yields two images. Each tier runs under its own timeout.
func (c *Client) GenerateImages(ctx context.Context, prompt, aspectRatio string) (Images, error) {
	if c.models == nil {
		return Images{}, ErrMissingAPIKey
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Images{}, errors.New("prompt is empty")
	}

	tiers := []struct {
		model string
		run   func(ctx context.Context, model string) ([2]string, error)
	}{
		{c.flashModel, func(ctx context.Context, model string) ([2]string, error) {
			return c.generateFlash(ctx, model, prompt, aspectRatio)
		}},
		{c.imagenModel, func(ctx context.Context, model string) ([2]string, error) {
			return c.generateImagen(ctx, model, prompt, aspectRatio)
		}},
		{c.ultraModel, func(ctx context.Context, model string) ([2]string, error) {
			return c.generateImagen(ctx, model, prompt, aspectRatio)
		}},
	}

	chainErr := &ChainError{}
	for i, tier := range tiers {
		n := i + 1
		c.logger.Info("image tier attempt", "tier", n, "model", tier.model)

		tierCtx, cancel := context.WithTimeout(ctx, c.tierTimeout)
		images, err := tier.run(tierCtx, tier.model)
		cancel()

		if err == nil {
			return Images{DataURIs: images, Model: tier.model, Tier: n}, nil
		}

		c.logger.Warn("image tier failed", "tier", n, "model", tier.model, "err", err)
		chainErr.Tiers = append(chainErr.Tiers, TierError{Tier: n, Model: tier.model, Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	return Images{}, chainErr
}

// generateFlash asks a multimodal model for one image per call and issues
// the two calls concurrently. Both must succeed.
func (c *Client) generateFlash(ctx context.Context, model, prompt, aspectRatio string) ([2]string, error) {
	var out [2]string
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range out {
		i := i
		eg.Go(func() error {
			img, err := c.generateFlashSingle(egCtx, model, prompt, aspectRatio)
			if err != nil {
				return err
			}
			out[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return [2]string{}, err
	}
	return out, nil
}

func (c *Client) generateFlashSingle(ctx context.Context, model, prompt, aspectRatio string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: aspectRatio},
	}

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil && isUnknownFieldError(err, "imageConfig") {
		cfg.ImageConfig = nil
		resp, err = c.models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	}
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	img, ok := firstInlineImage(resp)
	if !ok {
		return "", fmt.Errorf("%s: %w", model, ErrNoImage)
	}
	return img, nil
}

func (c *Client) generateImagen(ctx context.Context, model, prompt, aspectRatio string) ([2]string, error) {
	resp, err := c.models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 2,
		AspectRatio:    aspectRatio,
		OutputMIMEType: "image/jpeg",
	})
	if err != nil {
		return [2]string{}, fmt.Errorf("generate images: %w", err)
	}

	var images []string
	if resp != nil {
		for _, gi := range resp.GeneratedImages {
			if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
				continue
			}
			images = append(images, dataURI("image/jpeg", gi.Image.ImageBytes))
		}
	}
	if len(images) == 0 {
		return [2]string{}, fmt.Errorf("%s: %w", model, ErrNoImage)
	}

	// A single returned image is reused for the second slot; the caller
	// always gets a pair.
	out := [2]string{images[0], images[0]}
	if len(images) > 1 {
		out[1] = images[1]
	}
	return out, nil
}

func firstInlineImage(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", false
	}
	for _, p := range cand.Content.Parts {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		mime := p.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return dataURI(mime, p.InlineData.Data), true
	}
	return "", false
}

func dataURI(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
