package generation

import (
	"context"
	"io"
	"log/slog"

	"influencer-maker/internal/gemini"
	"influencer-maker/internal/influencer"
	"influencer-maker/internal/pollinations"
)

// URLBuilder is satisfied by *pollinations.Client.
type URLBuilder interface {
	ImageURL(prompt, model, aspectRatio string, seed int) string
	CheckLength(imageURL string) error
}

// ImageGenerator is satisfied by *gemini.Client.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt, aspectRatio string) (gemini.Images, error)
}

type Options struct {
	URLs     URLBuilder
	Fallback ImageGenerator
	Seeds    SeedSource
	Logger   *slog.Logger
}

type Service struct {
	urls     URLBuilder
	fallback ImageGenerator
	seeds    SeedSource
	logger   *slog.Logger
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	urls := opts.URLs
	if urls == nil {
		urls = pollinations.New(pollinations.Options{})
	}

	seeds := opts.Seeds
	if seeds == nil {
		seeds = RandomSeeds{}
	}

	return &Service{
		urls:     urls,
		fallback: opts.Fallback,
		seeds:    seeds,
		logger:   logger,
	}
}

// Generate builds the prompts and two image URLs that share the English
// prompt and differ only in seed. Nothing is fetched here.
func (s *Service) Generate(sel influencer.Selection) (influencer.GenerationResult, error) {
	prompts := influencer.BuildPrompts(sel)
	seedA, seedB := seedPair(s.seeds)
	label := influencer.ModelLabel(sel.Model)
	ar := string(sel.AspectRatio)

	urlA := s.urls.ImageURL(prompts.English, sel.Model, ar, seedA)
	urlB := s.urls.ImageURL(prompts.English, sel.Model, ar, seedB)

	if err := s.urls.CheckLength(urlA); err != nil {
		s.logger.Warn("image url may be rejected upstream", "err", err)
	}

	s.logger.Info("generation built",
		"model", sel.Model,
		"aspect_ratio", ar,
		"seed_a", seedA,
		"seed_b", seedB,
		"url_len", len(urlA),
	)

	return influencer.GenerationResult{
		Images: [2]influencer.GeneratedImage{
			{URL: urlA, Seed: seedA, Model: label},
			{URL: urlB, Seed: seedB, Model: label},
		},
		Prompts: prompts,
	}, nil
}

// GenerateWithFallback sends the English prompt through the credentialed
// tier chain. Images come back as data URIs; the seed is not used there.
func (s *Service) GenerateWithFallback(ctx context.Context, sel influencer.Selection) (influencer.GenerationResult, error) {
	if s.fallback == nil {
		return influencer.GenerationResult{}, gemini.ErrMissingAPIKey
	}

	prompts := influencer.BuildPrompts(sel)
	images, err := s.fallback.GenerateImages(ctx, prompts.English, string(sel.AspectRatio))
	if err != nil {
		s.logger.Error("fallback generation failed", "err", err)
		return influencer.GenerationResult{}, err
	}

	s.logger.Info("fallback generation done", "model", images.Model, "tier", images.Tier)

	return influencer.GenerationResult{
		Images: [2]influencer.GeneratedImage{
			{URL: images.DataURIs[0], Model: images.Model},
			{URL: images.DataURIs[1], Model: images.Model},
		},
		Prompts: prompts,
	}, nil
}
