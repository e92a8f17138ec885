package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencer-maker/internal/gemini"
	"influencer-maker/internal/influencer"
	"influencer-maker/internal/pollinations"
)

type fakeFallback struct {
	prompt      string
	aspectRatio string
	images      gemini.Images
	err         error
}

func (f *fakeFallback) GenerateImages(ctx context.Context, prompt, aspectRatio string) (gemini.Images, error) {
	f.prompt = prompt
	f.aspectRatio = aspectRatio
	return f.images, f.err
}

func TestGenerateBuildsSeededPair(t *testing.T) {
	svc := New(Options{
		URLs:  pollinations.New(pollinations.Options{BaseURL: "https://img.test/image"}),
		Seeds: FixedSeed(41),
	})

	sel := influencer.DefaultSelection()
	res, err := svc.Generate(sel)
	require.NoError(t, err)

	assert.Equal(t, influencer.BuildPrompts(sel), res.Prompts)
	assert.Equal(t, 41, res.Images[0].Seed)
	assert.Equal(t, 42, res.Images[1].Seed)
	assert.Contains(t, res.Images[0].URL, "&seed=41&")
	assert.Contains(t, res.Images[1].URL, "&seed=42&")
	assert.True(t, strings.HasPrefix(res.Images[0].URL, "https://img.test/image/"))
	assert.Equal(t, influencer.ModelLabel(sel.Model), res.Images[0].Model)
	assert.Equal(t, res.Images[0].Model, res.Images[1].Model)

	// The two URLs differ only in the seed value.
	assert.Equal(t,
		strings.Replace(res.Images[0].URL, "seed=41", "seed=X", 1),
		strings.Replace(res.Images[1].URL, "seed=42", "seed=X", 1),
	)
}

func TestGenerateUsesAspectRatioDimensions(t *testing.T) {
	svc := New(Options{Seeds: FixedSeed(1)})

	sel := influencer.DefaultSelection()
	sel.AspectRatio = influencer.Landscape
	res, err := svc.Generate(sel)
	require.NoError(t, err)
	assert.Contains(t, res.Images[0].URL, "width=1280&height=720")
}

func TestGenerateRandomSeedsInRange(t *testing.T) {
	svc := New(Options{})
	for i := 0; i < 50; i++ {
		res, err := svc.Generate(influencer.DefaultSelection())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Images[0].Seed, 0)
		assert.Less(t, res.Images[0].Seed, seedRange)
		assert.Equal(t, res.Images[0].Seed+1, res.Images[1].Seed)
	}
}

func TestSeedPairNormalizesNegative(t *testing.T) {
	a, b := seedPair(FixedSeed(-5))
	assert.Equal(t, 5, a)
	assert.Equal(t, 6, b)

	a, _ = seedPair(FixedSeed(seedRange + 3))
	assert.Equal(t, 3, a)
}

func TestGenerateWithFallbackSuccess(t *testing.T) {
	fb := &fakeFallback{images: gemini.Images{
		DataURIs: [2]string{"data:image/png;base64,AA==", "data:image/png;base64,AQ=="},
		Model:    "imagen-4.0-generate-001",
		Tier:     3,
	}}
	svc := New(Options{Fallback: fb})

	sel := influencer.DefaultSelection()
	sel.AspectRatio = influencer.Landscape
	res, err := svc.GenerateWithFallback(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, influencer.BuildPrompts(sel).English, fb.prompt)
	assert.Equal(t, "16:9", fb.aspectRatio)
	assert.Equal(t, "data:image/png;base64,AA==", res.Images[0].URL)
	assert.Equal(t, "data:image/png;base64,AQ==", res.Images[1].URL)
	assert.Equal(t, "imagen-4.0-generate-001", res.Images[0].Model)
	assert.Zero(t, res.Images[0].Seed)
}

func TestGenerateWithFallbackPropagatesError(t *testing.T) {
	boom := errors.New("all tiers down")
	svc := New(Options{Fallback: &fakeFallback{err: boom}})

	_, err := svc.GenerateWithFallback(context.Background(), influencer.DefaultSelection())
	assert.ErrorIs(t, err, boom)
}

func TestGenerateWithFallbackNotConfigured(t *testing.T) {
	_, err := New(Options{}).GenerateWithFallback(context.Background(), influencer.DefaultSelection())
	assert.ErrorIs(t, err, gemini.ErrMissingAPIKey)
}
