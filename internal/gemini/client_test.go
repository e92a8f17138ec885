package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu sync.Mutex

	contentFunc func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	imagesFunc  func(ctx context.Context, model string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)

	contentCalls atomic.Int32
	imageModels  []string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.contentCalls.Add(1)
	if f.contentFunc == nil {
		return nil, errors.New("flash unavailable")
	}
	return f.contentFunc(ctx, model, cfg)
}

func (f *fakeModels) GenerateImages(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.mu.Lock()
	f.imageModels = append(f.imageModels, model)
	f.mu.Unlock()
	if f.imagesFunc == nil {
		return nil, errors.New("imagen unavailable")
	}
	return f.imagesFunc(ctx, model, cfg)
}

func inlineResponse(mime string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "here you go"},
					{InlineData: &genai.Blob{MIMEType: mime, Data: data}},
				},
			},
		}},
	}
}

func imagenResponse(payloads ...string) *genai.GenerateImagesResponse {
	resp := &genai.GenerateImagesResponse{}
	for _, p := range payloads {
		resp.GeneratedImages = append(resp.GeneratedImages, &genai.GeneratedImage{
			Image: &genai.Image{ImageBytes: []byte(p), MIMEType: "image/jpeg"},
		})
	}
	return resp
}

func testOptions() Options {
	return Options{
		FlashModel:  "flash",
		ImagenModel: "imagen-mid",
		UltraModel:  "imagen-high",
		TierTimeout: time.Second,
	}
}

func TestGenerateImagesMissingKey(t *testing.T) {
	c, err := New(context.Background(), Options{})
	require.NoError(t, err)
	assert.False(t, c.Configured())

	_, err = c.GenerateImages(context.Background(), "prompt", "9:16")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateImagesFlashSuccess(t *testing.T) {
	models := &fakeModels{
		contentFunc: func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			assert.Equal(t, "flash", model)
			require.NotNil(t, cfg.ImageConfig)
			assert.Equal(t, "16:9", cfg.ImageConfig.AspectRatio)
			return inlineResponse("image/webp", []byte("abc")), nil
		},
	}
	c := newClient(models, testOptions())

	got, err := c.GenerateImages(context.Background(), "prompt", "16:9")
	require.NoError(t, err)

	assert.Equal(t, int32(2), models.contentCalls.Load(), "two single-image calls")
	assert.Empty(t, models.imageModels, "later tiers never invoked")
	assert.Equal(t, "flash", got.Model)
	assert.Equal(t, 1, got.Tier)
	assert.Equal(t, "data:image/webp;base64,YWJj", got.DataURIs[0])
	assert.Equal(t, got.DataURIs[0], got.DataURIs[1])
}

func TestGenerateImagesFlashDefaultsMime(t *testing.T) {
	models := &fakeModels{
		contentFunc: func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return inlineResponse("", []byte("abc")), nil
		},
	}
	got, err := newClient(models, testOptions()).GenerateImages(context.Background(), "prompt", "9:16")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.DataURIs[0], "data:image/png;base64,"))
}

func TestGenerateImagesFlashPartialFailureFallsThrough(t *testing.T) {
	var n atomic.Int32
	models := &fakeModels{
		contentFunc: func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if n.Add(1) == 1 {
				return inlineResponse("image/png", []byte("ok")), nil
			}
			return &genai.GenerateContentResponse{}, nil
		},
		imagesFunc: func(ctx context.Context, model string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			return imagenResponse("one", "two"), nil
		},
	}

	got, err := newClient(models, testOptions()).GenerateImages(context.Background(), "prompt", "9:16")
	require.NoError(t, err)
	assert.Equal(t, "imagen-mid", got.Model)
	assert.Equal(t, 2, got.Tier)
	assert.Equal(t, []string{"imagen-mid"}, models.imageModels)
}

func TestGenerateImagesThirdTierSucceeds(t *testing.T) {
	models := &fakeModels{
		imagesFunc: func(ctx context.Context, model string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			assert.Equal(t, int32(2), cfg.NumberOfImages)
			assert.Equal(t, "image/jpeg", cfg.OutputMIMEType)
			assert.Equal(t, "9:16", cfg.AspectRatio)
			if model == "imagen-mid" {
				return imagenResponse(), nil
			}
			return imagenResponse("first", "second"), nil
		},
	}

	got, err := newClient(models, testOptions()).GenerateImages(context.Background(), "prompt", "9:16")
	require.NoError(t, err)

	assert.Equal(t, "imagen-high", got.Model)
	assert.Equal(t, 3, got.Tier)
	assert.Equal(t, [2]string{
		"data:image/jpeg;base64,Zmlyc3Q=",
		"data:image/jpeg;base64,c2Vjb25k",
	}, got.DataURIs)
	assert.Equal(t, []string{"imagen-mid", "imagen-high"}, models.imageModels)
}

func TestGenerateImagesAllTiersFail(t *testing.T) {
	models := &fakeModels{
		contentFunc: func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("flash quota exhausted")
		},
		imagesFunc: func(ctx context.Context, model string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			if model == "imagen-mid" {
				return nil, errors.New("imagen 3 not found")
			}
			return nil, errors.New("imagen 4 billing required")
		},
	}

	_, err := newClient(models, testOptions()).GenerateImages(context.Background(), "prompt", "9:16")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "flash quota exhausted")
	assert.Contains(t, err.Error(), "imagen 4 billing required")
	assert.Contains(t, err.Error(), "imagen 3 not found")

	var chainErr *ChainError
	require.True(t, errors.As(err, &chainErr))
	require.Len(t, chainErr.Tiers, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{chainErr.Tiers[0].Tier, chainErr.Tiers[1].Tier, chainErr.Tiers[2].Tier})
}

func TestGenerateImagesEmptyResponsesWrapErrNoImage(t *testing.T) {
	models := &fakeModels{
		contentFunc: func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}}, nil
		},
		imagesFunc: func(ctx context.Context, model string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			return &genai.GenerateImagesResponse{}, nil
		},
	}

	_, err := newClient(models, testOptions()).GenerateImages(context.Background(), "prompt", "9:16")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestGenerateImagesRetriesWithoutImageConfig(t *testing.T) {
	models := &fakeModels{
		contentFunc: func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if cfg.ImageConfig != nil {
				return nil, errors.New(`Invalid JSON payload received. Unknown name "imageConfig"`)
			}
			return inlineResponse("image/png", []byte("x")), nil
		},
	}

	got, err := newClient(models, testOptions()).GenerateImages(context.Background(), "prompt", "9:16")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Tier)
	assert.Equal(t, int32(4), models.contentCalls.Load())
}

func TestGenerateImagesStopsOnParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	models := &fakeModels{
		contentFunc: func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			cancel()
			return nil, context.Canceled
		},
	}

	_, err := newClient(models, testOptions()).GenerateImages(ctx, "prompt", "9:16")
	require.Error(t, err)
	assert.Empty(t, models.imageModels)
}

func TestGenerateImagesTierTimeout(t *testing.T) {
	opts := testOptions()
	opts.TierTimeout = 20 * time.Millisecond
	models := &fakeModels{
		contentFunc: func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		imagesFunc: func(ctx context.Context, model string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			return imagenResponse("a", "b"), nil
		},
	}

	got, err := newClient(models, opts).GenerateImages(context.Background(), "prompt", "9:16")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Tier)
}

func TestGenerateImagesSingleImagenResultFillsPair(t *testing.T) {
	models := &fakeModels{
		imagesFunc: func(ctx context.Context, model string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			return imagenResponse("solo"), nil
		},
	}

	got, err := newClient(models, testOptions()).GenerateImages(context.Background(), "prompt", "9:16")
	require.NoError(t, err)
	assert.Equal(t, got.DataURIs[0], got.DataURIs[1])
}

func TestGenerateImagesEmptyPrompt(t *testing.T) {
	_, err := newClient(&fakeModels{}, testOptions()).GenerateImages(context.Background(), "  ", "9:16")
	assert.Error(t, err)
}
