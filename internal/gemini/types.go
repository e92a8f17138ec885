package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var (
	// ErrMissingAPIKey is returned before any request when no credential is configured.
	ErrMissingAPIKey = errors.New("gemini api key is not configured")
	// ErrNoImage means the upstream answered but carried no usable image.
	ErrNoImage = errors.New("no image in response")
)

// modelsAPI is the part of *genai.Models the fallback chain uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Images is the outcome of a successful chain run: two data URIs and the
// model of the tier that produced them.
type Images struct {
	DataURIs [2]string
	Model    string
	Tier     int
}

type TierError struct {
	Tier  int
	Model string
	Err   error
}

func (e TierError) Error() string {
	return fmt.Sprintf("tier %d (%s): %v", e.Tier, e.Model, e.Err)
}

func (e TierError) Unwrap() error { return e.Err }

// ChainError reports every tier's failure, in order.
type ChainError struct {
	Tiers []TierError
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Tiers))
	for _, t := range e.Tiers {
		parts = append(parts, t.Error())
	}
	return "failed to generate images: " + strings.Join(parts, "; ")
}

func (e *ChainError) Unwrap() []error {
	out := make([]error, 0, len(e.Tiers))
	for _, t := range e.Tiers {
		out = append(out, t)
	}
	return out
}
