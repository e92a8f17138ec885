package pollinations

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL      = "https://gen.pollinations.ai/image/"
	DefaultMaxURLLength = 2000
)

// ErrURLTooLong marks URLs the upstream gateway is likely to reject.
var ErrURLTooLong = errors.New("image url exceeds length limit")

type Options struct {
	BaseURL string
	// Key is optional; an empty key means anonymous free-tier access.
	Key          string
	MaxURLLength int
}

// Client builds image URLs. It never talks to the network: the URL is handed
// to whatever renders it (a browser <img>, a Telegram photo by URL).
type Client struct {
	baseURL      string
	key          string
	maxURLLength int
}

func New(opts Options) *Client {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	maxLen := opts.MaxURLLength
	if maxLen <= 0 {
		maxLen = DefaultMaxURLLength
	}

	return &Client{
		baseURL:      baseURL,
		key:          strings.TrimSpace(opts.Key),
		maxURLLength: maxLen,
	}
}

// Dimensions maps "16:9" to 1280x720 and everything else to 720x1280.
func Dimensions(aspectRatio string) (width, height int) {
	if aspectRatio == "16:9" {
		return 1280, 720
	}
	return 720, 1280
}

func (c *Client) ImageURL(prompt, model, aspectRatio string, seed int) string {
	width, height := Dimensions(aspectRatio)

	var b strings.Builder
	b.Grow(len(c.baseURL) + len(prompt)*3 + 128)
	b.WriteString(c.baseURL)
	b.WriteString(url.PathEscape(prompt))
	b.WriteString("?width=" + strconv.Itoa(width))
	b.WriteString("&height=" + strconv.Itoa(height))
	b.WriteString("&seed=" + strconv.Itoa(seed))
	b.WriteString("&model=" + url.QueryEscape(model))
	b.WriteString("&nologo=true&enhance=false")
	if c.key != "" {
		b.WriteString("&key=" + url.QueryEscape(c.key))
	}
	return b.String()
}

func (c *Client) CheckLength(imageURL string) error {
	if len(imageURL) > c.maxURLLength {
		return fmt.Errorf("%w: %d > %d", ErrURLTooLong, len(imageURL), c.maxURLLength)
	}
	return nil
}
