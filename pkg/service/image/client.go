package image

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
)

const (
	DefaultModel = openai.CreateImageModelDallE3
	DefaultSize  = openai.CreateImageSize1024x1024
)

// ErrNoImage is returned when the backend answers without image data
var ErrNoImage = errors.New("image backend returned no image")

// client implements Service on the OpenAI images API
type client struct {
	api     *openai.Client
	model   string
	size    string
	objects interfaces.ObjectStore
}

// Option is a functional option for client configuration
type Option func(*client, *openai.ClientConfig)

// WithModel sets the image model
func WithModel(model string) Option {
	return func(c *client, _ *openai.ClientConfig) {
		c.model = model
	}
}

// WithSize sets the generated image size, e.g. "1024x1024"
func WithSize(size string) Option {
	return func(c *client, _ *openai.ClientConfig) {
		c.size = size
	}
}

// WithBaseURL points the client at an OpenAI compatible endpoint
func WithBaseURL(baseURL string) Option {
	return func(_ *client, cfg *openai.ClientConfig) {
		cfg.BaseURL = baseURL
	}
}

// WithObjectStore uploads generated images and returns the stored object URL
// instead of the provider's short-lived URL
func WithObjectStore(store interfaces.ObjectStore) Option {
	return func(c *client, _ *openai.ClientConfig) {
		c.objects = store
	}
}

// New creates a new image generation service
func New(apiKey string, opts ...Option) (Service, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required for image generation")
	}

	cfg := openai.DefaultConfig(apiKey)
	c := &client{
		model: DefaultModel,
		size:  DefaultSize,
	}
	for _, opt := range opts {
		opt(c, &cfg)
	}
	c.api = openai.NewClientWithConfig(cfg)

	return c, nil
}

// Generate creates one image for prompt and returns a reference to it
func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	format := openai.CreateImageResponseFormatURL
	if c.objects != nil {
		format = openai.CreateImageResponseFormatB64JSON
	}

	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           c.size,
		ResponseFormat: format,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate image", goerr.V("model", c.model))
	}
	if len(resp.Data) == 0 {
		return "", goerr.Wrap(ErrNoImage, "empty image response", goerr.V("model", c.model))
	}

	data := resp.Data[0]
	if data.B64JSON == "" {
		if data.URL == "" {
			return "", goerr.Wrap(ErrNoImage, "image response has neither url nor payload", goerr.V("model", c.model))
		}
		return data.URL, nil
	}

	if c.objects == nil {
		return "data:image/png;base64," + data.B64JSON, nil
	}

	raw, err := base64.StdEncoding.DecodeString(data.B64JSON)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode image payload")
	}

	name := "memes/" + uuid.NewString() + ".png"
	url, err := c.objects.Put(ctx, name, "image/png", raw)
	if err != nil {
		return "", goerr.Wrap(err, "failed to store image", goerr.V("name", name))
	}
	logging.From(ctx).Debug("stored meme image", "name", name, "bytes", len(raw))

	return url, nil
}
