package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"github.com/secmon-lab/hovertodo/pkg/service/gcs"
	"github.com/secmon-lab/hovertodo/pkg/service/image"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Image holds configuration for meme image generation
type Image struct {
	bucket  string
	baseURL string
}

// Flags returns CLI flags for image configuration
func (i *Image) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "meme-bucket",
			Usage:       "Cloud Storage bucket to upload generated memes to (provider URLs are returned if empty)",
			Category:    "Image",
			Sources:     cli.EnvVars("HOVERTODO_MEME_BUCKET"),
			Destination: &i.bucket,
		},
		&cli.StringFlag{
			Name:        "image-base-url",
			Usage:       "Base URL of an OpenAI compatible image API",
			Category:    "Image",
			Sources:     cli.EnvVars("HOVERTODO_IMAGE_BASE_URL"),
			Destination: &i.baseURL,
		},
	}
}

// LogAttrs returns log attributes for the image configuration
func (i *Image) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("meme_bucket", i.bucket),
		slog.String("base_url", i.baseURL),
	}
}

// Configure creates the image generator. Returns nil if apiKey is empty (the
// meme endpoint then fails). The returned function releases the storage
// client.
func (i *Image) Configure(ctx context.Context, apiKey string, settings ImageSettings) (interfaces.ImageGenerator, func(), error) {
	noop := func() {}
	if apiKey == "" {
		logging.From(ctx).Warn("OpenAI API key not configured, meme generation is disabled")
		return nil, noop, nil
	}

	opts := []image.Option{
		image.WithModel(settings.Model),
		image.WithSize(settings.Size),
	}
	if i.baseURL != "" {
		opts = append(opts, image.WithBaseURL(i.baseURL))
	}

	closer := noop
	if i.bucket != "" {
		store, err := gcs.New(ctx, i.bucket)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize meme bucket", goerr.V("bucket", i.bucket))
		}
		opts = append(opts, image.WithObjectStore(store))
		closer = func() {
			if err := store.Close(); err != nil {
				logging.Default().Error("failed to close storage client", "error", err)
			}
		}
	}

	gen, err := image.New(apiKey, opts...)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to initialize image service")
	}

	return gen, closer, nil
}
