package interfaces

import "context"

// ImageGenerator turns an image prompt into a reference to a generated image
type ImageGenerator interface {
	// Generate returns a URL (or data URL) of the generated image
	Generate(ctx context.Context, prompt string) (string, error)
}

// ObjectStore uploads generated images and returns their public URL
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}
