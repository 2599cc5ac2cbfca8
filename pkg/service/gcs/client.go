package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
)

// Client uploads objects to a Cloud Storage bucket
type Client struct {
	client *storage.Client
	bucket string
}

var _ interfaces.ObjectStore = &Client{}

// New creates a client for bucket using application default credentials
func New(ctx context.Context, bucket string) (*Client, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &Client{client: client, bucket: bucket}, nil
}

// Put writes data to name and returns the object's public URL
func (c *Client) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	w := c.client.Bucket(c.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object", goerr.V("bucket", c.bucket), goerr.V("name", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", c.bucket), goerr.V("name", name))
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucket, name), nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
