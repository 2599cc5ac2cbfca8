package gcs_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hovertodo/pkg/service/gcs"
)

func TestNew_RequiresBucket(t *testing.T) {
	_, err := gcs.New(context.Background(), "")
	gt.Value(t, err).NotNil()
}

func TestPut_WithRealBucket(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set")
	}

	ctx := context.Background()
	client, err := gcs.New(ctx, bucket)
	gt.NoError(t, err).Required()
	defer func() { _ = client.Close() }()

	name := fmt.Sprintf("test/%d.txt", time.Now().UnixNano())
	url, err := client.Put(ctx, name, "text/plain", []byte("hello"))
	gt.NoError(t, err).Required()
	gt.Value(t, url).Equal("https://storage.googleapis.com/" + bucket + "/" + name)
}
