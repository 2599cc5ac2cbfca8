package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hovertodo/pkg/utils/async"
)

func TestGo(t *testing.T) {
	t.Run("runs with the caller context", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "v")

		got := make(chan any, 1)
		async.Go(ctx, "value", func(ctx context.Context) error {
			got <- ctx.Value(key{})
			return nil
		})

		select {
		case v := <-got:
			gt.Value(t, v).Equal(any("v"))
		case <-time.After(time.Second):
			t.Fatal("goroutine did not run")
		}
	})

	t.Run("survives panics and errors", func(t *testing.T) {
		done := make(chan struct{}, 2)
		async.Go(context.Background(), "panic", func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			panic("boom")
		})
		async.Go(context.Background(), "error", func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			return errors.New("failed")
		})

		for range 2 {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("goroutine did not finish")
			}
		}
	})
}
