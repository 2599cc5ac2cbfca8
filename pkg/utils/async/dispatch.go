package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/utils/errutil"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
)

// Go runs fn in a new goroutine that shares ctx, so the work stops with the
// caller. Panics and returned errors are logged and reported instead of
// crashing the process.
func Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	logger := logging.From(ctx).With("goroutine", name)
	ctx = logging.With(ctx, logger)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(ctx, goerr.New("panic in goroutine", goerr.V("panic", r)), "goroutine panicked")
			}
		}()

		if err := fn(ctx); err != nil {
			_ = errutil.Handle(ctx, err, "goroutine failed")
		}
	}()
}
