package async

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/laurel-hq/laurel/pkg/utils/errutil"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch runs handler in a new goroutine. The handler context keeps the
// values of ctx but is not canceled with it. Errors and panics are reported
// and never propagate.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errutil.Handle(bgCtx, goerr.New(fmt.Sprintf("panic: %v", r), goerr.V("job", name)), "panic in async job")
			}
		}()

		logging.From(bgCtx).Debug("Async job started", slog.String("job", name))
		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, goerr.Wrap(err, "async job failed", goerr.V("job", name)), "async job failed")
		}
	}()
}
