package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// ExpiredPeriodCloser closes voting periods whose end has passed
type ExpiredPeriodCloser interface {
	CloseExpiredPeriods(ctx context.Context) (int, error)
}

// PeriodCloser closes expired voting periods periodically
type PeriodCloser struct {
	*loop
	closer ExpiredPeriodCloser
}

func NewPeriodCloser(closer ExpiredPeriodCloser, interval time.Duration) *PeriodCloser {
	w := &PeriodCloser{closer: closer}
	w.loop = newLoop("period_closer", interval, w.closeExpired)
	return w
}

func (w *PeriodCloser) closeExpired(ctx context.Context) error {
	n, err := w.closer.CloseExpiredPeriods(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to close expired periods")
	}
	if n > 0 {
		logging.From(ctx).Info("Closed expired voting periods", slog.Int("count", n))
	}
	return nil
}
