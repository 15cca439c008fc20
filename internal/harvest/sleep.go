package harvest

import (
	"context"
	"time"

	"github.com/pfrederiksen/tradeshow-events/internal/session"
)

// Sleeper pauses for d. It returns ErrCancelled as soon as ctx or the session is
// cancelled instead of blocking for the full duration.
type Sleeper func(ctx context.Context, sess *session.Session, d time.Duration) error

// Sleep is the default Sleeper
func Sleep(ctx context.Context, sess *session.Session, d time.Duration) error {
	if stopped(ctx, sess) {
		return ErrCancelled
	}
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ErrCancelled
	case <-sess.Done():
		return ErrCancelled
	case <-t.C:
		return nil
	}
}

func stopped(ctx context.Context, sess *session.Session) bool {
	return ctx.Err() != nil || sess.Cancelled()
}
