package sampler

import (
	"context"

	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/errors"
	"github.com/curricula-dev/curricula/pkg/logging"
)

// Feed continuously draws fragments and sends them on out until ctx is
// canceled. Draws that exhaust their retries are skipped with a debug log;
// any other sampling failure stops the feed and is returned. The channel is
// not closed, the caller owns it.
func (s *Sampler) Feed(ctx context.Context, out chan<- core.Fragment) error {
	for {
		frag, err := s.Next(ctx)
		if err != nil {
			switch errors.Code(err) {
			case errors.NoFeasibleFragment:
				s.mu.Lock()
				s.skips++
				s.mu.Unlock()
				logging.GetLogger().Debug(ctx, "feed skipped a draw: %v", err)
				continue
			case errors.Canceled:
				return nil
			}
			return err
		}

		select {
		case out <- frag:
		case <-ctx.Done():
			return nil
		}
	}
}
