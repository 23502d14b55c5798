package padprobe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cboone/padprobe/internal/procdrv"
)

// driveEvents writes the scenario's input events to the target in order.
// For each event it sleeps DelayBefore, then writes the payload through the
// controller; the next event's delay begins only after the write completed.
// Writes are never reordered or parallelized.
//
// The target branches on hold durations measured against thresholds of a few
// hundred milliseconds, so oversleep beyond slack invalidates the scenario:
// it is reported as an InfraError, not left to surface as a target failure.
// A hard write failure is wrapped in an InfraError the same way.
func driveEvents(ctx context.Context, ctrl *procdrv.Controller, h *procdrv.Handle,
	events []InputEvent, slack time.Duration, log *zap.Logger) error {

	for i, ev := range events {
		if ev.DelayBefore > 0 {
			target := time.Now().Add(ev.DelayBefore)
			timer := time.NewTimer(ev.DelayBefore)

			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}

			if overshoot := time.Since(target); overshoot > slack {
				log.Error("scheduler overslept past slack",
					zap.String("run", h.ID),
					zap.Int("event", i),
					zap.Duration("overshoot", overshoot))
				return &InfraError{Event: i, Overshoot: overshoot, Slack: slack}
			}
		}

		if err := ctrl.Write(h, ev.Payload); err != nil {
			return &InfraError{Event: i, Err: err}
		}
		log.Debug("sent input event",
			zap.String("run", h.ID),
			zap.Int("event", i),
			zap.ByteString("payload", ev.Payload))
	}
	return nil
}
