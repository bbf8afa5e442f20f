// Package driver runs frame-driven animation loops.
//
// A drive delivers ticks carrying the elapsed time since it started, in
// strictly increasing order, until the duration is reached (Completed) or
// the frame source can no longer deliver frames (Aborted).
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rorqualx/smoothie-go/internal/types"
)

// FrameSource schedules animation frames.
type FrameSource interface {
	// Now returns the current time on the source's clock.
	Now() time.Time
	// NextFrame blocks until the next frame and returns its timestamp.
	// An error means no further frames can be scheduled.
	NextFrame(ctx context.Context) (time.Time, error)
}

// Hooks are the terminal callbacks of Drive. Exactly one of them runs.
type Hooks struct {
	OnSuccess func()
	OnFailure func(err error)
}

// Driver runs drives against a frame source.
type Driver struct {
	frames FrameSource
}

// New creates a driver that schedules ticks on frames.
func New(frames FrameSource) *Driver {
	return &Driver{frames: frames}
}

// Run invokes onTick for every frame until elapsed time reaches duration.
// The tick at or past the boundary is always delivered before Run returns
// nil. Cancellation of ctx or a frame source failure aborts the drive with
// an error wrapping types.ErrDriveAborted; no tick is delivered after that.
func (d *Driver) Run(ctx context.Context, duration time.Duration, onTick func(elapsed time.Duration)) error {
	if err := ctx.Err(); err != nil {
		return aborted(err)
	}
	if duration <= 0 {
		onTick(0)
		return nil
	}

	start := d.frames.Now()
	last := time.Duration(-1)
	ticks := 0

	for {
		ts, err := d.frames.NextFrame(ctx)
		if err != nil {
			log.Debug().Err(err).Int("ticks", ticks).Msg("Frame source stopped, aborting drive")
			return aborted(err)
		}
		if err := ctx.Err(); err != nil {
			return aborted(err)
		}

		elapsed := ts.Sub(start)
		if elapsed <= last {
			continue
		}
		last = elapsed

		onTick(elapsed)
		ticks++

		if elapsed >= duration {
			log.Debug().
				Int("ticks", ticks).
				Dur("elapsed", elapsed).
				Msg("Drive completed")
			return nil
		}
	}
}

// Drive runs the loop and then calls exactly one of hooks.OnSuccess or
// hooks.OnFailure.
func (d *Driver) Drive(ctx context.Context, duration time.Duration, onTick func(elapsed time.Duration), hooks Hooks) {
	if err := d.Run(ctx, duration, onTick); err != nil {
		if hooks.OnFailure != nil {
			hooks.OnFailure(err)
		}
		return
	}
	if hooks.OnSuccess != nil {
		hooks.OnSuccess()
	}
}

func aborted(cause error) error {
	return fmt.Errorf("%w: %w", types.ErrDriveAborted, cause)
}
