// Package timer holds the countdown arithmetic for draft turns. Scheduling
// lives with the session owner; this package only computes the next value.
package timer

import (
	"errors"
	"time"
)

// Durations configures every countdown a session can run.
type Durations struct {
	Ban           time.Duration
	Pick          time.Duration
	Finalization  time.Duration
	Interval      time.Duration
	OvertimeTicks int
}

func Default() Durations {
	return Durations{
		Ban:           27 * time.Second,
		Pick:          27 * time.Second,
		Finalization:  59 * time.Second,
		Interval:      time.Second,
		OvertimeTicks: 10,
	}
}

func (d Durations) Validate() error {
	if d.Interval <= 0 {
		return errors.New("timer: interval must be positive")
	}
	if d.Ban <= 0 || d.Pick <= 0 || d.Finalization <= 0 {
		return errors.New("timer: durations must be positive")
	}
	if d.OvertimeTicks < 0 {
		return errors.New("timer: overtime ticks must not be negative")
	}
	return nil
}

// OvertimeSpan is how far below zero a countdown may run.
func (d Durations) OvertimeSpan() time.Duration {
	return time.Duration(d.OvertimeTicks) * d.Interval
}

// Countdown is the serialisable timer snapshot stored on a session.
// Remaining goes negative during overtime.
type Countdown struct {
	RemainingMs int64      `json:"remaining"`
	TotalMs     int64      `json:"totalTime"`
	IsActive    bool       `json:"isActive"`
	Overtime    bool       `json:"overtime"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
}

func Start(total time.Duration, now time.Time) Countdown {
	started := now
	return Countdown{
		RemainingMs: total.Milliseconds(),
		TotalMs:     total.Milliseconds(),
		IsActive:    true,
		StartedAt:   &started,
	}
}

// Stop deactivates c, keeping the last remaining value for display.
func (c Countdown) Stop() Countdown {
	c.IsActive = false
	return c
}

func (c Countdown) Remaining() time.Duration {
	return time.Duration(c.RemainingMs) * time.Millisecond
}

type Result int

const (
	// Idle: the countdown was not active; nothing changed.
	Idle Result = iota
	// Ticked: remaining decreased by one interval.
	Ticked
	// Expired: remaining hit zero and overtime began.
	Expired
	// Exhausted: overtime ran out and the countdown went inactive.
	Exhausted
)

func (r Result) String() string {
	switch r {
	case Ticked:
		return "ticked"
	case Expired:
		return "expired"
	case Exhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// Tick advances c by one interval. Reaching zero never ends a turn: the
// countdown enters overtime and keeps counting down to -OvertimeSpan, then
// deactivates and waits for a player.
func (d Durations) Tick(c Countdown) (Countdown, Result) {
	if !c.IsActive {
		return c, Idle
	}
	step := d.Interval.Milliseconds()
	floor := -d.OvertimeSpan().Milliseconds()

	switch {
	case !c.Overtime && c.RemainingMs > 0:
		c.RemainingMs -= step
		return c, Ticked
	case !c.Overtime:
		c.RemainingMs = 0
		c.TotalMs += d.OvertimeSpan().Milliseconds()
		c.Overtime = true
		return c, Expired
	case c.RemainingMs > floor:
		c.RemainingMs -= step
		if c.RemainingMs < floor {
			c.RemainingMs = floor
		}
		return c, Ticked
	default:
		c.IsActive = false
		return c, Exhausted
	}
}
