// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pacing provides the delay policies used between requests: the
// politeness pause after each page, the pause before re-requesting an
// empty page, and the backoff between connection retries.
package pacing

import (
	"context"
	"math"
	"time"
)

// Policy returns how long to wait before the given attempt. Attempts are
// numbered from 1.
type Policy interface {
	Delay(attempt int) time.Duration
}

// PolicyFunc adapts an ordinary function to a Policy.
type PolicyFunc func(attempt int) time.Duration

// Delay calls f(attempt).
func (f PolicyFunc) Delay(attempt int) time.Duration { return f(attempt) }

// None never waits. Tests use it to run without real delays.
var None Policy = Constant(0)

// Constant waits the same duration before every attempt.
type Constant time.Duration

// Delay returns the constant duration for every positive attempt.
func (c Constant) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return time.Duration(c)
}

// Exponential doubles (or multiplies by Multiplier) the delay on every
// attempt, starting at Base and never exceeding Max.
type Exponential struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64
}

// Delay returns Base * Multiplier^(attempt-1), capped at Max.
func (e Exponential) Delay(attempt int) time.Duration {
	if attempt <= 0 || e.Base <= 0 {
		return 0
	}
	mult := e.Multiplier
	if mult <= 0 {
		mult = 2
	}
	d := float64(e.Base) * math.Pow(mult, float64(attempt-1))
	if e.Max > 0 && d > float64(e.Max) {
		return e.Max
	}
	return time.Duration(d)
}

// Wait blocks for d or until ctx is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
