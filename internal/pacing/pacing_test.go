// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstant(t *testing.T) {
	p := Constant(2 * time.Second)
	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(7))
}

func TestNone(t *testing.T) {
	for attempt := 0; attempt < 5; attempt++ {
		assert.Zero(t, None.Delay(attempt))
	}
}

func TestExponential(t *testing.T) {
	tests := []struct {
		name    string
		policy  Exponential
		attempt int
		want    time.Duration
	}{
		{"first attempt is base", Exponential{Base: time.Second}, 1, time.Second},
		{"doubles by default", Exponential{Base: time.Second}, 3, 4 * time.Second},
		{"custom multiplier", Exponential{Base: time.Second, Multiplier: 3}, 3, 9 * time.Second},
		{"capped at max", Exponential{Base: time.Second, Max: 5 * time.Second}, 10, 5 * time.Second},
		{"zero attempt", Exponential{Base: time.Second}, 0, 0},
		{"zero base", Exponential{}, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Delay(tt.attempt))
		})
	}
}

func TestPolicyFunc(t *testing.T) {
	var seen []int
	p := PolicyFunc(func(attempt int) time.Duration {
		seen = append(seen, attempt)
		return time.Duration(attempt) * time.Millisecond
	})
	assert.Equal(t, 3*time.Millisecond, p.Delay(3))
	assert.Equal(t, []int{3}, seen)
}

func TestWaitZeroReturnsImmediately(t *testing.T) {
	start := time.Now()
	assert.NoError(t, Wait(context.Background(), 0))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Wait(ctx, time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitCancelledBeforeZeroDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, 0), context.Canceled)
}
