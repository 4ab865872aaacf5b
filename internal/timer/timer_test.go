package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_SetsActiveFullCountdown(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Start(27*time.Second, now)

	assert.True(t, c.IsActive)
	assert.False(t, c.Overtime)
	assert.Equal(t, int64(27000), c.RemainingMs)
	assert.Equal(t, int64(27000), c.TotalMs)
	require.NotNil(t, c.StartedAt)
	assert.Equal(t, now, *c.StartedAt)
}

func TestTick_IdleWhenInactive(t *testing.T) {
	d := Default()
	c := Start(time.Second, time.Now()).Stop()

	next, res := d.Tick(c)
	if res != Idle {
		t.Fatalf("want Idle, got %v", res)
	}
	if next != c {
		t.Fatalf("inactive countdown changed: %+v -> %+v", c, next)
	}
}

func TestTick_FullLifecycleNeverGoesPastFloor(t *testing.T) {
	d := Default()
	c := Start(d.Ban, time.Now())

	// 27 ticks bring a 27s countdown to zero.
	for i := 0; i < 27; i++ {
		var res Result
		c, res = d.Tick(c)
		require.Equal(t, Ticked, res, "tick %d", i)
	}
	assert.Equal(t, int64(0), c.RemainingMs)
	assert.False(t, c.Overtime)

	c, res := d.Tick(c)
	require.Equal(t, Expired, res)
	assert.True(t, c.Overtime)
	assert.True(t, c.IsActive)
	assert.Equal(t, int64(37000), c.TotalMs)

	for i := 1; i <= d.OvertimeTicks; i++ {
		c, res = d.Tick(c)
		require.Equal(t, Ticked, res)
		assert.Equal(t, int64(-1000*i), c.RemainingMs)
	}

	c, res = d.Tick(c)
	require.Equal(t, Exhausted, res)
	assert.False(t, c.IsActive)
	assert.Equal(t, int64(-10000), c.RemainingMs)

	_, res = d.Tick(c)
	assert.Equal(t, Idle, res)
}

func TestTick_ClampsUnevenIntervalToFloor(t *testing.T) {
	d := Durations{Ban: time.Second, Pick: time.Second, Finalization: time.Second, Interval: 300 * time.Millisecond, OvertimeTicks: 1}
	c := Countdown{RemainingMs: -200, TotalMs: 1300, IsActive: true, Overtime: true}

	c, res := d.Tick(c)
	require.Equal(t, Ticked, res)
	assert.Equal(t, int64(-300), c.RemainingMs)

	_, res = d.Tick(c)
	assert.Equal(t, Exhausted, res)
}

func TestDurations_Validate(t *testing.T) {
	cases := []struct {
		name    string
		d       Durations
		wantErr bool
	}{
		{name: "default", d: Default()},
		{name: "zero interval", d: Durations{Ban: 1, Pick: 1, Finalization: 1}, wantErr: true},
		{name: "zero ban", d: Durations{Pick: 1, Finalization: 1, Interval: 1}, wantErr: true},
		{name: "negative overtime", d: Durations{Ban: 1, Pick: 1, Finalization: 1, Interval: 1, OvertimeTicks: -1}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.d.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}
