package drafts

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/drafts/draftstest"
	"github.com/stretchr/testify/assert"
)

func TestScheduler_OnePendingHandlePerKey(t *testing.T) {
	clock := draftstest.NewManualClock(epoch)
	s := NewScheduler(clock.AfterFunc)
	var fired []string

	s.Schedule("k", time.Second, func() { fired = append(fired, "first") })
	s.Schedule("k", time.Second, func() { fired = append(fired, "second") })
	s.Schedule("other", time.Second, func() { fired = append(fired, "other") })

	assert.Equal(t, []string{"k", "other"}, s.keys())
	assert.Equal(t, 2, clock.Waiting())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"second", "other"}, fired)
	assert.Empty(t, s.keys())
}

func TestScheduler_Cancel(t *testing.T) {
	clock := draftstest.NewManualClock(epoch)
	s := NewScheduler(clock.AfterFunc)
	var calls int

	s.Schedule("k", time.Second, func() { calls++ })
	assert.True(t, s.Pending("k"))
	assert.True(t, s.Cancel("k"))
	assert.False(t, s.Cancel("k"))

	clock.Advance(time.Minute)
	assert.Equal(t, 0, calls)
}

func TestScheduler_CancelAll(t *testing.T) {
	clock := draftstest.NewManualClock(epoch)
	s := NewScheduler(clock.AfterFunc)
	var calls int

	s.Schedule("a", time.Second, func() { calls++ })
	s.Schedule("b", 2*time.Second, func() { calls++ })
	s.CancelAll()

	clock.Advance(time.Minute)
	assert.Equal(t, 0, calls)
	assert.False(t, s.Pending("a"))
}

func TestScheduler_RealTimer(t *testing.T) {
	s := NewScheduler(nil)
	var calls atomic.Int32
	done := make(chan struct{})

	s.Schedule("k", 20*time.Millisecond, func() { calls.Add(1) })
	s.Schedule("k", 20*time.Millisecond, func() {
		calls.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
