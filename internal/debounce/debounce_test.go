package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyLastRuns(t *testing.T) {
	t.Parallel()

	d := New(20 * time.Millisecond)
	var last atomic.Int64
	var runs atomic.Int32

	for i := int64(1); i <= 5; i++ {
		d.Trigger(func() {
			last.Store(i)
			runs.Add(1)
		})
	}

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int64(5), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	t.Parallel()

	d := New(10 * time.Millisecond)
	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })
	assert.True(t, d.Pending())
	d.Cancel()

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, runs.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Flush(t *testing.T) {
	t.Parallel()

	d := New(time.Hour)
	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })

	assert.True(t, d.Flush())
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.Flush(), "nothing left to flush")
}

func TestDebouncer_SpacedTriggersAllRun(t *testing.T) {
	t.Parallel()

	d := New(5 * time.Millisecond)
	var runs atomic.Int32
	for range 3 {
		d.Trigger(func() { runs.Add(1) })
		assert.Eventually(t, func() bool { return !d.Pending() }, time.Second, time.Millisecond)
	}
	assert.Equal(t, int32(3), runs.Load())
}
