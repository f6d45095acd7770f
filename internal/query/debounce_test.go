package query_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/qcm-suite/qcm/internal/query"
)

func TestDebouncerRunsOnlyLastScheduled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	d := query.NewDebouncer(20 * time.Millisecond)
	var last atomic.Int32
	var runs atomic.Int32
	for i := int32(1); i <= 5; i++ {
		v := i
		d.Schedule(func() {
			runs.Add(1)
			last.Store(v)
		})
	}
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerCancelAndFlush(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	d := query.NewDebouncer(time.Hour)
	var runs atomic.Int32
	d.Schedule(func() { runs.Add(1) })
	require.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())

	d.Schedule(func() { runs.Add(1) })
	d.Flush()
	assert.Equal(t, int32(1), runs.Load())
	d.Flush()
	assert.Equal(t, int32(1), runs.Load())
}
