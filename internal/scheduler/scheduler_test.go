package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunAtFiresOnceAndSelfRemoves(t *testing.T) {
	assert := assert.New(t)
	sched := New()
	defer sched.Stop()

	var runs int64
	id := sched.RunAt("oneShot", time.Now().Add(10*time.Millisecond), func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	})
	assert.NotEmpty(id)
	assert.Len(sched.Jobs(), 1)

	assert.Eventually(func() bool {
		return atomic.LoadInt64(&runs) == 1 && len(sched.Jobs()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestEveryRepeatsAfterOffset(t *testing.T) {
	assert := assert.New(t)
	sched := New()
	defer sched.Stop()

	var runs int64
	sched.Every("periodic", 20*time.Millisecond, 10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	})

	assert.Eventually(func() bool {
		return atomic.LoadInt64(&runs) >= 3
	}, time.Second, 5*time.Millisecond)

	// Still registered after multiple runs
	jobs := sched.Jobs()
	assert.Len(jobs, 1)
	assert.Equal("periodic", jobs[0].Name)
}

func TestCancelStopsJob(t *testing.T) {
	assert := assert.New(t)
	sched := New()
	defer sched.Stop()

	var runs int64
	id := sched.Every("cancelled", 10*time.Millisecond, 0, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
	})

	sched.Cancel(id)
	assert.Empty(sched.Jobs())

	// Let any in-flight run drain before sampling
	time.Sleep(30 * time.Millisecond)
	settled := atomic.LoadInt64(&runs)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(settled, atomic.LoadInt64(&runs))
}

func TestCancelAllClearsEverything(t *testing.T) {
	assert := assert.New(t)
	sched := New()
	defer sched.Stop()

	noop := func(ctx context.Context) {}
	sched.Every("a", time.Hour, time.Hour, noop)
	sched.Every("b", time.Hour, time.Hour, noop)
	sched.RunAt("c", time.Now().Add(time.Hour), noop)
	assert.Len(sched.Jobs(), 3)

	sched.CancelAll()
	assert.Empty(sched.Jobs())
}

func TestJobPanicDoesNotKillScheduler(t *testing.T) {
	assert := assert.New(t)
	sched := New()
	defer sched.Stop()

	var runs int64
	sched.Every("flaky", 10*time.Millisecond, 0, func(ctx context.Context) {
		atomic.AddInt64(&runs, 1)
		panic("boom")
	})

	assert.Eventually(func() bool {
		return atomic.LoadInt64(&runs) >= 2
	}, time.Second, 5*time.Millisecond)
}
