package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bot-swatter/internal/crash"
	"bot-swatter/internal/logger"
)

// JobInfo describes a scheduled job.
type JobInfo struct {
	ID   string
	Name string
}

type job struct {
	id     string
	name   string
	cancel context.CancelFunc
}

// Scheduler runs named periodic and one-shot jobs on goroutines. Jobs of the
// same name may coexist; callers that need a clean slate use CancelAll and
// re-arm (the startup reconciliation path).
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	jobs   map[string]*job
	nextID int
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*job),
	}
}

// Every schedules fn to run every interval, with the first run delayed by
// offset. Randomized offsets keep many installations from sweeping in step.
func (s *Scheduler) Every(name string, interval, offset time.Duration, fn func(context.Context)) string {
	jobCtx, jobCancel := context.WithCancel(s.ctx)
	id := s.add(name, jobCancel)

	crash.SafeGoroutine("job-"+name, func() {
		select {
		case <-time.After(offset):
		case <-jobCtx.Done():
			return
		}

		s.runOnce(jobCtx, name, fn)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce(jobCtx, name, fn)
			case <-jobCtx.Done():
				return
			}
		}
	})

	logger.Infof("Scheduled job %s (%s): every %v, first run in %v", id, name, interval, offset)
	return id
}

// RunAt schedules fn to run once at the given time.
func (s *Scheduler) RunAt(name string, at time.Time, fn func(context.Context)) string {
	jobCtx, jobCancel := context.WithCancel(s.ctx)
	id := s.add(name, jobCancel)

	crash.SafeGoroutine("job-"+name, func() {
		defer s.remove(id)

		select {
		case <-time.After(time.Until(at)):
			s.runOnce(jobCtx, name, fn)
		case <-jobCtx.Done():
		}
	})

	logger.Infof("Scheduled one-shot job %s (%s) at %v", id, name, at.Format(time.RFC3339))
	return id
}

// Jobs lists the currently scheduled jobs.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		infos = append(infos, JobInfo{ID: j.id, Name: j.name})
	}
	return infos
}

// Cancel stops a single job.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	j, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	if ok {
		j.cancel()
	}
}

// CancelAll stops every scheduled job.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	jobs := s.jobs
	s.jobs = make(map[string]*job)
	s.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
	}
}

// Stop cancels all jobs and shuts the scheduler down.
func (s *Scheduler) Stop() {
	s.cancel()
	s.CancelAll()
}

func (s *Scheduler) add(name string, cancel context.CancelFunc) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := fmt.Sprintf("job-%d", s.nextID)
	s.jobs[id] = &job{id: id, name: name, cancel: cancel}
	return id
}

func (s *Scheduler) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *Scheduler) runOnce(ctx context.Context, name string, fn func(context.Context)) {
	if ctx.Err() != nil {
		return
	}
	defer crash.RecoverWithStack("job-" + name)
	fn(ctx)
}
