package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context) error
	RunNow() bool
	Next() time.Time
}

// CronJobManager runs every registered job on its own timer. A job pass which
// fails or panics is logged and the job is scheduled again as usual.
type CronJobManager struct {
	mutex    sync.Mutex
	running  bool
	stopped  chan struct{}
	inflight sync.WaitGroup
	jobs     map[CronJob]*time.Timer

	// generation is bumped by every Start. Passes and timers of an earlier
	// generation never schedule again.
	generation uint64
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{jobs: make(map[CronJob]*time.Timer)}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.jobs[job] = nil
}

// Start schedules all jobs and returns immediately. Jobs which RunNow start
// their first pass right away. Calling Start on a running manager does
// nothing. The manager stops by itself when ctx is done.
func (m *CronJobManager) Start(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.running {
		xcontext.Logger(ctx).Warnf("Cron job manager is already running")
		return
	}

	m.running = true
	m.stopped = make(chan struct{})
	m.generation++

	for job := range m.jobs {
		if job.RunNow() {
			m.inflight.Add(1)
			go m.run(ctx, m.generation, job)
		} else {
			m.scheduleLocked(ctx, m.generation, job)
		}
	}

	go func(stopped chan struct{}) {
		select {
		case <-ctx.Done():
			m.Stop(ctx)
		case <-stopped:
		}
	}(m.stopped)

	xcontext.Logger(ctx).Infof("Cron job manager started")
}

// Stop cancels all future passes. Passes which are running keep going, use
// Wait to block until they finish.
func (m *CronJobManager) Stop(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.running {
		return
	}

	m.running = false
	for job, timer := range m.jobs {
		if timer != nil {
			timer.Stop()
		}

		m.jobs[job] = nil
	}

	close(m.stopped)
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

// Wait blocks until the manager is stopped and no pass is running.
func (m *CronJobManager) Wait() {
	m.mutex.Lock()
	stopped := m.stopped
	m.mutex.Unlock()

	if stopped != nil {
		<-stopped
	}

	m.inflight.Wait()
}

func (m *CronJobManager) IsRunning() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.running
}

func (m *CronJobManager) run(ctx context.Context, generation uint64, job CronJob) {
	defer m.inflight.Done()
	defer m.schedule(ctx, generation, job)

	defer func() {
		if r := recover(); r != nil {
			xcontext.Logger(ctx).Errorf("%T panicked: %v", job, r)
		}
	}()

	xcontext.Logger(ctx).Debugf("%T is running...", job)
	if err := job.Do(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("%T failed: %v", job, err)
		return
	}

	xcontext.Logger(ctx).Debugf("%T ok", job)
}

func (m *CronJobManager) schedule(ctx context.Context, generation uint64, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.scheduleLocked(ctx, generation, job)
}

func (m *CronJobManager) scheduleLocked(ctx context.Context, generation uint64, job CronJob) {
	if !m.running || generation != m.generation {
		return
	}

	// Only schedule jobs which existed in job list.
	if _, ok := m.jobs[job]; ok {
		m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() {
			if m.begin(generation) {
				m.run(ctx, generation, job)
			}
		})
	}
}

// begin registers a pass which is about to run, unless the manager was
// stopped or restarted after the timer fired.
func (m *CronJobManager) begin(generation uint64) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.running || generation != m.generation {
		return false
	}

	m.inflight.Add(1)
	return true
}
