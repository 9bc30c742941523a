package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

// CronJobManager runs every registered job at the time returned by its Next
// method. A job is scheduled again only after its previous run returned, so
// runs of the same job never overlap.
type CronJobManager struct {
	mutex   sync.Mutex
	running sync.WaitGroup
	jobs    map[CronJob]*time.Timer
	done    chan struct{}
	once    sync.Once
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{
		jobs: make(map[CronJob]*time.Timer),
		done: make(chan struct{}),
	}
}

func (m *CronJobManager) Register(jobs ...CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, job := range jobs {
		m.jobs[job] = nil
	}
}

// Start blocks until ctx is done or Cancel is called. It returns after the
// runs in progress finished.
func (m *CronJobManager) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Cron job manager started")

	// A run in progress is completed even if ctx is canceled meanwhile.
	jobCtx := context.WithoutCancel(ctx)

	m.mutex.Lock()
	for job := range m.jobs {
		job := job
		if job.RunNow() {
			m.jobs[job] = time.AfterFunc(0, func() { m.run(jobCtx, job) })
		} else {
			m.scheduleLocked(jobCtx, job)
		}
	}
	m.mutex.Unlock()

	select {
	case <-ctx.Done():
		m.Cancel(ctx)
	case <-m.done:
	}

	m.running.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for job, timer := range m.jobs {
		if timer == nil {
			xcontext.Logger(ctx).Warnf("Stop a job that hasn't started: %T", job)
			continue
		}

		timer.Stop()
	}

	// Clear all jobs to not schedule them again.
	m.jobs = make(map[CronJob]*time.Timer)
	m.once.Do(func() { close(m.done) })
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	if _, ok := m.jobs[job]; !ok {
		m.mutex.Unlock()
		return
	}
	m.running.Add(1)
	m.mutex.Unlock()
	defer m.running.Done()

	xcontext.Logger(ctx).Debugf("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Debugf("%T ok", job)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.scheduleLocked(ctx, job)
}

func (m *CronJobManager) scheduleLocked(ctx context.Context, job CronJob) {
	// Only schedule jobs which still exist in the job list.
	if _, ok := m.jobs[job]; ok {
		m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() { m.run(ctx, job) })
	}
}
