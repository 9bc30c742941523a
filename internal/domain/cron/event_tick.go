package cron

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/questx-lab/taskmaster/internal/common"
	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

// EventTickCronJob drives the lifecycle of every event kind. A failing kind
// never prevents the next kinds from being processed.
type EventTickCronJob struct {
	engine   lifecycle.Engine
	interval time.Duration
}

func NewEventTickCronJob(engine lifecycle.Engine, interval time.Duration) *EventTickCronJob {
	return &EventTickCronJob{engine: engine, interval: interval}
}

func (job *EventTickCronJob) Do(ctx context.Context) {
	stages := []struct {
		kind string
		fn   func(context.Context) error
	}{
		{kind: lifecycle.KindRecap, fn: job.engine.ProcessRecap},
		{kind: lifecycle.KindCompetition, fn: job.engine.ProcessCompetitions},
		{kind: lifecycle.KindRaffle, fn: job.engine.ProcessRaffles},
		{kind: lifecycle.KindGiveaway, fn: job.engine.ProcessGiveaways},
		{kind: lifecycle.KindActivity, fn: job.engine.ProcessActivities},
	}

	for _, stage := range stages {
		runStage(ctx, stage.kind, stage.fn)
	}
}

func (job *EventTickCronJob) RunNow() bool {
	return true
}

func (job *EventTickCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}

func runStage(ctx context.Context, kind string, fn func(context.Context) error) {
	start := time.Now()
	result := "ok"

	defer func() {
		if r := recover(); r != nil {
			result = "panic"
			xcontext.Logger(ctx).Errorf("Panic while processing %s: %v\n%s", kind, r, debug.Stack())
		}

		common.PromCounters[common.SchedulerTickTotal].WithLabelValues(kind, result).Inc()
		common.PromHistograms[common.SchedulerTickDurationSeconds].WithLabelValues(kind).
			Observe(time.Since(start).Seconds())
	}()

	if err := fn(ctx); err != nil {
		result = "error"
		xcontext.Logger(ctx).Errorf("Cannot process %s: %v", kind, err)
	}
}
