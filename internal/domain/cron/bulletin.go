package cron

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
)

type BulletinCronJob struct {
	engine   lifecycle.Engine
	interval time.Duration
}

func NewBulletinCronJob(engine lifecycle.Engine, interval time.Duration) *BulletinCronJob {
	return &BulletinCronJob{engine: engine, interval: interval}
}

func (job *BulletinCronJob) Do(ctx context.Context) {
	runStage(ctx, lifecycle.KindBulletin, job.engine.PostBulletin)
}

func (job *BulletinCronJob) RunNow() bool {
	return false
}

func (job *BulletinCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
