package cron

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

type PriceRefresher interface {
	Refresh(ctx context.Context) error
	Len() int
}

type PriceRefreshCronJob struct {
	cache    PriceRefresher
	interval time.Duration
}

func NewPriceRefreshCronJob(cache PriceRefresher, interval time.Duration) *PriceRefreshCronJob {
	return &PriceRefreshCronJob{cache: cache, interval: interval}
}

func (job *PriceRefreshCronJob) Do(ctx context.Context) {
	if err := job.cache.Refresh(ctx); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh item prices: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Refreshed %d item prices", job.cache.Len())
}

func (job *PriceRefreshCronJob) RunNow() bool {
	return true
}

func (job *PriceRefreshCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
