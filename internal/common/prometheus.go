package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal             = "http_requests_total"
	SchedulerTickTotal           = "scheduler_tick_total"
	LifecycleTransitionTotal     = "lifecycle_transition_total"
	NotificationFailureTotal     = "notification_failure_total"
	SchedulerTickDurationSeconds = "scheduler_tick_duration_seconds"
	HTTPRequestDurationSeconds   = "http_request_duration_seconds"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		SchedulerTickTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: SchedulerTickTotal,
			Help: "Count of event kind processing per tick",
		}, []string{"kind", "result"}),
		LifecycleTransitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LifecycleTransitionTotal,
			Help: "Count of committed lifecycle transitions",
		}, []string{"kind", "transition"}),
		NotificationFailureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: NotificationFailureTotal,
			Help: "Count of failed chat platform calls",
		}, []string{"kind"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		SchedulerTickDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: SchedulerTickDurationSeconds,
			Help: "Duration of event kind processing",
		}, []string{"kind"}),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of HTTP requests",
		}, []string{"method", "status_code"}),
	}
)
