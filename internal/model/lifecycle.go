package model

import "time"

// LifecycleEvent is published every time a lifecycle transition is
// committed.
type LifecycleEvent struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	EventID    int64          `json:"event_id"`
	Transition string         `json:"transition"`
	At         time.Time      `json:"at"`
	Data       map[string]any `json:"data,omitempty"`
}
