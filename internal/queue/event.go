// Package queue carries sync.completed events over RabbitMQ: handlers
// publish one per sync call, and the consumer appends them to an audit log.
package queue

import "time"

// SyncCompletedQueue is the durable queue sync events are published to.
const SyncCompletedQueue = "sync.completed"

// SyncCompletedEvent records the outcome of one synchronization call.
type SyncCompletedEvent struct {
	Operation   string         `json:"operation"` // e.g. "schedule.sync_shot", "budget.unlink"
	Subject     string         `json:"subject"`   // shot, scene, crew, cast, budget_item, ...
	SubjectID   string         `json:"subject_id"`
	Actor       string         `json:"actor"`
	Counts      map[string]int `json:"counts,omitempty"`
	CompletedAt string         `json:"completed_at"`
}

// NewSyncCompletedEvent stamps an event with the current UTC time.
func NewSyncCompletedEvent(operation, subject, subjectID, actor string, counts map[string]int) SyncCompletedEvent {
	return SyncCompletedEvent{
		Operation:   operation,
		Subject:     subject,
		SubjectID:   subjectID,
		Actor:       actor,
		Counts:      counts,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
