package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	ev := SyncCompletedEvent{
		Operation: "schedule.sync_shot", Subject: "shot", SubjectID: "sh1", Actor: "u1",
		Counts:      map[string]int{"updated": 1, "created": 2},
		CompletedAt: "2026-03-02T08:00:00Z",
	}
	assert.Equal(t,
		"[2026-03-02T08:00:00Z] Sync completed | operation=schedule.sync_shot | shot_id=sh1 | actor=u1 | created=2 updated=1\n",
		FormatLine(ev))
}

func TestConsumerHandleAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := NewConsumer("amqp://unused/", dir, nil)

	for _, id := range []string{"sc1", "sc2"} {
		body, err := json.Marshal(NewSyncCompletedEvent("schedule.sync_scene", "scene", id, "u1", nil))
		require.NoError(t, err)
		require.NoError(t, c.Handle(body))
	}
	assert.Error(t, c.Handle([]byte("{not json")))

	data, err := os.ReadFile(filepath.Join(dir, SyncLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "scene_id=sc1")
	assert.Contains(t, string(data), "scene_id=sc2")
}

func TestConsumerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewConsumer("amqp://127.0.0.1:1/", t.TempDir(), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishSyncCompleted(context.Background(), SyncCompletedEvent{}))
}
