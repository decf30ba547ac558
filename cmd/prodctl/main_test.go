package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/production-planner/internal/budget"
	"github.com/iliyamo/production-planner/internal/config"
	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
	"github.com/iliyamo/production-planner/internal/utils"
)

// useMemoryStore points the commands at a seeded in-memory store.
func useMemoryStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Put(repository.ShootingDays, "d1", model.ShootingDay{ID: "d1", Date: "2026-03-02", DayNumber: 1, CallTime: "07:00"}))
	require.NoError(t, store.Put(repository.Scenes, "sc1", model.Scene{ID: "sc1", SceneNumber: "9", Title: "Roof",
		PageCount: "2/8", CastIDs: []string{"c1"}, ShootingDayIDs: []string{"d1"}}))
	require.NoError(t, store.Put(repository.Shots, "sh1", model.Shot{ID: "sh1", SceneID: "sc1", ShotNumber: "A"}))
	require.NoError(t, store.Put(repository.Cast, "c1", model.CastMember{ID: "c1", ActorName: "Ruth", CharacterName: "Ivy", DayRate: 400}))

	prev := openStore
	openStore = func(context.Context) (repository.Store, func(), error) { return store, func() {}, nil }
	t.Cleanup(func() { openStore = prev })
	return store
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func decodeOut(t *testing.T, out string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m), out)
	return m
}

func TestSyncShotAndClear(t *testing.T) {
	store := useMemoryStore(t)

	out, err := run(t, "sync-shot", "sh1", "d1", "d-gone")
	require.NoError(t, err)
	res := decodeOut(t, out)
	assert.Equal(t, float64(1), res["created"])
	assert.Equal(t, float64(1), res["skipped"])
	assert.Equal(t, 1, store.Count(repository.ScheduleEvents))

	out, err = run(t, "clear-shot", "sh1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), decodeOut(t, out)["removed"])
	assert.Zero(t, store.Count(repository.ScheduleEvents))
}

func TestAddShotInheritsScene(t *testing.T) {
	store := useMemoryStore(t)

	out, err := run(t, "add-shot", "sc1", "B", "--crew", "cr9", "--schedule")
	require.NoError(t, err)
	res := decodeOut(t, out)
	shot, ok := res["shot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sc1", shot["sceneId"])
	assert.Equal(t, []any{"c1"}, shot["castIds"])
	assert.Equal(t, []any{"cr9"}, shot["crewIds"])
	assert.Equal(t, []any{"d1"}, shot["shootingDayIds"])
	assert.Equal(t, float64(1), res["schedule"].(map[string]any)["created"])
	assert.Equal(t, 2, store.Count(repository.Shots))
	assert.Equal(t, 1, store.Count(repository.ScheduleEvents))

	out, err = run(t, "add-shot", "sc1", "C", "--days", "d2")
	require.NoError(t, err)
	res = decodeOut(t, out)
	assert.Equal(t, []any{"d2"}, res["shot"].(map[string]any)["shootingDayIds"])
	assert.NotContains(t, res, "schedule")

	_, err = run(t, "add-shot", "missing", "A")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSyncSceneUsesStoredDays(t *testing.T) {
	store := useMemoryStore(t)

	out, err := run(t, "sync-scene", "sc1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), decodeOut(t, out)["created"])
	assert.Equal(t, 1, store.Count(repository.ScheduleEvents))

	out, err = run(t, "conflicts", "d1", "--cast", "c1,c2", "--exclude-scene", "sc1")
	require.NoError(t, err)
	assert.Equal(t, []any{}, decodeOut(t, out)["cast"])

	out, err = run(t, "conflicts", "d1", "--cast", "c1,c2")
	require.NoError(t, err)
	assert.Equal(t, []any{"c1"}, decodeOut(t, out)["cast"])
}

func TestBudgetCommands(t *testing.T) {
	store := useMemoryStore(t)

	out, err := run(t, "scene-budget", "sc1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), decodeOut(t, out)["created"])

	require.NoError(t, store.Commit(context.Background(), []repository.Write{
		repository.Update(repository.Cast, "c1", map[string]any{"dayRate": 450}),
	}))
	out, err = run(t, "link-sync", "cast", "c1", "--prior-rate", "400")
	require.NoError(t, err)
	assert.Equal(t, float64(1), decodeOut(t, out)["rated"])

	out, err = run(t, "unlink", "cast", "c1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), decodeOut(t, out)["unlinked"])

	_, err = run(t, "link-sync", "vehicle", "v1")
	assert.ErrorIs(t, err, budget.ErrUnknownResource)
	_, err = run(t, "scene-budget", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCallSheetCommand(t *testing.T) {
	useMemoryStore(t)
	_, err := run(t, "sync-scene", "sc1")
	require.NoError(t, err)

	out, err := run(t, "call-sheet", "d1")
	require.NoError(t, err)
	sheet := decodeOut(t, out)
	assert.Equal(t, "2/8", sheet["total_pages"])
	assert.Len(t, sheet["principal_cast"], 1)

	out, err = run(t, "call-sheet", "d1", "--raw")
	require.NoError(t, err)
	assert.Contains(t, decodeOut(t, out), "shootingDay")
}

func TestTokenCommand(t *testing.T) {
	prev := loadConfig
	loadConfig = func() config.Config { return config.Config{JWTSecret: "cli-secret", AccessTTLMin: 15} }
	t.Cleanup(func() { loadConfig = prev })

	out, err := run(t, "token", "ops", "--role", "admin")
	require.NoError(t, err)
	raw, ok := decodeOut(t, out)["token"].(string)
	require.True(t, ok)

	claims, err := utils.ParseAccessToken("cli-secret", raw)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	loadConfig = func() config.Config { return config.Config{} }
	_, err = run(t, "token", "ops")
	assert.Error(t, err)
}
