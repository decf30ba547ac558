package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/logging"
	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
)

// Result counts what a synchronization did.  Failed units were logged
// and skipped; the call as a whole still succeeded.
type Result struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

func (r *Result) add(o Result) {
	r.Created += o.Created
	r.Updated += o.Updated
	r.Unchanged += o.Unchanged
	r.Removed += o.Removed
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// Synchronizer writes ScheduleEvents for shots and scenes.
type Synchronizer struct {
	store repository.Store
	log   *zap.Logger
	newID func() string
}

// NewSynchronizer returns a Synchronizer over store.  logger may be nil.
func NewSynchronizer(store repository.Store, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		store: store,
		log:   logging.WithComponent(logger, "schedule"),
		newID: uuid.NewString,
	}
}

// eventFields are the event fields mirrored from a shot or scene.
type eventFields struct {
	description  string
	sceneID      string
	sceneNumber  string
	castIDs      []string
	crewIDs      []string
	equipmentIDs []string
	locationID   string
	duration     int
	notes        string
}

// subject identifies whose events are being maintained.  match selects
// all of the subject's events regardless of day.
type subject struct {
	kind   string
	id     string
	match  []repository.Filter
	fields eventFields
}

func shotSubject(shot *model.Shot, scene *model.Scene) subject {
	var parentCast, parentCrew, parentEquipment, parentLocations []string
	var sceneNumber, sceneTitle string
	if scene != nil {
		parentCast, parentCrew, parentEquipment, parentLocations = scene.CastIDs, scene.CrewIDs, scene.EquipmentIDs, scene.LocationIDs
		sceneNumber, sceneTitle = scene.SceneNumber, scene.Title
	}
	locations := model.Resolve(shot.LocationIDs, parentLocations, nil)
	location := ""
	if len(locations) > 0 {
		location = locations[0]
	}
	return subject{
		kind:  "shot",
		id:    shot.ID,
		match: []repository.Filter{repository.Eq("shotId", shot.ID)},
		fields: eventFields{
			description:  describe(sceneNumber, shot.ShotNumber, model.ResolveString(shot.Title, sceneTitle, "")),
			sceneID:      shot.SceneID,
			sceneNumber:  sceneNumber,
			castIDs:      model.Resolve(shot.CastIDs, parentCast, nil),
			crewIDs:      model.Resolve(shot.CrewIDs, parentCrew, nil),
			equipmentIDs: model.Resolve(shot.EquipmentIDs, parentEquipment, nil),
			locationID:   location,
			duration:     shot.Duration,
			notes:        shot.Notes,
		},
	}
}

// sceneSubject covers scenes that have no shots yet; their events carry
// the scene id and no shot id.
func sceneSubject(scene *model.Scene) subject {
	return subject{
		kind:  "scene",
		id:    scene.ID,
		match: sceneLevelMatch(scene.ID),
		fields: eventFields{
			description:  describe(scene.SceneNumber, "", scene.Title),
			sceneID:      scene.ID,
			sceneNumber:  scene.SceneNumber,
			castIDs:      model.Resolve(scene.CastIDs, nil, nil),
			crewIDs:      model.Resolve(scene.CrewIDs, nil, nil),
			equipmentIDs: model.Resolve(scene.EquipmentIDs, nil, nil),
			locationID:   scene.PrimaryLocationID(),
		},
	}
}

func sceneLevelMatch(sceneID string) []repository.Filter {
	return []repository.Filter{repository.Eq("sceneId", sceneID), repository.Eq("shotId", "")}
}

func describe(sceneNumber, shotNumber, title string) string {
	var parts []string
	if sceneNumber != "" {
		parts = append(parts, "Sc. "+sceneNumber)
	}
	if shotNumber != "" {
		parts = append(parts, "Shot "+shotNumber)
	}
	label := strings.Join(parts, " / ")
	title = strings.TrimSpace(title)
	switch {
	case label == "":
		return title
	case title == "":
		return label
	default:
		return label + " - " + title
	}
}

// SyncShot ensures one event per requested shooting day for the shot
// and refreshes the mirrored fields of events that already exist.  A
// missing shot is an error; missing days are skipped with a warning.
func (s *Synchronizer) SyncShot(ctx context.Context, shotID string, dayIDs []string) (Result, error) {
	shot, err := repository.Get[model.Shot](ctx, s.store, repository.Shots, shotID)
	if err != nil {
		return Result{}, fmt.Errorf("load shot %s: %w", shotID, err)
	}
	scene := s.loadScene(ctx, shot.SceneID)
	res, _, err := s.upsert(ctx, shotSubject(shot, scene), dayIDs)
	return res, err
}

// SyncScene fans the scene's schedule out to its shots.  Each shot uses
// its own shooting days when it has any, else dayIDs (or the scene's
// stored days when dayIDs is nil).  A failing shot is logged and does
// not stop the others.  Scenes without shots get scene-level events.
func (s *Synchronizer) SyncScene(ctx context.Context, sceneID string, dayIDs []string) (Result, error) {
	scene, err := repository.Get[model.Scene](ctx, s.store, repository.Scenes, sceneID)
	if err != nil {
		return Result{}, fmt.Errorf("load scene %s: %w", sceneID, err)
	}
	days := dayIDs
	if days == nil {
		days = scene.ShootingDayIDs
	}
	shots, err := repository.Find[model.Shot](ctx, s.store, repository.Shots,
		repository.Where(repository.Eq("sceneId", sceneID)).Order("shotNumber", false))
	if err != nil {
		return Result{}, fmt.Errorf("load shots for scene %s: %w", sceneID, err)
	}
	if len(shots) == 0 {
		res, _, err := s.upsert(ctx, sceneSubject(scene), days)
		return res, err
	}

	var res Result
	covered := make(map[string]bool)
	for i := range shots {
		shot := &shots[i]
		shotDays := model.Resolve(shot.ShootingDayIDs, days, nil)
		if len(shotDays) == 0 {
			continue
		}
		r, onDays, err := s.upsert(ctx, shotSubject(shot, scene), shotDays)
		if err != nil {
			s.log.Error("shot sync failed", zap.String("scene_id", sceneID), zap.String("shot_id", shot.ID), zap.Error(err))
			res.Failed++
			continue
		}
		res.add(r)
		for _, d := range onDays {
			covered[d] = true
		}
	}
	res.Removed += s.dropScenePlaceholders(ctx, sceneID, covered)
	return res, nil
}

// dropScenePlaceholders removes scene-level events on the days where at
// least one of the scene's shots now has an event.  Placeholders on other
// days stay.
func (s *Synchronizer) dropScenePlaceholders(ctx context.Context, sceneID string, covered map[string]bool) int {
	if len(covered) == 0 {
		return 0
	}
	events, err := repository.Find[model.ScheduleEvent](ctx, s.store, repository.ScheduleEvents,
		repository.Where(sceneLevelMatch(sceneID)...))
	if err != nil {
		s.log.Error("load scene placeholders failed", zap.String("scene_id", sceneID), zap.Error(err))
		return 0
	}
	var writes []repository.Write
	for _, ev := range events {
		if covered[ev.ShootingDayID] {
			writes = append(writes, repository.Delete(repository.ScheduleEvents, ev.ID))
		}
	}
	if err := s.store.Commit(ctx, writes); err != nil {
		s.log.Error("remove scene placeholders failed", zap.String("scene_id", sceneID), zap.Error(err))
		return 0
	}
	return len(writes)
}

// ClearShot deletes every event of the shot, on every day.
func (s *Synchronizer) ClearShot(ctx context.Context, shotID string) (int, error) {
	return s.clear(ctx, repository.Where(repository.Eq("shotId", shotID)))
}

// ClearScene deletes every event linked to the scene, shot-level and
// scene-level alike.
func (s *Synchronizer) ClearScene(ctx context.Context, sceneID string) (int, error) {
	return s.clear(ctx, repository.Where(repository.Eq("sceneId", sceneID)))
}

func (s *Synchronizer) clear(ctx context.Context, q repository.Query) (int, error) {
	events, err := repository.Find[model.ScheduleEvent](ctx, s.store, repository.ScheduleEvents, q)
	if err != nil {
		return 0, err
	}
	writes := make([]repository.Write, 0, len(events))
	for _, ev := range events {
		writes = append(writes, repository.Delete(repository.ScheduleEvents, ev.ID))
	}
	if err := s.store.Commit(ctx, writes); err != nil {
		return 0, err
	}
	return len(writes), nil
}

func (s *Synchronizer) loadScene(ctx context.Context, sceneID string) *model.Scene {
	if sceneID == "" {
		return nil
	}
	scene, err := repository.Get[model.Scene](ctx, s.store, repository.Scenes, sceneID)
	if err != nil {
		s.log.Warn("parent scene unavailable, no fallback values", zap.String("scene_id", sceneID), zap.Error(err))
		return nil
	}
	return scene
}

// upsert is the per-subject algorithm: existing events on requested
// days are refreshed, missing ones are appended to their day.  Each day
// is its own batch so one failing day leaves the others applied.  It
// also returns the days on which the subject now has an event.
func (s *Synchronizer) upsert(ctx context.Context, sub subject, dayIDs []string) (Result, []string, error) {
	var (
		res    Result
		onDays []string
	)
	existing, err := repository.Find[model.ScheduleEvent](ctx, s.store, repository.ScheduleEvents,
		repository.Where(sub.match...).Order("order", false))
	if err != nil {
		return res, nil, fmt.Errorf("load events for %s %s: %w", sub.kind, sub.id, err)
	}
	byDay := make(map[string][]model.ScheduleEvent)
	for _, ev := range existing {
		byDay[ev.ShootingDayID] = append(byDay[ev.ShootingDayID], ev)
	}

	for _, dayID := range repository.Unique(dayIDs) {
		var (
			r   Result
			err error
		)
		if evs, ok := byDay[dayID]; ok {
			r, err = s.refresh(ctx, sub, evs)
		} else {
			r, err = s.create(ctx, sub, dayID)
		}
		if err != nil {
			s.log.Error("schedule event sync failed",
				zap.String(sub.kind+"_id", sub.id), zap.String("shooting_day_id", dayID), zap.Error(err))
			res.Failed++
			continue
		}
		res.add(r)
		if r.Created+r.Updated+r.Unchanged > 0 {
			onDays = append(onDays, dayID)
		}
	}
	s.log.Debug("schedule synced", zap.String(sub.kind+"_id", sub.id),
		zap.Int("created", res.Created), zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped), zap.Int("failed", res.Failed))
	return res, onDays, nil
}

// refresh updates the first event of a day and deletes any duplicates
// so the (subject, day) pair maps to exactly one event.
func (s *Synchronizer) refresh(ctx context.Context, sub subject, evs []model.ScheduleEvent) (Result, error) {
	var res Result
	var writes []repository.Write
	keep := evs[0]
	if sub.fields.differs(&keep) {
		writes = append(writes, repository.Update(repository.ScheduleEvents, keep.ID, sub.fields.updates()))
		res.Updated++
	} else {
		res.Unchanged++
	}
	for _, dup := range evs[1:] {
		writes = append(writes, repository.Delete(repository.ScheduleEvents, dup.ID))
		res.Removed++
	}
	if err := s.store.Commit(ctx, writes); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Synchronizer) create(ctx context.Context, sub subject, dayID string) (Result, error) {
	if _, err := repository.Get[model.ShootingDay](ctx, s.store, repository.ShootingDays, dayID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("shooting day not found, skipping", zap.String(sub.kind+"_id", sub.id), zap.String("shooting_day_id", dayID))
			return Result{Skipped: 1}, nil
		}
		return Result{}, err
	}

	last, err := repository.Find[model.ScheduleEvent](ctx, s.store, repository.ScheduleEvents,
		repository.Where(repository.Eq("shootingDayId", dayID)).Order("order", true).Take(1))
	if err != nil {
		return Result{}, fmt.Errorf("load day order: %w", err)
	}
	order := 0
	if len(last) > 0 {
		order = last[0].Order + 1
	}

	// Re-check right before inserting: another request may have created
	// the event since the subject's events were loaded.
	guard := append(slices.Clone(sub.match), repository.Eq("shootingDayId", dayID))
	dups, err := repository.Find[model.ScheduleEvent](ctx, s.store, repository.ScheduleEvents,
		repository.Where(guard...).Order("order", false))
	if err != nil {
		return Result{}, fmt.Errorf("duplicate guard: %w", err)
	}
	if len(dups) > 0 {
		return s.refresh(ctx, sub, dups)
	}

	ev := sub.fields.newEvent(s.newID(), dayID, order)
	if sub.kind == "shot" {
		ev.ShotID = sub.id
	}
	if err := s.store.Commit(ctx, []repository.Write{repository.Set(repository.ScheduleEvents, ev.ID, ev)}); err != nil {
		return Result{}, err
	}
	return Result{Created: 1}, nil
}

func (f eventFields) newEvent(id, dayID string, order int) model.ScheduleEvent {
	return model.ScheduleEvent{
		ID:            id,
		ShootingDayID: dayID,
		Type:          model.EventScene,
		Order:         order,
		Description:   f.description,
		SceneID:       f.sceneID,
		SceneNumber:   f.sceneNumber,
		CastIDs:       f.castIDs,
		CrewIDs:       f.crewIDs,
		EquipmentIDs:  f.equipmentIDs,
		LocationID:    f.locationID,
		Duration:      f.duration,
		Notes:         f.notes,
	}
}

func (f eventFields) differs(ev *model.ScheduleEvent) bool {
	return ev.Description != f.description ||
		ev.SceneID != f.sceneID ||
		ev.SceneNumber != f.sceneNumber ||
		ev.LocationID != f.locationID ||
		ev.Duration != f.duration ||
		ev.Notes != f.notes ||
		!slices.Equal(ev.CastIDs, f.castIDs) ||
		!slices.Equal(ev.CrewIDs, f.crewIDs) ||
		!slices.Equal(ev.EquipmentIDs, f.equipmentIDs)
}

// updates renders the mirrored fields as a merge; zero values remove
// the field so stored documents match their omitempty encoding.
func (f eventFields) updates() map[string]any {
	m := make(map[string]any, 9)
	str := func(k, v string) {
		if v == "" {
			m[k] = nil
		} else {
			m[k] = v
		}
	}
	ids := func(k string, v []string) {
		if len(v) == 0 {
			m[k] = nil
		} else {
			m[k] = v
		}
	}
	str("description", f.description)
	str("sceneId", f.sceneID)
	str("sceneNumber", f.sceneNumber)
	str("locationId", f.locationID)
	str("notes", f.notes)
	ids("castIds", f.castIDs)
	ids("crewIds", f.crewIDs)
	ids("equipmentIds", f.equipmentIDs)
	if f.duration == 0 {
		m["duration"] = nil
	} else {
		m["duration"] = f.duration
	}
	return m
}
