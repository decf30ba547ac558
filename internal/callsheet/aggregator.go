// Package callsheet gathers everything a shooting day's call sheet
// prints and derives the sheet's computed fields.  Get reads the store;
// Build is pure and returns the same Sheet for the same Data.
package callsheet

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/logging"
	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
)

// Data is the raw material of a call sheet.  Slices hold only records
// that still exist, in first-referenced order.
type Data struct {
	ShootingDay model.ShootingDay     `json:"shootingDay"`
	Events      []model.ScheduleEvent `json:"events"`
	Scenes      []model.Scene         `json:"scenes"`
	Shots       []model.Shot          `json:"shots"`
	Cast        []model.CastMember    `json:"cast"`
	Crew        []model.CrewMember    `json:"crew"`
	Equipment   []model.Equipment     `json:"equipment"`
	Locations   []model.Location      `json:"locations"`
}

// Aggregator loads call sheet Data from the store.
type Aggregator struct {
	store repository.Store
	log   *zap.Logger
}

// NewAggregator returns an Aggregator over store.  logger may be nil.
func NewAggregator(store repository.Store, logger *zap.Logger) *Aggregator {
	return &Aggregator{store: store, log: logging.WithComponent(logger, "callsheet")}
}

// idSet collects ids in first-seen order.
type idSet struct {
	seen map[string]bool
	ids  []string
}

func (s *idSet) add(ids ...string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	for _, id := range ids {
		if id == "" || s.seen[id] {
			continue
		}
		s.seen[id] = true
		s.ids = append(s.ids, id)
	}
}

// Get loads the shooting day, its events and every record the events,
// their scenes and the day's own slots reference.  Each collection is
// fetched once; ids that no longer resolve are dropped.
func (a *Aggregator) Get(ctx context.Context, dayID string) (*Data, error) {
	day, err := repository.Get[model.ShootingDay](ctx, a.store, repository.ShootingDays, dayID)
	if err != nil {
		return nil, fmt.Errorf("load shooting day %s: %w", dayID, err)
	}
	events, err := repository.Find[model.ScheduleEvent](ctx, a.store, repository.ScheduleEvents,
		repository.Where(repository.Eq("shootingDayId", dayID)).Order("order", false))
	if err != nil {
		return nil, fmt.Errorf("load events for day %s: %w", dayID, err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Order != events[j].Order {
			return events[i].Order < events[j].Order
		}
		return events[i].Time < events[j].Time
	})

	var sceneIDs, shotIDs, castIDs, crewIDs, equipmentIDs, locationIDs idSet
	for _, e := range events {
		sceneIDs.add(e.SceneID)
		shotIDs.add(e.ShotID)
		castIDs.add(e.CastIDs...)
		crewIDs.add(e.CrewIDs...)
		equipmentIDs.add(e.EquipmentIDs...)
		locationIDs.add(e.LocationID)
	}

	scenes, err := repository.GetMany[model.Scene](ctx, a.store, repository.Scenes, sceneIDs.ids)
	if err != nil {
		return nil, err
	}
	for _, sc := range scenes {
		castIDs.add(sc.CastIDs...)
		crewIDs.add(sc.CrewIDs...)
		equipmentIDs.add(sc.EquipmentIDs...)
		locationIDs.add(sc.LocationIDs...)
	}
	locationIDs.add(day.LocationSlotIDs()...)
	crewIDs.add(day.KeyContactIDs()...)

	data := &Data{ShootingDay: *day, Events: events, Scenes: scenes}
	if data.Shots, err = repository.GetMany[model.Shot](ctx, a.store, repository.Shots, shotIDs.ids); err != nil {
		return nil, err
	}
	if data.Cast, err = repository.GetMany[model.CastMember](ctx, a.store, repository.Cast, castIDs.ids); err != nil {
		return nil, err
	}
	if data.Crew, err = repository.GetMany[model.CrewMember](ctx, a.store, repository.Crew, crewIDs.ids); err != nil {
		return nil, err
	}
	if data.Equipment, err = repository.GetMany[model.Equipment](ctx, a.store, repository.Equipment, equipmentIDs.ids); err != nil {
		return nil, err
	}
	if data.Locations, err = repository.GetMany[model.Location](ctx, a.store, repository.Locations, locationIDs.ids); err != nil {
		return nil, err
	}

	dropped := len(sceneIDs.ids) - len(data.Scenes) +
		len(shotIDs.ids) - len(data.Shots) +
		len(castIDs.ids) - len(data.Cast) +
		len(crewIDs.ids) - len(data.Crew) +
		len(equipmentIDs.ids) - len(data.Equipment) +
		len(locationIDs.ids) - len(data.Locations)
	if dropped > 0 {
		a.log.Debug("call sheet references missing records",
			zap.String("shooting_day_id", dayID), zap.Int("dropped", dropped))
	}
	return data, nil
}
