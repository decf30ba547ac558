package schedule

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/logging"
	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
)

// ConflictQuery is the candidate booking to check against a day.
type ConflictQuery struct {
	ShootingDayID string   `json:"shooting_day_id"`
	SceneID       string   `json:"scene_id"`
	CastIDs       []string `json:"cast_ids"`
	CrewIDs       []string `json:"crew_ids"`
	EquipmentIDs  []string `json:"equipment_ids"`
	LocationID    string   `json:"location_id"`
}

func (q ConflictQuery) empty() bool {
	return len(q.CastIDs) == 0 && len(q.CrewIDs) == 0 && len(q.EquipmentIDs) == 0 && q.LocationID == ""
}

// ConflictReport lists the requested resources that are already booked
// elsewhere on the day.  It is informational; nothing is rejected.
type ConflictReport struct {
	Crew      []string `json:"crew"`
	Cast      []string `json:"cast"`
	Equipment []string `json:"equipment"`
	Location  bool     `json:"location"`
}

// Empty reports whether no conflict was found.
func (r ConflictReport) Empty() bool {
	return len(r.Crew) == 0 && len(r.Cast) == 0 && len(r.Equipment) == 0 && !r.Location
}

// Detector finds double-bookings within a shooting day.
type Detector struct {
	store repository.Store
	log   *zap.Logger
}

// NewDetector returns a Detector over store.  logger may be nil.
func NewDetector(store repository.Store, logger *zap.Logger) *Detector {
	return &Detector{store: store, log: logging.WithComponent(logger, "conflicts")}
}

// FindConflicts intersects the query's resources with everything booked
// on the day by other scenes: the day's events not linked to
// q.SceneID, and the scenes flagged with the day other than q.SceneID.
func (d *Detector) FindConflicts(ctx context.Context, q ConflictQuery) (ConflictReport, error) {
	report := ConflictReport{Crew: []string{}, Cast: []string{}, Equipment: []string{}}
	if q.empty() {
		return report, nil
	}

	events, err := repository.Find[model.ScheduleEvent](ctx, d.store, repository.ScheduleEvents,
		repository.Where(repository.Eq("shootingDayId", q.ShootingDayID)))
	if err != nil {
		return report, fmt.Errorf("load events for day %s: %w", q.ShootingDayID, err)
	}
	scenes, err := repository.Find[model.Scene](ctx, d.store, repository.Scenes,
		repository.Where(repository.Contains("shootingDayIds", q.ShootingDayID)))
	if err != nil {
		return report, fmt.Errorf("load scenes for day %s: %w", q.ShootingDayID, err)
	}

	booked := newBookings()
	for _, ev := range events {
		if q.SceneID != "" && ev.SceneID == q.SceneID {
			continue
		}
		booked.add(ev.CastIDs, ev.CrewIDs, ev.EquipmentIDs)
		if ev.LocationID != "" && ev.LocationID == q.LocationID {
			report.Location = true
		}
	}
	for _, sc := range scenes {
		if sc.ID == q.SceneID {
			continue
		}
		booked.add(sc.CastIDs, sc.CrewIDs, sc.EquipmentIDs)
		if q.LocationID != "" && slices.Contains(sc.LocationIDs, q.LocationID) {
			report.Location = true
		}
	}

	report.Cast = intersect(q.CastIDs, booked.cast)
	report.Crew = intersect(q.CrewIDs, booked.crew)
	report.Equipment = intersect(q.EquipmentIDs, booked.equipment)
	if !report.Empty() {
		d.log.Debug("booking conflicts found", zap.String("shooting_day_id", q.ShootingDayID),
			zap.String("scene_id", q.SceneID), zap.Strings("cast", report.Cast),
			zap.Strings("crew", report.Crew), zap.Strings("equipment", report.Equipment),
			zap.Bool("location", report.Location))
	}
	return report, nil
}

type bookings struct {
	cast, crew, equipment map[string]bool
}

func newBookings() *bookings {
	return &bookings{cast: map[string]bool{}, crew: map[string]bool{}, equipment: map[string]bool{}}
}

func (b *bookings) add(cast, crew, equipment []string) {
	for _, id := range cast {
		b.cast[id] = true
	}
	for _, id := range crew {
		b.crew[id] = true
	}
	for _, id := range equipment {
		b.equipment[id] = true
	}
}

// intersect keeps the wanted ids that are booked, in input order.
func intersect(want []string, booked map[string]bool) []string {
	out := []string{}
	for _, id := range repository.Unique(want) {
		if booked[id] {
			out = append(out, id)
		}
	}
	return out
}
