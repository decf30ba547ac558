package budget

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/logging"
	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
)

// Resource names a kind of record budget items can be linked to.
type Resource string

const (
	ResourceCrew      Resource = "crew"
	ResourceCast      Resource = "cast"
	ResourceEquipment Resource = "equipment"
	ResourceLocation  Resource = "location"
	ResourceScene     Resource = "scene"
)

// ErrUnknownResource is returned for resource kinds outside the table.
var ErrUnknownResource = errors.New("unknown resource kind")

// linkFields maps each resource kind to the budget item field holding
// its id.
var linkFields = map[Resource]string{
	ResourceCrew:      "linkedCrewId",
	ResourceCast:      "linkedCastId",
	ResourceEquipment: "linkedEquipmentId",
	ResourceLocation:  "linkedLocationId",
	ResourceScene:     "linkedSceneId",
}

// ParseResource validates a resource kind.
func ParseResource(s string) (Resource, error) {
	r := Resource(s)
	if _, ok := linkFields[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
	}
	return r, nil
}

// Changes describes an edit to a resource.  The prior rates are the
// values before the edit; nil means that rate was not touched.
type Changes struct {
	PriorRate       *float64 `json:"prior_rate,omitempty"`
	PriorWeeklyRate *float64 `json:"prior_weekly_rate,omitempty"`
}

// LinkResult counts the outcome of a forward sync.
type LinkResult struct {
	Items     int `json:"items"`
	Described int `json:"described"`
	Rated     int `json:"rated"`
	Drifted   int `json:"drifted"`
}

// Linker runs the forward, reverse and unlink synchronizations.
type Linker struct {
	store repository.Store
	log   *zap.Logger
}

// NewLinker returns a Linker over store.  logger may be nil.
func NewLinker(store repository.Store, logger *zap.Logger) *Linker {
	return &Linker{store: store, log: logging.WithComponent(logger, "budget")}
}

// rateSource yields (prior, current, changed) for one item.
type rateSource func(item *model.BudgetItem) (float64, float64, bool)

func rateChange(prior *float64, current float64) (float64, float64, bool) {
	if prior == nil || *prior == current {
		return 0, 0, false
	}
	return *prior, current, true
}

// Sync dispatches a forward sync on the resource kind.
func (l *Linker) Sync(ctx context.Context, kind Resource, id string, ch Changes) (LinkResult, error) {
	switch kind {
	case ResourceCrew:
		return l.SyncCrew(ctx, id, ch)
	case ResourceCast:
		return l.SyncCast(ctx, id, ch)
	case ResourceEquipment:
		return l.SyncEquipment(ctx, id, ch)
	case ResourceLocation:
		return l.SyncLocation(ctx, id, ch)
	}
	return LinkResult{}, fmt.Errorf("%w: %q", ErrUnknownResource, kind)
}

// SyncCrew refreshes the items linked to a crew member.
func (l *Linker) SyncCrew(ctx context.Context, id string, ch Changes) (LinkResult, error) {
	crew, err := repository.Get[model.CrewMember](ctx, l.store, repository.Crew, id)
	if err != nil {
		return LinkResult{}, fmt.Errorf("load crew %s: %w", id, err)
	}
	return l.syncLinked(ctx, ResourceCrew, id, crew.BudgetDescription(), func(*model.BudgetItem) (float64, float64, bool) {
		return rateChange(ch.PriorRate, crew.Rate)
	})
}

// SyncCast refreshes the items linked to a cast member.
func (l *Linker) SyncCast(ctx context.Context, id string, ch Changes) (LinkResult, error) {
	cast, err := repository.Get[model.CastMember](ctx, l.store, repository.Cast, id)
	if err != nil {
		return LinkResult{}, fmt.Errorf("load cast %s: %w", id, err)
	}
	return l.syncLinked(ctx, ResourceCast, id, cast.BudgetDescription(), func(*model.BudgetItem) (float64, float64, bool) {
		return rateChange(ch.PriorRate, cast.DayRate)
	})
}

// SyncEquipment refreshes the items linked to equipment.  Items billed
// by the week follow the weekly rate, all others the daily rate.
func (l *Linker) SyncEquipment(ctx context.Context, id string, ch Changes) (LinkResult, error) {
	eq, err := repository.Get[model.Equipment](ctx, l.store, repository.Equipment, id)
	if err != nil {
		return LinkResult{}, fmt.Errorf("load equipment %s: %w", id, err)
	}
	return l.syncLinked(ctx, ResourceEquipment, id, eq.BudgetDescription(), func(item *model.BudgetItem) (float64, float64, bool) {
		if model.UsesWeeklyRate(item.Unit) {
			return rateChange(ch.PriorWeeklyRate, eq.WeeklyRate)
		}
		return rateChange(ch.PriorRate, eq.DailyRate)
	})
}

// SyncLocation refreshes the items linked to a location.
func (l *Linker) SyncLocation(ctx context.Context, id string, ch Changes) (LinkResult, error) {
	loc, err := repository.Get[model.Location](ctx, l.store, repository.Locations, id)
	if err != nil {
		return LinkResult{}, fmt.Errorf("load location %s: %w", id, err)
	}
	return l.syncLinked(ctx, ResourceLocation, id, loc.BudgetDescription(), func(*model.BudgetItem) (float64, float64, bool) {
		return rateChange(ch.PriorRate, loc.RentalCost)
	})
}

func (l *Linker) syncLinked(ctx context.Context, kind Resource, id, description string, rate rateSource) (LinkResult, error) {
	items, err := repository.Find[model.BudgetItem](ctx, l.store, repository.BudgetItems,
		repository.Where(repository.Eq(linkFields[kind], id)))
	if err != nil {
		return LinkResult{}, fmt.Errorf("load items linked to %s %s: %w", kind, id, err)
	}
	res := LinkResult{Items: len(items)}
	var writes []repository.Write
	for i := range items {
		item := &items[i]
		fields := map[string]any{}
		if item.Description != description {
			fields["description"] = description
			res.Described++
		}
		if prior, current, changed := rate(item); changed {
			if ForwardRateApplies(item.Rate(), prior) {
				fields["unitRate"] = current
				if item.Quantity > 0 {
					fields["estimatedAmount"] = amount(current, item.Quantity)
				}
				res.Rated++
			} else {
				l.log.Debug("item rate diverged from source, keeping it",
					zap.String("item_id", item.ID), zap.String(string(kind)+"_id", id),
					zap.Float64("item_rate", item.Rate()), zap.Float64("prior_rate", prior))
				res.Drifted++
			}
		}
		if len(fields) > 0 {
			writes = append(writes, repository.Update(repository.BudgetItems, item.ID, fields))
		}
	}
	if err := l.store.Commit(ctx, writes); err != nil {
		return LinkResult{}, fmt.Errorf("write items linked to %s %s: %w", kind, id, err)
	}
	return res, nil
}

// ReverseResult describes a reverse sync.
type ReverseResult struct {
	Resource   Resource `json:"resource,omitempty"`
	ResourceID string   `json:"resource_id,omitempty"`
	Field      string   `json:"field,omitempty"`
	Applied    bool     `json:"applied"`
}

// SyncSourceFromItem writes the item's unit rate back to its linked
// resource when the two are within RelativeRateEpsilon.  Items without
// a rate or a resource link, and links to deleted resources, are no-ops.
func (l *Linker) SyncSourceFromItem(ctx context.Context, itemID string) (ReverseResult, error) {
	item, err := repository.Get[model.BudgetItem](ctx, l.store, repository.BudgetItems, itemID)
	if err != nil {
		return ReverseResult{}, fmt.Errorf("load budget item %s: %w", itemID, err)
	}
	if item.UnitRate == nil {
		return ReverseResult{}, nil
	}
	newRate := *item.UnitRate

	var (
		res     ReverseResult
		current float64
	)
	switch {
	case item.LinkedCrewID != "":
		res = ReverseResult{Resource: ResourceCrew, ResourceID: item.LinkedCrewID, Field: "rate"}
		crew, err := repository.Get[model.CrewMember](ctx, l.store, repository.Crew, res.ResourceID)
		if err != nil {
			return l.staleLink(res, err)
		}
		current = crew.Rate
	case item.LinkedCastID != "":
		res = ReverseResult{Resource: ResourceCast, ResourceID: item.LinkedCastID, Field: "dayRate"}
		cast, err := repository.Get[model.CastMember](ctx, l.store, repository.Cast, res.ResourceID)
		if err != nil {
			return l.staleLink(res, err)
		}
		current = cast.DayRate
	case item.LinkedEquipmentID != "":
		res = ReverseResult{Resource: ResourceEquipment, ResourceID: item.LinkedEquipmentID, Field: "dailyRate"}
		eq, err := repository.Get[model.Equipment](ctx, l.store, repository.Equipment, res.ResourceID)
		if err != nil {
			return l.staleLink(res, err)
		}
		current = eq.DailyRate
		if model.UsesWeeklyRate(item.Unit) {
			res.Field = "weeklyRate"
			current = eq.WeeklyRate
		}
	case item.LinkedLocationID != "":
		res = ReverseResult{Resource: ResourceLocation, ResourceID: item.LinkedLocationID, Field: "rentalCost"}
		loc, err := repository.Get[model.Location](ctx, l.store, repository.Locations, res.ResourceID)
		if err != nil {
			return l.staleLink(res, err)
		}
		current = loc.RentalCost
	default:
		return ReverseResult{}, nil
	}

	if current == newRate || !ReverseRateApplies(current, newRate) {
		return res, nil
	}
	write := repository.Update(collectionOf(res.Resource), res.ResourceID, map[string]any{res.Field: newRate})
	if err := l.store.Commit(ctx, []repository.Write{write}); err != nil {
		return ReverseResult{}, fmt.Errorf("write %s %s: %w", res.Resource, res.ResourceID, err)
	}
	res.Applied = true
	return res, nil
}

func (l *Linker) staleLink(res ReverseResult, err error) (ReverseResult, error) {
	if errors.Is(err, repository.ErrNotFound) {
		l.log.Warn("budget item links a missing resource", zap.String("resource", string(res.Resource)),
			zap.String("resource_id", res.ResourceID))
		return res, nil
	}
	return ReverseResult{}, err
}

func collectionOf(kind Resource) repository.Collection {
	switch kind {
	case ResourceCrew:
		return repository.Crew
	case ResourceCast:
		return repository.Cast
	case ResourceEquipment:
		return repository.Equipment
	case ResourceLocation:
		return repository.Locations
	}
	return repository.Scenes
}

// Unlink clears the link field on every item pointing at the resource.
// The items themselves are kept.
func (l *Linker) Unlink(ctx context.Context, kind Resource, id string) (int, error) {
	field, ok := linkFields[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, kind)
	}
	items, err := repository.Find[model.BudgetItem](ctx, l.store, repository.BudgetItems,
		repository.Where(repository.Eq(field, id)))
	if err != nil {
		return 0, fmt.Errorf("load items linked to %s %s: %w", kind, id, err)
	}
	writes := make([]repository.Write, 0, len(items))
	for _, item := range items {
		writes = append(writes, repository.Update(repository.BudgetItems, item.ID, map[string]any{field: nil}))
	}
	if err := l.store.Commit(ctx, writes); err != nil {
		return 0, fmt.Errorf("unlink %s %s: %w", kind, id, err)
	}
	if len(writes) > 0 {
		l.log.Info("budget items unlinked", zap.String("resource", string(kind)), zap.String("resource_id", id),
			zap.Int("items", len(writes)))
	}
	return len(writes), nil
}

// UnlinkCrew clears linkedCrewId on the crew member's items.
func (l *Linker) UnlinkCrew(ctx context.Context, id string) (int, error) {
	return l.Unlink(ctx, ResourceCrew, id)
}

// UnlinkCast clears linkedCastId on the cast member's items.
func (l *Linker) UnlinkCast(ctx context.Context, id string) (int, error) {
	return l.Unlink(ctx, ResourceCast, id)
}

// UnlinkEquipment clears linkedEquipmentId on the equipment's items.
func (l *Linker) UnlinkEquipment(ctx context.Context, id string) (int, error) {
	return l.Unlink(ctx, ResourceEquipment, id)
}

// UnlinkLocation clears linkedLocationId on the location's items.
func (l *Linker) UnlinkLocation(ctx context.Context, id string) (int, error) {
	return l.Unlink(ctx, ResourceLocation, id)
}

// UnlinkScene clears linkedSceneId on items generated from the scene.
func (l *Linker) UnlinkScene(ctx context.Context, id string) (int, error) {
	return l.Unlink(ctx, ResourceScene, id)
}
