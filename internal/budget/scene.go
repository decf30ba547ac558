package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/logging"
	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
)

// FallbackCategoryName is the category generated items land in when
// the caller does not name one.
const FallbackCategoryName = "Production"

// GenerateResult counts the outcome of SyncSceneBudget.
type GenerateResult struct {
	CategoryID string `json:"category_id,omitempty"`
	Created    int    `json:"created"`
	Existing   int    `json:"existing"`
	Skipped    int    `json:"skipped"`
}

// Generator creates budget items from a scene's breakdown.  It never
// updates existing items; that is the Linker's job.
type Generator struct {
	store repository.Store
	log   *zap.Logger
	newID func() string
}

// NewGenerator returns a Generator over store.  logger may be nil.
func NewGenerator(store repository.Store, logger *zap.Logger) *Generator {
	return &Generator{store: store, log: logging.WithComponent(logger, "budget"), newID: uuid.NewString}
}

// SyncSceneBudget creates one item per cast member, crew member and
// piece of equipment on the scene unless an item already links that
// resource to the scene.  Equipment without a daily rate is skipped.
// Everything is written in one batch.
func (g *Generator) SyncSceneBudget(ctx context.Context, sceneID, categoryID string) (GenerateResult, error) {
	scene, err := repository.Get[model.Scene](ctx, g.store, repository.Scenes, sceneID)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("load scene %s: %w", sceneID, err)
	}
	existing, err := repository.Find[model.BudgetItem](ctx, g.store, repository.BudgetItems,
		repository.Where(repository.Eq("linkedSceneId", sceneID)))
	if err != nil {
		return GenerateResult{}, fmt.Errorf("load items for scene %s: %w", sceneID, err)
	}
	have := make(map[string]bool, len(existing))
	for _, it := range existing {
		for _, key := range []string{"cast:" + it.LinkedCastID, "crew:" + it.LinkedCrewID, "equipment:" + it.LinkedEquipmentID} {
			have[key] = true
		}
	}

	days := float64(len(repository.Unique(scene.ShootingDayIDs)))
	if days < 1 {
		days = 1
	}

	var (
		res   GenerateResult
		items []model.BudgetItem
	)
	pending := func(kind, id string) bool {
		if have[kind+":"+id] {
			res.Existing++
			return false
		}
		have[kind+":"+id] = true
		return true
	}

	cast, err := repository.GetMany[model.CastMember](ctx, g.store, repository.Cast, scene.CastIDs)
	if err != nil {
		return GenerateResult{}, err
	}
	res.Skipped += g.warnStale(sceneID, "cast", scene.CastIDs, len(cast))
	for _, c := range cast {
		if !pending("cast", c.ID) {
			continue
		}
		it := g.newItem(sceneID, c.BudgetDescription(), c.DayRate, days)
		it.LinkedCastID = c.ID
		items = append(items, it)
	}

	crew, err := repository.GetMany[model.CrewMember](ctx, g.store, repository.Crew, scene.CrewIDs)
	if err != nil {
		return GenerateResult{}, err
	}
	res.Skipped += g.warnStale(sceneID, "crew", scene.CrewIDs, len(crew))
	for _, c := range crew {
		if !pending("crew", c.ID) {
			continue
		}
		it := g.newItem(sceneID, c.BudgetDescription(), c.Rate, days)
		it.LinkedCrewID = c.ID
		items = append(items, it)
	}

	equipment, err := repository.GetMany[model.Equipment](ctx, g.store, repository.Equipment, scene.EquipmentIDs)
	if err != nil {
		return GenerateResult{}, err
	}
	res.Skipped += g.warnStale(sceneID, "equipment", scene.EquipmentIDs, len(equipment))
	for _, e := range equipment {
		if e.DailyRate <= 0 {
			res.Skipped++
			continue
		}
		if !pending("equipment", e.ID) {
			continue
		}
		it := g.newItem(sceneID, e.BudgetDescription(), e.DailyRate, days)
		it.LinkedEquipmentID = e.ID
		items = append(items, it)
	}

	if len(items) == 0 {
		return res, nil
	}

	var writes []repository.Write
	cat, created, err := g.resolveCategory(ctx, categoryID)
	if err != nil {
		return GenerateResult{}, err
	}
	if created {
		writes = append(writes, repository.Set(repository.BudgetCategories, cat.ID, cat))
	}
	for i := range items {
		items[i].CategoryID = cat.ID
		writes = append(writes, repository.Set(repository.BudgetItems, items[i].ID, items[i]))
	}
	if err := g.store.Commit(ctx, writes); err != nil {
		return GenerateResult{}, fmt.Errorf("write scene budget %s: %w", sceneID, err)
	}
	res.CategoryID = cat.ID
	res.Created = len(items)
	g.log.Info("scene budget generated", zap.String("scene_id", sceneID), zap.String("category_id", cat.ID),
		zap.Int("created", res.Created), zap.Int("existing", res.Existing), zap.Int("skipped", res.Skipped))
	return res, nil
}

func (g *Generator) newItem(sceneID, description string, rate, days float64) model.BudgetItem {
	return model.BudgetItem{
		ID:              g.newID(),
		Description:     description,
		EstimatedAmount: amount(rate, days),
		Status:          model.BudgetStatusEstimated,
		Unit:            "day",
		Quantity:        days,
		UnitRate:        model.Float64(rate),
		LinkedSceneID:   sceneID,
	}
}

func (g *Generator) warnStale(sceneID, kind string, ids []string, found int) int {
	stale := len(repository.Unique(ids)) - found
	if stale > 0 {
		g.log.Warn("scene references missing records", zap.String("scene_id", sceneID),
			zap.String("kind", kind), zap.Int("missing", stale))
	}
	return stale
}

// resolveCategory returns the requested category, else the first
// category named FallbackCategoryName, else a new one appended after
// the last category.  created reports whether it still has to be written.
func (g *Generator) resolveCategory(ctx context.Context, categoryID string) (*model.BudgetCategory, bool, error) {
	if categoryID != "" {
		cat, err := repository.Get[model.BudgetCategory](ctx, g.store, repository.BudgetCategories, categoryID)
		if err != nil {
			return nil, false, fmt.Errorf("load budget category %s: %w", categoryID, err)
		}
		return cat, false, nil
	}
	found, err := repository.Find[model.BudgetCategory](ctx, g.store, repository.BudgetCategories,
		repository.Where(repository.Eq("name", FallbackCategoryName)).Order("order", false).Take(1))
	if err != nil {
		return nil, false, err
	}
	if len(found) > 0 {
		return &found[0], false, nil
	}
	last, err := repository.Find[model.BudgetCategory](ctx, g.store, repository.BudgetCategories,
		repository.Query{}.Order("order", true).Take(1))
	if err != nil {
		return nil, false, err
	}
	order := 0
	if len(last) > 0 {
		order = last[0].Order + 1
	}
	return &model.BudgetCategory{
		ID:         g.newID(),
		Name:       FallbackCategoryName,
		Order:      order,
		Department: model.DepartmentProduction,
	}, true, nil
}
