package budget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
)

func put(t *testing.T, store *repository.MemoryStore, c repository.Collection, id string, doc any) {
	t.Helper()
	require.NoError(t, store.Put(c, id, doc))
}

func item(t *testing.T, store repository.Store, id string) *model.BudgetItem {
	t.Helper()
	it, err := repository.Get[model.BudgetItem](context.Background(), store, repository.BudgetItems, id)
	require.NoError(t, err)
	return it
}

func TestSyncCrew_ForwardDriftTolerance(t *testing.T) {
	store := repository.NewMemoryStore()
	put(t, store, repository.Crew, "cr1", model.CrewMember{ID: "cr1", Name: "Dana Reyes", Role: "Gaffer", Rate: 120})
	put(t, store, repository.BudgetItems, "tracking", model.BudgetItem{
		ID: "tracking", Description: "Dana R.", UnitRate: model.Float64(100.005), Quantity: 5, EstimatedAmount: 500.03,
		LinkedCrewID: "cr1",
	})
	put(t, store, repository.BudgetItems, "diverged", model.BudgetItem{
		ID: "diverged", Description: "Dana R.", UnitRate: model.Float64(50), Quantity: 2, EstimatedAmount: 100,
		LinkedCrewID: "cr1",
	})
	put(t, store, repository.BudgetItems, "other", model.BudgetItem{
		ID: "other", Description: "Someone else", UnitRate: model.Float64(100), LinkedCrewID: "cr2",
	})

	res, err := NewLinker(store, nil).SyncCrew(context.Background(), "cr1", Changes{PriorRate: model.Float64(100)})
	require.NoError(t, err)
	assert.Equal(t, LinkResult{Items: 2, Described: 2, Rated: 1, Drifted: 1}, res)

	tracking := item(t, store, "tracking")
	assert.Equal(t, "Dana Reyes - Gaffer", tracking.Description)
	assert.Equal(t, 120.0, tracking.Rate())
	assert.Equal(t, 600.0, tracking.EstimatedAmount)

	diverged := item(t, store, "diverged")
	assert.Equal(t, "Dana Reyes - Gaffer", diverged.Description)
	assert.Equal(t, 50.0, diverged.Rate())
	assert.Equal(t, 100.0, diverged.EstimatedAmount)

	other := item(t, store, "other")
	assert.Equal(t, "Someone else", other.Description)
	assert.Equal(t, 100.0, other.Rate())
}

func TestSyncCrew_NameOnlyChange(t *testing.T) {
	store := repository.NewMemoryStore()
	put(t, store, repository.Crew, "cr1", model.CrewMember{ID: "cr1", Name: "Dana Reyes", Rate: 120})
	put(t, store, repository.BudgetItems, "it", model.BudgetItem{ID: "it", Description: "old", UnitRate: model.Float64(90), LinkedCrewID: "cr1"})

	res, err := NewLinker(store, nil).SyncCrew(context.Background(), "cr1", Changes{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Described)
	assert.Equal(t, 0, res.Rated)
	assert.Equal(t, "Dana Reyes", item(t, store, "it").Description)
	assert.Equal(t, 90.0, item(t, store, "it").Rate())
}

func TestSyncCast_RateWithoutQuantity(t *testing.T) {
	store := repository.NewMemoryStore()
	put(t, store, repository.Cast, "c1", model.CastMember{ID: "c1", ActorName: "Lee Park", CharacterName: "Mara", DayRate: 800})
	put(t, store, repository.BudgetItems, "it", model.BudgetItem{
		ID: "it", Description: "Lee Park as Mara", EstimatedAmount: 1234, LinkedCastID: "c1",
	})

	res, err := NewLinker(store, nil).SyncCast(context.Background(), "c1", Changes{PriorRate: model.Float64(0)})
	require.NoError(t, err)
	assert.Equal(t, LinkResult{Items: 1, Rated: 1}, res)
	got := item(t, store, "it")
	assert.Equal(t, 800.0, got.Rate())
	assert.Equal(t, 1234.0, got.EstimatedAmount, "no quantity, estimate left alone")
}

func TestSyncEquipment_UnitSelectsRate(t *testing.T) {
	store := repository.NewMemoryStore()
	put(t, store, repository.Equipment, "eq1", model.Equipment{ID: "eq1", Name: "Dolly", DailyRate: 150, WeeklyRate: 600})
	put(t, store, repository.BudgetItems, "daily", model.BudgetItem{ID: "daily", Unit: "days", UnitRate: model.Float64(100), Quantity: 3, LinkedEquipmentID: "eq1"})
	put(t, store, repository.BudgetItems, "weekly", model.BudgetItem{ID: "weekly", Unit: "per Week", UnitRate: model.Float64(500), Quantity: 2, LinkedEquipmentID: "eq1"})
	put(t, store, repository.BudgetItems, "flat", model.BudgetItem{ID: "flat", UnitRate: model.Float64(100), LinkedEquipmentID: "eq1"})

	_, err := NewLinker(store, nil).SyncEquipment(context.Background(), "eq1",
		Changes{PriorRate: model.Float64(100), PriorWeeklyRate: model.Float64(500)})
	require.NoError(t, err)

	assert.Equal(t, 150.0, item(t, store, "daily").Rate())
	assert.Equal(t, 450.0, item(t, store, "daily").EstimatedAmount)
	assert.Equal(t, 600.0, item(t, store, "weekly").Rate())
	assert.Equal(t, 1200.0, item(t, store, "weekly").EstimatedAmount)
	assert.Equal(t, 150.0, item(t, store, "flat").Rate(), "no unit bills daily")
	assert.Equal(t, "Dolly", item(t, store, "flat").Description)
}

func TestSyncLocation(t *testing.T) {
	store := repository.NewMemoryStore()
	put(t, store, repository.Locations, "l1", model.Location{ID: "l1", Name: "Harbor House", RentalCost: 2500})
	put(t, store, repository.BudgetItems, "it", model.BudgetItem{ID: "it", UnitRate: model.Float64(2000), Quantity: 2, LinkedLocationID: "l1"})

	linker := NewLinker(store, nil)
	res, err := linker.Sync(context.Background(), ResourceLocation, "l1", Changes{PriorRate: model.Float64(2000)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rated)
	assert.Equal(t, "Location: Harbor House", item(t, store, "it").Description)
	assert.Equal(t, 5000.0, item(t, store, "it").EstimatedAmount)

	_, err = linker.Sync(context.Background(), ResourceScene, "l1", Changes{})
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestSyncCrew_MissingResource(t *testing.T) {
	_, err := NewLinker(repository.NewMemoryStore(), nil).SyncCrew(context.Background(), "nope", Changes{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSyncSourceFromItem(t *testing.T) {
	tests := []struct {
		name     string
		item     model.BudgetItem
		applied  bool
		wantRate float64
	}{
		{"within one percent", model.BudgetItem{ID: "it", UnitRate: model.Float64(100.5), LinkedCrewID: "cr1"}, true, 100.5},
		{"beyond one percent", model.BudgetItem{ID: "it", UnitRate: model.Float64(102), LinkedCrewID: "cr1"}, false, 100},
		{"same rate", model.BudgetItem{ID: "it", UnitRate: model.Float64(100), LinkedCrewID: "cr1"}, false, 100},
		{"no rate", model.BudgetItem{ID: "it", LinkedCrewID: "cr1"}, false, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemoryStore()
			put(t, store, repository.Crew, "cr1", model.CrewMember{ID: "cr1", Name: "Dana", Rate: 100})
			put(t, store, repository.BudgetItems, "it", tt.item)

			res, err := NewLinker(store, nil).SyncSourceFromItem(context.Background(), "it")
			require.NoError(t, err)
			assert.Equal(t, tt.applied, res.Applied)

			crew, err := repository.Get[model.CrewMember](context.Background(), store, repository.Crew, "cr1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantRate, crew.Rate)
		})
	}
}

func TestSyncSourceFromItem_ResourceFields(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	put(t, store, repository.Cast, "c1", model.CastMember{ID: "c1", DayRate: 1000})
	put(t, store, repository.Equipment, "eq1", model.Equipment{ID: "eq1", DailyRate: 200, WeeklyRate: 800})
	put(t, store, repository.Locations, "l1", model.Location{ID: "l1", RentalCost: 0})
	put(t, store, repository.BudgetItems, "cast", model.BudgetItem{ID: "cast", UnitRate: model.Float64(1005), LinkedCastID: "c1"})
	put(t, store, repository.BudgetItems, "week", model.BudgetItem{ID: "week", Unit: "week", UnitRate: model.Float64(804), LinkedEquipmentID: "eq1"})
	put(t, store, repository.BudgetItems, "loc", model.BudgetItem{ID: "loc", UnitRate: model.Float64(10), LinkedLocationID: "l1"})
	put(t, store, repository.BudgetItems, "stale", model.BudgetItem{ID: "stale", UnitRate: model.Float64(10), LinkedCrewID: "gone"})

	linker := NewLinker(store, nil)

	res, err := linker.SyncSourceFromItem(ctx, "cast")
	require.NoError(t, err)
	assert.Equal(t, ReverseResult{Resource: ResourceCast, ResourceID: "c1", Field: "dayRate", Applied: true}, res)

	res, err = linker.SyncSourceFromItem(ctx, "week")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	eq, err := repository.Get[model.Equipment](ctx, store, repository.Equipment, "eq1")
	require.NoError(t, err)
	assert.Equal(t, 804.0, eq.WeeklyRate)
	assert.Equal(t, 200.0, eq.DailyRate)

	res, err = linker.SyncSourceFromItem(ctx, "loc")
	require.NoError(t, err)
	assert.False(t, res.Applied, "zero rental cost never accepts a reverse write")

	res, err = linker.SyncSourceFromItem(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestUnlinkKeepsItems(t *testing.T) {
	store := repository.NewMemoryStore()
	for _, id := range []string{"a", "b"} {
		put(t, store, repository.BudgetItems, id, model.BudgetItem{ID: id, Description: id, LinkedCastID: "c1", LinkedSceneID: "sc1"})
	}
	put(t, store, repository.BudgetItems, "c", model.BudgetItem{ID: "c", LinkedCastID: "c2"})

	linker := NewLinker(store, nil)
	n, err := linker.UnlinkCast(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, store.Count(repository.BudgetItems))

	for _, id := range []string{"a", "b"} {
		it := item(t, store, id)
		assert.Empty(t, it.LinkedCastID)
		assert.Equal(t, "sc1", it.LinkedSceneID)
		assert.Equal(t, id, it.Description)
	}
	assert.Equal(t, "c2", item(t, store, "c").LinkedCastID)

	raw, err := store.Get(context.Background(), repository.BudgetItems, "a")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "linkedCastId")

	n, err = linker.UnlinkScene(context.Background(), "sc1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestParseResource(t *testing.T) {
	r, err := ParseResource("equipment")
	require.NoError(t, err)
	assert.Equal(t, ResourceEquipment, r)

	_, err = ParseResource("vehicle")
	assert.ErrorIs(t, err, ErrUnknownResource)
}
