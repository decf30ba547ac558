package main

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/budget"
	"github.com/iliyamo/production-planner/internal/callsheet"
	"github.com/iliyamo/production-planner/internal/model"
	"github.com/iliyamo/production-planner/internal/repository"
	"github.com/iliyamo/production-planner/internal/schedule"
	"github.com/iliyamo/production-planner/internal/utils"
)

func addShotCmd() *cobra.Command {
	var shot model.Shot
	var syncDays bool
	cmd := &cobra.Command{
		Use:   "add-shot <scene-id> <shot-number>",
		Short: "Create a shot that inherits its scene's cast, crew, equipment, locations and days",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				return createShot(ctx, store, args[0], args[1], shot, syncDays)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&shot.Title, "title", "", "shot title")
	f.IntVar(&shot.Duration, "duration", 0, "estimated minutes")
	f.StringSliceVar(&shot.CastIDs, "cast", nil, "cast ids (default: the scene's)")
	f.StringSliceVar(&shot.CrewIDs, "crew", nil, "crew ids (default: the scene's)")
	f.StringSliceVar(&shot.EquipmentIDs, "equipment", nil, "equipment ids (default: the scene's)")
	f.StringSliceVar(&shot.LocationIDs, "location", nil, "location ids (default: the scene's)")
	f.StringSliceVar(&shot.ShootingDayIDs, "days", nil, "shooting day ids (default: the scene's)")
	f.BoolVar(&syncDays, "schedule", false, "sync the new shot onto its shooting days")
	return cmd
}

type addShotResult struct {
	Shot     model.Shot       `json:"shot"`
	Schedule *schedule.Result `json:"schedule,omitempty"`
}

// createShot stores a new shot under sceneID with empty relation fields
// copied from the scene.
func createShot(ctx context.Context, store repository.Store, sceneID, number string, shot model.Shot, sync bool) (addShotResult, error) {
	scene, err := repository.Get[model.Scene](ctx, store, repository.Scenes, sceneID)
	if err != nil {
		return addShotResult{}, err
	}
	shot.ID = uuid.NewString()
	shot.SceneID = sceneID
	shot.ShotNumber = number
	shot.InheritFromScene(scene)
	if err := store.Commit(ctx, []repository.Write{repository.Set(repository.Shots, shot.ID, shot)}); err != nil {
		return addShotResult{}, err
	}
	cliLogger().Info("shot created", zap.String("scene_id", sceneID), zap.String("shot_id", shot.ID))

	out := addShotResult{Shot: shot}
	if sync && len(shot.ShootingDayIDs) > 0 {
		res, err := schedule.NewSynchronizer(store, cliLogger()).SyncShot(ctx, shot.ID, shot.ShootingDayIDs)
		if err != nil {
			return out, err
		}
		out.Schedule = &res
	}
	return out, nil
}

func syncShotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-shot <shot-id> <day-id>...",
		Short: "Ensure one schedule event per shooting day for a shot",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				return schedule.NewSynchronizer(store, cliLogger()).SyncShot(ctx, args[0], args[1:])
			})
		},
	}
}

func syncSceneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-scene <scene-id> [day-id...]",
		Short: "Fan a scene's schedule out to its shots",
		Long:  "Without day ids the scene's stored shooting days are used.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var days []string
			if len(args) > 1 {
				days = args[1:]
			}
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				return schedule.NewSynchronizer(store, cliLogger()).SyncScene(ctx, args[0], days)
			})
		},
	}
}

func clearShotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-shot <shot-id>",
		Short: "Remove every schedule event of a shot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				n, err := schedule.NewSynchronizer(store, cliLogger()).ClearShot(ctx, args[0])
				return map[string]int{"removed": n}, err
			})
		},
	}
}

func clearSceneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-scene <scene-id>",
		Short: "Remove every schedule event linked to a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				n, err := schedule.NewSynchronizer(store, cliLogger()).ClearScene(ctx, args[0])
				return map[string]int{"removed": n}, err
			})
		},
	}
}

func conflictsCmd() *cobra.Command {
	var q schedule.ConflictQuery
	cmd := &cobra.Command{
		Use:   "conflicts <day-id>",
		Short: "Report resources already booked on a shooting day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.ShootingDayID = args[0]
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				return schedule.NewDetector(store, cliLogger()).FindConflicts(ctx, q)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.SceneID, "exclude-scene", "", "ignore events of this scene")
	f.StringSliceVar(&q.CastIDs, "cast", nil, "cast ids to check")
	f.StringSliceVar(&q.CrewIDs, "crew", nil, "crew ids to check")
	f.StringSliceVar(&q.EquipmentIDs, "equipment", nil, "equipment ids to check")
	f.StringVar(&q.LocationID, "location", "", "location id to check")
	return cmd
}

func linkSyncCmd() *cobra.Command {
	var priorRate, priorWeekly float64
	cmd := &cobra.Command{
		Use:   "link-sync <resource> <id>",
		Short: "Push a resource's name and rate into its linked budget items",
		Long: "resource is one of crew, cast, equipment or location.  Pass the rate the\n" +
			"resource had before its edit so items that drifted from it are left alone.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := budget.ParseResource(args[0])
			if err != nil {
				return err
			}
			var ch budget.Changes
			if cmd.Flags().Changed("prior-rate") {
				ch.PriorRate = &priorRate
			}
			if cmd.Flags().Changed("prior-weekly-rate") {
				ch.PriorWeeklyRate = &priorWeekly
			}
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				return budget.NewLinker(store, cliLogger()).Sync(ctx, kind, args[1], ch)
			})
		},
	}
	cmd.Flags().Float64Var(&priorRate, "prior-rate", 0, "rate before the edit")
	cmd.Flags().Float64Var(&priorWeekly, "prior-weekly-rate", 0, "weekly rate before the edit (equipment)")
	return cmd
}

func syncSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-source <item-id>",
		Short: "Write a budget item's rate back to its linked resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				return budget.NewLinker(store, cliLogger()).SyncSourceFromItem(ctx, args[0])
			})
		},
	}
}

func unlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <resource> <id>",
		Short: "Clear the link from budget items to a deleted resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := budget.ParseResource(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				n, err := budget.NewLinker(store, cliLogger()).Unlink(ctx, kind, args[1])
				return map[string]int{"unlinked": n}, err
			})
		},
	}
}

func sceneBudgetCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "scene-budget <scene-id>",
		Short: "Create budget items for a scene's cast, crew and equipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				return budget.NewGenerator(store, cliLogger()).SyncSceneBudget(ctx, args[0], category)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "budget category id (default: Production)")
	return cmd
}

func callSheetCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "call-sheet <day-id>",
		Short: "Print the call sheet of a shooting day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store repository.Store) (any, error) {
				data, err := callsheet.NewAggregator(store, cliLogger()).Get(ctx, args[0])
				if err != nil {
					return nil, err
				}
				if raw {
					return data, nil
				}
				return callsheet.Build(data), nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the gathered records instead of the sheet")
	return cmd
}

func tokenCmd() *cobra.Command {
	var role string
	var ttl int
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint an access token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = cfg.AccessTTLMin
			}
			tok, err := utils.NewAccessToken(cfg.JWTSecret, args[0], role, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"token": tok.Token, "expires_at": tok.Exp})
		},
	}
	cmd.Flags().StringVar(&role, "role", "owner", "role claim: owner, admin or crew")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "lifetime in minutes (default ACCESS_TOKEN_TTL_MIN)")
	return cmd
}
