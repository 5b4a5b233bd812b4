package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"plan-annotator/internal/annotation"
	"plan-annotator/internal/common/config"
	"plan-annotator/internal/imageref"
	"plan-annotator/internal/overlay"
	"plan-annotator/internal/repository"
	"plan-annotator/internal/service"
	"plan-annotator/internal/store"
)

// ============================================================
// Application wiring
// ============================================================

// App holds everything the commands operate on.
type App struct {
	Buildings      *repository.BuildingRepository
	Parkings       *repository.ParkingRepository
	BuildingEditor *service.BuildingEditor
	ParkingEditor  *service.ParkingEditor
	Images         *imageref.Ingestor
	Renderer       *overlay.Renderer
	Player         *annotation.Player
	Logger         *zap.Logger
}

func NewApp(kv store.KV, images *imageref.Ingestor, logger *zap.Logger) *App {
	buildings := repository.NewBuildingRepository(kv, logger.Named("buildings"))
	parkings := repository.NewParkingRepository(kv, logger.Named("parkings"))
	return &App{
		Buildings:      buildings,
		Parkings:       parkings,
		BuildingEditor: service.NewBuildingEditor(buildings, logger.Named("editor")),
		ParkingEditor:  service.NewParkingEditor(parkings, logger.Named("editor")),
		Images:         images,
		Renderer:       overlay.NewRenderer(),
		Player:         annotation.NewPlayer(annotation.NewSessions(), logger.Named("annotate")),
		Logger:         logger,
	}
}

// OpenStore connects the configured backend. The returned close func
// releases it.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.KV, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryKV(), noop, nil

	case config.BackendRedis:
		client := store.NewRedisClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return store.NewRedisKV(client), client.Close, nil

	case config.BackendSQLite, config.BackendPostgres:
		open, dialect := store.OpenSQLite, store.SQLite
		target := cfg.Path
		if cfg.Backend == config.BackendPostgres {
			open, dialect = store.OpenPostgres, store.Postgres
			target = cfg.PostgresDSN
		}
		db, err := open(target)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.Backend, err)
		}
		kv := store.NewSQLKV(db, dialect)
		if err := kv.Init(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return kv, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
