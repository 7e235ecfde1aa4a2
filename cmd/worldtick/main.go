package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l1jgo/worldtick/internal/config"
	"github.com/l1jgo/worldtick/internal/core/event"
	coresys "github.com/l1jgo/worldtick/internal/core/system"
	"github.com/l1jgo/worldtick/internal/data"
	"github.com/l1jgo/worldtick/internal/persist"
	"github.com/l1jgo/worldtick/internal/scripting"
	"github.com/l1jgo/worldtick/internal/system"
	"github.com/l1jgo/worldtick/internal/telemetry"
	"github.com/l1jgo/worldtick/internal/tick"
	"github.com/l1jgo/worldtick/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("WORLDTICK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Server.StartTime = time.Now().Unix()

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	mode, err := tick.ParseMode(cfg.Tick.Mode)
	if err != nil {
		return err
	}

	// 3. Type catalog and classification
	printSection("catalog")
	cat, err := data.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("object types", cat.Objects.Count())
	printStat("component types", cat.Components.Count())

	inspector := tick.NewInspectorFromCatalog(cat,
		cfg.Catalog.AlwaysTickObjects, cfg.Catalog.AlwaysTickComponents,
		cfg.Tick.ClassifyWorkers, log.Named("classify"))
	printStat("skippable object types", inspector.Objects().Len())
	printStat("skippable component types", inspector.Components().Len())
	if n := inspector.Objects().Failed() + inspector.Components().Failed(); n > 0 {
		log.Warn("some catalog types could not be classified", zap.Int("count", n))
	}
	fmt.Println()

	// 4. World state, event bus, eligibility cache
	ws := world.NewState()
	bus := event.NewBus()
	cache := tick.NewCache(ws.Objects(), ws.Regions(), inspector,
		tick.Options{DebugWarnings: cfg.Tick.DebugWarnings}, log.Named("eligibility"))
	system.SubscribeCacheInvalidation(bus, cache, log)

	// 5. Database: migrate and load the saved world
	printSection("database")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var repo *persist.WorldRepo
	if cfg.Database.Enabled {
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("schema version", int(version))

		repo = persist.NewWorldRepo(db)
		snap, err := repo.Load(ctx)
		if err != nil {
			return fmt.Errorf("load world: %w", err)
		}
		if err := persist.Restore(ws, snap); err != nil {
			return fmt.Errorf("restore world: %w", err)
		}
		event.Emit(bus, event.WorldLoaded{Objects: ws.Objects().Len(), Regions: ws.Regions().Len()})
		event.Emit(bus, event.CachesCleared{Reason: "load"})
		printStat("saved objects", len(snap.Objects))
	} else {
		printSkip("persistence disabled")
	}
	fmt.Println()

	// 6. Seed a fresh world
	printSection("world")
	if ws.Objects().Len() == 0 && cfg.Catalog.SeedPath != "" {
		seeds, err := data.LoadSeedList(cfg.Catalog.SeedPath)
		if err != nil {
			return fmt.Errorf("load seed list: %w", err)
		}
		n, err := ws.Seed(seeds, cat)
		if err != nil {
			return fmt.Errorf("seed world: %w", err)
		}
		printStat("seeded objects", n)
	}
	printStat("objects", ws.Objects().Len())
	printStat("active regions", ws.Regions().Len())
	fmt.Println()

	// 7. Lua scripts
	printSection("scripting")
	var scripts system.ScriptRunner
	if cfg.Scripting.Enabled {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log.Named("lua"))
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		for typ, fn := range cat.Objects.Scripts() {
			if !engine.Has(fn) {
				log.Warn("tick script not defined", zap.String("type", typ), zap.String("func", fn))
			}
		}
		scripts = engine
		printOK("Lua engine ready")
	} else {
		printSkip("scripting disabled")
	}
	fmt.Println()

	// 8. Telemetry
	var tel *telemetry.Client
	if cfg.Telemetry.Enabled {
		tel, err = telemetry.Connect(cfg.Telemetry, cfg.Server.Name, log.Named("telemetry"))
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer tel.Close()
	}

	// 9. Systems
	runner := coresys.NewRunner()
	tickSys := system.NewWorldTickSystem(ws, cache, mode, scripts, cat.Objects.Scripts(), log)
	tickSys.Orchestrator().MaxStaleCycles = cfg.Tick.MaxStaleCycles
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(tickSys)
	if tel != nil {
		runner.Register(system.NewTelemetrySystem(ws, tickSys.Orchestrator(), tel, cfg.Telemetry.Every))
	}
	var saver *system.PersistenceSystem
	if repo != nil {
		saver = system.NewPersistenceSystem(ws, repo, bus, log, cfg.Tick.SaveInterval)
		runner.Register(saver)
	}
	runner.Register(system.NewCleanupSystem(ws, bus, log))

	// 10. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Tick.Rate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("world loop started (rate: %s, mode: %s)", cfg.Tick.Rate, mode))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Tick.Rate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			st := cache.Stats()
			log.Info("eligibility cache totals",
				zap.Uint64("cycles", runner.Cycles()),
				zap.Uint64("rebuilds", st.Rebuilds),
				zap.Uint64("invalidations", st.Invalidations),
				zap.Uint64("failures", st.Failures))
			if saver != nil {
				if err := saver.SaveNow(); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("final save failed", zap.Error(err))
				}
			}
			log.Info("world stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
