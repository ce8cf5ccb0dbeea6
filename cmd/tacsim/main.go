// Command tacsim runs the facility guard simulation: planner-driven
// guards defend a procedurally generated facility against scripted
// intruders, observable and tunable over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/notarikon-nz/subversive-sub001/internal/api"
	"github.com/notarikon-nz/subversive-sub001/internal/engine"
	"github.com/notarikon-nz/subversive-sub001/internal/entropy"
	"github.com/notarikon-nz/subversive-sub001/internal/goap"
	"github.com/notarikon-nz/subversive-sub001/internal/persistence"
	"github.com/notarikon-nz/subversive-sub001/internal/tuning"
	"github.com/notarikon-nz/subversive-sub001/internal/world"
)

const (
	guardCount    = 6
	intruderCount = 2
	autosaveTicks = 600
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	seed := envInt64("TACSIM_SEED", 0)
	dbPath := envStr("TACSIM_DB", "data/tacsim.db")
	snapPath := envStr("TACSIM_SNAPSHOTS", "data/snapshots")
	tuningPath := envStr("TACSIM_TUNING", "tacsim.yaml")
	apiPort := int(envInt64("TACSIM_PORT", 8080))

	// ── Tuning ────────────────────────────────────────────────────────
	cfg, err := tuning.Load(tuningPath)
	if err != nil {
		slog.Error("tuning load failed", "path", tuningPath, "error", err)
		os.Exit(1)
	}
	tn := tuning.New(cfg)
	slog.Info("tuning loaded", "path", tuningPath, "tick_rate_hz", cfg.TickRateHz)

	// ── Catalog sanity ────────────────────────────────────────────────
	if orphans := goap.ValidateCatalog(goap.DefaultActions(), goap.DefaultGoals()); len(orphans) > 0 {
		slog.Warn("catalog has orphan actions (never plannable)", "actions", orphans)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	runID, err := db.RunID()
	if err != nil {
		slog.Error("failed to establish run id", "error", err)
		os.Exit(1)
	}
	slog.Info("database opened", "path", dbPath, "run_id", runID)

	// ── Facility Map ──────────────────────────────────────────────────
	src := entropy.NewSource(seed)
	genCfg := world.DefaultGenConfig()
	genCfg.Seed = src.Seed()
	facility := world.Generate(genCfg)
	slog.Info("facility generated", "map", facility, "seed", src.Seed())

	// ── Guards ────────────────────────────────────────────────────────
	routes := world.PatrolRoutes(facility, guardCount, src.Seed())
	profiles := []goap.Profile{
		goap.DefaultProfile(),
		goap.AggressiveProfile(),
		goap.CautiousProfile(),
		goap.TacticianProfile(),
	}
	weapons := []engine.WeaponSpec{
		engine.WeaponRifle,
		engine.WeaponPistol,
		engine.WeaponShotgun,
		engine.WeaponRifle,
		engine.WeaponMinigun,
		engine.WeaponFlamethrower,
	}

	base := tn.Overrides()
	var guards []*engine.Guard
	for i := 0; i < guardCount && i < len(routes); i++ {
		g := engine.NewGuard(
			engine.GuardID(i+1),
			routes[i][0],
			routes[i],
			weapons[i%len(weapons)],
			profiles[i%len(profiles)],
			base,
		)
		if i%3 == 0 {
			g.Kit.Grenade = true
		}
		guards = append(guards, g)
		slog.Info("guard posted",
			"name", g.Name,
			"weapon", g.Weapon.Name,
			"aggression", g.Profile.Aggression,
			"waypoints", len(g.Patrol),
		)
	}

	// ── Intruders ─────────────────────────────────────────────────────
	var intruders []*engine.Intruder
	center := world.TileCoord{X: facility.Width / 2, Y: facility.Height / 2}.Center()
	for i := 0; i < intruderCount && i < len(facility.Entries); i++ {
		entry := facility.Entries[i].Center()
		path := []world.Vec2{entry, center}
		if len(facility.AlarmPanels) > 0 {
			panel := facility.AlarmPanels[i%len(facility.AlarmPanels)]
			path = append(path, panel.Center())
		}
		intruders = append(intruders, engine.NewIntruder(engine.IntruderID(i+1), path))
	}
	slog.Info("intruders inserted", "count", len(intruders))

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(facility, guards, intruders, tn, src)

	eng := engine.NewEngine(cfg.TickRateHz)
	eng.OnTick = func(tick uint64, dt float64) {
		sim.TickStep(tick, dt)
		if tick%autosaveTicks == 0 {
			if err := db.SaveRunState(sim); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		}
	}

	if err := db.SaveRunState(sim); err != nil {
		slog.Error("initial save failed", "error", err)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("TACSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("TACSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:          sim,
		Eng:          eng,
		Tuning:       tn,
		DB:           db,
		SnapshotPath: snapPath,
		Port:         apiPort,
		AdminKey:     adminKey,
		RunID:        runID,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\n%d guards on post, %d intruders inbound.\n", len(guards), len(intruders))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save and snapshot on shutdown.
	slog.Info("final save...")
	if err := db.SaveRunState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}
	snap := persistence.BuildSnapshot(sim, runID)
	file := fmt.Sprintf("%s/tick-%d.snap.zst", snapPath, snap.Header.Tick)
	if err := persistence.WriteSnapshot(file, snap); err != nil {
		slog.Error("final snapshot failed", "error", err)
	} else {
		slog.Info("snapshot written", "file", file)
	}

	fmt.Println("Simulation stopped. Run state saved.")
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
