// tickbench builds a large synthetic world from the type catalog and runs
// eligibility-gated cycles against it, optionally under a profiler.
//
//	go build ./cmd/tickbench
//	./tickbench -objects 200000 -cycles 2000 -churn 50 -profile cpu
//	go tool pprof -http=":8000" ./tickbench cpu.pprof
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/l1jgo/worldtick/internal/data"
	"github.com/l1jgo/worldtick/internal/tick"
	"github.com/l1jgo/worldtick/internal/world"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	catalogPath := flag.String("catalog", "data/yaml/type_catalog.yaml", "type catalog")
	objects := flag.Int("objects", 100000, "world objects to spawn")
	cycles := flag.Int("cycles", 1000, "cycles to run")
	churn := flag.Int("churn", 0, "replace one object every N cycles (0 = static world)")
	compRate := flag.Float64("components", 0.1, "chance an object gets a component")
	modeName := flag.String("mode", "push", "push or pull")
	prof := flag.String("profile", "", "cpu, mem or empty for none")
	outDir := flag.String("out", ".", "profile output directory")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if err := run(*catalogPath, *objects, *cycles, *churn, *compRate, *modeName, *prof, *outDir, *seed); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(catalogPath string, objects, cycles, churn int, compRate float64, modeName, prof, outDir string, seed int64) error {
	mode, err := tick.ParseMode(modeName)
	if err != nil {
		return err
	}
	cat, err := data.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	log, err := zap.NewDevelopment(zap.IncreaseLevel(zapcore.WarnLevel))
	if err != nil {
		return err
	}
	defer log.Sync()

	switch prof {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(outDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(outDir), profile.NoShutdownHook).Stop()
	case "":
	default:
		return fmt.Errorf("unknown profile %q", prof)
	}

	rng := rand.New(rand.NewSource(seed))
	objTypes := concrete(cat.Objects)
	compTypes := concrete(cat.Components)
	if len(objTypes) == 0 {
		return fmt.Errorf("catalog has no concrete object types")
	}

	ws := world.NewState()
	spawn := func() {
		o := world.NewObject(objTypes[rng.Intn(len(objTypes))].Name, "")
		if len(compTypes) > 0 && rng.Float64() < compRate {
			def := compTypes[rng.Intn(len(compTypes))]
			o.AddComponent(world.NewComponent(def.Name, def.Timed, rng.Intn(3)*100))
		}
		ws.Spawn(o)
	}

	start := time.Now()
	for i := 0; i < objects; i++ {
		spawn()
	}
	fmt.Printf("spawned %d objects in %s\n", objects, time.Since(start))

	start = time.Now()
	inspector := tick.NewInspectorFromCatalog(cat, nil, nil, 0, log)
	fmt.Printf("classified %d types in %s\n", cat.Count(), time.Since(start))

	cache := tick.NewCache(ws.Objects(), ws.Regions(), inspector, tick.Options{}, log)
	orch := tick.NewOrchestrator(cache, ws.Objects(), mode, func(o *world.Object) { o.Tick() })

	var ticked int
	var rebuildTime time.Duration
	start = time.Now()
	for c := 1; c <= cycles; c++ {
		if churn > 0 && c%churn == 0 && ws.Objects().Len() > 0 {
			ws.Destroy(ws.Objects().At(rng.Intn(ws.Objects().Len())))
			spawn()
		}
		res := orch.Cycle()
		ticked += res.Ticked
		if res.Rebuilt {
			rebuildTime += cache.Stats().LastRebuild
		}
	}
	elapsed := time.Since(start)

	st := cache.Stats()
	fmt.Printf("mode %s: %d cycles in %s (%s/cycle)\n", mode, cycles, elapsed, elapsed/time.Duration(max(cycles, 1)))
	fmt.Printf("eligible %d of %d objects, %d ticks total\n", st.Eligible, ws.Objects().Len(), ticked)
	fmt.Printf("rebuilds %d, %s total", st.Rebuilds, rebuildTime)
	if st.Rebuilds > 0 {
		fmt.Printf(", %s avg", rebuildTime/time.Duration(st.Rebuilds))
	}
	fmt.Println()
	for reason, n := range st.ReasonCounts() {
		if n > 0 {
			fmt.Printf("  %-10s %d\n", reason, n)
		}
	}
	return nil
}

func concrete(ts *data.TypeSet) []*data.TypeDef {
	var out []*data.TypeDef
	for _, d := range ts.All() {
		if !d.Abstract {
			out = append(out, d)
		}
	}
	return out
}
