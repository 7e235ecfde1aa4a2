package tick

import (
	"math/rand"
	"testing"

	"github.com/l1jgo/worldtick/internal/world"
	"go.uber.org/zap/zapcore"
)

func TestEnsureFreshIsIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	f.spawn("Caravan")
	f.spawn("Debris")

	if !f.cache.Dirty() {
		t.Fatal("new cache must start dirty")
	}
	if !f.cache.EnsureFresh() {
		t.Fatal("first EnsureFresh must rebuild")
	}
	if f.cache.EnsureFresh() {
		t.Error("second EnsureFresh rebuilt without any change")
	}
	if got := f.cache.Stats().Rebuilds; got != 1 {
		t.Errorf("expected 1 rebuild, got %d", got)
	}
	if f.cache.Dirty() {
		t.Error("cache still dirty after rebuild")
	}
}

func TestStaleExactlyOnStructuralChange(t *testing.T) {
	f := newFixture(t, Options{})
	rng := rand.New(rand.NewSource(42))
	types := []string{"Settlement", "Debris", "Caravan", "Ruin"}

	f.cache.EnsureFresh()
	last := f.cache.Stamps()
	for step := 0; step < 500; step++ {
		objs := f.world.Objects()
		switch op := rng.Intn(6); {
		case op == 0 || objs.Len() == 0:
			f.spawn(types[rng.Intn(len(types))])
		case op == 1:
			f.world.Destroy(objs.At(rng.Intn(objs.Len())))
		case op == 2:
			_, _ = f.world.Regions().Open(objs.At(rng.Intn(objs.Len())))
		case op == 3:
			if o := objs.At(rng.Intn(objs.Len())); o.HasRegion() {
				_ = f.world.Regions().Close(o.Region())
			}
		case op == 4:
			objs.At(rng.Intn(objs.Len())).AddComponent(world.NewBasicComp("TradeRequestComp"))
		}

		live := Stamps{Objects: f.world.Objects().Version(), Regions: f.world.Regions().Version()}
		changed := live != last
		before := f.cache.Stats().Rebuilds
		rebuilt := f.cache.EnsureFresh()
		if rebuilt != changed {
			t.Fatalf("step %d: rebuilt=%v but counters changed=%v", step, rebuilt, changed)
		}
		if rebuilt && f.cache.Stats().Rebuilds != before+1 {
			t.Fatalf("step %d: rebuild counter did not advance", step)
		}
		if f.cache.Stamps() != live {
			t.Fatalf("step %d: stamps %+v, live %+v", step, f.cache.Stamps(), live)
		}
		last = live
	}
}

func TestRebuildMatchesFullEvaluation(t *testing.T) {
	f := newFixture(t, Options{})
	armed := world.NewCooldownComp("EnterCooldownComp")
	armed.Arm(3)
	f.spawn("Settlement")
	f.spawn("Caravan")
	f.spawn("Ruin", armed)
	home := f.spawn("Debris")
	if _, err := f.world.Regions().Open(home); err != nil {
		t.Fatal(err)
	}
	f.cache.EnsureFresh()

	for i := 0; i < f.world.Objects().Len(); i++ {
		o := f.world.Objects().At(i)
		v, _ := f.cache.Inspector().Evaluate(o)
		if f.cache.Contains(o) != v.MustTick {
			t.Errorf("%s: member=%v verdict=%v", o, f.cache.Contains(o), v.MustTick)
		}
	}
	st := f.cache.Stats()
	if st.Eligible != 3 || st.Scanned != 4 {
		t.Errorf("expected 3 of 4 eligible, got %d of %d", st.Eligible, st.Scanned)
	}
	if st.ByReason[ReasonRegion] != 1 || st.ByReason[ReasonType] != 1 ||
		st.ByReason[ReasonComponents] != 1 || st.ByReason[ReasonSkipped] != 1 {
		t.Errorf("unexpected reason counts %v", st.ByReason)
	}
}

func TestDynamicOverrideAlwaysWins(t *testing.T) {
	f := newFixture(t, Options{})
	for i := 0; i < 20; i++ {
		cd := world.NewCooldownComp("EnterCooldownComp")
		if i%2 == 0 {
			cd.Arm(i + 1)
		}
		f.spawn([]string{"Settlement", "Ruin", "Debris", "Waypoint"}[i%4], cd)
	}
	f.cache.EnsureFresh()
	for i := 0; i < f.world.Objects().Len(); i++ {
		o := f.world.Objects().At(i)
		active := o.Component("EnterCooldownComp").(world.Activatable).Active()
		if active && !f.cache.Contains(o) {
			t.Errorf("%s has an armed cooldown but is not eligible", o)
		}
		if !active && f.cache.Contains(o) {
			t.Errorf("%s is idle but eligible", o)
		}
	}
}

// Registry {A: skippable, B: ticking}; add C (skippable); arm a cooldown on
// A without any version change; only Invalidate brings A in.
func TestRoundTripScenario(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.spawn("Debris")
	b := f.spawn("Caravan")

	f.cache.EnsureFresh()
	assertMembers(t, f.cache, b)

	c := f.spawn("Debris")
	if !f.cache.EnsureFresh() {
		t.Fatal("adding C must trigger a rebuild")
	}
	assertMembers(t, f.cache, b)
	if f.cache.Contains(c) {
		t.Error("C is skippable")
	}

	cd := world.NewCooldownComp("EnterCooldownComp")
	cd.Arm(100)
	a.AddComponent(cd)
	if f.cache.EnsureFresh() {
		t.Fatal("attaching a component must not trigger a rebuild")
	}
	assertMembers(t, f.cache, b)

	f.cache.Invalidate()
	if !f.cache.EnsureFresh() {
		t.Fatal("Invalidate must force a rebuild")
	}
	assertMembers(t, f.cache, a, b)
	if got := f.cache.Stats().Invalidations; got != 1 {
		t.Errorf("expected 1 invalidation, got %d", got)
	}
}

func assertMembers(t *testing.T, c *Cache, want ...*world.Object) {
	t.Helper()
	got := memberSet(c)
	if len(got) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(got))
	}
	for _, o := range want {
		if !got[o] || !c.Contains(o) {
			t.Errorf("%s missing from cache", o)
		}
	}
}

func TestRebuildAbsorbsFailures(t *testing.T) {
	f := newFixture(t, Options{})
	bad := f.spawn("Ruin", panicComp{})
	good := f.spawn("Caravan")
	idle := f.spawn("Debris")

	f.cache.EnsureFresh()

	if !f.cache.Contains(bad) || !f.cache.Contains(good) || f.cache.Contains(idle) {
		t.Errorf("unexpected members %v", f.cache.Members())
	}
	if f.cache.Stats().Failures != 1 {
		t.Errorf("expected 1 failure, got %d", f.cache.Stats().Failures)
	}
	errs := f.logs.FilterMessage("eligibility check failed, object will tick").All()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error log, got %d", len(errs))
	}
	if errs[0].Level != zapcore.ErrorLevel || errs[0].ContextMap()["type"] != "Ruin" {
		t.Errorf("unexpected log entry %+v", errs[0])
	}
}

func TestDebugWarnings(t *testing.T) {
	armed := world.NewCooldownComp("EnterCooldownComp")
	armed.Arm(5)
	const msg = "skippable object type has a component that requires ticking"

	quiet := newFixture(t, Options{})
	quiet.spawn("Ruin", armed)
	quiet.cache.EnsureFresh()
	if quiet.logs.FilterMessage(msg).Len() != 0 {
		t.Error("warning logged with debug warnings off")
	}

	loud := newFixture(t, Options{DebugWarnings: true})
	o := loud.spawn("Ruin", armed)
	loud.spawn("Caravan")
	loud.cache.EnsureFresh()
	if loud.logs.FilterMessage(msg).Len() != 1 {
		t.Fatalf("expected one warning, got %d", loud.logs.FilterMessage(msg).Len())
	}
	if !loud.cache.Contains(o) {
		t.Error("diagnostic changed the verdict")
	}
}

func TestWhitelistExtensionInvalidates(t *testing.T) {
	f := newFixture(t, Options{})
	ruin := f.spawn("Ruin")
	waypoint := f.spawn("Waypoint", world.NewBasicComp("FormCaravanComp"))
	f.cache.EnsureFresh()
	if f.cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %v", f.cache.Members())
	}

	f.cache.AddObjectsToWhitelist("MapParent")
	if !f.cache.EnsureFresh() {
		t.Fatal("whitelist change must force a rebuild")
	}
	if !f.cache.Contains(ruin) || f.cache.Contains(waypoint) {
		t.Errorf("unexpected members after object whitelist: %v", f.cache.Members())
	}

	f.cache.AddComponentsToWhitelist("FormCaravanComp")
	f.cache.EnsureFresh()
	if !f.cache.Contains(waypoint) {
		t.Error("component whitelist not applied")
	}
}

func TestMustTickRebuildsWhenStale(t *testing.T) {
	f := newFixture(t, Options{})
	car := f.spawn("Caravan")
	if !f.cache.MustTick(car) {
		t.Fatal("caravan must tick")
	}
	late := f.spawn("Caravan")
	if !f.cache.MustTick(late) {
		t.Error("MustTick answered from a stale set")
	}
	if f.cache.Stats().Rebuilds != 2 {
		t.Errorf("expected 2 rebuilds, got %d", f.cache.Stats().Rebuilds)
	}
}

func BenchmarkRebuild(b *testing.B) {
	f := newFixture(b, Options{})
	types := []string{"Settlement", "Debris", "Waypoint", "Ruin", "Caravan"}
	for i := 0; i < 100_000; i++ {
		o := f.spawn(types[i%len(types)])
		if i%50 == 0 {
			cd := world.NewCooldownComp("EnterCooldownComp")
			cd.Arm(10)
			o.AddComponent(cd)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.cache.Invalidate()
		f.cache.EnsureFresh()
	}
}

func BenchmarkEnsureFreshClean(b *testing.B) {
	f := newFixture(b, Options{})
	for i := 0; i < 10_000; i++ {
		f.spawn("Settlement")
	}
	f.cache.EnsureFresh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.cache.EnsureFresh()
	}
}
