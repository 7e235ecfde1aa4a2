package tick

import (
	"testing"

	"github.com/l1jgo/worldtick/internal/data"
	"github.com/l1jgo/worldtick/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const catalogYAML = `
object_root: WorldObject
component_root: WorldObjectComp
object_types:
  - {name: WorldObject, ticks: true, abstract: true}
  - {name: MapParent, parent: WorldObject, ticks: true, benign: true, abstract: true}
  - {name: Settlement, parent: MapParent, ticks: true, benign: true}
  - {name: Ruin, parent: MapParent}
  - {name: Debris, parent: WorldObject}
  - {name: Waypoint, parent: WorldObject}
  - {name: Caravan, parent: WorldObject, ticks: true}
  - {name: Convoy, parent: Caravan}
  - {name: Orphan, parent: Missing}
  - {name: LoopA, parent: LoopB}
  - {name: LoopB, parent: LoopA}
  - {name: Floating}
component_types:
  - {name: WorldObjectComp, ticks: true, abstract: true}
  - {name: EnterCooldownComp, parent: WorldObjectComp}
  - {name: FormCaravanComp, parent: WorldObjectComp}
  - {name: TradeRequestComp, parent: WorldObjectComp, ticks: true}
`

func testCatalog(t testing.TB) *data.Catalog {
	t.Helper()
	c, err := data.ParseCatalog([]byte(catalogYAML))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return c
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

type fixture struct {
	world *world.State
	cache *Cache
	logs  *observer.ObservedLogs
}

func newFixture(t testing.TB, opts Options) *fixture {
	t.Helper()
	cat := testCatalog(t)
	log, logs := observed()
	insp := NewInspector(
		NewClassifier(cat.Objects, nil, 2, log),
		NewClassifier(cat.Components, nil, 2, log),
	)
	ws := world.NewState()
	return &fixture{
		world: ws,
		cache: NewCache(ws.Objects(), ws.Regions(), insp, opts, log),
		logs:  logs,
	}
}

func (f *fixture) spawn(typ string, comps ...world.Component) *world.Object {
	o := world.NewObject(typ, "")
	for _, c := range comps {
		o.AddComponent(c)
	}
	return f.world.Spawn(o)
}

func memberSet(c *Cache) map[*world.Object]bool {
	out := make(map[*world.Object]bool, c.Len())
	for _, o := range c.Members() {
		out[o] = true
	}
	return out
}

type panicComp struct{}

func (panicComp) Kind() string { return "EnterCooldownComp" }
func (panicComp) CompTick()    {}
func (panicComp) Active() bool { panic("cooldown state corrupted") }
