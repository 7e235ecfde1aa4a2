package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running per-type tick scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	calls  uint64
	errors uint64
}

// NewEngine creates a Lua engine and loads every script below scriptsDir:
// core/ first, then world/.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, sub := range []string{"core", "world"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// Has reports whether a global Lua function named fn exists.
func (e *Engine) Has(fn string) bool {
	_, ok := e.vm.GetGlobal(fn).(*lua.LFunction)
	return ok
}

// TickContext is the read-only view of an object passed to a tick script.
type TickContext struct {
	ObjectID  uint64
	Type      string
	Label     string
	Ticks     int
	Cycle     uint64
	HasRegion bool
	HasStock  bool
	Cooldowns map[string]int // kind -> remaining ticks
}

// TickCommand is one action requested by a tick script.
//
//	{type="destroy"}
//	{type="arm", kind="EnterCooldownComp", ticks=30}
//	{type="disarm", kind="EnterCooldownComp"}
//	{type="stock", items={"silver", "steel"}}
//	{type="clear_stock"}
type TickCommand struct {
	Type  string
	Kind  string
	Ticks int
	Items []string
}

// RunObjectTick calls the Lua function fn(ctx) and returns its commands.
// Script errors are logged and yield no commands.
func (e *Engine) RunObjectTick(fn string, ctx TickContext) []TickCommand {
	f := e.vm.GetGlobal(fn)
	if f == lua.LNil {
		return nil
	}
	e.calls++

	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(ctx.ObjectID))
	t.RawSetString("type", lua.LString(ctx.Type))
	t.RawSetString("label", lua.LString(ctx.Label))
	t.RawSetString("ticks", lua.LNumber(ctx.Ticks))
	t.RawSetString("cycle", lua.LNumber(ctx.Cycle))
	t.RawSetString("has_region", lua.LBool(ctx.HasRegion))
	t.RawSetString("has_stock", lua.LBool(ctx.HasStock))
	cds := e.vm.NewTable()
	for kind, left := range ctx.Cooldowns {
		cds.RawSetString(kind, lua.LNumber(left))
	}
	t.RawSetString("cooldowns", cds)

	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.errors++
		e.log.Error("lua tick error",
			zap.String("func", fn),
			zap.String("type", ctx.Type),
			zap.Uint64("object_id", ctx.ObjectID),
			zap.Error(err))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var cmds []TickCommand
	rt.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		cmd := TickCommand{
			Type:  lStr(row, "type"),
			Kind:  lStr(row, "kind"),
			Ticks: lInt(row, "ticks"),
		}
		if items, ok := row.RawGetString("items").(*lua.LTable); ok {
			items.ForEach(func(_, it lua.LValue) {
				cmd.Items = append(cmd.Items, lua.LVAsString(it))
			})
		}
		cmds = append(cmds, cmd)
	})
	return cmds
}

// Calls returns how many script invocations ran; Errors how many failed.
func (e *Engine) Calls() uint64  { return e.calls }
func (e *Engine) Errors() uint64 { return e.errors }

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
