package persist

import (
	"fmt"
	"sort"

	"github.com/l1jgo/worldtick/internal/core/ecs"
	"github.com/l1jgo/worldtick/internal/world"
)

// ObjectRow represents a persisted world object.
type ObjectRow struct {
	ID    int64
	Type  string
	Label string
	Stock []string // nil = no trader stock
}

// ComponentRow represents one attached component, Seq preserving attach order.
type ComponentRow struct {
	ObjectID  int64
	Seq       int32
	Kind      string
	Timed     bool
	Remaining int32
}

// RegionRow represents an open region and its owner.
type RegionRow struct {
	ID       int32
	ParentID int64
}

// Snapshot is the row form of a whole world.
type Snapshot struct {
	Objects    []ObjectRow
	Components []ComponentRow
	Regions    []RegionRow
}

// TakeSnapshot converts ws into rows in registry order.
func TakeSnapshot(ws *world.State) Snapshot {
	var snap Snapshot
	ws.AllObjects(func(o *world.Object) {
		id := int64(o.ID)
		snap.Objects = append(snap.Objects, ObjectRow{
			ID:    id,
			Type:  o.Type,
			Label: o.Label,
			Stock: o.Stock,
		})
		for i := 0; i < o.ComponentCount(); i++ {
			row := ComponentRow{ObjectID: id, Seq: int32(i), Kind: o.ComponentAt(i).Kind()}
			if cd, ok := o.ComponentAt(i).(*world.CooldownComp); ok {
				row.Timed = true
				row.Remaining = int32(cd.Remaining())
			}
			snap.Components = append(snap.Components, row)
		}
	})
	ws.Regions().Each(func(r *world.Region) {
		snap.Regions = append(snap.Regions, RegionRow{ID: r.ID, ParentID: int64(r.Parent.ID)})
	})
	return snap
}

// Restore fills an empty ws from snap, keeping saved IDs and order.
func Restore(ws *world.State, snap Snapshot) error {
	if ws.Objects().Len() != 0 {
		return fmt.Errorf("restore into non-empty world (%d objects)", ws.Objects().Len())
	}

	comps := make(map[int64][]ComponentRow, len(snap.Objects))
	for _, c := range snap.Components {
		comps[c.ObjectID] = append(comps[c.ObjectID], c)
	}
	byID := make(map[int64]*world.Object, len(snap.Objects))
	for _, row := range snap.Objects {
		o := world.NewObject(row.Type, row.Label)
		o.ID = ecs.EntityID(row.ID)
		o.Stock = row.Stock
		rows := comps[row.ID]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Seq < rows[j].Seq })
		for _, c := range rows {
			o.AddComponent(world.NewComponent(c.Kind, c.Timed, int(c.Remaining)))
		}
		if err := ws.Restore(o); err != nil {
			return fmt.Errorf("restore object %d (%s): %w", row.ID, row.Type, err)
		}
		byID[row.ID] = o
	}
	for _, r := range snap.Regions {
		parent, ok := byID[r.ParentID]
		if !ok {
			return fmt.Errorf("region %d: owner %d not saved", r.ID, r.ParentID)
		}
		if _, err := ws.Regions().Restore(parent, r.ID); err != nil {
			return fmt.Errorf("region %d: %w", r.ID, err)
		}
	}
	return nil
}
