package world

import "errors"

var (
	ErrRegionOwned  = errors.New("object already owns a region")
	ErrRegionClosed = errors.New("region not open")
)

// Region is an active sub-map owned by a world object (a colony map, an
// attacked site). Objects holding one always tick.
type Region struct {
	ID     int32
	Parent *Object
}

// Regions is the collection of open regions. Version increments once per
// Open or Close.
type Regions struct {
	open    []*Region
	nextID  int32
	version int64
}

func NewRegions() *Regions {
	return &Regions{open: make([]*Region, 0, 8)}
}

// Open creates a region for parent.
func (rs *Regions) Open(parent *Object) (*Region, error) {
	if parent.region != nil {
		return nil, ErrRegionOwned
	}
	rs.nextID++
	return rs.attach(parent, rs.nextID), nil
}

// Restore re-opens a saved region with its original ID.
func (rs *Regions) Restore(parent *Object, id int32) (*Region, error) {
	if parent.region != nil {
		return nil, ErrRegionOwned
	}
	if id > rs.nextID {
		rs.nextID = id
	}
	return rs.attach(parent, id), nil
}

func (rs *Regions) attach(parent *Object, id int32) *Region {
	reg := &Region{ID: id, Parent: parent}
	parent.region = reg
	rs.open = append(rs.open, reg)
	rs.version++
	return reg
}

// Close removes reg and detaches it from its parent.
func (rs *Regions) Close(reg *Region) error {
	for i, r := range rs.open {
		if r == reg {
			rs.open = append(rs.open[:i], rs.open[i+1:]...)
			if reg.Parent != nil && reg.Parent.region == reg {
				reg.Parent.region = nil
			}
			rs.version++
			return nil
		}
	}
	return ErrRegionClosed
}

func (rs *Regions) Len() int { return len(rs.open) }

func (rs *Regions) Version() int64 { return rs.version }

// Each calls fn for every open region in open order.
func (rs *Regions) Each(fn func(*Region)) {
	for _, r := range rs.open {
		fn(r)
	}
}
