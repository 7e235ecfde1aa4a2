package ecs

import "fmt"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on release so a stale ID held by
// a script or a saved row never aliases a newer object in the same slot.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d:%d", id.Index(), id.Generation())
}

// EntityPool hands out generational IDs. Index 0 generation 0 is never issued
// so the zero EntityID can mean "no object".
type EntityPool struct {
	generations []uint32
	live        []bool
	freeList    []uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 1, 1024),
		live:        make([]bool, 1, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (p *EntityPool) Create() EntityID {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.live[idx] = true
		return NewEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	p.live = append(p.live, true)
	return NewEntityID(idx, 0)
}

// Restore marks a previously issued ID as live again, used when a saved world
// is loaded. Slots skipped over on the way are put on the free list.
// Returns false if the slot is already live.
func (p *EntityPool) Restore(id EntityID) bool {
	idx := id.Index()
	if idx == 0 {
		return false
	}
	for uint32(len(p.generations)) <= idx {
		next := uint32(len(p.generations))
		p.generations = append(p.generations, 0)
		p.live = append(p.live, false)
		if next != idx {
			p.freeList = append(p.freeList, next)
		}
	}
	if p.live[idx] {
		return false
	}
	p.removeFree(idx)
	p.generations[idx] = id.Generation()
	p.live[idx] = true
	return true
}

func (p *EntityPool) removeFree(idx uint32) {
	for i, f := range p.freeList {
		if f == idx {
			p.freeList = append(p.freeList[:i], p.freeList[i+1:]...)
			return
		}
	}
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.generations) {
		return false
	}
	return p.live[idx] && p.generations[idx] == id.Generation()
}

// Release frees the slot. Releasing a stale or unknown ID is a no-op.
func (p *EntityPool) Release(id EntityID) {
	if !p.Alive(id) {
		return
	}
	idx := id.Index()
	p.generations[idx]++
	p.live[idx] = false
	p.freeList = append(p.freeList, idx)
}

// Live returns the number of IDs currently issued.
func (p *EntityPool) Live() int {
	return len(p.generations) - 1 - len(p.freeList)
}
