package world

// Registry is the ordered owning collection of world objects. Version
// increments exactly once per successful Add or Remove and never otherwise.
type Registry struct {
	objects []*Object
	members map[*Object]struct{}
	version int64
}

func NewRegistry() *Registry {
	return &Registry{
		objects: make([]*Object, 0, 256),
		members: make(map[*Object]struct{}, 256),
	}
}

// Add appends o. Adding an object already present is a no-op.
func (r *Registry) Add(o *Object) bool {
	if _, ok := r.members[o]; ok {
		return false
	}
	r.members[o] = struct{}{}
	r.objects = append(r.objects, o)
	r.version++
	return true
}

// Remove deletes o preserving the order of the others.
func (r *Registry) Remove(o *Object) bool {
	if _, ok := r.members[o]; !ok {
		return false
	}
	delete(r.members, o)
	for i := len(r.objects) - 1; i >= 0; i-- {
		if r.objects[i] == o {
			copy(r.objects[i:], r.objects[i+1:])
			r.objects[len(r.objects)-1] = nil
			r.objects = r.objects[:len(r.objects)-1]
			break
		}
	}
	r.version++
	return true
}

func (r *Registry) Contains(o *Object) bool {
	_, ok := r.members[o]
	return ok
}

func (r *Registry) Len() int { return len(r.objects) }

func (r *Registry) At(i int) *Object { return r.objects[i] }

// Index returns the position of o, or -1.
func (r *Registry) Index(o *Object) int {
	if !r.Contains(o) {
		return -1
	}
	for i, x := range r.objects {
		if x == o {
			return i
		}
	}
	return -1
}

func (r *Registry) Version() int64 { return r.version }

// Snapshot copies the current order into dst (reused if large enough).
func (r *Registry) Snapshot(dst []*Object) []*Object {
	return append(dst[:0], r.objects...)
}
