package tick

// Stamps records the two version counters a rebuild was based on.
type Stamps struct {
	Objects int64
	Regions int64
}

// Dirty never matches live counters, which start at zero and only grow.
var Dirty = Stamps{Objects: -2, Regions: -2}

// VersionSource is any collection exposing a monotonic membership counter.
type VersionSource interface {
	Version() int64
}

// Tracker reads live counters from the object registry and the region
// collection.
type Tracker struct {
	objects VersionSource
	regions VersionSource
}

func NewTracker(objects, regions VersionSource) *Tracker {
	return &Tracker{objects: objects, regions: regions}
}

func (t *Tracker) Live() Stamps {
	return Stamps{Objects: t.objects.Version(), Regions: t.regions.Version()}
}

// IsStale reports whether either counter moved since last.
func (t *Tracker) IsStale(last Stamps) bool {
	return t.Live() != last
}
