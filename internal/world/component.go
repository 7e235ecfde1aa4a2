package world

// Component is a capability attached to exactly one Object. Kind names a
// component type from the catalog.
type Component interface {
	Kind() string
	CompTick()
}

// Activatable components carry instance state that can demand per-cycle
// processing regardless of how their type is classified.
type Activatable interface {
	Component
	Active() bool
}

// BasicComp is a component with no instance state of interest.
type BasicComp struct {
	kind  string
	ticks int
}

func NewBasicComp(kind string) *BasicComp {
	return &BasicComp{kind: kind}
}

func (c *BasicComp) Kind() string { return c.kind }

func (c *BasicComp) CompTick() { c.ticks++ }

// Ticks returns how many times CompTick ran.
func (c *BasicComp) Ticks() int { return c.ticks }

// CooldownComp is an armed countdown (entry cooldown, timed raid, forced exit).
// While armed it forces its owner to tick.
type CooldownComp struct {
	kind      string
	remaining int
}

func NewCooldownComp(kind string) *CooldownComp {
	return &CooldownComp{kind: kind}
}

func (c *CooldownComp) Kind() string { return c.kind }

// Arm starts the countdown. ticks <= 0 disarms.
func (c *CooldownComp) Arm(ticks int) {
	if ticks < 0 {
		ticks = 0
	}
	c.remaining = ticks
}

func (c *CooldownComp) Disarm() { c.remaining = 0 }

func (c *CooldownComp) Remaining() int { return c.remaining }

func (c *CooldownComp) Active() bool { return c.remaining > 0 }

func (c *CooldownComp) CompTick() {
	if c.remaining > 0 {
		c.remaining--
	}
}

// NewComponent builds a component of kind. Timed kinds get a countdown,
// armed for cooldown ticks when cooldown > 0.
func NewComponent(kind string, timed bool, cooldown int) Component {
	if !timed {
		return NewBasicComp(kind)
	}
	c := NewCooldownComp(kind)
	c.Arm(cooldown)
	return c
}
