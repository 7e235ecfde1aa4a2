package event

import "github.com/l1jgo/worldtick/internal/core/ecs"

// CachesCleared asks every derived-state cache to drop what it holds.
// Raised after a world load and after whitelist changes.
type CachesCleared struct {
	Reason string
}

type WorldLoaded struct {
	Objects int
	Regions int
}

type WorldSaved struct {
	Objects int
}

type ObjectDestroyed struct {
	ID   ecs.EntityID
	Type string
}
