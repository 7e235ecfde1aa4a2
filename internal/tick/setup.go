package tick

import (
	"github.com/l1jgo/worldtick/internal/data"
	"go.uber.org/zap"
)

// NewInspectorFromCatalog classifies both hierarchies of cat. Each
// classifier whitelists the catalog's always-tick list plus the extras.
func NewInspectorFromCatalog(cat *data.Catalog, extraObjects, extraComponents []string, workers int, log *zap.Logger) *Inspector {
	objects := append(append([]string{}, cat.Objects.AlwaysTick...), extraObjects...)
	comps := append(append([]string{}, cat.Components.AlwaysTick...), extraComponents...)
	return NewInspector(
		NewClassifier(cat.Objects, objects, workers, log.Named("objects")),
		NewClassifier(cat.Components, comps, workers, log.Named("components")),
	)
}
