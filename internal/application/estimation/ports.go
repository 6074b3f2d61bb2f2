package estimation

import (
	"context"

	"github.com/turtacn/ThermoCancel/pkg/types/common"
)

// StoredSpecies is a species definition persisted in the reference library.
type StoredSpecies struct {
	common.BaseEntity
	Definition SpeciesDefinition
}

// SpeciesRepository is the persistence port for the reference species library.
// Save upserts by label; lookups by a label that does not exist return a
// not-found error.
type SpeciesRepository interface {
	Save(ctx context.Context, def SpeciesDefinition) (*StoredSpecies, error)
	FindByLabel(ctx context.Context, label string) (*StoredSpecies, error)
	List(ctx context.Context) ([]*StoredSpecies, error)
	DeleteByLabel(ctx context.Context, label string) error
}

// EstimateCache is the caching port for finished estimates, keyed by a digest
// of the request.  A nil result with a nil error signals a miss.
type EstimateCache interface {
	Get(ctx context.Context, key string) (*Result, error)
	Set(ctx context.Context, key string, result *Result) error
}
