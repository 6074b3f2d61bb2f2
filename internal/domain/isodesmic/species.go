package isodesmic

import (
	"github.com/turtacn/ThermoCancel/internal/domain/molecule"
	"github.com/turtacn/ThermoCancel/pkg/errors"
	"github.com/turtacn/ThermoCancel/pkg/quantity"
)

// Species is a participant in an error-canceling reaction: a molecular
// structure paired with its enthalpy of formation at 298 K evaluated with a
// low level of theory and, for benchmark species, a known high-level value.
// Immutable once constructed.
type Species struct {
	structure      *molecule.Structure
	lowLevelHf298  quantity.Scalar
	highLevelHf298 quantity.Scalar // zero value when absent (target species)
}

// NewTargetSpecies constructs the species whose high-level enthalpy is being
// estimated.  Only the low-level value is supplied.
func NewTargetSpecies(structure *molecule.Structure, lowLevelHf298 quantity.Scalar) (*Species, error) {
	if structure == nil {
		return nil, errors.InvalidParam("target species requires a structure")
	}
	if lowLevelHf298.IsZero() {
		return nil, errors.InvalidParam("target species requires a low-level enthalpy").
			WithDetail("label=" + structure.Label())
	}
	return &Species{structure: structure, lowLevelHf298: lowLevelHf298}, nil
}

// NewBenchmarkSpecies constructs a reference species with both low-level and
// high-level enthalpies.
func NewBenchmarkSpecies(structure *molecule.Structure, lowLevelHf298, highLevelHf298 quantity.Scalar) (*Species, error) {
	if structure == nil {
		return nil, errors.InvalidParam("benchmark species requires a structure")
	}
	if lowLevelHf298.IsZero() || highLevelHf298.IsZero() {
		return nil, errors.New(errors.ErrCodeMissingHighLevel,
			"benchmark species requires both low-level and high-level enthalpies").
			WithDetail("label=" + structure.Label())
	}
	return &Species{
		structure:      structure,
		lowLevelHf298:  lowLevelHf298,
		highLevelHf298: highLevelHf298,
	}, nil
}

// Structure returns the molecular structure.  Callers must treat it as
// read-only.
func (s *Species) Structure() *molecule.Structure { return s.structure }

// Label returns the structure's display label.
func (s *Species) Label() string { return s.structure.Label() }

// LowLevelHf298 returns the low-level enthalpy of formation.
func (s *Species) LowLevelHf298() quantity.Scalar { return s.lowLevelHf298 }

// HighLevelHf298 returns the high-level enthalpy of formation and whether it
// is present.  It is absent exactly for target species.
func (s *Species) HighLevelHf298() (quantity.Scalar, bool) {
	return s.highLevelHf298, !s.highLevelHf298.IsZero()
}

// IsBenchmark reports whether the species carries a high-level enthalpy.
func (s *Species) IsBenchmark() bool {
	return !s.highLevelHf298.IsZero()
}
