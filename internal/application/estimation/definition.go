// Package estimation is the application layer: it turns declarative species
// definitions into domain objects, orchestrates the error-canceling reaction
// search, and handles caching and persistence concerns around the domain core.
package estimation

import (
	"fmt"

	"github.com/turtacn/ThermoCancel/internal/domain/isodesmic"
	"github.com/turtacn/ThermoCancel/internal/domain/molecule"
	"github.com/turtacn/ThermoCancel/pkg/errors"
	"github.com/turtacn/ThermoCancel/pkg/quantity"
)

// BondDefinition is the declarative form of a bond: two atom indices and an
// order (1 single, 2 double, 3 triple, 4 aromatic).
type BondDefinition struct {
	A     int `json:"a" yaml:"a"`
	B     int `json:"b" yaml:"b"`
	Order int `json:"order" yaml:"order"`
}

// SpeciesDefinition is the declarative form of a species as it appears in
// species files and the reference library.  HighLevelHf298 is nil for target
// species and required for benchmark species.
type SpeciesDefinition struct {
	Label          string           `json:"label" yaml:"label"`
	Atoms          []string         `json:"atoms" yaml:"atoms"`
	Bonds          []BondDefinition `json:"bonds" yaml:"bonds"`
	LowLevelHf298  quantity.Scalar  `json:"low_level_hf298" yaml:"low_level_hf298"`
	HighLevelHf298 *quantity.Scalar `json:"high_level_hf298,omitempty" yaml:"high_level_hf298,omitempty"`
}

// IsBenchmark reports whether the definition carries a high-level enthalpy.
func (d SpeciesDefinition) IsBenchmark() bool {
	return d.HighLevelHf298 != nil && !d.HighLevelHf298.IsZero()
}

// buildStructure materialises the molecular graph of the definition.
func (d SpeciesDefinition) buildStructure() (*molecule.Structure, error) {
	if d.Label == "" {
		return nil, errors.InvalidParam("species definition requires a label")
	}
	atoms := make([]molecule.Atom, len(d.Atoms))
	for i, el := range d.Atoms {
		atoms[i] = molecule.Atom{Element: el}
	}
	bonds := make([]molecule.Bond, len(d.Bonds))
	for i, b := range d.Bonds {
		bonds[i] = molecule.Bond{A: b.A, B: b.B, Order: molecule.BondOrder(b.Order)}
	}
	structure, err := molecule.NewStructure(d.Label, atoms, bonds)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSpeciesParseFailed,
			fmt.Sprintf("invalid structure for species %q", d.Label))
	}
	return structure, nil
}

// BuildTarget materialises the definition as a target species.  Any present
// high-level value is ignored, so a benchmark entry may double as a target
// when validating the scheme against known species.
func (d SpeciesDefinition) BuildTarget() (*isodesmic.Species, error) {
	structure, err := d.buildStructure()
	if err != nil {
		return nil, err
	}
	return isodesmic.NewTargetSpecies(structure, d.LowLevelHf298)
}

// BuildBenchmark materialises the definition as a benchmark species.
func (d SpeciesDefinition) BuildBenchmark() (*isodesmic.Species, error) {
	structure, err := d.buildStructure()
	if err != nil {
		return nil, err
	}
	if !d.IsBenchmark() {
		return nil, errors.New(errors.ErrCodeMissingHighLevel,
			"benchmark species definition requires a high-level enthalpy").
			WithDetail("label=" + d.Label)
	}
	return isodesmic.NewBenchmarkSpecies(structure, d.LowLevelHf298, *d.HighLevelHf298)
}
