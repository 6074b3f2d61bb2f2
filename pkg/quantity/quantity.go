// Package quantity provides a unit-aware scalar value for molar energies.
// All arithmetic inside the estimation core happens on the canonical SI
// magnitude (J/mol); units exist only at the boundaries, where values enter
// from species definitions and leave toward the caller.
package quantity

import (
	"fmt"

	"github.com/turtacn/ThermoCancel/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Units
// ─────────────────────────────────────────────────────────────────────────────

// conversionToSI maps a recognised unit string to its factor into J/mol.
// eV and hartree are per-particle units and include the Avogadro constant.
var conversionToSI = map[string]float64{
	"J/mol":       1.0,
	"kJ/mol":      1.0e3,
	"cal/mol":     4.184,
	"kcal/mol":    4.184e3,
	"eV":          96485.33212,
	"eV/molecule": 96485.33212,
	"hartree":     2625499.6394799,
}

// SupportedUnits returns the unit strings accepted by NewScalar.
func SupportedUnits() []string {
	return []string{"J/mol", "kJ/mol", "cal/mol", "kcal/mol", "eV", "eV/molecule", "hartree"}
}

// ─────────────────────────────────────────────────────────────────────────────
// Scalar
// ─────────────────────────────────────────────────────────────────────────────

// Scalar is an immutable molar-energy value with an explicit unit.
type Scalar struct {
	// Value is the magnitude expressed in Unit.
	Value float64 `json:"value" yaml:"value"`

	// Unit is the unit string the value was supplied in.
	Unit string `json:"unit" yaml:"unit"`
}

// NewScalar constructs a Scalar from a magnitude and unit string.
// The unit must be one of SupportedUnits.
func NewScalar(value float64, unit string) (Scalar, error) {
	if _, ok := conversionToSI[unit]; !ok {
		return Scalar{}, errors.New(errors.ErrCodeUnknownUnit,
			"unknown physical unit").WithDetail(fmt.Sprintf("unit=%q", unit))
	}
	return Scalar{Value: value, Unit: unit}, nil
}

// MustScalar is NewScalar for statically known units; it panics on an
// unrecognised unit and is intended for literals in tests and defaults.
func MustScalar(value float64, unit string) Scalar {
	s, err := NewScalar(value, unit)
	if err != nil {
		panic(err)
	}
	return s
}

// FromSI constructs a Scalar in the requested unit from an SI (J/mol)
// magnitude.
func FromSI(si float64, unit string) (Scalar, error) {
	factor, ok := conversionToSI[unit]
	if !ok {
		return Scalar{}, errors.New(errors.ErrCodeUnknownUnit,
			"unknown physical unit").WithDetail(fmt.Sprintf("unit=%q", unit))
	}
	return Scalar{Value: si / factor, Unit: unit}, nil
}

// SI returns the magnitude converted to J/mol.
func (s Scalar) SI() float64 {
	// Unit validity is established at construction; a zero-value Scalar
	// converts with factor 0 lookup miss, so guard explicitly.
	factor, ok := conversionToSI[s.Unit]
	if !ok {
		return 0
	}
	return s.Value * factor
}

// ConvertTo returns an equivalent Scalar expressed in the given unit.
func (s Scalar) ConvertTo(unit string) (Scalar, error) {
	return FromSI(s.SI(), unit)
}

// IsZero reports whether the scalar is the zero value (no unit assigned).
func (s Scalar) IsZero() bool {
	return s.Unit == ""
}

// String renders the scalar as "<value> <unit>".
func (s Scalar) String() string {
	return fmt.Sprintf("%g %s", s.Value, s.Unit)
}
