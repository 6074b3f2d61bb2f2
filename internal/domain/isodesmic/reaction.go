package isodesmic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/ThermoCancel/pkg/errors"
	"github.com/turtacn/ThermoCancel/pkg/quantity"
)

// Reaction is an error-canceling reaction.  The target is an implicit
// reactant with coefficient −1 and never appears in the species map; the map
// holds the signed stoichiometric coefficients of the benchmark species.
// Negative coefficients are consumed alongside the target (reactant side),
// positive coefficients are produced (product side).
type Reaction struct {
	target  *Species
	species map[*Species]int
}

// NewReaction constructs an empty reaction for the given target.
func NewReaction(target *Species) *Reaction {
	return &Reaction{target: target, species: make(map[*Species]int)}
}

// Target returns the target species.
func (r *Reaction) Target() *Species { return r.target }

// SetCoefficient records the signed coefficient of a benchmark species.
// A zero coefficient removes the species from the reaction.
func (r *Reaction) SetCoefficient(sp *Species, coefficient int) {
	if coefficient == 0 {
		delete(r.species, sp)
		return
	}
	r.species[sp] = coefficient
}

// Coefficient returns the signed coefficient of sp, zero if absent.
func (r *Reaction) Coefficient(sp *Species) int { return r.species[sp] }

// Species returns the participating benchmark species with their signed
// coefficients.  The returned map is a copy.
func (r *Reaction) Species() map[*Species]int {
	out := make(map[*Species]int, len(r.species))
	for sp, v := range r.species {
		out[sp] = v
	}
	return out
}

// Size returns the number of distinct benchmark species in the reaction.
func (r *Reaction) Size() int { return len(r.species) }

// CalculateTargetThermo estimates the target's high-level enthalpy of
// formation from the reaction:
//
//	ΔH_rxn(low)  = Σ ν_i·Hf_low(i)  − Hf_low(target)
//	Hf_high(tgt) = Σ ν_i·Hf_high(i) − ΔH_rxn(low)
//
// The algebra is exact and happens on SI magnitudes; the result is returned
// in J/mol.  Every participating species must be a benchmark species.
func (r *Reaction) CalculateTargetThermo() (quantity.Scalar, error) {
	if len(r.species) == 0 {
		return quantity.Scalar{}, errors.New(errors.ErrCodeEmptyReaction,
			"reaction has no participating species").WithDetail("target=" + r.target.Label())
	}

	lowRxn := -r.target.LowLevelHf298().SI()
	highSum := 0.0
	for sp, coeff := range r.species {
		high, ok := sp.HighLevelHf298()
		if !ok {
			return quantity.Scalar{}, errors.New(errors.ErrCodeMissingHighLevel,
				"benchmark species has no high-level enthalpy").WithDetail("label=" + sp.Label())
		}
		lowRxn += float64(coeff) * sp.LowLevelHf298().SI()
		highSum += float64(coeff) * high.SI()
	}

	return quantity.MustScalar(highSum-lowRxn, "J/mol"), nil
}

// String renders the reaction as a signed stoichiometric equation with the
// implicit target on the reactant side, e.g.
//
//	target + 1 ethane <=> 2 propane
//
// Species are ordered by label on each side so the output is deterministic.
func (r *Reaction) String() string {
	type term struct {
		label string
		coeff int
	}
	var reactants, products []term
	for sp, coeff := range r.species {
		if coeff < 0 {
			reactants = append(reactants, term{label: sp.Label(), coeff: -coeff})
		} else {
			products = append(products, term{label: sp.Label(), coeff: coeff})
		}
	}
	byLabel := func(terms []term) {
		sort.Slice(terms, func(i, j int) bool { return terms[i].label < terms[j].label })
	}
	byLabel(reactants)
	byLabel(products)

	render := func(terms []term) string {
		parts := make([]string, len(terms))
		for i, t := range terms {
			parts[i] = fmt.Sprintf("%d %s", t.coeff, t.label)
		}
		return strings.Join(parts, " + ")
	}

	left := r.target.Label()
	if len(reactants) > 0 {
		left += " + " + render(reactants)
	}
	right := render(products)
	if right == "" {
		right = "(nothing)"
	}
	return left + " <=> " + right
}
