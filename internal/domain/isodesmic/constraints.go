// Package isodesmic implements the error-canceling reaction core: constraint
// enumeration over molecular structures, the MILP-based reaction finder, the
// subset-search frontier, and the aggregation of per-reaction enthalpy
// estimates into a single value.
package isodesmic

import (
	"fmt"
	"sort"

	"github.com/turtacn/ThermoCancel/internal/domain/molecule"
	"github.com/turtacn/ThermoCancel/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// ConstraintIndex
// ─────────────────────────────────────────────────────────────────────────────

// ConstraintIndex is a growable bijection from constraint labels (element
// symbols, bond-type keys, ring-size keys) to dense column indices.  Indices
// are assigned in first-seen order and never reused or reassigned, so label
// discovery order determines column identity for the lifetime of the owning
// SpeciesConstraints.
type ConstraintIndex struct {
	indexes map[string]int
	labels  []string
}

// NewConstraintIndex returns an empty index.
func NewConstraintIndex() *ConstraintIndex {
	return &ConstraintIndex{indexes: make(map[string]int)}
}

// IndexOf returns the column index for label, allocating the next free index
// on first use.
func (m *ConstraintIndex) IndexOf(label string) int {
	if idx, ok := m.indexes[label]; ok {
		return idx
	}
	idx := len(m.labels)
	m.indexes[label] = idx
	m.labels = append(m.labels, label)
	return idx
}

// Len returns the number of labels assigned so far.
func (m *ConstraintIndex) Len() int { return len(m.labels) }

// Labels returns the assigned labels in index order.
func (m *ConstraintIndex) Labels() []string {
	return append([]string(nil), m.labels...)
}

// ─────────────────────────────────────────────────────────────────────────────
// SpeciesConstraints
// ─────────────────────────────────────────────────────────────────────────────

// SpeciesConstraints defines which conservation rules apply and maps
// molecular structures to fixed-length integer constraint vectors.  Atom-type
// conservation is always enforced; bond-type and ring-size conservation are
// optional.
//
// Enumerate visits labels of one structure in a fixed order (elements, then
// bond types, each sorted lexicographically, then rings by size), so a given
// enumeration sequence of structures always yields the same column
// assignment.  Callers must enumerate the target before the benchmark set to
// keep indices reproducible across runs.
type SpeciesConstraints struct {
	conserveBonds    bool
	conserveRingSize bool

	allowedAtomTypes  []string
	maxNumConstraints int

	index *ConstraintIndex
}

// NewSpeciesConstraints builds the constraint definition for a target whose
// structures contain only allowedAtomTypes.  The constraint-column cap is
// 3·|allowedAtomTypes|² + 10, sized so bond-type combinatorics cannot
// overflow it.
func NewSpeciesConstraints(allowedAtomTypes []string, conserveBonds, conserveRingSize bool) *SpeciesConstraints {
	sorted := append([]string(nil), allowedAtomTypes...)
	sort.Strings(sorted)
	return &SpeciesConstraints{
		conserveBonds:     conserveBonds,
		conserveRingSize:  conserveRingSize,
		allowedAtomTypes:  sorted,
		maxNumConstraints: 3*len(allowedAtomTypes)*len(allowedAtomTypes) + 10,
		index:             NewConstraintIndex(),
	}
}

// AllowedAtomTypes returns the element symbols permitted in benchmark species.
func (sc *SpeciesConstraints) AllowedAtomTypes() []string {
	return append([]string(nil), sc.allowedAtomTypes...)
}

// MaxNumConstraints returns the configured constraint-column cap.
func (sc *SpeciesConstraints) MaxNumConstraints() int { return sc.maxNumConstraints }

// NumConstraints returns the number of distinct labels discovered so far —
// the cutoff index used to trim constraint vectors.
func (sc *SpeciesConstraints) NumConstraints() int { return sc.index.Len() }

// Labels returns the discovered constraint labels in column order.
func (sc *SpeciesConstraints) Labels() []string { return sc.index.Labels() }

// Enumerate computes the fixed-length constraint vector for a structure.
// Entries beyond the number of labels discovered across all enumerated
// structures are structurally zero.  Discovering more distinct labels than
// MaxNumConstraints is a configuration error, fatal to the call.
func (sc *SpeciesConstraints) Enumerate(s *molecule.Structure) ([]int, error) {
	vector := make([]int, sc.maxNumConstraints)

	add := func(label string, count int) error {
		idx := sc.index.IndexOf(label)
		if idx >= sc.maxNumConstraints {
			return errors.New(errors.ErrCodeConstraintOverflow,
				"constraint count exceeds the configured maximum").
				WithDetail(fmt.Sprintf("label=%s max=%d", label, sc.maxNumConstraints))
		}
		vector[idx] += count
		return nil
	}

	elements := s.ElementCounts()
	for _, el := range sortedKeys(elements) {
		if err := add(el, elements[el]); err != nil {
			return nil, err
		}
	}

	if sc.conserveBonds {
		bonds := s.BondTypeCounts()
		for _, label := range sortedKeys(bonds) {
			if err := add(label, bonds[label]); err != nil {
				return nil, err
			}
		}
	}

	if sc.conserveRingSize {
		rings := s.SmallestRings()
		sort.Ints(rings)
		for _, size := range rings {
			if err := add(fmt.Sprintf("%d_ring", size), 1); err != nil {
				return nil, err
			}
		}
	}

	return vector, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
