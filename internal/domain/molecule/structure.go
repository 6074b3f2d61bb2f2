// Package molecule provides the molecular structure model consumed by the
// error-canceling reaction core.  A Structure is an immutable atom/bond graph
// exposing the three descriptors the constraint machinery needs: element
// counts, bond-type counts, and smallest-ring sizes.
package molecule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/ThermoCancel/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Atoms and bonds
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder classifies a chemical bond.
type BondOrder int

const (
	OrderSingle   BondOrder = 1
	OrderDouble   BondOrder = 2
	OrderTriple   BondOrder = 3
	OrderAromatic BondOrder = 4
)

// Symbol returns the connector used in bond-type labels ("C-C", "C=O",
// "C#N", "C~C").
func (o BondOrder) Symbol() string {
	switch o {
	case OrderSingle:
		return "-"
	case OrderDouble:
		return "="
	case OrderTriple:
		return "#"
	case OrderAromatic:
		return "~"
	}
	return "?"
}

// Valid reports whether the order is one of the supported kinds.
func (o BondOrder) Valid() bool {
	return o >= OrderSingle && o <= OrderAromatic
}

// Atom is a single atom identified by its element symbol.
type Atom struct {
	Element string `json:"element" yaml:"element"`
}

// Bond connects two atoms by index into the structure's atom list.
type Bond struct {
	A     int       `json:"a" yaml:"a"`
	B     int       `json:"b" yaml:"b"`
	Order BondOrder `json:"order" yaml:"order"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Structure
// ─────────────────────────────────────────────────────────────────────────────

// Structure is an immutable molecular graph.  Construct it with NewStructure;
// the descriptor methods never mutate the receiver, so a Structure may be
// shared freely between species.
type Structure struct {
	label string
	atoms []Atom
	bonds []Bond

	// adjacency[i] lists the bond indices incident to atom i.
	adjacency [][]int
}

// NewStructure validates and builds a Structure.  Bond endpoints must index
// into atoms, orders must be supported, and at least one atom is required.
func NewStructure(label string, atoms []Atom, bonds []Bond) (*Structure, error) {
	if len(atoms) == 0 {
		return nil, errors.New(errors.ErrCodeStructureEmpty,
			"molecular structure has no atoms").WithDetail("label=" + label)
	}
	for i, a := range atoms {
		if strings.TrimSpace(a.Element) == "" {
			return nil, errors.New(errors.ErrCodeStructureInvalid,
				"atom has empty element symbol").WithDetail(fmt.Sprintf("label=%s atom=%d", label, i))
		}
	}

	adjacency := make([][]int, len(atoms))
	for i, b := range bonds {
		if b.A < 0 || b.A >= len(atoms) || b.B < 0 || b.B >= len(atoms) || b.A == b.B {
			return nil, errors.New(errors.ErrCodeBondOutOfRange,
				"bond references an atom outside the structure").
				WithDetail(fmt.Sprintf("label=%s bond=%d a=%d b=%d", label, i, b.A, b.B))
		}
		if !b.Order.Valid() {
			return nil, errors.New(errors.ErrCodeBondOrderInvalid,
				"unsupported bond order").WithDetail(fmt.Sprintf("label=%s bond=%d order=%d", label, i, b.Order))
		}
		adjacency[b.A] = append(adjacency[b.A], i)
		adjacency[b.B] = append(adjacency[b.B], i)
	}

	cp := &Structure{
		label:     label,
		atoms:     append([]Atom(nil), atoms...),
		bonds:     append([]Bond(nil), bonds...),
		adjacency: adjacency,
	}
	return cp, nil
}

// Label returns the display label of the structure.
func (s *Structure) Label() string { return s.label }

// AtomCount returns the number of atoms.
func (s *Structure) AtomCount() int { return len(s.atoms) }

// BondCount returns the number of bonds.
func (s *Structure) BondCount() int { return len(s.bonds) }

// ─────────────────────────────────────────────────────────────────────────────
// Descriptors
// ─────────────────────────────────────────────────────────────────────────────

// ElementCounts returns the number of atoms per element symbol.
func (s *Structure) ElementCounts() map[string]int {
	counts := make(map[string]int, 4)
	for _, a := range s.atoms {
		counts[a.Element]++
	}
	return counts
}

// BondTypeCounts returns the number of bonds per bond-type label.  The label
// orders the two element symbols lexicographically and joins them with the
// order symbol, so "C-H" and "H-C" collapse into one type.
func (s *Structure) BondTypeCounts() map[string]int {
	counts := make(map[string]int, 4)
	for _, b := range s.bonds {
		counts[s.bondLabel(b)]++
	}
	return counts
}

func (s *Structure) bondLabel(b Bond) string {
	e1, e2 := s.atoms[b.A].Element, s.atoms[b.B].Element
	if e1 > e2 {
		e1, e2 = e2, e1
	}
	return e1 + b.Order.Symbol() + e2
}

// Formula renders the molecular formula in Hill order (C first, then H, then
// the remaining elements alphabetically).
func (s *Structure) Formula() string {
	counts := s.ElementCounts()
	symbols := make([]string, 0, len(counts))
	for el := range counts {
		if el != "C" && el != "H" {
			symbols = append(symbols, el)
		}
	}
	sort.Strings(symbols)
	ordered := make([]string, 0, len(counts))
	if counts["C"] > 0 {
		ordered = append(ordered, "C")
	}
	if counts["H"] > 0 {
		ordered = append(ordered, "H")
	}
	ordered = append(ordered, symbols...)

	var sb strings.Builder
	for _, el := range ordered {
		sb.WriteString(el)
		if counts[el] > 1 {
			fmt.Fprintf(&sb, "%d", counts[el])
		}
	}
	return sb.String()
}

// String renders "<label> (<formula>)".
func (s *Structure) String() string {
	return fmt.Sprintf("%s (%s)", s.label, s.Formula())
}
