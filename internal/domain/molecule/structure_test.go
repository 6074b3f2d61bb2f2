package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ThermoCancel/pkg/errors"
)

// newAlkane builds the linear alkane C(n)H(2n+2): carbons first, then the
// hydrogens attached left to right.
func newAlkane(t *testing.T, label string, carbons int) *Structure {
	t.Helper()

	var atoms []Atom
	var bonds []Bond
	for i := 0; i < carbons; i++ {
		atoms = append(atoms, Atom{Element: "C"})
		if i > 0 {
			bonds = append(bonds, Bond{A: i - 1, B: i, Order: OrderSingle})
		}
	}
	for i := 0; i < carbons; i++ {
		hCount := 2
		if i == 0 || i == carbons-1 {
			hCount = 3
		}
		if carbons == 1 {
			hCount = 4
		}
		for h := 0; h < hCount; h++ {
			atoms = append(atoms, Atom{Element: "H"})
			bonds = append(bonds, Bond{A: i, B: len(atoms) - 1, Order: OrderSingle})
		}
	}

	s, err := NewStructure(label, atoms, bonds)
	require.NoError(t, err)
	return s
}

// newCarbonRing builds a bare carbon ring of the given size with the given
// bond order on every edge.
func newCarbonRing(t *testing.T, label string, size int, order BondOrder) *Structure {
	t.Helper()

	atoms := make([]Atom, size)
	bonds := make([]Bond, size)
	for i := 0; i < size; i++ {
		atoms[i] = Atom{Element: "C"}
		bonds[i] = Bond{A: i, B: (i + 1) % size, Order: order}
	}
	s, err := NewStructure(label, atoms, bonds)
	require.NoError(t, err)
	return s
}

func TestNewStructureValidation(t *testing.T) {
	_, err := NewStructure("empty", nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStructureEmpty))

	_, err = NewStructure("dangling", []Atom{{Element: "C"}}, []Bond{{A: 0, B: 5, Order: OrderSingle}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBondOutOfRange))

	_, err = NewStructure("self-loop", []Atom{{Element: "C"}, {Element: "C"}}, []Bond{{A: 1, B: 1, Order: OrderSingle}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBondOutOfRange))

	_, err = NewStructure("bad-order", []Atom{{Element: "C"}, {Element: "C"}}, []Bond{{A: 0, B: 1, Order: BondOrder(9)}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBondOrderInvalid))

	_, err = NewStructure("blank-element", []Atom{{Element: " "}}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStructureInvalid))
}

func TestElementCounts(t *testing.T) {
	ethane := newAlkane(t, "ethane", 2)
	assert.Equal(t, map[string]int{"C": 2, "H": 6}, ethane.ElementCounts())
	assert.Equal(t, 8, ethane.AtomCount())
	assert.Equal(t, 7, ethane.BondCount())
}

func TestBondTypeCounts(t *testing.T) {
	propane := newAlkane(t, "propane", 3)
	assert.Equal(t, map[string]int{"C-C": 2, "C-H": 8}, propane.BondTypeCounts())
}

func TestBondTypeLabelSymmetry(t *testing.T) {
	// The same C=O bond declared in both directions yields one type.
	s, err := NewStructure("formaldehyde", []Atom{
		{Element: "O"}, {Element: "C"}, {Element: "H"}, {Element: "H"},
	}, []Bond{
		{A: 0, B: 1, Order: OrderDouble},
		{A: 1, B: 2, Order: OrderSingle},
		{A: 1, B: 3, Order: OrderSingle},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"C=O": 1, "C-H": 2}, s.BondTypeCounts())
}

func TestFormulaHillOrder(t *testing.T) {
	s, err := NewStructure("methanol", []Atom{
		{Element: "C"}, {Element: "O"},
		{Element: "H"}, {Element: "H"}, {Element: "H"}, {Element: "H"},
	}, []Bond{
		{A: 0, B: 1, Order: OrderSingle},
		{A: 0, B: 2, Order: OrderSingle},
		{A: 0, B: 3, Order: OrderSingle},
		{A: 0, B: 4, Order: OrderSingle},
		{A: 1, B: 5, Order: OrderSingle},
	})
	require.NoError(t, err)
	assert.Equal(t, "CH4O", s.Formula())
	assert.Equal(t, "methanol (CH4O)", s.String())
}
