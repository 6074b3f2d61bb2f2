package isodesmic

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ThermoCancel/internal/domain/molecule"
	"github.com/turtacn/ThermoCancel/pkg/errors"
)

func TestConstraintIndexAssignsOnFirstUse(t *testing.T) {
	m := NewConstraintIndex()
	assert.Equal(t, 0, m.IndexOf("C"))
	assert.Equal(t, 1, m.IndexOf("H"))
	// Repeated lookups are stable.
	assert.Equal(t, 0, m.IndexOf("C"))
	assert.Equal(t, 2, m.IndexOf("C-C"))
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"C", "H", "C-C"}, m.Labels())
}

func TestEnumerateAtomAndBondConstraints(t *testing.T) {
	sc := NewSpeciesConstraints([]string{"C", "H"}, true, true)
	assert.Equal(t, 3*2*2+10, sc.MaxNumConstraints())

	vector, err := sc.Enumerate(alkaneStructure(t, "ethane", 2))
	require.NoError(t, err)
	require.Len(t, vector, sc.MaxNumConstraints())

	// Elements first (sorted), then bond types (sorted).
	assert.Equal(t, []string{"C", "H", "C-C", "C-H"}, sc.Labels())
	assert.Equal(t, []int{2, 6, 1, 6}, vector[:4])
	for _, v := range vector[4:] {
		assert.Zero(t, v)
	}
}

func TestEnumerateColumnIdentityAcrossStructures(t *testing.T) {
	sc := NewSpeciesConstraints([]string{"C", "H"}, true, false)

	ethane, err := sc.Enumerate(alkaneStructure(t, "ethane", 2))
	require.NoError(t, err)
	methane, err := sc.Enumerate(alkaneStructure(t, "methane", 1))
	require.NoError(t, err)

	// Methane has no C-C bond, so its entry in the C-C column assigned by
	// ethane stays zero.
	assert.Equal(t, 4, sc.NumConstraints())
	assert.Equal(t, []int{2, 6, 1, 6}, ethane[:4])
	assert.Equal(t, []int{1, 4, 0, 4}, methane[:4])
}

func TestEnumerateSkipsDisabledRules(t *testing.T) {
	sc := NewSpeciesConstraints([]string{"C", "H"}, false, false)
	vector, err := sc.Enumerate(alkaneStructure(t, "propane", 3))
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "H"}, sc.Labels())
	assert.Equal(t, []int{3, 8}, vector[:2])
}

func TestEnumerateRingConstraints(t *testing.T) {
	atoms := make([]molecule.Atom, 6)
	bonds := make([]molecule.Bond, 6)
	for i := 0; i < 6; i++ {
		atoms[i] = molecule.Atom{Element: "C"}
		bonds[i] = molecule.Bond{A: i, B: (i + 1) % 6, Order: molecule.OrderAromatic}
	}
	ring, err := molecule.NewStructure("benzene-core", atoms, bonds)
	require.NoError(t, err)

	sc := NewSpeciesConstraints([]string{"C"}, true, true)
	vector, err := sc.Enumerate(ring)
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "C~C", "6_ring"}, sc.Labels())
	assert.Equal(t, []int{6, 6, 1}, vector[:3])
}

func TestEnumerateConstraintOverflow(t *testing.T) {
	// An empty allowed set caps the columns at 10; a structure with eleven
	// distinct elements must overflow it.
	var atoms []molecule.Atom
	for i := 0; i < 11; i++ {
		atoms = append(atoms, molecule.Atom{Element: fmt.Sprintf("X%d", i)})
	}
	s, err := molecule.NewStructure("exotic", atoms, nil)
	require.NoError(t, err)

	sc := NewSpeciesConstraints(nil, false, false)
	_, err = sc.Enumerate(s)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConstraintOverflow))
}
