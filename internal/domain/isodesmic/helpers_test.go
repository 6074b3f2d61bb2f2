package isodesmic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/ThermoCancel/internal/config"
	"github.com/turtacn/ThermoCancel/internal/domain/molecule"
	"github.com/turtacn/ThermoCancel/pkg/quantity"
)

// alkaneStructure builds the linear alkane C(n)H(2n+2).
func alkaneStructure(t *testing.T, label string, carbons int) *molecule.Structure {
	t.Helper()

	var atoms []molecule.Atom
	var bonds []molecule.Bond
	for i := 0; i < carbons; i++ {
		atoms = append(atoms, molecule.Atom{Element: "C"})
		if i > 0 {
			bonds = append(bonds, molecule.Bond{A: i - 1, B: i, Order: molecule.OrderSingle})
		}
	}
	for i := 0; i < carbons; i++ {
		hCount := 2
		switch {
		case carbons == 1:
			hCount = 4
		case i == 0 || i == carbons-1:
			hCount = 3
		}
		for h := 0; h < hCount; h++ {
			atoms = append(atoms, molecule.Atom{Element: "H"})
			bonds = append(bonds, molecule.Bond{A: i, B: len(atoms) - 1, Order: molecule.OrderSingle})
		}
	}

	s, err := molecule.NewStructure(label, atoms, bonds)
	require.NoError(t, err)
	return s
}

func benchmarkAlkane(t *testing.T, label string, carbons int, lowKJ, highKJ float64) *Species {
	t.Helper()
	sp, err := NewBenchmarkSpecies(alkaneStructure(t, label, carbons),
		quantity.MustScalar(lowKJ, "kJ/mol"),
		quantity.MustScalar(highKJ, "kJ/mol"))
	require.NoError(t, err)
	return sp
}

func targetAlkane(t *testing.T, label string, carbons int, lowKJ float64) *Species {
	t.Helper()
	sp, err := NewTargetSpecies(alkaneStructure(t, label, carbons),
		quantity.MustScalar(lowKJ, "kJ/mol"))
	require.NoError(t, err)
	return sp
}

func searchConfig() config.SearchConfig {
	cfg := config.DefaultSearchConfig()
	cfg.ConserveBonds = true
	cfg.ConserveRingSize = true
	return cfg
}
