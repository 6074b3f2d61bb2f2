package isodesmic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ThermoCancel/pkg/errors"
)

func TestReactionCoefficients(t *testing.T) {
	target := targetAlkane(t, "propane", 3, -92)
	ethane := benchmarkAlkane(t, "ethane", 2, -72, -84)

	r := NewReaction(target)
	assert.Zero(t, r.Size())

	r.SetCoefficient(ethane, 2)
	assert.Equal(t, 2, r.Coefficient(ethane))
	assert.Equal(t, 1, r.Size())

	r.SetCoefficient(ethane, 0)
	assert.Zero(t, r.Coefficient(ethane))
	assert.Zero(t, r.Size())
}

func TestCalculateTargetThermo(t *testing.T) {
	target := targetAlkane(t, "propane", 3, -92)
	methane := benchmarkAlkane(t, "methane", 1, -66, -74.6)
	ethane := benchmarkAlkane(t, "ethane", 2, -72, -84)

	r := NewReaction(target)
	r.SetCoefficient(ethane, 2)
	r.SetCoefficient(methane, -1)

	// Low-level reaction enthalpy:
	//   2*(-72) + (-1)*(-66) - (-92) = 14 kJ/mol
	// High-level combination:
	//   2*(-84) + (-1)*(-74.6) = -93.4 kJ/mol
	// Estimate: -93.4 - 14 = -107.4 kJ/mol.
	h, err := r.CalculateTargetThermo()
	require.NoError(t, err)
	assert.Equal(t, "J/mol", h.Unit)
	assert.InDelta(t, -107400.0, h.SI(), 1e-6)
}

func TestCalculateTargetThermoEmptyReaction(t *testing.T) {
	r := NewReaction(targetAlkane(t, "propane", 3, -92))
	_, err := r.CalculateTargetThermo()
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyReaction))
}

func TestCalculateTargetThermoRejectsNonBenchmark(t *testing.T) {
	r := NewReaction(targetAlkane(t, "propane", 3, -92))
	// A target species smuggled in as a participant has no high-level value.
	r.SetCoefficient(targetAlkane(t, "ethane", 2, -72), 1)

	_, err := r.CalculateTargetThermo()
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingHighLevel))
}

func TestReactionString(t *testing.T) {
	target := targetAlkane(t, "propane", 3, -92)
	methane := benchmarkAlkane(t, "methane", 1, -66, -74.6)
	ethane := benchmarkAlkane(t, "ethane", 2, -72, -84)

	r := NewReaction(target)
	r.SetCoefficient(ethane, 2)
	r.SetCoefficient(methane, -1)

	assert.Equal(t, "propane + 1 methane <=> 2 ethane", r.String())
}
