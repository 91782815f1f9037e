package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScoredFields_AllFields(t *testing.T) {
	text := "P: 6\nE: 3\nC: 15\nR: 270\nHazard Type: solvent vapor ignition"
	f, err := parseScoredFields(text)
	require.NoError(t, err)
	assert.Equal(t, 6.0, f.P)
	assert.Equal(t, 3.0, f.E)
	assert.Equal(t, 15.0, f.C)
	assert.True(t, f.HasR)
	assert.Equal(t, 270.0, f.riskScore())
	assert.Equal(t, "solvent vapor ignition", f.HazardType)
}

func TestParseScoredFields_MissingRIsComputed(t *testing.T) {
	f, err := parseScoredFields("P: 6\nE: 3\nC: 15")
	require.NoError(t, err)
	assert.False(t, f.HasR)
	assert.Equal(t, 270.0, f.riskScore())
}

func TestParseScoredFields_EqualsSeparatorAndMarkup(t *testing.T) {
	text := "* **P** = 0.5\n- E=6\n> C = 40\nhazard type = fall from height"
	f, err := parseScoredFields(text)
	require.NoError(t, err)
	assert.Equal(t, 0.5, f.P)
	assert.Equal(t, 6.0, f.E)
	assert.Equal(t, 40.0, f.C)
	assert.Equal(t, 120.0, f.riskScore())
	assert.Equal(t, "fall from height", f.HazardType)
}

func TestParseScoredFields_MissingFieldsDefaultToZero(t *testing.T) {
	f, err := parseScoredFields("P: 3\nsome commentary")
	require.NoError(t, err)
	assert.Equal(t, 3.0, f.P)
	assert.Equal(t, 0.0, f.E)
	assert.Equal(t, 0.0, f.riskScore())
	assert.Equal(t, defaultHazardType, f.HazardType)
}

func TestParseScoredFields_NothingUsable(t *testing.T) {
	_, err := parseScoredFields("I cannot assess this task, sorry.")
	assert.Error(t, err)
}

func TestParseScoredFields_FieldNameMustStartLine(t *testing.T) {
	// "PPE: 3" must not bind to E, and prose mentioning "C" must not bind.
	_, err := parseScoredFields("Wear PPE: 3 items minimum.")
	assert.Error(t, err)
}

func TestParseScoredFields_SurroundingWhitespace(t *testing.T) {
	f, err := parseScoredFields("  P :  10 \n\t E\t=\t6\nC:7\n")
	require.NoError(t, err)
	assert.Equal(t, 10.0, f.P)
	assert.Equal(t, 6.0, f.E)
	assert.Equal(t, 7.0, f.C)
}
