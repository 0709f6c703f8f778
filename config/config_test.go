package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfValidates(t *testing.T) {
	require.NoError(t, DefaultConf.Validate())
}

func TestValidateRejectsNonPositiveDiameter(t *testing.T) {
	c := *DefaultConf
	c.ParticleDiam = 0
	assert.Error(t, c.Validate())
}

func TestValidateRejectsDegenerateDomain(t *testing.T) {
	c := *DefaultConf
	c.DomainXMin = c.DomainXMax
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownSolverMode(t *testing.T) {
	c := *DefaultConf
	c.SolverMode = "parallel"
	assert.Error(t, c.Validate())
}

func TestValidateRejectsNegativeStabilizationIterations(t *testing.T) {
	c := *DefaultConf
	c.StabilizationIterations = -1
	assert.Error(t, c.Validate())
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.toml")
	contents := "solver_iterations = 16\nsolver_mode = \"batched\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	c, err := ParseConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 16, c.SolverIterations)
	assert.Equal(t, Batched, c.SolverMode)
	assert.Equal(t, DefaultConf.ParticleDiam, c.ParticleDiam, "fields absent from the file keep their default")
}

func TestParseConfigMissingFile(t *testing.T) {
	_, err := ParseConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
