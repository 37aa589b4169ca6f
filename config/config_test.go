package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYaml = `
General:
  domain: GridTraffic
  horizon: 50
  discountFactor: 0.95
  IDOfAgentToControl: "1"

Experiment:
  repeat: 10
  saveReplay: true
  fullLogging: false

AgentComponent:
  "1":
    Type: POMCP
    Simulator:
      Type: Sequential
      InfluencePredictor:
        Type: Sequential
        numberOfHiddenStates: 0
        numberOfSampledEpisodesForTraining: 1000
    Rollout:
      numberOfParticles: 128
      discountHorizon: 0.01
      particleReinvigoration: true
      particleReinvigorationRate: 0.1
      explorationConstant: 1.0
      numberOfSimulationsPerStep: 512
  "2":
    Type: Random

GridTraffic:
  2SDBNYamlFilePath: "dbn.yaml"
  numberOfIntersections: 4
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTempConfig(t, sampleYaml)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "GridTraffic", cfg.General.Domain)
	assert.Equal(t, 50, cfg.General.Horizon)
	assert.Equal(t, 0.95, cfg.General.DiscountFactor)
	assert.Equal(t, "1", cfg.General.IDOfAgentToControl)

	assert.Equal(t, 10, cfg.Experiment.Repeat)
	assert.True(t, cfg.Experiment.SaveReplay)

	agent := cfg.AgentComponent["1"]
	assert.Equal(t, "POMCP", agent.Type)
	assert.Equal(t, "Sequential", agent.Simulator.Type)
	assert.Equal(t, 512, agent.Rollout.NumberOfSimulationsPerStep)

	other := cfg.AgentComponent["2"]
	assert.Equal(t, "Random", other.Type)
}

func TestDecodeDomainSection(t *testing.T) {
	path := writeTempConfig(t, sampleYaml)
	cfg, err := Load(path)
	require.NoError(t, err)

	var domain struct {
		Path                  string `yaml:"2SDBNYamlFilePath"`
		NumberOfIntersections int    `yaml:"numberOfIntersections"`
	}
	require.NoError(t, cfg.DecodeDomain(&domain))
	assert.Equal(t, "dbn.yaml", domain.Path)
	assert.Equal(t, 4, domain.NumberOfIntersections)
}

func TestValidateRejectsMissingDomain(t *testing.T) {
	bad := `
General:
  horizon: 10
  discountFactor: 0.9
  IDOfAgentToControl: "1"
AgentComponent:
  "1":
    Type: Random
`
	path := writeTempConfig(t, bad)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestValidateRejectsUncontrolledAgent(t *testing.T) {
	bad := `
General:
  domain: GridTraffic
  horizon: 10
  discountFactor: 0.9
  IDOfAgentToControl: "missing"
AgentComponent:
  "1":
    Type: Random
`
	path := writeTempConfig(t, bad)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestValidateRejectsUnknownAgentType(t *testing.T) {
	bad := `
General:
  domain: GridTraffic
  horizon: 10
  discountFactor: 0.9
  IDOfAgentToControl: "1"
AgentComponent:
  "1":
    Type: NotARealType
`
	path := writeTempConfig(t, bad)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestValidateRejectsBadDiscountFactor(t *testing.T) {
	bad := `
General:
  domain: GridTraffic
  horizon: 10
  discountFactor: 1.5
  IDOfAgentToControl: "1"
AgentComponent:
  "1":
    Type: Random
`
	path := writeTempConfig(t, bad)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestDecodeDomainUnknownSection(t *testing.T) {
	missing := `
General:
  domain: NoSuchDomain
  horizon: 10
  discountFactor: 0.9
  IDOfAgentToControl: "1"
AgentComponent:
  "1":
    Type: Random
`
	path := writeTempConfig(t, missing)
	cfg, err := Load(path)
	require.NoError(t, err)

	var out struct{}
	err = cfg.DecodeDomain(&out)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}
