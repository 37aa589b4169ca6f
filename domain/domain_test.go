package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"iaop/agentmodel"
	"iaop/config"
)

const singleAgentDBN = `
x1:
  parents: []
  values: [0, 1]
  initial_dist: [1, 0]

"x1'":
  parents: [x1, a1]
  mode: CPT
  CPT:
    - when: [0, 0]
      probs: [1, 0]
    - when: [0, 1]
      probs: [0, 1]
    - when: [1, 0]
      probs: [0, 1]
    - when: [1, 1]
      probs: [1, 0]

a1:
  parents: []
  values: [0, 1]

o1:
  parents: ["x1'"]
  mode: CPT
  CPT:
    - when: [0]
      probs: [1, 0]
    - when: [1]
      probs: [0, 1]

r1:
  parents: ["x1'"]
  mode: CPT
  CPT:
    - when: [0]
      probs: [1, 0]
    - when: [1]
      probs: [0, 1]
`

const sampleConfig = `
General:
  domain: GridTraffic
  horizon: 10
  discountFactor: 0.9
  IDOfAgentToControl: "1"
AgentComponent:
  "1":
    Type: Random
GridTraffic:
  2SDBNYamlFilePath: "%s"
`

func writeDomainFixture(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	dbnPath := filepath.Join(dir, "dbn.yaml")
	if err := os.WriteFile(dbnPath, []byte(singleAgentDBN), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	contents := []byte(fmt.Sprintf(sampleConfig, dbnPath))
	if err := os.WriteFile(cfgPath, contents, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestLoadBuildsDomainFromConfig(t *testing.T) {
	Convey("Given a config pointing at a one-agent DBN file", t, func() {
		cfg := writeDomainFixture(t)

		d, err := Load(cfg)
		So(err, ShouldBeNil)

		Convey("the domain exposes the agent roster and its action cardinality", func() {
			So(d.AgentIDs, ShouldResemble, []string{"1"})
			So(d.NumberOfActions["1"], ShouldEqual, 2)
		})

		Convey("the ground-truth environment resets and steps", func() {
			env := d.Environment()
			obs := env.Reset()
			So(obs, ShouldContainKey, "1")

			nextObs, reward, done := env.Step(map[string]int{"1": 1})
			So(nextObs, ShouldContainKey, "1")
			So(reward, ShouldContainKey, "1")
			So(done, ShouldBeFalse)
		})
	})
}

func TestNewAgentDispatchesByType(t *testing.T) {
	Convey("Given the GridTraffic registry", t, func() {
		random := NewAgent("GridTraffic", "Random", "1", 3)
		So(random, ShouldHaveSameTypeAs, &agentmodel.Random{})

		naive := NewAgent("GridTraffic", "Naive", "1", 3)
		So(naive, ShouldHaveSameTypeAs, &agentmodel.Reactive{})
	})
}
