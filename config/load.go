package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads path as YAML and decodes it into a Config, validating the
// General/Experiment/AgentComponent sections before returning. It
// mirrors the viper-then-yaml.v3 double-hop used elsewhere in this
// codebase for config: viper handles path resolution and the initial
// decode into a loosely-typed destination, and a second yaml.v3 pass
// over the raw bytes is kept around so DecodeDomain can later pull out
// the domain-specific section by name.
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, &Error{Op: "Load " + path, Err: err}
	}

	cfg := &Config{}
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, &Error{Op: "Load " + path, Err: err}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "Load " + path, Err: err}
	}
	cfg.raw = raw

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeDomain locates the top-level section named after
// c.General.Domain (e.g. "FireFighter", "GrabAChair", "GridTraffic") and
// decodes it into out, which should be a pointer to the calling domain
// package's own config struct. Returns a config.Error satisfying
// IsConfigError if the section is absent.
func (c *Config) DecodeDomain(out interface{}) error {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(c.raw, &doc); err != nil {
		return &Error{Op: "DecodeDomain", Err: err}
	}

	node, ok := doc[c.General.Domain]
	if !ok {
		return &Error{Op: "DecodeDomain " + c.General.Domain, Err: errUnknownDomain}
	}
	if err := node.Decode(out); err != nil {
		return &Error{Op: "DecodeDomain " + c.General.Domain, Err: err}
	}
	return nil
}
