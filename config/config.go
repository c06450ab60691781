// The config package holds the engine, input and output parameters of
// a kvmr run.  Defaults are compiled in; a yaml file and KVMR_*
// environment variables override them, in that order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	db "kvmr/debug"
)

const ENVPREFIX = "KVMR_"

var defaults = `
name: DataflowGraphExample

engine:
  nworker: 0
  nshard: 8
  partitioner: block
  merge: shard
  seed: 119

input:
  n: 1000000
  bign: 10000000
  bigshards: 100
  file: ""

nondet:
  repartition: 100
  shards: [10, 20, 50]

output:
  answers: output/part1-answers.txt
`

type Engine struct {
	// Max number of concurrent shard workers; 0 means one per CPU.
	NWORKER int `yaml:"nworker"`
	// Shard count used when a caller doesn't pick one.
	NSHARD      int    `yaml:"nshard"`
	PARTITIONER string `yaml:"partitioner"`
	MERGE       string `yaml:"merge"`
	SEED        uint64 `yaml:"seed"`
}

type Input struct {
	N         int    `yaml:"n"`
	BIGN      int    `yaml:"bign"`
	BIGSHARDS int    `yaml:"bigshards"`
	FILE      string `yaml:"file"`
}

type Nondet struct {
	REPARTITION int   `yaml:"repartition"`
	SHARDS      []int `yaml:"shards"`
}

type Output struct {
	ANSWERS string `yaml:"answers"`
}

type Config struct {
	Name   string `yaml:"name"`
	Engine Engine `yaml:"engine"`
	Input  Input  `yaml:"input"`
	Nondet Nondet `yaml:"nondet"`
	Output Output `yaml:"output"`
}

func (c *Config) String() string {
	return fmt.Sprintf("&{ name:%v engine:%+v input:%+v nondet:%+v output:%+v }", c.Name, c.Engine, c.Input, c.Nondet, c.Output)
}

// Default returns a fresh copy of the compiled-in configuration.
func Default() *Config {
	c := &Config{}
	if err := yaml.Unmarshal([]byte(defaults), c); err != nil {
		db.DFatalf("Error unmarshal defaults: %v", err)
	}
	return c
}

// ReadConfig starts from the defaults, overlays the yaml file at pn
// (if pn isn't empty) and then the environment.
func ReadConfig(pn string) (*Config, error) {
	c := Default()
	if pn != "" {
		b, err := os.ReadFile(pn)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config %v: %v", pn, err)
		}
	}
	if err := c.overrideEnv(os.Environ()); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	db.DPrintf(db.CONFIG, "config %v", c)
	return c, nil
}

// overrideEnv applies KVMR_<SECTION>_<FIELD>=value entries, e.g.
// KVMR_ENGINE_NSHARD=16 or KVMR_NONDET_SHARDS=2,4,8.
func (c *Config) overrideEnv(env []string) error {
	m := make(map[string]interface{})
	for _, e := range env {
		kv := strings.SplitN(e, "=", 2)
		if len(kv) != 2 || !strings.HasPrefix(kv[0], ENVPREFIX) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(kv[0], ENVPREFIX)), "_")
		var v interface{} = kv[1]
		if strings.Contains(kv[1], ",") {
			v = strings.Split(kv[1], ",")
		}
		switch len(path) {
		case 1:
			m[path[0]] = v
		case 2:
			sec, ok := m[path[0]].(map[string]interface{})
			if !ok {
				sec = make(map[string]interface{})
				m[path[0]] = sec
			}
			sec[path[1]] = v
		default:
			return fmt.Errorf("bad config variable %v", kv[0])
		}
	}
	if len(m) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("config env: %v", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Engine.NWORKER < 0 {
		return fmt.Errorf("engine.nworker %d < 0", c.Engine.NWORKER)
	}
	if c.Engine.NSHARD <= 0 {
		return fmt.Errorf("engine.nshard %d <= 0", c.Engine.NSHARD)
	}
	switch c.Engine.PARTITIONER {
	case "block", "roundrobin", "random":
	default:
		return fmt.Errorf("unknown partitioner %q", c.Engine.PARTITIONER)
	}
	switch c.Engine.MERGE {
	case "shard", "arrival", "tree":
	default:
		return fmt.Errorf("unknown merge policy %q", c.Engine.MERGE)
	}
	if c.Input.N <= 0 || c.Input.BIGN <= 0 || c.Input.BIGSHARDS <= 0 {
		return fmt.Errorf("bad input sizes %+v", c.Input)
	}
	if c.Nondet.REPARTITION <= 0 {
		return fmt.Errorf("nondet.repartition %d <= 0", c.Nondet.REPARTITION)
	}
	if len(c.Nondet.SHARDS) != 3 {
		return fmt.Errorf("nondet.shards needs 3 levels, has %v", c.Nondet.SHARDS)
	}
	for _, n := range c.Nondet.SHARDS {
		if n <= 0 {
			return fmt.Errorf("nondet.shards %v has nonpositive entry", c.Nondet.SHARDS)
		}
	}
	if c.Output.ANSWERS == "" {
		return fmt.Errorf("output.answers not supplied")
	}
	return nil
}
