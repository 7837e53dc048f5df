// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package config reads and writes propagation pipeline configurations in YAML or JSON.
package config

import (
	"encoding/json"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-proploss/logger"
	"github.com/openthread/ot-proploss/prng"
	"github.com/openthread/ot-proploss/radiomodel"
	"github.com/openthread/ot-proploss/types"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// StageConfig is a single pipeline stage: a model name and its parameters. Parameters not given keep their
// default value.
type StageConfig struct {
	Model  string                 `yaml:"model" json:"model"`
	Params map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`
}

// NodeConfig is a named endpoint that can be referred to by id in queries.
type NodeConfig struct {
	Id           types.NodeId `yaml:"id" json:"id"`
	X            float64      `yaml:"x" json:"x"`
	Y            float64      `yaml:"y" json:"y"`
	Z            float64      `yaml:"z" json:"z"`
	HeightOffset float64      `yaml:"height_offset,omitempty" json:"height_offset,omitempty"`
}

// Config describes a pipeline and the seeding of its random streams.
// Seed 0 means the stochastic models are seeded automatically, and runs are not reproducible.
type Config struct {
	Seed   int64         `yaml:"seed" json:"seed"`
	Stream int64         `yaml:"stream" json:"stream"`
	Stages []StageConfig `yaml:"stages" json:"stages"`
	Nodes  []NodeConfig  `yaml:"nodes,omitempty" json:"nodes,omitempty"`
}

func isJson(filename string) bool {
	return strings.EqualFold(path.Ext(filename), ".json")
}

// ReadFile reads a configuration file. Files with a .json extension are parsed as JSON, all others as YAML.
func ReadFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read config")
	}
	cfg, err := Parse(data, !isJson(filename))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return cfg, nil
}

// Parse deserializes and validates a configuration.
func Parse(data []byte, useYAML bool) (*Config, error) {
	cfg := &Config{}
	var err error
	if useYAML {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteToFile stores the configuration. Serialization to JSON or YAML is selected by the file extension.
func (cfg *Config) WriteToFile(filename string) error {
	var data []byte
	var err error
	if isJson(filename) {
		data, err = json.MarshalIndent(cfg, "", "\t")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// Validate checks the model names and node ids. Model parameters are checked by Build.
func (cfg *Config) Validate() error {
	for i, st := range cfg.Stages {
		if _, err := radiomodel.ParseKind(st.Model); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "stage %d: %v", i, err)
		}
	}
	seen := make(map[types.NodeId]struct{}, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		if n.Id == types.InvalidNodeId {
			return errors.Wrapf(ErrInvalidConfig, "node id %d is reserved", n.Id)
		}
		if _, ok := seen[n.Id]; ok {
			return errors.Wrapf(ErrInvalidConfig, "duplicate node id %d", n.Id)
		}
		seen[n.Id] = struct{}{}
	}
	if cfg.Stream < 0 {
		return errors.Wrapf(ErrInvalidConfig, "stream must not be negative, got %d", cfg.Stream)
	}
	return nil
}

// Build creates the pipeline. If a seed is configured, the random streams are assigned from it starting at Stream.
func (cfg *Config) Build() (*radiomodel.Pipeline, error) {
	models := make([]radiomodel.Model, 0, len(cfg.Stages))
	for i, st := range cfg.Stages {
		m, err := radiomodel.NewModel(st.Model, st.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %d", i)
		}
		models = append(models, m)
	}

	p, err := radiomodel.NewPipeline(models...)
	if err != nil {
		return nil, err
	}
	if cfg.Seed != 0 {
		n := p.AssignStreams(prng.RandomSeed(cfg.Seed), cfg.Stream)
		logger.Debugf("pipeline %s: assigned %d random streams from stream %d", p, n, cfg.Stream)
	}
	return p, nil
}

// Endpoints returns the configured nodes as endpoints, by id.
func (cfg *Config) Endpoints() map[types.NodeId]*types.Endpoint {
	eps := make(map[types.NodeId]*types.Endpoint, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		ep := types.NewEndpoint(n.Id, n.X, n.Y, n.Z)
		ep.HeightOffset = n.HeightOffset
		eps[n.Id] = ep
	}
	return eps
}

// SetNode adds or replaces a node.
func (cfg *Config) SetNode(node NodeConfig) {
	for i := range cfg.Nodes {
		if cfg.Nodes[i].Id == node.Id {
			cfg.Nodes[i] = node
			return
		}
	}
	cfg.Nodes = append(cfg.Nodes, node)
}

// Clone returns a copy of the configuration that can be modified without affecting cfg. Stage parameter
// maps are copied one level deep.
func (cfg *Config) Clone() *Config {
	c := &Config{
		Seed:   cfg.Seed,
		Stream: cfg.Stream,
		Stages: make([]StageConfig, len(cfg.Stages)),
		Nodes:  append([]NodeConfig(nil), cfg.Nodes...),
	}
	for i, st := range cfg.Stages {
		c.Stages[i].Model = st.Model
		if st.Params != nil {
			c.Stages[i].Params = make(map[string]interface{}, len(st.Params))
			for k, v := range st.Params {
				c.Stages[i].Params[k] = v
			}
		}
	}
	return c
}

// AddStage appends a stage at the end of the pipeline.
func (cfg *Config) AddStage(model string, params map[string]interface{}) error {
	if _, err := radiomodel.ParseKind(model); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	cfg.Stages = append(cfg.Stages, StageConfig{Model: model, Params: params})
	return nil
}

// RemoveStage removes the stage at index idx.
func (cfg *Config) RemoveStage(idx int) error {
	if idx < 0 || idx >= len(cfg.Stages) {
		return errors.Wrapf(ErrInvalidConfig, "no stage %d (have %d)", idx, len(cfg.Stages))
	}
	cfg.Stages = append(cfg.Stages[:idx:idx], cfg.Stages[idx+1:]...)
	return nil
}

// MatrixStage returns the index of the first matrix stage, or -1 if there is none.
func (cfg *Config) MatrixStage() int {
	for i, st := range cfg.Stages {
		if kind, err := radiomodel.ParseKind(st.Model); err == nil && kind == radiomodel.KindMatrix {
			return i
		}
	}
	return -1
}

// AddMatrixEntry appends a preconfigured loss to the matrix stage at index idx.
func (cfg *Config) AddMatrixEntry(idx int, entry radiomodel.MatrixEntry) error {
	if idx < 0 || idx >= len(cfg.Stages) {
		return errors.Wrapf(ErrInvalidConfig, "no stage %d (have %d)", idx, len(cfg.Stages))
	}
	st := &cfg.Stages[idx]
	if kind, err := radiomodel.ParseKind(st.Model); err != nil || kind != radiomodel.KindMatrix {
		return errors.Wrapf(ErrInvalidConfig, "stage %d is not a matrix stage", idx)
	}
	if st.Params == nil {
		st.Params = make(map[string]interface{})
	}

	var entries []interface{}
	switch existing := st.Params["entries"].(type) {
	case nil:
	case []interface{}:
		entries = append(entries, existing...)
	default:
		return errors.Wrapf(ErrInvalidConfig, "stage %d: entries must be a list, got %T", idx, existing)
	}
	st.Params["entries"] = append(entries, map[string]interface{}{
		"a":         entry.A,
		"b":         entry.B,
		"loss":      entry.Loss,
		"symmetric": entry.Symmetric,
	})
	return nil
}
