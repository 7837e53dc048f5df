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

package cli

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-proploss/config"
	"github.com/openthread/ot-proploss/logger"
	"github.com/openthread/ot-proploss/prng"
	"github.com/openthread/ot-proploss/progctx"
	"github.com/openthread/ot-proploss/radiomodel"
	. "github.com/openthread/ot-proploss/types"
)

const (
	Prompt = "> "

	defaultSweepHeight = 1.5
)

type CommandContext struct {
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

// CmdRunner executes CLI commands against one pipeline configuration. It owns the configuration and the
// pipeline built from it; every change to the stages rebuilds the pipeline.
type CmdRunner struct {
	ctx       *progctx.ProgCtx
	cfg       *config.Config
	pipeline  *radiomodel.Pipeline
	collector *radiomodel.Collector
	help      Help
}

// NewCmdRunner creates a runner for cfg. The collector may be nil.
func NewCmdRunner(ctx *progctx.ProgCtx, cfg *config.Config, collector *radiomodel.Collector) (*CmdRunner, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	rt := &CmdRunner{
		ctx:       ctx,
		collector: collector,
		help:      newHelp(),
	}
	if err := rt.rebuild(cfg); err != nil {
		return nil, err
	}
	return rt, nil
}

// Config returns the active configuration.
func (rt *CmdRunner) Config() *config.Config {
	return rt.cfg
}

// Pipeline returns the active pipeline.
func (rt *CmdRunner) Pipeline() *radiomodel.Pipeline {
	return rt.pipeline
}

func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}

		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	return rt.RunCommand(cmdline, output)
}

func (rt *CmdRunner) GetPrompt() string {
	return Prompt
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic")
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Chain != nil {
		rt.executeChain(cc, cmd.Chain)
	} else if cmd.Exit != nil {
		rt.executeExit(cc, cmd.Exit)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Load != nil {
		rt.executeLoad(cc, cmd.Load)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Node != nil {
		rt.executeNode(cc, cmd.Node)
	} else if cmd.Nodes != nil {
		rt.executeLsNodes(cc, cmd.Nodes)
	} else if cmd.Query != nil {
		rt.executeQuery(cc, cmd.Query)
	} else if cmd.Save != nil {
		rt.executeSave(cc, cmd.Save)
	} else if cmd.SetLoss != nil {
		rt.executeSetLoss(cc, cmd.SetLoss)
	} else if cmd.Shadow != nil {
		rt.executeShadow(cc, cmd.Shadow)
	} else if cmd.Show != nil {
		rt.executeShow(cc, cmd.Show)
	} else if cmd.Streams != nil {
		rt.executeStreams(cc, cmd.Streams)
	} else if cmd.Sweep != nil {
		rt.executeSweep(cc, cmd.Sweep)
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

// rebuild builds the pipeline for cfg and makes both active. On error the active state is unchanged.
func (rt *CmdRunner) rebuild(cfg *config.Config) error {
	p, err := cfg.Build()
	if err != nil {
		return err
	}
	p.SetCollector(rt.collector)
	rt.cfg = cfg
	rt.pipeline = p
	return nil
}

func (rt *CmdRunner) outputChain(cc *CommandContext) {
	for i, st := range rt.cfg.Stages {
		if len(st.Params) == 0 {
			cc.outputf("%d\t%s\n", i, st.Model)
			continue
		}
		var params yaml.Node
		logger.PanicIfError(params.Encode(st.Params))
		params.Style = yaml.FlowStyle
		data, err := yaml.Marshal(&params)
		logger.PanicIfError(err)
		cc.outputf("%d\t%s %s", i, st.Model, data)
	}
}

func (rt *CmdRunner) executeChain(cc *CommandContext, cmd *ChainCmd) {
	if cmd.Add == nil && cmd.Del == nil && cmd.Clear == nil {
		rt.outputChain(cc)
		return
	}

	cfg := rt.cfg.Clone()
	if cmd.Add != nil {
		if err := cfg.AddStage(cmd.Add.Model, paramsMap(cmd.Add.Params)); err != nil {
			cc.error(err)
			return
		}
	} else if cmd.Del != nil {
		if err := cfg.RemoveStage(*cmd.Del); err != nil {
			cc.error(err)
			return
		}
	} else {
		cfg.Stages = nil
	}

	if err := rt.rebuild(cfg); err != nil {
		cc.error(err)
		return
	}
	rt.outputChain(cc)
}

func (rt *CmdRunner) executeExit(cc *CommandContext, cmd *ExitCmd) {
	rt.ctx.Cancel("exit")
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if len(cmd.HelpTopic) > 0 {
		cc.outputStr(rt.help.outputCommandHelp(cmd.HelpTopic))
	} else {
		cc.outputStr(rt.help.outputGeneralHelp())
	}
}

func (rt *CmdRunner) executeLoad(cc *CommandContext, cmd *LoadCmd) {
	cfg, err := config.ReadFile(unquote(cmd.Path))
	if err != nil {
		cc.error(err)
		return
	}
	if err = rt.rebuild(cfg); err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%s\n", rt.pipeline)
}

func (rt *CmdRunner) executeSave(cc *CommandContext, cmd *SaveCmd) {
	cc.error(rt.cfg.WriteToFile(unquote(cmd.Path)))
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", logger.GetLevelString(logger.GetLevel()))
		return
	}
	level, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	logger.SetLevel(level)
}

func (rt *CmdRunner) executeNode(cc *CommandContext, cmd *NodeCmd) {
	if cmd.Id == InvalidNodeId {
		cc.errorf("node id %d is reserved", cmd.Id)
		return
	}
	if cmd.Pos != nil {
		node := config.NodeConfig{
			Id: cmd.Id,
			X:  cmd.Pos.X.Value(),
			Y:  cmd.Pos.Y.Value(),
			Z:  cmd.Pos.Z.Value(),
		}
		if cmd.Offset != nil {
			node.HeightOffset = cmd.Offset.Value()
		}
		rt.cfg.SetNode(node)
	}

	for _, n := range rt.cfg.Nodes {
		if n.Id == cmd.Id {
			cc.outputItemsAsYaml([]config.NodeConfig{n})
			return
		}
	}
	cc.errorf("node %d not found", cmd.Id)
}

func (rt *CmdRunner) executeLsNodes(cc *CommandContext, cmd *NodesCmd) {
	if len(rt.cfg.Nodes) == 0 {
		return
	}
	cc.outputItemsAsYaml(rt.cfg.Nodes)
}

func (rt *CmdRunner) queryLink(cmd *QueryCmd) (*Link, error) {
	var link *Link
	if cmd.Nodes != nil {
		eps := rt.cfg.Endpoints()
		a, ok := eps[cmd.Nodes.A]
		if !ok {
			return nil, errors.Errorf("node %d not found", cmd.Nodes.A)
		}
		b, ok := eps[cmd.Nodes.B]
		if !ok {
			return nil, errors.Errorf("node %d not found", cmd.Nodes.B)
		}
		link = NewLink(a, b)
	} else {
		pa, pb := cmd.Pos.A, cmd.Pos.B
		link = NewLink(
			NewEndpoint(InvalidNodeId, pa.X.Value(), pa.Y.Value(), pa.Z.Value()),
			NewEndpoint(InvalidNodeId, pb.X.Value(), pb.Y.Value(), pb.Z.Value()),
		)
	}
	link.Condition = cmd.Cond.Condition()
	return link, nil
}

func (rt *CmdRunner) executeQuery(cc *CommandContext, cmd *QueryCmd) {
	link, err := rt.queryLink(cmd)
	if err != nil {
		cc.error(err)
		return
	}

	repeat := 1
	if cmd.Repeat != nil {
		repeat = *cmd.Repeat
	}
	if repeat <= 0 || repeat > maxSweepPoints {
		cc.errorf("repeat must be in range 1..%d", maxSweepPoints)
		return
	}

	txPower := cmd.TxPower.Value()
	rxPowers := make([]DbValue, repeat)
	for i := range rxPowers {
		if rxPowers[i], err = rt.pipeline.CalcRxPower(txPower, link); err != nil {
			cc.error(err)
			return
		}
	}
	cc.outputf("distance %.3f m\n", link.Distance())
	for _, rxPower := range rxPowers {
		cc.outputf("rx %.3f dBm\tloss %.3f dB\n", rxPower, txPower-rxPower)
	}
}

func (rt *CmdRunner) executeSweep(cc *CommandContext, cmd *SweepCmd) {
	from, to, step := cmd.From.Value(), cmd.To.Value(), cmd.Step.Value()
	if step <= 0 {
		cc.errorf("step must be positive")
		return
	}
	if to < from {
		cc.errorf("sweep range is empty: from %v to %v", from, to)
		return
	}
	points := int((to-from)/step+1e-9) + 1
	if points > maxSweepPoints {
		cc.errorf("sweep has %d points, maximum is %d", points, maxSweepPoints)
		return
	}

	ha, hb := defaultSweepHeight, defaultSweepHeight
	if cmd.HeightA != nil {
		ha = cmd.HeightA.Value()
	}
	if cmd.HeightB != nil {
		hb = cmd.HeightB.Value()
	}

	txPower := cmd.TxPower.Value()
	a := NewEndpoint(InvalidNodeId, 0, 0, ha)
	for i := 0; i < points; i++ {
		d := from + float64(i)*step
		link := NewLink(a, NewEndpoint(InvalidNodeId, d, 0, hb))
		link.Condition = cmd.Cond.Condition()
		rxPower, err := rt.pipeline.CalcRxPower(txPower, link)
		if err != nil {
			cc.error(err)
			return
		}
		cc.outputf("%10.3f\t%10.3f\n", d, rxPower)
	}
}

func (rt *CmdRunner) executeStreams(cc *CommandContext, cmd *StreamsCmd) {
	if cmd.Seed == nil {
		cc.outputf("seed %d\nstream %d\n", rt.cfg.Seed, rt.cfg.Stream)
		return
	}

	cfg := rt.cfg.Clone()
	cfg.Seed = *cmd.Seed
	if cmd.Stream != nil {
		cfg.Stream = *cmd.Stream
	}
	if err := cfg.Validate(); err != nil {
		cc.error(err)
		return
	}

	if cfg.Seed == 0 {
		// stochastic stages go back to automatic seeding.
		if err := rt.rebuild(cfg); err != nil {
			cc.error(err)
		}
		return
	}
	n := rt.pipeline.AssignStreams(prng.RandomSeed(cfg.Seed), cfg.Stream)
	rt.cfg = cfg
	cc.outputf("assigned %d streams from stream %d\n", n, cfg.Stream)
}

func (rt *CmdRunner) executeSetLoss(cc *CommandContext, cmd *SetLossCmd) {
	idx := rt.cfg.MatrixStage()
	if idx < 0 {
		cc.errorf("pipeline has no %s stage", radiomodel.KindMatrix)
		return
	}
	if cmd.A == InvalidNodeId || cmd.B == InvalidNodeId {
		cc.errorf("node id %d is reserved", InvalidNodeId)
		return
	}

	entry := radiomodel.MatrixEntry{
		A:         cmd.A,
		B:         cmd.B,
		Loss:      cmd.Loss.Value(),
		Symmetric: cmd.Symmetric != nil,
	}
	cfg := rt.cfg.Clone()
	if err := cfg.AddMatrixEntry(idx, entry); err != nil {
		cc.error(err)
		return
	}

	// the live model is updated in place, so the random streams of the other stages continue.
	matrix, ok := rt.pipeline.Stages()[idx].(*radiomodel.MatrixModel)
	logger.AssertTrue(ok)
	matrix.SetLoss(entry.A, entry.B, entry.Loss, entry.Symmetric)
	rt.cfg = cfg
}

func (rt *CmdRunner) executeShadow(cc *CommandContext, cmd *ShadowCmd) {
	conds := []LosCondition{LOS, NLOS, NLOSv}
	if cmd.Cond != nil {
		conds = []LosCondition{cmd.Cond.Condition()}
	}

	found := false
	for i, m := range rt.pipeline.Stages() {
		v2v, ok := m.(*radiomodel.V2vModel)
		if !ok {
			continue
		}
		found = true
		for _, cond := range conds {
			std, err := v2v.ShadowingStd(cond)
			if err != nil {
				cc.error(err)
				return
			}
			corr, err := v2v.ShadowingCorrelationDistance(cond)
			if err != nil {
				cc.error(err)
				return
			}
			cc.outputf("%d\t%s\t%-5s\tstd %.1f dB\tcorrelation %.0f m\n", i, v2v.Kind(), cond, std, corr)
		}
	}
	if !found {
		cc.errorf("pipeline has no %s or %s stage", radiomodel.KindV2vUrban, radiomodel.KindV2vHighway)
	}
}

func (rt *CmdRunner) executeShow(cc *CommandContext, cmd *ShowCmd) {
	data, err := yaml.Marshal(rt.cfg)
	if err != nil {
		cc.error(err)
		return
	}
	cc.outputStr(string(data))
}
