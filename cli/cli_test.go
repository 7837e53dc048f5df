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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-proploss/config"
	"github.com/openthread/ot-proploss/logger"
	"github.com/openthread/ot-proploss/progctx"
	"github.com/openthread/ot-proploss/radiomodel"
	. "github.com/openthread/ot-proploss/types"
)

func TestParseBytes(t *testing.T) {
	var cmd Command
	assert.NotNil(t, parseBytes([]byte("wrongcmd"), &cmd))

	assert.True(t, parseBytes([]byte("chain"), &cmd) == nil && cmd.Chain != nil && cmd.Chain.Add == nil)
	assert.True(t, parseBytes([]byte("chain clear"), &cmd) == nil && cmd.Chain != nil && cmd.Chain.Clear != nil)
	assert.True(t, parseBytes([]byte("chain del 2"), &cmd) == nil && cmd.Chain != nil && *cmd.Chain.Del == 2)
	assert.True(t, parseBytes([]byte("chain add friis"), &cmd) == nil && cmd.Chain.Add != nil &&
		cmd.Chain.Add.Model == "friis" && len(cmd.Chain.Add.Params) == 0)
	assert.Nil(t, parseBytes([]byte("chain add fixedrss rss -150"), &cmd))
	assert.Equal(t, []ParamArg{{Key: "rss", Sign: "-", Value: "150"}}, cmd.Chain.Add.Params)
	assert.Nil(t, parseBytes([]byte("chain add scenario scenario UMa frequency 3.5e9 roles b"), &cmd))
	assert.Equal(t, 3, len(cmd.Chain.Add.Params))
	assert.Nil(t, parseBytes([]byte("chain add scenario scenario \"UMi-StreetCanyon\""), &cmd))
	assert.Equal(t, "UMi-StreetCanyon", unquote(cmd.Chain.Add.Params[0].Value))
	assert.NotNil(t, parseBytes([]byte("chain del"), &cmd))

	assert.True(t, parseBytes([]byte("exit"), &cmd) == nil && cmd.Exit != nil)
	assert.True(t, parseBytes([]byte("help"), &cmd) == nil && cmd.Help != nil && cmd.Help.HelpTopic == "")
	assert.True(t, parseBytes([]byte("help query"), &cmd) == nil && cmd.Help != nil && cmd.Help.HelpTopic == "query")

	assert.True(t, parseBytes([]byte("load \"x.yaml\""), &cmd) == nil && cmd.Load != nil)
	assert.NotNil(t, parseBytes([]byte("load"), &cmd))
	assert.True(t, parseBytes([]byte("save \"x.json\""), &cmd) == nil && cmd.Save != nil)

	assert.True(t, parseBytes([]byte("loglevel"), &cmd) == nil && cmd.LogLevel != nil && cmd.LogLevel.Level == "")
	assert.True(t, parseBytes([]byte("loglevel debug"), &cmd) == nil && cmd.LogLevel.Level == "debug")
	assert.True(t, parseBytes([]byte("log warn"), &cmd) == nil && cmd.LogLevel.Level == "warn")
	assert.NotNil(t, parseBytes([]byte("loglevel loud"), &cmd))

	assert.True(t, parseBytes([]byte("node 3"), &cmd) == nil && cmd.Node != nil && cmd.Node.Id == 3 && cmd.Node.Pos == nil)
	assert.Nil(t, parseBytes([]byte("node 3 -10 20.5 1 h 0.5"), &cmd))
	assert.Equal(t, -10.0, cmd.Node.Pos.X.Value())
	assert.Equal(t, 20.5, cmd.Node.Pos.Y.Value())
	assert.Equal(t, 0.5, cmd.Node.Offset.Value())
	assert.NotNil(t, parseBytes([]byte("node 3 10 20"), &cmd))
	assert.True(t, parseBytes([]byte("nodes"), &cmd) == nil && cmd.Nodes != nil)

	assert.Nil(t, parseBytes([]byte("query 20 1 2"), &cmd))
	assert.True(t, cmd.Query != nil && cmd.Query.Nodes.A == 1 && cmd.Query.Nodes.B == 2 && cmd.Query.Cond == nil)
	assert.Nil(t, parseBytes([]byte("query -10 1 2 nlosv repeat 5"), &cmd))
	assert.Equal(t, -10.0, cmd.Query.TxPower.Value())
	assert.Equal(t, NLOSv, cmd.Query.Cond.Condition())
	assert.Equal(t, 5, *cmd.Query.Repeat)
	var posCmd Command
	assert.Nil(t, parseBytes([]byte("query 0 a 0 0 1.5 b 10 -5 1.5 los"), &posCmd))
	assert.True(t, posCmd.Query.Pos != nil && posCmd.Query.Nodes == nil)
	assert.Equal(t, -5.0, posCmd.Query.Pos.B.Y.Value())
	assert.Equal(t, LOS, posCmd.Query.Cond.Condition())
	assert.NotNil(t, parseBytes([]byte("query 0 1"), &cmd))

	assert.Nil(t, parseBytes([]byte("setloss 1 2 85.5 sym"), &cmd))
	assert.True(t, cmd.SetLoss != nil && cmd.SetLoss.Loss.Value() == 85.5 && cmd.SetLoss.Symmetric != nil)
	var asymCmd Command
	assert.Nil(t, parseBytes([]byte("setloss 1 2 30"), &asymCmd))
	assert.True(t, asymCmd.SetLoss.Symmetric == nil)

	assert.True(t, parseBytes([]byte("shadow"), &cmd) == nil && cmd.Shadow != nil && cmd.Shadow.Cond == nil)
	assert.True(t, parseBytes([]byte("shadow nlos"), &cmd) == nil && cmd.Shadow.Cond.Condition() == NLOS)
	assert.True(t, parseBytes([]byte("show"), &cmd) == nil && cmd.Show != nil)

	assert.True(t, parseBytes([]byte("streams"), &cmd) == nil && cmd.Streams != nil && cmd.Streams.Seed == nil)
	assert.True(t, parseBytes([]byte("streams 42"), &cmd) == nil && *cmd.Streams.Seed == 42 && cmd.Streams.Stream == nil)
	assert.True(t, parseBytes([]byte("streams 42 7"), &cmd) == nil && *cmd.Streams.Stream == 7)

	assert.Nil(t, parseBytes([]byte("sweep 0 from 1 to 100 step 0.5"), &cmd))
	assert.True(t, cmd.Sweep != nil && cmd.Sweep.HeightA == nil && cmd.Sweep.Step.Value() == 0.5)
	assert.Nil(t, parseBytes([]byte("sweep 23 from 10 to 500 step 10 ha 25 hb 1.5 nlos"), &cmd))
	assert.Equal(t, 25.0, cmd.Sweep.HeightA.Value())
	assert.Equal(t, NLOS, cmd.Sweep.Cond.Condition())
	assert.NotNil(t, parseBytes([]byte("sweep 0 from 1 to 100"), &cmd))
}

func TestParamsMap(t *testing.T) {
	assert.Nil(t, paramsMap(nil))
	params := paramsMap([]ParamArg{
		{Key: "Min_Loss", Value: "3"},
		{Key: "rss", Sign: "-", Value: "150"},
		{Key: "scenario", Value: "\"InH-OfficeOpen\""},
	})
	assert.Equal(t, map[string]interface{}{
		"min_loss": "3",
		"rss":      "-150",
		"scenario": "InH-OfficeOpen",
	}, params)

	assert.Equal(t, "abc", unquote("abc"))
	assert.Equal(t, "a b", unquote("\"a b\""))
	assert.Equal(t, "\"", unquote("\""))
}

func newTestRunner(t *testing.T, cfg *config.Config) *CmdRunner {
	rt, err := NewCmdRunner(progctx.New(context.Background()), cfg, nil)
	require.Nil(t, err)
	return rt
}

// run executes one command line and returns its output. It fails the test if the command did not succeed.
func run(t *testing.T, rt *CmdRunner, cmdline string) string {
	out := runAny(t, rt, cmdline)
	require.True(t, strings.HasSuffix(out, "Done\n"), "%s: %s", cmdline, out)
	return strings.TrimSuffix(out, "Done\n")
}

func runAny(t *testing.T, rt *CmdRunner, cmdline string) string {
	var buf bytes.Buffer
	require.Nil(t, rt.RunCommand(cmdline, &buf))
	return buf.String()
}

func TestChainAndQuery(t *testing.T) {
	rt := newTestRunner(t, nil)
	assert.Equal(t, "", run(t, rt, "chain"))

	out := run(t, rt, "chain add friis frequency 2.4e9 min_loss 0")
	assert.True(t, strings.HasPrefix(out, "0\tfriis {"), out)
	assert.True(t, strings.Contains(out, "min_loss"), out)
	assert.Equal(t, 1, rt.Pipeline().Len())

	run(t, rt, "node 1 0 0 1.5")
	run(t, rt, "node 2 10 0 1.5")
	out = run(t, rt, "query 0 1 2")
	assert.Equal(t, "distance 10.000 m\nrx -60.052 dBm\tloss 60.052 dB\n", out)
	out = run(t, rt, "query 0 a 0 0 1.5 b 10 0 1.5")
	assert.Equal(t, "distance 10.000 m\nrx -60.052 dBm\tloss 60.052 dB\n", out)

	out = run(t, rt, "sweep 0 from 10 to 30 step 10")
	assert.Equal(t, "    10.000\t   -60.052\n    20.000\t   -66.073\n    30.000\t   -69.594\n", out)

	run(t, rt, "chain add fixedrss rss -80")
	assert.Equal(t, "friis -> fixedrss", rt.Pipeline().String())
	assert.True(t, strings.Contains(run(t, rt, "query 0 1 2"), "rx -80.000 dBm"))

	run(t, rt, "chain del 0")
	assert.Equal(t, "fixedrss", rt.Pipeline().String())
	run(t, rt, "chain clear")
	assert.Equal(t, 0, rt.Pipeline().Len())
	assert.True(t, strings.Contains(run(t, rt, "query 7 1 2"), "rx 7.000 dBm"))
}

func TestCommandErrors(t *testing.T) {
	rt := newTestRunner(t, nil)
	run(t, rt, "chain add range max_range 50")

	assert.True(t, strings.HasPrefix(runAny(t, rt, "xyz"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "chain add okumura"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "chain add friis speed 3"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "chain del 4"), "Error: "))
	assert.Equal(t, "range", rt.Pipeline().String())

	run(t, rt, "node 1 0 0 1")
	assert.Equal(t, "Error: node 3 not found\n", runAny(t, rt, "query 0 1 3"))
	assert.Equal(t, "Error: node 4 not found\n", runAny(t, rt, "query 0 4 1"))
	assert.Equal(t, "Error: node 3 not found\n", runAny(t, rt, "node 3"))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "node 0 1 1 1"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "sweep 0 from 10 to 5 step 1"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "sweep 0 from 1 to 5 step 0"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "sweep 0 from 0 to 1000000 step 1"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "query 0 a 0 0 0 b 1 0 0 repeat 0"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "setloss 1 2 3"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "shadow"), "Error: "))
	assert.True(t, strings.HasPrefix(runAny(t, rt, "load \"/nonexistent/proploss.yaml\""), "Error: "))

	out := run(t, rt, "query 0 a 0 0 0 b 100 0 0")
	assert.True(t, strings.Contains(out, fmt.Sprintf("rx %.3f dBm", RxPowerUnreachable)))
}

func TestScenarioStageFailure(t *testing.T) {
	rt := newTestRunner(t, nil)
	run(t, rt, "chain add scenario scenario RMa frequency 3.5e9")

	// base station height out of the RMa validity range
	out := runAny(t, rt, "query 0 a 0 0 200 b 100 0 1.5 repeat 3")
	assert.True(t, strings.HasPrefix(out, "Error: stage 0 (scenario)"), out)
	assert.NotContains(t, out, "distance")
	assert.True(t, strings.HasSuffix(run(t, rt, "query 0 a 0 0 35 b 100 0 1.5"), "dB\n"))
}

func TestStreamsReproducible(t *testing.T) {
	rt := newTestRunner(t, nil)
	run(t, rt, "chain add friis")
	run(t, rt, "chain add random distribution normal mean 5 stddev 2")
	run(t, rt, "chain add nakagami m0 1.5")

	assert.Equal(t, "seed 0\nstream 0\n", run(t, rt, "streams"))
	assert.Equal(t, "assigned 3 streams from stream 10\n", run(t, rt, "streams 42 10"))
	first := run(t, rt, "query 0 a 0 0 1 b 50 0 1 repeat 5")
	run(t, rt, "streams 42 10")
	second := run(t, rt, "query 0 a 0 0 1 b 50 0 1 repeat 5")
	assert.Equal(t, first, second)
	assert.Equal(t, 7, len(strings.Split(first, "\n"))) // distance line, five samples, trailing newline

	run(t, rt, "streams 42 20")
	third := run(t, rt, "query 0 a 0 0 1 b 50 0 1 repeat 5")
	assert.NotEqual(t, first, third)

	// a rebuild from the same configuration gives the same streams
	rt2 := newTestRunner(t, rt.Config().Clone())
	run(t, rt2, "streams 42 10")
	assert.Equal(t, first, run(t, rt2, "query 0 a 0 0 1 b 50 0 1 repeat 5"))

	run(t, rt, "streams 0")
	assert.Equal(t, int64(0), rt.Config().Seed)
	assert.Equal(t, "seed 0\nstream 20\n", run(t, rt, "streams"))
}

func TestSetLoss(t *testing.T) {
	rt := newTestRunner(t, nil)
	run(t, rt, "chain add matrix default_loss 100")
	run(t, rt, "node 1 0 0 0")
	run(t, rt, "node 2 5 0 0")
	run(t, rt, "node 3 9 0 0")

	run(t, rt, "setloss 1 2 30 sym")
	run(t, rt, "setloss 1 3 40")
	assert.True(t, strings.Contains(run(t, rt, "query 0 2 1"), "rx -30.000 dBm"))
	assert.True(t, strings.Contains(run(t, rt, "query 0 1 3"), "rx -40.000 dBm"))
	assert.True(t, strings.Contains(run(t, rt, "query 0 3 1"), "rx -100.000 dBm"))

	// entries survive a rebuild of the pipeline
	run(t, rt, "chain add fixedrss rss -1")
	run(t, rt, "chain del 1")
	assert.True(t, strings.Contains(run(t, rt, "query 0 2 1"), "rx -30.000 dBm"))
	entries := rt.Config().Stages[0].Params["entries"].([]interface{})
	assert.Equal(t, 2, len(entries))
}

func TestShadow(t *testing.T) {
	rt := newTestRunner(t, nil)
	run(t, rt, "chain add friis")
	run(t, rt, "chain add v2vhighway")

	out := run(t, rt, "shadow")
	assert.Equal(t, 3, strings.Count(out, "\n"))
	assert.Equal(t, "1\tv2vhighway\tnlos \tstd 4.0 dB\tcorrelation 13 m\n", run(t, rt, "shadow nlos"))
	assert.Equal(t, "1\tv2vhighway\tlos  \tstd 3.0 dB\tcorrelation 10 m\n", run(t, rt, "shadow los"))
}

func TestNodes(t *testing.T) {
	rt := newTestRunner(t, nil)
	assert.Equal(t, "", run(t, rt, "nodes"))
	assert.Equal(t, "- {id: 1, x: 0, \"y\": 0, z: 25}\n", run(t, rt, "node 1 0 0 25"))
	run(t, rt, "node 2 150 0 1 h 0.5")
	run(t, rt, "node 1 -5 0 25")
	assert.Equal(t, "- {id: 1, x: -5, \"y\": 0, z: 25}\n- {id: 2, x: 150, \"y\": 0, z: 1, height_offset: 0.5}\n",
		run(t, rt, "nodes"))
	assert.Equal(t, 1.5, rt.Config().Endpoints()[2].AntennaHeight())
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"pipeline.yaml", "pipeline.json"} {
		filename := filepath.Join(dir, name)

		rt := newTestRunner(t, nil)
		run(t, rt, "chain add logdistance exponent 3")
		run(t, rt, "chain add nakagami m0 2 m1 1")
		run(t, rt, "node 4 1 2 3")
		run(t, rt, "streams 5 1")
		run(t, rt, fmt.Sprintf("save %q", filename))

		rt2 := newTestRunner(t, nil)
		assert.Equal(t, "logdistance -> nakagami\n", run(t, rt2, fmt.Sprintf("load %q", filename)))
		assert.Equal(t, run(t, rt, "show"), run(t, rt2, "show"))
		assert.Equal(t, run(t, rt, "query 10 a 0 0 1 b 30 0 1 repeat 3"),
			run(t, rt2, "query 10 a 0 0 1 b 30 0 1 repeat 3"))
	}
}

func TestLogLevel(t *testing.T) {
	level := logger.GetLevel()
	defer logger.SetLevel(level)

	rt := newTestRunner(t, nil)
	run(t, rt, "loglevel debug")
	assert.Equal(t, "debug\n", run(t, rt, "loglevel"))
	assert.Equal(t, logger.DebugLevel, logger.GetLevel())
	run(t, rt, "log off")
	assert.Equal(t, logger.OffLevel, logger.GetLevel())
}

func TestHelp(t *testing.T) {
	rt := newTestRunner(t, nil)
	out := run(t, rt, "help")
	for _, c := range []string{"chain", "query", "sweep", "streams", "setloss", "shadow", "loglevel"} {
		assert.True(t, strings.Contains(out, c+" "), c)
	}
	assert.True(t, strings.Contains(out, "Compute the received power over one link."))

	out = run(t, rt, "help sweep")
	assert.True(t, strings.HasPrefix(out, "  sweep\n"), out)
	assert.True(t, strings.Contains(out, "Example:"))
	assert.True(t, strings.Contains(run(t, rt, "help nonsense"), "Non-existent command"))
}

func TestExit(t *testing.T) {
	rt := newTestRunner(t, nil)
	var buf bytes.Buffer
	assert.Equal(t, context.Canceled, rt.RunCommand("exit", &buf))
	assert.Equal(t, context.Canceled, rt.RunCommand("show", &buf))
	assert.Equal(t, "Done\n", buf.String())
}

func TestRunScript(t *testing.T) {
	rt := newTestRunner(t, nil)
	script := `
# free space at 2.4 GHz
chain add friis frequency 2.4e9

node 1 0 0 1
node 2 10 0 1
query 0 1 2
`
	var buf bytes.Buffer
	require.Nil(t, RunScript(rt, strings.NewReader(script), &buf))
	assert.True(t, strings.Contains(buf.String(), "rx -60.052 dBm"))
	assert.Equal(t, 4, strings.Count(buf.String(), "Done\n"))

	buf.Reset()
	assert.Equal(t, context.Canceled, RunScript(rt, strings.NewReader("exit\nshow\n"), &buf))
	assert.Equal(t, "Done\n", buf.String())
}

func TestRunnerCollector(t *testing.T) {
	collector, err := radiomodel.NewCollector(nil)
	require.Nil(t, err)
	rt, err := NewCmdRunner(progctx.New(context.Background()), nil, collector)
	require.Nil(t, err)
	run(t, rt, "chain add friis")
	queries := collector.Queries.WithLabelValues(string(radiomodel.KindFriis))
	before := testutil.ToFloat64(queries)
	run(t, rt, "sweep 0 from 1 to 10 step 1")
	assert.Equal(t, before+10, testutil.ToFloat64(queries))
}

type mockCliHandler struct {
	expectedCmd string
	handleError error
	handleCount int
	t           *testing.T
}

func (hnd *mockCliHandler) HandleCommand(cmd string, output io.Writer) error {
	assert.Equal(hnd.t, hnd.expectedCmd, cmd)
	hnd.handleCount += 1
	return hnd.handleError
}

func (hnd *mockCliHandler) GetPrompt() string {
	return "> "
}

func TestCliStartStop(t *testing.T) {
	Cli = newCliInstance()
	handler := mockCliHandler{
		expectedCmd: "help",
		handleError: nil,
		t:           t,
	}

	opt := DefaultCliOptions()
	r, w, _ := os.Pipe()
	opt.Stdin = r
	err := make(chan error, 1)
	go func() {
		err <- Cli.Run(&handler, opt)
	}()
	<-Cli.Started
	fmt.Fprint(w, "help\n")
	time.Sleep(time.Millisecond * 500)
	_ = w.Close()
	Cli.Stop()

	assert.Nil(t, <-err)
	assert.Equal(t, 1, handler.handleCount)
}

func TestCliCommandNotDefined(t *testing.T) {
	Cli = newCliInstance()
	handler := mockCliHandler{
		expectedCmd: "xyz",
		handleError: fmt.Errorf("undefined command"),
		t:           t,
	}

	opt := DefaultCliOptions()
	r, w, _ := os.Pipe()
	opt.Stdin = r
	err := make(chan error, 1)
	go func() {
		err <- Cli.Run(&handler, opt)
	}()
	<-Cli.Started
	fmt.Fprint(w, "xyz\n") // handler error causes CLI exit.

	assert.NotNil(t, <-err)
	assert.Equal(t, 1, handler.handleCount)

	Cli.Stop() // calling Stop() after CLI has already exited.
}
