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

// Package proploss_main implements the proploss command: it loads a pipeline configuration and runs the CLI,
// interactively or on a given command list.
package proploss_main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/openthread/ot-proploss/cli"
	"github.com/openthread/ot-proploss/config"
	"github.com/openthread/ot-proploss/logger"
	"github.com/openthread/ot-proploss/progctx"
	"github.com/openthread/ot-proploss/radiomodel"
)

type MainArgs struct {
	ConfigFile  string
	Seed        int64
	Stream      int64
	LogLevel    string
	Commands    string
	MetricsAddr string
	HistoryFile string
}

var (
	args MainArgs
)

func parseArgs() {
	flag.StringVar(&args.ConfigFile, "config", "", "pipeline configuration file (YAML, or JSON with .json extension)")
	flag.Int64Var(&args.Seed, "seed", 0, "seed of the random streams; overrides the configuration if not 0")
	flag.Int64Var(&args.Stream, "stream", -1, "first random stream number; overrides the configuration if >= 0")
	flag.StringVar(&args.LogLevel, "log", "warn", "set logging level: trace, debug, info, warn, error, off.")
	flag.StringVar(&args.Commands, "cmd", "", "run the given CLI commands, separated by ';', and exit")
	flag.StringVar(&args.MetricsAddr, "metrics", "", "serve Prometheus metrics at this address, e.g. localhost:9100")
	flag.StringVar(&args.HistoryFile, "history", "", "CLI history file")
	flag.Parse()
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if args.ConfigFile != "" {
		var err error
		if cfg, err = config.ReadFile(args.ConfigFile); err != nil {
			return nil, err
		}
	}
	if args.Seed != 0 {
		cfg.Seed = args.Seed
	}
	if args.Stream >= 0 {
		cfg.Stream = args.Stream
	}
	return cfg, cfg.Validate()
}

// Main runs proploss until the CLI exits or a termination signal is received.
func Main(ctx *progctx.ProgCtx, cliOptions *cli.CliOptions) {
	parseArgs()
	level, err := logger.ParseLevelString(args.LogLevel)
	logger.FatalIfError(err)
	logger.SetLevel(level)

	cfg, err := loadConfig()
	logger.FatalIfError(err)

	collector, err := radiomodel.NewCollector(nil)
	logger.FatalIfError(err)

	rt, err := cli.NewCmdRunner(ctx, cfg, collector)
	logger.FatalIfError(err)
	logger.Debugf("pipeline: %s", rt.Pipeline())

	if args.Commands != "" {
		script := strings.ReplaceAll(args.Commands, ";", "\n")
		err = cli.RunScript(rt, strings.NewReader(script), os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatalf("%v", err)
		}
		return
	}

	var metricsSrv *http.Server
	if args.MetricsAddr != "" {
		metricsSrv = serveMetrics(ctx, args.MetricsAddr, collector)
	}

	ctx.Defer(func() {
		_ = os.Stdin.Close()
	})
	handleSignals(ctx)

	if cliOptions == nil {
		cliOptions = cli.DefaultCliOptions()
	}
	if args.HistoryFile != "" {
		cliOptions.HistoryFile = args.HistoryFile
	}
	logger.SetStdoutCallback(cli.Cli)
	err = cli.Cli.Run(rt, cliOptions)
	ctx.Cancel(errors.Wrapf(err, "console exit"))

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}

	logger.Debugf("waiting for proploss to stop gracefully ...")
	ctx.Wait()
}

func serveMetrics(ctx *progctx.ProgCtx, addr string, collector *radiomodel.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ctx.Go("metrics", func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warnf("metrics server exited: %v", err)
		}
	})
	logger.Infof("serving Prometheus metrics at %s", addr)
	return srv
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)

	ctx.Go("handleSignals", func() {
		defer logger.Debugf("handleSignals exit.")
		defer signal.Stop(c)

		select {
		case sig := <-c:
			logger.Infof("signal received: %v", sig)
			ctx.Cancel(nil)
		case <-ctx.Done():
		}
	})
}
