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
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/openthread/ot-proploss/logger"
)

type CliHandler interface {
	HandleCommand(cmd string, output io.Writer) error
	GetPrompt() string
}

type CliOptions struct {
	EchoInput   bool
	HistoryFile string
	Stdin       *os.File
	Stdout      *os.File
}

func DefaultCliOptions() *CliOptions {
	return &CliOptions{}
}

// CliInstance is the interactive console. There is one per process, as it owns the terminal.
type CliInstance struct {
	Started          chan struct{}
	Options          *CliOptions
	readlineInstance *readline.Instance
	waitCliClosed    chan struct{}
}

var Cli = newCliInstance()

func newCliInstance() *CliInstance {
	return &CliInstance{
		Started:       make(chan struct{}),
		waitCliClosed: make(chan struct{}),
	}
}

// OnStdout restores the prompt after log output was written to the terminal.
func (cli *CliInstance) OnStdout() {
	if cli.readlineInstance != nil {
		cli.readlineInstance.Refresh()
	}
}

func getCliOptions(options *CliOptions) *CliOptions {
	if options == nil {
		options = DefaultCliOptions()
	}
	if options.Stdin == nil {
		options.Stdin = os.Stdin
	}
	if options.Stdout == nil {
		options.Stdout = os.Stdout
	}
	return options
}

// newCompleter completes command names and the keywords that follow them.
func newCompleter() *readline.PrefixCompleter {
	conds := []readline.PrefixCompleterInterface{
		readline.PcItem("los"), readline.PcItem("nlos"), readline.PcItem("nlosv"),
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("chain", readline.PcItem("add"), readline.PcItem("del"), readline.PcItem("clear")),
		readline.PcItem("exit"),
		readline.PcItem("help"),
		readline.PcItem("load"),
		readline.PcItem("loglevel",
			readline.PcItem("trace"), readline.PcItem("debug"), readline.PcItem("info"),
			readline.PcItem("warn"), readline.PcItem("error"), readline.PcItem("off")),
		readline.PcItem("node"),
		readline.PcItem("nodes"),
		readline.PcItem("query"),
		readline.PcItem("save"),
		readline.PcItem("setloss"),
		readline.PcItem("shadow", conds...),
		readline.PcItem("show"),
		readline.PcItem("streams"),
		readline.PcItem("sweep"),
	)
}

// Stop stops a running console and waits until Run returned.
func (cli *CliInstance) Stop() {
	<-cli.Started
	// readlineInstance.Close() can block here, so Run closes it. ETX (Ctrl-C) unblocks a pending read.
	_, _ = cli.Options.Stdin.WriteString("\003\n")
	_ = cli.Options.Stdin.Close()
	logger.Tracef("waiting for CLI to stop ...")
	<-cli.waitCliClosed
	logger.Tracef("CLI stopped")
}

// Run reads and executes commands until end of input, Ctrl-C on an empty line, or a handler error.
func (cli *CliInstance) Run(handler CliHandler, options *CliOptions) error {
	defer logger.Debugf("CLI exit.")
	defer close(cli.waitCliClosed)

	options = getCliOptions(options)
	cli.Options = options

	for _, f := range []*os.File{options.Stdin, options.Stdout} {
		fd := int(f.Fd())
		if !readline.IsTerminal(fd) {
			continue
		}
		state, err := readline.GetState(fd)
		if err != nil {
			close(cli.Started)
			return err
		}
		defer func() {
			_ = readline.Restore(fd, state)
		}()
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:            handler.GetPrompt(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistoryFile:       options.HistoryFile,
		HistorySearchFold: true,
		AutoComplete:      newCompleter(),
		Stdin:             options.Stdin,
		Stdout:            options.Stdout,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			// block CtrlZ feature
			return r, r != readline.CharCtrlZ
		},
	})
	if err != nil {
		close(cli.Started)
		return err
	}
	defer func() {
		_ = l.Close()
	}()
	cli.readlineInstance = l
	close(cli.Started)

	stdout := options.Stdout
	for {
		l.SetPrompt(handler.GetPrompt())
		line, err := l.Readline()

		if len(line) > 0 && line[0] == readline.CharInterrupt {
			return nil
		} else if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue // Ctrl-C in midline edit only cancels the present cmd line.
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if options.EchoInput {
			if _, err := stdout.WriteString(line + "\n"); err != nil {
				return err
			}
		}

		cmd := strings.TrimSpace(line)
		if len(cmd) == 0 {
			continue
		}
		if err = handler.HandleCommand(cmd, l.Stdout()); err != nil {
			_ = stdout.Sync()
			return err
		}
		_ = stdout.Sync()
	}
}

// RunScript executes the commands read from r, one per line, without a terminal. Empty lines and lines
// starting with '#' are skipped. It stops at end of input or at the first handler error.
func RunScript(handler CliHandler, r io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		if len(cmd) == 0 || strings.HasPrefix(cmd, "#") {
			continue
		}
		if err := handler.HandleCommand(cmd, output); err != nil {
			return err
		}
	}
	return scanner.Err()
}
