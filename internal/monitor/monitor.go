/*
 * r3000 - Local interactive console
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package monitor is a local operator console offering the same verbs the
// remote debug stub exposes over its wire protocol (step, continue, regs,
// mem, break, quit), for use at the simulator's own terminal without a
// second GDB process attached.
package monitor

import (
	"errors"
	"fmt"
	"os"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/rcornwell/r3000/internal/master"
)

// Monitor owns the console's line editor and the channel it sends
// requests to the machine driver on.
type Monitor struct {
	master  chan<- master.Packet
	colored bool
}

// New builds a Monitor. Whether stdout is a terminal decides if stop
// reasons get ANSI coloring, checked once up front so a redirected log
// file never gets escape codes mixed into it.
func New(m chan<- master.Packet) *Monitor {
	return &Monitor{
		master:  m,
		colored: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Run drives the prompt loop until the operator quits or aborts (Ctrl-D).
func (mon *Monitor) Run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		return completeCmd(partial)
	})

	for {
		input, err := line.Prompt("r3000> ")
		if err == nil {
			line.AppendHistory(input)
			quit, cmdErr := mon.process(input)
			if cmdErr != nil {
				fmt.Println("error: " + cmdErr.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		fmt.Println("error reading line: " + err.Error())
		return
	}
}

// req sends pkt on the master channel and waits for its reply.
func (mon *Monitor) req(pkt master.Packet) master.Reply {
	reply := make(chan master.Reply, 1)
	pkt.Reply = reply
	mon.master <- pkt
	return <-reply
}
