/*
 * r3000 - Local console command table
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

package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rcornwell/r3000/internal/master"
)

// pollInterval mirrors the debug stub's: continue blocks the console
// until the driver actually settles on a new stop reason.
const pollInterval = 2 * time.Millisecond

type cmd struct {
	name    string
	min     int // shortest unambiguous prefix length
	process func(mon *Monitor, args []string) (bool, error)
}

var cmdList = []cmd{
	{name: "step", min: 1, process: cmdStep},
	{name: "continue", min: 1, process: cmdContinue},
	{name: "regs", min: 1, process: cmdRegs},
	{name: "mem", min: 1, process: cmdMem},
	{name: "break", min: 2, process: cmdBreak},
	{name: "quit", min: 1, process: cmdQuit},
}

var gprNames = []string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// ANSI SGR codes used to highlight stop reasons when stdout is a terminal.
const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
)

// colorize wraps s in code unless coloring is disabled (redirected output).
func (mon *Monitor) colorize(code, s string) string {
	if !mon.colored {
		return s
	}
	return code + s + ansiReset
}

// process matches the command line's leading word against cmdList by
// unambiguous prefix.
func (mon *Monitor) process(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	word, args := fields[0], fields[1:]

	var match *cmd
	for i := range cmdList {
		c := &cmdList[i]
		if len(word) < c.min || !strings.HasPrefix(c.name, word) {
			continue
		}
		if match != nil {
			return false, fmt.Errorf("ambiguous command %q", word)
		}
		match = c
	}
	if match == nil {
		return false, fmt.Errorf("unknown command %q", word)
	}
	return match.process(mon, args)
}

func completeCmd(partial string) []string {
	var out []string
	for _, c := range cmdList {
		if strings.HasPrefix(c.name, partial) {
			out = append(out, c.name)
		}
	}
	return out
}

func cmdQuit(mon *Monitor, args []string) (bool, error) {
	return true, nil
}

func cmdStep(mon *Monitor, args []string) (bool, error) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("step: %w", err)
		}
		n = v
	}
	var stop master.StopInfo
	for i := 0; i < n; i++ {
		stop = mon.req(master.Packet{Msg: master.Step}).Stop
		if stop.Reason == master.StopHalt || stop.Reason == master.StopException {
			break
		}
	}
	fmt.Println(mon.describeStop(stop))
	return false, nil
}

func cmdContinue(mon *Monitor, args []string) (bool, error) {
	mon.req(master.Packet{Msg: master.Run})
	var stop master.StopInfo
	for {
		stop = mon.req(master.Packet{Msg: master.LastStop}).Stop
		if stop.Reason != master.StopNone {
			break
		}
		time.Sleep(pollInterval)
	}
	fmt.Println(mon.describeStop(stop))
	return false, nil
}

func (mon *Monitor) describeStop(stop master.StopInfo) string {
	switch stop.Reason {
	case master.StopBreakpoint:
		return mon.colorize(ansiYellow, fmt.Sprintf("breakpoint at %#08x", stop.PC))
	case master.StopHalt:
		return mon.colorize(ansiGreen, fmt.Sprintf("halted at %#08x (%s)", stop.PC, stop.HaltCause))
	case master.StopException:
		return mon.colorize(ansiRed, fmt.Sprintf("exception %d at %#08x", stop.ExcCode, stop.PC))
	default:
		return fmt.Sprintf("stopped at %#08x", stop.PC)
	}
}

func cmdRegs(mon *Monitor, args []string) (bool, error) {
	for i := 0; i < 32; i += 4 {
		line := ""
		for j := i; j < i+4; j++ {
			v := mon.req(master.Packet{Msg: master.ReadReg, Reg: uint8(j)}).Value
			line += fmt.Sprintf("%-4s=%08x ", "$"+gprNames[j], v)
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
	pc := mon.req(master.Packet{Msg: master.ReadReg, Reg: master.RegPC}).Value
	hi := mon.req(master.Packet{Msg: master.ReadReg, Reg: master.RegHI}).Value
	lo := mon.req(master.Packet{Msg: master.ReadReg, Reg: master.RegLO}).Value
	fmt.Printf("pc  =%08x hi  =%08x lo  =%08x\n", pc, hi, lo)
	return false, nil
}

// cmdMem handles "mem <addr> [count]", dumping count words (default 1)
// starting at addr.
func cmdMem(mon *Monitor, args []string) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("mem: usage: mem <addr> [count]")
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		return false, fmt.Errorf("mem: %w", err)
	}
	count := 1
	if len(args) > 1 {
		c, err := strconv.Atoi(args[1])
		if err != nil {
			return false, fmt.Errorf("mem: %w", err)
		}
		count = c
	}
	for i := 0; i < count; i++ {
		a := uint32(addr) + uint32(i*4)
		r := mon.req(master.Packet{Msg: master.ReadMem, Addr: a, Size: 4})
		if r.Err != nil {
			return false, fmt.Errorf("mem: %w", r.Err)
		}
		fmt.Printf("%08x: %08x\n", a, r.Value)
	}
	return false, nil
}

// cmdBreak handles "break <addr>" (set) and "break clear <addr>".
func cmdBreak(mon *Monitor, args []string) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("break: usage: break <addr> | break clear <addr>")
	}
	clear := args[0] == "clear"
	if clear {
		args = args[1:]
	}
	if len(args) == 0 {
		return false, errors.New("break: missing address")
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		return false, fmt.Errorf("break: %w", err)
	}
	msg := master.SetBreak
	if clear {
		msg = master.ClearBreak
	}
	mon.req(master.Packet{Msg: msg, Addr: uint32(addr)})
	return false, nil
}
