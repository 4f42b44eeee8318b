/*
 * r3000 - Machine driver
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

// Package machine constructs and drives one simulated R3000 system: bus,
// RAM, ROM, halt/trace devices, CP0, TLB, MMU, CPU, all run from a single
// cooperative thread. A master.Packet channel is polled between
// instructions, so requests are only serviced between instructions,
// never concurrently with one.
package machine

import (
	"fmt"
	"strings"

	"github.com/rcornwell/r3000/internal/bus"
	"github.com/rcornwell/r3000/internal/cp0"
	"github.com/rcornwell/r3000/internal/cpu"
	"github.com/rcornwell/r3000/internal/master"
	"github.com/rcornwell/r3000/internal/mmu"
	"github.com/rcornwell/r3000/internal/tlb"
)

// Default physical placement for the ROM, RAM, halt, and test devices.
const (
	DefaultROMAddr  uint32 = 0x1fc00000
	DefaultRAMAddr  uint32 = 0x00000000
	DefaultRAMSize  uint32 = 1024 * 1024 // 1MB
	DefaultHaltAddr uint32 = 0x01010024
	DefaultTestAddr uint32 = 0x01010028
)

// ConfigError reports a problem with the machine's static configuration —
// overlapping or empty device maps — fatal at startup.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config error: " + e.Msg }

// Config describes how to build a Machine, with CLI defaults pre-applied
// by the caller.
type Config struct {
	ROMImage []byte
	ROMAddr  uint32
	RAMAddr  uint32
	RAMSize  uint32
	HaltAddr uint32
	TestAddr uint32
	Endian   bus.Endian
	WithTest bool // attach the diagnostic TraceDevice
}

// Machine owns every component of one simulated system and the channel the
// debug stub and monitor send master.Packet requests on.
type Machine struct {
	Bus  *bus.Bus
	RAM  *bus.RAM
	ROM  *bus.ROM
	Halt *bus.HaltDevice
	Test *bus.TraceDevice

	CP0 *cp0.CP0
	TLB *tlb.TLB
	MMU *mmu.MMU
	CPU *cpu.CPU

	master chan master.Packet

	running     bool
	quit        bool
	exitCode    int
	breakpoints map[uint32]struct{}
	lastStop    master.StopInfo
}

// New builds a Machine from cfg, mapping ROM and RAM at their configured
// addresses and the halt (and optional trace) device alongside them. It
// returns a *ConfigError if any device range overlaps another or is
// empty; the ROM image's size is not checked against any window, so an
// image that overlaps nothing is mapped at whatever length it has.
func New(cfg Config) (*Machine, error) {
	if cfg.ROMAddr == 0 {
		cfg.ROMAddr = DefaultROMAddr
	}
	if cfg.RAMSize == 0 {
		cfg.RAMSize = DefaultRAMSize
	}
	if cfg.HaltAddr == 0 {
		cfg.HaltAddr = DefaultHaltAddr
	}

	b := bus.New()
	m := &Machine{
		Bus:         b,
		master:      make(chan master.Packet),
		breakpoints: make(map[uint32]struct{}),
	}

	rom := bus.NewROM("rom", cfg.ROMImage, cfg.Endian)
	if err := b.Map(cfg.ROMAddr, rom.Size(), rom); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	m.ROM = rom

	ram := bus.NewRAM("ram", cfg.RAMSize, cfg.Endian)
	if err := b.Map(cfg.RAMAddr, ram.Size(), ram); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	m.RAM = ram

	halt := bus.NewHaltDevice("halt", nil)
	if err := b.Map(cfg.HaltAddr, halt.Size(), halt); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	m.Halt = halt

	if cfg.WithTest {
		testAddr := cfg.TestAddr
		if testAddr == 0 {
			testAddr = DefaultTestAddr
		}
		td := bus.NewTraceDevice("test")
		if err := b.Map(testAddr, td.Size(), td); err != nil {
			return nil, &ConfigError{Msg: err.Error()}
		}
		m.Test = td
	}

	m.CP0 = cp0.New()
	m.TLB = tlb.New()
	m.MMU = mmu.New(m.CP0, m.TLB, b)
	m.CPU = cpu.New(m.CP0, m.MMU, cfg.Endian)

	return m, nil
}

// Master returns the channel the debug stub and monitor send requests on.
func (m *Machine) Master() chan<- master.Packet { return m.master }

// Run drives the fetch-execute loop, servicing master.Packet requests
// between instructions, until the guest writes the halt device or takes
// a fatal exception. It returns the process exit code.
func (m *Machine) Run() int {
	m.running = true
	for {
		select {
		case pkt := <-m.master:
			m.handle(pkt)
		default:
			if m.quit {
				return m.exitCode
			}
			if m.running {
				m.step()
			} else {
				// Nothing to do until the next request arrives; block so
				// this loop doesn't spin a CPU core for no reason.
				pkt := <-m.master
				m.handle(pkt)
			}
		}
		if m.quit {
			return m.exitCode
		}
	}
}

// step runs the free-execution path used by Run: it checks for a
// breakpoint at the current PC before executing.
func (m *Machine) step() {
	if _, hit := m.breakpoints[m.CPU.PC]; hit {
		m.running = false
		m.lastStop = master.StopInfo{PC: m.CPU.PC, Reason: master.StopBreakpoint}
		return
	}
	m.singleStep()
}

// singleStep always executes exactly one instruction, ignoring any
// breakpoint at the current PC — used by the Step request so stepping off
// a breakpoint the debugger just stopped at makes forward progress.
func (m *Machine) singleStep() {
	fault := m.CPU.Step()

	if m.Halt.Halted {
		m.running = false
		m.quit = true
		m.exitCode = 0
		m.lastStop = master.StopInfo{PC: m.CPU.PC, Reason: master.StopHalt, HaltCause: m.Halt.Cause}
		return
	}

	if fault != nil {
		m.lastStop = master.StopInfo{PC: m.CPU.PC, Reason: master.StopException, ExcCode: fault.Code}
		if m.fatalFault() {
			m.running = false
			m.quit = true
			m.exitCode = m.exitCodeFor(fault.Code)
		}
	}
}

// fatalFault reports whether an exception that just vectored has nowhere
// left to go: BEV is still set (no OS has installed its own handlers) and
// the vector address it landed at isn't itself mapped to anything that
// can run, so the guest can only fault again forever. Bus errors outside
// any handler (BEV set, vectoring into unmapped space) exit distinctly
// from everything else.
func (m *Machine) fatalFault() bool {
	if !m.CP0.StatusBEV() {
		return false
	}
	paddr, fault := m.MMU.TranslateForDebug(m.CPU.PC)
	if fault != nil {
		return true
	}
	_, _, ok := m.Bus.DeviceAt(paddr)
	return !ok
}

func (m *Machine) exitCodeFor(code int) int {
	if code == cp0.ExcIBE || code == cp0.ExcDBE {
		return 2
	}
	return 1
}

// handle services one master.Packet with a switch on its Msg field.
func (m *Machine) handle(pkt master.Packet) {
	reply := master.Reply{}
	switch pkt.Msg {
	case master.Run:
		m.running = true
		m.lastStop = master.StopInfo{}
	case master.Halt:
		m.running = false
		m.lastStop = master.StopInfo{PC: m.CPU.PC, Reason: master.StopNone}
	case master.Step:
		m.lastStop = master.StopInfo{}
		m.singleStep()
		m.running = false
		if m.lastStop.Reason == master.StopNone {
			m.lastStop = master.StopInfo{PC: m.CPU.PC, Reason: master.StopStep}
		}
		reply.Stop = m.lastStop
	case master.ReadReg:
		reply.Value = m.readReg(pkt.Reg)
	case master.WriteReg:
		m.writeReg(pkt.Reg, pkt.Value)
	case master.ReadCP0:
		reply.Value = m.CP0.Read(pkt.CP0)
	case master.WriteCP0:
		m.CP0.Write(pkt.CP0, pkt.Value)
	case master.ReadMem:
		v, err := m.readMem(pkt.Addr, pkt.Size)
		reply.Value, reply.Err = v, err
	case master.WriteMem:
		reply.Err = m.writeMem(pkt.Addr, pkt.Size, pkt.Value)
	case master.SetBreak:
		m.breakpoints[pkt.Addr] = struct{}{}
	case master.ClearBreak:
		delete(m.breakpoints, pkt.Addr)
	case master.LastStop:
		reply.Stop = m.lastStop
	}
	if pkt.Reply != nil {
		pkt.Reply <- reply
	}
}

func (m *Machine) readReg(reg uint8) uint32 {
	switch {
	case reg < 32:
		return m.CPU.Reg(reg)
	case reg == master.RegPC:
		return m.CPU.PC
	case reg == master.RegHI:
		hi, _ := m.CPU.HiLo()
		return hi
	case reg == master.RegLO:
		_, lo := m.CPU.HiLo()
		return lo
	}
	return 0
}

func (m *Machine) writeReg(reg uint8, value uint32) {
	switch {
	case reg < 32:
		m.CPU.SetReg(reg, value)
	case reg == master.RegPC:
		m.CPU.PC = value
	case reg == master.RegHI:
		_, lo := m.CPU.HiLo()
		m.CPU.SetHiLo(value, lo)
	case reg == master.RegLO:
		hi, _ := m.CPU.HiLo()
		m.CPU.SetHiLo(hi, value)
	}
}

// readMem and writeMem go through the MMU in kernel-unchecked mode, then
// straight to the bus. Unlike a guest load/store, a failed debug access
// is reported as an error reply, not a vectored guest exception.
func (m *Machine) readMem(vaddr uint32, size int) (uint32, error) {
	paddr, fault := m.MMU.TranslateForDebug(vaddr)
	if fault != nil {
		return 0, fault
	}
	v, err := m.Bus.Read(paddr, size)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (m *Machine) writeMem(vaddr uint32, size int, value uint32) error {
	paddr, fault := m.MMU.TranslateForDebug(vaddr)
	if fault != nil {
		return fault
	}
	return m.Bus.Write(paddr, size, value)
}

// String summarizes the machine's static configuration, for the startup
// log line written by cmd/r3000.
func (m *Machine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rom=%s ram=%s halt=%s", m.ROM, m.RAM.Name(), m.Halt.Name())
	return sb.String()
}
