/*
 * r3000 - Instruction interpreter
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

// Package cpu implements the R3000 instruction interpreter: 32 GPRs,
// HI/LO, the PC/nPC branch-delay pipeline, the one-instruction load-delay
// slot, and per-instruction dispatch through CP0/TLB/MMU. Each decoded
// operation maps to a handler function returning an exception code (or
// none), dispatched through a table built once at startup.
package cpu

import (
	"github.com/rcornwell/r3000/internal/bus"
	"github.com/rcornwell/r3000/internal/cp0"
	"github.com/rcornwell/r3000/internal/decode"
	"github.com/rcornwell/r3000/internal/mmu"
	"github.com/rcornwell/r3000/internal/trace"
)

// Fault describes a trap the interpreter must vector through CP0.
type Fault struct {
	Code        int
	BadVAddr    uint32
	HasBadVAddr bool
	UTLBRefill  bool
	CE          uint32
	HasCE       bool
}

func faultFromMMU(f *mmu.Fault) *Fault {
	if f == nil {
		return nil
	}
	return &Fault{Code: f.Code, BadVAddr: f.BadVAddr, HasBadVAddr: true, UTLBRefill: f.UTLBRefill}
}

// loadSlot is a pending GPR write from a load instruction, not yet
// visible to the register file. See (*CPU).Step for the exact commit
// ordering that gives loads a one-instruction delay slot.
type loadSlot struct {
	active bool
	reg    uint8
	value  uint32
}

// execResult is what an opXXX handler hands back to Step: either a
// regular (immediate) GPR write, a staged load, a taken branch/jump, or
// a fault. Handlers mutate HI/LO and CP0 directly since neither is
// subject to the load-delay hazard.
type execResult struct {
	hasWrite     bool
	isLoad       bool
	writeReg     uint8
	writeVal     uint32
	branchTaken  bool
	branchTarget uint32
	fault        *Fault
}

func regWrite(reg uint8, val uint32) execResult {
	return execResult{hasWrite: true, writeReg: reg, writeVal: val}
}

func loadWrite(reg uint8, val uint32) execResult {
	return execResult{hasWrite: true, isLoad: true, writeReg: reg, writeVal: val}
}

func faultResult(f *Fault) execResult {
	return execResult{fault: f}
}

func branchResult(taken bool, target uint32) execResult {
	return execResult{branchTaken: taken, branchTarget: target}
}

// handler executes one decoded instruction. pc is the address of the
// instruction being executed; npc is the address of the delay-slot
// instruction (the one that will run next regardless of what this
// instruction does).
type handler func(c *CPU, inst decode.Inst, pc, npc uint32) execResult

// CPU holds the full architectural register state and drives the
// fetch/decode/execute/commit loop for a single instruction at a time.
type CPU struct {
	gpr [32]uint32
	hi  uint32
	lo  uint32

	PC        uint32
	nPC       uint32
	delaySlot bool

	pendingLoad loadSlot
	thisLoad    loadSlot

	userMode bool

	// Endian is the machine's configured byte order, needed only for the
	// unaligned lwl/lwr/swl/swr merge math; aligned accesses get it for
	// free from the bus's own codec.
	Endian bus.Endian

	CP0 *cp0.CP0
	MMU *mmu.MMU

	table [decode.NumOps]handler

	Halted    bool
	HaltCause string
}

// New builds a CPU wired to the given CP0 and MMU, reset to the standard
// post-reset fetch address (the boot ROM vector).
func New(c *cp0.CP0, m *mmu.MMU, endian bus.Endian) *CPU {
	cpu := &CPU{CP0: c, MMU: m, Endian: endian}
	cpu.buildTable()
	cpu.Reset()
	return cpu
}

const resetPC = 0xbfc00000

// Reset restores the CPU to its post-reset register state; CP0 is reset
// independently by its own owner.
func (c *CPU) Reset() {
	for i := range c.gpr {
		c.gpr[i] = 0
	}
	c.hi, c.lo = 0, 0
	c.PC = resetPC
	c.nPC = resetPC + 4
	c.delaySlot = false
	c.pendingLoad = loadSlot{}
	c.thisLoad = loadSlot{}
	c.Halted = false
	c.HaltCause = ""
}

// Reg returns the value of general register i (0 for $zero).
func (c *CPU) Reg(i uint8) uint32 {
	return c.gpr[i&0x1f]
}

// mergeBase returns the value lwl/lwr/swl/swr merge into: normally the
// committed register value, but forwarded from an immediately preceding
// load-to-the-same-register still sitting in the pending-load slot. Real
// R3000s guarantee this forwarding specifically for back-to-back
// lwl/lwr pairs targeting one register, the standard idiom for an
// unaligned word access; it does not apply to ordinary instructions,
// which must still see the pre-load value (cpu_test.go exercises both).
func (c *CPU) mergeBase(reg uint8) uint32 {
	if c.pendingLoad.active && c.pendingLoad.reg == reg {
		return c.pendingLoad.value
	}
	return c.Reg(reg)
}

// SetReg forces general register i to value, for debugger/monitor use;
// writes to $zero are silently discarded, matching normal execution.
func (c *CPU) SetReg(i uint8, value uint32) {
	if i == 0 {
		return
	}
	c.gpr[i&0x1f] = value
}

// HiLo returns the HI/LO register pair.
func (c *CPU) HiLo() (uint32, uint32) { return c.hi, c.lo }

// SetHiLo sets the HI/LO register pair, for debugger/monitor use.
func (c *CPU) SetHiLo(hi, lo uint32) { c.hi, c.lo = hi, lo }

// Step executes exactly one instruction (or services a pending
// interrupt):
//  1. check for an enabled pending interrupt;
//  2. fetch at PC;
//  3. decode;
//  4. execute, writing results to a write-buffer;
//  5. commit writes, GPR $0 discarded;
//  6. advance PC/nPC, honoring any taken branch's delay slot.
//
// It returns the fault, if any, that was vectored during this step.
func (c *CPU) Step() *Fault {
	c.userMode = c.CP0.StatusUserMode()

	if pending := c.CP0.PendingInterrupts(); pending != 0 && c.CP0.StatusIEc() {
		return c.raise(&Fault{Code: cp0.ExcInt})
	}

	pc, npc, delaySlot := c.PC, c.nPC, c.delaySlot

	word, mf := c.MMU.Read(pc, bus.Word, mmu.Fetch, c.userMode)
	if mf != nil {
		return c.raise(faultFromMMU(mf))
	}

	inst := decode.Decode(word)
	trace.Tracef(trace.CPU, "pc=%#08x word=%#08x op=%d", pc, word, inst.Op)

	c.thisLoad = loadSlot{}
	result := c.table[inst.Op](c, inst, pc, npc)

	if result.fault != nil {
		c.commitPendingLoad()
		return c.raiseInDelaySlot(result.fault, delaySlot, pc)
	}

	c.commitPendingLoad()
	if result.hasWrite {
		if result.isLoad {
			c.thisLoad = loadSlot{active: true, reg: result.writeReg, value: result.writeVal}
		} else if result.writeReg != 0 {
			c.gpr[result.writeReg] = result.writeVal
		}
	}
	c.pendingLoad = c.thisLoad

	c.PC = npc
	if result.branchTaken {
		c.delaySlot = true
		c.nPC = result.branchTarget
	} else {
		c.delaySlot = false
		c.nPC = npc + 4
	}
	c.CP0.TickRandom()
	return nil
}

// commitPendingLoad writes a load staged by the previous instruction into
// the register file; it happens before this instruction's own regular
// write so that a same-register destination on the following instruction
// wins.
func (c *CPU) commitPendingLoad() {
	if c.pendingLoad.active && c.pendingLoad.reg != 0 {
		c.gpr[c.pendingLoad.reg] = c.pendingLoad.value
	}
	c.pendingLoad = loadSlot{}
}

func (c *CPU) raise(f *Fault) *Fault {
	return c.raiseInDelaySlot(f, c.delaySlot, c.PC)
}

func (c *CPU) raiseInDelaySlot(f *Fault, delaySlot bool, pc uint32) *Fault {
	if f.HasBadVAddr {
		// BadVAddr for TLB-refill misses is recorded by the MMU itself
		// (it also updates EntryHi/Context); other faults land here.
		if !f.UTLBRefill {
			c.CP0.SetBadVAddrOnly(f.BadVAddr)
		}
	}
	if f.HasCE {
		c.CP0.SetCE(f.CE)
	}
	vector := c.CP0.EnterException(f.Code, pc, delaySlot, f.UTLBRefill)
	c.PC = vector
	c.nPC = vector + 4
	c.delaySlot = false
	return f
}
