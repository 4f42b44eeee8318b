/*
 * r3000 - System Control Coprocessor (CP0)
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

// Package cp0 models the R3000 System Control Coprocessor: Status, Cause,
// EPC, BadVAddr, Context, EntryHi, EntryLo, Index, Random, and PRId, plus
// exception entry/return. Kept as its own component, separate from the
// main CPU dispatch loop, so exception semantics are testable in
// isolation.
package cp0

// Register numbers.
const (
	Index    = 0
	Random   = 1
	EntryLo  = 2
	Context  = 4
	BadVAddr = 8
	EntryHi  = 10
	Status   = 12
	Cause    = 13
	EPC      = 14
	PRId     = 15
)

// Status register bit layout.
const (
	statusIEc uint32 = 1 << 0
	statusKUc uint32 = 1 << 1
	statusIEp uint32 = 1 << 2
	statusKUp uint32 = 1 << 3
	statusIEo uint32 = 1 << 4
	statusKUo uint32 = 1 << 5
	statusIM  uint32 = 0xff << 8
	statusIMShift      = 8
	statusCU0 uint32 = 1 << 28
	statusBEV uint32 = 1 << 22
)

// Cause register bit layout.
const (
	causeExcCodeShift = 2
	causeExcCodeMask  = 0x1f << causeExcCodeShift
	causeIP           = 0xff << 8
	causeCEShift      = 28
	causeCEMask       = 0x3 << causeCEShift
	causeBD           uint32 = 1 << 31
)

// Exception codes (Cause.ExcCode).
const (
	ExcInt  = 0
	ExcMod  = 1
	ExcTLBL = 2
	ExcTLBS = 3
	ExcAdEL = 4
	ExcAdES = 5
	ExcIBE  = 6
	ExcDBE  = 7
	ExcSys  = 8
	ExcBp   = 9
	ExcRI   = 10
	ExcCpU  = 11
	ExcOvf  = 12
)

// Vector prefixes: bootstrap (BEV=1) vs. RAM-resident handler bases.
const (
	bootUTLBVector = 0xbfc00000
	bootGenVector  = 0xbfc00180
	ramUTLBVector  = 0x80000000
	ramGenVector   = 0x80000080
)

// CP0 is the coprocessor 0 register file.
type CP0 struct {
	regs [16]uint32
}

// New returns a CP0 at its post-reset state: BEV=1, kernel mode, interrupts
// disabled, Random at its top entry.
func New() *CP0 {
	c := &CP0{}
	c.regs[Status] = statusBEV
	c.regs[Random] = 63
	c.regs[PRId] = 0x00000300 // implementation-defined; R3000-family value.
	return c
}

// Read returns the raw value of CP0 register reg.
func (c *CP0) Read(reg int) uint32 {
	return c.regs[reg]
}

// Write stores value into CP0 register reg. Some registers are partially
// read-only in real hardware (Random, e.g.); this model treats every
// register as software-writable via mtc0 except where MMU/TLB code writes
// through narrower helpers below, keeping the register file a plain array
// and layering semantics in the caller.
func (c *CP0) Write(reg int, value uint32) {
	c.regs[reg] = value
}

// StatusBEV reports whether bootstrap exception vectors are selected.
func (c *CP0) StatusBEV() bool { return c.regs[Status]&statusBEV != 0 }

// StatusUserMode reports whether the CPU is currently in user mode (KUc).
func (c *CP0) StatusUserMode() bool { return c.regs[Status]&statusKUc != 0 }

// StatusIEc reports whether interrupts are currently enabled.
func (c *CP0) StatusIEc() bool { return c.regs[Status]&statusIEc != 0 }

// StatusCU0 reports whether user-mode CP0 access is permitted.
func (c *CP0) StatusCU0() bool { return c.regs[Status]&statusCU0 != 0 }

// PendingInterrupts returns Cause.IP & Status.IM, non-zero when some
// enabled interrupt line is asserted.
func (c *CP0) PendingInterrupts() uint32 {
	ip := (c.regs[Cause] & causeIP) >> 8
	im := (c.regs[Status] & statusIM) >> statusIMShift
	return ip & im
}

// SetIP sets or clears interrupt-pending line n (0..7) in Cause.IP.
func (c *CP0) SetIP(n int, pending bool) {
	bit := uint32(1) << (8 + n)
	if pending {
		c.regs[Cause] |= bit
	} else {
		c.regs[Cause] &^= bit
	}
}

// ASID returns the current address space id from EntryHi.
func (c *CP0) ASID() uint32 {
	return c.regs[EntryHi] & 0x3f
}

// EnterException vectors the CPU into the exception handler:
//  1. Push the KU/IE stack (on every entry, nested or not; the old pair
//     is discarded).
//  2. Record ExcCode and BD.
//  3. Set EPC to the faulting instruction (or the branch, if the fault hit
//     its delay slot).
//  4. Pick UTLB vs. general vector.
//  5. Apply the BEV-selected prefix.
//
// It returns the new PC value the CPU must fetch from next.
func (c *CP0) EnterException(code int, pc uint32, inDelaySlot bool, utlbRefill bool) uint32 {
	status := c.regs[Status]
	// Shift KU/IE stack left by 2: cur -> prev -> old, clear cur.
	stack := status & 0x3f
	stack = (stack << 2) & 0x3f
	status = (status &^ 0x3f) | stack
	c.regs[Status] = status

	cause := c.regs[Cause] &^ (causeExcCodeMask | causeBD)
	cause |= uint32(code) << causeExcCodeShift
	if inDelaySlot {
		cause |= causeBD
		c.regs[EPC] = pc - 4
	} else {
		c.regs[EPC] = pc
	}
	c.regs[Cause] = cause

	var vector uint32
	if utlbRefill {
		vector = ramUTLBVector
		if c.StatusBEV() {
			vector = bootUTLBVector
		}
	} else {
		vector = ramGenVector
		if c.StatusBEV() {
			vector = bootGenVector
		}
	}
	return vector
}

// SetCE records the coprocessor number for a CpU exception.
func (c *CP0) SetCE(ce uint32) {
	c.regs[Cause] = (c.regs[Cause] &^ causeCEMask) | ((ce << causeCEShift) & causeCEMask)
}

// ReturnFromException implements rfe: pop the KU/IE stack right by 2. rfe
// does not itself change PC; the guest pairs it with `jr k0` restoring EPC.
func (c *CP0) ReturnFromException() {
	status := c.regs[Status]
	stack := status & 0x3f
	stack >>= 2
	c.regs[Status] = (status &^ 0x3f) | stack
}

// SetBadVAddr records BadVAddr and Context.BadVPN on a TLB miss.
func (c *CP0) SetBadVAddr(vaddr uint32) {
	c.regs[BadVAddr] = vaddr
	vpn := vaddr & 0xfffff000
	c.regs[EntryHi] = (c.regs[EntryHi] &^ 0xfffff000) | vpn
	c.regs[Context] = (c.regs[Context] &^ 0x7fff00) | ((vpn >> 12) << 8 & 0x7fff00)
}

// SetBadVAddrOnly records BadVAddr alone, for exceptions that don't touch
// EntryHi/Context (TLB-invalid, TLB-modified, address error, bus error)
// but where BadVAddr is still diagnostically useful, as on real R3000
// hardware.
func (c *CP0) SetBadVAddrOnly(vaddr uint32) {
	c.regs[BadVAddr] = vaddr
}

// TickRandom decrements Random on every instruction, wrapping from 8 to 63
// (entries 0..7 are wired and excluded from the Random replacement range).
func (c *CP0) TickRandom() {
	r := c.regs[Random]
	if r <= 8 {
		c.regs[Random] = 63
		return
	}
	c.regs[Random] = r - 1
}
