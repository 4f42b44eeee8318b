/*
 * r3000 - Memory Management Unit
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

// Package mmu applies kuseg/kseg0/kseg1/kseg2 address translation rules,
// calling into the TLB when a window is mapped rather than direct, and
// enforcing kernel-only access where the architecture requires it.
package mmu

import (
	"github.com/rcornwell/r3000/internal/bus"
	"github.com/rcornwell/r3000/internal/cp0"
	"github.com/rcornwell/r3000/internal/tlb"
	"github.com/rcornwell/r3000/internal/trace"
)

// AccessKind distinguishes fetch from load/store for alignment and
// privilege checks.
type AccessKind int

const (
	Fetch AccessKind = iota
	Load
	Store
)

// Fault is returned by Read/Write/TranslateForDebug on any guest exception; the
// caller (the CPU interpreter) turns it into a CP0 exception entry.
type Fault struct {
	Code       int
	BadVAddr   uint32
	UTLBRefill bool
}

func (f *Fault) Error() string { return "mmu fault" }

// MMU ties CP0 and the TLB to the physical bus.
type MMU struct {
	cp0 *cp0.CP0
	tlb *tlb.TLB
	bus *bus.Bus
}

// New builds an MMU over the given CP0, TLB, and physical bus.
func New(c *cp0.CP0, t *tlb.TLB, b *bus.Bus) *MMU {
	return &MMU{cp0: c, tlb: t, bus: b}
}

// TLB returns the underlying TLB, for the tlbr/tlbwi/tlbwr/tlbp
// instruction handlers, which manipulate entries directly rather than
// through translate.
func (m *MMU) TLB() *tlb.TLB { return m.tlb }

const (
	kuseg0 = 0x00000000
	kuseg1 = 0x80000000
	kseg0Base = 0x80000000
	kseg0End  = 0xa0000000
	kseg1Base = 0xa0000000
	kseg1End  = 0xc0000000
	kseg2Base = 0xc0000000
)

// translate maps vaddr to a physical address, without yet touching the
// bus.
func (m *MMU) translate(vaddr uint32, kind AccessKind, userMode bool) (uint32, *Fault) {
	switch {
	case vaddr < kuseg1:
		// kuseg: always TLB-mapped, reachable from both privilege levels.
		return m.tlbTranslate(vaddr, kind)

	case vaddr < kseg0End:
		// kseg0: direct-mapped, kernel-only.
		if userMode {
			return 0, m.privilegeFault(vaddr, kind)
		}
		return vaddr - kseg0Base, nil

	case vaddr < kseg1End:
		// kseg1: direct-mapped, uncached, kernel-only.
		if userMode {
			return 0, m.privilegeFault(vaddr, kind)
		}
		return vaddr - kseg1Base, nil

	default:
		// kseg2: TLB-mapped, kernel-only.
		if userMode {
			return 0, m.privilegeFault(vaddr, kind)
		}
		return m.tlbTranslate(vaddr, kind)
	}
}

func (m *MMU) privilegeFault(vaddr uint32, kind AccessKind) *Fault {
	code := cp0.ExcAdEL
	if kind == Store {
		code = cp0.ExcAdES
	}
	return &Fault{Code: code, BadVAddr: vaddr}
}

func (m *MMU) tlbTranslate(vaddr uint32, kind AccessKind) (uint32, *Fault) {
	asid := m.cp0.ASID()
	res, outcome := m.tlb.Lookup(vaddr, asid, kind == Store)
	switch outcome {
	case tlb.Hit:
		offset := vaddr & 0xfff
		paddr := (res.PFN & 0xfffff000) | offset
		trace.Tracef(trace.MMU, "translate vaddr=%#08x -> paddr=%#08x", vaddr, paddr)
		return paddr, nil
	case tlb.Miss:
		m.cp0.SetBadVAddr(vaddr)
		code := cp0.ExcTLBL
		if kind == Store {
			code = cp0.ExcTLBS
		}
		trace.Tracef(trace.MMU, "tlb miss vaddr=%#08x", vaddr)
		return 0, &Fault{Code: code, BadVAddr: vaddr, UTLBRefill: true}
	case tlb.Invalid:
		code := cp0.ExcTLBL
		if kind == Store {
			code = cp0.ExcTLBS
		}
		return 0, &Fault{Code: code, BadVAddr: vaddr}
	case tlb.Modified:
		return 0, &Fault{Code: cp0.ExcMod, BadVAddr: vaddr}
	}
	return 0, &Fault{Code: cp0.ExcTLBL, BadVAddr: vaddr}
}

func alignmentFault(vaddr uint32, kind AccessKind) *Fault {
	code := cp0.ExcAdEL
	if kind == Store {
		code = cp0.ExcAdES
	}
	return &Fault{Code: code, BadVAddr: vaddr}
}

func busFault(kind AccessKind) int {
	if kind == Fetch {
		return cp0.ExcIBE
	}
	return cp0.ExcDBE
}

// Read performs a size-byte (1/2/4) access at vaddr, applying alignment
// checks, translation, and bus routing.
func (m *MMU) Read(vaddr uint32, size int, kind AccessKind, userMode bool) (uint32, *Fault) {
	if fault := checkAlign(vaddr, size, kind); fault != nil {
		return 0, fault
	}
	paddr, fault := m.translate(vaddr, kind, userMode)
	if fault != nil {
		return 0, fault
	}
	v, err := m.bus.Read(paddr, size)
	if err != nil {
		return 0, &Fault{Code: busFault(kind), BadVAddr: vaddr}
	}
	return v, nil
}

// Write performs a size-byte (1/2/4) store at vaddr.
func (m *MMU) Write(vaddr uint32, size int, value uint32, userMode bool) *Fault {
	if fault := checkAlign(vaddr, size, Store); fault != nil {
		return fault
	}
	paddr, fault := m.translate(vaddr, Store, userMode)
	if fault != nil {
		return fault
	}
	if err := m.bus.Write(paddr, size, value); err != nil {
		return &Fault{Code: cp0.ExcDBE, BadVAddr: vaddr}
	}
	return nil
}

func checkAlign(vaddr uint32, size int, kind AccessKind) *Fault {
	switch size {
	case bus.Half:
		if vaddr&1 != 0 {
			return alignmentFault(vaddr, kind)
		}
	case bus.Word:
		if vaddr&3 != 0 {
			return alignmentFault(vaddr, kind)
		}
	}
	return nil
}

// TranslateForDebug translates vaddr without alignment checks and without
// enforcing user/kernel privilege, for the debug stub and monitor's memory
// inspection commands.
func (m *MMU) TranslateForDebug(vaddr uint32) (uint32, *Fault) {
	return m.translate(vaddr, Load, false)
}
