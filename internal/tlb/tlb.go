/*
 * r3000 - Translation Lookaside Buffer
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

// Package tlb implements the 64-entry fully-associative R3000 translation
// lookaside buffer: entries the MMU can probe, read, and write
// individually during address translation and the tlbp/tlbr/tlbwi/tlbwr
// CP0 operations.
package tlb

import "github.com/rcornwell/r3000/internal/trace"

// NumEntries is the number of TLB entries.
const NumEntries = 64

// Entry is a single TLB slot.
type Entry struct {
	VPN uint32 // Virtual page number, bits 31..12.
	ASID uint32 // 6-bit address space id.
	G   bool   // Global: ignore ASID on match.
	PFN uint32 // Physical frame number, bits 31..12.
	N   bool   // Non-cacheable.
	D   bool   // Dirty/writable.
	V   bool   // Valid.
}

// Result is the outcome of a successful lookup.
type Result struct {
	PFN       uint32
	Cacheable bool
}

// Outcome classifies a lookup.
type Outcome int

const (
	Hit Outcome = iota
	Miss
	Invalid
	Modified
)

// TLB is the 64-entry fully-associative table.
type TLB struct {
	entries [NumEntries]Entry
}

// New returns an empty TLB (all entries invalid).
func New() *TLB {
	return &TLB{}
}

const pageMask = 0xfff
const vpnMask = ^uint32(pageMask)

// Lookup translates vaddr for the given ASID and access kind. Ties (two
// entries matching the same VPN) are architecturally undefined; this
// implementation always takes the lowest-index match, so results are
// reproducible.
func (t *TLB) Lookup(vaddr, asid uint32, isWrite bool) (Result, Outcome) {
	vpn := vaddr & vpnMask
	for i := range t.entries {
		e := &t.entries[i]
		if e.VPN != vpn {
			continue
		}
		if !e.G && e.ASID != asid {
			continue
		}
		if !e.V {
			return Result{}, Invalid
		}
		if isWrite && !e.D {
			return Result{}, Modified
		}
		return Result{PFN: e.PFN, Cacheable: !e.N}, Hit
	}
	return Result{}, Miss
}

// Probe implements tlbp: return the index of the entry matching EntryHi
// (VPN + ASID, honoring G), or -1.
func (t *TLB) Probe(vpn, asid uint32) int {
	for i := range t.entries {
		e := &t.entries[i]
		if e.VPN != vpn {
			continue
		}
		if !e.G && e.ASID != asid {
			continue
		}
		return i
	}
	return -1
}

// ReadIndexed implements tlbr.
func (t *TLB) ReadIndexed(i int) Entry {
	return t.entries[i&(NumEntries-1)]
}

// WriteIndexed implements tlbwi.
func (t *TLB) WriteIndexed(i int, e Entry) {
	idx := i & (NumEntries - 1)
	t.entries[idx] = e
	trace.Tracef(trace.TLB, "tlbwi index=%d vpn=%#08x pfn=%#08x", idx, e.VPN, e.PFN)
}

// WriteRandom implements tlbwr: write to the entry indicated by the
// caller-supplied Random register value (entries 0..7 are wired and never
// targeted by Random; the CP0 component enforces that by construction of
// its Random wrap range).
func (t *TLB) WriteRandom(randomIndex int, e Entry) {
	t.entries[randomIndex&(NumEntries-1)] = e
}
