/*
 * r3000 - Coprocessor 0 instructions, syscall/break, and reserved ops
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

package cpu

import (
	"github.com/rcornwell/r3000/internal/cp0"
	"github.com/rcornwell/r3000/internal/decode"
	"github.com/rcornwell/r3000/internal/tlb"
)

// cp0Guarded returns a CpU(0) fault when CP0 is accessed from user mode
// without Status.CU0 set.
func (c *CPU) cp0Guarded() *Fault {
	if c.userMode && !c.CP0.StatusCU0() {
		return &Fault{Code: cp0.ExcCpU, CE: 0, HasCE: true}
	}
	return nil
}

func opMFC0(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	if f := c.cp0Guarded(); f != nil {
		return faultResult(f)
	}
	return regWrite(inst.Rt, c.CP0.Read(int(inst.Rd)))
}

func opMTC0(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	if f := c.cp0Guarded(); f != nil {
		return faultResult(f)
	}
	c.CP0.Write(int(inst.Rd), c.Reg(inst.Rt))
	return execResult{}
}

func opTLBR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	if f := c.cp0Guarded(); f != nil {
		return faultResult(f)
	}
	index := int(c.CP0.Read(cp0.Index)>>8) & 0x3f
	e := c.MMU.TLB().ReadIndexed(index)
	c.CP0.Write(cp0.EntryHi, (e.VPN&0xfffff000)|(e.ASID&0x3f))
	c.CP0.Write(cp0.EntryLo, entryLoFromTLB(e))
	return execResult{}
}

func opTLBWI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	if f := c.cp0Guarded(); f != nil {
		return faultResult(f)
	}
	index := int(c.CP0.Read(cp0.Index)>>8) & 0x3f
	c.MMU.TLB().WriteIndexed(index, entryFromCP0(c.CP0))
	return execResult{}
}

func opTLBWR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	if f := c.cp0Guarded(); f != nil {
		return faultResult(f)
	}
	random := int(c.CP0.Read(cp0.Random))
	c.MMU.TLB().WriteRandom(random, entryFromCP0(c.CP0))
	return execResult{}
}

func opTLBP(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	if f := c.cp0Guarded(); f != nil {
		return faultResult(f)
	}
	hi := c.CP0.Read(cp0.EntryHi)
	index := c.MMU.TLB().Probe(hi&0xfffff000, hi&0x3f)
	if index < 0 {
		c.CP0.Write(cp0.Index, 1<<31)
	} else {
		c.CP0.Write(cp0.Index, uint32(index)<<8)
	}
	return execResult{}
}

func opRFE(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	if f := c.cp0Guarded(); f != nil {
		return faultResult(f)
	}
	c.CP0.ReturnFromException()
	return execResult{}
}

func opSYSCALL(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return faultResult(&Fault{Code: cp0.ExcSys})
}

func opBREAK(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return faultResult(&Fault{Code: cp0.ExcBp})
}

func opReserved(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return faultResult(&Fault{Code: cp0.ExcRI})
}

func opCOP1(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return faultResult(&Fault{Code: cp0.ExcCpU, CE: 1, HasCE: true})
}

func opCOP2(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return faultResult(&Fault{Code: cp0.ExcCpU, CE: 2, HasCE: true})
}

func opCOP3(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return faultResult(&Fault{Code: cp0.ExcCpU, CE: 3, HasCE: true})
}

// entryFromCP0 builds a TLB entry out of the current EntryHi/EntryLo
// register contents, for tlbwi/tlbwr.
func entryFromCP0(c *cp0.CP0) tlb.Entry {
	hi := c.Read(cp0.EntryHi)
	lo := c.Read(cp0.EntryLo)
	return tlb.Entry{
		VPN:  hi & 0xfffff000,
		ASID: hi & 0x3f,
		PFN:  lo & 0xfffff000,
		N:    lo&(1<<11) != 0,
		D:    lo&(1<<10) != 0,
		V:    lo&(1<<9) != 0,
		G:    lo&(1<<8) != 0,
	}
}

// entryLoFromTLB packs a TLB entry back into EntryLo register format, for
// tlbr.
func entryLoFromTLB(e tlb.Entry) uint32 {
	v := e.PFN & 0xfffff000
	if e.N {
		v |= 1 << 11
	}
	if e.D {
		v |= 1 << 10
	}
	if e.V {
		v |= 1 << 9
	}
	if e.G {
		v |= 1 << 8
	}
	return v
}
