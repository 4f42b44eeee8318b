/*
 * r3000 - Load and store instructions
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
	"github.com/rcornwell/r3000/internal/bus"
	"github.com/rcornwell/r3000/internal/decode"
	"github.com/rcornwell/r3000/internal/mmu"
)

func opLB(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	v, f := c.MMU.Read(addr, bus.Byte, mmu.Load, c.userMode)
	if f != nil {
		return faultResult(faultFromMMU(f))
	}
	return loadWrite(inst.Rt, uint32(int32(int8(v))))
}

func opLBU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	v, f := c.MMU.Read(addr, bus.Byte, mmu.Load, c.userMode)
	if f != nil {
		return faultResult(faultFromMMU(f))
	}
	return loadWrite(inst.Rt, v&0xff)
}

func opLH(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	v, f := c.MMU.Read(addr, bus.Half, mmu.Load, c.userMode)
	if f != nil {
		return faultResult(faultFromMMU(f))
	}
	return loadWrite(inst.Rt, uint32(int32(int16(v))))
}

func opLHU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	v, f := c.MMU.Read(addr, bus.Half, mmu.Load, c.userMode)
	if f != nil {
		return faultResult(faultFromMMU(f))
	}
	return loadWrite(inst.Rt, v&0xffff)
}

func opLW(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	v, f := c.MMU.Read(addr, bus.Word, mmu.Load, c.userMode)
	if f != nil {
		return faultResult(faultFromMMU(f))
	}
	return loadWrite(inst.Rt, v)
}

func opSB(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	if f := c.MMU.Write(addr, bus.Byte, c.Reg(inst.Rt)&0xff, c.userMode); f != nil {
		return faultResult(faultFromMMU(f))
	}
	return execResult{}
}

func opSH(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	if f := c.MMU.Write(addr, bus.Half, c.Reg(inst.Rt)&0xffff, c.userMode); f != nil {
		return faultResult(faultFromMMU(f))
	}
	return execResult{}
}

func opSW(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	if f := c.MMU.Write(addr, bus.Word, c.Reg(inst.Rt), c.userMode); f != nil {
		return faultResult(faultFromMMU(f))
	}
	return execResult{}
}

// unalignedOffset returns the byte lane (0..3) lwl/lwr/swl/swr use in
// their merge formulas. The formulas below are the standard little-endian
// ones (as implemented by every R3000 LE system, e.g. the PSX); on a
// big-endian machine the lane mirrors around the word, which is exactly
// what flipping the low two address bits produces.
func unalignedOffset(e bus.Endian, addr uint32) uint32 {
	off := addr & 3
	if e == bus.BigEndian {
		off = 3 - off
	}
	return off
}

// readAlignedAt loads the word containing addr without alignment
// checks (lwl/lwr/swl/swr address the containing word, not addr itself).
func (c *CPU) readAlignedAt(addr uint32, kind mmu.AccessKind) (uint32, *Fault) {
	v, f := c.MMU.Read(addr&^3, bus.Word, kind, c.userMode)
	if f != nil {
		return 0, faultFromMMU(f)
	}
	return v, nil
}

// opLWL and opLWR merge into rt's value via mergeBase rather than Reg:
// the standard unaligned-word idiom pairs them back to back on the same
// destination register, and real R3000s forward the first's result to
// the second despite the load-delay slot (see mergeBase).
func opLWL(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	word, f := c.readAlignedAt(addr, mmu.Load)
	if f != nil {
		return faultResult(f)
	}
	off := unalignedOffset(c.Endian, addr)
	shift := off * 8
	mask := uint32(0x00ffffff) >> shift
	rt := c.mergeBase(inst.Rt)
	return loadWrite(inst.Rt, (rt&mask)|(word<<(24-shift)))
}

func opLWR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	word, f := c.readAlignedAt(addr, mmu.Load)
	if f != nil {
		return faultResult(f)
	}
	off := unalignedOffset(c.Endian, addr)
	shift := off * 8
	mask := uint32(0xffffff00) << (24 - shift)
	rt := c.mergeBase(inst.Rt)
	return loadWrite(inst.Rt, (rt&mask)|(word>>shift))
}

func opSWL(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	word, f := c.readAlignedAt(addr, mmu.Store)
	if f != nil {
		return faultResult(f)
	}
	off := unalignedOffset(c.Endian, addr)
	shift := off * 8
	mask := uint32(0xffffff00) << shift
	rt := c.Reg(inst.Rt)
	newWord := (word & mask) | (rt >> (24 - shift))
	if mf := c.MMU.Write(addr&^3, bus.Word, newWord, c.userMode); mf != nil {
		return faultResult(faultFromMMU(mf))
	}
	return execResult{}
}

func opSWR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	addr := c.Reg(inst.Rs) + inst.SignExtImm()
	word, f := c.readAlignedAt(addr, mmu.Store)
	if f != nil {
		return faultResult(f)
	}
	off := unalignedOffset(c.Endian, addr)
	shift := off * 8
	mask := uint32(0x00ffffff) >> (24 - shift)
	rt := c.Reg(inst.Rt)
	newWord := (word & mask) | (rt << shift)
	if mf := c.MMU.Write(addr&^3, bus.Word, newWord, c.userMode); mf != nil {
		return faultResult(faultFromMMU(mf))
	}
	return execResult{}
}
