/*
 * r3000 - Arithmetic, logical, and shift instructions
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
)

// opADD is signed 32-bit add, trapping to Ovf on signed overflow.
func opADD(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	a, b := int32(c.Reg(inst.Rs)), int32(c.Reg(inst.Rt))
	sum := a + b
	if ((a >= 0) == (b >= 0)) && ((sum >= 0) != (a >= 0)) {
		return faultResult(&Fault{Code: cp0.ExcOvf})
	}
	return regWrite(inst.Rd, uint32(sum))
}

func opADDU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rs)+c.Reg(inst.Rt))
}

func opSUB(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	a, b := int32(c.Reg(inst.Rs)), int32(c.Reg(inst.Rt))
	diff := a - b
	if ((a >= 0) != (b >= 0)) && ((diff >= 0) != (a >= 0)) {
		return faultResult(&Fault{Code: cp0.ExcOvf})
	}
	return regWrite(inst.Rd, uint32(diff))
}

func opSUBU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rs)-c.Reg(inst.Rt))
}

func opAND(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rs)&c.Reg(inst.Rt))
}

func opOR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rs)|c.Reg(inst.Rt))
}

func opXOR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rs)^c.Reg(inst.Rt))
}

func opNOR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, ^(c.Reg(inst.Rs) | c.Reg(inst.Rt)))
}

func opSLT(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	v := uint32(0)
	if int32(c.Reg(inst.Rs)) < int32(c.Reg(inst.Rt)) {
		v = 1
	}
	return regWrite(inst.Rd, v)
}

func opSLTU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	v := uint32(0)
	if c.Reg(inst.Rs) < c.Reg(inst.Rt) {
		v = 1
	}
	return regWrite(inst.Rd, v)
}

func opSLL(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rt)<<inst.Shamt)
}

func opSRL(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rt)>>inst.Shamt)
}

func opSRA(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, uint32(int32(c.Reg(inst.Rt))>>inst.Shamt))
}

func opSLLV(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rt)<<(c.Reg(inst.Rs)&0x1f))
}

func opSRLV(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.Reg(inst.Rt)>>(c.Reg(inst.Rs)&0x1f))
}

func opSRAV(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, uint32(int32(c.Reg(inst.Rt))>>(c.Reg(inst.Rs)&0x1f)))
}

// opMULT/opMULTU/opDIV/opDIVU write HI/LO directly: neither register is
// subject to the load-delay hazard, so there is nothing to stage.

func opMULT(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	product := int64(int32(c.Reg(inst.Rs))) * int64(int32(c.Reg(inst.Rt)))
	c.lo = uint32(product)
	c.hi = uint32(product >> 32)
	return execResult{}
}

func opMULTU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	product := uint64(c.Reg(inst.Rs)) * uint64(c.Reg(inst.Rt))
	c.lo = uint32(product)
	c.hi = uint32(product >> 32)
	return execResult{}
}

// opDIV/opDIVU follow the divide-by-zero convention documented in
// DESIGN.md: LO is forced to all-ones and HI to the dividend, since the
// architecture leaves the result unspecified and no guest code may rely
// on it.
func opDIV(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	n, d := int32(c.Reg(inst.Rs)), int32(c.Reg(inst.Rt))
	if d == 0 {
		c.lo = 0xffffffff
		c.hi = uint32(n)
		return execResult{}
	}
	if n == -0x80000000 && d == -1 {
		// Overflow case: quotient doesn't fit in 32 bits; MIPS I leaves
		// this unspecified too. No trap: LO gets INT_MIN and HI gets 0.
		c.lo = uint32(n)
		c.hi = 0
		return execResult{}
	}
	c.lo = uint32(n / d)
	c.hi = uint32(n % d)
	return execResult{}
}

func opDIVU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	n, d := c.Reg(inst.Rs), c.Reg(inst.Rt)
	if d == 0 {
		c.lo = 0xffffffff
		c.hi = n
		return execResult{}
	}
	c.lo = n / d
	c.hi = n % d
	return execResult{}
}

func opMFHI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.hi)
}

func opMFLO(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rd, c.lo)
}

func opMTHI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	c.hi = c.Reg(inst.Rs)
	return execResult{}
}

func opMTLO(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	c.lo = c.Reg(inst.Rs)
	return execResult{}
}

func opADDI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	a, b := int32(c.Reg(inst.Rs)), int32(inst.SignExtImm())
	sum := a + b
	if ((a >= 0) == (b >= 0)) && ((sum >= 0) != (a >= 0)) {
		return faultResult(&Fault{Code: cp0.ExcOvf})
	}
	return regWrite(inst.Rt, uint32(sum))
}

func opADDIU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rt, c.Reg(inst.Rs)+inst.SignExtImm())
}

func opSLTI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	v := uint32(0)
	if int32(c.Reg(inst.Rs)) < int32(inst.SignExtImm()) {
		v = 1
	}
	return regWrite(inst.Rt, v)
}

func opSLTIU(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	v := uint32(0)
	if c.Reg(inst.Rs) < inst.SignExtImm() {
		v = 1
	}
	return regWrite(inst.Rt, v)
}

func opANDI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rt, c.Reg(inst.Rs)&inst.ZeroExtImm())
}

func opORI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rt, c.Reg(inst.Rs)|inst.ZeroExtImm())
}

func opXORI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rt, c.Reg(inst.Rs)^inst.ZeroExtImm())
}

func opLUI(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return regWrite(inst.Rt, inst.ZeroExtImm()<<16)
}
