/*
 * r3000 - Branch and jump instructions
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

import "github.com/rcornwell/r3000/internal/decode"

// branchTarget computes a PC-relative branch target: npc is the address
// of the delay-slot instruction, which a taken branch's target is formed
// relative to (not pc), per the MIPS I ISA.
func branchTarget(npc uint32, inst decode.Inst) uint32 {
	return npc + (inst.SignExtImm() << 2)
}

func opBEQ(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	taken := c.Reg(inst.Rs) == c.Reg(inst.Rt)
	return branchResult(taken, branchTarget(npc, inst))
}

func opBNE(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	taken := c.Reg(inst.Rs) != c.Reg(inst.Rt)
	return branchResult(taken, branchTarget(npc, inst))
}

func opBLEZ(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	taken := int32(c.Reg(inst.Rs)) <= 0
	return branchResult(taken, branchTarget(npc, inst))
}

func opBGTZ(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	taken := int32(c.Reg(inst.Rs)) > 0
	return branchResult(taken, branchTarget(npc, inst))
}

func opBLTZ(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	taken := int32(c.Reg(inst.Rs)) < 0
	return branchResult(taken, branchTarget(npc, inst))
}

func opBGEZ(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	taken := int32(c.Reg(inst.Rs)) >= 0
	return branchResult(taken, branchTarget(npc, inst))
}

// linkAndBranch returns an execResult carrying both a regular register
// write (the link) and a branch decision. Step commits a stale
// pendingLoad before applying this result's write, so the link always
// wins over a same-register load staged by the previous instruction.
func linkAndBranch(link uint8, linkVal uint32, taken bool, target uint32) execResult {
	return execResult{
		hasWrite: true, writeReg: link, writeVal: linkVal,
		branchTaken: taken, branchTarget: target,
	}
}

// opBLTZAL/opBGEZAL link $31 unconditionally (even when not taken),
// matching the MIPS I architecture definition.
func opBLTZAL(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	taken := int32(c.Reg(inst.Rs)) < 0
	return linkAndBranch(31, npc+4, taken, branchTarget(npc, inst))
}

func opBGEZAL(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	taken := int32(c.Reg(inst.Rs)) >= 0
	return linkAndBranch(31, npc+4, taken, branchTarget(npc, inst))
}

func opJ(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	target := (npc & 0xf0000000) | (inst.Target26 << 2)
	return branchResult(true, target)
}

func opJAL(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	target := (npc & 0xf0000000) | (inst.Target26 << 2)
	return linkAndBranch(31, npc+4, true, target)
}

func opJR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	return branchResult(true, c.Reg(inst.Rs))
}

func opJALR(c *CPU, inst decode.Inst, pc, npc uint32) execResult {
	target := c.Reg(inst.Rs)
	rd := inst.Rd
	if rd == 0 {
		rd = 31
	}
	return linkAndBranch(rd, npc+4, true, target)
}
