/*
 * r3000 - Instruction decoder
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

// Package decode classifies a 32-bit MIPS I instruction word and extracts
// its fields into a form the interpreter can dispatch on directly.
package decode

// Op identifies the decoded operation. Reserved marks an unrecognized
// primary/secondary opcode; the interpreter turns that into a reserved
// instruction exception.
type Op int

const (
	Reserved Op = iota

	// Arithmetic/logical, register form.
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpMFHI
	OpMFLO
	OpMTHI
	OpMTLO
	OpJR
	OpJALR
	OpSYSCALL
	OpBREAK

	// Arithmetic/logical, immediate form.
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI

	// Loads/stores.
	OpLB
	OpLBU
	OpLH
	OpLHU
	OpLW
	OpLWL
	OpLWR
	OpSB
	OpSH
	OpSW
	OpSWL
	OpSWR

	// Branches.
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ
	OpBLTZ
	OpBGEZ
	OpBLTZAL
	OpBGEZAL

	// Jumps.
	OpJ
	OpJAL

	// Coprocessor 0.
	OpMFC0
	OpMTC0
	OpTLBR
	OpTLBWI
	OpTLBWR
	OpTLBP
	OpRFE

	// Any CP1/CP2/CP3 instruction (floating point and the other
	// coprocessors are unimplemented; they still decode cleanly so the
	// interpreter can raise CpU with the right CE).
	OpCOP1
	OpCOP2
	OpCOP3

	// NumOps bounds the Op enum; used to size dispatch tables.
	NumOps
)

// Form identifies the instruction's field layout.
type Form int

const (
	FormR Form = iota
	FormI
	FormJ
)

// Inst is a fully decoded instruction.
type Inst struct {
	Op      Op
	Form    Form
	Rs      uint8
	Rt      uint8
	Rd      uint8
	Shamt   uint8
	Funct   uint8
	Imm16   uint16 // Raw 16-bit immediate/offset field.
	Target26 uint32
}

// SignExtImm sign-extends Imm16 to 32 bits.
func (i Inst) SignExtImm() uint32 {
	return uint32(int32(int16(i.Imm16)))
}

// ZeroExtImm zero-extends Imm16 to 32 bits.
func (i Inst) ZeroExtImm() uint32 {
	return uint32(i.Imm16)
}

const (
	opSPECIAL = 0x00
	opREGIMM  = 0x01
	opJ       = 0x02
	opJAL     = 0x03
	opBEQ     = 0x04
	opBNE     = 0x05
	opBLEZ    = 0x06
	opBGTZ    = 0x07
	opADDI    = 0x08
	opADDIU   = 0x09
	opSLTI    = 0x0a
	opSLTIU   = 0x0b
	opANDI    = 0x0c
	opORI     = 0x0d
	opXORI    = 0x0e
	opLUI     = 0x0f
	opCOP0    = 0x10
	opCOP1    = 0x11
	opCOP2    = 0x12
	opCOP3    = 0x13
	opLB      = 0x20
	opLH      = 0x21
	opLWL     = 0x22
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opLWR     = 0x26
	opSB      = 0x28
	opSH      = 0x29
	opSWL     = 0x2a
	opSW      = 0x2b
	opSWR     = 0x2e
)

const (
	fnSLL     = 0x00
	fnSRL     = 0x02
	fnSRA     = 0x03
	fnSLLV    = 0x04
	fnSRLV    = 0x06
	fnSRAV    = 0x07
	fnJR      = 0x08
	fnJALR    = 0x09
	fnSYSCALL = 0x0c
	fnBREAK   = 0x0d
	fnMFHI    = 0x10
	fnMTHI    = 0x11
	fnMFLO    = 0x12
	fnMTLO    = 0x13
	fnMULT    = 0x18
	fnMULTU   = 0x19
	fnDIV     = 0x1a
	fnDIVU    = 0x1b
	fnADD     = 0x20
	fnADDU    = 0x21
	fnSUB     = 0x22
	fnSUBU    = 0x23
	fnAND     = 0x24
	fnOR      = 0x25
	fnXOR     = 0x26
	fnNOR     = 0x27
	fnSLT     = 0x2a
	fnSLTU    = 0x2b
)

// Decode classifies a raw instruction word into its operation and fields.
func Decode(word uint32) Inst {
	primary := uint8((word >> 26) & 0x3f)
	inst := Inst{
		Rs:       uint8((word >> 21) & 0x1f),
		Rt:       uint8((word >> 16) & 0x1f),
		Rd:       uint8((word >> 11) & 0x1f),
		Shamt:    uint8((word >> 6) & 0x1f),
		Funct:    uint8(word & 0x3f),
		Imm16:    uint16(word & 0xffff),
		Target26: word & 0x03ffffff,
	}

	switch primary {
	case opSPECIAL:
		inst.Form = FormR
		inst.Op = decodeSpecial(inst.Funct)
	case opREGIMM:
		inst.Form = FormI
		inst.Op = decodeRegimm(inst.Rt)
	case opJ:
		inst.Form = FormJ
		inst.Op = OpJ
	case opJAL:
		inst.Form = FormJ
		inst.Op = OpJAL
	case opBEQ:
		inst.Form, inst.Op = FormI, OpBEQ
	case opBNE:
		inst.Form, inst.Op = FormI, OpBNE
	case opBLEZ:
		inst.Form, inst.Op = FormI, OpBLEZ
	case opBGTZ:
		inst.Form, inst.Op = FormI, OpBGTZ
	case opADDI:
		inst.Form, inst.Op = FormI, OpADDI
	case opADDIU:
		inst.Form, inst.Op = FormI, OpADDIU
	case opSLTI:
		inst.Form, inst.Op = FormI, OpSLTI
	case opSLTIU:
		inst.Form, inst.Op = FormI, OpSLTIU
	case opANDI:
		inst.Form, inst.Op = FormI, OpANDI
	case opORI:
		inst.Form, inst.Op = FormI, OpORI
	case opXORI:
		inst.Form, inst.Op = FormI, OpXORI
	case opLUI:
		inst.Form, inst.Op = FormI, OpLUI
	case opCOP0:
		inst.Form = FormR
		inst.Op = decodeCop0(inst.Rs, inst.Funct)
	case opCOP1:
		inst.Form, inst.Op = FormR, OpCOP1
	case opCOP2:
		inst.Form, inst.Op = FormR, OpCOP2
	case opCOP3:
		inst.Form, inst.Op = FormR, OpCOP3
	case opLB:
		inst.Form, inst.Op = FormI, OpLB
	case opLH:
		inst.Form, inst.Op = FormI, OpLH
	case opLWL:
		inst.Form, inst.Op = FormI, OpLWL
	case opLW:
		inst.Form, inst.Op = FormI, OpLW
	case opLBU:
		inst.Form, inst.Op = FormI, OpLBU
	case opLHU:
		inst.Form, inst.Op = FormI, OpLHU
	case opLWR:
		inst.Form, inst.Op = FormI, OpLWR
	case opSB:
		inst.Form, inst.Op = FormI, OpSB
	case opSH:
		inst.Form, inst.Op = FormI, OpSH
	case opSWL:
		inst.Form, inst.Op = FormI, OpSWL
	case opSW:
		inst.Form, inst.Op = FormI, OpSW
	case opSWR:
		inst.Form, inst.Op = FormI, OpSWR
	default:
		inst.Op = Reserved
	}
	return inst
}

func decodeSpecial(funct uint8) Op {
	switch funct {
	case fnSLL:
		return OpSLL
	case fnSRL:
		return OpSRL
	case fnSRA:
		return OpSRA
	case fnSLLV:
		return OpSLLV
	case fnSRLV:
		return OpSRLV
	case fnSRAV:
		return OpSRAV
	case fnJR:
		return OpJR
	case fnJALR:
		return OpJALR
	case fnSYSCALL:
		return OpSYSCALL
	case fnBREAK:
		return OpBREAK
	case fnMFHI:
		return OpMFHI
	case fnMTHI:
		return OpMTHI
	case fnMFLO:
		return OpMFLO
	case fnMTLO:
		return OpMTLO
	case fnMULT:
		return OpMULT
	case fnMULTU:
		return OpMULTU
	case fnDIV:
		return OpDIV
	case fnDIVU:
		return OpDIVU
	case fnADD:
		return OpADD
	case fnADDU:
		return OpADDU
	case fnSUB:
		return OpSUB
	case fnSUBU:
		return OpSUBU
	case fnAND:
		return OpAND
	case fnOR:
		return OpOR
	case fnXOR:
		return OpXOR
	case fnNOR:
		return OpNOR
	case fnSLT:
		return OpSLT
	case fnSLTU:
		return OpSLTU
	default:
		return Reserved
	}
}

func decodeRegimm(rt uint8) Op {
	switch rt {
	case 0x00:
		return OpBLTZ
	case 0x01:
		return OpBGEZ
	case 0x10:
		return OpBLTZAL
	case 0x11:
		return OpBGEZAL
	default:
		return Reserved
	}
}

func decodeCop0(rs uint8, funct uint8) Op {
	switch rs {
	case 0x00:
		return OpMFC0
	case 0x04:
		return OpMTC0
	case 0x10:
		switch funct {
		case 0x01:
			return OpTLBR
		case 0x02:
			return OpTLBWI
		case 0x06:
			return OpTLBWR
		case 0x08:
			return OpTLBP
		case 0x10:
			return OpRFE
		default:
			return Reserved
		}
	default:
		return Reserved
	}
}
