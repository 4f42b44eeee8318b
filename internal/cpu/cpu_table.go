/*
 * r3000 - Dispatch table
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

// buildTable wires every decode.Op to its handler function.
func (c *CPU) buildTable() {
	t := &c.table
	for i := range t {
		t[i] = opReserved
	}

	t[decode.OpADD] = opADD
	t[decode.OpADDU] = opADDU
	t[decode.OpSUB] = opSUB
	t[decode.OpSUBU] = opSUBU
	t[decode.OpAND] = opAND
	t[decode.OpOR] = opOR
	t[decode.OpXOR] = opXOR
	t[decode.OpNOR] = opNOR
	t[decode.OpSLT] = opSLT
	t[decode.OpSLTU] = opSLTU
	t[decode.OpSLL] = opSLL
	t[decode.OpSRL] = opSRL
	t[decode.OpSRA] = opSRA
	t[decode.OpSLLV] = opSLLV
	t[decode.OpSRLV] = opSRLV
	t[decode.OpSRAV] = opSRAV
	t[decode.OpMULT] = opMULT
	t[decode.OpMULTU] = opMULTU
	t[decode.OpDIV] = opDIV
	t[decode.OpDIVU] = opDIVU
	t[decode.OpMFHI] = opMFHI
	t[decode.OpMFLO] = opMFLO
	t[decode.OpMTHI] = opMTHI
	t[decode.OpMTLO] = opMTLO
	t[decode.OpJR] = opJR
	t[decode.OpJALR] = opJALR
	t[decode.OpSYSCALL] = opSYSCALL
	t[decode.OpBREAK] = opBREAK

	t[decode.OpADDI] = opADDI
	t[decode.OpADDIU] = opADDIU
	t[decode.OpSLTI] = opSLTI
	t[decode.OpSLTIU] = opSLTIU
	t[decode.OpANDI] = opANDI
	t[decode.OpORI] = opORI
	t[decode.OpXORI] = opXORI
	t[decode.OpLUI] = opLUI

	t[decode.OpLB] = opLB
	t[decode.OpLBU] = opLBU
	t[decode.OpLH] = opLH
	t[decode.OpLHU] = opLHU
	t[decode.OpLW] = opLW
	t[decode.OpLWL] = opLWL
	t[decode.OpLWR] = opLWR
	t[decode.OpSB] = opSB
	t[decode.OpSH] = opSH
	t[decode.OpSW] = opSW
	t[decode.OpSWL] = opSWL
	t[decode.OpSWR] = opSWR

	t[decode.OpBEQ] = opBEQ
	t[decode.OpBNE] = opBNE
	t[decode.OpBLEZ] = opBLEZ
	t[decode.OpBGTZ] = opBGTZ
	t[decode.OpBLTZ] = opBLTZ
	t[decode.OpBGEZ] = opBGEZ
	t[decode.OpBLTZAL] = opBLTZAL
	t[decode.OpBGEZAL] = opBGEZAL

	t[decode.OpJ] = opJ
	t[decode.OpJAL] = opJAL

	t[decode.OpMFC0] = opMFC0
	t[decode.OpMTC0] = opMTC0
	t[decode.OpTLBR] = opTLBR
	t[decode.OpTLBWI] = opTLBWI
	t[decode.OpTLBWR] = opTLBWR
	t[decode.OpTLBP] = opTLBP
	t[decode.OpRFE] = opRFE

	t[decode.OpCOP1] = opCOP1
	t[decode.OpCOP2] = opCOP2
	t[decode.OpCOP3] = opCOP3
}
