/*
 * r3000 - Driver/debug-stub/monitor signaling
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

// Package master defines the Packet the debug stub and the local monitor
// use to ask the machine driver's polling loop to do something between
// instructions: one Msg field plus whichever payload fields that Msg
// needs.
package master

// MessageType identifies what a Packet is asking the driver to do.
type MessageType int

const (
	// Run resumes free execution until a stop condition.
	Run MessageType = iota
	// Halt pauses execution at the next instruction boundary.
	Halt
	// Step executes exactly one instruction, then reports a stop.
	Step
	// ReadReg/WriteReg access a GPR (0..31), PC, HI or LO (see Reg encoding below).
	ReadReg
	WriteReg
	// ReadCP0/WriteCP0 access a CP0 register by number.
	ReadCP0
	WriteCP0
	// ReadMem/WriteMem access guest memory via the MMU in kernel-unchecked
	// mode.
	ReadMem
	WriteMem
	// SetBreak/ClearBreak manage the software-breakpoint side table.
	SetBreak
	ClearBreak
	// LastStop reports the reason execution most recently paused.
	LastStop
)

// Reg encodes which register ReadReg/WriteReg addresses: 0..31 are GPRs,
// then PC, HI, LO. This numbering is not the g/G packet's transmit order;
// the debug stub's regOrder maps between the two.
const (
	RegPC uint8 = 32 + iota
	RegHI
	RegLO
)

// StopReason explains why the driver most recently paused the CPU.
type StopReason int

const (
	StopNone StopReason = iota
	StopBreakpoint
	StopStep
	StopHalt
	StopException
)

// StopInfo is the driver's answer to a LastStop request, or the unsolicited
// state a Run/Step/continue settles into.
type StopInfo struct {
	PC        uint32
	Reason    StopReason
	ExcCode   int
	HaltCause string
}

// Packet is one request from the debug stub or monitor to the machine
// driver's polling loop. Reply is non-nil for anything that expects an
// answer (reads, Step, LastStop); the driver always sends exactly one
// Reply and never blocks waiting for the caller to receive it beyond the
// single buffered slot the caller provides.
type Packet struct {
	Msg MessageType

	Reg   uint8  // ReadReg/WriteReg target
	CP0   int    // ReadCP0/WriteCP0 register number
	Addr  uint32 // ReadMem/WriteMem/SetBreak/ClearBreak virtual address
	Size  int    // ReadMem/WriteMem access width in bytes (1/2/4)
	Value uint32 // WriteReg/WriteCP0/WriteMem payload

	Reply chan Reply
}

// Reply is the driver's answer to a Packet.
type Reply struct {
	Value uint32
	Err   error
	Stop  StopInfo
}
