/*
 * r3000 - Remote debug protocol command dispatch
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

package debugstub

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rcornwell/r3000/internal/cp0"
	"github.com/rcornwell/r3000/internal/master"
)

// pollInterval is how often the session re-checks LastStop after issuing
// Run, while waiting for the CPU to hit a breakpoint, halt, or fault.
const pollInterval = 2 * time.Millisecond

// regOrder is the architectural register order a g/G packet transmits in:
// r0..r31, sr, lo, hi, bad, cause, pc. Each entry is either a GPR/PC/HI/LO
// Reg (masterReg >= 0) or a CP0 register number (cp0Reg >= 0).
type regSlot struct {
	masterReg int
	cp0Reg    int
}

var regOrder = buildRegOrder()

func buildRegOrder() []regSlot {
	order := make([]regSlot, 0, 38)
	for r := 0; r < 32; r++ {
		order = append(order, regSlot{masterReg: r, cp0Reg: -1})
	}
	order = append(order,
		regSlot{masterReg: -1, cp0Reg: cp0.Status},
		regSlot{masterReg: int(master.RegLO), cp0Reg: -1},
		regSlot{masterReg: int(master.RegHI), cp0Reg: -1},
		regSlot{masterReg: -1, cp0Reg: cp0.BadVAddr},
		regSlot{masterReg: -1, cp0Reg: cp0.Cause},
		regSlot{masterReg: int(master.RegPC), cp0Reg: -1},
	)
	return order
}

// dispatch decodes one request payload and returns the reply payload.
func (s *session) dispatch(payload string) string {
	if payload == "" {
		return ""
	}
	switch payload[0] {
	case '\x03':
		s.req(master.Packet{Msg: master.Halt})
		return "S05"
	case '?':
		return s.lastStopReply()
	case 'g':
		return s.readAllRegs()
	case 'G':
		return s.writeAllRegs(payload[1:])
	case 'm':
		return s.readMem(payload[1:])
	case 'M':
		return s.writeMem(payload[1:])
	case 'c':
		s.req(master.Packet{Msg: master.Run})
		return s.waitForStop()
	case 's':
		s.req(master.Packet{Msg: master.Step})
		return s.lastStopReply()
	case 'Z':
		return s.setBreak(payload[1:])
	case 'z':
		return s.clearBreak(payload[1:])
	default:
		return "" // unsupported: an empty reply tells GDB to fall back
	}
}

func (s *session) readAllRegs() string {
	var sb strings.Builder
	for _, slot := range regOrder {
		var v uint32
		if slot.cp0Reg >= 0 {
			v = s.req(master.Packet{Msg: master.ReadCP0, CP0: slot.cp0Reg}).Value
		} else {
			v = s.req(master.Packet{Msg: master.ReadReg, Reg: uint8(slot.masterReg)}).Value
		}
		fmt.Fprintf(&sb, "%08x", swapLE(v))
	}
	return sb.String()
}

func (s *session) writeAllRegs(hex string) string {
	for i, slot := range regOrder {
		start := i * 8
		if start+8 > len(hex) {
			break
		}
		v, err := strconv.ParseUint(hex[start:start+8], 16, 32)
		if err != nil {
			return "E01"
		}
		val := swapLE(uint32(v))
		if slot.cp0Reg >= 0 {
			s.req(master.Packet{Msg: master.WriteCP0, CP0: slot.cp0Reg, Value: val})
		} else {
			s.req(master.Packet{Msg: master.WriteReg, Reg: uint8(slot.masterReg), Value: val})
		}
	}
	return "OK"
}

// swapLE reverses a g/G packet's 32-bit little-endian register encoding:
// register values travel target-endian but GDB's wire format for them is
// always little-endian regardless of target byte order.
func swapLE(v uint32) uint32 {
	return v>>24&0xff | v>>8&0xff00 | v<<8&0xff0000 | v<<24&0xff000000
}

func (s *session) readMem(args string) string {
	addr, length, err := parseAddrLength(args)
	if err != nil {
		return "E01"
	}
	var sb strings.Builder
	for off := uint32(0); off < length; off++ {
		r := s.req(master.Packet{Msg: master.ReadMem, Addr: addr + off, Size: 1})
		if r.Err != nil {
			if sb.Len() == 0 {
				return "E01"
			}
			break
		}
		fmt.Fprintf(&sb, "%02x", r.Value&0xff)
	}
	return sb.String()
}

func (s *session) writeMem(args string) string {
	parts := strings.SplitN(args, ":", 2)
	if len(parts) != 2 {
		return "E01"
	}
	addr, length, err := parseAddrLength(parts[0])
	if err != nil {
		return "E01"
	}
	data := parts[1]
	for off := uint32(0); off < length; off++ {
		if int(off)*2+2 > len(data) {
			return "E01"
		}
		b, err := strconv.ParseUint(data[off*2:off*2+2], 16, 8)
		if err != nil {
			return "E01"
		}
		r := s.req(master.Packet{Msg: master.WriteMem, Addr: addr + off, Size: 1, Value: uint32(b)})
		if r.Err != nil {
			return "E02"
		}
	}
	return "OK"
}

func parseAddrLength(args string) (uint32, uint32, error) {
	parts := strings.SplitN(args, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed addr,length")
	}
	addr, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	length, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	return uint32(addr), uint32(length), nil
}

func (s *session) setBreak(args string) string {
	addr, ok := parseBreakArgs(args)
	if !ok {
		return "E01"
	}
	s.req(master.Packet{Msg: master.SetBreak, Addr: addr})
	return "OK"
}

func (s *session) clearBreak(args string) string {
	addr, ok := parseBreakArgs(args)
	if !ok {
		return "E01"
	}
	s.req(master.Packet{Msg: master.ClearBreak, Addr: addr})
	return "OK"
}

// parseBreakArgs reads a Z0/z0 packet's "0,addr,kind" tail (only software
// breakpoints, type 0, are supported).
func parseBreakArgs(args string) (uint32, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 || parts[0] != "0" {
		return 0, false
	}
	addr, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(addr), true
}

// waitForStop polls LastStop until execution actually pauses again, then
// formats that reason as a GDB stop-reply packet. Run only flips a flag
// in the driver and returns immediately, so without this poll the reply
// would race ahead of the CPU ever taking a step.
func (s *session) waitForStop() string {
	for {
		r := s.req(master.Packet{Msg: master.LastStop})
		if r.Stop.Reason != master.StopNone {
			return stopReply(r.Stop)
		}
		time.Sleep(pollInterval)
	}
}

// lastStopReply formats the driver's current stop state as a GDB 'S'/'T'
// stop-reply packet, for '?' and single-step, where the driver has
// already synchronously settled into its next stop by the time it replies.
func (s *session) lastStopReply() string {
	r := s.req(master.Packet{Msg: master.LastStop})
	return stopReply(r.Stop)
}

func stopReply(stop master.StopInfo) string {
	switch stop.Reason {
	case master.StopHalt:
		return "W00" // process exited, code 0
	case master.StopException:
		return fmt.Sprintf("S%02x", signalFor(stop.ExcCode))
	default:
		return "S05" // SIGTRAP: breakpoint or single-step
	}
}

// signalFor maps a MIPS exception code onto the closest POSIX signal
// number GDB expects in an S/T stop reply.
func signalFor(excCode int) int {
	switch excCode {
	case cp0.ExcAdEL, cp0.ExcAdES:
		return 11 // SIGSEGV
	case cp0.ExcOvf:
		return 8 // SIGFPE
	case cp0.ExcBp:
		return 5 // SIGTRAP
	case cp0.ExcRI, cp0.ExcCpU:
		return 4 // SIGILL
	case cp0.ExcIBE, cp0.ExcDBE:
		return 10 // SIGBUS
	default:
		return 5
	}
}
