package machine

import (
	"encoding/binary"
	"testing"

	"github.com/rcornwell/r3000/internal/bus"
	"github.com/rcornwell/r3000/internal/cp0"
	"github.com/rcornwell/r3000/internal/master"
)

func rType(rs, rt, rd, shamt, funct uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

func iType(op, rs, rt, imm uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | (imm & 0xffff)
}

// romImage assembles words into a little-endian ROM byte image.
func romImage(words ...uint32) []byte {
	img := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(img[i*4:], w)
	}
	return img
}

// TestArithmeticThenUnhandledBreak runs a program to a break with no
// installed handler, which this driver treats as fatal (BEV stays set,
// the vector address has nothing mapped there), but only after the add
// has already committed.
func TestArithmeticThenUnhandledBreak(t *testing.T) {
	img := romImage(
		iType(0x09, 0, 8, 5),     // addiu $t0, $0, 5
		iType(0x09, 0, 9, 7),     // addiu $t1, $0, 7
		rType(8, 9, 10, 0, 0x20), // add $t2, $t0, $t1
		rType(0, 0, 0, 0, 0x0d),  // break
	)
	m, err := New(Config{ROMImage: img, Endian: bus.LittleEndian})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	code := m.Run()
	if code != 1 {
		t.Fatalf("exit code got %d, want 1 (fatal, unhandled break)", code)
	}
	if m.CPU.Reg(10) != 12 {
		t.Errorf("$t2 got %d, want 12", m.CPU.Reg(10))
	}
}

// TestOverflowDoesNotCommit checks that add's destination register keeps
// its prior value when the operation overflows.
func TestOverflowDoesNotCommit(t *testing.T) {
	img := romImage(
		iType(0x0f, 0, 2, 0x8000), // lui $v0, 0x8000
		rType(2, 2, 3, 0, 0x20),   // add $v1, $v0, $v0  (overflow)
		rType(0, 0, 0, 0, 0x0d),   // break
	)
	m, err := New(Config{ROMImage: img, Endian: bus.LittleEndian})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Run()
	if m.CPU.Reg(3) != 0 {
		t.Errorf("$v1 got %#x, want 0 (overflow must not commit)", m.CPU.Reg(3))
	}
	if m.CP0.Read(cp0.Cause)>>2&0x1f != cp0.ExcOvf {
		t.Errorf("Cause.ExcCode got %d, want Ovf", m.CP0.Read(cp0.Cause)>>2&0x1f)
	}
}

// TestHaltDeviceWrite checks that a store to the halt device's address
// stops the machine with a normal exit code.
func TestHaltDeviceWrite(t *testing.T) {
	img := romImage(
		iType(0x0f, 0, 8, 0xa101),                   // lui $t0, 0xa101 (kseg1 view of physical 0x0101xxxx)
		iType(0x0d, 8, 8, 0x0024),                    // ori $t0, $t0, 0x0024
		iType(0x2b, 8, 0, 0),                         // sw $0, 0($t0)
	)
	m, err := New(Config{ROMImage: img, Endian: bus.LittleEndian})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	code := m.Run()
	if code != 0 {
		t.Fatalf("exit code got %d, want 0 (normal halt)", code)
	}
	if !m.Halt.Halted {
		t.Error("halt device should have recorded the write")
	}
}

// TestDebugPacketsReadRegsAndMemory exercises the master.Packet request
// path the debug stub and monitor use: step once, then read a register and
// a memory location via the MMU's kernel-unchecked debug path. Packets are
// handed to handle directly (rather than through Master()+Run in a
// goroutine) so the sequence is deterministic.
func TestDebugPacketsReadRegsAndMemory(t *testing.T) {
	img := romImage(
		iType(0x09, 0, 8, 0x2a), // addiu $t0, $0, 42
	)
	m, err := New(Config{ROMImage: img, Endian: bus.LittleEndian})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	reply := make(chan master.Reply, 1)
	m.handle(master.Packet{Msg: master.Step, Reply: reply})
	r := <-reply
	if r.Stop.Reason != master.StopStep {
		t.Fatalf("stop reason got %v, want StopStep", r.Stop.Reason)
	}

	m.handle(master.Packet{Msg: master.ReadReg, Reg: 8, Reply: reply})
	r = <-reply
	if r.Value != 42 {
		t.Errorf("$t0 via debug read got %d, want 42", r.Value)
	}

	m.handle(master.Packet{Msg: master.WriteMem, Addr: 0x80000100, Size: bus.Word, Value: 0xdeadbeef, Reply: reply})
	if r = <-reply; r.Err != nil {
		t.Fatalf("WriteMem: %v", r.Err)
	}
	m.handle(master.Packet{Msg: master.ReadMem, Addr: 0x80000100, Size: bus.Word, Reply: reply})
	r = <-reply
	if r.Value != 0xdeadbeef {
		t.Errorf("ReadMem got %#x, want 0xdeadbeef", r.Value)
	}
}

// TestBreakpointStopsBeforeExecuting drives step directly (no Run
// goroutine, so there's no race on when the breakpoint gets armed): a
// breakpoint on the second instruction must stop before that instruction's
// write is visible.
func TestBreakpointStopsBeforeExecuting(t *testing.T) {
	img := romImage(
		iType(0x09, 0, 8, 1), // addiu $t0, $0, 1
		iType(0x09, 0, 9, 2), // addiu $t1, $0, 2
		iType(0x09, 0, 10, 3), // addiu $t2, $0, 3
	)
	m, err := New(Config{ROMImage: img, Endian: bus.LittleEndian})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	breakAddr := m.CPU.PC + 4 // the second instruction's address
	m.breakpoints[breakAddr] = struct{}{}
	m.running = true

	m.step() // executes the first addiu
	if !m.running {
		t.Fatal("should still be running after the first instruction")
	}
	if m.CPU.Reg(8) != 1 {
		t.Fatalf("$t0 got %d, want 1", m.CPU.Reg(8))
	}

	m.step() // PC is now the breakpoint address: must stop, not execute
	if m.running {
		t.Fatal("should have stopped at the breakpoint")
	}
	if m.lastStop.Reason != master.StopBreakpoint || m.lastStop.PC != breakAddr {
		t.Fatalf("expected breakpoint stop at %#x, got %+v", breakAddr, m.lastStop)
	}
	if m.CPU.Reg(9) != 0 {
		t.Errorf("$t1 got %d, want 0: the breakpointed instruction must not have executed", m.CPU.Reg(9))
	}
}
