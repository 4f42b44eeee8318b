package cpu

import (
	"testing"

	"github.com/rcornwell/r3000/internal/bus"
	"github.com/rcornwell/r3000/internal/cp0"
	"github.com/rcornwell/r3000/internal/mmu"
	"github.com/rcornwell/r3000/internal/tlb"
)

// newTestCPU builds a CPU over a flat little-endian RAM mapped at physical
// 0, with a global TLB entry mapping virtual page 0 onto physical page 0
// and PC forced to 0 instead of the boot ROM vector, so tests can place
// code and data at address 0 and run it in either privilege mode.
func newTestCPU(t *testing.T) (*CPU, *bus.Bus) {
	t.Helper()
	b := bus.New()
	ram := bus.NewRAM("ram", 0x10000, bus.LittleEndian)
	if err := b.Map(0, 0x10000, ram); err != nil {
		t.Fatalf("map ram: %v", err)
	}
	c0 := cp0.New()
	tb := tlb.New()
	tb.WriteIndexed(0, tlb.Entry{VPN: 0, PFN: 0, V: true, D: true, G: true})
	m := mmu.New(c0, tb, b)
	cpu := New(c0, m, bus.LittleEndian)
	cpu.PC = 0
	cpu.nPC = 4
	return cpu, b
}

func store(t *testing.T, b *bus.Bus, addr uint32, word uint32) {
	t.Helper()
	if err := b.Write(addr, bus.Word, word); err != nil {
		t.Fatalf("store %#x: %v", addr, err)
	}
}

// rType assembles an R-format instruction word.
func rType(rs, rt, rd, shamt, funct uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

// iType assembles an I-format instruction word.
func iType(op, rs, rt, imm uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | (imm & 0xffff)
}

func TestStepADDIAndADD(t *testing.T) {
	cpu, b := newTestCPU(t)
	store(t, b, 0, iType(0x09, 0, 8, 5))      // addiu $t0, $0, 5
	store(t, b, 4, iType(0x09, 0, 9, 7))      // addiu $t1, $0, 7
	store(t, b, 8, rType(8, 9, 10, 0, 0x20))  // add $t2, $t0, $t1
	for i := 0; i < 3; i++ {
		if f := cpu.Step(); f != nil {
			t.Fatalf("step %d faulted: %+v", i, f)
		}
	}
	if cpu.Reg(10) != 12 {
		t.Errorf("$t2 got %d, want 12", cpu.Reg(10))
	}
}

func TestLoadDelaySlotHidesValueForOneInstruction(t *testing.T) {
	cpu, b := newTestCPU(t)
	store(t, b, 0x100, 0x42)
	store(t, b, 0, iType(0x09, 0, 8, 0x100))  // addiu $t0, $0, 0x100
	store(t, b, 4, iType(0x23, 8, 9, 0))       // lw $t1, 0($t0)
	store(t, b, 8, iType(0x09, 9, 10, 0))      // addiu $t2, $t1, 0  (immediately after load)
	store(t, b, 12, iType(0x09, 9, 11, 0))     // addiu $t3, $t1, 0  (one instruction later)

	for i := 0; i < 3; i++ {
		if f := cpu.Step(); f != nil {
			t.Fatalf("step %d faulted: %+v", i, f)
		}
	}
	if cpu.Reg(10) != 0 {
		t.Errorf("$t2 got %#x, want 0: immediately-following instruction must not see the load", cpu.Reg(10))
	}
	if f := cpu.Step(); f != nil {
		t.Fatalf("final step faulted: %+v", f)
	}
	if cpu.Reg(11) != 0x42 {
		t.Errorf("$t3 got %#x, want 0x42: the instruction after that must see it", cpu.Reg(11))
	}
}

func TestBranchDelaySlotExecutesBeforeTarget(t *testing.T) {
	cpu, b := newTestCPU(t)
	// beq $0, $0, 2        (branch to PC+4+2*4 = PC+12)
	store(t, b, 0, iType(0x04, 0, 0, 2))
	// addiu $t0, $0, 1     (delay slot: must still execute)
	store(t, b, 4, iType(0x09, 0, 8, 1))
	// addiu $t0, $0, 2     (skipped by the branch)
	store(t, b, 8, iType(0x09, 0, 8, 2))
	// addiu $t1, $0, 3     (branch target)
	store(t, b, 12, iType(0x09, 0, 9, 3))

	if f := cpu.Step(); f != nil { // beq
		t.Fatalf("beq faulted: %+v", f)
	}
	if cpu.PC != 4 {
		t.Fatalf("PC after branch should be delay slot 4, got %#x", cpu.PC)
	}
	if f := cpu.Step(); f != nil { // delay slot
		t.Fatalf("delay slot faulted: %+v", f)
	}
	if cpu.Reg(8) != 1 {
		t.Errorf("delay slot should have executed, $t0=%d", cpu.Reg(8))
	}
	if cpu.PC != 12 {
		t.Fatalf("PC should be branch target 12, got %#x", cpu.PC)
	}
	if f := cpu.Step(); f != nil {
		t.Fatalf("target faulted: %+v", f)
	}
	if cpu.Reg(9) != 3 {
		t.Errorf("branch target instruction should have executed, $t1=%d", cpu.Reg(9))
	}
}

func TestAddOverflowTrapsOvf(t *testing.T) {
	cpu, b := newTestCPU(t)
	cpu.SetReg(8, 0x7fffffff)
	cpu.SetReg(9, 1)
	store(t, b, 0, rType(8, 9, 10, 0, 0x20)) // add $t2, $t0, $t1
	cpu.PC, cpu.nPC = 0, 4
	f := cpu.Step()
	if f == nil || f.Code != cp0.ExcOvf {
		t.Fatalf("expected Ovf fault, got %+v", f)
	}
}

func TestDivideByZeroConvention(t *testing.T) {
	cpu, b := newTestCPU(t)
	cpu.SetReg(8, 10)
	cpu.SetReg(9, 0)
	store(t, b, 0, rType(8, 9, 0, 0, 0x1a)) // div $t0, $t1
	cpu.PC, cpu.nPC = 0, 4
	if f := cpu.Step(); f != nil {
		t.Fatalf("div by zero should not trap, got %+v", f)
	}
	hi, lo := cpu.HiLo()
	if lo != 0xffffffff || hi != 10 {
		t.Errorf("div by zero got lo=%#x hi=%#x, want lo=0xffffffff hi=10", lo, hi)
	}
}

func TestUnalignedLoadStoreRoundTrip(t *testing.T) {
	cpu, b := newTestCPU(t)
	store(t, b, 0x100, 0x11223344)
	cpu.SetReg(8, 0x100) // base of the aligned word; lwl/lwr address its two ends
	store(t, b, 0, iType(0x22, 8, 9, 3)) // lwl $t1, 3($t0)  (little-endian: the word's high end)
	store(t, b, 4, iType(0x26, 8, 9, 0)) // lwr $t1, 0($t0)  (little-endian: the word's low end)
	cpu.PC, cpu.nPC = 0, 4
	if f := cpu.Step(); f != nil {
		t.Fatalf("lwl faulted: %+v", f)
	}
	if f := cpu.Step(); f != nil {
		t.Fatalf("lwr faulted: %+v", f)
	}
	// lwr is itself a load: its result sits in the pending-load slot until
	// the following instruction commits it, so run one more step before
	// checking $t1.
	store(t, b, 8, iType(0x09, 0, 0, 0)) // addiu $0, $0, 0
	if f := cpu.Step(); f != nil {
		t.Fatalf("commit step faulted: %+v", f)
	}
	if cpu.Reg(9) != 0x11223344 {
		t.Errorf("lwl+lwr(base..base+3) got %#x, want 0x11223344", cpu.Reg(9))
	}
}

func TestUserModeCP0AccessFaultsCpU(t *testing.T) {
	cpu, b := newTestCPU(t)
	cpu.CP0.Write(cp0.Status, 1<<1) // KUc=1, user mode, CU0=0
	store(t, b, 0, uint32(0x10)<<26) // mfc0 $0, $0 via COP0 rs=0
	cpu.PC, cpu.nPC = 0, 4
	f := cpu.Step()
	if f == nil || f.Code != cp0.ExcCpU {
		t.Fatalf("expected CpU fault, got %+v", f)
	}
}

func TestReservedOpcodeFaultsRI(t *testing.T) {
	cpu, b := newTestCPU(t)
	store(t, b, 0, uint32(0x3f)<<26)
	cpu.PC, cpu.nPC = 0, 4
	f := cpu.Step()
	if f == nil || f.Code != cp0.ExcRI {
		t.Fatalf("expected RI fault, got %+v", f)
	}
}

func TestSyscallEntersExceptionWithBDClear(t *testing.T) {
	cpu, b := newTestCPU(t)
	store(t, b, 0, rType(0, 0, 0, 0, 0x0c)) // syscall
	cpu.PC, cpu.nPC = 0, 4
	f := cpu.Step()
	if f == nil || f.Code != cp0.ExcSys {
		t.Fatalf("expected Sys fault, got %+v", f)
	}
	if cpu.CP0.Read(cp0.EPC) != 0 {
		t.Errorf("EPC got %#x, want 0", cpu.CP0.Read(cp0.EPC))
	}
	if cpu.CP0.Read(cp0.Cause)&(1<<31) != 0 {
		t.Errorf("Cause.BD set, want clear for a syscall outside a delay slot")
	}
}
