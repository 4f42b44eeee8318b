package mmu

import (
	"testing"

	"github.com/rcornwell/r3000/internal/bus"
	"github.com/rcornwell/r3000/internal/cp0"
	"github.com/rcornwell/r3000/internal/tlb"
)

func newTestMMU(t *testing.T) (*MMU, *bus.Bus, *tlb.TLB, *cp0.CP0) {
	t.Helper()
	b := bus.New()
	if err := b.Map(0, 0x10000, bus.NewRAM("ram", 0x10000, bus.LittleEndian)); err != nil {
		t.Fatalf("map ram: %v", err)
	}
	c := cp0.New()
	tb := tlb.New()
	return New(c, tb, b), b, tb, c
}

func TestKseg0DirectMapped(t *testing.T) {
	m, _, _, _ := newTestMMU(t)
	if err := m.Write(0x80000004, bus.Word, 0xcafef00d, false); err != nil {
		t.Fatalf("kseg0 write faulted: %v", err)
	}
	v, err := m.Read(0x80000004, bus.Word, Load, false)
	if err != nil || v != 0xcafef00d {
		t.Errorf("kseg0 read got %#x err=%v", v, err)
	}
}

func TestKseg0UserModeFaults(t *testing.T) {
	m, _, _, _ := newTestMMU(t)
	_, fault := m.Read(0x80000000, bus.Word, Load, true)
	if fault == nil || fault.Code != cp0.ExcAdEL {
		t.Errorf("user-mode kseg0 access should raise AdEL, got %+v", fault)
	}
}

func TestMisalignedWordFaultsAdEL(t *testing.T) {
	m, _, _, _ := newTestMMU(t)
	_, fault := m.Read(0x80000001, bus.Word, Load, false)
	if fault == nil || fault.Code != cp0.ExcAdEL {
		t.Errorf("misaligned load should raise AdEL, got %+v", fault)
	}
}

func TestMisalignedStoreFaultsAdES(t *testing.T) {
	m, _, _, _ := newTestMMU(t)
	fault := m.Write(0x80000002, bus.Word, 1, false)
	if fault == nil || fault.Code != cp0.ExcAdES {
		t.Errorf("misaligned store should raise AdES, got %+v", fault)
	}
}

func TestKusegTLBMissRecordsBadVAddr(t *testing.T) {
	m, _, _, c := newTestMMU(t)
	_, fault := m.Read(0x00010000, bus.Word, Load, true)
	if fault == nil || fault.Code != cp0.ExcTLBL || !fault.UTLBRefill {
		t.Fatalf("expected UTLB refill TLBL, got %+v", fault)
	}
	if c.Read(cp0.BadVAddr) != 0x00010000 {
		t.Errorf("BadVAddr got %#x", c.Read(cp0.BadVAddr))
	}
}

func TestKusegTLBHitTranslatesToPhysical(t *testing.T) {
	m, b, tb, _ := newTestMMU(t)
	if err := b.Map(0x00020000, 0x1000, bus.NewRAM("ram2", 0x1000, bus.LittleEndian)); err != nil {
		t.Fatalf("map second range: %v", err)
	}
	tb.WriteIndexed(5, tlb.Entry{VPN: 0x00010000, PFN: 0x00020000, V: true, D: true})
	if err := m.Write(0x00010000, bus.Word, 0x11223344, true); err != nil {
		t.Fatalf("write via tlb faulted: %v", err)
	}
	v, err := m.Read(0x00010000, bus.Word, Load, true)
	if err != nil || v != 0x11223344 {
		t.Errorf("read via tlb got %#x err=%v", v, err)
	}
}

func TestBusErrorBecomesIBEOnFetch(t *testing.T) {
	m, _, _, _ := newTestMMU(t)
	_, fault := m.Read(0x9ffffffc, bus.Word, Fetch, false)
	if fault == nil || fault.Code != cp0.ExcIBE {
		t.Errorf("unmapped fetch should raise IBE, got %+v", fault)
	}
}

func TestBusErrorBecomesDBEOnLoad(t *testing.T) {
	m, _, _, _ := newTestMMU(t)
	_, fault := m.Read(0x9ffffffc, bus.Word, Load, false)
	if fault == nil || fault.Code != cp0.ExcDBE {
		t.Errorf("unmapped load should raise DBE, got %+v", fault)
	}
}
