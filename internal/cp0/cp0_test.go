package cp0

import "testing"

func TestResetState(t *testing.T) {
	c := New()
	if !c.StatusBEV() {
		t.Errorf("BEV should be set at reset")
	}
	if c.Read(Random) != 63 {
		t.Errorf("Random should reset to 63, got %d", c.Read(Random))
	}
}

func TestEnterExceptionNotInDelaySlot(t *testing.T) {
	c := New()
	c.Write(Status, 0) // clear BEV, exit reset state for this test
	vector := c.EnterException(ExcSys, 0x80001000, false, false)
	if c.Read(EPC) != 0x80001000 {
		t.Errorf("EPC got %#x, want 0x80001000", c.Read(EPC))
	}
	if vector != ramGenVector {
		t.Errorf("vector got %#x, want %#x", vector, ramGenVector)
	}
	cause := c.Read(Cause)
	if (cause&causeExcCodeMask)>>causeExcCodeShift != ExcSys {
		t.Errorf("ExcCode not set to Sys")
	}
	if cause&causeBD != 0 {
		t.Errorf("BD should be clear")
	}
}

func TestEnterExceptionInDelaySlot(t *testing.T) {
	c := New()
	c.Write(Status, 0)
	c.EnterException(ExcBp, 0x80001004, true, false)
	if c.Read(EPC) != 0x80001000 {
		t.Errorf("EPC should point at the branch, got %#x", c.Read(EPC))
	}
	if c.Read(Cause)&causeBD == 0 {
		t.Errorf("BD should be set")
	}
}

func TestEnterExceptionBootVectorWhenBEVSet(t *testing.T) {
	c := New() // BEV=1 at reset.
	vector := c.EnterException(ExcAdEL, 0x80000100, false, false)
	if vector != bootGenVector {
		t.Errorf("vector got %#x, want boot vector %#x", vector, bootGenVector)
	}
}

func TestEnterExceptionUTLBVector(t *testing.T) {
	c := New()
	c.Write(Status, 0)
	vector := c.EnterException(ExcTLBL, 0x80000100, false, true)
	if vector != ramUTLBVector {
		t.Errorf("vector got %#x, want UTLB vector %#x", vector, ramUTLBVector)
	}
}

func TestKUIEStackShiftsOnExceptionEntryAndRFE(t *testing.T) {
	c := New()
	// cur = kernel(0)/IE=1: IEc=1, KUc=0.
	c.Write(Status, statusIEc)
	c.EnterException(ExcSys, 0x80000000, false, false)
	status := c.Read(Status)
	if status&statusIEc != 0 || status&statusKUc != 0 {
		t.Errorf("exception entry should clear IEc/KUc, got %#x", status)
	}
	if status&statusIEp == 0 {
		t.Errorf("previous IE should now hold what was current")
	}
	c.ReturnFromException()
	status = c.Read(Status)
	if status&statusIEc == 0 {
		t.Errorf("rfe should restore IEc from IEp")
	}
}

func TestSetBadVAddrRecordsEntryHiAndContext(t *testing.T) {
	c := New()
	c.SetBadVAddr(0x00010123)
	if c.Read(BadVAddr) != 0x00010123 {
		t.Errorf("BadVAddr got %#x", c.Read(BadVAddr))
	}
	if c.Read(EntryHi)&0xfffff000 != 0x00010000 {
		t.Errorf("EntryHi VPN got %#x", c.Read(EntryHi)&0xfffff000)
	}
}

func TestTickRandomWrapsFrom8To63(t *testing.T) {
	c := New()
	c.Write(Random, 8)
	c.TickRandom()
	if c.Read(Random) != 63 {
		t.Errorf("Random should wrap 8 -> 63, got %d", c.Read(Random))
	}
	c.Write(Random, 20)
	c.TickRandom()
	if c.Read(Random) != 19 {
		t.Errorf("Random should decrement, got %d", c.Read(Random))
	}
}

func TestPendingInterrupts(t *testing.T) {
	c := New()
	c.Write(Status, statusIEc|(0x1<<statusIMShift))
	if c.PendingInterrupts() != 0 {
		t.Errorf("no interrupt pending yet")
	}
	c.SetIP(0, true)
	if c.PendingInterrupts() == 0 {
		t.Errorf("IP0 should be visible through IM0")
	}
}
