package tlb

import "testing"

func TestLookupMiss(t *testing.T) {
	tb := New()
	_, outcome := tb.Lookup(0x00010000, 0, false)
	if outcome != Miss {
		t.Errorf("empty TLB should miss, got %v", outcome)
	}
}

func TestWriteIndexedThenLookupHit(t *testing.T) {
	tb := New()
	tb.WriteIndexed(5, Entry{VPN: 0x00010000, PFN: 0x00020000, V: true, D: true, ASID: 3})
	res, outcome := tb.Lookup(0x00010abc, 3, false)
	if outcome != Hit {
		t.Fatalf("expected hit, got %v", outcome)
	}
	if res.PFN != 0x00020000 {
		t.Errorf("PFN got %#x, want 0x00020000", res.PFN)
	}
}

func TestLookupASIDMismatchMisses(t *testing.T) {
	tb := New()
	tb.WriteIndexed(0, Entry{VPN: 0x00010000, PFN: 0x00020000, V: true, D: true, ASID: 3})
	_, outcome := tb.Lookup(0x00010000, 4, false)
	if outcome != Miss {
		t.Errorf("ASID mismatch on non-global entry should miss, got %v", outcome)
	}
}

func TestGlobalEntryIgnoresASID(t *testing.T) {
	tb := New()
	tb.WriteIndexed(0, Entry{VPN: 0x00010000, PFN: 0x00020000, V: true, D: true, G: true, ASID: 3})
	_, outcome := tb.Lookup(0x00010000, 9, false)
	if outcome != Hit {
		t.Errorf("global entry should hit regardless of ASID, got %v", outcome)
	}
}

func TestInvalidEntryRaisesInvalid(t *testing.T) {
	tb := New()
	tb.WriteIndexed(0, Entry{VPN: 0x00010000, PFN: 0x00020000, V: false, ASID: 1})
	_, outcome := tb.Lookup(0x00010000, 1, false)
	if outcome != Invalid {
		t.Errorf("V=0 entry should be Invalid, got %v", outcome)
	}
}

func TestWriteWithoutDirtyRaisesModified(t *testing.T) {
	tb := New()
	tb.WriteIndexed(0, Entry{VPN: 0x00010000, PFN: 0x00020000, V: true, D: false, ASID: 1})
	_, outcome := tb.Lookup(0x00010000, 1, true)
	if outcome != Modified {
		t.Errorf("write to non-dirty entry should be Modified, got %v", outcome)
	}
}

func TestLowestIndexMatchWinsOnDuplicate(t *testing.T) {
	tb := New()
	tb.WriteIndexed(10, Entry{VPN: 0x00010000, PFN: 0x00020000, V: true, D: true, ASID: 1})
	tb.WriteIndexed(3, Entry{VPN: 0x00010000, PFN: 0x00030000, V: true, D: true, ASID: 1})
	res, _ := tb.Lookup(0x00010000, 1, false)
	if res.PFN != 0x00030000 {
		t.Errorf("lowest-index entry should win, got PFN %#x", res.PFN)
	}
}

func TestProbe(t *testing.T) {
	tb := New()
	tb.WriteIndexed(7, Entry{VPN: 0x00010000, ASID: 2})
	if idx := tb.Probe(0x00010000, 2); idx != 7 {
		t.Errorf("probe got %d, want 7", idx)
	}
	if idx := tb.Probe(0x00020000, 2); idx != -1 {
		t.Errorf("probe of absent entry should return -1, got %d", idx)
	}
}

func TestReadIndexedRoundTrip(t *testing.T) {
	tb := New()
	e := Entry{VPN: 0x00040000, PFN: 0x00050000, V: true, D: true, N: true, ASID: 5}
	tb.WriteIndexed(12, e)
	got := tb.ReadIndexed(12)
	if got != e {
		t.Errorf("round-tripped entry got %+v, want %+v", got, e)
	}
}
