package bus

import "testing"

func TestRAMAlignedAccess(t *testing.T) {
	r := NewRAM("ram", 16, LittleEndian)
	if !r.Write(0, Word, 0x01020304) {
		t.Fatalf("write failed")
	}
	v, ok := r.Read(0, Word)
	if !ok || v != 0x01020304 {
		t.Errorf("got %#x ok=%v, want 0x01020304", v, ok)
	}
	b, ok := r.Read(0, Byte)
	if !ok || b != 0x04 {
		t.Errorf("little-endian low byte got %#x, want 0x04", b)
	}
}

func TestRAMBigEndianByteOrder(t *testing.T) {
	r := NewRAM("ram", 16, BigEndian)
	r.Write(0, Word, 0x01020304)
	b, _ := r.Read(0, Byte)
	if b != 0x01 {
		t.Errorf("big-endian low-address byte got %#x, want 0x01", b)
	}
}

func TestRAMOutOfRange(t *testing.T) {
	r := NewRAM("ram", 4, LittleEndian)
	if r.Write(4, Word, 1) {
		t.Errorf("write past end should fail")
	}
	if _, ok := r.Read(1, Word); ok {
		t.Errorf("read crossing end should fail")
	}
}

func TestROMRejectsWrites(t *testing.T) {
	r := NewROM("rom", []byte{1, 2, 3, 4}, BigEndian)
	if r.Write(0, Byte, 9) {
		t.Errorf("ROM write should fail")
	}
	v, ok := r.Read(0, Word)
	if !ok || v != 0x01020304 {
		t.Errorf("ROM read got %#x ok=%v", v, ok)
	}
}

func TestBusOverlapRejected(t *testing.T) {
	b := New()
	if err := b.Map(0, 0x1000, NewRAM("ram", 0x1000, LittleEndian)); err != nil {
		t.Fatalf("first map failed: %v", err)
	}
	if err := b.Map(0x800, 0x100, NewRAM("ram2", 0x100, LittleEndian)); err == nil {
		t.Errorf("overlapping map should fail")
	}
}

func TestBusRoutesToOwningDevice(t *testing.T) {
	b := New()
	ram := NewRAM("ram", 0x1000, LittleEndian)
	rom := NewROM("rom", make([]byte, 0x100), LittleEndian)
	if err := b.Map(0, 0x1000, ram); err != nil {
		t.Fatalf("map ram: %v", err)
	}
	if err := b.Map(0x1fc00000, 0x100, rom); err != nil {
		t.Fatalf("map rom: %v", err)
	}

	if err := b.Write(4, Word, 0xdeadbeef); err != nil {
		t.Fatalf("write to ram: %v", err)
	}
	v, err := b.Read(4, Word)
	if err != nil || v != 0xdeadbeef {
		t.Errorf("read back got %#x err=%v", v, err)
	}

	if err := b.Write(0x1fc00000, Byte, 1); err == nil {
		t.Errorf("write to rom should bus-error")
	}
}

func TestBusUnmappedIsBusError(t *testing.T) {
	b := New()
	if err := b.Map(0, 0x1000, NewRAM("ram", 0x1000, LittleEndian)); err != nil {
		t.Fatalf("map: %v", err)
	}
	if _, err := b.Read(0x2000, Word); err == nil {
		t.Errorf("read of unmapped address should bus-error")
	}
}

func TestBusAccessCrossingRangeEndIsBusError(t *testing.T) {
	b := New()
	if err := b.Map(0, 4, NewRAM("ram", 4, LittleEndian)); err != nil {
		t.Fatalf("map: %v", err)
	}
	if _, err := b.Read(2, Word); err == nil {
		t.Errorf("read crossing range end should bus-error")
	}
}

func TestHaltDeviceFiresCallback(t *testing.T) {
	fired := false
	h := NewHaltDevice("halt", func(cause string) { fired = true })
	h.Write(0, Word, 1)
	if !fired || !h.Halted {
		t.Errorf("halt device write should signal halt")
	}
}

func TestTraceDeviceCapturesWrites(t *testing.T) {
	tr := NewTraceDevice("trace")
	tr.Write(0, Word, 1)
	tr.Write(0, Word, 2)
	v, _ := tr.Read(0, Word)
	if v != 2 {
		t.Errorf("trace device should return last value, got %d", v)
	}
	if len(tr.History) != 2 {
		t.Errorf("trace device should capture history, got %v", tr.History)
	}
}
