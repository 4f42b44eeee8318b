package decode

import "testing"

func TestDecodeRType(t *testing.T) {
	// add $t2, $t0, $t1 -> opcode 0, rs=t0(8), rt=t1(9), rd=t2(10), funct=0x20
	word := uint32(0)<<26 | 8<<21 | 9<<16 | 10<<11 | 0<<6 | 0x20
	inst := Decode(word)
	if inst.Op != OpADD || inst.Form != FormR {
		t.Fatalf("got %+v", inst)
	}
	if inst.Rs != 8 || inst.Rt != 9 || inst.Rd != 10 {
		t.Errorf("fields got rs=%d rt=%d rd=%d", inst.Rs, inst.Rt, inst.Rd)
	}
}

func TestDecodeIType(t *testing.T) {
	// addi $t0, $0, 5
	word := uint32(0x08)<<26 | 0<<21 | 8<<16 | 5
	inst := Decode(word)
	if inst.Op != OpADDI || inst.Form != FormI {
		t.Fatalf("got %+v", inst)
	}
	if inst.SignExtImm() != 5 {
		t.Errorf("imm got %d, want 5", inst.SignExtImm())
	}
}

func TestDecodeNegativeImmSignExtends(t *testing.T) {
	word := uint32(0x08)<<26 | 0xffff
	inst := Decode(word)
	if inst.SignExtImm() != 0xffffffff {
		t.Errorf("sign extension got %#x, want 0xffffffff", inst.SignExtImm())
	}
}

func TestDecodeJType(t *testing.T) {
	word := uint32(0x02)<<26 | 0x123456
	inst := Decode(word)
	if inst.Op != OpJ || inst.Form != FormJ {
		t.Fatalf("got %+v", inst)
	}
	if inst.Target26 != 0x123456 {
		t.Errorf("target got %#x", inst.Target26)
	}
}

func TestDecodeReservedPrimaryOpcode(t *testing.T) {
	word := uint32(0x3f) << 26
	inst := Decode(word)
	if inst.Op != Reserved {
		t.Errorf("unknown primary opcode should decode Reserved, got %v", inst.Op)
	}
}

func TestDecodeReservedSpecialFunct(t *testing.T) {
	word := uint32(0x3f) // funct 0x3f under SPECIAL
	inst := Decode(word)
	if inst.Op != Reserved {
		t.Errorf("unknown SPECIAL funct should decode Reserved, got %v", inst.Op)
	}
}

func TestDecodeCop0TLBOps(t *testing.T) {
	cases := map[uint32]Op{
		uint32(0x10)<<26 | 0x10<<21 | 0x01: OpTLBR,
		uint32(0x10)<<26 | 0x10<<21 | 0x02: OpTLBWI,
		uint32(0x10)<<26 | 0x10<<21 | 0x06: OpTLBWR,
		uint32(0x10)<<26 | 0x10<<21 | 0x08: OpTLBP,
		uint32(0x10)<<26 | 0x10<<21 | 0x10: OpRFE,
	}
	for word, want := range cases {
		if got := Decode(word).Op; got != want {
			t.Errorf("word %#x decoded %v, want %v", word, got, want)
		}
	}
}

func TestDecodeMFC0MTC0(t *testing.T) {
	mfc0 := Decode(uint32(0x10) << 26)
	if mfc0.Op != OpMFC0 {
		t.Errorf("rs=0 under COP0 should be MFC0, got %v", mfc0.Op)
	}
	mtc0 := Decode(uint32(0x10)<<26 | 0x04<<21)
	if mtc0.Op != OpMTC0 {
		t.Errorf("rs=4 under COP0 should be MTC0, got %v", mtc0.Op)
	}
}

func TestDecodeCop1Cop2Cop3(t *testing.T) {
	if Decode(uint32(0x11) << 26).Op != OpCOP1 {
		t.Errorf("COP1 opcode mismatch")
	}
	if Decode(uint32(0x12) << 26).Op != OpCOP2 {
		t.Errorf("COP2 opcode mismatch")
	}
	if Decode(uint32(0x13) << 26).Op != OpCOP3 {
		t.Errorf("COP3 opcode mismatch")
	}
}
