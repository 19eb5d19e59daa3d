package common

import (
	"bytes"
	"errors"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	b, err := HexToBytes("0xdeadbeef")
	if err != nil {
		t.Fatalf("HexToBytes: %v", err)
	}
	if BytesToHex(b) != "0xdeadbeef" {
		t.Fatalf("BytesToHex round trip mismatch: %s", BytesToHex(b))
	}

	// Unprefixed hex must also decode.
	b2, err := HexToBytes("deadbeef")
	if err != nil {
		t.Fatalf("HexToBytes without prefix: %v", err)
	}
	if !bytes.Equal(b, b2) {
		t.Fatalf("prefixed and unprefixed decode should match")
	}
}

func TestLittleEndianCodecs(t *testing.T) {
	buf16 := make([]byte, 2)
	PutUint16LE(buf16, 0xABCD)
	if got := Uint16LE(buf16); got != 0xABCD {
		t.Fatalf("uint16 LE round trip: got %x", got)
	}

	buf32 := make([]byte, 4)
	PutUint32LE(buf32, 0x01020304)
	if got := Uint32LE(buf32); got != 0x01020304 {
		t.Fatalf("uint32 LE round trip: got %x", got)
	}

	buf64 := make([]byte, 8)
	PutUint64LE(buf64, 0x0102030405060708)
	if got := Uint64LE(buf64); got != 0x0102030405060708 {
		t.Fatalf("uint64 LE round trip: got %x", got)
	}

	buf128 := make([]byte, 16)
	PutUint128LE(buf128, 42, 7)
	lo, hi := Uint128LE(buf128)
	if lo != 42 || hi != 7 {
		t.Fatalf("uint128 LE round trip: got lo=%d hi=%d", lo, hi)
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, 5) != 3 || Min(5, 3) != 3 {
		t.Fatalf("Min incorrect")
	}
	if Max(3, 5) != 5 || Max(5, 3) != 5 {
		t.Fatalf("Max incorrect")
	}
}

func TestIsZeroBytes(t *testing.T) {
	if !IsZeroBytes(make([]byte, 8)) {
		t.Fatalf("all-zero slice should report zero")
	}
	if IsZeroBytes([]byte{0, 0, 1}) {
		t.Fatalf("slice with a non-zero byte should not report zero")
	}
}

func TestConcatBytes(t *testing.T) {
	got := ConcatBytes([]byte("ab"), []byte("cd"), []byte("e"))
	if string(got) != "abcde" {
		t.Fatalf("unexpected concat result: %q", got)
	}
}

func TestClassifyAndKindOf(t *testing.T) {
	base := errors.New("boom")
	wrapped := Classify(base, KindEconomic)

	if KindOf(wrapped) != KindEconomic {
		t.Fatalf("expected KindEconomic, got %v", KindOf(wrapped))
	}
	if !errors.Is(wrapped, base) && errors.Unwrap(wrapped) != base {
		t.Fatalf("Classified must unwrap to the original error")
	}
	if KindOf(base) != KindOperational {
		t.Fatalf("unclassified errors must default to KindOperational")
	}
	if Classify(nil, KindEconomic) != nil {
		t.Fatalf("Classify(nil, ...) must return nil")
	}
}

func TestRetriable(t *testing.T) {
	if !Retriable(Classify(errors.New("x"), KindOperational)) {
		t.Fatalf("operational errors must be retriable")
	}
	if Retriable(Classify(errors.New("x"), KindStructural)) {
		t.Fatalf("structural errors must not be retriable")
	}
}
