package utils

import (
	"bytes"
	"testing"
)

func TestDecodeHex(t *testing.T) {
	inputs := []string{
		"deadbeef",
		"DE AD BE EF",
		"de:ad:be:ef",
		"0xdeadbeef",
		"de-ad-be-ef\n",
	}

	for _, in := range inputs {
		b, err := DecodeHex(in)
		if err != nil {
			t.Errorf("DecodeHex(%q) failed: %v", in, err)
			continue
		}
		if !bytes.Equal(b, []byte{0xde, 0xad, 0xbe, 0xef}) {
			t.Errorf("DecodeHex(%q) = %X", in, b)
		}
	}

	if _, err := DecodeHex("zz"); err == nil {
		t.Error("expected error for non-hex characters")
	}
	if _, err := DecodeHex("abc"); err == nil {
		t.Error("expected error for odd length")
	}
}

func TestMin(t *testing.T) {
	if Min(3, 5) != 3 || Min(5, 3) != 3 {
		t.Error("Min returned the wrong value")
	}
}
