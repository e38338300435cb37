package eap

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

// Test vectors from RFC 2759 section 9.2
const (
	rfcUser          = "User"
	rfcPassword      = "clientPass"
	rfcAuthChallenge = "5B5D7C7D7B3F2F3E3C2C602132262628"
	rfcPeerChallenge = "21402324255E262A28295F2B3A337C7E"
	rfcChallenge     = "D02E4386BCE91226"
	rfcPasswordHash  = "44EBBA8D5312B8D611474411F56989AE"
	rfcNtResponse    = "82309ECD8D708B5EA08FAA3981CD83544233114A3D85D6DF"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestDesKey(t *testing.T) {
	vectors := []struct {
		seed string
		key  string
	}{
		{"00000000000000", "0000000000000000"},
		{"FFFFFFFFFFFFFF", "FEFEFEFEFEFEFEFE"},
		{"44EBBA8D5312B8", "4474EE50D4984A70"},
		{"0123456789ABCD", "0090D0AC784CAE9A"},
	}

	for _, v := range vectors {
		key := DesKey(mustHex(t, v.seed))
		if !bytes.Equal(key[:], mustHex(t, v.key)) {
			t.Errorf("DesKey(%s) = %X, expected %s", v.seed, key, v.key)
		}
		for i, b := range key {
			if b&1 != 0 {
				t.Errorf("DesKey(%s) byte %d has low bit set", v.seed, i)
			}
		}
	}
}

func TestDesKeyDeterministic(t *testing.T) {
	seed := mustHex(t, "0123456789ABCD")
	if DesKey(seed) != DesKey(seed) {
		t.Error("DesKey should be deterministic")
	}
}

func TestNtPasswordHash(t *testing.T) {
	vectors := []struct {
		password string
		hash     string
	}{
		{"", "31D6CFE0D16AE931B73C59D7E0C089C0"},
		{"password", "8846F7EAEE8FB117AD06BDD830B7586C"},
		{rfcPassword, rfcPasswordHash},
	}

	for _, v := range vectors {
		hash, err := NtPasswordHash(v.password)
		if err != nil {
			t.Fatalf("NtPasswordHash(%q) failed: %v", v.password, err)
		}
		if !bytes.Equal(hash[:], mustHex(t, v.hash)) {
			t.Errorf("NtPasswordHash(%q) = %X, expected %s", v.password, hash, v.hash)
		}
	}
}

func TestNtPasswordHashNonASCII(t *testing.T) {
	// Characters outside the BMP are encoded as surrogate pairs, not rejected
	if _, err := NtPasswordHash("pässwörd😀"); err != nil {
		t.Errorf("unexpected error for valid UTF-8 password: %v", err)
	}
}

func TestNtPasswordHashInvalidUTF8(t *testing.T) {
	password := "abc\xffdef"

	_, err := NtPasswordHash(password)
	if err == nil {
		t.Fatal("expected error for invalid UTF-8 password")
	}

	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %T", err)
	}
	if encErr.Password != password {
		t.Errorf("unexpected password in error: %q", encErr.Password)
	}

	// Substitution makes it hashable
	if _, err := NtPasswordHash(SubstituteInvalid(password)); err != nil {
		t.Errorf("substituted password should hash: %v", err)
	}
}

func TestChallengeHash(t *testing.T) {
	var peer [16]byte
	copy(peer[:], mustHex(t, rfcPeerChallenge))

	challenge := ChallengeHash(peer, mustHex(t, rfcAuthChallenge), rfcUser)
	if !bytes.Equal(challenge[:], mustHex(t, rfcChallenge)) {
		t.Errorf("ChallengeHash = %X, expected %s", challenge, rfcChallenge)
	}
}

func TestChallengeResponse(t *testing.T) {
	var challenge [ChallengeLen]byte
	var hash [NtHashLen]byte
	copy(challenge[:], mustHex(t, rfcChallenge))
	copy(hash[:], mustHex(t, rfcPasswordHash))

	response := ChallengeResponse(challenge, hash)
	if !bytes.Equal(response[:], mustHex(t, rfcNtResponse)) {
		t.Errorf("ChallengeResponse = %X, expected %s", response, rfcNtResponse)
	}

	// Pure function, no hidden state
	if again := ChallengeResponse(challenge, hash); again != response {
		t.Error("ChallengeResponse should return identical output on repeated calls")
	}
}

func TestChallengeResponseTrace(t *testing.T) {
	var challenge [ChallengeLen]byte
	var hash [NtHashLen]byte
	copy(challenge[:], mustHex(t, rfcChallenge))
	copy(hash[:], mustHex(t, rfcPasswordHash))

	trace := ChallengeResponseTrace(challenge, hash)

	if !bytes.Equal(trace.ZHash[:16], hash[:]) {
		t.Error("ZHash should start with the password hash")
	}
	if !bytes.Equal(trace.ZHash[16:], make([]byte, 5)) {
		t.Errorf("ZHash should end with 5 zero bytes, got %X", trace.ZHash[16:])
	}
	if !bytes.Equal(trace.Keys[0][:], mustHex(t, "4474EE50D4984A70")) {
		t.Errorf("unexpected first DES key %X", trace.Keys[0])
	}
	for i := 0; i < 3; i++ {
		if !bytes.Equal(trace.Blocks[i][:], trace.Response[i*8:(i+1)*8]) {
			t.Errorf("block %d does not match response slice", i)
		}
	}
}

func TestGenerateNTResponse(t *testing.T) {
	var peer [16]byte
	copy(peer[:], mustHex(t, rfcPeerChallenge))

	response, err := GenerateNTResponse(mustHex(t, rfcAuthChallenge), peer, rfcUser, rfcPassword)
	if err != nil {
		t.Fatalf("GenerateNTResponse failed: %v", err)
	}
	if !bytes.Equal(response[:], mustHex(t, rfcNtResponse)) {
		t.Errorf("GenerateNTResponse = %X, expected %s", response, rfcNtResponse)
	}

	if _, err := GenerateNTResponse(mustHex(t, rfcAuthChallenge), peer, rfcUser, "\xc3"); err == nil {
		t.Error("expected error for invalid UTF-8 password")
	}
}
