package eap

import "testing"

func TestEapIdentityDecode(t *testing.T) {
	buff := []byte{byte(EAPResponse), 7, 0, 14, byte(Identity)}
	buff = append(buff, "CORP\\User"...)

	ok, msgType := PeekType(buff)
	if !ok || msgType != Identity {
		t.Fatalf("unexpected type %d", msgType)
	}

	packet, isIdentity := GetEAPByType(msgType).(*EapIdentity)
	if !isIdentity {
		t.Fatal("expected *EapIdentity")
	}

	if !packet.Decode(buff) {
		t.Fatal("Decode failed")
	}
	if packet.GetIdentity() != "CORP\\User" || packet.GetId() != 7 || packet.GetCode() != EAPResponse {
		t.Errorf("unexpected packet %+v", packet)
	}

	//Length field does not match
	buff[3] = 20
	if NewEapIdentity().Decode(buff) {
		t.Error("expected failure on bad length")
	}
}
