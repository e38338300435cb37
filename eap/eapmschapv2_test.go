package eap

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildMsChapV2 builds a raw EAP-MSCHAPv2 Challenge or Response message
func buildMsChapV2(code EapCode, opCode MsChapV2OpCode, value []byte, name string) []byte {
	body := []byte{byte(opCode), 7, 0, 0, byte(len(value))}
	body = append(body, value...)
	body = append(body, name...)
	binary.BigEndian.PutUint16(body[2:], uint16(len(body)))

	buff := []byte{byte(code), 7, 0, 0, byte(MsChapv2)}
	buff = append(buff, body...)
	binary.BigEndian.PutUint16(buff[2:], uint16(len(buff)))
	return buff
}

func TestDecodeChallenge(t *testing.T) {
	challenge := mustHex(t, rfcAuthChallenge)
	raw := buildMsChapV2(EAPRequest, MsChapV2Challenge, challenge, "radius")

	packet := NewEapMsChapV2()
	if !packet.Decode(raw) {
		t.Fatal("failed to decode challenge packet")
	}

	if packet.GetOpCode() != MsChapV2Challenge {
		t.Errorf("expected Challenge opcode, got %d", packet.GetOpCode())
	}
	if packet.GetMsgID() != 7 {
		t.Errorf("expected MS-CHAPv2-ID 7, got %d", packet.GetMsgID())
	}
	if !bytes.Equal(packet.GetAuthChallenge(), challenge) {
		t.Errorf("unexpected auth challenge %X", packet.GetAuthChallenge())
	}
	if packet.GetName() != "radius" {
		t.Errorf("expected name radius, got %q", packet.GetName())
	}
	if packet.GetResponse() != nil {
		t.Error("challenge packet should not carry a response")
	}
}

func TestDecodeResponse(t *testing.T) {
	value := make([]byte, 49)
	copy(value, mustHex(t, rfcPeerChallenge))
	copy(value[24:], mustHex(t, rfcNtResponse))
	value[48] = 0x00

	raw := buildMsChapV2(EAPResponse, MsChapV2Response, value, "User")

	ok, msgType := PeekType(raw)
	if !ok || msgType != MsChapv2 {
		t.Fatalf("PeekType returned %v %d", ok, msgType)
	}

	packet := GetEAPByType(msgType)
	if !packet.Decode(raw) {
		t.Fatal("failed to decode response packet")
	}

	mschap, isMsChap := packet.(*EapMSCHAPv2)
	if !isMsChap {
		t.Fatalf("expected *EapMSCHAPv2, got %T", packet)
	}
	if mschap.GetName() != "User" {
		t.Errorf("expected name User, got %q", mschap.GetName())
	}

	ok, peer, ntResponse, flags := MSCHAPv2ExtractFromResponse(mschap.GetResponse())
	if !ok {
		t.Fatal("failed to extract response fields")
	}
	if !bytes.Equal(peer[:], mustHex(t, rfcPeerChallenge)) {
		t.Errorf("unexpected peer challenge %X", peer)
	}
	if !bytes.Equal(ntResponse[:], mustHex(t, rfcNtResponse)) {
		t.Errorf("unexpected NT response %X", ntResponse)
	}
	if flags != 0 {
		t.Errorf("unexpected flags %d", flags)
	}
}

func TestDecodeMalformed(t *testing.T) {
	raw := buildMsChapV2(EAPRequest, MsChapV2Challenge, mustHex(t, rfcAuthChallenge), "radius")

	// Length field no longer matches buffer
	if NewEapMsChapV2().Decode(raw[:len(raw)-1]) {
		t.Error("expected failure for truncated packet")
	}

	// Wrong value size for a challenge
	short := buildMsChapV2(EAPRequest, MsChapV2Challenge, make([]byte, 8), "radius")
	if NewEapMsChapV2().Decode(short) {
		t.Error("expected failure for 8 byte challenge value")
	}

	if NewEapMsChapV2().Decode([]byte{1, 2}) {
		t.Error("expected failure for tiny buffer")
	}

	if ok, _, _, _ := MSCHAPv2ExtractFromResponse(make([]byte, 48)); ok {
		t.Error("expected failure for 48 byte response value")
	}
}

func TestDecodeChap(t *testing.T) {
	// PPP CHAP Challenge: code, id, length, value-size, value, name
	chap := []byte{byte(MsChapV2Challenge), 3, 0, 0, 16}
	chap = append(chap, mustHex(t, rfcAuthChallenge)...)
	chap = append(chap, "pptpd"...)
	binary.BigEndian.PutUint16(chap[2:], uint16(len(chap)))

	packet := NewEapMsChapV2()
	if !packet.DecodeChap(chap) {
		t.Fatal("failed to decode CHAP challenge")
	}
	if packet.GetCode() != EAPRequest {
		t.Error("CHAP challenge should be treated as a request")
	}
	if !bytes.Equal(packet.GetAuthChallenge(), mustHex(t, rfcAuthChallenge)) {
		t.Errorf("unexpected auth challenge %X", packet.GetAuthChallenge())
	}
	if packet.GetName() != "pptpd" {
		t.Errorf("unexpected name %q", packet.GetName())
	}

	// Trailing padding after the CHAP length is ignored
	padded := append(append([]byte{}, chap...), 0, 0)
	if !NewEapMsChapV2().DecodeChap(padded) {
		t.Error("expected padded CHAP packet to decode")
	}
}
