package eap

import (
	"encoding/binary"
)

type MsChapV2OpCode uint8

const (
	MsChapV2Challenge MsChapV2OpCode = 1
	MsChapV2Response  MsChapV2OpCode = 2
	MsChapV2Success   MsChapV2OpCode = 3
	MsChapV2Failure   MsChapV2OpCode = 4
	MsChapV2ChangePwd MsChapV2OpCode = 7
)

type EapMSCHAPv2 struct {
	header  HeaderEap
	opCode  MsChapV2OpCode
	msID    uint8
	value   []byte //This is challenge for Challenge packet and response for response packet
	name    string
	message string
}

const (
	msChapV2ChallengeLen = 16 //Fixed length for MsChapV2 challenge value
	msChapV2respLen      = 49 //Fixed length for MsChapV2 response value
)

func NewEapMsChapV2() *EapMSCHAPv2 {

	header := HeaderEap{
		msgType: MsChapv2,
	}

	msChapv2 := &EapMSCHAPv2{
		header: header,
	}

	return msChapv2

}

func (packet *EapMSCHAPv2) Decode(buff []byte) bool {

	ok := packet.header.Decode(buff)

	if !ok || packet.header.GetType() != MsChapv2 || len(buff) < 6 {
		return false
	}

	packet.opCode = MsChapV2OpCode(buff[5])

	if packet.GetCode() == EAPResponse && (packet.opCode == MsChapV2Success || packet.opCode == MsChapV2Failure) {
		return true //Nothing more to decode
	}

	return packet.decodeBody(packet.GetCode() == EAPRequest, buff[5:])

}

//DecodeChap decodes a PPP CHAP packet (RFC 1994) using the MS-CHAPv2 algorithm.
//CHAP shares the layout of the EAP-MSCHAPv2 body, starting at the OpCode.
func (packet *EapMSCHAPv2) DecodeChap(buff []byte) bool {

	if len(buff) < 1 {
		return false
	}

	opCode := MsChapV2OpCode(buff[0])

	//Challenge, Success and Failure are sent by the authenticator
	fromServer := opCode != MsChapV2Response && opCode != MsChapV2ChangePwd

	if fromServer {
		packet.header.code = EAPRequest
	} else {
		packet.header.code = EAPResponse
	}

	packet.opCode = opCode

	return packet.decodeBody(fromServer, buff)

}

//decodeBody decodes OpCode, MS-CHAPv2-ID, MS-Length and the data that follows.
func (packet *EapMSCHAPv2) decodeBody(fromServer bool, buff []byte) bool {

	if len(buff) < 4 {
		return false
	}

	packet.msID = buff[1]

	msLength := int(binary.BigEndian.Uint16(buff[2:]))

	if msLength > len(buff) || msLength < 4 {
		return false
	}

	buff = buff[:msLength]

	if fromServer && (packet.opCode == MsChapV2Success || packet.opCode == MsChapV2Failure) {
		packet.message = string(buff[4:])
		return true //Nothing else to decode
	}

	//Decode value and name if present
	if (fromServer && packet.opCode == MsChapV2Challenge) ||
		(!fromServer && packet.opCode == MsChapV2Response) {

		if len(buff) < 5 {
			return false
		}

		valueSize := int(buff[4])

		if (packet.opCode == MsChapV2Challenge && valueSize != msChapV2ChallengeLen) ||
			(packet.opCode == MsChapV2Response && valueSize != msChapV2respLen) {
			return false //Length does not match according to the RFC
		}

		if len(buff[5:]) < valueSize {
			return false //Value length mismatch
		}

		//Value
		packet.value = make([]byte, valueSize)

		copy(packet.value, buff[5:5+valueSize])

		//Assigning the name
		packet.name = string(buff[5+valueSize:])

	}

	return true
}

func (packet *EapMSCHAPv2) GetId() uint8 {
	return packet.header.GetId()
}

func (packet *EapMSCHAPv2) GetCode() EapCode {
	return packet.header.GetCode()
}

func (packet *EapMSCHAPv2) GetType() EapType {
	return packet.header.GetType()
}

func (packet EapMSCHAPv2) GetOpCode() MsChapV2OpCode {
	return packet.opCode
}

func (packet EapMSCHAPv2) GetMsgID() uint8 {
	return packet.msID
}

func (packet EapMSCHAPv2) GetName() string {
	return packet.name
}

func (packet EapMSCHAPv2) GetMessage() string {
	return packet.message
}

//GetAuthChallenge returns the field auth challenge from a challenge packet
func (packet EapMSCHAPv2) GetAuthChallenge() []byte {

	if packet.GetCode() != EAPRequest || packet.opCode != MsChapV2Challenge {
		return nil //The packet does not contain an auth challenge token
	}

	retVal := make([]byte, len(packet.value))

	copy(retVal, packet.value)

	return retVal

}

//GetResponse Returns the response field from a response packet
func (packet EapMSCHAPv2) GetResponse() []byte {

	if packet.GetCode() != EAPResponse || packet.opCode != MsChapV2Response {
		return nil //The packet does not contain a response field
	}

	retVal := make([]byte, len(packet.value))

	copy(retVal, packet.value)

	return retVal

}

//MSCHAPv2ExtractFromResponse splits the 49 byte response value into
//peer challenge, NT response and flags. Bytes 16 to 23 are reserved.
func MSCHAPv2ExtractFromResponse(response []byte) (bool, [16]byte, [NtResponseLen]byte, byte) {

	var peerChallenge [16]byte
	var ntResponse [NtResponseLen]byte

	if len(response) != msChapV2respLen {
		return false, peerChallenge, ntResponse, 0
	}

	copy(peerChallenge[:], response[:16])
	copy(ntResponse[:], response[24:48])
	flags := response[48]

	return true, peerChallenge, ntResponse, flags

}
