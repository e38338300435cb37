package eap

import (
	"encoding/binary"
)

type EapCode uint8
type EapType uint8

const (
	EAPRequest  EapCode = 1
	EAPResponse EapCode = 2
	EAPSuccess  EapCode = 3
	EAPFailure  EapCode = 4
)

const (
	Identity EapType = 1
	MsChapv2 EapType = 26
)

const headerLen = 4

//Interface that defines the functions common to any type of EAP message
//this tool is able to decode.
type EapPacket interface {
	Decode(buff []byte) bool
	GetId() uint8
	GetCode() EapCode
	GetType() EapType
}

//GetEAPByType returns an empty packet ready to decode a message of the given type.
//Unknown types only get their header decoded.
func GetEAPByType(msgType EapType) EapPacket {
	switch msgType {
	case Identity:
		return NewEapIdentity()
	case MsChapv2:
		return NewEapMsChapV2()
	}

	return &HeaderEap{}
}

//PeekType returns the type of a raw EAP Request or Response message.
func PeekType(buff []byte) (bool, EapType) {

	if len(buff) <= headerLen {
		return false, 0
	}

	code := EapCode(buff[0])

	if code != EAPRequest && code != EAPResponse {
		return false, 0
	}

	return true, EapType(buff[4])
}

type HeaderEap struct {
	code    EapCode
	id      uint8
	length  uint16
	msgType EapType
}

//This function decodes from a given slice with raw data the attributes
//that belongs to the EAP header (code, identifier, length, type).
func (packet *HeaderEap) Decode(buff []byte) bool {

	if len(buff) < headerLen {
		return false
	}

	length := binary.BigEndian.Uint16(buff[2:])

	if length != uint16(len(buff)) {
		return false
	}

	packet.code = EapCode(buff[0])
	packet.id = uint8(buff[1])

	packet.length = length

	if len(buff) > headerLen && (packet.code == EAPRequest || packet.code == EAPResponse) {
		packet.msgType = EapType(buff[4])
	}

	return true

}

func (packet *HeaderEap) GetId() uint8 {
	return packet.id
}

func (packet *HeaderEap) GetCode() EapCode {
	return packet.code
}

func (packet *HeaderEap) GetType() EapType {
	return packet.msgType
}

func (packet *HeaderEap) GetLength() uint16 {
	return packet.length
}
