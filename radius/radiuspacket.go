package radius

import (
	"encoding/binary"

	"github.com/famez/mschapv2-crack/utils"

	"github.com/golang/glog"
)

type RadiusCode uint8
type AttrType uint8

const (
	AccessRequest      RadiusCode = 1
	AccessAccept       RadiusCode = 2
	AccessReject       RadiusCode = 3
	AccountingRequest  RadiusCode = 4
	AccountingResponse RadiusCode = 5
	AccessChallenge    RadiusCode = 11
)

const (
	UserName             AttrType = 1
	NasIp                AttrType = 4
	StateAttr            AttrType = 24
	VendorSpecific       AttrType = 26
	CalledStationId      AttrType = 30
	CallingStationId     AttrType = 31
	EAPMessage           AttrType = 79
	MessageAuthenticator AttrType = 80
)

const headerSize = 20

const maxAttrSize = 255

//Attribute represents an attribute value pair //RFC 2865 5. Attributes
type Attribute struct {
	attrType AttrType
	value    []byte
}

type VendorSpecificAttr struct {
	vType   uint8
	content []byte
}

func NewVendorSpecificAttr(vType uint8, content []byte) VendorSpecificAttr {
	return VendorSpecificAttr{
		vType:   vType,
		content: content,
	}
}

func (attr VendorSpecificAttr) GetType() uint8 {
	return attr.vType
}

func (attr VendorSpecificAttr) GetContent() []byte {
	return attr.content
}

/*
Format of RADIUS packet

	0                   1                   2                   3
    0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
   |     Code      |  Identifier   |            Length             |
   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
   |                                                               |
   |                         Authenticator                         |
   |                                                               |
   |                                                               |
   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
   |  Attributes ...
   +-+-+-+-+-+-+-+-+-+-+-+-+-

*/

//RadiusPacket represents a packet whose format follows the RADIUS protocol
type RadiusPacket struct {
	code          RadiusCode
	id            uint8
	length        uint16
	authenticator [16]byte
	attrs         []Attribute
}

func NewRadiusPacket(code RadiusCode, id uint8) *RadiusPacket {

	packet := RadiusPacket{
		code:   code,
		id:     id,
		length: headerSize, //20 = Size of code + id + length + authenticator
		attrs:  nil,
	}

	return &packet

}

//Decode decodes a RADIUS packet.
//returns bool. false if the packet is malformed. true if the packet is well decoded
func (packet *RadiusPacket) Decode(buff []byte) bool {

	if len(buff) < headerSize { //20 = Size of code + id + length + authenticator
		return false //Malformed
	}

	length := binary.BigEndian.Uint16(buff[2:])

	//Check whether the length of the buffer
	//corresponds to the length retreived from the packet
	if int(length) != len(buff) {
		return false
	}

	//Decode attrs
	attrsBuff := buff[headerSize:]

	var attrs []Attribute

	for len(attrsBuff) > 0 {

		if len(attrsBuff) < 2 {
			return false
		}

		attrLen := uint(attrsBuff[1])

		if attrLen < 2 || attrLen > uint(len(attrsBuff)) {
			return false
		}

		attr := Attribute{
			attrType: AttrType(attrsBuff[0]),
		}

		attr.value = make([]byte, attrLen-2)

		copy(attr.value, attrsBuff[2:attrLen])

		attrs = append(attrs, attr)

		attrsBuff = attrsBuff[attrLen:]

	}

	//Once everything is well decoded, assign values to the packet and not before.
	//It is an atomic operation

	packet.code = RadiusCode(buff[0])
	packet.id = uint8(buff[1])
	packet.length = length
	copy(packet.authenticator[:], buff[4:])
	packet.attrs = attrs

	return true
}

func (packet *RadiusPacket) Encode() (bool, []byte) {

	buff := make([]byte, packet.length)

	buff[0] = byte(packet.code)
	buff[1] = byte(packet.id)

	binary.BigEndian.PutUint16(buff[2:], packet.length)

	copy(buff[4:], packet.authenticator[:])

	attrBuff := buff[headerSize:]

	//Iterate by position to keep the some order of the attributes in the list
	for _, attr := range packet.attrs {

		attrLen := len(attr.value) + 2

		if len(attrBuff) < attrLen {
			return false, nil //Something went wrong
		}

		attrBuff[0] = byte(attr.attrType)
		attrBuff[1] = byte(attrLen)
		copy(attrBuff[2:], attr.value)

		attrBuff = attrBuff[attrLen:]

	}

	return true, buff

}

//GetCode getter to obtain the code of the packet
func (packet *RadiusPacket) GetCode() RadiusCode {

	return packet.code

}

//GetId getter to obtain the id of the packet
func (packet *RadiusPacket) GetId() uint8 {

	return packet.id

}

//GetLength getter to obtain the length of the packet
func (packet *RadiusPacket) GetLength() uint16 {

	return packet.length

}

//GetRawAttr returns the values of the consecutive attributes of the given type
func (packet *RadiusPacket) GetRawAttr(attrType AttrType) (bool, [][]byte) {

	var retVal [][]byte
	found := false
	//Loop to find every attribute whose type matches (length > 255 for the attribute)
	for _, attr := range packet.attrs {
		if attr.attrType == attrType {
			var raw []byte
			raw = append(raw, attr.value...)
			retVal = append(retVal, raw)
			found = true
		} else if found && attrType == EAPMessage {
			break
		}
	}

	if retVal == nil {
		return false, nil
	}

	return true, retVal

}

//AddRawAttr appends an attribute at the end of the packet
func (packet *RadiusPacket) AddRawAttr(attrType AttrType, value []byte) bool {

	if len(value)+2 > maxAttrSize {
		glog.V(1).Infoln("AddRawAttr: The data exceeds the maximum size...")
		return false
	}

	attr := Attribute{
		attrType: attrType,
		value:    append([]byte{}, value...),
	}

	packet.attrs = append(packet.attrs, attr)
	packet.length += uint16(len(value) + 2)

	return true

}

//GetVendorSpecificAttrs returns the sub-attributes of every Vendor-Specific
//attribute of the given vendor. RFC 2865 5.26
func (packet *RadiusPacket) GetVendorSpecificAttrs(id uint32) (bool, []VendorSpecificAttr) {

	ok, data := packet.GetRawAttr(VendorSpecific)

	if !ok {
		return false, nil
	}

	var retVal []VendorSpecificAttr

	for _, raw := range data {

		if len(raw) < 6 {
			continue //Vendor id plus sub-attribute header
		}

		if binary.BigEndian.Uint32(raw) != id {
			continue
		}

		//A Vendor-Specific attribute may pack several sub-attributes
		for raw = raw[4:]; len(raw) >= 2; {

			vLength := int(raw[1])

			if vLength < 2 || vLength > len(raw) {
				glog.V(2).Infoln("Malformed vendor sub-attribute, vendor", id)
				break
			}

			vAttr := VendorSpecificAttr{
				vType:   raw[0],
				content: raw[2:vLength],
			}

			retVal = append(retVal, vAttr)

			raw = raw[vLength:]
		}
	}

	return retVal != nil, retVal

}

//AddVendorSpecificAttr appends a Vendor-Specific attribute holding one sub-attribute
func (packet *RadiusPacket) AddVendorSpecificAttr(id uint32, vAttr VendorSpecificAttr) bool {

	raw := make([]byte, 4)
	binary.BigEndian.PutUint32(raw, id)

	raw = append(raw, vAttr.vType)
	raw = append(raw, 2+byte(len(vAttr.content)))

	raw = append(raw, vAttr.content...)

	return packet.AddRawAttr(VendorSpecific, raw)

}

//GetEAPMessage reassembles the EAP message split among consecutive EAP-Message attributes
func (packet *RadiusPacket) GetEAPMessage() (bool, []byte) {

	ok, data := packet.GetRawAttr(EAPMessage)

	if !ok {
		return false, nil
	}

	var retVal []byte

	for _, raw := range data {
		retVal = append(retVal, raw...)
	}

	return true, retVal

}

//SetEAPMessage splits the message among as many EAP-Message attributes as needed
func (packet *RadiusPacket) SetEAPMessage(message []byte) {

	for offset := 0; offset < len(message); {

		chunk := utils.Min(len(message)-offset, maxAttrSize-2)

		packet.AddRawAttr(EAPMessage, message[offset:offset+chunk])

		offset += chunk

	}

}

func (packet *RadiusPacket) GetUserName() (bool, string) {

	ok, data := packet.GetRawAttr(UserName)

	if !ok {
		return false, ""
	}

	return true, string(data[0])

}

func (packet *RadiusPacket) GetState() (bool, []byte) {

	ok, data := packet.GetRawAttr(StateAttr)

	if !ok {
		return false, nil
	}

	return true, data[0]

}
