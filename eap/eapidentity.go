package eap

//EapIdentity is the EAP-Response/Identity sent by the peer before the method starts
type EapIdentity struct {
	header   HeaderEap
	identity string
}

func NewEapIdentity() *EapIdentity {

	header := HeaderEap{
		msgType: Identity,
	}

	identity := &EapIdentity{
		header: header,
	}

	return identity

}

func (packet *EapIdentity) Decode(buff []byte) bool {

	ok := packet.header.Decode(buff)

	if !ok || packet.header.GetType() != Identity || len(buff) <= headerLen {
		return false
	}

	packet.identity = string(buff[headerLen+1:])

	return true

}

func (packet *EapIdentity) GetId() uint8 {
	return packet.header.GetId()
}

func (packet *EapIdentity) GetCode() EapCode {
	return packet.header.GetCode()
}

func (packet *EapIdentity) GetType() EapType {
	return packet.header.GetType()
}

func (packet *EapIdentity) GetIdentity() string {
	return packet.identity
}
