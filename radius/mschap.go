package radius

//Microsoft vendor-specific attributes. RFC 2548
const (
	MicrosoftVendor uint32 = 311

	MSCHAPChallenge uint8 = 11
	MSCHAP2Response uint8 = 25
)

const msChap2ResponseLen = 50

//GetMSCHAPChallenge returns the authenticator challenge sent by the NAS
func (packet *RadiusPacket) GetMSCHAPChallenge() (bool, []byte) {

	if ok, vAttrs := packet.GetVendorSpecificAttrs(MicrosoftVendor); ok {

		for _, attr := range vAttrs {
			if attr.vType == MSCHAPChallenge {
				return true, attr.content
			}
		}

	}

	return false, nil

}

//GetMSCHAP2Response returns the MS-CHAP2-Response attribute converted
//to the 49 byte layout used by EAP-MSCHAPv2 and PPP CHAP:
//peer challenge (16), reserved (8), NT response (24), flags (1).
//The attribute itself is Ident (1), Flags (1), Peer-Challenge (16), Reserved (8), Response (24).
func (packet *RadiusPacket) GetMSCHAP2Response() (bool, []byte) {

	if ok, vAttrs := packet.GetVendorSpecificAttrs(MicrosoftVendor); ok {

		for _, attr := range vAttrs {
			if attr.vType == MSCHAP2Response && len(attr.content) == msChap2ResponseLen {

				value := make([]byte, 0, msChap2ResponseLen-1)
				value = append(value, attr.content[2:]...)
				value = append(value, attr.content[1])

				return true, value
			}
		}

	}

	return false, nil

}
