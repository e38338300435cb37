package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/famez/mschapv2-crack/eap"
	"github.com/famez/mschapv2-crack/radius"
	"github.com/famez/mschapv2-crack/utils"

	"github.com/golang/glog"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const pppTypeCHAP layers.PPPType = 0xc223

var radiusAuthPorts = []layers.UDPPort{1812, 1645}

var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

//FromRadiusPacket extracts an exchange from an Access-Request carrying
//plain MS-CHAPv2 attributes (RFC 2548): User-Name, MS-CHAP-Challenge and MS-CHAP2-Response.
func FromRadiusPacket(packet *radius.RadiusPacket) (*Exchange, error) {

	if packet.GetCode() != radius.AccessRequest {
		return nil, &FormatError{Field: "RADIUS packet", Reason: "not an Access-Request"}
	}

	ok, authChallenge := packet.GetMSCHAPChallenge()
	if !ok {
		return nil, &FormatError{Field: "RADIUS packet", Reason: "MS-CHAP-Challenge attribute missing"}
	}

	ok, response := packet.GetMSCHAP2Response()
	if !ok {
		return nil, &FormatError{Field: "RADIUS packet", Reason: "MS-CHAP2-Response attribute missing"}
	}

	ok, username := packet.GetUserName()
	if !ok {
		return nil, &FormatError{Field: "RADIUS packet", Reason: "User-Name attribute missing"}
	}

	exchange, err := NewExchange(authChallenge, response, StripDomain(username))
	if err != nil {
		return nil, err
	}

	exchange.Source = fmt.Sprintf("RADIUS MS-CHAPv2 request %d", packet.GetId())

	return exchange, nil
}

//ParseRadiusPacket decodes an hexadecimal RADIUS Access-Request and extracts the exchange
func ParseRadiusPacket(packetHex string) (*Exchange, error) {

	raw, err := decodeField("RADIUS packet", packetHex)
	if err != nil {
		return nil, err
	}

	var packet radius.RadiusPacket

	if !packet.Decode(raw) {
		return nil, &FormatError{Field: "RADIUS packet", Reason: "malformed packet"}
	}

	return FromRadiusPacket(&packet)
}

//FromEapPackets extracts an exchange from an EAP-Request/MSCHAPv2 Challenge and
//the EAP-Response/MSCHAPv2 Response that answered it.
func FromEapPackets(challenge, response []byte) (*Exchange, error) {

	challengePacket := eap.NewEapMsChapV2()

	if !challengePacket.Decode(challenge) || challengePacket.GetAuthChallenge() == nil {
		return nil, &FormatError{Field: "EAP challenge", Reason: "not an EAP-MSCHAPv2 Challenge request"}
	}

	responsePacket := eap.NewEapMsChapV2()

	if !responsePacket.Decode(response) || responsePacket.GetResponse() == nil {
		return nil, &FormatError{Field: "EAP response", Reason: "not an EAP-MSCHAPv2 Response"}
	}

	exchange, err := NewExchange(challengePacket.GetAuthChallenge(), responsePacket.GetResponse(),
		StripDomain(responsePacket.GetName()))

	if err != nil {
		return nil, err
	}

	exchange.Source = fmt.Sprintf("EAP-MSCHAPv2 %s <-> %s", responsePacket.GetName(), challengePacket.GetName())

	return exchange, nil
}

//ParseEapPackets decodes the hexadecimal EAP challenge and response and extracts the exchange
func ParseEapPackets(challengeHex, responseHex string) (*Exchange, error) {

	challenge, err := decodeField("EAP challenge", challengeHex)
	if err != nil {
		return nil, err
	}

	response, err := decodeField("EAP response", responseHex)
	if err != nil {
		return nil, err
	}

	return FromEapPackets(challenge, response)
}

//ReadCapture walks a pcap or pcapng capture and returns every MS-CHAPv2 exchange found:
//RADIUS requests with MS-CHAPv2 attributes, EAP-MSCHAPv2 carried by RADIUS
//and PPP CHAP (PPTP, PPPoE) handshakes.
func ReadCapture(r io.Reader) ([]*Exchange, error) {

	reader := bufio.NewReader(r)

	magic, err := reader.Peek(len(pcapngMagic))
	if err != nil {
		return nil, fmt.Errorf("reading capture header: %w", err)
	}

	var source gopacket.PacketDataSource
	var linkType layers.LinkType

	if string(magic) == string(pcapngMagic) {
		ngReader, err := pcapgo.NewNgReader(reader, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("opening pcapng capture: %w", err)
		}
		source, linkType = ngReader, ngReader.LinkType()
	} else {
		pcapReader, err := pcapgo.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("opening pcap capture: %w", err)
		}
		source, linkType = pcapReader, pcapReader.LinkType()
	}

	tracker := newContextTracker()

	packetSource := gopacket.NewPacketSource(source, linkType)

	count := 0

	for {
		packet, err := packetSource.NextPacket()

		if err == io.EOF {
			break
		}

		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				glog.Warningf("Capture truncated after %d packets", count)
				break
			}
			return tracker.exchanges, fmt.Errorf("reading packet %d: %w", count+1, err)
		}

		count++

		tracker.handlePacket(packet)
	}

	glog.V(1).Infof("Read %d packets, found %d exchanges", count, len(tracker.exchanges))

	return tracker.exchanges, nil
}

func (tracker *contextTracker) handlePacket(packet gopacket.Packet) {

	//PPP links captured directly carry no network layer, both sides share one context
	src, dst := "link", "link"

	if network := packet.NetworkLayer(); network != nil {
		srcIP, dstIP := network.NetworkFlow().Endpoints()
		src, dst = srcIP.String(), dstIP.String()
	}

	if pppLayer := packet.Layer(layers.LayerTypePPP); pppLayer != nil {

		ppp := pppLayer.(*layers.PPP)

		if ppp.PPPType == pppTypeCHAP {
			tracker.handleChap(ppp.Payload, src, dst)
		}

		return
	}

	if udpLayer := packet.Layer(layers.LayerTypeUDP); udpLayer != nil {

		udp := udpLayer.(*layers.UDP)

		srcAddr := net.JoinHostPort(src, strconv.Itoa(int(udp.SrcPort)))
		dstAddr := net.JoinHostPort(dst, strconv.Itoa(int(udp.DstPort)))

		if isRadiusPort(udp.DstPort) {
			tracker.handleRadius(udp.Payload, srcAddr, dstAddr, true)
		} else if isRadiusPort(udp.SrcPort) {
			tracker.handleRadius(udp.Payload, dstAddr, srcAddr, false)
		}

	}

}

func isRadiusPort(port layers.UDPPort) bool {
	for _, radiusPort := range radiusAuthPorts {
		if port == radiusPort {
			return true
		}
	}
	return false
}

//handleRadius processes a RADIUS packet exchanged between the NAS (client) and the server
func (tracker *contextTracker) handleRadius(payload []byte, client, server string, clientToServer bool) {

	var packet radius.RadiusPacket

	if !packet.Decode(payload) {
		glog.V(2).Infoln("Malformed RADIUS packet from", client)
		return
	}

	switch packet.GetCode() {
	case radius.AccessRequest:
		if !clientToServer {
			return
		}

		if exchange, err := FromRadiusPacket(&packet); err == nil {
			exchange.Source = fmt.Sprintf("RADIUS MS-CHAPv2 %s -> %s", client, server)
			tracker.AddExchange(exchange)
			return
		}

		ok, message := packet.GetEAPMessage()
		if !ok {
			return
		}

		_, state := packet.GetState()

		switch eapPacket := decodeEap(message).(type) {
		case *eap.EapIdentity:
			if eapPacket.GetCode() == eap.EAPResponse {
				tracker.SetIdentity(client, server, eapPacket)
			}
		case *eap.EapMSCHAPv2:
			if eapPacket.GetResponse() != nil {
				tracker.SetResponse(client, state, eapPacket, "RADIUS EAP-MSCHAPv2")
			}
		}

	case radius.AccessChallenge:
		if clientToServer {
			return
		}

		if ok, message := packet.GetEAPMessage(); ok {
			_, state := packet.GetState()
			mschap, isMsChap := decodeEap(message).(*eap.EapMSCHAPv2)
			if isMsChap && mschap.GetAuthChallenge() != nil {
				tracker.SetChallenge(client, server, state, mschap)
			}
		}
	}

}

//decodeEap returns the decoded Identity or MSCHAPv2 message, nil otherwise
func decodeEap(message []byte) eap.EapPacket {

	ok, msgType := eap.PeekType(message)

	if !ok || (msgType != eap.MsChapv2 && msgType != eap.Identity) {
		return nil
	}

	packet := eap.GetEAPByType(msgType)

	if !packet.Decode(message) {
		return nil
	}

	return packet
}

//handleChap processes a PPP CHAP packet. The peer is the side answering the challenge.
func (tracker *contextTracker) handleChap(payload []byte, src, dst string) {

	packet := eap.NewEapMsChapV2()

	if !packet.DecodeChap(payload) {
		return
	}

	switch {
	case packet.GetAuthChallenge() != nil:
		tracker.SetChallenge(dst, src, nil, packet)
	case packet.GetResponse() != nil:
		tracker.SetResponse(src, nil, packet, "PPP CHAP")
	}

}

func decodeField(field, value string) ([]byte, error) {

	raw, err := utils.DecodeHex(value)
	if err != nil {
		return nil, &FormatError{Field: field, Reason: "not hexadecimal", Err: err}
	}

	return raw, nil
}
