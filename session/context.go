package session

import (
	"bytes"
	"fmt"

	"github.com/famez/mschapv2-crack/eap"

	"github.com/golang/glog"
)

//MsChapV2Context Context to track the challenge-response process
type MsChapV2Context struct {
	authChallenge []byte
	serverName    string
	msID          uint8
}

//ContextInfo keeps the state of the authentication running for a given client,
//so that a challenge seen in one packet can be paired with the response
//carried by a later one.
type ContextInfo struct {
	client   string
	server   string
	state    []byte //RADIUS State of the Access-Challenge, echoed by the NAS
	identity string //From EAP-Response/Identity, used when the response carries no name
	msChap   MsChapV2Context
}

type contextTracker struct {
	contexts  []*ContextInfo
	exchanges []*Exchange
	seen      map[[eap.NtResponseLen]byte]bool
}

func newContextTracker() *contextTracker {
	return &contextTracker{
		seen: make(map[[eap.NtResponseLen]byte]bool),
	}
}

func (tracker *contextTracker) AddContext(client, server string, state []byte) *ContextInfo {

	context := &ContextInfo{
		client: client,
		server: server,
		state:  state,
	}

	tracker.contexts = append(tracker.contexts, context)

	return context

}

//GetContext returns the context of the client with the given RADIUS State, nil for none
func (tracker *contextTracker) GetContext(client string, state []byte) *ContextInfo {

	for _, context := range tracker.contexts {
		if context.client == client && bytes.Equal(context.state, state) {
			return context
		}
	}

	return nil

}

//GetContextByClient returns the last context opened by the client
func (tracker *contextTracker) GetContextByClient(client string) *ContextInfo {

	for i := len(tracker.contexts) - 1; i >= 0; i-- {
		if tracker.contexts[i].client == client {
			return tracker.contexts[i]
		}
	}

	return nil

}

//SetIdentity stores the identity announced by the peer of the client
func (tracker *contextTracker) SetIdentity(client, server string, packet *eap.EapIdentity) {

	context := tracker.GetContext(client, nil)

	if context == nil {
		context = tracker.AddContext(client, server, nil)
	}

	context.identity = packet.GetIdentity()

	glog.V(2).Infoln("Identity", context.identity, "from", client)

}

//SetChallenge stores the auth challenge sent by the server to the client.
//Challenges carrying a RADIUS State get a context of their own, so that
//several logins running through the same NAS are kept apart.
func (tracker *contextTracker) SetChallenge(client, server string, state []byte, packet *eap.EapMSCHAPv2) {

	context := tracker.GetContext(client, state)

	if context == nil {
		context = tracker.AddContext(client, server, state)

		if base := tracker.GetContext(client, nil); base != nil && state != nil {
			context.identity = base.identity
		}
	}

	context.msChap = MsChapV2Context{
		authChallenge: packet.GetAuthChallenge(),
		serverName:    packet.GetName(),
		msID:          packet.GetMsgID(),
	}

	glog.V(2).Infoln("Challenge from", server, "to", client, "server name", context.msChap.serverName)

}

//SetResponse pairs the response with the challenge of the same RADIUS State,
//or with the last challenge seen by the client when there is no State.
//A complete exchange is recorded unless an identical one was already found.
func (tracker *contextTracker) SetResponse(client string, state []byte, packet *eap.EapMSCHAPv2, method string) {

	context := tracker.GetContext(client, state)

	if state == nil && (context == nil || context.msChap.authChallenge == nil) {
		context = tracker.GetContextByClient(client)
	}

	if context == nil || context.msChap.authChallenge == nil {
		glog.V(1).Infoln("Response from", client, "without a previous challenge")
		return
	}

	if context.msChap.msID != packet.GetMsgID() {
		glog.V(1).Infoln("Response from", client, "does not match the challenge id",
			context.msChap.msID, "!=", packet.GetMsgID())
		return
	}

	name := packet.GetName()

	if name == "" {
		name = context.identity
	}

	exchange, err := NewExchange(context.msChap.authChallenge, packet.GetResponse(), StripDomain(name))

	if err != nil {
		glog.V(1).Infoln("Response from", client, "discarded:", err)
		return
	}

	exchange.Source = fmt.Sprintf("%s %s <-> %s", method, client, context.server)

	tracker.AddExchange(exchange)

}

//AddExchange records the exchange unless the same NT response was already recorded
func (tracker *contextTracker) AddExchange(exchange *Exchange) {

	if tracker.seen[exchange.NTResponse] {
		glog.V(2).Infoln("Duplicated exchange", exchange)
		return
	}

	tracker.seen[exchange.NTResponse] = true
	tracker.exchanges = append(tracker.exchanges, exchange)

	glog.V(1).Infoln("Found exchange", exchange)

}
