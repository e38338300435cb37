package session

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/famez/mschapv2-crack/eap"
)

const (
	authChallengeLen = 16
	ntResponseLen    = 49
)

//FormatError is returned when an input value cannot be decoded or has the wrong length
type FormatError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

//Exchange holds what was captured from a single MS-CHAPv2 authentication
type Exchange struct {
	AuthChallenge []byte
	PeerChallenge [16]byte
	NTResponse    [eap.NtResponseLen]byte
	Flags         byte
	Username      string
	Source        string //Where the exchange was found, for display
}

//ParseExchange decodes the hexadecimal auth challenge and the 49 byte
//NT-Response field. The username is used as given.
func ParseExchange(authChallengeHex, ntResponseHex, username string) (*Exchange, error) {

	authChallenge, err := decodeField("auth challenge", authChallengeHex)
	if err != nil {
		return nil, err
	}

	response, err := decodeField("NT response", ntResponseHex)
	if err != nil {
		return nil, err
	}

	return NewExchange(authChallenge, response, username)
}

//NewExchange builds an exchange from the raw auth challenge and NT-Response field.
//The auth challenge is 16 bytes long (RFC 2759), 8 bytes are accepted too.
func NewExchange(authChallenge, response []byte, username string) (*Exchange, error) {

	if len(authChallenge) != authChallengeLen && len(authChallenge) != eap.ChallengeLen {
		return nil, &FormatError{
			Field:  "auth challenge",
			Reason: fmt.Sprintf("decoded to %d bytes, expected %d or %d", len(authChallenge), authChallengeLen, eap.ChallengeLen),
		}
	}

	ok, peerChallenge, ntResponse, flags := eap.MSCHAPv2ExtractFromResponse(response)

	if !ok {
		return nil, &FormatError{
			Field:  "NT response",
			Reason: fmt.Sprintf("decoded to %d bytes, expected %d", len(response), ntResponseLen),
		}
	}

	exchange := &Exchange{
		AuthChallenge: append([]byte{}, authChallenge...),
		PeerChallenge: peerChallenge,
		NTResponse:    ntResponse,
		Flags:         flags,
		Username:      username,
		Source:        "manual input",
	}

	return exchange, nil
}

//Challenge derives the 8 byte challenge encrypted by the peer. rfc2759 8.2
func (exchange *Exchange) Challenge() [eap.ChallengeLen]byte {
	return eap.ChallengeHash(exchange.PeerChallenge, exchange.AuthChallenge, exchange.Username)
}

//Matches tells whether the password produces the captured NT response
func (exchange *Exchange) Matches(password string) (bool, error) {

	response, err := eap.GenerateNTResponse(exchange.AuthChallenge, exchange.PeerChallenge, exchange.Username, password)

	if err != nil {
		return false, err
	}

	return response == exchange.NTResponse, nil
}

//HashcatLine returns the exchange in the NetNTLMv1 format (hashcat mode 5500, john netntlm):
//username::::response:challenge
func (exchange *Exchange) HashcatLine() string {
	challenge := exchange.Challenge()
	return fmt.Sprintf("%s::::%s:%s", exchange.Username,
		hex.EncodeToString(exchange.NTResponse[:]), hex.EncodeToString(challenge[:]))
}

func (exchange *Exchange) String() string {
	return fmt.Sprintf("%s (user=%q, peer challenge=%X, response=%X)",
		exchange.Source, exchange.Username, exchange.PeerChallenge, exchange.NTResponse)
}

//StripDomain removes a DOMAIN\ prefix from the user name.
//Only the bare user name takes part in the challenge hash. rfc2759 8.2
func StripDomain(username string) string {
	if i := strings.LastIndexByte(username, '\\'); i >= 0 {
		return username[i+1:]
	}
	return username
}
