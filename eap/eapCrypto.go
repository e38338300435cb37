package eap

import (
	"crypto/des"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/md4"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	ChallengeLen  = 8
	NtHashLen     = 16
	NtResponseLen = 24
)

//EncodingError is returned when a password cannot be converted to UTF-16LE
type EncodingError struct {
	Password string
	Err      error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("password %q is not representable as UTF-16LE: %v", e.Password, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

var errInvalidUTF8 = errors.New("invalid UTF-8 sequence")

//DesKey expands a 7 byte seed into an 8 byte DES key. Every output byte holds
//7 bits of the seed in its high bits. The low (parity) bit is left at zero.
func DesKey(seed []byte) [8]byte {

	var key [8]byte

	key[0] = seed[0] >> 1
	key[1] = (seed[0]&0x01)<<6 | seed[1]>>2
	key[2] = (seed[1]&0x03)<<5 | seed[2]>>3
	key[3] = (seed[2]&0x07)<<4 | seed[3]>>4
	key[4] = (seed[3]&0x0F)<<3 | seed[4]>>5
	key[5] = (seed[4]&0x1F)<<2 | seed[5]>>6
	key[6] = (seed[5]&0x3F)<<1 | seed[6]>>7
	key[7] = seed[6] & 0x7F

	for i := range key {
		key[i] <<= 1
	}

	return key

}

//rfc2759 8.2
func ChallengeHash(peerChallenge [16]byte, authChallenge []byte, username string) [ChallengeLen]byte {

	var challenge [ChallengeLen]byte

	h := sha1.New()

	h.Write(peerChallenge[:])
	h.Write(authChallenge)
	io.WriteString(h, username)

	copy(challenge[:], h.Sum(nil))

	return challenge

}

//rfc2759 8.3
func NtPasswordHash(password string) ([NtHashLen]byte, error) {

	var hash [NtHashLen]byte

	if !utf8.ValidString(password) {
		return hash, &EncodingError{Password: password, Err: errInvalidUTF8}
	}

	//Transform password to UCS2 encoding
	encoding := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	psswdEncoded, _, err := transform.String(encoding.NewEncoder(), password)

	if err != nil {
		return hash, &EncodingError{Password: password, Err: err}
	}

	h := md4.New()
	io.WriteString(h, psswdEncoded)

	copy(hash[:], h.Sum(nil))

	return hash, nil

}

//SubstituteInvalid replaces every invalid UTF-8 sequence of the password with U+FFFD
//so that it can be hashed.
func SubstituteInvalid(password string) string {
	return strings.ToValidUTF8(password, "\uFFFD")
}

//ResponseTrace holds the intermediate values of a ChallengeResponse computation
type ResponseTrace struct {
	Challenge [ChallengeLen]byte
	Hash      [NtHashLen]byte
	ZHash     [21]byte
	Keys      [3][8]byte
	Blocks    [3][8]byte
	Response  [NtResponseLen]byte
}

//rfc2759 8.5
func ChallengeResponse(challenge [ChallengeLen]byte, psswdHash [NtHashLen]byte) [NtResponseLen]byte {

	return ChallengeResponseTrace(challenge, psswdHash).Response

}

//ChallengeResponseTrace computes the NT response and keeps every intermediate value
func ChallengeResponseTrace(challenge [ChallengeLen]byte, psswdHash [NtHashLen]byte) ResponseTrace {

	trace := ResponseTrace{
		Challenge: challenge,
		Hash:      psswdHash,
	}

	//Last 5 bytes stay at zero
	copy(trace.ZHash[:NtHashLen], psswdHash[:])

	for i := 0; i < 3; i++ {

		trace.Keys[i] = DesKey(trace.ZHash[i*7 : (i+1)*7])

		desCipher, err := des.NewCipher(trace.Keys[i][:])

		if err != nil {
			panic(err) //Key is always 8 bytes long
		}

		desCipher.Encrypt(trace.Blocks[i][:], challenge[:])
		copy(trace.Response[i*8:(i+1)*8], trace.Blocks[i][:])

	}

	return trace

}

//rfc2759 8.1
func GenerateNTResponse(authChallenge []byte, peerChallenge [16]byte, username string, password string) ([NtResponseLen]byte, error) {

	challenge := ChallengeHash(peerChallenge, authChallenge, username)

	psswdHash, err := NtPasswordHash(password)

	if err != nil {
		return [NtResponseLen]byte{}, err
	}

	return ChallengeResponse(challenge, psswdHash), nil
}
