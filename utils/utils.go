package utils

import (
	"encoding/hex"
	"strings"
)

func Min(a int, b int) int {

	if a < b {
		return a
	}

	return b
}

//DecodeHex decodes an hexadecimal string. Whitespace and the ':' or '-'
//separators used by packet analyzers are ignored.
func DecodeHex(s string) ([]byte, error) {

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n', ':', '-':
			return -1
		}
		return r
	}, s)

	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "0x"), "0X")

	return hex.DecodeString(cleaned)
}
