// Package keycodec obfuscates Gemini API keys for storage in a public Gist.
//
// Automated scanners look for the plain "AIzaSy..." key pattern and revoke
// matching keys. The codec hides the pattern with a reverse + base64 scheme:
//
//	encode: reverse the key, then base64 the result
//	decode: base64-decode, then reverse back
//
// The Gist stores the encoded form under "gemini_key_enc". SmartDecode
// accepts either form, so a control panel edited by hand with a plain key
// still works.
package keycodec

import (
	"encoding/base64"
	"strings"
)

// plainKeyPrefix is how Google API keys start. A value with this prefix is
// already a usable key, never an encoded one.
const plainKeyPrefix = "AIzaSy"

// Encode converts a plain API key to the obfuscated Gist form.
func Encode(plainKey string) string {
	return base64.StdEncoding.EncodeToString([]byte(reverse(plainKey)))
}

// Decode converts the obfuscated form back to a plain key.
// Returns an empty string when the input is not valid base64.
func Decode(encodedKey string) string {
	decoded, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return ""
	}
	return reverse(string(decoded))
}

// IsEncoded reports whether a value looks like an encoded key rather than
// a plain API key.
func IsEncoded(value string) bool {
	if value == "" {
		return false
	}
	if strings.HasPrefix(value, plainKeyPrefix) {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(value)
	return err == nil
}

// SmartDecode resolves a Gist value to a plain key: plain keys pass
// through, encoded keys are decoded, and anything else is returned as-is
// so an unrecognized control-panel value still reaches the API unchanged.
func SmartDecode(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, plainKeyPrefix) {
		return value
	}
	if decoded := Decode(value); strings.HasPrefix(decoded, plainKeyPrefix) {
		return decoded
	}
	return value
}

// reverse returns s with its bytes in reverse order. API keys are ASCII,
// so byte reversal and rune reversal coincide.
func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
