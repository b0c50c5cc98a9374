// Package domain contains core concepts of the gated chat system.
// This file defines wallet addresses and their canonical form.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"regexp"
	"strings"

	"gatechat/errors"

	"golang.org/x/crypto/sha3"
)

// addressPattern matches a 0x-prefixed, 40-hex-digit identifier.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Address is an opaque wallet identifier. It is lower-case-normalized at
// construction, so equality on the type is case-insensitive by design of
// the constructor, not of the comparison.
type Address string

// ParseAddress validates the canonical hex form and normalizes casing.
func ParseAddress(s string) (Address, error) {
	if !addressPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidAddress, s)
	}
	return Address(strings.ToLower(s)), nil
}

func (a Address) String() string {
	return string(a)
}

// Truncate returns the short display form, e.g. 0x742d...9823.
func (a Address) Truncate(chars int) string {
	s := string(a)
	if len(s) < 2+2*chars {
		return s
	}
	return s[:2+chars] + "..." + s[len(s)-chars:]
}

// Checksum renders the address with its EIP-55 mixed-case checksum.
// A hex digit is upper-cased when the corresponding nibble of the
// Keccak-256 hash of the lower-case hex body is >= 8.
func (a Address) Checksum() string {
	body := strings.TrimPrefix(string(a), "0x")

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(body))
	hash := h.Sum(nil)

	out := []byte(body)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	return "0x" + string(out)
}
