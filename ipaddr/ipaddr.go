// Package ipaddr validates textual IP address literals and classifies
// them by address family.
package ipaddr

import (
	"fmt"
	"net/netip"

	"github.com/porkdyn/porkdyn/types"
)

// Family is an IP address family.
type Family string

const (
	FamilyIPv4 Family = "IPv4"
	FamilyIPv6 Family = "IPv6"
)

// RecordType returns the DNS record type corresponding to the family.
func (f Family) RecordType() types.RecordType {
	if f == FamilyIPv4 {
		return types.RecordTypeA
	}
	return types.RecordTypeAAAA
}

// Address is a validated IP address literal and its family.
type Address struct {
	Family Family
	Text   string // the literal exactly as submitted, no canonicalization
}

// Classify validates text as an IP address literal and determines its
// family. Classification is purely syntactic: an IPv4-mapped address
// written in colon-hex notation ("::ffff:192.0.2.1") is IPv6, because
// that is the family of the literal. Hostnames, CIDR blocks, and zoned
// addresses ("fe80::1%eth0") are rejected.
func Classify(text string) (Address, error) {
	addr, err := netip.ParseAddr(text)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q is not an IP address literal", types.ErrInvalidAddress, text)
	}

	// netip accepts zone suffixes; DNS records cannot carry them.
	if addr.Zone() != "" {
		return Address{}, fmt.Errorf("%w: %q carries a zone identifier", types.ErrInvalidAddress, text)
	}

	family := FamilyIPv6
	if addr.Is4() {
		family = FamilyIPv4
	}
	return Address{Family: family, Text: text}, nil
}
