// Package dnsname splits qualified host names into their subdomain and
// registrable-zone parts for use with provider APIs that address records
// by zone + relative name.
package dnsname

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"github.com/porkdyn/porkdyn/types"
)

// Name is a parsed qualified host name.
type Name struct {
	Subdomain string // labels before the zone, e.g. "home"
	Zone      string // registrable domain, e.g. "example.com"
	FQDN      string // the full input name, e.g. "home.example.com"
}

// Parse decomposes a qualified host name into its subdomain and
// registrable zone. The name must have at least three labels: the zone
// is always the last two labels, everything before it is the subdomain.
// Empty labels (leading, trailing, or doubled dots) are rejected.
func Parse(fqdn string) (Name, error) {
	if fqdn == "" {
		return Name{}, fmt.Errorf("%w: empty name", types.ErrInvalidDomain)
	}

	if _, ok := dns.IsDomainName(fqdn); !ok {
		return Name{}, fmt.Errorf("%w: %q is not a valid domain name", types.ErrInvalidDomain, fqdn)
	}

	labels := strings.Split(fqdn, ".")
	if len(labels) < 3 {
		return Name{}, fmt.Errorf("%w: %q needs a subdomain and a registrable domain (e.g. home.example.com)",
			types.ErrInvalidDomain, fqdn)
	}

	for _, label := range labels {
		if label == "" {
			return Name{}, fmt.Errorf("%w: %q contains an empty label", types.ErrInvalidDomain, fqdn)
		}
	}

	return Name{
		Subdomain: strings.Join(labels[:len(labels)-2], "."),
		Zone:      strings.Join(labels[len(labels)-2:], "."),
		FQDN:      fqdn,
	}, nil
}
