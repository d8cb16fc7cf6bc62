// Package geoip resolves the origin country of update callers for
// audit logging using MaxMind MMDB databases.
package geoip

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// CountryLookup resolves an IP address to an ISO country code.
type CountryLookup interface {
	Country(ip net.IP) (string, error)
}

// Reader wraps a MaxMind MMDB database. It implements CountryLookup.
type Reader struct {
	db *geoip2.Reader
}

// NewReader opens the MMDB file at the given path. The caller must
// call Close when finished.
func NewReader(mmdbPath string) (*Reader, error) {
	db, err := geoip2.Open(mmdbPath)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db}, nil
}

// Close releases the underlying MMDB database resources.
func (r *Reader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Country returns the ISO 3166-1 code for the given IP address, or an
// empty string when the database has no entry for it.
func (r *Reader) Country(ip net.IP) (string, error) {
	record, err := r.db.Country(ip)
	if err != nil {
		return "", err
	}
	return record.Country.IsoCode, nil
}
