// Package provider defines the DNS provider gateway used by the
// reconciler, its Porkbun implementation, and an in-memory double.
package provider

import (
	"context"

	"github.com/porkdyn/porkdyn/dnsname"
	"github.com/porkdyn/porkdyn/types"
)

// Credentials is a Porkbun API key pair. It is passed through unchanged
// from the caller of the update endpoint; porkdyn never stores it.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Record is a DNS record as currently published by the provider. The ID
// is opaque and only meaningful for a subsequent Update call.
type Record struct {
	ID    string
	Type  types.RecordType
	Value string
}

// Gateway is the capability the reconciler needs from a DNS provider.
// Each call is a complete round trip; no caching or pooling is implied.
// Calls fail with types.ErrProviderUnavailable (transport fault),
// types.ErrProviderRejected (authentication or request error reported by
// the remote side), or types.ErrProviderRateLimited.
type Gateway interface {
	// Fetch returns the record of the given type published for the name.
	// Fails with types.ErrRecordNotFound when no such record exists.
	Fetch(ctx context.Context, creds Credentials, name dnsname.Name, rt types.RecordType) (Record, error)

	// Create publishes a new record and returns its provider-assigned id.
	Create(ctx context.Context, creds Credentials, name dnsname.Name, rt types.RecordType, value string, ttl int) (string, error)

	// Update rewrites the record with the given id.
	Update(ctx context.Context, creds Credentials, id string, name dnsname.Name, rt types.RecordType, value string, ttl int) error
}
