// Package types defines the record types, reconciliation outcomes, and
// sentinel errors shared across the porkdyn module.
package types

import "errors"

// RecordType represents a DNS record type. Only address records are
// managed; everything else is out of scope for a dynamic-DNS updater.
type RecordType string

const (
	RecordTypeA    RecordType = "A"
	RecordTypeAAAA RecordType = "AAAA"
)

// IsValid reports whether the RecordType is a managed record type.
func (rt RecordType) IsValid() bool {
	return rt == RecordTypeA || rt == RecordTypeAAAA
}

// Action describes what the reconciler did for one address family.
type Action string

const (
	// ActionSkipped means the published record already carried the
	// desired value and no write was issued.
	ActionSkipped Action = "skipped"

	// ActionCreated means no record of that type existed and one was created.
	ActionCreated Action = "created"

	// ActionUpdated means an existing record was rewritten with the new value.
	ActionUpdated Action = "updated"

	// ActionFailed means a provider call failed; Outcome.Err carries the cause.
	ActionFailed Action = "failed"
)

// Outcome is the result of reconciling a single address family.
type Outcome struct {
	Action   Action
	RecordID string // provider-assigned id, set for created and updated records
	Err      error  // set only when Action is ActionFailed
}

// Failed reports whether the outcome represents a provider failure.
func (o Outcome) Failed() bool {
	return o.Action == ActionFailed
}

// Status is the combined result of an update request across families.
type Status string

const (
	StatusSuccess Status = "success" // every requested family skipped, created, or updated
	StatusPartial Status = "partial" // one family succeeded, the other failed
	StatusError   Status = "error"   // every requested family failed
)

// Result aggregates the per-family outcomes of one update request.
type Result struct {
	Outcomes map[RecordType]Outcome
	Status   Status
	Message  string
}

// Sentinel errors for request validation and provider interaction.
var (
	// Validation failures, detected before any provider call.
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidDomain    = errors.New("invalid domain name")
	ErrInvalidAddress   = errors.New("invalid IP address")
	ErrDomainNotAllowed = errors.New("domain not in allowlist")

	// Provider-side failures, scoped to a single address family.
	ErrRecordNotFound      = errors.New("DNS record not found")
	ErrProviderUnavailable = errors.New("DNS provider unreachable")
	ErrProviderRejected    = errors.New("DNS provider rejected the request")
	ErrProviderRateLimited = errors.New("DNS provider rate limit exceeded")
)
