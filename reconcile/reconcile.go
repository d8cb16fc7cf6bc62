// Package reconcile decides whether a provider's address records need
// creation, update, or no action for a submitted IP address, and runs
// that decision independently per address family.
package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/porkdyn/porkdyn/dnsname"
	"github.com/porkdyn/porkdyn/provider"
	"github.com/porkdyn/porkdyn/types"
)

// DefaultTTL is advertised on every record this service creates or
// updates. Porkbun's minimum is 600 seconds.
const DefaultTTL = 600

// ReconcileRecord compares the desired value against the provider's
// published record for one address family and applies the minimal
// change: nothing when the value matches exactly, a create when no
// record exists, an update otherwise. At most two provider calls are
// made and none is retried. The comparison is byte-for-byte; an IPv6
// value published in a different zero-compression is treated as changed
// so provider-side formatting drift stays visible.
func ReconcileRecord(ctx context.Context, gw provider.Gateway, creds provider.Credentials, name dnsname.Name, rt types.RecordType, value string, ttl int) types.Outcome {
	existing, err := gw.Fetch(ctx, creds, name, rt)
	switch {
	case errors.Is(err, types.ErrRecordNotFound):
		id, err := gw.Create(ctx, creds, name, rt, value, ttl)
		if err != nil {
			slog.Error("record create failed", "name", name.FQDN, "type", rt, "error", err)
			return types.Outcome{Action: types.ActionFailed, Err: err}
		}
		slog.Info("record created", "name", name.FQDN, "type", rt, "id", id, "value", value)
		return types.Outcome{Action: types.ActionCreated, RecordID: id}

	case err != nil:
		slog.Error("record fetch failed", "name", name.FQDN, "type", rt, "error", err)
		return types.Outcome{Action: types.ActionFailed, Err: err}
	}

	if existing.Value == value {
		slog.Info("record unchanged", "name", name.FQDN, "type", rt, "id", existing.ID)
		return types.Outcome{Action: types.ActionSkipped, RecordID: existing.ID}
	}

	if err := gw.Update(ctx, creds, existing.ID, name, rt, value, ttl); err != nil {
		slog.Error("record update failed", "name", name.FQDN, "type", rt, "id", existing.ID, "error", err)
		return types.Outcome{Action: types.ActionFailed, Err: err}
	}
	slog.Info("record updated", "name", name.FQDN, "type", rt, "id", existing.ID,
		"old", existing.Value, "new", value)
	return types.Outcome{Action: types.ActionUpdated, RecordID: existing.ID}
}
