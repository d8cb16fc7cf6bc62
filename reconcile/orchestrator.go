package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/porkdyn/porkdyn/dnsname"
	"github.com/porkdyn/porkdyn/ipaddr"
	"github.com/porkdyn/porkdyn/provider"
	"github.com/porkdyn/porkdyn/types"
)

// Request carries the raw parameters of one update invocation, exactly
// as the transport layer received them.
type Request struct {
	APIKey       string
	SecretAPIKey string
	Domain       string
	IP           string // optional IPv4 literal
	IPv6         string // optional IPv6 literal
}

// DomainPolicy decides which qualified names this service may update.
type DomainPolicy interface {
	Allowed(fqdn string) bool
}

// Verifier is notified after a record was written so it can probe
// public resolvers for the new value. Implementations only log; they
// never influence the request outcome.
type Verifier interface {
	Report(fqdn string, rt types.RecordType, want string)
}

// OrchestratorConfig holds the orchestrator's tunables.
type OrchestratorConfig struct {
	TTL      int          // record TTL, DefaultTTL when zero
	Policy   DomainPolicy // nil allows every domain
	Verifier Verifier     // nil disables propagation probes
}

// Orchestrator validates update requests and runs the per-family
// reconciliation against a provider gateway.
type Orchestrator struct {
	gateway  provider.Gateway
	ttl      int
	policy   DomainPolicy
	verifier Verifier
}

// NewOrchestrator creates an Orchestrator backed by the given gateway.
func NewOrchestrator(gw provider.Gateway, cfg OrchestratorConfig) *Orchestrator {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Orchestrator{
		gateway:  gw,
		ttl:      ttl,
		policy:   cfg.Policy,
		verifier: cfg.Verifier,
	}
}

// Run validates the request, then reconciles each submitted address
// family independently and aggregates the outcomes. Validation failures
// return a non-nil error before any provider call is made; provider
// failures never surface as an error here, they degrade the affected
// family's outcome and the combined status instead.
func (o *Orchestrator) Run(ctx context.Context, req Request) (types.Result, error) {
	if err := validateParameters(req); err != nil {
		return types.Result{}, err
	}

	name, err := dnsname.Parse(req.Domain)
	if err != nil {
		return types.Result{}, err
	}

	if o.policy != nil && !o.policy.Allowed(name.FQDN) {
		return types.Result{}, fmt.Errorf("%w: %s", types.ErrDomainNotAllowed, name.FQDN)
	}

	// Classify before touching the provider. A literal of the wrong
	// family in either parameter fails the whole request.
	var v4, v6 ipaddr.Address
	if req.IP != "" {
		v4, err = ipaddr.Classify(req.IP)
		if err != nil {
			return types.Result{}, err
		}
		if v4.Family != ipaddr.FamilyIPv4 {
			return types.Result{}, fmt.Errorf("%w: parameter 'ip' must be an IPv4 literal, got %q", types.ErrInvalidAddress, req.IP)
		}
	}
	if req.IPv6 != "" {
		v6, err = ipaddr.Classify(req.IPv6)
		if err != nil {
			return types.Result{}, err
		}
		if v6.Family != ipaddr.FamilyIPv6 {
			return types.Result{}, fmt.Errorf("%w: parameter 'ipv6' must be an IPv6 literal, got %q", types.ErrInvalidAddress, req.IPv6)
		}
	}

	creds := provider.Credentials{APIKey: req.APIKey, SecretKey: req.SecretAPIKey}
	outcomes := make(map[types.RecordType]types.Outcome, 2)

	// The two families share nothing, so they run concurrently; each
	// writes to its own map slot after the join.
	var wg sync.WaitGroup
	var outA, outAAAA types.Outcome

	if req.IP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outA = ReconcileRecord(ctx, o.gateway, creds, name, types.RecordTypeA, v4.Text, o.ttl)
		}()
	}
	if req.IPv6 != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outAAAA = ReconcileRecord(ctx, o.gateway, creds, name, types.RecordTypeAAAA, v6.Text, o.ttl)
		}()
	}
	wg.Wait()

	if req.IP != "" {
		outcomes[types.RecordTypeA] = outA
		o.notifyVerifier(name.FQDN, types.RecordTypeA, v4.Text, outA)
	}
	if req.IPv6 != "" {
		outcomes[types.RecordTypeAAAA] = outAAAA
		o.notifyVerifier(name.FQDN, types.RecordTypeAAAA, v6.Text, outAAAA)
	}

	return types.Result{
		Outcomes: outcomes,
		Status:   combinedStatus(outcomes),
		Message:  combinedMessage(outcomes),
	}, nil
}

func (o *Orchestrator) notifyVerifier(fqdn string, rt types.RecordType, value string, out types.Outcome) {
	if o.verifier == nil {
		return
	}
	if out.Action != types.ActionCreated && out.Action != types.ActionUpdated {
		return
	}
	go o.verifier.Report(fqdn, rt, value)
}

func validateParameters(req Request) error {
	switch {
	case req.APIKey == "":
		return fmt.Errorf("%w: 'apikey'", types.ErrMissingParameter)
	case req.SecretAPIKey == "":
		return fmt.Errorf("%w: 'secretapikey'", types.ErrMissingParameter)
	case req.Domain == "":
		return fmt.Errorf("%w: 'domain'", types.ErrMissingParameter)
	case req.IP == "" && req.IPv6 == "":
		return fmt.Errorf("%w: at least one of 'ip' and 'ipv6'", types.ErrMissingParameter)
	}
	return nil
}

// combinedStatus derives the overall status: success when nothing
// failed, error when everything failed, partial otherwise.
func combinedStatus(outcomes map[types.RecordType]types.Outcome) types.Status {
	failed := 0
	for _, out := range outcomes {
		if out.Failed() {
			failed++
		}
	}
	switch failed {
	case 0:
		return types.StatusSuccess
	case len(outcomes):
		return types.StatusError
	default:
		return types.StatusPartial
	}
}

// combinedMessage renders a per-family summary, IPv4 first.
func combinedMessage(outcomes map[types.RecordType]types.Outcome) string {
	var parts []string
	for _, rt := range []types.RecordType{types.RecordTypeA, types.RecordTypeAAAA} {
		out, ok := outcomes[rt]
		if !ok {
			continue
		}
		parts = append(parts, familyMessage(rt, out))
	}
	return strings.Join(parts, ", ")
}

func familyMessage(rt types.RecordType, out types.Outcome) string {
	family := "IPv4"
	if rt == types.RecordTypeAAAA {
		family = "IPv6"
	}

	switch out.Action {
	case types.ActionSkipped:
		return fmt.Sprintf("%s skipped (unchanged)", family)
	case types.ActionCreated:
		return fmt.Sprintf("%s record created (id %s)", family, out.RecordID)
	case types.ActionUpdated:
		return fmt.Sprintf("%s record updated (id %s)", family, out.RecordID)
	default:
		return fmt.Sprintf("%s failed: %v", family, out.Err)
	}
}
