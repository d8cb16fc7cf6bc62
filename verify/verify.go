// Package verify probes public resolvers after a record write to check
// whether the new value is visible yet. Results are logged only; the
// probe never influences the outcome of an update request.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/miekg/dns"

	"github.com/porkdyn/porkdyn/types"
)

// ProberConfig holds configuration for propagation probes.
type ProberConfig struct {
	Servers []string      // resolver addresses, e.g. "1.1.1.1:53"
	Timeout time.Duration // per-query timeout
}

// DefaultProberConfig returns a ProberConfig with sensible defaults.
func DefaultProberConfig() ProberConfig {
	return ProberConfig{
		Servers: []string{"1.1.1.1:53", "8.8.8.8:53"},
		Timeout: 5 * time.Second,
	}
}

// Prober queries resolvers for freshly written records.
type Prober struct {
	config ProberConfig
	client *dns.Client
}

// NewProber creates a Prober with the given configuration.
func NewProber(cfg ProberConfig) *Prober {
	if len(cfg.Servers) == 0 {
		cfg.Servers = DefaultProberConfig().Servers
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultProberConfig().Timeout
	}
	return &Prober{
		config: cfg,
		client: &dns.Client{
			Net:     "udp",
			Timeout: cfg.Timeout,
		},
	}
}

// Visible queries the configured resolvers for the record and reports
// whether any of them already answers with the wanted value. Servers
// are tried in order; transport errors fall through to the next one.
func (p *Prober) Visible(ctx context.Context, fqdn string, rt types.RecordType, want string) (bool, error) {
	qtype := dns.TypeA
	if rt == types.RecordTypeAAAA {
		qtype = dns.TypeAAAA
	}

	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(fqdn), qtype)
	query.RecursionDesired = true

	var lastErr error
	for _, server := range p.config.Servers {
		resp, _, err := p.client.ExchangeContext(ctx, query, server)
		if err != nil {
			slog.Debug("propagation query failed, trying next server",
				"server", server,
				"name", fqdn,
				"error", err,
			)
			lastErr = err
			continue
		}

		for _, rr := range resp.Answer {
			if rrValue(rr) == want {
				return true, nil
			}
		}
		return false, nil
	}

	if lastErr != nil {
		return false, fmt.Errorf("all resolvers failed: %w", lastErr)
	}
	return false, fmt.Errorf("no resolvers configured")
}

// Report runs a probe with its own deadline and logs the result. It
// satisfies the reconcile.Verifier interface and is called from a
// fire-and-forget goroutine after a create or update.
func (p *Prober) Report(fqdn string, rt types.RecordType, want string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout*time.Duration(len(p.config.Servers)))
	defer cancel()

	visible, err := p.Visible(ctx, fqdn, rt, want)
	if err != nil {
		slog.Warn("propagation check failed", "name", fqdn, "type", rt, "error", err)
		return
	}
	slog.Info("propagation check", "name", fqdn, "type", rt, "value", want, "visible", visible)
}

// rrValue extracts the address value from an answer record. Non-address
// records (e.g. a CNAME in the chain) yield an empty string.
func rrValue(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String()
	case *dns.AAAA:
		return v.AAAA.String()
	default:
		return ""
	}
}
