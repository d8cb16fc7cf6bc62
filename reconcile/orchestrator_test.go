package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/porkdyn/porkdyn/provider"
	"github.com/porkdyn/porkdyn/types"
)

func validRequest() Request {
	return Request{
		APIKey:       "pk1_test",
		SecretAPIKey: "sk1_test",
		Domain:       "home.example.com",
		IP:           "192.168.1.100",
	}
}

type denyAllPolicy struct{}

func (denyAllPolicy) Allowed(string) bool { return false }

func TestRun_MissingParameters(t *testing.T) {
	orch := NewOrchestrator(provider.NewMemory(), OrchestratorConfig{})

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"missing apikey", func(r *Request) { r.APIKey = "" }},
		{"missing secretapikey", func(r *Request) { r.SecretAPIKey = "" }},
		{"missing domain", func(r *Request) { r.Domain = "" }},
		{"missing both addresses", func(r *Request) { r.IP = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := orch.Run(context.Background(), req)
			if !errors.Is(err, types.ErrMissingParameter) {
				t.Errorf("Run error = %v, want ErrMissingParameter", err)
			}
		})
	}
}

func TestRun_InvalidDomain_NoProviderCall(t *testing.T) {
	gw := provider.NewMemory()
	orch := NewOrchestrator(gw, OrchestratorConfig{})

	req := validRequest()
	req.Domain = "example.com" // registrable domain only

	_, err := orch.Run(context.Background(), req)
	if !errors.Is(err, types.ErrInvalidDomain) {
		t.Fatalf("Run error = %v, want ErrInvalidDomain", err)
	}
	if gw.Len() != 0 {
		t.Error("provider was called despite validation failure")
	}
}

func TestRun_InvalidAddress_NoProviderCall(t *testing.T) {
	gw := provider.NewMemory()
	orch := NewOrchestrator(gw, OrchestratorConfig{})

	req := validRequest()
	req.IP = "not-an-ip"

	_, err := orch.Run(context.Background(), req)
	if !errors.Is(err, types.ErrInvalidAddress) {
		t.Fatalf("Run error = %v, want ErrInvalidAddress", err)
	}
	if gw.Len() != 0 {
		t.Error("provider was called despite validation failure")
	}
}

func TestRun_FamilyCrossCheck(t *testing.T) {
	orch := NewOrchestrator(provider.NewMemory(), OrchestratorConfig{})

	t.Run("ipv6 literal in ip parameter", func(t *testing.T) {
		req := validRequest()
		req.IP = "2001:db8::1"

		_, err := orch.Run(context.Background(), req)
		if !errors.Is(err, types.ErrInvalidAddress) {
			t.Errorf("Run error = %v, want ErrInvalidAddress", err)
		}
	})

	t.Run("ipv4 literal in ipv6 parameter", func(t *testing.T) {
		req := validRequest()
		req.IP = ""
		req.IPv6 = "192.168.1.100"

		_, err := orch.Run(context.Background(), req)
		if !errors.Is(err, types.ErrInvalidAddress) {
			t.Errorf("Run error = %v, want ErrInvalidAddress", err)
		}
	})
}

func TestRun_PolicyDeniesDomain(t *testing.T) {
	gw := provider.NewMemory()
	orch := NewOrchestrator(gw, OrchestratorConfig{Policy: denyAllPolicy{}})

	_, err := orch.Run(context.Background(), validRequest())
	if !errors.Is(err, types.ErrDomainNotAllowed) {
		t.Fatalf("Run error = %v, want ErrDomainNotAllowed", err)
	}
	if gw.Len() != 0 {
		t.Error("provider was called despite policy denial")
	}
}

func TestRun_SingleFamilyCreate(t *testing.T) {
	orch := NewOrchestrator(provider.NewMemory(), OrchestratorConfig{})

	result, err := orch.Run(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if result.Status != types.StatusSuccess {
		t.Errorf("status = %v, want success", result.Status)
	}
	if out := result.Outcomes[types.RecordTypeA]; out.Action != types.ActionCreated {
		t.Errorf("A outcome = %v, want created", out.Action)
	}
	if !strings.Contains(result.Message, "IPv4 record created") {
		t.Errorf("message = %q, want IPv4 create notice", result.Message)
	}
}

func TestRun_UnchangedMentionedInMessage(t *testing.T) {
	gw := provider.NewMemory()
	orch := NewOrchestrator(gw, OrchestratorConfig{})
	ctx := context.Background()

	if _, err := orch.Run(ctx, validRequest()); err != nil {
		t.Fatalf("first Run error = %v", err)
	}

	result, err := orch.Run(ctx, validRequest())
	if err != nil {
		t.Fatalf("second Run error = %v", err)
	}
	if result.Status != types.StatusSuccess {
		t.Errorf("status = %v, want success", result.Status)
	}
	if out := result.Outcomes[types.RecordTypeA]; out.Action != types.ActionSkipped {
		t.Errorf("A outcome = %v, want skipped", out.Action)
	}
	if !strings.Contains(result.Message, "unchanged") {
		t.Errorf("message = %q, want mention of unchanged", result.Message)
	}
}

func TestRun_DualStackSuccess(t *testing.T) {
	orch := NewOrchestrator(provider.NewMemory(), OrchestratorConfig{})

	req := validRequest()
	req.IPv6 = "2001:db8::1"

	result, err := orch.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if result.Status != types.StatusSuccess {
		t.Errorf("status = %v, want success", result.Status)
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(result.Outcomes))
	}
	if out := result.Outcomes[types.RecordTypeAAAA]; out.Action != types.ActionCreated {
		t.Errorf("AAAA outcome = %v, want created", out.Action)
	}
}

func TestRun_DualStackPartialFailure(t *testing.T) {
	gw := &faultyGateway{
		Gateway:   provider.NewMemory(),
		fetchErr:  types.ErrProviderRejected,
		failTypes: map[types.RecordType]bool{types.RecordTypeAAAA: true},
	}
	orch := NewOrchestrator(gw, OrchestratorConfig{})

	req := validRequest()
	req.IPv6 = "2001:db8::1"

	result, err := orch.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if result.Status != types.StatusPartial {
		t.Errorf("status = %v, want partial", result.Status)
	}
	if out := result.Outcomes[types.RecordTypeA]; out.Action != types.ActionCreated {
		t.Errorf("A outcome = %v, want created despite AAAA failure", out.Action)
	}
	if out := result.Outcomes[types.RecordTypeAAAA]; !errors.Is(out.Err, types.ErrProviderRejected) {
		t.Errorf("AAAA err = %v, want ErrProviderRejected", out.Err)
	}
	if !strings.Contains(result.Message, "IPv6 failed") {
		t.Errorf("message = %q, failed family must be reported", result.Message)
	}
}

func TestRun_AllFamiliesFailed(t *testing.T) {
	gw := &faultyGateway{Gateway: provider.NewMemory(), fetchErr: types.ErrProviderUnavailable}
	orch := NewOrchestrator(gw, OrchestratorConfig{})

	req := validRequest()
	req.IPv6 = "2001:db8::1"

	result, err := orch.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if result.Status != types.StatusError {
		t.Errorf("status = %v, want error", result.Status)
	}
}

func TestCombinedStatus(t *testing.T) {
	ok := types.Outcome{Action: types.ActionUpdated}
	bad := types.Outcome{Action: types.ActionFailed, Err: types.ErrProviderUnavailable}

	tests := []struct {
		name     string
		outcomes map[types.RecordType]types.Outcome
		want     types.Status
	}{
		{"single success", map[types.RecordType]types.Outcome{types.RecordTypeA: ok}, types.StatusSuccess},
		{"single failure", map[types.RecordType]types.Outcome{types.RecordTypeA: bad}, types.StatusError},
		{"both succeed", map[types.RecordType]types.Outcome{types.RecordTypeA: ok, types.RecordTypeAAAA: ok}, types.StatusSuccess},
		{"both fail", map[types.RecordType]types.Outcome{types.RecordTypeA: bad, types.RecordTypeAAAA: bad}, types.StatusError},
		{"mixed", map[types.RecordType]types.Outcome{types.RecordTypeA: ok, types.RecordTypeAAAA: bad}, types.StatusPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := combinedStatus(tt.outcomes); got != tt.want {
				t.Errorf("combinedStatus = %v, want %v", got, tt.want)
			}
		})
	}
}
