package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/porkdyn/porkdyn/dnsname"
	"github.com/porkdyn/porkdyn/provider"
	"github.com/porkdyn/porkdyn/reconcile"
	"github.com/porkdyn/porkdyn/types"
)

func setupTestRouter(t *testing.T, gw provider.Gateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orch := reconcile.NewOrchestrator(gw, reconcile.OrchestratorConfig{})
	srv := NewServer(ServerConfig{Listen: ":0"}, orch, nil)
	return srv.Engine()
}

func doUpdate(router *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/update?"+query, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseUpdateResponse(t *testing.T, w *httptest.ResponseRecorder) UpdateResponse {
	t.Helper()
	var resp UpdateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v, body: %s", err, w.Body.String())
	}
	return resp
}

// rejectAAAAGateway fails every AAAA operation with a provider error.
type rejectAAAAGateway struct {
	provider.Gateway
}

func (g rejectAAAAGateway) Fetch(ctx context.Context, creds provider.Credentials, name dnsname.Name, rt types.RecordType) (provider.Record, error) {
	if rt == types.RecordTypeAAAA {
		return provider.Record{}, types.ErrProviderRejected
	}
	return g.Gateway.Fetch(ctx, creds, name, rt)
}

const validQuery = "apikey=pk1_test&secretapikey=sk1_test&domain=home.example.com&ip=192.168.1.100"

// --- Health & Status ---

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t, provider.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("GET /health status = %d, want 200", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	router := setupTestRouter(t, provider.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("GET /status status = %d, want 200", w.Code)
	}
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Code != 0 {
		t.Errorf("response code = %d, want 0", resp.Code)
	}
}

// --- Update validation ---

func TestUpdate_MissingParameters(t *testing.T) {
	router := setupTestRouter(t, provider.NewMemory())

	tests := []struct {
		name  string
		query string
		want  string // substring the error message must name
	}{
		{"no parameters", "", "apikey"},
		{"missing secretapikey", "apikey=pk1_test", "secretapikey"},
		{"missing domain", "apikey=pk1_test&secretapikey=sk1_test", "domain"},
		{"missing addresses", "apikey=pk1_test&secretapikey=sk1_test&domain=home.example.com", "ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doUpdate(router, tt.query)
			if w.Code != 400 {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			resp := parseUpdateResponse(t, w)
			if resp.Status != "error" {
				t.Errorf("response status = %q, want error", resp.Status)
			}
			if !strings.Contains(resp.Message, tt.want) {
				t.Errorf("message = %q, want mention of %q", resp.Message, tt.want)
			}
		})
	}
}

func TestUpdate_InvalidDomain(t *testing.T) {
	router := setupTestRouter(t, provider.NewMemory())

	w := doUpdate(router, "apikey=pk1_test&secretapikey=sk1_test&domain=example.com&ip=192.168.1.100")
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdate_InvalidAddress(t *testing.T) {
	router := setupTestRouter(t, provider.NewMemory())

	w := doUpdate(router, "apikey=pk1_test&secretapikey=sk1_test&domain=home.example.com&ip=not-an-ip")
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := parseUpdateResponse(t, w)
	if resp.Status != "error" {
		t.Errorf("response status = %q, want error", resp.Status)
	}
}

// --- Update outcomes ---

func TestUpdate_CreatesRecord(t *testing.T) {
	gw := provider.NewMemory()
	router := setupTestRouter(t, gw)

	w := doUpdate(router, validQuery)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	resp := parseUpdateResponse(t, w)
	if resp.Status != "success" {
		t.Errorf("response status = %q, want success", resp.Status)
	}
	if gw.Len() != 1 {
		t.Errorf("provider records = %d, want 1", gw.Len())
	}
}

func TestUpdate_RepeatIsUnchanged(t *testing.T) {
	router := setupTestRouter(t, provider.NewMemory())

	if w := doUpdate(router, validQuery); w.Code != 200 {
		t.Fatalf("first update status = %d", w.Code)
	}

	w := doUpdate(router, validQuery)
	resp := parseUpdateResponse(t, w)
	if resp.Status != "success" {
		t.Errorf("response status = %q, want success", resp.Status)
	}
	if !strings.Contains(resp.Message, "unchanged") {
		t.Errorf("message = %q, want mention of unchanged", resp.Message)
	}
}

func TestUpdate_DualStackPartial(t *testing.T) {
	router := setupTestRouter(t, rejectAAAAGateway{Gateway: provider.NewMemory()})

	w := doUpdate(router, validQuery+"&ipv6=2001:db8::1")
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := parseUpdateResponse(t, w)
	if resp.Status != "partial" {
		t.Errorf("response status = %q, want partial", resp.Status)
	}
	if !strings.Contains(resp.Message, "IPv6 failed") {
		t.Errorf("message = %q, failed family must be reported", resp.Message)
	}
}

func TestUpdate_AllFailed(t *testing.T) {
	router := setupTestRouter(t, rejectAAAAGateway{Gateway: provider.NewMemory()})

	w := doUpdate(router, "apikey=pk1_test&secretapikey=sk1_test&domain=home.example.com&ipv6=2001:db8::1")
	if w.Code != 502 {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	resp := parseUpdateResponse(t, w)
	if resp.Status != "error" {
		t.Errorf("response status = %q, want error", resp.Status)
	}
}
