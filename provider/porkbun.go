package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/porkdyn/porkdyn/dnsname"
	"github.com/porkdyn/porkdyn/types"
)

const (
	// DefaultBaseURL is the Porkbun v3 JSON API endpoint.
	DefaultBaseURL = "https://api.porkbun.com/api/json/v3"

	// DefaultTimeout bounds each provider round trip so a stalled
	// request cannot block an invocation indefinitely.
	DefaultTimeout = 15 * time.Second

	statusSuccess = "SUCCESS"
)

// ClientConfig holds the configuration for the Porkbun API client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Client talks to the Porkbun DNS API. It implements Gateway. The
// credentials travel in each request body, as the API requires; the
// client itself is stateless and safe for concurrent use.
type Client struct {
	config ClientConfig
	http   *http.Client
}

// NewClient creates a Porkbun API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Wire types for the Porkbun JSON protocol.

type authRequest struct {
	APIKey    string `json:"apikey"`
	SecretKey string `json:"secretapikey"`
}

type recordRequest struct {
	APIKey    string `json:"apikey"`
	SecretKey string `json:"secretapikey"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	TTL       int    `json:"ttl"`
}

type wireRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type retrieveResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Records []wireRecord `json:"records"`
}

type createResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type editResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Fetch retrieves the published record of the given type for the name.
// Porkbun returns all records for subdomain+type; the one whose name
// equals the full qualified name is the record this service manages.
func (c *Client) Fetch(ctx context.Context, creds Credentials, name dnsname.Name, rt types.RecordType) (Record, error) {
	url := fmt.Sprintf("%s/dns/retrieveByNameType/%s/%s/%s", c.config.BaseURL, name.Zone, rt, name.Subdomain)

	var resp retrieveResponse
	if err := c.post(ctx, url, authRequest{APIKey: creds.APIKey, SecretKey: creds.SecretKey}, &resp); err != nil {
		return Record{}, err
	}
	if resp.Status != statusSuccess {
		return Record{}, rejectionError(resp.Message)
	}

	for _, rec := range resp.Records {
		if rec.Name == name.FQDN {
			return Record{ID: rec.ID, Type: types.RecordType(rec.Type), Value: rec.Content}, nil
		}
	}

	slog.Debug("no published record", "name", name.FQDN, "type", rt)
	return Record{}, fmt.Errorf("%w: no %s record for %s", types.ErrRecordNotFound, rt, name.FQDN)
}

// Create publishes a new record and returns the provider-assigned id.
func (c *Client) Create(ctx context.Context, creds Credentials, name dnsname.Name, rt types.RecordType, value string, ttl int) (string, error) {
	url := fmt.Sprintf("%s/dns/create/%s", c.config.BaseURL, name.Zone)
	body := recordRequest{
		APIKey:    creds.APIKey,
		SecretKey: creds.SecretKey,
		Name:      name.Subdomain,
		Type:      string(rt),
		Content:   value,
		TTL:       ttl,
	}

	var resp createResponse
	if err := c.post(ctx, url, body, &resp); err != nil {
		return "", err
	}
	if resp.Status != statusSuccess {
		return "", rejectionError(resp.Message)
	}

	id := strconv.FormatInt(resp.ID, 10)
	slog.Info("provider record created", "name", name.FQDN, "type", rt, "id", id)
	return id, nil
}

// Update rewrites the record with the given id.
func (c *Client) Update(ctx context.Context, creds Credentials, id string, name dnsname.Name, rt types.RecordType, value string, ttl int) error {
	url := fmt.Sprintf("%s/dns/edit/%s/%s", c.config.BaseURL, name.Zone, id)
	body := recordRequest{
		APIKey:    creds.APIKey,
		SecretKey: creds.SecretKey,
		Name:      name.Subdomain,
		Type:      string(rt),
		Content:   value,
		TTL:       ttl,
	}

	var resp editResponse
	if err := c.post(ctx, url, body, &resp); err != nil {
		return err
	}
	if resp.Status != statusSuccess {
		return rejectionError(resp.Message)
	}

	slog.Info("provider record updated", "name", name.FQDN, "type", rt, "id", id)
	return nil
}

// post sends a JSON request and decodes the JSON response, classifying
// failures into the provider error taxonomy.
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		// Porkbun signals overload with 503; intermediaries use 429.
		return fmt.Errorf("%w: HTTP %d", types.ErrProviderRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("%w: HTTP %d: %s", types.ErrProviderRejected, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%w: HTTP %d", types.ErrProviderRejected, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", types.ErrProviderUnavailable, err)
	}
	return nil
}

func rejectionError(message string) error {
	if message == "" {
		return types.ErrProviderRejected
	}
	return fmt.Errorf("%w: %s", types.ErrProviderRejected, message)
}
