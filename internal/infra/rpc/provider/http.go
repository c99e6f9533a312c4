package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 512

// HTTPProvider issues JSON REST GET requests over HTTP.
type HTTPProvider struct {
	name       string
	endpoint   string
	userAgent  string
	httpClient *http.Client

	Monitor *ProviderMonitor
}

// NewHTTPProvider creates a new HTTP provider. A zero timeout means none.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name:     name,
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Monitor: NewProviderMonitor(),
	}
}

// SetUserAgent sets the User-Agent header sent with every request.
func (p *HTTPProvider) SetUserAgent(ua string) {
	p.userAgent = ua
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// Get fetches path relative to the endpoint and decodes the JSON result.
func (p *HTTPProvider) Get(ctx context.Context, path string) (any, error) {
	url := p.endpoint + "/" + strings.TrimLeft(path, "/")

	body, latency, err := p.do(ctx, url)
	if err != nil {
		return nil, err
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		p.Monitor.RecordFailure()
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	p.Monitor.RecordRequest(latency)
	return result, nil
}

// do sends the request and returns the body of a 2xx response with its
// latency. Transport and status failures are recorded here; the caller records
// the outcome of decoding.
func (p *HTTPProvider) do(ctx context.Context, url string) ([]byte, time.Duration, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.Monitor.RecordFailure()
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.Monitor.RecordFailure()
		return nil, 0, fmt.Errorf("GET %s: %w", p.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.Monitor.RecordFailure()
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		p.Monitor.RecordThrottle()
	}
	if resp.StatusCode/100 != 2 {
		p.Monitor.RecordFailure()
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, 0, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(msg)}
	}

	return body, time.Since(start), nil
}
