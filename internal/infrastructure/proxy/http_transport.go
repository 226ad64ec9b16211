// Package proxy talks to the kgq query proxy over HTTP.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

const maxResponseBytes = 64 << 20

// RequestIDHeader carries a per-request identifier to the proxy.
const RequestIDHeader = "X-Request-ID"

// HTTPTransport implements ports.QueryTransport against the proxy's /api routes.
type HTTPTransport struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
}

// NewHTTPTransport creates a transport. timeout is applied to every request.
func NewHTTPTransport(baseURL string, timeout time.Duration, logger ports.Logger) *HTTPTransport {
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}
	return &HTTPTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// BaseURL returns the proxy address.
func (t *HTTPTransport) BaseURL() string { return t.baseURL }

type endpointBody struct {
	Endpoint   string `json:"endpoint"`
	Repository string `json:"repository"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
}

func newEndpointBody(ep domain.Endpoint) endpointBody {
	body := endpointBody{Endpoint: ep.URL, Repository: ep.Repository}
	if !ep.Credentials.Empty() {
		body.Username = ep.Credentials.Username
		body.Password = ep.Credentials.Password
	}
	return body
}

type queryBody struct {
	Sparql string `json:"sparql"`
	Format string `json:"format"`
	endpointBody
}

// envelope covers every proxy response shape.
type envelope struct {
	Success      *bool           `json:"success"`
	Results      json.RawMessage `json:"results"`
	TestResult   json.RawMessage `json:"test_result"`
	Repositories json.RawMessage `json:"repositories"`
	Message      string          `json:"message"`
	Detail       json.RawMessage `json:"detail"`
}

// Query implements ports.QueryTransport.
func (t *HTTPTransport) Query(ctx context.Context, req domain.QueryRequest) (ports.TransportResponse, error) {
	body := queryBody{Sparql: req.Text, Format: string(req.Format), endpointBody: newEndpointBody(req.Endpoint)}
	env, status, err := t.do(ctx, http.MethodPost, "/api/query", body)
	if err != nil || !isSuccess(status) {
		return errorResponse(status, env), err
	}
	if env.Success == nil {
		return ports.TransportResponse{}, malformed(fmt.Errorf("response has no success flag"))
	}
	resp := ports.TransportResponse{Status: status, Success: *env.Success, Detail: env.detail()}
	if resp.Success {
		payload, err := decodeRaw(env.Results)
		if err != nil {
			return ports.TransportResponse{}, err
		}
		resp.Payload = payload
	}
	return resp, nil
}

// TestConnection implements ports.QueryTransport.
func (t *HTTPTransport) TestConnection(ctx context.Context, endpoint domain.Endpoint) (ports.TransportResponse, error) {
	env, status, err := t.do(ctx, http.MethodPost, "/api/test-connection", newEndpointBody(endpoint))
	if err != nil || !isSuccess(status) {
		return errorResponse(status, env), err
	}
	payload, err := decodeRaw(env.TestResult)
	if err != nil {
		return ports.TransportResponse{}, err
	}
	return ports.TransportResponse{
		Status:  status,
		Success: env.Success != nil && *env.Success,
		Payload: payload,
		Detail:  env.detail(),
	}, nil
}

// ListRepositories implements ports.QueryTransport.
func (t *HTTPTransport) ListRepositories(ctx context.Context, endpointURL string) (ports.TransportResponse, error) {
	path := "/api/repositories"
	if endpointURL != "" {
		path += "?" + url.Values{"endpoint": {endpointURL}}.Encode()
	}
	env, status, err := t.do(ctx, http.MethodGet, path, nil)
	if err != nil || !isSuccess(status) {
		return errorResponse(status, env), err
	}
	payload, err := decodeRaw(env.Repositories)
	if err != nil {
		return ports.TransportResponse{}, err
	}
	return ports.TransportResponse{
		Status:  status,
		Success: env.Success == nil || *env.Success,
		Payload: payload,
		Detail:  env.detail(),
	}, nil
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body any) (envelope, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return envelope{}, 0, err
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return envelope{}, 0, err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	t.debug("proxy request", map[string]interface{}{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return envelope{}, 0, classified(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, resp.StatusCode, classified(err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if !isSuccess(resp.StatusCode) {
			// non-JSON error bodies are still a usable status
			return envelope{Message: strings.TrimSpace(string(raw))}, resp.StatusCode, nil
		}
		return envelope{}, resp.StatusCode, malformed(fmt.Errorf("decode proxy response: %w", err))
	}
	return env, resp.StatusCode, nil
}

func errorResponse(status int, env envelope) ports.TransportResponse {
	return ports.TransportResponse{Status: status, Detail: env.detail()}
}

func (e envelope) detail() string {
	if len(e.Detail) > 0 {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil {
			return s
		}
		return string(e.Detail)
	}
	return e.Message
}

func decodeRaw(raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, malformed(err)
	}
	return v, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

func (t *HTTPTransport) debug(msg string, fields map[string]interface{}) {
	if t.logger != nil {
		t.logger.Debug(msg, fields)
	}
}

var _ ports.QueryTransport = (*HTTPTransport)(nil)
