// Package predict talks to the remote scoring services: the symptom
// assessor, the thyroid lab classifier, the lung risk model and the
// brain-scan classifier.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abhisek/carescope/internal/config"
	"github.com/abhisek/carescope/internal/store"
)

// Service names one remote backend.
type Service string

const (
	ServiceAssess  Service = "assess"
	ServiceThyroid Service = "thyroid"
	ServiceLung    Service = "lung"
	ServiceBrain   Service = "brain"
)

// Services lists every backend in display order.
var Services = []Service{ServiceAssess, ServiceThyroid, ServiceLung, ServiceBrain}

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Client calls the scoring services. It is safe for concurrent use.
type Client struct {
	endpoints  config.Endpoints
	httpClient *http.Client
	history    store.AssessmentRepo
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHistory records every call in repo.
func WithHistory(repo store.AssessmentRepo) Option {
	return func(c *Client) { c.history = repo }
}

// New creates a Client. A zero timeout leaves requests unbounded except
// by the caller's context.
func New(endpoints config.Endpoints, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) baseURL(s Service) string {
	var u string
	switch s {
	case ServiceAssess:
		u = c.endpoints.Assess
	case ServiceThyroid:
		u = c.endpoints.Thyroid
	case ServiceLung:
		u = c.endpoints.Lung
	case ServiceBrain:
		u = c.endpoints.Brain
	}
	return strings.TrimRight(u, "/")
}

// call is one request/response exchange.
type call struct {
	service     Service
	method      string
	path        string
	token       string
	contentType string
	body        []byte
	// schema the 2xx body must satisfy; "" skips validation
	schema string
}

// do sends the request and returns the 2xx body, or a *StatusError.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL(cl.service)+cl.path, body)
	if err != nil {
		return nil, err
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if cl.token != "" {
		req.Header.Set("x-auth-token", cl.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cl.service, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", cl.service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, &StatusError{
			Service:    cl.service,
			StatusCode: resp.StatusCode,
			Message:    errorField(raw),
		}
	}

	if cl.schema != "" {
		if err := validate(cl.schema, raw); err != nil {
			return raw, &DecodeError{Service: cl.service, Body: raw, Err: err}
		}
	}
	return raw, nil
}

// postJSON marshals in, posts it and decodes the reply into out.
func (c *Client) postJSON(ctx context.Context, cl call, in, out any) ([]byte, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", cl.service, err)
	}
	cl.method = http.MethodPost
	cl.contentType = "application/json"
	cl.body = b

	raw, err := c.do(ctx, cl)
	if err != nil {
		return raw, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return raw, &DecodeError{Service: cl.service, Body: raw, Err: err}
	}
	return raw, nil
}

// errorField extracts {"error": "..."} from an error body, if present.
func errorField(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Error
}

// record writes one history row. A failed write is a warning, never an
// error for the call itself.
func (c *Client) record(ctx context.Context, kind string, request, response []byte, summary string, started time.Time, callErr error) {
	if c.history == nil {
		return
	}
	data := store.AssessmentData{
		Kind:      kind,
		Request:   string(request),
		Response:  string(response),
		Summary:   summary,
		Success:   callErr == nil,
		LatencyMs: time.Since(started).Milliseconds(),
	}
	if callErr != nil {
		data.ErrorMessage = callErr.Error()
	}
	if _, err := c.history.Record(context.WithoutCancel(ctx), data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record %s in history: %v\n", kind, err)
	}
}
