// Package agentapi is a client for the remote agent-management REST API.
package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/soochol/agentcanvas/internal/flow"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second
	DefaultRate    = 10.0

	// error bodies are cut to this many bytes
	maxErrorBody = 512
)

// Client is a rate-limited HTTP client for the agent API. It does not retry.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets the API root, e.g. http://localhost:8000.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit allows perSecond requests per second with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRate), 1),
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Message is the {"message": ...} body returned by run, interrupt and call.
type Message struct {
	Message string `json:"message"`
}

// UploadedFile is the body returned by POST /files/upload.
type UploadedFile struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// SavedWorkflow is what the API answered to a canvas save.
type SavedWorkflow struct {
	AgentID string          `json:"agent_id,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

func (c *Client) GetAgent(ctx context.Context, id string) (flow.Agent, error) {
	var a flow.Agent
	err := c.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(id), nil, nil, &a)
	return a, err
}

// ListAgents returns every agent. A body that is not a list yields an
// empty result.
func (c *Client) ListAgents(ctx context.Context) ([]flow.Agent, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/agents/", nil, nil, &raw); err != nil {
		return nil, err
	}
	var agents []flow.Agent
	if err := json.Unmarshal(raw, &agents); err != nil || agents == nil {
		return []flow.Agent{}, nil
	}
	return agents, nil
}

// CreateAgent posts an agent configuration and returns the stored agent.
func (c *Client) CreateAgent(ctx context.Context, a flow.Agent) (flow.Agent, error) {
	var out flow.Agent
	err := c.do(ctx, http.MethodPost, "/agents/", nil, a, &out)
	return out, err
}

func (c *Client) UpdateAgent(ctx context.Context, a flow.Agent) (flow.Agent, error) {
	var out flow.Agent
	err := c.do(ctx, http.MethodPut, "/agents/"+url.PathEscape(a.ID), nil, a, &out)
	return out, err
}

// SaveWorkflow posts a canvas snapshot to /agents/. No retry, no conflict
// detection; the caller reports a failure to the user.
func (c *Client) SaveWorkflow(ctx context.Context, w flow.Workflow) (SavedWorkflow, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/agents/", nil, w, &raw); err != nil {
		return SavedWorkflow{}, err
	}
	out := SavedWorkflow{Raw: raw}
	var body struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(raw, &body) == nil {
		out.AgentID = body.ID
	}
	return out, nil
}

func (c *Client) RunAgent(ctx context.Context, id string) (Message, error) {
	var m Message
	err := c.do(ctx, http.MethodPost, "/agents/"+url.PathEscape(id)+"/run", nil, nil, &m)
	return m, err
}

// Interrupt sends a chat prompt to a running agent.
func (c *Client) Interrupt(ctx context.Context, id, prompt string) (Message, error) {
	var m Message
	q := url.Values{"prompt": {prompt}}
	err := c.do(ctx, http.MethodPost, "/agents/"+url.PathEscape(id)+"/interrupt", q, nil, &m)
	return m, err
}

func (c *Client) Status(ctx context.Context, id string) (flow.AgentStatus, error) {
	var s flow.AgentStatus
	if err := c.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(id)+"/status", nil, nil, &s); err != nil {
		return flow.AgentStatus{}, err
	}
	if s.UpcomingTasks == nil {
		s.UpcomingTasks = []flow.UpcomingTask{}
	}
	return s, nil
}

// Generate asks the creation assistant for an agent draft. The answer is
// free-form JSON.
func (c *Client) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/generate/", url.Values{"prompt": {prompt}}, nil, &raw)
	return raw, err
}

// Call asks the API to phone someone on behalf of an agent.
func (c *Client) Call(ctx context.Context, agentID, phoneNumber, name string) (Message, error) {
	q := url.Values{"agent_id": {agentID}}
	if phoneNumber != "" {
		q.Set("phone_number", phoneNumber)
	}
	if name != "" {
		q.Set("name", name)
	}
	var m Message
	err := c.do(ctx, http.MethodGet, "/call/", q, nil, &m)
	return m, err
}

// UploadFile sends content as the multipart field "file".
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (UploadedFile, error) {
	if filename == "" || content == nil {
		return UploadedFile{}, ErrMissingFile
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadedFile{}, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadedFile{}, err
	}

	var out UploadedFile
	err = c.send(ctx, http.MethodPost, "/files/upload", nil, mw.FormDataContentType(), &buf, &out)
	if err == nil && out.Path == "" {
		return out, fmt.Errorf("%w: upload returned no path", ErrInvalidResponse)
	}
	return out, err
}

// do sends body as JSON when non-nil and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var (
		r           io.Reader
		contentType string
	)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, query, contentType, r, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("agent API %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Method: method, Path: path, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrInvalidResponse, method, path, err)
	}
	return nil
}
