package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Client talks to a hirelens server over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UploadResume submits a candidate profile and resume for ingestion.
func (c *Client) UploadResume(ctx context.Context, req UploadResumeRequest) (UploadResumeResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":           req.Name,
		"role":           req.Role,
		"githubUsername": req.GitHubUsername,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return UploadResumeResponse{}, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if len(req.Resume) > 0 {
		filename := req.ResumeFilename
		if filename == "" {
			filename = "resume.pdf"
		}
		fw, err := mw.CreateFormFile("resume", filename)
		if err != nil {
			return UploadResumeResponse{}, fmt.Errorf("create form file: %w", err)
		}
		if _, err := fw.Write(req.Resume); err != nil {
			return UploadResumeResponse{}, fmt.Errorf("write resume: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return UploadResumeResponse{}, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-resume", &body)
	if err != nil {
		return UploadResumeResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var resp UploadResumeResponse
	if err := c.do(httpReq, &resp); err != nil {
		return UploadResumeResponse{}, err
	}
	return resp, nil
}

// Query sends a conversation to the evaluation endpoint and returns the
// model's reply.
func (c *Client) Query(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(queryRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp queryResponse
	if err := c.do(httpReq, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// Health fetches the service health report. A degraded service returns the
// report together with an APIError carrying status 503.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthReport{}, fmt.Errorf("build request: %w", err)
	}

	var report HealthReport
	if err := c.do(httpReq, &report); err != nil {
		return report, err
	}
	return report, nil
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if req.URL.Path == "/health" && resp.StatusCode == http.StatusServiceUnavailable {
			// Degraded health still carries a report body.
			_ = json.Unmarshal(data, out)
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var wire struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &wire) == nil && wire.Message != "" {
			apiErr.Code = wire.Code
			apiErr.Message = wire.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
