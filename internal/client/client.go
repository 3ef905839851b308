package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	// FormField is the multipart field name the processing service reads.
	FormField = "file"

	defaultTimeout = 30 * time.Second
	defaultMaxBody = 256 << 20
	userAgent      = "sheetscan-cli"
)

// Client submits files to the processing service and fetches artifacts.
type Client struct {
	httpClient *http.Client
	maxBody    int64
}

// Response is a fully read 2xx reply from a processing endpoint.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// ContentType returns the media type of the response without parameters.
func (r *Response) ContentType() string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// Filename returns the filename suggested by Content-Disposition, if any.
func (r *Response) Filename() string {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}

// New returns a client with the given request timeout and response size cap.
func New(httpTimeout time.Duration, maxBody int64) *Client {
	if httpTimeout <= 0 {
		httpTimeout = defaultTimeout
	}
	return NewWithHTTPClient(&http.Client{Timeout: httpTimeout}, maxBody)
}

// NewWithHTTPClient allows injecting a preconfigured http.Client (used in tests).
func NewWithHTTPClient(hc *http.Client, maxBody int64) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &Client{httpClient: hc, maxBody: maxBody}
}

// Upload posts content as the single file part of a multipart form.
// A non-2xx status yields *StatusError; network failures yield *TransportError.
func (c *Client) Upload(ctx context.Context, endpoint, filename string, content io.Reader) (*Response, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(FormField, filename)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if id := extractRequestID(resp); id != "" {
		reqID = id
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    serviceMessage(b),
			RequestID:  reqID,
			Endpoint:   endpoint,
		}
	}
	b, err := c.readBody(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       b,
		RequestID:  reqID,
	}, nil
}

// Download fetches url with GET and streams the body into w.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Endpoint: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return 0, &StatusError{StatusCode: resp.StatusCode, Message: serviceMessage(b), RequestID: extractRequestID(resp), Endpoint: url}
	}
	n, err := io.Copy(w, io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return n, &TransportError{Endpoint: url, Err: err}
	}
	if n > c.maxBody {
		return n, &TransportError{Endpoint: url, Err: &ResponseTooLargeError{Limit: c.maxBody}}
	}
	return n, nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > c.maxBody {
		return nil, &ResponseTooLargeError{Limit: c.maxBody}
	}
	return b, nil
}

// serviceMessage pulls a best-effort error text from a JSON error body.
func serviceMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error.message", "error", "detail", "message"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "X-Correlation-Id", "X-Amzn-Requestid"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}
