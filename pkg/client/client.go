// Package client is a Go client for the VanTrails recommendation API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 2 * time.Minute

// Option configures the Client.
type Option interface {
	apply(*Client)
}

type optionFunc func(*Client)

func (f optionFunc) apply(c *Client) { f(c) }

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *Client) {
		c.apiKey = key
	})
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return optionFunc(func(c *Client) {
		c.httpc = httpc
	})
}

// WithTimeout sets the request timeout of the default HTTP client.
// Ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *Client) {
		c.timeout = d
	})
}

// Client talks to a VanTrails server.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	httpc   *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o.apply(c)
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: c.timeout}
	}
	return c
}

// RecommendRequest asks for trail recommendations.
type RecommendRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Recommendation is a complete recommendation response.
type Recommendation struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
	Recommendation string `json:"recommendation"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vantrails: %s (status %d, code %s)", e.Message, e.StatusCode, e.Code)
}

// Recommend asks for a recommendation and waits for the full answer.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) (Recommendation, error) {
	var rec Recommendation

	resp, err := c.post(ctx, req, false)
	if err != nil {
		return rec, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rec, readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return rec, fmt.Errorf("vantrails: decode response: %w", err)
	}
	return rec, nil
}

// StreamEvent is one server-sent event from a streaming recommendation.
// Exactly one of the fields is meaningful per event: ConversationID on
// the opening meta event, Text on each delta, Err on failure, Done on
// the final event.
type StreamEvent struct {
	ConversationID string
	Text           string
	Err            error
	Done           bool
}

// RecommendStream asks for a recommendation as a stream of text
// fragments. The returned channel closes after a Done or Err event.
func (c *Client) RecommendStream(ctx context.Context, req RecommendRequest) (<-chan StreamEvent, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var event, data string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				if event == "" {
					continue
				}
				ev, ok, last := parseEvent(event, data)
				if ok {
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
				if last {
					return
				}
				event, data = "", ""
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case out <- StreamEvent{Err: fmt.Errorf("vantrails: read stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

// Health probes the server. A degraded or unreachable server returns
// an error.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("vantrails: build request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("vantrails: health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vantrails: health status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, req RecommendRequest, stream bool) (*http.Response, error) {
	body, err := json.Marshal(struct {
		RecommendRequest
		Stream bool `json:"stream,omitempty"`
	}{req, stream})
	if err != nil {
		return nil, fmt.Errorf("vantrails: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vantrails: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("vantrails: request: %w", err)
	}
	return resp, nil
}

func parseEvent(event, data string) (ev StreamEvent, ok, last bool) {
	switch event {
	case "meta":
		var meta struct {
			ConversationID string `json:"conversation_id"`
		}
		_ = json.Unmarshal([]byte(data), &meta)
		return StreamEvent{ConversationID: meta.ConversationID}, true, false
	case "delta":
		var delta struct {
			Text string `json:"text"`
		}
		_ = json.Unmarshal([]byte(data), &delta)
		return StreamEvent{Text: delta.Text}, true, false
	case "error":
		var apiErr APIError
		_ = json.Unmarshal([]byte(data), &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = "stream failed"
		}
		return StreamEvent{Err: &apiErr}, true, true
	case "done":
		return StreamEvent{Done: true}, true, true
	default:
		return StreamEvent{}, false, false
	}
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
