// Package backend is the authenticated HTTP client for the remote
// commerce API. The bearer credential is attached per call, transport
// failures go through a circuit breaker, and auth/status problems come
// back as typed errors callers can match on.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// ErrAuth marks a 401/403 from the backend. The storefront surfaces
// it but never clears credentials itself.
var ErrAuth = errors.New("not authorized by the commerce backend")

// StatusError is any other non-success status, carrying a displayable
// message from the error body so the caller can show the server's own
// words.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("commerce backend replied with status %d", e.Code)
	}
	return fmt.Sprintf("commerce backend replied with status %d: %s", e.Code, e.Body)
}

type reply struct {
	code int
	body []byte
}

type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[reply]
	log     logrus.FieldLogger
}

func NewClient(base string, timeout time.Duration, log logrus.FieldLogger) *Client {
	st := gobreaker.Settings{
		Name: "commerce-backend",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit %s moved from %s to %s", name, from, to)
		},
	}

	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[reply](st),
		log:     log,
	}
}

func (c *Client) Get(ctx context.Context, path, token string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, token, nil, nil, out, http.StatusOK)
}

func (c *Client) Post(ctx context.Context, path, token string, headers map[string]string, in, out interface{}, want int) error {
	return c.do(ctx, http.MethodPost, path, token, headers, in, out, want)
}

// do runs one round-trip. Only the transport goes through the breaker:
// a served error status means the backend is alive, not broken.
func (c *Client) do(ctx context.Context, method, path, token string, headers map[string]string, in, out interface{}, want int) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.breaker.Execute(func() (reply, error) {
		w, err := c.http.Do(req)
		if err != nil {
			return reply{}, err
		}
		defer w.Body.Close()

		data, err := io.ReadAll(w.Body)
		if err != nil {
			return reply{}, err
		}
		return reply{code: w.StatusCode, body: data}, nil
	})
	if err != nil {
		return fmt.Errorf("commerce backend unreachable: %w", err)
	}

	if res.code == http.StatusUnauthorized || res.code == http.StatusForbidden {
		return fmt.Errorf("%s %s: %w", method, path, ErrAuth)
	}
	if res.code != want {
		return &StatusError{Code: res.code, Body: errorBody(res.body)}
	}

	if out != nil {
		if err := json.Unmarshal(res.body, out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

// errorBody extracts a displayable message from an error response,
// preferring an {"error": "..."} envelope over the raw body.
func errorBody(data []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(data))
}
