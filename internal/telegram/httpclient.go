package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/anketabot/internal/netutil"
)

// BuildHTTPClient returns the HTTP client used for Bot API calls:
// conservative timeouts plus transport-level retry of transient
// network failures.
func BuildHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &retryTransport{
			next: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: 5 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
			retries: 3,
			backoff: 2 * time.Second,
		},
	}
}

// retryTransport repeats a request after transient failures. Requests
// whose body cannot be replayed via GetBody are attempted only once.
type retryTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	var lastErr error
	for attempt := 0; attempt <= t.retries; attempt++ {
		attemptReq, ok := t.replay(req, attempt)
		if !ok {
			return nil, lastErr
		}
		resp, err := next.RoundTrip(attemptReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == t.retries || !netutil.ShouldRetry(err) {
			break
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(t.backoff * time.Duration(attempt+1)):
		}
	}
	return nil, lastErr
}

func (t *retryTransport) replay(req *http.Request, attempt int) (*http.Request, bool) {
	if attempt == 0 {
		return req, true
	}
	if req.Body == nil {
		return req.Clone(req.Context()), true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, true
}
