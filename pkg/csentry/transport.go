// transport.go defines the Transport interface and the default HTTP
// implementation used by the delivery worker.

package csentry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// SDKName and SDKVersion identify this client in the auth header and
	// the "sdk" section.
	SDKName    = "csentry-go"
	SDKVersion = "0.1.0"

	protocolVersion = 7

	// maxReplySize bounds how much of a reply body is read.
	maxReplySize = 1 << 20
)

// Request is a single event delivery.
type Request struct {
	URL    string
	Header http.Header
	Body   []byte
}

// EventID returns the event_id field of the request body, or "".
func (r Request) EventID() string {
	return gjson.GetBytes(r.Body, "event_id").String()
}

// Reply is the server's answer. StatusCode is 0 when no reply was received.
type Reply struct {
	StatusCode int
	Body       []byte
}

// AcceptedReply is what a local transport returns once it has handled req:
// status 200 echoing the request's event id, as a store endpoint would.
func AcceptedReply(req Request) Reply {
	body, err := sjson.SetBytes([]byte(`{}`), "id", req.EventID())
	if err != nil {
		return Reply{StatusCode: http.StatusOK}
	}
	return Reply{StatusCode: http.StatusOK, Body: body}
}

// Transport delivers serialized events. The client calls Post from a single
// goroutine, but implementations shared between clients must be safe for
// concurrent use.
type Transport interface {
	// Post sends one event. An error means no usable reply was received.
	Post(ctx context.Context, req Request) (Reply, error)

	// Close releases resources held by the transport. It is called once by
	// the delivery worker when the client shuts down.
	Close() error
}

// HTTPTransportOption configures the HTTP transport.
type HTTPTransportOption func(*httpTransport)

// WithHTTPClient sets the http.Client used for delivery.
func WithHTTPClient(client *http.Client) HTTPTransportOption {
	return func(t *httpTransport) {
		t.client = client
	}
}

type httpTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a Transport that POSTs events with net/http.
func NewHTTPTransport(opts ...HTTPTransportOption) Transport {
	t := &httpTransport{
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *httpTransport) Post(ctx context.Context, req Request) (Reply, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return Reply{}, fmt.Errorf("build request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("post %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return Reply{StatusCode: resp.StatusCode}, fmt.Errorf("read reply: %w", err)
	}
	return Reply{StatusCode: resp.StatusCode, Body: body}, nil
}

func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// AuthHeader returns the X-Sentry-Auth value for dsn at time ts.
func AuthHeader(dsn *DSN, ts time.Time) string {
	var b strings.Builder
	b.WriteString("Sentry sentry_version=")
	b.WriteString(strconv.Itoa(protocolVersion))
	b.WriteString(", sentry_timestamp=")
	b.WriteString(strconv.FormatInt(ts.Unix(), 10))
	b.WriteString(", sentry_key=")
	b.WriteString(dsn.PublicKey)
	if dsn.HasSecret() {
		b.WriteString(", sentry_secret=")
		b.WriteString(dsn.SecretKey)
	}
	b.WriteString(", sentry_client=")
	b.WriteString(SDKName + "/" + SDKVersion)
	return b.String()
}

func requestHeader(dsn *DSN, ts time.Time) http.Header {
	h := make(http.Header)
	h.Set("X-Sentry-Auth", AuthHeader(dsn, ts))
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", SDKName+"/"+SDKVersion)
	return h
}

// ParseEventID extracts the "id" field of a store reply. It accepts only the
// 32 hex character form without dashes.
func ParseEventID(body []byte) (uuid.UUID, bool) {
	if !gjson.ValidBytes(body) {
		return uuid.Nil, false
	}
	id := gjson.GetBytes(body, "id")
	if id.Type != gjson.String || !isHex32(id.Str) {
		return uuid.Nil, false
	}
	u, err := uuid.Parse(id.Str)
	if err != nil {
		return uuid.Nil, false
	}
	return u, true
}

func isHex32(s string) bool {
	if len(s) != 32 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// HexID formats id as 32 lowercase hex characters.
func HexID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}
