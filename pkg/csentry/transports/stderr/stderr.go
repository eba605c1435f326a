// Package stderr provides a transport that prints events in human-readable
// format. Useful for development and debugging.
package stderr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// StderrTransportOption configures the stderr transport.
type StderrTransportOption func(*stderrTransportConfig)

type stderrTransportConfig struct {
	verbose bool
	out     io.Writer
}

// WithVerbose prints every breadcrumb and the full event document.
func WithVerbose() StderrTransportOption {
	return func(c *stderrTransportConfig) {
		c.verbose = true
	}
}

// WithWriter redirects output, mainly for tests.
func WithWriter(w io.Writer) StderrTransportOption {
	return func(c *stderrTransportConfig) {
		c.out = w
	}
}

// stderrTransport writes events in human-readable format.
type stderrTransport struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewStderrTransport creates a transport that writes to stderr and
// acknowledges every event.
func NewStderrTransport(opts ...StderrTransportOption) csentry.Transport {
	cfg := &stderrTransportConfig{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrTransport{
		out:     cfg.out,
		verbose: cfg.verbose,
	}
}

// Post formats the event and writes it out.
func (t *stderrTransport) Post(ctx context.Context, req csentry.Request) (csentry.Reply, error) {
	event := gjson.ParseBytes(req.Body)

	level := event.Get("level").String()
	if level == "" {
		level = string(csentry.SeverityError)
	}

	// Format: [CSENTRY] <timestamp> <LEVEL> <logger>: <message>
	var b strings.Builder
	fmt.Fprintf(&b, "[CSENTRY] %s %s %s: %s\n",
		event.Get("timestamp").String(),
		strings.ToUpper(level),
		event.Get("logger").String(),
		event.Get("message").String())

	fmt.Fprintf(&b, "        Event: %s\n", event.Get("event_id").String())

	if fp := event.Get("fingerprint"); fp.IsArray() {
		var parts []string
		for _, v := range fp.Array() {
			parts = append(parts, v.String())
		}
		fmt.Fprintf(&b, "        Fingerprint: %s\n", strings.Join(parts, ", "))
	}

	if tags := event.Get("tags"); tags.IsObject() {
		var parts []string
		tags.ForEach(func(k, v gjson.Result) bool {
			parts = append(parts, k.String()+"="+v.String())
			return true
		})
		if len(parts) > 0 {
			fmt.Fprintf(&b, "        Tags: %s\n", strings.Join(parts, ", "))
		}
	}

	crumbs := event.Get("breadcrumbs.values").Array()
	if len(crumbs) > 0 {
		fmt.Fprintf(&b, "        Breadcrumbs: %d\n", len(crumbs))
	}

	if t.verbose {
		for _, crumb := range crumbs {
			fmt.Fprintf(&b, "          %s %s [%s] %s\n",
				crumb.Get("timestamp").String(),
				strings.ToUpper(crumb.Get("level").String()),
				crumb.Get("category").String(),
				crumb.Get("message").String())
		}
		fmt.Fprintf(&b, "        Document:\n")
		for _, line := range strings.Split(strings.TrimRight(string(pretty.Pretty(req.Body)), "\n"), "\n") {
			fmt.Fprintf(&b, "          %s\n", line)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return csentry.Reply{}, fmt.Errorf("write event: %w", err)
	}
	return csentry.AcceptedReply(req), nil
}

// Close is a no-op for the stderr transport.
func (t *stderrTransport) Close() error {
	return nil
}
