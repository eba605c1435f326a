// client.go provides the Client type, its options and the context document
// API.

package csentry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/strongdm/csentry-go/pkg/csentry/platform"
)

// Option configures a Client.
type Option func(*config)

type config struct {
	initialContext []byte
	initialErr     error
	sampleRate     float64
	transport      Transport
	logger         *slog.Logger
	scrubber       *Scrubber
	fingerprinting bool
	sendTimeout    time.Duration

	now        func() time.Time
	random     func() float64
	probe      func() platform.Contexts
	lookupUser func() platform.User
}

// WithInitialContext merges ctx into the document after the defaults are
// installed. Only the user, tags and extra keys are used.
func WithInitialContext(ctx map[string]any) Option {
	return func(c *config) {
		if ctx == nil {
			c.initialContext = nil
			return
		}
		raw, err := json.Marshal(ctx)
		if err != nil {
			c.initialErr = fmt.Errorf("%w: %v", ErrInvalidContext, err)
			return
		}
		c.initialContext = raw
	}
}

// WithInitialContextJSON is WithInitialContext for an encoded document.
func WithInitialContextJSON(raw []byte) Option {
	return func(c *config) {
		c.initialContext = raw
	}
}

// WithSampleRate sets the fraction of captured messages that are kept.
// The default is 1.
func WithSampleRate(rate float64) Option {
	return func(c *config) {
		c.sampleRate = rate
	}
}

// WithTransport sets the event destination. The default is an HTTP
// transport posting to the DSN's store URL.
func WithTransport(t Transport) Option {
	return func(c *config) {
		c.transport = t
	}
}

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithScrubber redacts messages and context data with a custom
// configuration.
func WithScrubber(cfg ScrubberConfig) Option {
	return func(c *config) {
		c.scrubber = NewScrubber(cfg)
	}
}

// WithDefaultScrubbing enables scrubbing with production-safe defaults.
func WithDefaultScrubbing() Option {
	return func(c *config) {
		c.scrubber = NewScrubber(DefaultScrubberConfig())
	}
}

// WithFingerprinting sets a computed "fingerprint" on every captured
// message so that events differing only in formatted arguments group
// together.
func WithFingerprinting() Option {
	return func(c *config) {
		c.fingerprinting = true
	}
}

// WithSendTimeout bounds a single delivery. The default is 10 seconds.
func WithSendTimeout(d time.Duration) Option {
	return func(c *config) {
		c.sendTimeout = d
	}
}

// Client reports messages and breadcrumbs to a store endpoint. It is safe
// for concurrent use. After Close, every method except Done and
// LastEventID returns ErrClosed.
type Client struct {
	dsn            *DSN
	sampleRate     float64
	transport      Transport
	logger         *slog.Logger
	scrubber       *Scrubber
	fingerprinting bool
	sendTimeout    time.Duration
	now            func() time.Time
	random         func() float64
	probe          func() platform.Contexts
	lookupUser     func() platform.User

	// mu guards everything below.
	mu           sync.Mutex
	doc          *document
	lastEventID  uuid.UUID
	pending      bool
	shuttingDown bool

	wake chan struct{}
	done chan struct{}
}

// New parses dsn, installs the default context and starts the delivery
// worker. Errors wrap ErrInvalidSampleRate, ErrInvalidDSN or
// ErrInvalidContext; on error no worker is started.
func New(dsn string, opts ...Option) (*Client, error) {
	c, err := newClient(dsn, opts...)
	if err != nil {
		return nil, err
	}
	go c.run()
	return c, nil
}

// newClient builds a Client without starting its worker.
func newClient(dsn string, opts ...Option) (*Client, error) {
	cfg := &config{
		sampleRate:  1,
		sendTimeout: 10 * time.Second,
		now:         time.Now,
		random:      rand.Float64,
		probe:       platform.Probe,
		lookupUser:  platform.LookupUser,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if !(cfg.sampleRate >= 0 && cfg.sampleRate <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSampleRate, cfg.sampleRate)
	}

	parsed, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.initialErr != nil {
		return nil, cfg.initialErr
	}
	if cfg.transport == nil {
		cfg.transport = NewHTTPTransport()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	c := &Client{
		dsn:            parsed,
		sampleRate:     cfg.sampleRate,
		transport:      cfg.transport,
		logger:         cfg.logger,
		scrubber:       cfg.scrubber,
		fingerprinting: cfg.fingerprinting,
		sendTimeout:    cfg.sendTimeout,
		now:            cfg.now,
		random:         cfg.random,
		probe:          cfg.probe,
		lookupUser:     cfg.lookupUser,
		wake:           make(chan struct{}, 1),
		done:           make(chan struct{}),
	}
	c.resetLocked()

	if cfg.initialContext != nil {
		value, err := c.parseJSON(cfg.initialContext)
		if err != nil {
			return nil, err
		}
		if err := c.doc.mergeGeneric(value); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// DSN returns the parsed connection string.
func (c *Client) DSN() *DSN {
	return c.dsn
}

// Close asks the worker to deliver any pending event and exit. It does not
// wait; use Done to observe termination.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.shuttingDown {
		c.mu.Unlock()
		return ErrClosed
	}
	c.shuttingDown = true
	c.mu.Unlock()

	c.signal()
	return nil
}

// Done returns a channel that is closed once the worker has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Flush blocks until no delivery is pending or ctx is done.
func (c *Client) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		c.mu.Lock()
		pending, closed := c.pending, c.shuttingDown
		c.mu.Unlock()
		if closed {
			return ErrClosed
		}
		if !pending {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// UpdateUser merges data into the "user" section key by key. A nil map
// deletes the section. It reports whether the document changed.
func (c *Client) UpdateUser(data map[string]any) (bool, error) {
	return c.updateSection(sectionUser, data)
}

// UpdateTags is UpdateUser for the "tags" section.
func (c *Client) UpdateTags(data map[string]any) (bool, error) {
	return c.updateSection(sectionTags, data)
}

// UpdateExtra is UpdateUser for the "extra" section.
func (c *Client) UpdateExtra(data map[string]any) (bool, error) {
	return c.updateSection(sectionExtra, data)
}

func (c *Client) updateSection(name string, data map[string]any) (bool, error) {
	var value gjson.Result
	if data != nil {
		var err error
		if value, err = c.encode(data); err != nil {
			return false, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown {
		return false, ErrClosed
	}
	return c.doc.mergeSection(name, value)
}

// UpdateContext merges the user, tags and extra keys of ctx into the
// document; other keys are ignored. A nil map clears all three sections.
func (c *Client) UpdateContext(ctx map[string]any) error {
	var value gjson.Result
	if ctx != nil {
		var err error
		if value, err = c.encode(ctx); err != nil {
			return err
		}
	}
	return c.mergeContext(value)
}

// UpdateContextJSON is UpdateContext for an encoded document. It returns
// ErrInvalidContext unless raw is a JSON object or null.
func (c *Client) UpdateContextJSON(raw []byte) error {
	value, err := c.parseJSON(raw)
	if err != nil {
		return err
	}
	return c.mergeContext(value)
}

func (c *Client) mergeContext(value gjson.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown {
		return ErrClosed
	}
	return c.doc.mergeGeneric(value)
}

// ClearContext discards the document, including breadcrumbs, and installs
// the defaults again.
func (c *Client) ClearContext() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown {
		return ErrClosed
	}
	c.resetLocked()
	return nil
}

// ContextJSON returns an indented copy of the current document.
func (c *Client) ContextJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown {
		return nil, ErrClosed
	}
	return c.doc.indented(), nil
}

// LastEventID returns the id the server assigned to the most recent
// successful delivery, or uuid.Nil.
func (c *Client) LastEventID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventID
}

// LastEventIDString is LastEventID in its dashed string form.
func (c *Client) LastEventIDString() string {
	return c.LastEventID().String()
}

// resetLocked installs a fresh document holding the default sections.
func (c *Client) resetLocked() {
	doc := newDocument()

	if raw, err := json.Marshal(c.lookupUser()); err == nil {
		_ = doc.setRaw(sectionUser, raw)
	}
	doc.setString("platform", "go")
	if raw, err := json.Marshal(sdkInfo{Name: SDKName, Version: SDKVersion}); err == nil {
		_ = doc.setRaw("sdk", raw)
	}
	if raw, err := json.Marshal(c.probe()); err == nil {
		_ = doc.setRaw("contexts", raw)
	}

	c.doc = doc
}

type sdkInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// encode converts a Go value to JSON, scrubbing it when a scrubber is set.
func (c *Client) encode(v any) (gjson.Result, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	return c.scrubbed(raw), nil
}

// parseJSON validates and scrubs an encoded document.
func (c *Client) parseJSON(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: malformed JSON", ErrInvalidContext)
	}
	return c.scrubbed(raw), nil
}

func (c *Client) scrubbed(raw []byte) gjson.Result {
	if c.scrubber != nil {
		raw = c.scrubber.ScrubJSON(raw)
	}
	return gjson.ParseBytes(raw)
}

// signal wakes the worker without blocking. A wake already queued covers
// this one.
func (c *Client) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
