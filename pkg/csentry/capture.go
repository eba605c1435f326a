// capture.go implements CaptureMessage and AddBreadcrumb.

package csentry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Attribute keys recognized in the attrs map.
const (
	// AttrLogger overrides the event's "logger" (string).
	AttrLogger = "logger"
	// AttrContext is merged into the document like UpdateContext.
	AttrContext = "context"
	// AttrCategory sets a breadcrumb's category (string).
	AttrCategory = "category"
	// AttrData sets a breadcrumb's data (any JSON value).
	AttrData = "data"
	// AttrStackTrace attaches a stack trace (string) to a message. It is
	// sent as a "stacktrace" breadcrumb and feeds the fingerprint.
	AttrStackTrace = "stacktrace"
	// AttrFingerprint sets an explicit fingerprint ([]string).
	AttrFingerprint = "fingerprint"
)

const (
	defaultLogger   = "(builtin)"
	defaultCategory = "(builtin)"

	timestampLayout = "2006-01-02T15:04:05"
)

// Breadcrumb is one entry of breadcrumbs.values.
type Breadcrumb struct {
	Message   string          `json:"message"`
	EventID   string          `json:"event_id"`
	Timestamp string          `json:"timestamp"`
	Category  string          `json:"category"`
	Level     Severity        `json:"level"`
	Type      BreadcrumbType  `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// CaptureMessage records a message in the context document and wakes the
// worker to deliver it. It never waits for delivery. The message is
// fmt.Sprintf(format, args...); the level comes from opts.
//
// attrs may carry AttrLogger, AttrContext, AttrStackTrace and
// AttrFingerprint. An invalid AttrContext does not stop the capture; the
// error is returned after the message has been queued.
//
// Messages are dropped before touching the document when the client's
// sample rate rejects them.
func (c *Client) CaptureMessage(attrs map[string]any, opts Options, format string, args ...any) error {
	message := c.scrubMessage(fmt.Sprintf(format, args...))
	severity := opts.MessageSeverity()

	var (
		ctxValue   gjson.Result
		hasCtx     bool
		ctxErr     error
		stackCrumb []byte
		fp         []string
	)
	if raw, ok := attrs[AttrContext]; ok {
		hasCtx = true
		if ctxValue, ctxErr = c.encode(raw); ctxErr == nil && ctxValue.Type != gjson.Null && !ctxValue.IsObject() {
			ctxErr = fmt.Errorf("%w: got %s", ErrInvalidContext, ctxValue.Type)
		}
		if ctxErr != nil {
			hasCtx = false
		}
	}
	logger, overrideLogger := attrs[AttrLogger].(string)
	stack, _ := attrs[AttrStackTrace].(string)
	if stack != "" {
		var err error
		if stackCrumb, err = c.stackBreadcrumb(message, severity, stack); err != nil {
			return err
		}
	}
	if custom, ok := attrs[AttrFingerprint].([]string); ok && len(custom) > 0 {
		fp = custom
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown {
		return ErrClosed
	}

	if c.random() >= c.sampleRate {
		c.logger.Debug("csentry: message sampled out", "sample_rate", c.sampleRate)
		return nil
	}

	if severity == SeverityError {
		c.doc.delete("level")
	} else {
		c.doc.setString("level", string(severity))
	}
	c.doc.setString("message", message)
	c.doc.setString("event_id", HexID(uuid.New()))
	c.doc.setString("timestamp", formatTimestamp(c.now()))
	if !c.doc.has("logger") {
		c.doc.setString("logger", defaultLogger)
	}
	if overrideLogger {
		c.doc.setString("logger", logger)
	}
	if hasCtx {
		// Validated above; mergeGeneric only fails on non-objects.
		_ = c.doc.mergeGeneric(ctxValue)
	}
	if stackCrumb != nil {
		if err := c.doc.appendBreadcrumb(stackCrumb); err != nil {
			c.logger.Warn("csentry: dropping stack trace", "error", err)
		}
	}

	if fp == nil && c.fingerprinting {
		fp = []string{Fingerprint(FingerprintInput{
			Logger:     c.doc.get("logger").String(),
			Level:      severity,
			Template:   format,
			StackTrace: stack,
		})}
	}
	if fp != nil {
		if raw, err := json.Marshal(fp); err == nil {
			_ = c.doc.setRaw("fingerprint", raw)
		}
	} else {
		c.doc.delete("fingerprint")
	}

	c.pending = true
	c.signal()
	return ctxErr
}

// AddBreadcrumb appends a breadcrumb to the document. It does not trigger a
// delivery; breadcrumbs ride along with the next captured message and are
// removed after it is sent.
//
// attrs may carry AttrCategory and AttrData. Level and type come from opts
// with the zero value meaning info/default.
func (c *Client) AddBreadcrumb(attrs map[string]any, opts Options, format string, args ...any) error {
	crumb := Breadcrumb{
		Message:   c.scrubMessage(fmt.Sprintf(format, args...)),
		EventID:   uuid.NewString(),
		Timestamp: formatTimestamp(c.now()),
		Category:  defaultCategory,
		Level:     opts.BreadcrumbSeverity(),
		Type:      opts.BreadcrumbType(),
	}
	if category, ok := attrs[AttrCategory].(string); ok {
		crumb.Category = category
	}
	if data, ok := attrs[AttrData]; ok {
		value, err := c.encode(data)
		if err != nil {
			return err
		}
		crumb.Data = json.RawMessage(value.Raw)
	}

	encoded, err := json.Marshal(crumb)
	if err != nil {
		return fmt.Errorf("encode breadcrumb: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shuttingDown {
		return ErrClosed
	}
	return c.doc.appendBreadcrumb(encoded)
}

func (c *Client) stackBreadcrumb(message string, severity Severity, stack string) ([]byte, error) {
	if c.scrubber != nil {
		stack = c.scrubber.ScrubStackTrace(stack)
	}
	first, _, _ := strings.Cut(message, "\n")
	data, err := json.Marshal(map[string]string{"stack": stack})
	if err != nil {
		return nil, fmt.Errorf("encode stack trace: %w", err)
	}
	crumb := Breadcrumb{
		Message:   first,
		EventID:   uuid.NewString(),
		Timestamp: formatTimestamp(c.now()),
		Category:  AttrStackTrace,
		Level:     severity,
		Type:      BreadcrumbError,
		Data:      data,
	}
	return json.Marshal(crumb)
}

func (c *Client) scrubMessage(msg string) string {
	if c.scrubber == nil {
		return msg
	}
	return c.scrubber.ScrubMessage(msg)
}
