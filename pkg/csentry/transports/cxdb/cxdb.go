// Package cxdb provides a transport that persists events to cxdb as
// SystemMessage items.
package cxdb

import (
	"context"
	"fmt"
	"time"

	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"
	cxdtypes "github.com/strongdm/ai-cxdb/clients/go/types"
	"github.com/tidwall/gjson"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// eventTimeLayout matches the "timestamp" field written by the client.
const eventTimeLayout = "2006-01-02T15:04:05"

// CXDBClient is the minimal interface for cxdb client operations.
// The real *cxdb.Client satisfies this interface.
type CXDBClient interface {
	CreateContext(ctx context.Context, baseTurnID uint64) (*cxdbclient.ContextHead, error)
	AppendTurn(ctx context.Context, req *cxdbclient.AppendRequest) (*cxdbclient.AppendResult, error)
}

// CXDBTransportOption configures the cxdb transport.
type CXDBTransportOption func(*cxdbTransportConfig)

type cxdbTransportConfig struct {
	orphanLabels []string
	clientTag    string
	now          func() time.Time
}

// WithOrphanLabels sets labels for orphan event contexts.
func WithOrphanLabels(labels []string) CXDBTransportOption {
	return func(c *cxdbTransportConfig) {
		c.orphanLabels = labels
	}
}

// WithClientTag sets the client tag for orphan contexts.
func WithClientTag(tag string) CXDBTransportOption {
	return func(c *cxdbTransportConfig) {
		c.clientTag = tag
	}
}

// cxdbTransport appends each event to a cxdb context.
type cxdbTransport struct {
	client       CXDBClient
	orphanLabels []string
	clientTag    string
	now          func() time.Time
}

// NewCXDBTransport creates a transport that writes to cxdb. Events whose
// extra section carries cxdb_context_id are appended to that context; all
// others go to a fresh orphan context.
func NewCXDBTransport(client CXDBClient, opts ...CXDBTransportOption) csentry.Transport {
	cfg := &cxdbTransportConfig{
		orphanLabels: []string{"error", "unlinked"},
		clientTag:    "csentry",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &cxdbTransport{
		client:       client,
		orphanLabels: cfg.orphanLabels,
		clientTag:    cfg.clientTag,
		now:          cfg.now,
	}
}

// Post persists an event to cxdb.
func (t *cxdbTransport) Post(ctx context.Context, req csentry.Request) (csentry.Reply, error) {
	event := gjson.ParseBytes(req.Body)

	var contextID uint64
	isOrphan := false

	if linked := event.Get("extra.cxdb_context_id"); linked.Exists() && linked.Uint() != 0 {
		contextID = linked.Uint()
	} else {
		head, err := t.client.CreateContext(ctx, 0)
		if err != nil {
			return csentry.Reply{}, fmt.Errorf("create orphan context: %w", err)
		}
		contextID = head.ContextID
		isOrphan = true
	}

	item := t.buildConversationItem(event, req.Body, isOrphan)

	payload, err := cxdbclient.EncodeMsgpack(item)
	if err != nil {
		return csentry.Reply{}, fmt.Errorf("encode payload: %w", err)
	}

	appendReq := &cxdbclient.AppendRequest{
		ContextID:      contextID,
		ParentTurnID:   0,
		TypeID:         cxdtypes.TypeIDConversationItem,
		TypeVersion:    cxdtypes.TypeVersionConversationItem,
		Payload:        payload,
		IdempotencyKey: req.EventID(),
	}

	if _, err := t.client.AppendTurn(ctx, appendReq); err != nil {
		return csentry.Reply{}, fmt.Errorf("append turn: %w", err)
	}

	return csentry.AcceptedReply(req), nil
}

// buildConversationItem creates a canonical ConversationItem from an event.
func (t *cxdbTransport) buildConversationItem(event gjson.Result, body []byte, isOrphan bool) *cxdtypes.ConversationItem {
	item := &cxdtypes.ConversationItem{
		ItemType:  cxdtypes.ItemTypeSystem,
		Status:    cxdtypes.ItemStatusComplete,
		Timestamp: t.eventTime(event).UnixMilli(),
		ID:        event.Get("event_id").String(),
		System: &cxdtypes.SystemMessage{
			Kind:    cxdtypes.SystemKindError,
			Title:   buildTitle(event),
			Content: string(body),
		},
	}

	// cxdb expects context metadata on the first turn of a context.
	if isOrphan {
		item.ContextMetadata = &cxdtypes.ContextMetadata{
			Labels:    t.orphanLabels,
			ClientTag: t.clientTag,
		}
	}

	return item
}

func (t *cxdbTransport) eventTime(event gjson.Result) time.Time {
	ts, err := time.ParseInLocation(eventTimeLayout, event.Get("timestamp").String(), time.UTC)
	if err != nil {
		return t.now()
	}
	return ts
}

// buildTitle returns "level: message", truncated to 100 characters.
func buildTitle(event gjson.Result) string {
	level := event.Get("level").String()
	if level == "" {
		level = string(csentry.SeverityError)
	}

	title := level
	if msg := event.Get("message").String(); msg != "" {
		const maxMsgLen = 80
		if len(msg) > maxMsgLen {
			msg = msg[:maxMsgLen] + "..."
		}
		title = level + ": " + msg
	}

	if len(title) > 100 {
		title = title[:97] + "..."
	}
	return title
}

// Close is a no-op; the cxdb client is owned by the caller.
func (t *cxdbTransport) Close() error {
	return nil
}
