// worker.go runs the per-client delivery goroutine.

package csentry

import (
	"context"
)

// run waits for wake signals and delivers the document whenever a capture
// is pending. A capture that arrives during a send is picked up by the next
// iteration; captures are never queued separately.
func (c *Client) run() {
	defer close(c.done)

	for range c.wake {
		c.mu.Lock()
		if c.pending {
			c.deliverLocked()
		}
		if c.shuttingDown {
			c.releaseLocked()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

// deliverLocked sends the document while holding c.mu. Breadcrumbs are
// removed and pending cleared whatever the outcome; failed sends are
// logged and dropped.
func (c *Client) deliverLocked() {
	defer func() {
		c.doc.delete("breadcrumbs")
		c.pending = false
	}()

	req := Request{
		URL:    c.dsn.StoreURL,
		Header: requestHeader(c.dsn, c.now()),
		Body:   c.doc.wire(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.sendTimeout)
	defer cancel()

	reply, err := c.transport.Post(ctx, req)
	if err != nil {
		c.logger.Warn("csentry: delivery failed",
			"url", req.URL,
			"event_id", req.EventID(),
			"error", err)
		return
	}
	if reply.StatusCode < 200 || reply.StatusCode > 299 {
		c.logger.Warn("csentry: delivery rejected",
			"url", req.URL,
			"event_id", req.EventID(),
			"status", reply.StatusCode,
			"body", truncateWithMarker(string(reply.Body), 256))
		return
	}

	id, ok := ParseEventID(reply.Body)
	if !ok {
		c.logger.Warn("csentry: reply has no valid event id",
			"status", reply.StatusCode,
			"body", truncateWithMarker(string(reply.Body), 256))
		return
	}
	c.lastEventID = id
	c.logger.Debug("csentry: event delivered",
		"event_id", HexID(id),
		"status", reply.StatusCode)
}

// releaseLocked drops the document and closes the transport.
func (c *Client) releaseLocked() {
	c.doc = nil
	if err := c.transport.Close(); err != nil {
		c.logger.Warn("csentry: closing transport", "error", err)
	}
}
