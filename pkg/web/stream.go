package web

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
)

const (
	// streamRetryMillis tells the browser how long to wait before
	// reconnecting a dropped stream.
	streamRetryMillis = 3000

	heartbeatInterval = 15 * time.Second
)

// StreamEvents serves the per-client live event stream over SSE. Events
// published before the connection existed are not replayed; the caller
// reconciles through the status endpoint after connecting.
func (h *APIHandlers) StreamEvents(c fiber.Ctx) error {
	clientID := c.Params("id")
	if clientID == "" {
		return badRequest(c, "Client ID is required")
	}

	_, err := h.persistence.ClientByID(c.Context(), clientID)
	if err != nil {
		return handleEngineError(c, err)
	}

	sub := h.hub.Subscribe(clientID)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(sub)

		fmt.Fprintf(w, "retry: %d\n\n", streamRetryMillis)

		if err := w.Flush(); err != nil {
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case envelope, ok := <-sub.Events():
				if !ok {
					return
				}

				payload, err := json.Marshal(envelope)
				if err != nil {
					continue
				}

				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", envelope.Type, payload)

				// A failed flush means the observer went away.
				if err := w.Flush(); err != nil {
					return
				}
			case <-heartbeat.C:
				fmt.Fprint(w, ": heartbeat\n\n")

				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}
