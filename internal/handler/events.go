package handler

import (
	"log/slog"
	"net/http"

	"caseflow/internal/changefeed"
	"caseflow/internal/handler/sse"
	"caseflow/internal/httputil"
)

// EventsHandler streams document change events to clients over SSE
type EventsHandler struct {
	feed   *changefeed.Feed
	config *sse.Config
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(feed *changefeed.Feed, config *sse.Config, logger *slog.Logger) *EventsHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &EventsHandler{
		feed:   feed,
		config: config,
		logger: logger,
	}
}

// changeFrame is one SSE data payload: the raw change event plus the
// user-facing notice derived from it.
type changeFrame struct {
	Event  changefeed.Event  `json:"event"`
	Notice changefeed.Notice `json:"notice"`
}

// StreamEvents subscribes the caller to the document change feed and relays
// events until the client disconnects. The subscription is scoped by the
// optional document_id and storage_path query parameters.
// GET /api/events?document_id=...&storage_path=...
func (h *EventsHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := changefeed.Filter{
		DocumentID:  q.Get("document_id"),
		StoragePath: q.Get("storage_path"),
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.feed.Subscribe(filter)
	defer sub.Close()

	// The writer is single-goroutine; keep-alive writes happen in the same
	// select loop as event writes.
	keepAlive := sse.NewTickerKeepAlive(h.config.KeepAliveInterval, writer)
	defer keepAlive.Stop()

	h.logger.Debug("event stream opened",
		"user_id", httputil.GetUserID(r),
		"document_id", filter.DocumentID,
	)

	for {
		select {
		case <-r.Context().Done():
			return

		case <-keepAlive.C():
			if err := keepAlive.Ping(); err != nil {
				h.logger.Debug("keepalive write failed, closing stream", "error", err)
				return
			}

		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			frame := changeFrame{
				Event:  event,
				Notice: changefeed.BuildNotice(&event),
			}
			if err := writer.WriteEvent("change", frame); err != nil {
				h.logger.Debug("event write failed, closing stream", "error", err)
				return
			}
		}
	}
}
