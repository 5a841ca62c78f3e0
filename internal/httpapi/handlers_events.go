package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/casualjim/hoot/encoder"
	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/internal/broker"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/pkg/uuidx"
)

const (
	eventsNotMirrored = "Run events are not mirrored"
	watchBuffer       = 64
)

// handleRunEvents follows the mirrored events of one run. Only events published
// after the subscription is in place are delivered, the stream ends with the run's
// RUN_FINISHED or when the client goes away.
func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Events == nil {
		writeError(w, http.StatusNotFound, eventsNotMirrored)
		return
	}
	threadID, runID := r.PathValue("threadId"), r.PathValue("runId")
	subject := broker.Subject(s.cfg.EventSubject, threadID, runID)
	logger := s.logger.With(slogx.Run(threadID, runID), slog.String("subject", subject))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	key := uuidx.NewString()
	s.runs.Set(key, cancel)
	defer s.runs.Del(key)

	received := make(chan events.Event, watchBuffer)
	sub, err := s.cfg.Events.Topic(ctx, subject).Subscribe(ctx, func(ctx context.Context, ev events.Event) {
		select {
		case received <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to subscribe to run events", slogx.Error(err))
		writeError(w, http.StatusInternalServerError, internalServerError)
		return
	}
	defer sub.Unsubscribe()
	logger.DebugContext(ctx, "following run events", slog.String("subscription", sub.ID()))

	enc := encoder.New(r.Header.Get("Accept")).WithLogger(s.logger)
	writeStreamHeaders(w, enc)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-received:
			frame, err := enc.Encode(ctx, ev)
			if err != nil {
				logger.ErrorContext(ctx, "failed to encode event", slogx.Error(err))
				return
			}
			if _, err := w.Write(frame); err != nil {
				logger.DebugContext(ctx, "client went away", slogx.Error(err))
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			if ev.Type() == events.TypeRunFinished {
				return
			}
		}
	}
}
