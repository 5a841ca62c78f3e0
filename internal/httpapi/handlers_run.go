package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/casualjim/hoot/encoder"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/pkg/uuidx"
	"github.com/casualjim/hoot/protocol"
	"github.com/k0kubun/pp/v3"
)

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	input, err := s.decodeInput(w, r)
	if err != nil {
		s.logger.DebugContext(r.Context(), "rejected run input", slogx.Error(err))
		writeMappedError(w, err)
		return
	}

	logger := s.logger.With(slogx.Run(input.ThreadID, input.RunID))
	if s.cfg.Debug && logger.Enabled(r.Context(), slog.LevelDebug) {
		logger.DebugContext(r.Context(), "decoded run input", slog.String("input", debugPrinter.Sprint(input)))
	}

	enc := encoder.New(r.Header.Get("Accept")).WithLogger(s.logger)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// run ids come from the client and are not guaranteed unique
	key := uuidx.NewString()
	s.runs.Set(key, cancel)
	defer s.runs.Del(key)

	flusher, _ := w.(http.Flusher)
	var started bool
	for frame, err := range s.agent.Stream(ctx, input, enc) {
		if err != nil {
			logger.ErrorContext(ctx, "failed to encode event", slogx.Error(err))
			if !started {
				writeError(w, http.StatusInternalServerError, internalServerError)
			}
			return
		}
		if !started {
			writeStreamHeaders(w, enc)
			started = true
		}
		if _, err := w.Write(frame); err != nil {
			logger.DebugContext(ctx, "client went away", slogx.Error(err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (protocol.RunAgentInput, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBodyBytes))
	if err != nil {
		return protocol.RunAgentInput{}, fmt.Errorf("read request body: %w", err)
	}
	input, err := protocol.Decode(bytes.NewReader(body))
	if err != nil {
		return protocol.RunAgentInput{}, err
	}
	if err := input.Validate(); err != nil {
		return protocol.RunAgentInput{}, err
	}
	return input, nil
}

func writeStreamHeaders(w http.ResponseWriter, enc *encoder.Encoder) {
	h := w.Header()
	h.Set("Content-Type", enc.ContentType())
	if enc.EventStream() {
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
	}
	w.WriteHeader(http.StatusOK)
}

var debugPrinter = func() *pp.PrettyPrinter {
	p := pp.New()
	p.SetColoringEnabled(false)
	return p
}()
