package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/keypad"
	"go-chi-calculator/internal/observability"
)

var tracer = otel.Tracer("calculator.session")

// maxKeysPerRequest bounds the keys accepted in one input request.
const maxKeysPerRequest = 256

// Handlers exposes a Store over HTTP.
type Handlers struct {
	Store *Store
}

// Create handles POST /sessions.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "session.create")
	defer span.End()

	sess, err := h.Store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create", "session store unavailable", err, http.StatusServiceUnavailable, w)
		return
	}

	sessionCounter.Add(ctx, 1)
	span.SetAttributes(attribute.String("session.id", sess.ID))

	logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, newStateResponse(sess.ID, sess.Snapshot()))
}

// Get handles GET /sessions/{id}.
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "session.get", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	sess, err := h.Store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "get", "session not found", err, http.StatusNotFound, w)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, newStateResponse(sess.ID, sess.Snapshot()))
}

// Delete handles DELETE /sessions/{id}.
func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "session.delete", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	if err := h.Store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete", "session not found", err, http.StatusNotFound, w)
		return
	}

	sessionCounter.Add(ctx, -1)
	logger.Info("session deleted", zap.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Input handles POST /sessions/{id}/input. Keys are mapped to tokens before
// any is applied, so a request with an unknown key changes nothing.
func (h Handlers) Input(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "session.input", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	var req InputRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "input", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	keys := req.Keys
	if req.Key != "" {
		keys = append([]string{req.Key}, keys...)
	}
	if len(keys) == 0 || len(keys) > maxKeysPerRequest {
		err := fmt.Errorf("got %d keys, want 1 to %d", len(keys), maxKeysPerRequest)
		observability.RecordError(ctx, span, logger, errorCounter, "input", "invalid key count", err, http.StatusBadRequest, w)
		return
	}

	tokens := make([]calculator.Token, 0, len(keys))
	for _, key := range keys {
		tok, ok := keypad.FromKey(key)
		if !ok {
			observability.RecordError(ctx, span, logger, errorCounter, "input", fmt.Sprintf("unknown key %q", key), errors.New("unmapped key"), http.StatusBadRequest, w)
			return
		}
		tokens = append(tokens, tok)
	}

	sess, err := h.Store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "input", "session not found", err, http.StatusNotFound, w)
		return
	}

	frames, state := sess.ApplyAll(tokens)
	resp := newStateResponse(sess.ID, state)

	for i, frame := range frames {
		attrs := metric.WithAttributes(attribute.String("token", tokens[i].Kind.String()))
		inputCounter.Add(ctx, 1, attrs)

		if !frame.Changed {
			ignoredCounter.Add(ctx, 1, attrs)
			resp.Ignored++
		}
		if frame.Message != "" {
			resetCounter.Add(ctx, 1, attrs)
			resp.Message = frame.Message
			span.AddEvent("session.reset", trace.WithAttributes(
				attribute.String("message", frame.Message),
				attribute.String("token", tokens[i].String()),
			))
			logger.Warn("evaluation failed, session reset",
				zap.String("session_id", id),
				zap.String("message", frame.Message),
			)
		}
	}

	span.SetAttributes(
		attribute.Int("session.input.count", len(tokens)),
		attribute.String("session.phase", resp.Phase),
		attribute.String("session.display", resp.Display),
	)
	span.SetStatus(codes.Ok, "")

	logger.Debug("session input applied",
		zap.String("session_id", id),
		zap.Strings("keys", keys),
		zap.String("display", resp.Display),
		zap.String("phase", resp.Phase),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}
