package main

import (
	"context"
	"encoding/json"

	"github.com/basewarphq/bwchat/bwboot"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handler receives Lambda invocations. Request handling proper lives in the
// application packages; this only records the invocation.
type Handler struct {
	logger *bwboot.Logger
	tracer trace.Tracer
}

func NewHandler(logger *bwboot.Logger, tracing *bwboot.Tracing) *Handler {
	return &Handler{
		logger: logger,
		tracer: tracing.Tracer("github.com/basewarphq/bwchat/cmd/chatfn"),
	}
}

func (h *Handler) Handle(ctx context.Context, event json.RawMessage) error {
	ctx, span := h.tracer.Start(ctx, "chatfn.Handle")
	defer span.End()

	h.logger.Ctx(ctx).Info("invocation received", zap.Int("event_bytes", len(event)))
	return nil
}
