package bwboot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LWAContextHeader carries the Lambda execution context when running behind the
// Lambda Web Adapter instead of the native runtime.
const LWAContextHeader = "x-amzn-lambda-context"

// ctxKey is the key type for context values.
type ctxKey int

const (
	ctxKeyLWAContext ctxKey = iota
	ctxKeyLogFields
)

// LWAContext contains Lambda execution context from the x-amzn-lambda-context header.
type LWAContext struct {
	RequestID          string `json:"request_id"`
	Deadline           int64  `json:"deadline"`
	InvokedFunctionARN string `json:"invoked_function_arn"`
	XRayTraceID        string `json:"xray_trace_id"`
}

// DeadlineTime returns the Lambda invocation deadline as a time.Time.
func (lc *LWAContext) DeadlineTime() time.Time {
	if lc.Deadline == 0 {
		return time.Time{}
	}
	return time.UnixMilli(lc.Deadline)
}

// WithLWAContext parses the value of the x-amzn-lambda-context header into ctx.
// An empty or malformed header leaves ctx unchanged.
func WithLWAContext(ctx context.Context, header string) context.Context {
	if header == "" {
		return ctx
	}
	var lc LWAContext
	if err := json.Unmarshal([]byte(header), &lc); err != nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyLWAContext, &lc)
}

// LWA retrieves the LWAContext from the context.
// Returns nil if the request did not come through the Lambda Web Adapter.
func LWA(ctx context.Context) *LWAContext {
	lc, _ := ctx.Value(ctxKeyLWAContext).(*LWAContext)
	return lc
}

// WithLogFields pushes fields onto the per-call logging context. Every record logged
// through Logger.Ctx with the returned context carries them.
func WithLogFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	prev := LogFields(ctx)
	next := make([]zap.Field, 0, len(prev)+len(fields))
	next = append(next, prev...)
	next = append(next, fields...)
	return context.WithValue(ctx, ctxKeyLogFields, next)
}

// LogFields returns the fields pushed with WithLogFields, oldest first.
func LogFields(ctx context.Context) []zap.Field {
	fields, _ := ctx.Value(ctxKeyLogFields).([]zap.Field)
	return fields
}

// invocationFields identifies the current Lambda invocation, if any.
func invocationFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		fields = append(fields,
			zap.String("aws_request_id", lc.AwsRequestID),
			zap.String("invoked_function_arn", lc.InvokedFunctionArn),
		)
	} else if lc := LWA(ctx); lc != nil {
		fields = append(fields,
			zap.String("aws_request_id", lc.RequestID),
			zap.String("invoked_function_arn", lc.InvokedFunctionARN),
		)
		if lc.XRayTraceID != "" {
			fields = append(fields, zap.String("xray_trace_id", lc.XRayTraceID))
		}
	}
	return append(fields, traceFields(ctx)...)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	sc := span.SpanContext()
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
