package catalog

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MiddlewareFunc wraps the execution of a request.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// LoggingMiddleware logs every executed operation. Operations which returned
// errors are logged at warn level.
func LoggingMiddleware(logger *zap.Logger) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *graphql.Result {
			start := time.Now()
			result := next(ctx, req)

			fields := []zap.Field{
				zap.String("operation", req.OperationName),
				zap.Int("variables", len(ExtractVariables(ctx))),
				zap.Duration("duration", time.Since(start)),
			}
			if result != nil && result.HasErrors() {
				fields = append(fields,
					zap.Int("errors", len(result.Errors)),
					zap.String("error", result.Errors[0].Message))
				logger.Warn("graphql request failed", fields...)
				return result
			}
			logger.Info("graphql request", fields...)
			return result
		}
	}
}

// TracingMiddleware records a span per operation.
func TracingMiddleware(tracer trace.Tracer) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *graphql.Result {
			ctx, span := tracer.Start(ctx, "graphql.operation", trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			span.SetAttributes(
				attribute.String("graphql.operation.name", req.OperationName),
				attribute.String("graphql.document", req.Query),
			)

			result := next(ctx, req)
			if result != nil && result.HasErrors() {
				span.SetAttributes(attribute.Int("graphql.error_count", len(result.Errors)))
				span.SetStatus(codes.Error, result.Errors[0].Message)
			}
			return result
		}
	}
}
