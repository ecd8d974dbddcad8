// Package middleware contains the gin middleware shared by every route.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/infrastructure/monitoring"
)

// ObservabilityMiddleware returns a Gin middleware that integrates request metrics and OpenTelemetry tracing.
// For each HTTP request, it starts a server span continuing any incoming trace context and records the
// request total and duration labelled with the HTTP method, route template and status code.
// Server errors mark the span as failed.
// ObservabilityMiddleware 返回一个集成了请求指标和 OpenTelemetry 跟踪的 Gin 中间件。
// 对于每个 HTTP 请求，它会延续传入的跟踪上下文启动服务端 span，并按 HTTP 方法、路由模板和状态码记录请求数与耗时。
func ObservabilityMiddleware(tracer trace.Tracer, metrics service.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		// The span name is formatted as "METHOD /path/template".
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// c.FullPath() is the route template, which keeps label cardinality low.
		route := c.FullPath()
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, route, status, time.Since(start))

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= http.StatusInternalServerError {
			if last := c.Errors.Last(); last != nil {
				monitoring.RecordError(span, last.Err)
			} else {
				monitoring.RecordError(span, fmt.Errorf("HTTP %d", status))
			}
		}
	}
}
