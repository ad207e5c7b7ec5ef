package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Upstream names attached to outbound spans.
const (
	UpstreamRecipePage = "recipe-page"
	UpstreamOllama     = "ollama"
)

// DefaultTransport is the base transport used by the instrumented client.
var DefaultTransport = http.DefaultTransport

type contextKey string

const upstreamKey contextKey = "httpclient.upstream"

// WithUpstream tags the context so outbound spans carry the upstream name.
func WithUpstream(ctx context.Context, upstream string) context.Context {
	return context.WithValue(ctx, upstreamKey, upstream)
}

// Upstream returns the name set by WithUpstream.
func Upstream(ctx context.Context) string {
	name, _ := ctx.Value(upstreamKey).(string)
	return name
}

// upstreamTransport records the upstream name and error status on the active span.
type upstreamTransport struct {
	base http.RoundTripper
}

func (t *upstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	span := trace.SpanFromContext(req.Context())
	if upstream := Upstream(req.Context()); upstream != "" {
		span.SetAttributes(attribute.String("upstream", upstream))
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP status %d", resp.StatusCode))
	}
	return resp, nil
}

func newOtelTransport(base http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(&upstreamTransport{base: base},
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			if upstream := Upstream(r.Context()); upstream != "" {
				return fmt.Sprintf("%s: %s %s", upstream, r.Method, r.URL.Path)
			}
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
	)
}

// New returns an http.Client with OpenTelemetry instrumentation and a hard
// timeout. Every outbound call in the pipeline goes through one of these.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: newOtelTransport(DefaultTransport),
		Timeout:   timeout,
	}
}

// DialControl vets an address after DNS resolution and before connecting.
type DialControl func(network, address string, c syscall.RawConn) error

// NewGuarded is New with every connection checked by control.
func NewGuarded(timeout time.Duration, control DialControl) *http.Client {
	base, ok := DefaultTransport.(*http.Transport)
	if !ok {
		base = &http.Transport{}
	}
	transport := base.Clone()
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   control,
	}
	transport.DialContext = dialer.DialContext
	// A proxy would be dialed instead of the target and defeat the check.
	transport.Proxy = nil

	return &http.Client{
		Transport: newOtelTransport(transport),
		Timeout:   timeout,
	}
}
