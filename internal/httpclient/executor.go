package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/variantbench/internal/metrics"
	"github.com/torosent/variantbench/internal/tracing"
)

// RequestTimeout bounds every attempt from dispatch to the end of the body.
const RequestTimeout = 30 * time.Second

// UnreadableBody replaces the body of a non-200 response that could not be read.
const UnreadableBody = "Unable to read response text"

const maxErrorBodyBytes = 64 << 10

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor performs single attempts against one endpoint.
type Executor struct {
	client    Doer
	builder   *RequestBuilder
	timeout   time.Duration
	tracer    trace.Tracer
	propagate bool
}

type ExecutorOption func(*Executor)

// WithTimeout overrides RequestTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithTracing wraps each attempt in a client span and optionally injects the
// W3C trace context into the request headers.
func WithTracing(tracer trace.Tracer, propagate bool) ExecutorOption {
	return func(e *Executor) {
		e.tracer = tracer
		e.propagate = propagate
	}
}

func NewExecutor(client Doer, builder *RequestBuilder, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:  client,
		builder: builder,
		timeout: RequestTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Endpoint returns the display name of the endpoint this executor targets.
func (e *Executor) Endpoint() string {
	return e.builder.Endpoint()
}

// Execute performs one attempt. It never panics and never returns an error;
// every failure is folded into the returned outcome.
func (e *Executor) Execute(ctx context.Context) (outcome metrics.Outcome) {
	start := time.Now()

	if e.tracer != nil {
		var span trace.Span
		ctx, span = tracing.StartRequestSpan(ctx, e.tracer, e.builder.Endpoint(), e.builder.Method(), e.builder.Target())
		defer func() { tracing.EndOutcomeSpan(span, outcome) }()
	}

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			outcome = metrics.Outcome{
				LatencyMs:    elapsedMs(start),
				ErrorKind:    metrics.ErrorKindUnexpected,
				ErrorMessage: Describe(metrics.ErrorKindUnexpected, err, e.timeout),
			}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := e.builder.Build(ctx)
	if err != nil {
		return e.failure(start, &BuildError{Err: err})
	}
	if e.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return e.failure(start, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return metrics.Outcome{
			LatencyMs:  elapsedMs(start),
			StatusCode: resp.StatusCode,
			Success:    true,
		}
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	latency := elapsedMs(start)
	text := string(body)
	if readErr != nil {
		text = UnreadableBody
	}
	return metrics.Outcome{
		LatencyMs:    latency,
		StatusCode:   resp.StatusCode,
		ErrorMessage: statusMessage(resp.StatusCode, body, readErr),
		ResponseBody: text,
	}
}

func (e *Executor) failure(start time.Time, err error) metrics.Outcome {
	kind := Classify(err)
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		err = buildErr.Err
	}
	return metrics.Outcome{
		LatencyMs:    elapsedMs(start),
		ErrorKind:    kind,
		ErrorMessage: Describe(kind, err, e.timeout),
	}
}

// statusMessage summarizes a non-200 response, appending the server's own
// error text when the body is a JSON object that carries one.
func statusMessage(code int, body []byte, readErr error) string {
	msg := fmt.Sprintf("HTTP %d", code)
	if readErr != nil || !gjson.ValidBytes(body) {
		return msg
	}
	res := gjson.GetManyBytes(body, "errorMessage", "message", "error")
	for _, r := range res {
		if r.Type == gjson.String {
			if detail := strings.TrimSpace(r.String()); detail != "" {
				return msg + ": " + detail
			}
		}
	}
	return msg
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
