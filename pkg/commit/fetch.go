package commit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/vango-dev/filters/pkg/commit"

	// DefaultFetchTimeout bounds a results fetch.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxBody caps the size of a results body.
	DefaultMaxBody int64 = 8 << 20
)

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher issues the GET request for a fetch-mode commit.
type Fetcher struct {
	client  Doer
	timeout time.Duration
	maxBody int64
	tracer  trace.Tracer
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithClient sets the HTTP client. Defaults to http.DefaultClient.
func WithClient(c Doer) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout bounds each fetch. Zero disables the per-fetch timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.timeout = d }
}

// WithMaxBody caps the response body size.
func WithMaxBody(n int64) FetcherOption {
	return func(f *Fetcher) { f.maxBody = n }
}

// WithTracer sets the tracer. Defaults to the global provider's tracer.
func WithTracer(t trace.Tracer) FetcherOption {
	return func(f *Fetcher) { f.tracer = t }
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  http.DefaultClient,
		timeout: DefaultFetchTimeout,
		maxBody: DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.tracer == nil {
		f.tracer = otel.Tracer(tracerName)
	}
	return f
}

// Fetch GETs url and returns the response body. Responses outside 2xx yield
// a *FetchError; bodies larger than the configured cap are an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	ctx, span := f.tracer.Start(ctx, "filters.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", url)),
	)
	defer span.End()

	body, status, err := f.get(ctx, url)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("commit: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("commit: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, resp.StatusCode, &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("commit: read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, resp.StatusCode, fmt.Errorf("commit: response body exceeds %d bytes", f.maxBody)
	}
	return body, resp.StatusCode, nil
}
