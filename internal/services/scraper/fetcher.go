package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/saintfish/chardet"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/net/html/charset"

	"github.com/recipebox/larder/internal/config"
	apperrors "github.com/recipebox/larder/internal/errors"
	"github.com/recipebox/larder/internal/httpclient"
	"github.com/recipebox/larder/internal/metrics"
	"github.com/recipebox/larder/internal/validation"
)

const maxRedirects = 10

// HTTPFetcher downloads recipe pages. It never retries.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the guarded client, mainly so tests can reach
// loopback servers.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// NewHTTPFetcher builds a fetcher whose connections refuse private and
// loopback addresses even when a public hostname resolves to one, and whose
// redirects are held to the same URL rules as the original request.
func NewHTTPFetcher(cfg config.ExtractionConfig, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    httpclient.NewGuarded(cfg.FetchTimeout, validation.DialControl),
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxHTMLBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client.CheckRedirect == nil {
		c := *f.client
		c.CheckRedirect = checkRedirect
		f.client = &c
	}
	if f.maxBytes <= 0 {
		f.maxBytes = MaxHTMLSize
	}
	return f
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if _, err := validation.ValidateURL(req.URL.String()); err != nil {
		return fmt.Errorf("redirect rejected: %w", err)
	}
	return nil
}

// Fetch returns the decoded body of url. Transport failures, non-2xx
// statuses and oversized bodies come back as FETCH_ERROR AppErrors. A
// redirect or resolved address that fails URL validation comes back as the
// INVALID_URL AppError, which is never retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx = httpclient.WithUpstream(ctx, httpclient.UpstreamRecipePage)
	start := time.Now()
	status := "error"
	defer func() {
		attrs := metric.WithAttributes(
			attribute.String("provider", httpclient.UpstreamRecipePage),
			attribute.String("status", status),
		)
		metrics.ExternalAPICallsTotal.Add(ctx, 1, attrs)
		metrics.ExternalAPIDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperrors.NewFetchError(url, "FETCH_REQUEST", 0, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.ErrorTypeInvalidURL {
			status = "rejected"
			return "", appErr
		}
		code := "FETCH_TRANSPORT"
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			code = "FETCH_TIMEOUT"
		}
		return "", apperrors.NewFetchError(url, code, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status = fmt.Sprintf("%d", resp.StatusCode)
		return "", apperrors.NewFetchError(fmt.Sprintf("%s returned status %d", url, resp.StatusCode), "FETCH_STATUS", resp.StatusCode, nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", apperrors.NewFetchError(url, "FETCH_READ", 0, err)
	}
	if int64(len(data)) > f.maxBytes {
		return "", apperrors.NewFetchError(fmt.Sprintf("%s is larger than %d bytes", url, f.maxBytes), "FETCH_TOO_LARGE", resp.StatusCode, nil)
	}

	status = "ok"
	return decodeBody(data, resp.Header.Get("Content-Type")), nil
}

// decodeBody converts the page to UTF-8. The Content-Type header and meta
// tags win; chardet only breaks ties when neither says anything.
func decodeBody(data []byte, contentType string) string {
	_, name, certain := charset.DetermineEncoding(data, contentType)
	if !certain && name != "utf-8" {
		if guess := detectCharset(data); guess != "" {
			name = guess
		}
	}
	if name == "utf-8" {
		return string(data)
	}

	r, err := charset.NewReaderLabel(name, bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func detectCharset(data []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < 50 {
		return ""
	}
	return strings.ToLower(result.Charset)
}
