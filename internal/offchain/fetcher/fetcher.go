// Package fetcher reads the spot price from the HTTP price feed.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
)

const (
	DefaultURL          = "https://min-api.cryptocompare.com/data/price"
	DefaultSymbol       = "TFT"
	DefaultTimeout      = 2000 * time.Millisecond
	DefaultMaxBodyBytes = 64 << 10

	quoteSymbol = "USD"
)

// Fetch errors. Every error returned by FetchPrice matches exactly one.
var (
	ErrTimeout   = errors.New("price feed deadline exceeded")
	ErrIO        = errors.New("price feed request failed")
	ErrBadStatus = errors.New("price feed returned non-200 status")
	ErrEncoding  = errors.New("price feed body is not valid UTF-8")
	ErrMalformed = errors.New("price feed body is malformed")
)

// Config selects the feed endpoint.
type Config struct {
	URL          string
	Symbol       string
	Timeout      time.Duration
	MaxBodyBytes int64
}

// DefaultConfig returns the public CryptoCompare endpoint for TFT.
func DefaultConfig() Config {
	return Config{
		URL:          DefaultURL,
		Symbol:       DefaultSymbol,
		Timeout:      DefaultTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Fetcher performs one bounded GET per FetchPrice call. It keeps no state
// between calls and never retries.
type Fetcher struct {
	cfg      Config
	endpoint string
	client   *http.Client
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Fetcher) { f.log = l }
}

// WithMetrics sets the collectors. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// New validates cfg and builds the request URL. Zero fields take defaults.
func New(cfg Config, opts ...Option) (*Fetcher, error) {
	def := DefaultConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.Symbol == "" {
		cfg.Symbol = def.Symbol
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("feed url must be http or https, got %q", cfg.URL)
	}
	q := u.Query()
	q.Set("fsym", strings.ToUpper(cfg.Symbol))
	q.Set("tsyms", quoteSymbol)
	u.RawQuery = q.Encode()

	f := &Fetcher{
		cfg:      cfg,
		endpoint: u.String(),
		client:   &http.Client{},
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.WithField("module", "fetcher")
	return f, nil
}

// Endpoint returns the full request URL.
func (f *Fetcher) Endpoint() string { return f.endpoint }

// FetchPrice GETs the feed and returns the USD price. The deadline covers
// connecting, headers and the body.
func (f *Fetcher) FetchPrice(ctx context.Context) (fixed.U16F16, error) {
	start := time.Now()
	price, err := f.fetch(ctx)
	took := time.Since(start)

	f.metrics.ObserveFetch(outcome(err), took)
	entry := f.log.WithField("took", took)
	if err != nil {
		entry.WithError(err).Warn("price fetch failed")
		return 0, err
	}
	entry.WithField("price", price).Debug("price fetched")
	return price, nil
}

func (f *Fetcher) fetch(ctx context.Context) (fixed.U16F16, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
		return 0, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		return 0, transportError(ctx, err)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return 0, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, f.cfg.MaxBodyBytes)
	}

	return ParsePrice(body)
}

// ParsePrice extracts the numeric USD field of a JSON object body.
func ParsePrice(body []byte) (fixed.U16F16, error) {
	if !utf8.Valid(body) {
		return 0, ErrEncoding
	}
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return 0, fmt.Errorf("%w: not a JSON object", ErrMalformed)
	}
	field := root.Get(quoteSymbol)
	if !field.Exists() {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformed, quoteSymbol)
	}
	if field.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s is not a number", ErrMalformed, quoteSymbol)
	}

	d, err := decimal.NewFromString(field.Raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	price, err := fixed.FromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return price, nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "io"
	}
}
