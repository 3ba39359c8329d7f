// Package agmarknet fetches daily mandi price records from the data.gov.in
// AGMARKNET resource.
//
// Docs: https://data.gov.in/resource/current-daily-price-various-commodities-various-markets-mandi
package agmarknet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/mandipulse/internal/domain/models"
	"github.com/guttosm/mandipulse/internal/logger"
	"github.com/guttosm/mandipulse/internal/upstream"
)

const (
	serviceName = "agmarknet"

	DefaultBaseURL    = "https://api.data.gov.in/resource"
	DefaultResourceID = "9ef84268-d588-465a-a308-a864a43d0070"

	// CredentialEnv names the variable operators set to supply the key.
	CredentialEnv = "DATA_GOV_API_KEY"

	maxBodyBytes  = 32 << 20
	maxErrorBytes = 64 << 10
)

// Config carries everything the client needs; it is injected at construction
// so nothing is read from the process environment during a request.
type Config struct {
	APIKey     string
	BaseURL    string
	ResourceID string
	Timeout    time.Duration
}

// Fetcher is the contract consumed by the price service.
type Fetcher interface {
	Fetch(ctx context.Context, q models.PriceQuery) ([]models.PriceRecord, error)
}

// Client performs one GET per Fetch call. It holds no mutable state and is
// safe for concurrent use.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (tests inject a counting transport).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// NewClient builds a client. A missing API key is not an error here: it is
// reported by Fetch, so the service can start without price access.
func NewClient(cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	resource := cfg.ResourceID
	if resource == "" {
		resource = DefaultResourceID
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c := &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: base + "/" + resource,
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch queries the resource and returns the raw records.
//
// Errors:
//   - *upstream.MissingCredentialError when no API key is configured (no request is made).
//   - *upstream.Error for non-2xx responses, or Body "malformed" when a 2xx body is not a JSON object.
//   - upstream.ErrCancelled when ctx is cancelled or times out.
//   - *upstream.TransportError for network failures.
func (c *Client) Fetch(ctx context.Context, q models.PriceQuery) ([]models.PriceRecord, error) {
	if c.apiKey == "" {
		return nil, &upstream.MissingCredentialError{Service: serviceName, Key: CredentialEnv}
	}

	q = q.WithDefaults()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+c.buildQuery(q), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", serviceName, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, upstream.FromDoError(ctx, serviceName, redactURL(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if !upstream.IsSuccess(resp.StatusCode) {
		upErr := upstream.FromResponse(serviceName, resp, maxErrorBytes)
		logger.L().Error().
			Str("service", serviceName).
			Int("status", upErr.Status).
			Str("body", upErr.Body).
			Msg("upstream error")
		return nil, upErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, upstream.FromDoError(ctx, serviceName, err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, &upstream.Error{Service: serviceName, Status: resp.StatusCode, Body: upstream.MalformedBody}
	}

	logger.L().Debug().
		Str("service", serviceName).
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("records fetched")
	return records, nil
}

// buildQuery encodes the parameters in a fixed order: api-key, format, limit,
// offset, then filters[<field>] in commodity, state, district, market, variety,
// grade order. url.Values would sort keys, so the string is built by hand.
func (c *Client) buildQuery(q models.PriceQuery) string {
	var b strings.Builder
	add := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	add("api-key", c.apiKey)
	add("format", "json")
	add("limit", strconv.Itoa(q.Limit))
	add("offset", strconv.Itoa(q.Offset))
	for _, f := range q.Filters() {
		add("filters["+f.Name+"]", f.Value)
	}
	return b.String()
}

// decodeRecords extracts the "records" array. The body must be a JSON object;
// a missing or non-array "records" yields no records, and array elements that
// are not objects are skipped. Numbers are kept as json.Number so passthrough
// fields are re-emitted exactly.
func decodeRecords(body []byte) ([]models.PriceRecord, error) {
	var envelope map[string]json.RawMessage
	if err := useNumber(body, &envelope); err != nil {
		return nil, err
	}
	if envelope == nil {
		return nil, fmt.Errorf("body is not an object")
	}

	raw, ok := envelope["records"]
	if !ok {
		return []models.PriceRecord{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []models.PriceRecord{}, nil
	}

	out := make([]models.PriceRecord, 0, len(items))
	for _, item := range items {
		var r models.PriceRecord
		if err := useNumber(item, &r); err != nil || r == nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// redactURL drops the query string from *url.Error so the API key never ends
// up in logs or responses.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if i := strings.IndexByte(ue.URL, '?'); i >= 0 {
			ue.URL = ue.URL[:i]
		}
	}
	return err
}

func useNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
