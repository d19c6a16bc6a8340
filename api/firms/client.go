// Package firms is a client for the NASA FIRMS active fire API.
package firms

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ka2n/firms/api/cache"
	"github.com/ka2n/firms/api/source"
	"github.com/ka2n/firms/api/table"
	"github.com/ka2n/firms/log"
	"github.com/morikuni/failure/v2"
)

const (
	// SentinelColumn is the header the provider's HTML error pages parse into
	SentinelColumn = "<html>"

	// WorldArea is the area designator covering the whole globe
	WorldArea = "world"

	// DateLayout is the calendar date format used in URLs and records
	DateLayout = "2006-01-02"

	// InvalidMapKeyBody is the plaintext body of the status endpoint for bad keys
	InvalidMapKeyBody = "MAP_KEY is invalid or your have exceeded your transaction/time limit. Please try again later."
)

// Client fetches tables from a FIRMS host
type Client struct {
	host       string
	userAgent  string
	httpClient *http.Client
	tables     *cache.Cache[table.Table]
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header of every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCache replaces the table cache
func WithCache(tc *cache.Cache[table.Table]) Option {
	return func(c *Client) {
		c.tables = tc
	}
}

// NewClient creates a client for host, e.g. https://firms.modaps.eosdis.nasa.gov
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		host: host,
		httpClient: &http.Client{
			Transport: log.Transport(),
			Timeout:   time.Minute,
		},
		tables: cache.New[table.Table]("table"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the configured API host
func (c *Client) Host() string {
	return c.host
}

// CountryURL builds the per-country record URL
func (c *Client) CountryURL(mapKey string, src source.Type, country string, dayRange int, date time.Time) string {
	return fmt.Sprintf("%s/api/country/csv/%s/%s/%s/%d/%s",
		c.host, mapKey, src, country, dayRange, date.Format(DateLayout))
}

// AreaURL builds the area record URL
func (c *Client) AreaURL(mapKey string, src source.Type, area string, dayRange int, date time.Time) string {
	return fmt.Sprintf("%s/api/area/csv/%s/%s/%s/%d/%s",
		c.host, mapKey, src, area, dayRange, date.Format(DateLayout))
}

// FetchTable performs a single GET and parses the body as delimited text.
// Results are memoized by URL for the lifetime of the client's cache.
// An HTML error page is returned as a table carrying SentinelColumn, even
// with a non-2xx status, and is never memoized.
func (c *Client) FetchTable(ctx context.Context, rawURL string, delim rune) (table.Table, error) {
	key := rawURL
	if delim != ',' {
		key = fmt.Sprintf("%s#%c", rawURL, delim)
	}

	return c.tables.GetOrSetIf(key, func() (table.Table, error) {
		body, status, err := c.get(ctx, rawURL)
		if err != nil {
			return table.Table{}, err
		}
		ok := status >= 200 && status < 300
		if !ok && !looksLikeHTML(body) {
			return table.Table{}, statusError(rawURL, status, body)
		}

		t, err := table.Parse(bytes.NewReader(body), delim)
		if err != nil {
			if !ok {
				return table.Table{}, statusError(rawURL, status, body)
			}
			return table.Table{}, failure.Translate(err, ErrParse,
				failure.Message("Unexpected response from FIRMS"),
				failure.Context{"url": rawURL},
			)
		}

		if t.Has(SentinelColumn) {
			title, text := describeHTML(body)
			if ok {
				log.Debug("FIRMS returned an HTML error page",
					"url", rawURL,
					"title", title,
					"text", truncate(text, 200),
				)
			} else {
				log.Warn("FIRMS returned an HTML error page",
					"url", rawURL,
					"status", status,
					"title", title,
					"text", truncate(text, 200),
				)
			}
		} else if !ok {
			return table.Table{}, statusError(rawURL, status, body)
		}
		return t, nil
	}, false, func(t table.Table) bool { return !t.Has(SentinelColumn) })
}

func statusError(rawURL string, status int, body []byte) error {
	title, _ := describeHTML(body)
	return failure.New(ErrTransport,
		failure.Message("FIRMS request failed, please retry"),
		failure.Context{
			"url":    rawURL,
			"status": strconv.Itoa(status),
			"title":  title,
		},
	)
}

// get returns the body and status code of a GET request
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, failure.Translate(err, ErrTransport, failure.Context{"url": rawURL})
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, failure.Translate(err, ErrTransport,
			failure.Message("Failed to reach FIRMS, please retry"),
			failure.Context{"url": rawURL},
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, failure.Translate(err, ErrTransport, failure.Context{"url": rawURL})
	}
	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
