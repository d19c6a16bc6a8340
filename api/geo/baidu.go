package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ka2n/firms/log"
	"github.com/morikuni/failure/v2"
)

const (
	// DefaultBaiduHost is the Baidu Maps API host
	DefaultBaiduHost = "https://api.map.baidu.com"

	reverseGeocodingURI = "/reverse_geocoding/v3"
)

// Baidu resolves countries with the Baidu reverse geocoding API
type Baidu struct {
	host   string
	ak     string
	signer Signer
	client *http.Client
}

// BaiduOption configures a Baidu resolver
type BaiduOption func(*Baidu)

// WithHTTPClient sets the HTTP client used for lookups
func WithHTTPClient(hc *http.Client) BaiduOption {
	return func(b *Baidu) {
		b.client = hc
	}
}

// NewBaidu creates a resolver. An empty host uses DefaultBaiduHost.
func NewBaidu(host string, creds Credentials, opts ...BaiduOption) *Baidu {
	if host == "" {
		host = DefaultBaiduHost
	}
	b := &Baidu{
		host:   strings.TrimRight(host, "/"),
		ak:     creds.AK,
		signer: Signer{SK: creds.SK},
		client: &http.Client{Transport: log.Transport(), Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type reverseGeocodingResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Result  struct {
		AddressComponent struct {
			Country string `json:"country"`
		} `json:"addressComponent"`
	} `json:"result"`
}

// Params returns the ordered request parameters for a coordinate
func (b *Baidu) Params(lat, lon float64) []Param {
	return []Param{
		{"ak", b.ak},
		{"output", "json"},
		{"coordtype", "wgs84ll"},
		{"extensions_poi", "0"},
		{"location", formatCoordinate(lat) + "," + formatCoordinate(lon)},
	}
}

// URL returns the signed request URL for a coordinate
func (b *Baidu) URL(lat, lon float64) string {
	params := b.Params(lat, lon)
	return b.host + Query(reverseGeocodingURI, params) + "&sn=" + b.signer.Sign(reverseGeocodingURI, params)
}

// CountryOf returns the country name at the coordinate
func (b *Baidu) CountryOf(ctx context.Context, lat, lon float64) (string, error) {
	ctxFields := failure.Context{"location": formatCoordinate(lat) + "," + formatCoordinate(lon)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.URL(lat, lon), nil)
	if err != nil {
		return "", failure.Translate(err, ErrTransport, ctxFields)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", failure.Translate(err, ErrTransport, ctxFields)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", failure.Translate(err, ErrTransport, ctxFields)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", failure.New(ErrTransport, ctxFields,
			failure.Context{"status": strconv.Itoa(resp.StatusCode)},
			failure.Message("Geocoding request failed"),
		)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", failure.New(ErrTransport, ctxFields, failure.Message("Geocoding response is empty"))
	}

	var r reverseGeocodingResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", failure.Translate(err, ErrTransport, ctxFields,
			failure.Message("Geocoding response is not JSON"),
		)
	}
	if r.Status != 0 {
		return "", failure.New(ErrNoCountry, ctxFields,
			failure.Context{"status": strconv.Itoa(r.Status)},
			failure.Message(r.Message),
		)
	}
	if r.Result.AddressComponent.Country == "" {
		return "", failure.New(ErrNoCountry, ctxFields)
	}
	return r.Result.AddressComponent.Country, nil
}

// formatCoordinate prints a float the way the geocoder's sample clients do:
// shortest representation, always with a fractional part.
func formatCoordinate(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
