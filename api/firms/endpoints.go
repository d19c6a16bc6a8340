package firms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ka2n/firms/api/source"
	"github.com/ka2n/firms/api/table"
	"github.com/morikuni/failure/v2"
)

// Availability bounds the dates archived for a source
type Availability struct {
	DataID  string
	MinDate time.Time
	MaxDate time.Time
}

// Contains reports whether date is within [MinDate, MaxDate]
func (a Availability) Contains(date time.Time) bool {
	return !date.Before(a.MinDate) && !date.After(a.MaxDate)
}

// Clamp bounds date to the available range
func (a Availability) Clamp(date time.Time) time.Time {
	if date.Before(a.MinDate) {
		return a.MinDate
	}
	if date.After(a.MaxDate) {
		return a.MaxDate
	}
	return date
}

// MapKeyStatus is the transaction usage reported for a map key
type MapKeyStatus struct {
	MapKey              string `json:"map_key"`
	CurrentTransactions int    `json:"current_transactions"`
	TransactionLimit    int    `json:"transaction_limit"`
	TransactionInterval string `json:"transaction_interval"`
}

// String formats the status the way the dashboard shows it
func (s MapKeyStatus) String() string {
	return fmt.Sprintf("%d / %d in the past %s", s.CurrentTransactions, s.TransactionLimit, s.TransactionInterval)
}

// Countries fetches the semicolon separated country catalog
func (c *Client) Countries(ctx context.Context) (table.Table, error) {
	return c.FetchTable(ctx, c.host+"/api/countries", ';')
}

// DataAvailability fetches the archived date range of a source
func (c *Client) DataAvailability(ctx context.Context, mapKey string, src source.Type) (Availability, error) {
	rawURL := fmt.Sprintf("%s/api/data_availability/csv/%s/%s", c.host, mapKey, src)
	t, err := c.FetchTable(ctx, rawURL, ',')
	if err != nil {
		return Availability{}, err
	}

	parseErr := func(field string) error {
		return failure.New(ErrParse,
			failure.Message("Unexpected data availability response"),
			failure.Context{"url": rawURL, "field": field},
		)
	}
	if t.Len() == 0 {
		return Availability{}, parseErr("row")
	}

	minDate, err := time.Parse(DateLayout, strings.TrimSpace(t.Value(0, "min_date")))
	if err != nil {
		return Availability{}, parseErr("min_date")
	}
	maxDate, err := time.Parse(DateLayout, strings.TrimSpace(t.Value(0, "max_date")))
	if err != nil {
		return Availability{}, parseErr("max_date")
	}

	return Availability{
		DataID:  t.Value(0, "data_id"),
		MinDate: minDate,
		MaxDate: maxDate,
	}, nil
}

// MapKeyStatus reports the transaction usage of a map key. It is never cached.
func (c *Client) MapKeyStatus(ctx context.Context, mapKey string) (MapKeyStatus, error) {
	rawURL := c.host + "/mapserver/mapkey_status/?MAP_KEY=" + url.QueryEscape(mapKey)
	body, code, err := c.get(ctx, rawURL)
	if err != nil {
		return MapKeyStatus{}, err
	}

	if bytes.Equal(bytes.TrimSpace(body), []byte(InvalidMapKeyBody)) {
		return MapKeyStatus{}, failure.New(ErrInvalidMapKey,
			failure.Message("Invalid MAP_KEY"),
		)
	}
	if code < 200 || code >= 300 {
		return MapKeyStatus{}, statusError(rawURL, code, body)
	}

	var status MapKeyStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return MapKeyStatus{}, failure.Translate(err, ErrParse,
			failure.Message("Unexpected map key status response"),
		)
	}
	return status, nil
}
