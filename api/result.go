package api

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ka2n/firms/api/aggregate"
	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/selection"
	"github.com/ka2n/firms/api/table"
)

// Result is the immutable outcome of one pipeline run
type Result struct {
	Selection selection.Selection

	// Table is the merged record table
	Table table.Table

	// Points, ByDate and ByCountry are nil when there is nothing to plot
	Points    []aggregate.Point
	ByDate    *aggregate.Series
	ByCountry *aggregate.Series

	Badges    []Badge
	FetchedAt time.Time
}

// Summary is the JSON view of a result
type Summary struct {
	Rows      int                 `json:"rows"`
	Selection selection.Selection `json:"selection"`
	Center    *aggregate.Point    `json:"center,omitempty"`
	ByDate    *aggregate.Series   `json:"by_date,omitempty"`
	ByCountry *aggregate.Series   `json:"by_country,omitempty"`
	Badges    []string            `json:"badges"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// Summary returns the result without the raw records
func (r *Result) Summary() Summary {
	s := Summary{
		Rows:      r.Table.Len(),
		Selection: r.Selection,
		ByDate:    r.ByDate,
		ByCountry: r.ByCountry,
		Badges:    make([]string, 0, len(r.Badges)),
		FetchedAt: r.FetchedAt,
	}
	if c, ok := r.Center(); ok {
		s.Center = &c
	}
	for _, b := range r.Badges {
		s.Badges = append(s.Badges, b.String())
	}
	return s
}

// Center returns the centroid of the detections
func (r *Result) Center() (aggregate.Point, bool) {
	return aggregate.Centroid(r.Points)
}

// MapURL returns the FIRMS fire map viewer centered on the detections.
// Offline results have no date so the viewer opens on its default window.
func (r *Result) MapURL(host string) *url.URL {
	u, err := url.Parse(host)
	if err != nil {
		return nil
	}
	u.Path = "/map/"

	zoom := 3
	center := aggregate.Point{}
	if c, ok := r.Center(); ok {
		center, zoom = c, 5
	}
	if r.Selection.Area == selection.AreaWorld {
		zoom = 2
	}

	fragment := fmt.Sprintf("@%.1f,%.1f,%dz", center.Longitude, center.Latitude, zoom)
	if r.Selection.Mode == selection.ModeOnline && !r.Selection.Date.IsZero() {
		end := r.Selection.Date.AddDate(0, 0, r.Selection.DayRange-1)
		fragment = fmt.Sprintf("d:%s..%s;%s", r.Selection.Date.Format(firms.DateLayout), end.Format(firms.DateLayout), fragment)
	}
	u.Fragment = fragment
	return u
}
