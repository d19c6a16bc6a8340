// Package aggregate derives the map points and count series from a merged record table.
//
// Every function is pure: the input is never modified and the output does
// not depend on row order.
package aggregate

import (
	"context"
	"strconv"

	"github.com/ka2n/firms/api/geo"
	"github.com/ka2n/firms/api/table"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// ErrorCode defines error types for aggregation
type ErrorCode string

const (
	// ErrNotPlottable signals that a view has nothing informative to show.
	// It is not a failure of the run.
	ErrNotPlottable ErrorCode = "NotPlottable"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Column names of FIRMS record tables
const (
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
	ColumnDate      = "acq_date"
	ColumnCountryID = "country_id"
	ColumnCountry   = "country"
)

// Point is one detection location
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bucket is one row of an aggregate table
type Bucket struct {
	Key   string `json:"key"`
	Split string `json:"split,omitempty"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Series is an aggregate table keyed by Key and optionally split by Split
type Series struct {
	Key     string   `json:"key"`
	Split   string   `json:"split,omitempty"`
	Buckets []Bucket `json:"buckets"`
}

// Total returns the sum of all bucket counts
func (s Series) Total() int {
	return lo.SumBy(s.Buckets, func(b Bucket) int { return b.Count })
}

// Splits returns the distinct split labels in order of first appearance
func (s Series) Splits() []string {
	return lo.Uniq(lo.Map(s.Buckets, func(b Bucket, _ int) string { return b.Split }))
}

// Keys returns the distinct keys in bucket order
func (s Series) Keys() []string {
	return lo.Uniq(lo.Map(s.Buckets, func(b Bucket, _ int) string { return b.Key }))
}

// Namer resolves a country code to its display name
type Namer interface {
	Name(code string) (string, error)
}

func notPlottable(msg string, ctx failure.Context) error {
	return failure.New(ErrNotPlottable, failure.Message(msg), ctx)
}

// Points returns the coordinates of every row. Rows whose coordinates do not
// parse are skipped.
func Points(t table.Table) ([]Point, error) {
	if !t.Has(ColumnLatitude) || !t.Has(ColumnLongitude) {
		return nil, notPlottable("No coordinates to plot", failure.Context{"columns": strconv.Itoa(len(t.Columns))})
	}

	points := make([]Point, 0, t.Len())
	for i := range t.Rows {
		p, ok := pointAt(t, i)
		if ok {
			points = append(points, p)
		}
	}
	return points, nil
}

func pointAt(t table.Table, i int) (Point, bool) {
	lat, err := strconv.ParseFloat(t.Value(i, ColumnLatitude), 64)
	if err != nil {
		return Point{}, false
	}
	lon, err := strconv.ParseFloat(t.Value(i, ColumnLongitude), 64)
	if err != nil {
		return Point{}, false
	}
	return Point{Latitude: lat, Longitude: lon}, true
}

// Centroid returns the mean location of points
func Centroid(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	n := float64(len(points))
	return Point{
		Latitude:  lo.SumBy(points, func(p Point) float64 { return p.Latitude }) / n,
		Longitude: lo.SumBy(points, func(p Point) float64 { return p.Longitude }) / n,
	}, true
}

// CountByDate counts rows per acquisition date, ascending. With
// splitByCountry the buckets are further split by the country column.
// A table without dates or with a single distinct date is not plottable.
func CountByDate(t table.Table, splitByCountry bool) (Series, error) {
	if !t.Has(ColumnDate) {
		return Series{}, notPlottable("No acquisition dates to plot", nil)
	}
	if n := len(t.Distinct(ColumnDate)); n <= 1 {
		return Series{}, notPlottable("Not enough dates to plot", failure.Context{"dates": strconv.Itoa(n)})
	}

	if splitByCountry && t.Has(ColumnCountry) {
		groups := t.CountBy(ColumnDate, ColumnCountry)
		return Series{
			Key:   ColumnDate,
			Split: ColumnCountry,
			Buckets: lo.Map(groups, func(g table.Group, _ int) Bucket {
				return Bucket{Key: g.Keys[0], Split: g.Keys[1], Label: g.Keys[0], Count: g.Count}
			}),
		}, nil
	}

	return Series{
		Key:     ColumnDate,
		Buckets: labelled(t.CountBy(ColumnDate)),
	}, nil
}

func labelled(groups []table.Group) []Bucket {
	return lo.Map(groups, func(g table.Group, _ int) Bucket {
		return Bucket{Key: g.Keys[0], Label: g.Keys[0], Count: g.Count}
	})
}

// CountByCountry counts rows per country code, resolving codes to names
// through names. An unknown code is an error.
func CountByCountry(t table.Table, names Namer) (Series, error) {
	if !t.Has(ColumnCountryID) {
		return Series{}, notPlottable("No country codes to plot", nil)
	}

	buckets := labelled(t.CountBy(ColumnCountryID))
	for i := range buckets {
		name, err := names.Name(buckets[i].Key)
		if err != nil {
			return Series{}, err
		}
		buckets[i].Label = name
	}
	if n := len(lo.Uniq(lo.Map(buckets, func(b Bucket, _ int) string { return b.Label }))); n <= 1 {
		return Series{}, notPlottable("Not enough countries to plot", failure.Context{"countries": strconv.Itoa(n)})
	}
	return Series{Key: ColumnCountryID, Buckets: buckets}, nil
}

// CountByCountryName counts rows per country name of the country column.
// Offline archives are tagged this way.
func CountByCountryName(t table.Table) (Series, error) {
	if !t.Has(ColumnCountry) {
		return Series{}, notPlottable("No countries to plot", nil)
	}
	buckets := labelled(t.CountBy(ColumnCountry))
	if len(buckets) <= 1 {
		return Series{}, notPlottable("Not enough countries to plot", failure.Context{"countries": strconv.Itoa(len(buckets))})
	}
	return Series{Key: ColumnCountry, Buckets: buckets}, nil
}

// CountByCountryFromCoordinates counts rows per country, deriving the
// country from each row's coordinates when the table has no country codes.
// This issues one lookup per row, so callers should pass a geo.Memo.
// Rows the resolver has no country for are left out; any other lookup
// failure aborts.
func CountByCountryFromCoordinates(ctx context.Context, t table.Table, names Namer, resolver geo.Resolver) (Series, error) {
	if t.Has(ColumnCountryID) {
		return CountByCountry(t, names)
	}
	if !t.Has(ColumnLatitude) || !t.Has(ColumnLongitude) {
		return Series{}, notPlottable("No coordinates to geocode", nil)
	}

	countries := make([]string, t.Len())
	for i := range t.Rows {
		p, ok := pointAt(t, i)
		if !ok {
			continue
		}
		country, err := resolver.CountryOf(ctx, p.Latitude, p.Longitude)
		if failure.Is(err, geo.ErrNoCountry) {
			continue
		}
		if err != nil {
			return Series{}, err
		}
		countries[i] = country
	}

	derived := t.WithColumnFunc(ColumnCountry, func(i int) string { return countries[i] })
	return CountByCountryName(derived)
}
