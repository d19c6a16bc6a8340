// Package geo reverse geocodes coordinates into country names.
package geo

import (
	"context"
)

// ErrorCode defines error types for reverse geocoding
type ErrorCode string

const (
	// ErrConfiguration is returned when credentials are missing or malformed
	ErrConfiguration ErrorCode = "GeoConfiguration"

	// ErrTransport is returned when the lookup itself failed: network errors,
	// non-2xx statuses, empty or undecodable bodies
	ErrTransport ErrorCode = "GeoTransport"

	// ErrNoCountry is returned when the provider answered but has no country
	// for the location, e.g. open sea
	ErrNoCountry ErrorCode = "GeoNoCountry"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Resolver resolves a coordinate to a country name
type Resolver interface {
	CountryOf(ctx context.Context, lat, lon float64) (string, error)
}
