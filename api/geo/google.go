package geo

import (
	"context"
	"strconv"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
	"googlemaps.github.io/maps"
)

// Google resolves countries with the Google Maps Geocoding API
type Google struct {
	client *maps.Client
}

// NewGoogle creates a resolver for the API key. Extra options such as
// maps.WithBaseURL or maps.WithHTTPClient are passed to the maps client.
func NewGoogle(apiKey string, opts ...maps.ClientOption) (*Google, error) {
	if apiKey == "" {
		return nil, failure.New(ErrConfiguration, failure.Message("Google Maps API key is not set"))
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, failure.Translate(err, ErrConfiguration)
	}
	return &Google{client: client}, nil
}

// CountryOf returns the long name of the country address component
func (g *Google) CountryOf(ctx context.Context, lat, lon float64) (string, error) {
	ctxFields := failure.Context{
		"location": strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64),
	}

	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:     &maps.LatLng{Lat: lat, Lng: lon},
		ResultType: []string{"country"},
	})
	if err != nil {
		return "", failure.Translate(err, ErrTransport, ctxFields)
	}

	for _, r := range results {
		c, ok := lo.Find(r.AddressComponents, func(a maps.AddressComponent) bool {
			return lo.Contains(a.Types, "country")
		})
		if ok && c.LongName != "" {
			return c.LongName, nil
		}
	}
	return "", failure.New(ErrNoCountry, ctxFields)
}
