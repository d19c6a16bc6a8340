package geo

import (
	"context"
	"fmt"
	"math"

	"github.com/ka2n/firms/api/cache"
	"github.com/morikuni/failure/v2"
)

// lookup is cached for found and not-found answers alike, so the same
// empty location is not queried twice
type lookup struct {
	Country string
	Found   bool
}

// Memo caches another resolver's answers by coordinate rounded to two decimals
type Memo struct {
	next  Resolver
	cache *cache.Cache[lookup]
}

// NewMemo wraps next with a session scoped cache
func NewMemo(next Resolver) *Memo {
	return &Memo{
		next:  next,
		cache: cache.NewWithDir[lookup]("", 0),
	}
}

// MemoKey returns the cache key for a coordinate
func MemoKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", round2(lat), round2(lon))
}

func round2(f float64) float64 {
	r := math.Round(f*100) / 100
	if r == 0 {
		return 0 // no "-0.00"
	}
	return r
}

// CountryOf returns the cached answer or asks the wrapped resolver.
// Transport failures are not cached.
func (m *Memo) CountryOf(ctx context.Context, lat, lon float64) (string, error) {
	v, err := m.cache.GetOrSet(MemoKey(lat, lon), func() (lookup, error) {
		country, err := m.next.CountryOf(ctx, round2(lat), round2(lon))
		if failure.Is(err, ErrNoCountry) {
			return lookup{}, nil
		}
		if err != nil {
			return lookup{}, err
		}
		return lookup{Country: country, Found: true}, nil
	}, false)
	if err != nil {
		return "", err
	}
	if !v.Found {
		return "", failure.New(ErrNoCountry, failure.Context{"location": MemoKey(lat, lon)})
	}
	return v.Country, nil
}

// Len reports how many coordinates have been resolved
func (m *Memo) Len() int {
	return m.cache.Len()
}
