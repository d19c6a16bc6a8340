package api

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/ka2n/firms/api/aggregate"
	"github.com/ka2n/firms/api/cache"
	"github.com/ka2n/firms/api/catalog"
	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/geo"
	"github.com/ka2n/firms/api/local"
	"github.com/ka2n/firms/api/resolver"
	"github.com/ka2n/firms/api/selection"
	"github.com/ka2n/firms/api/source"
	"github.com/ka2n/firms/api/table"
	"github.com/ka2n/firms/config"
	"github.com/ka2n/firms/log"
	"github.com/morikuni/failure/v2"
)

// Session is the state shared by pipeline runs: configuration, the FIRMS
// client with its memo cache, the country catalog and the geocoder.
// A Session is safe for concurrent use.
type Session struct {
	Config config.Config
	Client *firms.Client
	Local  *local.Store

	mu       sync.Mutex
	catalog  *catalog.Catalog
	geocoder geo.Resolver

	now func() time.Time
}

// NewSession creates a session from configuration
func NewSession(cfg config.Config) *Session {
	tables := cache.New[table.Table]("table")
	if cfg.CacheDir != "" {
		tables = cache.NewWithDir[table.Table](filepath.Join(cfg.CacheDir, "table"), cfg.CacheTTL)
	}
	return &Session{
		Config: cfg,
		Client: firms.NewClient(cfg.FIRMSHost, firms.WithCache(tables), firms.WithUserAgent(UserAgent())),
		Local:  local.NewStore(cfg.DataDir),
		now:    time.Now,
	}
}

// Catalog returns the country catalog, fetching it on first use
func (s *Session) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog != nil {
		return s.catalog, nil
	}

	c, err := catalog.Load(ctx, s.Client)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded country catalog", "countries", c.Len())
	s.catalog = c
	return c, nil
}

// Geocoder returns the memoized reverse geocoder. Google is used when an API
// key is configured, Baidu otherwise.
func (s *Session) Geocoder() (geo.Resolver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.geocoder != nil {
		return s.geocoder, nil
	}

	var next geo.Resolver
	if s.Config.GoogleMapsKey != "" {
		g, err := geo.NewGoogle(s.Config.GoogleMapsKey)
		if err != nil {
			return nil, err
		}
		next = g
	} else {
		creds, err := geo.LoadCredentials(s.Config.GeoKeyFile)
		if err != nil {
			return nil, err
		}
		next = geo.NewBaidu(s.Config.BaiduHost, creds)
	}
	s.geocoder = geo.NewMemo(next)
	return s.geocoder, nil
}

// SetGeocoder replaces the geocoder, e.g. with a fake in tests
func (s *Session) SetGeocoder(r geo.Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geocoder = r
}

// Run resolves the selection and computes every view. Views that have
// nothing to show are left nil.
func (s *Session) Run(ctx context.Context, sel selection.Selection) (*Result, error) {
	sel = sel.Normalize()
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	// offline country selections are served from disk alone
	var (
		cat   *catalog.Catalog
		names resolver.Names
	)
	if sel.Mode == selection.ModeOnline || sel.Area == selection.AreaWorld {
		c, err := s.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		cat, names = c, c
	}

	merged, err := resolver.New(s.Client, s.Local, names).Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}
	log.Info("resolved records", "rows", merged.Len(), "mode", sel.Mode)

	result := &Result{
		Selection: sel,
		Table:     merged,
		Badges:    Badges(sel, cat),
		FetchedAt: s.now(),
	}

	points, err := aggregate.Points(merged)
	if result.Points, err = plottable(points, err); err != nil {
		return nil, err
	}
	byDate, err := aggregate.CountByDate(merged, sel.Mode == selection.ModeOffline)
	if result.ByDate, err = plottableSeries(byDate, err); err != nil {
		return nil, err
	}
	result.ByCountry, err = s.countByCountry(ctx, sel, merged, cat)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) countByCountry(ctx context.Context, sel selection.Selection, t table.Table, cat *catalog.Catalog) (*aggregate.Series, error) {
	var (
		series aggregate.Series
		err    error
	)
	switch {
	case sel.Mode == selection.ModeOffline:
		series, err = aggregate.CountByCountryName(t)
	case !sel.Geocode:
		series, err = aggregate.CountByCountry(t, cat)
	default:
		g, gerr := s.Geocoder()
		if gerr != nil {
			return nil, gerr
		}
		series, err = aggregate.CountByCountryFromCoordinates(ctx, t, cat, g)
	}
	return plottableSeries(series, err)
}

// plottable turns a not plottable result into a nil value
func plottable[T any](v T, err error) (T, error) {
	if failure.Is(err, aggregate.ErrNotPlottable) {
		log.Debug("view is not plottable", "reason", failure.MessageOf(err).String())
		var zero T
		return zero, nil
	}
	return v, err
}

func plottableSeries(s aggregate.Series, err error) (*aggregate.Series, error) {
	s, err = plottable(s, err)
	if err != nil || s.Key == "" {
		return nil, err
	}
	return &s, nil
}

// Availability returns the date range the API has for a source
func (s *Session) Availability(ctx context.Context, mapKey string, src source.Type) (firms.Availability, error) {
	if mapKey == "" {
		mapKey = s.Config.MapKey
	}
	return s.Client.DataAvailability(ctx, mapKey, src)
}

// MapKeyStatus returns the transaction usage of the configured map key
func (s *Session) MapKeyStatus(ctx context.Context, mapKey string) (firms.MapKeyStatus, error) {
	if mapKey == "" {
		mapKey = s.Config.MapKey
	}
	return s.Client.MapKeyStatus(ctx, mapKey)
}
