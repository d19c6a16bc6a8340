// Package resolver turns a selection into the merged record table.
package resolver

import (
	"context"
	"time"

	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/selection"
	"github.com/ka2n/firms/api/source"
	"github.com/ka2n/firms/api/table"
	"github.com/ka2n/firms/log"
	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for resolving selections
type ErrorCode string

const (
	// ErrNotConfigured is returned when the mode's data backend is missing
	ErrNotConfigured ErrorCode = "ResolverNotConfigured"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Remote is the subset of the FIRMS client used to fetch records
type Remote interface {
	CountryURL(mapKey string, src source.Type, country string, dayRange int, date time.Time) string
	AreaURL(mapKey string, src source.Type, area string, dayRange int, date time.Time) string
	FetchTable(ctx context.Context, rawURL string, delim rune) (table.Table, error)
}

// Archive is the offline per-country, per-year store
type Archive interface {
	Placeholder(ctx context.Context, src source.Type) (table.Table, error)
	Load(ctx context.Context, src source.Type, year int, country string) (table.Table, error)
}

// Names lists every country display name, used to expand offline world selections
type Names interface {
	Names() []string
}

// Resolver fetches and merges the tables a selection describes
type Resolver struct {
	remote  Remote
	archive Archive
	names   Names
}

// New creates a resolver. archive and names may be nil when offline mode is unused.
func New(remote Remote, archive Archive, names Names) *Resolver {
	return &Resolver{remote: remote, archive: archive, names: names}
}

// Resolve validates the selection and returns the merged table. An invalid
// selection yields an empty table and a selection.ErrValidation error
// without issuing any request.
func (r *Resolver) Resolve(ctx context.Context, sel selection.Selection) (table.Table, error) {
	sel = sel.Normalize()
	if err := sel.Validate(); err != nil {
		return table.Table{}, err
	}

	var (
		merged table.Table
		err    error
	)
	switch sel.Mode {
	case selection.ModeOnline:
		merged, err = r.online(ctx, sel)
	case selection.ModeOffline:
		merged, err = r.offline(ctx, sel)
	}
	if err != nil {
		return table.Table{}, err
	}

	return Reconcile(merged), nil
}

func (r *Resolver) online(ctx context.Context, sel selection.Selection) (table.Table, error) {
	if r.remote == nil {
		return table.Table{}, failure.New(ErrNotConfigured, failure.Message("Online mode is not configured"))
	}

	if sel.Area == selection.AreaWorld {
		u := r.remote.AreaURL(sel.MapKey, sel.Source, firms.WorldArea, sel.DayRange, sel.Date)
		log.Info("fetching records", "area", firms.WorldArea, "source", sel.Source)
		return r.remote.FetchTable(ctx, u, ',')
	}

	tables := make([]table.Table, 0, len(sel.Countries))
	for _, country := range sel.Countries {
		u := r.remote.CountryURL(sel.MapKey, sel.Source, country, sel.DayRange, sel.Date)
		log.Info("fetching records", "country", country, "source", sel.Source)

		t, err := r.remote.FetchTable(ctx, u, ',')
		if err != nil {
			// one failed country aborts the whole merge
			return table.Table{}, failure.Wrap(err, failure.Context{"country": country})
		}
		tables = append(tables, t)
	}
	return table.Concat(tables...), nil
}

func (r *Resolver) offline(ctx context.Context, sel selection.Selection) (table.Table, error) {
	if r.archive == nil {
		return table.Table{}, failure.New(ErrNotConfigured, failure.Message("Offline mode is not configured"))
	}

	countries := sel.Countries
	if sel.Area == selection.AreaWorld {
		if r.names == nil {
			return table.Table{}, failure.New(selection.ErrValidation,
				failure.Message("World mode needs the country catalog"),
			)
		}
		countries = r.names.Names()
	}

	placeholder, err := r.archive.Placeholder(ctx, sel.Source)
	if err != nil {
		return table.Table{}, err
	}

	tables := []table.Table{placeholder}
	for _, country := range countries {
		for _, year := range sel.Years() {
			t, err := r.archive.Load(ctx, sel.Source, year, country)
			if err != nil {
				return table.Table{}, failure.Wrap(err, failure.Context{"country": country})
			}
			tables = append(tables, t)
		}
	}
	log.Debug("loaded offline archive", "countries", len(countries), "years", len(sel.Years()))
	return table.Concat(tables...), nil
}

// Reconcile drops rows that came from an HTML error page merged into the
// table, along with the sentinel column itself.
func Reconcile(t table.Table) table.Table {
	if !t.Has(firms.SentinelColumn) {
		return t
	}
	clean := t.Where(firms.SentinelColumn, func(v string) bool { return v == "" }).Drop(firms.SentinelColumn)
	if dropped := t.Len() - clean.Len(); dropped > 0 {
		log.Warn("dropped rows from HTML error responses", "rows", dropped)
	}
	return clean
}
