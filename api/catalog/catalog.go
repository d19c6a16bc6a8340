// Package catalog maps FIRMS country codes to display names.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/ka2n/firms/api/table"
	"github.com/ka2n/firms/log"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// ErrorCode defines error types for catalog lookups
type ErrorCode string

const (
	// ErrUnknownCountry is returned for codes or names missing from the catalog
	ErrUnknownCountry ErrorCode = "UnknownCountry"

	// ErrMalformedCatalog is returned when the catalog lacks the expected columns
	ErrMalformedCatalog ErrorCode = "MalformedCatalog"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

const (
	// the provider spells it this way
	codeColumn = "abreviation"
	nameColumn = "name"
)

// Country is one catalog entry
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Catalog is read-only after construction and safe for concurrent use
type Catalog struct {
	byCode    map[string]string
	byName    map[string]string
	countries []Country
}

// Fetcher retrieves the raw country table
type Fetcher interface {
	Countries(ctx context.Context) (table.Table, error)
}

// Load fetches and builds the catalog
func Load(ctx context.Context, f Fetcher) (*Catalog, error) {
	t, err := f.Countries(ctx)
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}

// FromTable builds a catalog from a table with abreviation and name columns
func FromTable(t table.Table) (*Catalog, error) {
	if !t.Has(codeColumn) || !t.Has(nameColumn) {
		return nil, failure.New(ErrMalformedCatalog,
			failure.Message("Country catalog has an unexpected format"),
			failure.Context{"columns": strings.Join(t.Columns, ",")},
		)
	}

	var countries []Country
	for i := range t.Rows {
		code := strings.ToUpper(strings.TrimSpace(t.Value(i, codeColumn)))
		name := strings.TrimSpace(t.Value(i, nameColumn))
		if code == "" {
			continue
		}
		countries = append(countries, Country{Code: code, Name: name})
	}
	return New(countries), nil
}

// New builds a catalog from entries. Later duplicates of a code are ignored.
func New(countries []Country) *Catalog {
	c := &Catalog{
		byCode: make(map[string]string, len(countries)),
		byName: make(map[string]string, len(countries)),
	}
	for _, country := range countries {
		code := strings.ToUpper(country.Code)
		if _, dup := c.byCode[code]; dup {
			log.Warn("duplicate country code in catalog", "code", code)
			continue
		}
		c.byCode[code] = country.Name
		c.byName[country.Name] = code
		c.countries = append(c.countries, Country{Code: code, Name: country.Name})
	}
	sort.SliceStable(c.countries, func(i, j int) bool {
		return c.countries[i].Name < c.countries[j].Name
	})
	return c
}

// Name returns the display name of a code
func (c *Catalog) Name(code string) (string, error) {
	name, ok := c.byCode[strings.ToUpper(code)]
	if !ok {
		return "", failure.New(ErrUnknownCountry,
			failure.Message("Unknown country code"),
			failure.Context{"code": code},
		)
	}
	return name, nil
}

// Code returns the code of a display name
func (c *Catalog) Code(name string) (string, error) {
	code, ok := c.byName[name]
	if !ok {
		return "", failure.New(ErrUnknownCountry,
			failure.Message("Unknown country name"),
			failure.Context{"name": name},
		)
	}
	return code, nil
}

// Resolve accepts either a code or a display name and returns the entry
func (c *Catalog) Resolve(codeOrName string) (Country, error) {
	if name, err := c.Name(codeOrName); err == nil {
		return Country{Code: strings.ToUpper(codeOrName), Name: name}, nil
	}
	code, err := c.Code(codeOrName)
	if err != nil {
		return Country{}, err
	}
	return Country{Code: code, Name: codeOrName}, nil
}

// Countries returns all entries sorted by display name
func (c *Catalog) Countries() []Country {
	return append([]Country(nil), c.countries...)
}

// Codes returns all codes sorted by display name
func (c *Catalog) Codes() []string {
	return lo.Map(c.countries, func(country Country, _ int) string { return country.Code })
}

// Names returns all display names sorted
func (c *Catalog) Names() []string {
	return lo.Map(c.countries, func(country Country, _ int) string { return country.Name })
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.countries)
}
