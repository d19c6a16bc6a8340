// Package local reads the offline per-country, per-year archive.
//
// Files are laid out as {dir}/{source}/{year}/{source}_{year}_{country}.csv,
// with {dir}/{source}/{source}_empty.csv holding the header-only placeholder
// substituted for missing files.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ka2n/firms/api/cache"
	"github.com/ka2n/firms/api/source"
	"github.com/ka2n/firms/api/table"
	"github.com/ka2n/firms/log"
	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for the offline archive
type ErrorCode string

const (
	// ErrMissingPlaceholder is returned when the empty-schema file is absent
	ErrMissingPlaceholder ErrorCode = "MissingPlaceholder"

	// ErrRead is returned for unreadable or malformed archive files
	ErrRead ErrorCode = "ReadArchive"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// CountryColumn is the tag column added to every loaded table
const CountryColumn = "country"

// Store reads tables below a root directory
type Store struct {
	dir    string
	tables *cache.Cache[table.Table]
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		tables: cache.NewWithDir[table.Table]("", 0),
	}
}

// FileName converts a country name into the archive's file name form
func FileName(country string) string {
	country = strings.ReplaceAll(country, " ", "_")
	return strings.ReplaceAll(country, "'", "_")
}

// Path returns the archive file for a source, year and country
func (s *Store) Path(src source.Type, year int, country string) string {
	y := strconv.Itoa(year)
	return filepath.Join(s.dir, src.String(), y,
		fmt.Sprintf("%s_%s_%s.csv", src, y, FileName(country)))
}

// PlaceholderPath returns the header-only file for a source
func (s *Store) PlaceholderPath(src source.Type) string {
	return filepath.Join(s.dir, src.String(), src.String()+"_empty.csv")
}

// Placeholder returns the empty-schema table tagged with a null country
func (s *Store) Placeholder(ctx context.Context, src source.Type) (table.Table, error) {
	t, err := s.read(ctx, s.PlaceholderPath(src))
	if errors.Is(err, fs.ErrNotExist) {
		return table.Table{}, failure.New(ErrMissingPlaceholder,
			failure.Message("Offline archive placeholder file is missing"),
			failure.Context{"path": s.PlaceholderPath(src)},
		)
	}
	if err != nil {
		return table.Table{}, err
	}
	return t.WithColumn(CountryColumn, ""), nil
}

// Load returns the table for a source, year and country tagged with the
// country. A missing file yields the placeholder instead.
func (s *Store) Load(ctx context.Context, src source.Type, year int, country string) (table.Table, error) {
	path := s.Path(src, year, country)
	t, err := s.read(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("offline archive file missing, using placeholder", "path", path)
		return s.Placeholder(ctx, src)
	}
	if err != nil {
		return table.Table{}, err
	}
	return t.WithColumn(CountryColumn, country), nil
}

func (s *Store) read(ctx context.Context, path string) (table.Table, error) {
	if err := ctx.Err(); err != nil {
		return table.Table{}, failure.Wrap(err)
	}

	return s.tables.GetOrSet(path, func() (table.Table, error) {
		f, err := os.Open(path)
		if err != nil {
			// keep fs.ErrNotExist visible to callers
			return table.Table{}, err
		}
		defer f.Close()

		t, err := table.Parse(f, ',')
		if err != nil {
			return table.Table{}, failure.Translate(err, ErrRead,
				failure.Message("Failed to read offline archive file"),
				failure.Context{"path": path},
			)
		}
		return t, nil
	}, false)
}
