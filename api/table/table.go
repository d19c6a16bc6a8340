// Package table implements the row oriented tables returned by the FIRMS API.
//
// A Table keeps cells as strings. An empty cell is treated as null, matching
// how the provider's CSV leaves optional fields blank.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// ErrorCode defines error types for table operations
type ErrorCode string

const (
	// ErrEmpty is returned when the input has no header line
	ErrEmpty ErrorCode = "EmptyTable"
	// ErrMalformed is returned when the input is not delimited text
	ErrMalformed ErrorCode = "MalformedTable"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Table is an ordered set of columns and rows
type Table struct {
	Columns []string
	Rows    [][]string
}

// Group is one bucket produced by CountBy
type Group struct {
	Keys  []string
	Count int
}

// New creates a table with the given columns and no rows
func New(columns ...string) Table {
	return Table{Columns: append([]string(nil), columns...)}
}

// Parse reads delimited text with a header line into a Table.
// Rows shorter than the header are padded with nulls, longer rows are truncated.
func Parse(r io.Reader, delim rune) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, failure.Wrap(err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, failure.New(ErrEmpty, failure.Message("Response body is empty"))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // error pages have ragged lines

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, failure.New(ErrEmpty, failure.Message("Response body is empty"))
		}
		return Table{}, failure.Translate(err, ErrMalformed)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := Table{Columns: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, failure.Translate(err, ErrMalformed,
				failure.Context{"row": strconv.Itoa(len(t.Rows) + 1)},
			)
		}
		t.Rows = append(t.Rows, fit(row, len(header)))
	}

	return t, nil
}

func fit(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column or -1
func (t Table) Index(column string) int {
	return lo.IndexOf(t.Columns, column)
}

// Has reports whether the table has the column
func (t Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Value returns the cell at row i of the column, or "" when the column is absent
func (t Table) Value(i int, column string) string {
	idx := t.Index(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][idx]
}

// Column returns all cells of a column
func (t Table) Column(column string) []string {
	idx := t.Index(column)
	if idx < 0 {
		return nil
	}
	return lo.Map(t.Rows, func(row []string, _ int) string {
		return row[idx]
	})
}

// Distinct returns the sorted non-null values of a column
func (t Table) Distinct(column string) []string {
	values := lo.Uniq(lo.Compact(t.Column(column)))
	sort.Strings(values)
	return values
}

// WithColumn returns a copy with the column set to value on every row.
// An existing column is overwritten.
func (t Table) WithColumn(column, value string) Table {
	return t.WithColumnFunc(column, func(int) string { return value })
}

// WithColumnFunc returns a copy with the column computed per row
func (t Table) WithColumnFunc(column string, fn func(i int) string) Table {
	columns := append([]string(nil), t.Columns...)
	idx := lo.IndexOf(columns, column)
	if idx < 0 {
		columns = append(columns, column)
		idx = len(columns) - 1
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(columns))
		copy(r, row)
		r[idx] = fn(i)
		rows[i] = r
	}
	return Table{Columns: columns, Rows: rows}
}

// Drop returns a copy without the column
func (t Table) Drop(column string) Table {
	idx := t.Index(column)
	if idx < 0 {
		return t
	}
	columns := append(append([]string(nil), t.Columns[:idx]...), t.Columns[idx+1:]...)
	rows := lo.Map(t.Rows, func(row []string, _ int) []string {
		return append(append([]string(nil), row[:idx]...), row[idx+1:]...)
	})
	return Table{Columns: columns, Rows: rows}
}

// Where returns the rows whose value in column satisfies keep. A missing
// column is passed to keep as null for every row.
func (t Table) Where(column string, keep func(value string) bool) Table {
	idx := t.Index(column)
	rows := lo.Filter(t.Rows, func(row []string, _ int) bool {
		if idx < 0 {
			return keep("")
		}
		return keep(row[idx])
	})
	return Table{Columns: append([]string(nil), t.Columns...), Rows: rows}
}

// Concat stacks tables vertically. Columns are the union in first-seen
// order; cells for columns a table lacks are null.
func Concat(tables ...Table) Table {
	var columns []string
	for _, t := range tables {
		for _, c := range t.Columns {
			if !lo.Contains(columns, c) {
				columns = append(columns, c)
			}
		}
	}

	out := Table{Columns: columns}
	for _, t := range tables {
		mapping := lo.Map(t.Columns, func(c string, _ int) int {
			return lo.IndexOf(columns, c)
		})
		for _, row := range t.Rows {
			r := make([]string, len(columns))
			for i, v := range row {
				r[mapping[i]] = v
			}
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// CountBy groups rows by the given columns and counts them. Rows with a null
// key are skipped. Groups are ordered by key, column by column.
func (t Table) CountBy(columns ...string) []Group {
	idx := lo.Map(columns, func(c string, _ int) int { return t.Index(c) })
	if len(columns) == 0 || lo.Contains(idx, -1) {
		return nil
	}

	counts := make(map[string]*Group)
	for _, row := range t.Rows {
		keys := lo.Map(idx, func(i int, _ int) string { return row[i] })
		if lo.Contains(keys, "") {
			continue
		}
		k := strings.Join(keys, "\x00")
		if g, ok := counts[k]; ok {
			g.Count++
			continue
		}
		counts[k] = &Group{Keys: keys, Count: 1}
	}

	groups := lo.Map(lo.Values(counts), func(g *Group, _ int) Group { return *g })
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Keys, groups[j].Keys
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return groups
}
