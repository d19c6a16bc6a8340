// Package cli implements the command-line interface for firms.
//
// The cli package provides:
// - Selection flags for online (FIRMS API) and offline (local archive) runs
// - Markdown reports with terminal charts, shown in a pager on a TTY
// - Map viewer integration through the default browser
// - Catalog, data availability and MAP_KEY status lookups
package cli
