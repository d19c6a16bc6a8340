package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ka2n/firms/api/catalog"
	"github.com/ka2n/firms/api/firms"
	"github.com/ka2n/firms/api/selection"
	"github.com/samber/lo"
)

const shieldsURL = "https://img.shields.io/badge/"

// Badge is a shields.io label describing part of a selection
type Badge struct {
	Label   string
	Message string
	Color   string
}

// URL returns the shields.io static badge URL
func (b Badge) URL() string {
	return shieldsURL + shieldsEscape(b.Label) + "-" + shieldsEscape(b.Message) + "-" + b.Color
}

// Markdown returns the badge as a markdown image
func (b Badge) Markdown() string {
	return "![](" + b.URL() + ")"
}

func (b Badge) String() string {
	return b.Label + ": " + b.Message
}

// shieldsEscape doubles the dash and underscore separators and percent-encodes
// the rest. Commas are kept readable.
func shieldsEscape(s string) string {
	s = strings.ReplaceAll(s, "-", "--")
	s = strings.ReplaceAll(s, "_", "__")
	return strings.ReplaceAll(url.PathEscape(s), "%2C", ",")
}

// Badges describes the selection: country, date and range for online runs,
// years and countries for offline runs, followed by the instrument.
func Badges(sel selection.Selection, cat *catalog.Catalog) []Badge {
	var badges []Badge
	switch sel.Mode {
	case selection.ModeOnline:
		badges = []Badge{
			{Label: "Country", Message: countryDisplay(sel, cat), Color: "blue"},
			{Label: "Date", Message: sel.Date.Format(firms.DateLayout), Color: "brightgreen"},
			{Label: "Date Range", Message: strconv.Itoa(sel.DayRange) + " days", Color: "yellow"},
		}
	case selection.ModeOffline:
		badges = []Badge{
			{Label: "Years", Message: fmt.Sprintf("%d-%d", sel.BeginYear, sel.EndYear), Color: "brightgreen"},
			{Label: "Countries", Message: countryDisplay(sel, cat), Color: "blue"},
		}
	}
	if sel.Source != "" {
		badges = append(badges, Badge{Label: "Instrument", Message: sel.Source.DisplayName(), Color: "orange"})
	}
	return badges
}

func countryDisplay(sel selection.Selection, cat *catalog.Catalog) string {
	if sel.Area == selection.AreaWorld {
		return "World"
	}
	if sel.Mode == selection.ModeOffline || cat == nil {
		return strings.Join(sel.Countries, ", ")
	}
	return strings.Join(lo.Map(sel.Countries, func(code string, _ int) string {
		if name, err := cat.Name(code); err == nil {
			return name
		}
		return code
	}), ", ")
}
