package cli

import (
	"fmt"
	"strings"

	"github.com/ka2n/firms/api"
	"github.com/ka2n/firms/api/aggregate"
	"github.com/ka2n/firms/api/chart"
	"github.com/ka2n/firms/api/table"
	"github.com/samber/lo"
)

// rawRowLimit caps the records printed with --raw
const rawRowLimit = 50

// section is markdown followed by a pre-rendered chart. Charts bypass the
// markdown renderer so their styling survives.
type section struct {
	Markdown string
	Chart    string
}

type reportOptions struct {
	Host  string
	Raw   bool
	Width int
}

func report(r *api.Result, opts reportOptions) []section {
	sections := []section{{Markdown: header(r, opts)}}

	if r.ByDate != nil {
		sections = append(sections, section{
			Markdown: seriesHeading("Count by Date", *r.ByDate, opts.Raw),
			Chart:    chart.DateLine(*r.ByDate, opts.Width),
		})
	}
	if r.ByCountry != nil {
		sections = append(sections, section{
			Markdown: seriesHeading("Count by Country", *r.ByCountry, opts.Raw),
			Chart:    chart.Bars(*r.ByCountry, opts.Width),
		})
	}
	if opts.Raw {
		sections = append(sections, section{Markdown: "### Original Data\n\n" + markdownTable(r.Table, rawRowLimit)})
	}
	return sections
}

func header(r *api.Result, opts reportOptions) string {
	var b strings.Builder
	b.WriteString("# Worldwide Fire Data Visualization\n\n")
	for _, badge := range r.Badges {
		fmt.Fprintf(&b, "- **%s**: %s\n", badge.Label, badge.Message)
	}
	b.WriteString("\n")

	if len(r.Points) == 0 {
		b.WriteString("No fire detections for this selection.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d fire detections", len(r.Points))
	if c, ok := r.Center(); ok {
		fmt.Fprintf(&b, " centered at %.2f, %.2f", c.Latitude, c.Longitude)
	}
	b.WriteString(".\n")
	if u := r.MapURL(opts.Host); u != nil {
		fmt.Fprintf(&b, "\n[Open in the FIRMS fire map](%s)\n", u)
	}
	if r.ByDate == nil && r.ByCountry == nil {
		b.WriteString("\nNot enough distinct dates or countries to chart.\n")
	}
	return b.String()
}

func seriesHeading(title string, s aggregate.Series, withTable bool) string {
	md := "### " + title
	if withTable {
		md += "\n\n" + seriesTable(s)
	}
	return md
}

// markdownTable renders up to limit rows, skipping empty columns
func markdownTable(t table.Table, limit int) string {
	if t.Len() == 0 {
		return "No records."
	}
	columns := lo.Filter(t.Columns, func(c string, _ int) bool {
		return len(lo.Compact(t.Column(c))) > 0
	})

	var b strings.Builder
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")
	for i := range t.Rows {
		if i == limit {
			break
		}
		cells := lo.Map(columns, func(c string, _ int) string {
			return strings.ReplaceAll(t.Value(i, c), "|", `\|`)
		})
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	if t.Len() > limit {
		fmt.Fprintf(&b, "\n%d of %d records shown.\n", limit, t.Len())
	}
	return b.String()
}

// seriesTable renders a series as a two or three column markdown table
func seriesTable(s aggregate.Series) string {
	var b strings.Builder
	if s.Split != "" {
		b.WriteString("| " + s.Key + " | " + s.Split + " | count |\n| --- | --- | ---: |\n")
		for _, bucket := range s.Buckets {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", bucket.Label, bucket.Split, bucket.Count)
		}
		return b.String()
	}
	b.WriteString("| " + s.Key + " | count |\n| --- | ---: |\n")
	for _, bucket := range s.Buckets {
		fmt.Fprintf(&b, "| %s | %d |\n", bucket.Label, bucket.Count)
	}
	return b.String()
}
