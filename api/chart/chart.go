// Package chart renders aggregate series as terminal charts.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/ka2n/firms/api/aggregate"
	"github.com/samber/lo"
)

const (
	// DefaultWidth is the plot width used when the caller passes 0
	DefaultWidth = 60

	lineHeight = 10
)

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("202")) // orange
	labelStyle = lipgloss.NewStyle().Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// DateLine plots a count by date series. A split series gets one plot per split label.
func DateLine(s aggregate.Series, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	keys := s.Keys()
	if len(keys) == 0 {
		return ""
	}
	caption := fmt.Sprintf("%s .. %s", keys[0], keys[len(keys)-1])

	if s.Split == "" {
		values := lo.Map(s.Buckets, func(b aggregate.Bucket, _ int) float64 { return float64(b.Count) })
		return asciigraph.Plot(values,
			asciigraph.Height(lineHeight),
			asciigraph.Width(width),
			asciigraph.Caption(caption),
		)
	}

	plots := lo.Map(s.Splits(), func(split string, _ int) string {
		return asciigraph.Plot(dense(s, keys, split),
			asciigraph.Height(lineHeight),
			asciigraph.Width(width),
			asciigraph.Caption(split+"  "+caption),
		)
	})
	return strings.Join(plots, "\n\n")
}

// dense returns one value per key for the split, zero where the split has no bucket
func dense(s aggregate.Series, keys []string, split string) []float64 {
	counts := make(map[string]int)
	for _, b := range s.Buckets {
		if b.Split == split {
			counts[b.Key] += b.Count
		}
	}
	return lo.Map(keys, func(k string, _ int) float64 { return float64(counts[k]) })
}

// Bars renders a horizontal bar per bucket, scaled so the largest count fills width
func Bars(s aggregate.Series, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if len(s.Buckets) == 0 {
		return ""
	}

	maxCount := lo.MaxBy(s.Buckets, func(a, b aggregate.Bucket) bool { return a.Count > b.Count }).Count
	labelWidth := lo.Max(lo.Map(s.Buckets, func(b aggregate.Bucket, _ int) int { return lipgloss.Width(b.Label) }))

	lines := lo.Map(s.Buckets, func(b aggregate.Bucket, _ int) string {
		n := 0
		if maxCount > 0 {
			n = b.Count * width / maxCount
		}
		if n == 0 && b.Count > 0 {
			n = 1
		}
		label := b.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(b.Label))
		return labelStyle.Render(label) + " " + barStyle.Render(strings.Repeat("█", n)) + " " + countStyle.Render(fmt.Sprint(b.Count))
	})
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
