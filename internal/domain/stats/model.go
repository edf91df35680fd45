// Package stats reshapes scraped two-level HTML stat tables into flat, merged
// per-team and per-player tables.
package stats

import (
	"strconv"
	"strings"
)

// Header is one column of a two-level header. Outer is empty, or starts with
// "Unnamed", when the column has no group.
type Header struct {
	Outer string
	Inner string
}

// RawRow holds the cell texts of one body row. Links maps a cell's data-stat
// attribute to the href of its first anchor.
type RawRow struct {
	Cells []string
	Links map[string]string
}

type RawTable struct {
	ID      string
	Headers []Header
	Rows    []RawRow
}

// AppendColumn adds a derived column; values are matched to rows by index.
func (t *RawTable) AppendColumn(h Header, values []string) {
	t.Headers = append(t.Headers, h)
	for i := range t.Rows {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		t.Rows[i].Cells = append(t.Rows[i].Cells, v)
	}
}

// Category is one FBref season stats page.
type Category struct {
	Name        string
	URL         string
	HTML        string
	Goalkeeping bool
}

var Categories = []Category{
	{Name: "standard", URL: "stats", HTML: "standard"},
	{Name: "goalkeeping", URL: "keepers", HTML: "keeper", Goalkeeping: true},
	{Name: "advanced goalkeeping", URL: "keepersadv", HTML: "keeper_adv", Goalkeeping: true},
	{Name: "shooting", URL: "shooting", HTML: "shooting"},
	{Name: "passing", URL: "passing", HTML: "passing"},
	{Name: "pass types", URL: "passing_types", HTML: "passing_types"},
	{Name: "goal and shot creation", URL: "gca", HTML: "gca"},
	{Name: "defensive", URL: "defense", HTML: "defense"},
	{Name: "possession", URL: "possession", HTML: "possession"},
	{Name: "playing time", URL: "playingtime", HTML: "playing_time"},
	{Name: "misc", URL: "misc", HTML: "misc"},
}

// MatchLogPrefixes are the squad match-log pages fetched per team.
var MatchLogPrefixes = []string{"shooting", "keeper", "passing", "passing_types", "gca", "defense", "possession", "misc"}

// ParseCell converts a cell text to nil, float64 or string.
func ParseCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return f
	}
	return s
}

// PythonTitle upper-cases every letter that follows a non-letter and
// lower-cases the rest, e.g. "passing_types_xag" -> "Passing_Types_Xag".
func PythonTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := isASCIILetter(r) || r > 127 && strings.ToUpper(string(r)) != strings.ToLower(string(r))
		switch {
		case isLetter && !prevLetter:
			b.WriteString(strings.ToUpper(string(r)))
		case isLetter:
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}
