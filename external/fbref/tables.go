package fbref

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/riskibarqy/football-scraper/internal/domain/stats"
)

// parseDocument parses html with comment markers removed. FBref ships most
// secondary tables inside HTML comments.
func parseDocument(html []byte) (*goquery.Document, error) {
	html = bytes.ReplaceAll(html, []byte("<!--"), nil)
	html = bytes.ReplaceAll(html, []byte("-->"), nil)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// parseTable reads a <table> with one or two header rows. Repeated header rows
// inside the body are skipped; footer rows are kept.
func parseTable(sel *goquery.Selection) stats.RawTable {
	table := stats.RawTable{ID: sel.AttrOr("id", "")}
	table.Headers = parseHeaders(sel.Find("thead").First())

	sel.Find("tbody > tr, tfoot > tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("over_header") {
			return
		}
		row := stats.RawRow{Links: make(map[string]string)}
		tr.Children().Each(func(_ int, cell *goquery.Selection) {
			if !cell.Is("th, td") {
				return
			}
			text := strings.TrimSpace(cell.Text())
			for range colspan(cell) {
				row.Cells = append(row.Cells, text)
			}
			if stat, ok := cell.Attr("data-stat"); ok {
				if href, ok := cell.Find("a[href]").First().Attr("href"); ok {
					row.Links[stat] = href
				}
			}
		})
		if len(row.Cells) == 0 {
			return
		}
		table.Rows = append(table.Rows, row)
	})
	return table
}

func parseHeaders(thead *goquery.Selection) []stats.Header {
	rows := thead.Find("tr")
	if rows.Length() == 0 {
		return nil
	}

	inner := rows.Last()
	var outer []string
	if rows.Length() > 1 {
		rows.First().Children().Each(func(_ int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			for range colspan(cell) {
				outer = append(outer, text)
			}
		})
	}

	var headers []stats.Header
	inner.Children().Each(func(i int, cell *goquery.Selection) {
		name := strings.TrimSpace(cell.Text())
		if name == "" {
			name = cell.AttrOr("aria-label", "")
		}
		for range colspan(cell) {
			h := stats.Header{Inner: name}
			if idx := len(headers); idx < len(outer) {
				h.Outer = outer[idx]
			}
			headers = append(headers, h)
		}
	})
	return headers
}

func colspan(cell *goquery.Selection) int {
	n, err := strconv.Atoi(cell.AttrOr("colspan", "1"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// findTable returns the first table whose id contains fragment.
func findTable(doc *goquery.Document, fragment string) (stats.RawTable, bool) {
	sel := doc.Find(fmt.Sprintf("table[id*=%q]", fragment)).First()
	if sel.Length() == 0 {
		return stats.RawTable{}, false
	}
	return parseTable(sel), true
}

func firstTable(doc *goquery.Document) (stats.RawTable, bool) {
	sel := doc.Find("table").First()
	if sel.Length() == 0 {
		return stats.RawTable{}, false
	}
	return parseTable(sel), true
}

// linkColumn collects the hrefs of the given data-stat cells, row by row.
func linkColumn(table stats.RawTable, stat string, transform func(href string) string) []string {
	out := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		if href, ok := row.Links[stat]; ok {
			out[i] = transform(href)
		}
	}
	return out
}

// pathSegment returns the i-th segment of an href; negative i counts from the end.
func pathSegment(href string, i int) string {
	parts := strings.Split(href, "/")
	if i < 0 {
		i = len(parts) + i
	}
	if i < 0 || i >= len(parts) {
		return ""
	}
	return parts[i]
}
