// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext turns the positional text content of a PDF into the
// ordered (text, end-of-line) token stream the grouping stages consume.
package pdftext

import (
	"fmt"
	"os"
	"sort"

	"github.com/ledongthuc/pdf"

	"github.com/mtorrado/canvass-etl/pkg/types"
)

// Layout tolerances, in multiples of the running font size. Fragments
// closer than fragGap are glyphs of one word; gaps up to wordGap are
// word spaces inside one cell; anything wider starts a new cell.
const (
	rowTolerance = 2.0
	fragGap      = 0.15
	wordGap      = 1.0
)

// Document is an open PDF exposing per-page token streams.
type Document struct {
	f *os.File
	r *pdf.Reader
}

// Open opens the PDF at path. Opening is one-shot: any parse failure is
// returned to the caller and aborts the run.
func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Document{f: f, r: r}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.f.Close()
}

// NumPages returns the document's page count.
func (d *Document) NumPages() int {
	return d.r.NumPage()
}

// PageTokens extracts the ordered token stream of page n (1-based).
// Positional text items are bucketed into visual rows by Y coordinate,
// rows are ordered top to bottom, fragments inside a row left to right,
// and the last fragment of each row carries the end-of-line flag.
func (d *Document) PageTokens(n int) ([]types.Token, error) {
	page := d.r.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}
	return buildTokens(page.Content().Text), nil
}

// Info returns the document information dictionary as plain strings.
// Diagnostic only; missing dictionaries yield an empty map.
func (d *Document) Info() map[string]string {
	info := d.r.Trailer().Key("Info")
	out := make(map[string]string)
	for _, k := range info.Keys() {
		v := info.Key(k)
		switch v.Kind() {
		case pdf.String:
			out[k] = v.Text()
		default:
			out[k] = v.String()
		}
	}
	return out
}

// row collects the text items sharing one baseline.
type row struct {
	y     float64
	items []pdf.Text
}

// buildTokens converts raw positional text items into the token stream.
// Split out from PageTokens so the layout heuristics are testable on
// synthetic items.
func buildTokens(texts []pdf.Text) []types.Token {
	rows := groupRows(texts)

	var tokens []types.Token
	for _, r := range rows {
		frags := mergeFragments(r.items)
		for i, f := range frags {
			tokens = append(tokens, types.Token{Text: f, EOL: i == len(frags)-1})
		}
	}
	return tokens
}

// groupRows buckets items into baseline rows with a small Y tolerance
// and orders the rows top to bottom. PDF Y coordinates grow upward.
func groupRows(texts []pdf.Text) []row {
	var rows []row
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		placed := false
		for i := range rows {
			if abs(rows[i].y-t.Y) < rowTolerance {
				rows[i].items = append(rows[i].items, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, row{y: t.Y, items: []pdf.Text{t}})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })
	for i := range rows {
		items := rows[i].items
		sort.SliceStable(items, func(a, b int) bool { return items[a].X < items[b].X })
	}
	return rows
}

// mergeFragments joins a row's items into cell-level fragments. Adjacent
// glyph runs concatenate; word-sized gaps insert a space; column-sized
// gaps close the fragment.
func mergeFragments(items []pdf.Text) []string {
	var frags []string
	var cur string
	var curEnd float64
	var curSize float64

	flush := func() {
		if cur != "" {
			frags = append(frags, cur)
		}
		cur = ""
	}

	for _, t := range items {
		size := t.FontSize
		if size <= 0 {
			size = 10
		}
		if cur == "" {
			cur = t.S
			curEnd = t.X + t.W
			curSize = size
			continue
		}

		gap := t.X - curEnd
		switch {
		case gap < fragGap*curSize:
			cur += t.S
		case gap < wordGap*curSize:
			cur += " " + t.S
		default:
			flush()
			cur = t.S
		}
		curEnd = t.X + t.W
		curSize = size
	}
	flush()
	return frags
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
