// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvass

import (
	"fmt"
	"io"

	"github.com/mtorrado/canvass-etl/pkg/types"
)

// canvassMinFields is the grouping threshold for canvass pages: a data
// row always yields more than two fragments.
const canvassMinFields = 2

// TokenSource abstracts the PDF text collaborator so tests can supply
// synthetic pages.
type TokenSource interface {
	// NumPages returns the page count of the document.
	NumPages() int

	// PageTokens returns the ordered token stream of page n (1-based).
	PageTokens(n int) ([]types.Token, error)
}

// Summary holds counts from one canvass extraction run.
type Summary struct {
	Pages   int
	Groups  int
	Records int
	Dropped int
}

// ProcessDocument runs the canvass pipeline over every page of src:
// group the token stream into candidate rows, repair anomalies, and
// collect the typed results. Pages are processed sequentially and
// independently; no grouping state crosses a page boundary. Unresolved
// groups are counted and excluded. Assembly failures abort the run.
func ProcessDocument(src TokenSource, rep *Repairer, w io.Writer) ([]types.Result, Summary, error) {
	if w == nil {
		w = io.Discard
	}

	var results []types.Result
	summary := Summary{Pages: src.NumPages()}

	for page := 1; page <= summary.Pages; page++ {
		tokens, err := src.PageTokens(page)
		if err != nil {
			return nil, summary, fmt.Errorf("extracting page %d: %w", page, err)
		}

		groups := GroupRuns(tokens, canvassMinFields, PrecinctLead)
		summary.Groups += len(groups)

		for _, group := range groups {
			outcome, err := rep.Repair(group)
			if err != nil {
				return nil, summary, fmt.Errorf("page %d: %w", page, err)
			}
			if !outcome.Resolved() {
				continue
			}
			results = append(results, *outcome.Record)
		}
	}

	summary.Records = len(results)
	summary.Dropped = rep.Dropped()
	fmt.Fprintf(w, "\npages: %d, rows: %d, kept: %d, unresolved: %d\n",
		summary.Pages, summary.Groups, summary.Records, summary.Dropped)

	return results, summary, nil
}
