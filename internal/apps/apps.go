// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apps reconstructs grant-application rows from PDF text runs
// and serializes them as an ordered JSON document.
package apps

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mtorrado/canvass-etl/internal/canvass"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

// appFieldCount is the arity of an application row: ID, number, agency,
// project name, received date.
const appFieldCount = 5

// appsMinFields is the grouping threshold for application pages: a data
// row always yields more than three fragments.
const appsMinFields = 3

// Summary holds counts from one applications extraction run.
type Summary struct {
	Pages   int
	Groups  int
	Records int
	Dropped int
}

// AssembleApplication converts an ordered list of raw string fields into
// a typed application row.
func AssembleApplication(fields []string) (types.Application, error) {
	if len(fields) != appFieldCount {
		return types.Application{}, fmt.Errorf("%w: got %d fields, want %d", canvass.ErrFieldCount, len(fields), appFieldCount)
	}
	return types.Application{
		ApplicationID:          fields[0],
		ApplicationNumber:      fields[1],
		ImplementingAgencyName: fields[2],
		ProjectName:            fields[3],
		ReceivedDate:           fields[4],
	}, nil
}

// ProcessDocument runs the applications pipeline over every page of src.
// Groups with the expected arity assemble directly; anything else is
// logged and excluded. Application pages carry no leading-pattern test
// and no canvass-style repair rules.
func ProcessDocument(src canvass.TokenSource, w io.Writer) ([]types.Application, Summary, error) {
	if w == nil {
		w = io.Discard
	}

	var records []types.Application
	summary := Summary{Pages: src.NumPages()}

	for page := 1; page <= summary.Pages; page++ {
		tokens, err := src.PageTokens(page)
		if err != nil {
			return nil, summary, fmt.Errorf("extracting page %d: %w", page, err)
		}

		groups := canvass.GroupRuns(tokens, appsMinFields, nil)
		summary.Groups += len(groups)

		for _, group := range groups {
			app, err := AssembleApplication(canvass.StripBlanks(group))
			if err != nil {
				summary.Dropped++
				fmt.Fprintf(w, "unresolved row (%v): %q\n", err, group)
				continue
			}
			records = append(records, app)
		}
	}

	summary.Records = len(records)
	fmt.Fprintf(w, "\npages: %d, rows: %d, kept: %d, unresolved: %d\n",
		summary.Pages, summary.Groups, summary.Records, summary.Dropped)

	return records, summary, nil
}

// WriteJSON serializes the applications as an indented JSON array. Key
// order follows the Application field order.
func WriteJSON(path string, records []types.Application) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling applications: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
