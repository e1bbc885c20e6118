// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvass

import (
	"regexp"
	"strings"

	"github.com/mtorrado/canvass-etl/pkg/types"
)

// PrecinctLead matches the 5-digit identifier a canvass data row starts with.
var PrecinctLead = regexp.MustCompile(`^\d{5}$`)

// GroupRuns folds one page's token stream into candidate row groups.
// Tokens accumulate into a buffer; each end-of-line token closes the
// buffer as a group. A closed group is retained only if it holds more
// than minFields tokens and, when lead is non-nil, its first token
// matches lead. The buffer resets after every closure, kept or not, so
// groups are never split or merged after the fact.
func GroupRuns(tokens []types.Token, minFields int, lead *regexp.Regexp) [][]string {
	var groups [][]string
	var buf []string

	for _, tok := range tokens {
		buf = append(buf, tok.Text)
		if !tok.EOL {
			continue
		}
		if len(buf) > minFields && (lead == nil || lead.MatchString(buf[0])) {
			groups = append(groups, buf)
		}
		buf = nil
	}

	return groups
}

// StripBlanks drops whitespace-only fields from a group, preserving order.
func StripBlanks(group []string) []string {
	out := make([]string, 0, len(group))
	for _, f := range group {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}
