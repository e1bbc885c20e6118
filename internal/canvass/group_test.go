// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvass

import (
	"reflect"
	"testing"

	"github.com/mtorrado/canvass-etl/pkg/types"
)

// toks builds a token stream from rows of strings; the last string of
// each row carries the end-of-line flag.
func toks(rows ...[]string) []types.Token {
	var out []types.Token
	for _, row := range rows {
		for i, s := range row {
			out = append(out, types.Token{Text: s, EOL: i == len(row)-1})
		}
	}
	return out
}

func TestGroupRuns(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []types.Token
		minFields int
		lead      bool
		want      [][]string
	}{
		{
			name:      "full data row kept",
			tokens:    toks([]string{"20470", "Vote by Mail", "41", "5", "12.20 %", "5", "0", "4", "1"}),
			minFields: 2,
			lead:      true,
			want:      [][]string{{"20470", "Vote by Mail", "41", "5", "12.20 %", "5", "0", "4", "1"}},
		},
		{
			name:      "header row rejected by lead pattern",
			tokens:    toks([]string{"Precinct", "Method", "Registered"}),
			minFields: 2,
			lead:      true,
			want:      nil,
		},
		{
			name:      "short row rejected by threshold",
			tokens:    toks([]string{"20470", "Total"}),
			minFields: 2,
			lead:      true,
			want:      nil,
		},
		{
			name: "buffer resets after rejected row",
			tokens: toks(
				[]string{"Measure C", "Continued"},
				[]string{"20470", "Total", "0", "0"},
			),
			minFields: 2,
			lead:      true,
			want:      [][]string{{"20470", "Total", "0", "0"}},
		},
		{
			name: "multiple rows on one page",
			tokens: toks(
				[]string{"20470", "Total", "41", "0", "0.00 %"},
				[]string{"30120", "Total", "0", "0"},
			),
			minFields: 2,
			lead:      true,
			want: [][]string{
				{"20470", "Total", "41", "0", "0.00 %"},
				{"30120", "Total", "0", "0"},
			},
		},
		{
			name:      "no lead pattern keeps any long row",
			tokens:    toks([]string{"ATP-06-001", "4", "City of Sonoma", "Bike Path"}),
			minFields: 3,
			lead:      false,
			want:      [][]string{{"ATP-06-001", "4", "City of Sonoma", "Bike Path"}},
		},
		{
			name:      "applications threshold rejects 3-field row",
			tokens:    toks([]string{"ATP-06-001", "4", "City of Sonoma"}),
			minFields: 3,
			lead:      false,
			want:      nil,
		},
		{
			name:      "empty stream",
			tokens:    nil,
			minFields: 2,
			lead:      true,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := PrecinctLead
			if !tt.lead {
				lead = nil
			}
			got := GroupRuns(tt.tokens, tt.minFields, lead)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GroupRuns = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupRunsTrailingBufferDiscarded(t *testing.T) {
	// A page ending without an EOL token leaves an open buffer, which is
	// never emitted as a group.
	tokens := toks([]string{"20470", "Total", "0", "0"})
	tokens = append(tokens, types.Token{Text: "40990"}, types.Token{Text: "Total"})

	got := GroupRuns(tokens, 2, PrecinctLead)
	want := [][]string{{"20470", "Total", "0", "0"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupRuns = %q, want %q", got, want)
	}
}

func TestStripBlanks(t *testing.T) {
	in := []string{"20470", "", "Total", "  ", "\t", "41"}
	want := []string{"20470", "Total", "41"}
	if got := StripBlanks(in); !reflect.DeepEqual(got, want) {
		t.Errorf("StripBlanks = %q, want %q", got, want)
	}
}
