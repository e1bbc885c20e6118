// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the value types shared by the extraction stages.
package types

import (
	"strconv"
	"strings"
)

// Token is a single positional text fragment from a PDF page. EOL marks
// the last fragment of a visual row.
type Token struct {
	Text string
	EOL  bool
}

// Method identifies how ballots in a canvass row were cast.
type Method string

const (
	MethodElectionDay Method = "Election Day"
	MethodVoteByMail  Method = "Vote by Mail"
	MethodTotal       Method = "Total"
)

// ValidMethod reports whether s is one of the three reporting methods.
func ValidMethod(s string) bool {
	switch Method(s) {
	case MethodElectionDay, MethodVoteByMail, MethodTotal:
		return true
	}
	return false
}

// Count is a vote count that may be absent. Canvass PDFs leave columns
// blank for precincts that have not reported; a null Count keeps
// "unreported" distinct from an explicit zero all the way into the
// columnar output.
type Count struct {
	Value int64 `json:"value" yaml:"value"`
	Valid bool  `json:"valid" yaml:"valid"`
}

// CountOf returns a defined Count holding n.
func CountOf(n int64) Count {
	return Count{Value: n, Valid: true}
}

// ParseCount parses a count field permissively: thousands separators and
// surrounding whitespace are tolerated, and anything that still fails to
// parse yields a null Count rather than an error.
func ParseCount(s string) Count {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Count{}
	}
	return CountOf(n)
}

// Result is one fully-typed canvass row: one precinct reported under one
// method.
type Result struct {
	Precinct   string `json:"precinct" yaml:"precinct"`
	City       string `json:"city" yaml:"city"`
	District   string `json:"district,omitempty" yaml:"district,omitempty"`
	Method     Method `json:"method" yaml:"method"`
	Registered Count  `json:"registered" yaml:"registered"`
	Cast       Count  `json:"cast" yaml:"cast"`

	// TurnoutPct is kept as printed in the source document (e.g. "12.20 %").
	TurnoutPct string `json:"turnout_pct" yaml:"turnout_pct"`

	MeasureCYes Count `json:"measure_c_yes" yaml:"measure_c_yes"`
	MeasureCNo  Count `json:"measure_c_no" yaml:"measure_c_no"`
	MeasureDYes Count `json:"measure_d_yes" yaml:"measure_d_yes"`
	MeasureDNo  Count `json:"measure_d_no" yaml:"measure_d_no"`
}

// Correction is a manually curated replacement for a canvass row the
// layout engine mangled. A correction applies when all four match keys
// equal the corresponding raw fields of an anomalous group.
type Correction struct {
	Precinct   string `yaml:"precinct"`
	Method     string `yaml:"method"`
	Registered string `yaml:"registered"`
	Cast       string `yaml:"cast"`

	// Record is the row to substitute for the matched group.
	Record Result `yaml:"record"`
}

// Matches reports whether the correction applies to the given raw fields.
func (c Correction) Matches(precinct, method, registered, cast string) bool {
	return c.Precinct == precinct &&
		c.Method == method &&
		c.Registered == registered &&
		c.Cast == cast
}

// MeasureRow is one precinct's wide row for a single ballot measure,
// with all three methods' YES/NO counts folded into named columns.
type MeasureRow struct {
	Precinct   string
	City       string
	District   string
	Registered Count
	Cast       Count

	ElectionDayYes Count
	ElectionDayNo  Count
	VoteByMailYes  Count
	VoteByMailNo   Count
	TotalYes       Count
	TotalNo        Count

	// PctYes and PctNo are derived from the Total columns and may be NaN
	// when the totals are null or sum to zero.
	PctYes float64
	PctNo  float64
}

// Application is one grant-application row. Field order fixes the JSON
// key order of the output document.
type Application struct {
	ApplicationID          string `json:"applicationID"`
	ApplicationNumber      string `json:"applicationNumber"`
	ImplementingAgencyName string `json:"implementingAgencyName"`
	ProjectName            string `json:"projectName"`
	ReceivedDate           string `json:"receivedDate"`
}
