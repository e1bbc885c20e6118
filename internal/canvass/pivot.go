// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvass

import (
	"fmt"
	"math"
	"sort"

	"github.com/mtorrado/canvass-etl/pkg/types"
)

// Measure identifies one of the two ballot measures on the canvass.
type Measure string

const (
	MeasureC Measure = "C"
	MeasureD Measure = "D"
)

// Frame is a keyed collection of wide per-precinct rows for one measure.
type Frame struct {
	Measure Measure
	rows    map[string]types.MeasureRow
}

// Rows returns the frame's rows sorted by precinct.
func (f Frame) Rows() []types.MeasureRow {
	out := make([]types.MeasureRow, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Precinct < out[j].Precinct })
	return out
}

// Len returns the number of precincts in the frame.
func (f Frame) Len() int { return len(f.rows) }

// Row returns the row for a precinct, if present.
func (f Frame) Row(precinct string) (types.MeasureRow, bool) {
	row, ok := f.rows[precinct]
	return row, ok
}

// BuildFrames folds the full set of valid canvass rows into one frame per
// measure. Each input row contributes one partial wide row per measure,
// populating only the YES/NO column pair of its reporting method; merging
// partials for the same precinct accumulates the three methods' columns.
// A duplicate (precinct, method) pair is an error: the source data
// carries at most one row per pair, so a repeat means the extraction
// itself went wrong.
func BuildFrames(results []types.Result) (Frame, Frame, error) {
	frameC := Frame{Measure: MeasureC, rows: make(map[string]types.MeasureRow)}
	frameD := Frame{Measure: MeasureD, rows: make(map[string]types.MeasureRow)}

	seen := make(map[string]bool)
	for _, res := range results {
		key := res.Precinct + "/" + string(res.Method)
		if seen[key] {
			return Frame{}, Frame{}, fmt.Errorf("duplicate canvass row for precinct %s method %s", res.Precinct, res.Method)
		}
		seen[key] = true

		pc := partialRow(res, res.MeasureCYes, res.MeasureCNo)
		pd := partialRow(res, res.MeasureDYes, res.MeasureDNo)
		frameC.rows[res.Precinct] = mergeRows(frameC.rows[res.Precinct], pc)
		frameD.rows[res.Precinct] = mergeRows(frameD.rows[res.Precinct], pd)
	}

	for precinct, row := range frameC.rows {
		frameC.rows[precinct] = withRatios(row)
	}
	for precinct, row := range frameD.rows {
		frameD.rows[precinct] = withRatios(row)
	}

	return frameC, frameD, nil
}

// partialRow builds the wide row fragment one canvass row contributes to
// one measure: identity and registration columns plus the YES/NO pair of
// its reporting method.
func partialRow(res types.Result, yes, no types.Count) types.MeasureRow {
	row := types.MeasureRow{
		Precinct:   res.Precinct,
		City:       res.City,
		District:   res.District,
		Registered: res.Registered,
		Cast:       res.Cast,
	}
	switch res.Method {
	case types.MethodElectionDay:
		row.ElectionDayYes, row.ElectionDayNo = yes, no
	case types.MethodVoteByMail:
		row.VoteByMailYes, row.VoteByMailNo = yes, no
	case types.MethodTotal:
		row.TotalYes, row.TotalNo = yes, no
	}
	return row
}

// mergeRows combines two partial rows for the same precinct. Identity
// columns take the defined value; method columns are disjoint between
// partials, so a defined column on either side survives.
func mergeRows(a, b types.MeasureRow) types.MeasureRow {
	out := a
	if out.Precinct == "" {
		out.Precinct = b.Precinct
	}
	if out.City == "" {
		out.City = b.City
	}
	if out.District == "" {
		out.District = b.District
	}
	out.Registered = pickCount(out.Registered, b.Registered)
	out.Cast = pickCount(out.Cast, b.Cast)
	out.ElectionDayYes = pickCount(out.ElectionDayYes, b.ElectionDayYes)
	out.ElectionDayNo = pickCount(out.ElectionDayNo, b.ElectionDayNo)
	out.VoteByMailYes = pickCount(out.VoteByMailYes, b.VoteByMailYes)
	out.VoteByMailNo = pickCount(out.VoteByMailNo, b.VoteByMailNo)
	out.TotalYes = pickCount(out.TotalYes, b.TotalYes)
	out.TotalNo = pickCount(out.TotalNo, b.TotalNo)
	return out
}

func pickCount(a, b types.Count) types.Count {
	if b.Valid {
		return b
	}
	return a
}

// withRatios derives the percentage columns from the Total pair. Null or
// all-zero totals produce NaN, which flows through to the output as-is.
func withRatios(row types.MeasureRow) types.MeasureRow {
	if !row.TotalYes.Valid || !row.TotalNo.Valid {
		row.PctYes, row.PctNo = math.NaN(), math.NaN()
		return row
	}
	sum := float64(row.TotalYes.Value + row.TotalNo.Value)
	row.PctYes = float64(row.TotalYes.Value) / sum
	row.PctNo = float64(row.TotalNo.Value) / sum
	return row
}
