// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvass

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mtorrado/canvass-etl/pkg/types"
)

// result builds a canvass row with all eight measure counts defined.
func result(precinct string, method types.Method, cYes, cNo, dYes, dNo int64) types.Result {
	return types.Result{
		Precinct:   precinct,
		City:       "Healdsburg",
		Method:     method,
		Registered: types.CountOf(100),
		Cast:       types.CountOf(40),
		TurnoutPct: "40.00 %",
		MeasureCYes: types.CountOf(cYes), MeasureCNo: types.CountOf(cNo),
		MeasureDYes: types.CountOf(dYes), MeasureDNo: types.CountOf(dNo),
	}
}

func TestBuildFramesAccumulatesMethods(t *testing.T) {
	results := []types.Result{
		result("20470", types.MethodElectionDay, 5, 3, 4, 4),
		result("20470", types.MethodVoteByMail, 10, 6, 8, 8),
		result("20470", types.MethodTotal, 15, 9, 12, 12),
	}

	frameC, frameD, err := BuildFrames(results)
	if err != nil {
		t.Fatalf("BuildFrames: %v", err)
	}
	if frameC.Len() != 1 || frameD.Len() != 1 {
		t.Fatalf("frame sizes = %d/%d, want 1/1", frameC.Len(), frameD.Len())
	}

	row, ok := frameC.Row("20470")
	if !ok {
		t.Fatal("precinct 20470 missing from measure C frame")
	}
	want := types.MeasureRow{
		Precinct:   "20470",
		City:       "Healdsburg",
		Registered: types.CountOf(100),
		Cast:       types.CountOf(40),
		ElectionDayYes: types.CountOf(5), ElectionDayNo: types.CountOf(3),
		VoteByMailYes: types.CountOf(10), VoteByMailNo: types.CountOf(6),
		TotalYes: types.CountOf(15), TotalNo: types.CountOf(9),
		PctYes: 0.625, PctNo: 0.375,
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("measure C row mismatch (-want +got):\n%s", diff)
	}

	// The D frame carries the same precinct with the D counts.
	rowD, _ := frameD.Row("20470")
	if rowD.TotalYes != types.CountOf(12) || rowD.TotalNo != types.CountOf(12) {
		t.Errorf("measure D totals = %+v/%+v, want 12/12", rowD.TotalYes, rowD.TotalNo)
	}
	if rowD.PctYes != 0.5 || rowD.PctNo != 0.5 {
		t.Errorf("measure D ratios = %v/%v, want 0.5/0.5", rowD.PctYes, rowD.PctNo)
	}
}

func TestBuildFramesRatiosSumToOne(t *testing.T) {
	results := []types.Result{
		result("10050", types.MethodTotal, 7, 13, 11, 9),
		result("20470", types.MethodTotal, 1, 2, 2, 1),
	}

	frameC, frameD, err := BuildFrames(results)
	if err != nil {
		t.Fatalf("BuildFrames: %v", err)
	}
	for _, frame := range []Frame{frameC, frameD} {
		for _, row := range frame.Rows() {
			if sum := row.PctYes + row.PctNo; math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("measure %s precinct %s: PctYes+PctNo = %v, want 1.0",
					frame.Measure, row.Precinct, sum)
			}
		}
	}
}

func TestBuildFramesNullTotalsGiveNaN(t *testing.T) {
	// An unreported precinct has null measure counts; a zero-turnout
	// precinct has real zeros that sum to zero. Both yield NaN ratios.
	unreported := result("20470", types.MethodTotal, 0, 0, 0, 0)
	unreported.MeasureCYes, unreported.MeasureCNo = types.Count{}, types.Count{}
	unreported.MeasureDYes, unreported.MeasureDNo = types.Count{}, types.Count{}
	zeroTurnout := result("30120", types.MethodTotal, 0, 0, 0, 0)

	frameC, _, err := BuildFrames([]types.Result{unreported, zeroTurnout})
	if err != nil {
		t.Fatalf("BuildFrames: %v", err)
	}

	for _, precinct := range []string{"20470", "30120"} {
		row, ok := frameC.Row(precinct)
		if !ok {
			t.Fatalf("precinct %s missing", precinct)
		}
		if !math.IsNaN(row.PctYes) || !math.IsNaN(row.PctNo) {
			t.Errorf("precinct %s ratios = %v/%v, want NaN/NaN", precinct, row.PctYes, row.PctNo)
		}
	}

	// Null counts stayed null, zeros stayed zero.
	if row, _ := frameC.Row("20470"); row.TotalYes.Valid {
		t.Errorf("unreported TotalYes = %+v, want null", row.TotalYes)
	}
	if row, _ := frameC.Row("30120"); row.TotalYes != types.CountOf(0) {
		t.Errorf("zero-turnout TotalYes = %+v, want 0", row.TotalYes)
	}
}

func TestBuildFramesDuplicateRow(t *testing.T) {
	results := []types.Result{
		result("20470", types.MethodTotal, 1, 2, 3, 4),
		result("20470", types.MethodTotal, 5, 6, 7, 8),
	}
	_, _, err := BuildFrames(results)
	if err == nil {
		t.Fatal("expected duplicate error")
	}
	if !strings.Contains(err.Error(), "20470") {
		t.Errorf("error = %v, want precinct in message", err)
	}
}

func TestFrameRowsSorted(t *testing.T) {
	results := []types.Result{
		result("30120", types.MethodTotal, 1, 1, 1, 1),
		result("10050", types.MethodTotal, 1, 1, 1, 1),
		result("20470", types.MethodTotal, 1, 1, 1, 1),
	}
	frameC, _, err := BuildFrames(results)
	if err != nil {
		t.Fatalf("BuildFrames: %v", err)
	}

	rows := frameC.Rows()
	want := []string{"10050", "20470", "30120"}
	for i, row := range rows {
		if row.Precinct != want[i] {
			t.Errorf("rows[%d].Precinct = %q, want %q", i, row.Precinct, want[i])
		}
	}
}

func TestMergeRowsPure(t *testing.T) {
	a := partialRow(result("20470", types.MethodElectionDay, 5, 3, 4, 4), types.CountOf(5), types.CountOf(3))
	b := partialRow(result("20470", types.MethodTotal, 15, 9, 12, 12), types.CountOf(15), types.CountOf(9))
	before := a

	merged := mergeRows(a, b)
	if a != before {
		t.Error("mergeRows mutated its first argument")
	}
	if merged.ElectionDayYes != types.CountOf(5) || merged.TotalYes != types.CountOf(15) {
		t.Errorf("merged = %+v: method columns not accumulated", merged)
	}
}
