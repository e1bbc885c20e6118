// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/mtorrado/canvass-etl/internal/canvass"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "canvass.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResults() []types.Result {
	return []types.Result{
		{
			Precinct: "20470", City: "Healdsburg", Method: types.MethodTotal,
			Registered: types.CountOf(41), Cast: types.CountOf(5), TurnoutPct: "12.20 %",
			MeasureCYes: types.CountOf(5), MeasureCNo: types.CountOf(0),
			MeasureDYes: types.CountOf(4), MeasureDNo: types.CountOf(1),
		},
		{
			// Unreported precinct: null measure counts round-trip as NULLs.
			Precinct: "30120", City: "Sebastopol", Method: types.MethodTotal,
			Registered: types.CountOf(0), Cast: types.CountOf(0), TurnoutPct: "0.00 %",
		},
		{
			Precinct: "01203", City: "Unincorporated", District: "District 1",
			Method:     types.MethodElectionDay,
			Registered: types.CountOf(876), Cast: types.CountOf(451), TurnoutPct: "51.48 %",
			MeasureCYes: types.CountOf(244), MeasureCNo: types.CountOf(195),
			MeasureDYes: types.CountOf(230), MeasureDNo: types.CountOf(207),
		},
	}
}

func TestSaveRunAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleResults(), nil))

	got, err := s.Query(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Precinct order.
	assert.Equal(t, "01203", got[0].Precinct)
	assert.Equal(t, "District 1", got[0].District)
	assert.Equal(t, "20470", got[1].Precinct)
	assert.Equal(t, types.CountOf(5), got[1].Cast)
	assert.Equal(t, "12.20 %", got[1].TurnoutPct)

	// Null counts survive the round trip as nulls, not zeros.
	unreported := got[2]
	assert.Equal(t, "30120", unreported.Precinct)
	assert.Equal(t, types.CountOf(0), unreported.Registered)
	assert.False(t, unreported.MeasureCYes.Valid)
	assert.False(t, unreported.MeasureDNo.Valid)
}

func TestQueryFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleResults(), nil))

	byCity, err := s.Query(ctx, QueryOptions{City: "Healdsburg"})
	require.NoError(t, err)
	require.Len(t, byCity, 1)
	assert.Equal(t, "20470", byCity[0].Precinct)

	byMethod, err := s.Query(ctx, QueryOptions{Method: "Election Day"})
	require.NoError(t, err)
	require.Len(t, byMethod, 1)
	assert.Equal(t, "01203", byMethod[0].Precinct)

	limited, err := s.Query(ctx, QueryOptions{MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := s.Query(ctx, QueryOptions{Precinct: "99999"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveRunReplacesPreviousRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleResults(), nil))
	require.NoError(t, s.SaveRun(ctx, sampleResults()[:1], nil))

	got, err := s.Query(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "20470", got[0].Precinct)
}

func TestAnomaliesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	anomalies := []canvass.Outcome{
		{Raw: []string{"20470", "Total", "41"}, Reason: "no repair rule for 3 fields"},
		{Raw: []string{"40990", "Provisional", "12", "3"}, Reason: `unrecognized method "Provisional"`},
	}
	require.NoError(t, s.SaveRun(ctx, nil, anomalies))

	got, err := s.Anomalies(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"20470", "Total", "41"}, got[0].Fields)
	assert.Equal(t, "no repair rule for 3 fields", got[0].Reason)
	assert.NotEmpty(t, got[0].RecordedAt)
	assert.Equal(t, []string{"40990", "Provisional", "12", "3"}, got[1].Fields)
}

func TestExportYAML(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	anomalies := []canvass.Outcome{
		{Raw: []string{"40990", "Total"}, Reason: "no repair rule for 2 fields"},
	}
	require.NoError(t, s.SaveRun(ctx, sampleResults(), anomalies))

	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, s.ExportYAML(ctx, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Results   []types.Result `yaml:"results"`
		Anomalies []Anomaly      `yaml:"anomalies"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Len(t, doc.Results, 3)
	require.Len(t, doc.Anomalies, 1)
	assert.Equal(t, []string{"40990", "Total"}, doc.Anomalies[0].Fields)
}
