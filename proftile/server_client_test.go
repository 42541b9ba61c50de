package proftile

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerClientRoundTrip(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 1, Nodes: 1, Procs: 1, Kinds: []string{"CPU"}})
	server := NewServer(gen, nil, nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	client := NewHTTPClientDataSource(ts.URL, 4)

	client.FetchInfo()
	require.NoError(t, client.Wait())
	infos := client.GetInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, 1, infos[0].EntryInfo.Nodes())

	summaryID := RootEntryID().Child(0).Child(0).Summary()
	tile := TileID{Interval: infos[0].Interval}

	client.FetchSummaryTile(summaryID, tile, true)
	require.NoError(t, client.Wait())
	tiles := client.GetSummaryTiles()
	require.Len(t, tiles, 1)
	assert.Equal(t, summaryID, tiles[0].EntryID)
	assert.NotEmpty(t, tiles[0].Data.Utilization)
}

func TestServerRejectsNonGET(t *testing.T) {
	gen := NewGenerator(DefaultGeneratorConfig())
	server := NewServer(gen, nil, nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/info", "application/octet-stream", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 405, resp.StatusCode)
}

func TestServerOutstandingRequestsGaugeReturnsToZero(t *testing.T) {
	gen := NewGenerator(DefaultGeneratorConfig())
	reg := prometheus.NewRegistry()
	server := NewServer(gen, nil, reg)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/info")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, float64(0), testutil.ToFloat64(server.metrics.outstandingRequests))
}

func TestServerRejectsBadEntrySlug(t *testing.T) {
	gen := NewGenerator(DefaultGeneratorConfig())
	server := NewServer(gen, nil, nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/summary_tile/not-a-slug/0_100")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}
