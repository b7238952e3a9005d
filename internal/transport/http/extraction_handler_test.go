package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediapulse/internal/config"
	"mediapulse/internal/pipeline"
	"mediapulse/internal/sheets"
	"mediapulse/internal/store"
	"mediapulse/pkg/contracts/domain"
)

type stubSource struct {
	grids map[string][][]string
}

func (s *stubSource) Rows(ctx context.Context, ref sheets.Ref) ([]domain.RawRow, error) {
	grid, ok := s.grids[ref.Sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q: %w", ref.Sheet, sheets.ErrSheetNotFound)
	}
	if len(grid) < 2 {
		return nil, nil
	}
	rows := make([]domain.RawRow, 0, len(grid)-1)
	for i, values := range grid[1:] {
		rows = append(rows, domain.RawRow{Index: i + 2, Headers: grid[0], Values: values})
	}
	return rows, nil
}

func testServer(t *testing.T, source sheets.Source) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	series := store.NewCSVStore(dir, nil)
	summaries := store.NewSummaryWriter(dir, nil)
	runner := pipeline.NewRunner(nil, source, series, summaries, nil)

	campaigns := map[string]config.Campaign{
		"acme": {
			Key:      "acme",
			Document: "doc-1",
			Sheets:   []config.ChannelSheet{{Channel: "YouTube", Sheet: "YouTube", Primary: true}},
			Contract: config.ContractDefaults{Investment: 1000},
		},
	}

	handler := NewExtractionHandler(runner, campaigns, summaries, 0, nil)
	srv := httptest.NewServer(NewRouter(nil, handler))
	t.Cleanup(srv.Close)
	return srv
}

func workingSource() *stubSource {
	return &stubSource{grids: map[string][][]string{
		"YouTube": {
			{"Data", "Custo", "Impressões", "Cliques"},
			{"01/09/2025", "R$ 100,00", "1000", "10"},
		},
	}}
}

func TestExtractEndpoint(t *testing.T) {
	srv := testServer(t, workingSource())

	resp, err := http.Post(srv.URL+"/api/extract/acme", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Campaign          string   `json:"campaign"`
		Records           int      `json:"records"`
		ProcessedChannels []string `json:"processed_channels"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "acme", report.Campaign)
	assert.Equal(t, 1, report.Records)
	assert.Equal(t, []string{"YouTube"}, report.ProcessedChannels)
}

func TestExtractUnknownCampaign(t *testing.T) {
	srv := testServer(t, workingSource())

	resp, err := http.Post(srv.URL+"/api/extract/ghost", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		ErrorCode string `json:"error_code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "CAMPAIGN_NOT_FOUND", body.ErrorCode)
}

func TestExtractMissingPrimarySheetIsUnprocessable(t *testing.T) {
	srv := testServer(t, &stubSource{grids: map[string][][]string{}})

	resp, err := http.Post(srv.URL+"/api/extract/acme", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSummaryEndpoint(t *testing.T) {
	srv := testServer(t, workingSource())

	// Before any run there is nothing to serve.
	resp, err := http.Get(srv.URL + "/api/campaigns/acme/summary")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	post, err := http.Post(srv.URL+"/api/extract/acme", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusOK, post.StatusCode)

	resp, err = http.Get(srv.URL + "/api/campaigns/acme/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var artifact struct {
		Campaign     string                     `json:"campaign"`
		Format       string                     `json:"format"`
		Consolidated map[string]json.RawMessage `json:"consolidated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&artifact))
	assert.Equal(t, "acme", artifact.Campaign)
	assert.Equal(t, "campaign_summary_v1", artifact.Format)
	assert.Contains(t, artifact.Consolidated, "Impressões")
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, workingSource())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCampaignsEndpoint(t *testing.T) {
	srv := testServer(t, workingSource())

	resp, err := http.Get(srv.URL + "/api/campaigns")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Campaigns []string `json:"campaigns"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"acme"}, body.Campaigns)
}
