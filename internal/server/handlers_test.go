package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanpath/macc/internal/config"
	"github.com/cleanpath/macc/internal/scenario"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"technology_year.csv": "tech_id,ref_year,activity,max_share,abatement_rate,capex,fixed_opex,var_opex\n" +
			"retrofit,2025,4000,1,500,2000,50,20\n",
		"technology_meta.csv": "tech_id,process_group,lifetime,start_year,ramp_rate\n" +
			"retrofit,furnace,10,2025,0.5\n",
		"targets.csv":     "year,target_mt\n2025,19.5\n2030,19\n",
		"assumptions.csv": "name,value\nbaseline_mtco2e,20\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	cfg := &config.Config{
		DataPath:     dir,
		AllowSlack:   true,
		SlackPenalty: 1e9,
		DefaultRamp:  0.2,
		Solver:       "auto",
	}
	return New(Config{
		Log:     zerolog.Nop(),
		Config:  cfg,
		Service: scenario.NewService(zerolog.Nop()),
		Port:    0,
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := do(t, testServer(t), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleScenario(t *testing.T) {
	rec := do(t, testServer(t), http.MethodGet, "/api/scenario", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Technologies int     `json:"technologies"`
		TargetYears  []int   `json:"target_years"`
		BaselineMt   float64 `json:"baseline_mt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Technologies)
	assert.Equal(t, []int{2025, 2030}, body.TargetYears)
	assert.Equal(t, 20.0, body.BaselineMt)
}

func TestHandleOptimizeAndLatest(t *testing.T) {
	s := testServer(t)

	rec := do(t, s, http.MethodGet, "/api/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no run recorded yet")

	rec = do(t, s, http.MethodPost, "/api/optimize", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run struct {
		RunID   string `json:"run_id"`
		Status  string `json:"status"`
		Summary []struct {
			Year        int     `json:"year"`
			ShortfallMt float64 `json:"shortfall_mt"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "optimal", run.Status)
	require.Len(t, run.Summary, 2)

	rec = do(t, s, http.MethodGet, "/api/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, run.RunID, latest.RunID)
}

func TestHandleOptimizeYearSubset(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/optimize", `{"years":[2025]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run struct {
		Summary []struct {
			Year int `json:"year"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Len(t, run.Summary, 1)
	assert.Equal(t, 2025, run.Summary[0].Year)
}

func TestHandleOptimizeRampOverride(t *testing.T) {
	dir := t.TempDir()
	// no ramp metadata: the run option's fallback ramp governs adoption speed
	files := map[string]string{
		"technology_year.csv": "tech_id,ref_year,activity,max_share,abatement_rate,capex,fixed_opex,var_opex\n" +
			"retrofit,2025,4000,1,500,2000,50,20\n",
		"technology_meta.csv": "tech_id,process_group,lifetime,start_year,ramp_rate\n" +
			"retrofit,furnace,10,2025,\n",
		"targets.csv":     "year,target_mt\n2025,19\n",
		"assumptions.csv": "name,value\nbaseline_mtco2e,20\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	s := New(Config{
		Log: zerolog.Nop(),
		Config: &config.Config{
			DataPath:     dir,
			AllowSlack:   true,
			SlackPenalty: 1e9,
			DefaultRamp:  0.5,
			Solver:       "auto",
		},
		Service: scenario.NewService(zerolog.Nop()),
	})

	shortfall := func(body string) float64 {
		rec := do(t, s, http.MethodPost, "/api/optimize", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var run struct {
			Summary []struct {
				ShortfallMt float64 `json:"shortfall_mt"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
		require.Len(t, run.Summary, 1)
		return run.Summary[0].ShortfallMt
	}

	assert.InDelta(t, 0, shortfall(`{}`), 1e-6, "configured ramp 0.5 covers the 1 Mt gap")
	assert.InDelta(t, 0.8, shortfall(`{"default_ramp":0.1}`), 1e-6, "tighter ramp caps first-year adoption at 0.1 share")
}

func TestHandleOptimizeBadBody(t *testing.T) {
	rec := do(t, testServer(t), http.MethodPost, "/api/optimize", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
