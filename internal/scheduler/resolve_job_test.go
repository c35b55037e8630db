package scheduler

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanpath/macc/internal/plan"
	"github.com/cleanpath/macc/internal/scenario"
	"github.com/cleanpath/macc/internal/solver"
)

type recordingSink struct {
	mu   sync.Mutex
	last *plan.RunResult
}

func (r *recordingSink) SetLatest(res *plan.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = res
}

func (r *recordingSink) latest() *plan.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"technology_year.csv": "tech_id,ref_year,activity,max_share,abatement_rate,capex,fixed_opex,var_opex\n" +
			"retrofit,2025,4000,1,500,2000,50,20\n",
		"technology_meta.csv": "tech_id,process_group,lifetime,start_year,ramp_rate\n" +
			"retrofit,furnace,10,2025,0.5\n",
		"targets.csv":     "year,target_mt\n2025,19.5\n",
		"assumptions.csv": "name,value\nbaseline_mtco2e,20\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestResolveJobPublishesFreshPlan(t *testing.T) {
	sink := &recordingSink{}
	job := NewResolveJob(zerolog.Nop(), scenario.NewService(zerolog.Nop()), sink,
		writeBundle(t), scenario.RunOptions{
			AllowSlack:   true,
			SlackPenalty: 1e9,
			DefaultRamp:  0.2,
			Solver:       solver.Auto,
		})

	require.NoError(t, job.Run())

	res := sink.latest()
	require.NotNil(t, res)
	assert.Equal(t, solver.StatusOptimal, res.Status)
	assert.NotEmpty(t, res.RunID)

	// a second run is a fresh solve with its own identity
	require.NoError(t, job.Run())
	assert.NotEqual(t, res.RunID, sink.latest().RunID)
}

func TestResolveJobMissingDatasetFails(t *testing.T) {
	sink := &recordingSink{}
	job := NewResolveJob(zerolog.Nop(), scenario.NewService(zerolog.Nop()), sink,
		filepath.Join(t.TempDir(), "absent.db"), scenario.RunOptions{DefaultRamp: 0.2})

	assert.Error(t, job.Run())
	assert.Nil(t, sink.latest(), "a failed run publishes nothing")
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	sink := &recordingSink{}
	job := NewResolveJob(zerolog.Nop(), scenario.NewService(zerolog.Nop()), sink,
		writeBundle(t), scenario.RunOptions{DefaultRamp: 0.2})

	s := New(zerolog.Nop(), job)
	assert.Error(t, s.Schedule("not a cron spec"))
	assert.NoError(t, s.Schedule("@every 15m"))
}
