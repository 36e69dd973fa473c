package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cash-ai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoRun = errors.New("no such run")

type memoryStore struct {
	runs   []*models.MappingRun
	failOn string
}

func (s *memoryStore) Create(_ context.Context, run *models.MappingRun) error {
	if s.failOn == "create" {
		return errors.New("insert failed")
	}
	run.ID = int64(len(s.runs) + 1)
	cp := *run
	s.runs = append(s.runs, &cp)
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*models.MappingRun, error) {
	for _, r := range s.runs {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, errNoRun
}

func (s *memoryStore) GetByCode(_ context.Context, code string) (*models.MappingRun, error) {
	for _, r := range s.runs {
		if r.RunCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, errNoRun
}

func (s *memoryStore) List(_ context.Context, limit, offset int) ([]models.MappingRun, int64, error) {
	var out []models.MappingRun
	for i := offset; i < len(s.runs) && len(out) < limit; i++ {
		out = append(out, *s.runs[i])
	}
	return out, int64(len(s.runs)), nil
}

func (s *memoryStore) UpdateStatus(_ context.Context, id int64, status, message string) error {
	for _, r := range s.runs {
		if r.ID == id {
			r.Status = status
			r.ErrorMessage = sql.NullString{String: message, Valid: message != ""}
			return nil
		}
	}
	return errNoRun
}

func (s *memoryStore) SaveResult(_ context.Context, id int64, result, diags string) error {
	for _, r := range s.runs {
		if r.ID == id {
			r.Status = models.RunStatusCompleted
			r.ResultJSON = sql.NullString{String: result, Valid: true}
			r.Diagnostics = sql.NullString{String: diags, Valid: true}
			return nil
		}
	}
	return errNoRun
}

type memoryCache struct {
	results  map[string]*models.PipelineResponse
	progress map[string]float64
	gets     int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{results: map[string]*models.PipelineResponse{}, progress: map[string]float64{}}
}

func (c *memoryCache) Get(_ context.Context, code string) (*models.PipelineResponse, error) {
	c.gets++
	return c.results[code], nil
}

func (c *memoryCache) Set(_ context.Context, code string, resp *models.PipelineResponse) error {
	c.results[code] = resp
	return nil
}

func (c *memoryCache) SetProgress(_ context.Context, code string, percent float64) error {
	c.progress[code] = percent
	return nil
}

func newRunService(store RunStore, cache ResultCache, artifacts *ArtifactWriter) *RunService {
	return NewRunService(NewPipeline(NewRuleDrafter(testLogger), testLogger), store, cache, artifacts, testLogger)
}

func TestRunServiceExecuteRecordsRun(t *testing.T) {
	store := &memoryStore{}
	cache := newMemoryCache()
	dir := t.TempDir()
	svc := newRunService(store, cache, NewArtifactWriter(dir))

	resp, err := svc.Execute(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Len(t, resp.Result, ReportRowCount)
	assert.Equal(t, "case-1", resp.CaseID)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, resp.RunCode, run.RunCode)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.True(t, run.ResultJSON.Valid)
	assert.Equal(t, float64(100), cache.progress[resp.RunCode])

	_, err = os.Stat(filepath.Join(dir, resp.RunCode, "report.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, resp.RunCode, "draft.json"))
	assert.NoError(t, err)
}

func TestRunServiceExecuteWithoutStore(t *testing.T) {
	svc := newRunService(nil, nil, nil)
	assert.False(t, svc.HasStore())

	resp, err := svc.Execute(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RunCode)

	_, err = svc.Submit(context.Background(), sampleRequest())
	assert.Error(t, err)
	_, _, err = svc.Lookup(context.Background(), resp.RunCode)
	assert.Error(t, err)
}

func TestRunServiceExecuteIgnoresRecordingFailure(t *testing.T) {
	svc := newRunService(&memoryStore{failOn: "create"}, nil, nil)
	resp, err := svc.Execute(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Len(t, resp.Result, ReportRowCount)
}

func TestRunServiceSubmitAndProcess(t *testing.T) {
	store := &memoryStore{}
	cache := newMemoryCache()
	dir := t.TempDir()
	svc := newRunService(store, cache, NewArtifactWriter(dir))
	ctx := context.Background()

	run, err := svc.Submit(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusQueued, run.Status)
	assert.Equal(t, "case-1", run.CaseID)
	assert.Equal(t, float64(0), cache.progress[run.RunCode])

	require.NoError(t, svc.Process(ctx, run.ID))
	assert.Equal(t, models.RunStatusCompleted, store.runs[0].Status)
	assert.Equal(t, float64(100), cache.progress[run.RunCode])

	var report []models.ReportRow
	require.NoError(t, NewArtifactWriter(dir).ReadJSON(run.RunCode+"/report.json", &report))
	assert.Len(t, report, ReportRowCount)

	// the queued input replays to the same report as a synchronous run
	direct := runPipeline(t, sampleRequest())
	assert.Equal(t, direct.Report, report)

	got, resp, err := svc.Lookup(ctx, run.RunCode)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	require.NotNil(t, resp)
	assert.Equal(t, run.RunCode, resp.RunCode)
	assert.Equal(t, 1, cache.gets)

	// already completed runs are skipped
	require.NoError(t, svc.Process(ctx, run.ID))
}

func TestRunServiceLookupFallsBackToStore(t *testing.T) {
	store := &memoryStore{}
	svc := newRunService(store, nil, nil)
	ctx := context.Background()

	run, err := svc.Submit(ctx, sampleRequest())
	require.NoError(t, err)

	got, resp, err := svc.Lookup(ctx, run.RunCode)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusQueued, got.Status)
	assert.Nil(t, resp, "no response before completion")

	require.NoError(t, svc.Process(ctx, run.ID))

	cache := newMemoryCache()
	svc = newRunService(store, cache, nil)
	_, resp, err = svc.Lookup(ctx, run.RunCode)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Len(t, resp.Result, ReportRowCount)
	assert.NotNil(t, cache.results[run.RunCode], "store hit repopulates the cache")

	_, _, err = svc.Lookup(ctx, "RUN-missing")
	assert.ErrorIs(t, err, errNoRun)
}

func TestRunServiceSubmitValidates(t *testing.T) {
	svc := newRunService(&memoryStore{}, nil, nil)

	_, err := svc.Submit(context.Background(), &models.PipelineRequest{})
	assert.True(t, IsValidationError(err))

	req := sampleRequest()
	req.DraftText = "garbage"
	_, err = svc.Submit(context.Background(), req)
	assert.True(t, IsValidationError(err))
}

func TestRunServiceProcessFailures(t *testing.T) {
	ctx := context.Background()

	store := &memoryStore{}
	svc := newRunService(store, nil, nil)
	require.NoError(t, store.Create(ctx, &models.MappingRun{RunCode: "RUN-bad", Status: models.RunStatusQueued, InputJSON: "{"}))
	err := svc.Process(ctx, 1)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, models.RunStatusFailed, store.runs[0].Status)
	assert.True(t, store.runs[0].ErrorMessage.Valid)

	store = &memoryStore{}
	boom := errors.New("upstream unavailable")
	svc = NewRunService(NewPipeline(failingDrafter{err: boom}, testLogger), store, nil, nil, testLogger)
	run, err := svc.Submit(ctx, sampleRequest())
	require.NoError(t, err)
	err = svc.Process(ctx, run.ID)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, models.RunStatusQueued, store.runs[0].Status, "transient failures stay retryable")
	assert.Contains(t, store.runs[0].ErrorMessage.String, "upstream unavailable")

	assert.Error(t, svc.Process(ctx, 99))
}

func TestRunServiceList(t *testing.T) {
	store := &memoryStore{}
	svc := newRunService(store, nil, nil)
	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), sampleRequest())
		require.NoError(t, err)
	}

	runs, total, err := svc.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, runs, 2)
}
