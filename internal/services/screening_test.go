package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type memoryRunRepo struct {
	mu        sync.Mutex
	runs      map[uuid.UUID]*models.ScreeningRun
	statuses  []models.ScreeningStatus
	resultErr error
}

func newMemoryRunRepo(runs ...*models.ScreeningRun) *memoryRunRepo {
	r := &memoryRunRepo{runs: make(map[uuid.UUID]*models.ScreeningRun)}
	for _, run := range runs {
		r.runs[run.ID] = run
	}
	return r
}

func (r *memoryRunRepo) Create(run *models.ScreeningRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *memoryRunRepo) FindByID(id uuid.UUID) (*models.ScreeningRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, repositories.ErrRunNotFound
	}
	return run, nil
}

func (r *memoryRunRepo) UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	if run, ok := r.runs[id]; ok {
		run.Status = status
	}
	return nil
}

func (r *memoryRunRepo) UpdateResult(id uuid.UUID, result *models.ScreeningResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resultErr != nil {
		return r.resultErr
	}
	run, ok := r.runs[id]
	if !ok {
		return repositories.ErrRunNotFound
	}
	run.Status = models.StatusCompleted
	run.Result = result
	return nil
}

func (r *memoryRunRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return repositories.ErrRunNotFound
	}
	run.Status = models.StatusFailed
	run.ErrorMessage = &errorMsg
	return nil
}

func (r *memoryRunRepo) FindPendingRuns(limit int) ([]models.ScreeningRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ScreeningRun
	for _, run := range r.runs {
		if run.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *run)
		}
	}
	return out, nil
}

type memoryCandidateRepo struct {
	records   []models.CandidateRecord
	upsertErr error
}

func (r *memoryCandidateRepo) UpsertMany(records []models.CandidateRecord) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.records = append(r.records, records...)
	return nil
}

func (r *memoryCandidateRepo) ListByJobPosting(jobPostingID string, limit int) ([]models.CandidateRecord, error) {
	return r.records, nil
}

type stubPipeline struct {
	result models.ScreeningResult
	input  ScreeningInput
}

func (s *stubPipeline) Screen(_ context.Context, in ScreeningInput) models.ScreeningResult {
	s.input = in
	return s.result
}

func writeUpload(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestScreeningService_ProcessRun(t *testing.T) {
	dir := t.TempDir()
	email := "alice@example.com"
	run := &models.ScreeningRun{
		ID:                 uuid.New(),
		JobPostingID:       "posting-1",
		JobDescriptionPath: writeUpload(t, dir, "jd.txt", []byte("Go engineer")),
		ResumePaths: []string{
			writeUpload(t, dir, "alice.txt", []byte("Alice")),
			writeUpload(t, dir, "batch.zip", buildZip(t, map[string]string{"bob.txt": "Bob", "carol.pdf": "Carol"}, []string{"bob.txt", "carol.pdf"})),
		},
		Status: models.StatusQueued,
	}
	runs := newMemoryRunRepo(run)
	candidates := &memoryCandidateRepo{}
	pipeline := &stubPipeline{result: models.ScreeningResult{
		Results: []models.FinalCandidateResult{
			{ResumeName: "alice.txt", CandidateEmail: &email, ATSScore: 90},
			{ResumeName: "carol.pdf", CandidateEmail: &email, ATSScore: 60},
			{ResumeName: "bob.txt", ATSScore: 50},
		},
	}}

	svc := NewScreeningService(runs, candidates, NewStorageService(dir, 0), pipeline, zaptest.NewLogger(t))
	require.NoError(t, svc.ProcessRun(context.Background(), run.ID))

	assert.Equal(t, "posting-1", pipeline.input.JobPostingID)
	assert.Equal(t, "jd.txt", pipeline.input.JobDescription.Name)
	assert.ElementsMatch(t, []string{"alice.txt", "bob.txt", "carol.pdf"}, docNames(pipeline.input.Resumes))

	assert.Equal(t, []models.ScreeningStatus{models.StatusProcessing}, runs.statuses)
	assert.Equal(t, models.StatusCompleted, run.Status)
	require.NotNil(t, run.Result)
	assert.Len(t, run.Result.Results, 3)

	require.Len(t, candidates.records, 2, "same email keeps the best result only")
	assert.Equal(t, email, candidates.records[0].CandidateKey)
	assert.Equal(t, 90, candidates.records[0].ATSScore)
	assert.Equal(t, "bob.txt", candidates.records[1].CandidateKey)
	assert.Equal(t, run.ID, candidates.records[1].RunID)
}

func TestScreeningService_MissingUploadFailsRun(t *testing.T) {
	dir := t.TempDir()
	run := &models.ScreeningRun{
		ID:                 uuid.New(),
		JobPostingID:       "posting-1",
		JobDescriptionPath: filepath.Join(dir, "missing.pdf"),
		Status:             models.StatusQueued,
	}
	runs := newMemoryRunRepo(run)
	pipeline := &stubPipeline{}

	svc := NewScreeningService(runs, &memoryCandidateRepo{}, NewStorageService(dir, 0), pipeline, zaptest.NewLogger(t))
	err := svc.ProcessRun(context.Background(), run.ID)

	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "failed to load job description")
}

func TestScreeningService_PersistenceFailureMarksRunFailed(t *testing.T) {
	tests := []struct {
		name      string
		resultErr error
		upsertErr error
		wantMsg   string
	}{
		{name: "result", resultErr: errors.New("db down"), wantMsg: "failed to save result: db down"},
		{name: "candidates", upsertErr: errors.New("constraint"), wantMsg: "failed to save candidates: constraint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			run := &models.ScreeningRun{
				ID:                 uuid.New(),
				JobPostingID:       "posting-1",
				JobDescriptionPath: writeUpload(t, dir, "jd.txt", []byte("Go engineer")),
				ResumePaths:        []string{writeUpload(t, dir, "alice.txt", []byte("Alice"))},
				Status:             models.StatusQueued,
			}
			runs := newMemoryRunRepo(run)
			runs.resultErr = tt.resultErr
			candidates := &memoryCandidateRepo{upsertErr: tt.upsertErr}
			pipeline := &stubPipeline{result: models.ScreeningResult{
				Results: []models.FinalCandidateResult{{ResumeName: "alice.txt", ATSScore: 70}},
			}}

			svc := NewScreeningService(runs, candidates, NewStorageService(dir, 0), pipeline, zaptest.NewLogger(t))
			err := svc.ProcessRun(context.Background(), run.ID)

			require.Error(t, err)
			assert.Equal(t, models.StatusFailed, run.Status, "run must not stay processing")
			require.NotNil(t, run.ErrorMessage)
			assert.Equal(t, tt.wantMsg, *run.ErrorMessage)
		})
	}
}

func TestScreeningService_UnknownRun(t *testing.T) {
	svc := NewScreeningService(newMemoryRunRepo(), &memoryCandidateRepo{}, NewStorageService(t.TempDir(), 0), &stubPipeline{}, zaptest.NewLogger(t))

	err := svc.ProcessRun(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repositories.ErrRunNotFound)
}

type recordingScreening struct {
	mu   sync.Mutex
	runs []uuid.UUID
}

func (r *recordingScreening) ProcessRun(_ context.Context, runID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, runID)
	return nil
}

func (r *recordingScreening) processed() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.runs...)
}

func TestWorker_ProcessesEnqueuedAndPendingRuns(t *testing.T) {
	pending := &models.ScreeningRun{ID: uuid.New(), Status: models.StatusQueued}
	runs := newMemoryRunRepo(pending)
	screening := &recordingScreening{}

	w := NewWorker(runs, screening, 2, 20*time.Millisecond, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	direct := uuid.New()
	w.EnqueueJob(direct)

	assert.Eventually(t, func() bool {
		got := screening.processed()
		return containsID(got, direct) && containsID(got, pending.ID)
	}, 2*time.Second, 10*time.Millisecond)

	w.Stop()
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
