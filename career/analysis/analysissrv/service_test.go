package analysissrv

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/internal/ai/docintel"
	"github.com/Abraxas-365/careerqr/internal/ai/speech"
	"github.com/Abraxas-365/careerqr/internal/ai/visionparser"
	"github.com/Abraxas-365/careerqr/pkg/auth"
	"github.com/Abraxas-365/careerqr/pkg/fsx"
	"github.com/Abraxas-365/careerqr/pkg/kernel"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeRepo struct {
	mu       sync.Mutex
	analyses map[kernel.AnalysisID]*analysis.Analysis
	matches  []analysis.MatchResult
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{analyses: map[kernel.AnalysisID]*analysis.Analysis{}}
}

func (r *fakeRepo) Create(_ context.Context, a *analysis.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.ID] = a
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id kernel.AnalysisID) (*analysis.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return nil, analysis.ErrAnalysisNotFound()
	}
	return a, nil
}

func (r *fakeRepo) List(_ context.Context, p kernel.PaginationOptions) (*kernel.Paginated[analysis.Analysis], error) {
	items := []analysis.Analysis{}
	for _, a := range r.analyses {
		items = append(items, *a)
	}
	return &kernel.Paginated[analysis.Analysis]{
		Items: items,
		Page:  kernel.Page{Number: p.Page, Size: p.PageSize, Total: len(items)},
		Empty: len(items) == 0,
	}, nil
}

func (r *fakeRepo) Delete(_ context.Context, id kernel.AnalysisID) error {
	if _, ok := r.analyses[id]; !ok {
		return analysis.ErrAnalysisNotFound()
	}
	delete(r.analyses, id)
	return nil
}

func (r *fakeRepo) UpdateAudioPath(_ context.Context, id kernel.AnalysisID, audioPath string) error {
	a, ok := r.analyses[id]
	if !ok {
		return analysis.ErrAnalysisNotFound()
	}
	a.AudioPath = audioPath
	return nil
}

func (r *fakeRepo) SearchSimilar(_ context.Context, _ []float32, topK int) ([]analysis.MatchResult, error) {
	if topK < len(r.matches) {
		return r.matches[:topK], nil
	}
	return r.matches, nil
}

type fakeJobRepo struct {
	mu         sync.Mutex
	jobs       map[kernel.JobID]*analysis.AnalysisJob
	progress   []string
	failedWith string
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[kernel.JobID]*analysis.AnalysisJob{}}
}

func (r *fakeJobRepo) Create(_ context.Context, job *analysis.AnalysisJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) Update(_ context.Context, job *analysis.AnalysisJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id kernel.JobID) (*analysis.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, analysis.ErrJobNotFound()
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) List(_ context.Context, p kernel.PaginationOptions) (*kernel.Paginated[analysis.AnalysisJob], error) {
	items := []analysis.AnalysisJob{}
	for _, job := range r.jobs {
		items = append(items, *job)
	}
	return &kernel.Paginated[analysis.AnalysisJob]{
		Items: items,
		Page:  kernel.Page{Number: p.Page, Size: p.PageSize, Total: len(items)},
	}, nil
}

func (r *fakeJobRepo) MarkAsProcessing(_ context.Context, id kernel.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != analysis.JobStatusPending {
		return errors.New("job not found or not pending")
	}
	job.Status = analysis.JobStatusProcessing
	return nil
}

func (r *fakeJobRepo) MarkAsCompleted(_ context.Context, id kernel.JobID, analysisID kernel.AnalysisID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := r.jobs[id]
	job.Status = analysis.JobStatusCompleted
	job.AnalysisID = &analysisID
	job.ProgressPercentage = 100
	return nil
}

func (r *fakeJobRepo) MarkAsFailed(_ context.Context, id kernel.JobID, errorMsg string, _ map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = analysis.JobStatusFailed
		job.ErrorMessage = errorMsg
	}
	r.failedWith = errorMsg
	return nil
}

func (r *fakeJobRepo) UpdateProgress(_ context.Context, id kernel.JobID, step analysis.ProcessingStep, percentage int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, string(step))
	if job, ok := r.jobs[id]; ok {
		s := step
		job.CurrentStep = &s
		job.ProgressPercentage = percentage
	}
	return nil
}

func (r *fakeJobRepo) CountByStatus(_ context.Context) (map[analysis.JobStatus]int64, error) {
	counts := map[analysis.JobStatus]int64{}
	for _, job := range r.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

type fakeQueue struct {
	mu         sync.Mutex
	enqueued   []*analysis.AnalysisJob
	delayed    []*analysis.AnalysisJob
	delays     []time.Duration
	enqueueErr error
}

func (q *fakeQueue) Enqueue(_ context.Context, job *analysis.AnalysisJob) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, job)
	return nil
}

func (q *fakeQueue) Dequeue(_ context.Context, _ time.Duration) (*analysis.AnalysisJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.enqueued) == 0 {
		return nil, nil
	}
	job := q.enqueued[0]
	q.enqueued = q.enqueued[1:]
	return job, nil
}

func (q *fakeQueue) EnqueueDelayed(_ context.Context, job *analysis.AnalysisJob, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.delayed = append(q.delayed, job)
	q.delays = append(q.delays, delay)
	return nil
}

func (q *fakeQueue) MoveDelayedToReady(_ context.Context) error { return nil }

func (q *fakeQueue) GetQueueSize(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.enqueued)), nil
}

func (q *fakeQueue) Clear(_ context.Context) error { return nil }

type fakeExtractor struct {
	doc *docintel.Document
	err error
}

func (e *fakeExtractor) ProcessResume(_ context.Context, _ []byte) (*docintel.Document, error) {
	return e.doc, e.err
}

type fakePageParser struct {
	parsed *visionparser.ParsedResume
	err    error
}

func (p *fakePageParser) ParseResumePages(_ context.Context, _ [][]byte) (*visionparser.ParsedResume, error) {
	return p.parsed, p.err
}

type fakeAdvisor struct {
	advice string
	err    error
}

func (a *fakeAdvisor) GenerateAdvice(_ context.Context, _ string) (string, error) {
	return a.advice, a.err
}

type fakeSynthesizer struct {
	audio []byte
	err   error
	opts  speech.Options
}

func (s *fakeSynthesizer) Synthesize(_ context.Context, _ string, opts speech.Options) ([]byte, error) {
	s.opts = opts
	return s.audio, s.err
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return e.vector, e.err
}

type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFS() *memFS { return &memFS{files: map[string][]byte{}} }

func (m *memFS) ReadFile(_ context.Context, p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[p]
	if !ok {
		return nil, errors.New("file not found: " + p)
	}
	return data, nil
}

func (m *memFS) ReadFileStream(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (m *memFS) WriteFile(_ context.Context, p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = data
	return nil
}

func (m *memFS) WriteFileStream(_ context.Context, _ string, _ io.Reader) error {
	return errors.New("not implemented")
}

func (m *memFS) DeleteFile(_ context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, p)
	return nil
}

func (m *memFS) Exists(_ context.Context, p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[p]
	return ok, nil
}

func (m *memFS) Stat(_ context.Context, p string) (*fsx.FileInfo, error) {
	return nil, errors.New("not implemented")
}

func (m *memFS) Join(parts ...string) string { return path.Join(parts...) }

// ============================================================================
// Test wiring
// ============================================================================

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeJobRepo, *fakeQueue, *memFS) {
	t.Helper()

	repo := newFakeRepo()
	jobRepo := newFakeJobRepo()
	queue := &fakeQueue{}
	files := newMemFS()

	svc := NewService(
		repo,
		jobRepo,
		queue,
		&fakeExtractor{doc: &docintel.Document{
			Text:       "Jane Doe jane@example.com",
			Paragraphs: []string{"Skills: Go, SQL", "Worked at Acme Corp"},
		}},
		&fakePageParser{},
		&fakeAdvisor{advice: "## Overall Resume Score\n80/100"},
		&fakeSynthesizer{audio: []byte("mp3-bytes")},
		&fakeEmbedder{vector: []float32{0.1, 0.2}},
		files,
		auth.NewTokenService("test-secret", "careerqr"),
		"gpt-4o",
	)

	return svc, repo, jobRepo, queue, files
}

// ============================================================================
// Tests
// ============================================================================

func TestStartAnalysisAsync(t *testing.T) {
	svc, _, jobRepo, queue, _ := newTestService(t)

	resp, err := svc.StartAnalysisAsync(context.Background(), analysis.StartAnalysisRequest{
		Source:   analysis.SourcePDF,
		FilePath: "analyses/2026/08/test.pdf",
		FileName: "test.pdf",
		FileType: "pdf",
	})
	if err != nil {
		t.Fatalf("StartAnalysisAsync: %v", err)
	}

	if resp.Status != analysis.JobStatusPending {
		t.Errorf("Status = %q, want pending", resp.Status)
	}
	if !strings.HasPrefix(resp.StatusURL, "/api/v1/analyses/jobs/") {
		t.Errorf("StatusURL = %q", resp.StatusURL)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("enqueued = %d, want 1", len(queue.enqueued))
	}
	if _, err := jobRepo.GetByID(context.Background(), kernel.JobID(resp.JobID)); err != nil {
		t.Errorf("job not persisted: %v", err)
	}
}

func TestStartAnalysisAsyncEnqueueFailure(t *testing.T) {
	svc, _, jobRepo, queue, _ := newTestService(t)
	queue.enqueueErr = errors.New("redis down")

	_, err := svc.StartAnalysisAsync(context.Background(), analysis.StartAnalysisRequest{
		Source:   analysis.SourcePDF,
		FilePath: "analyses/x.pdf",
		FileName: "x.pdf",
		FileType: "pdf",
	})
	if err == nil {
		t.Fatal("expected error when enqueue fails")
	}
	if jobRepo.failedWith == "" {
		t.Error("job should be marked failed after enqueue failure")
	}
}

func TestProcessAnalysisJob(t *testing.T) {
	svc, repo, jobRepo, _, files := newTestService(t)

	_ = files.WriteFile(context.Background(), "analyses/cv.pdf", []byte("%PDF-1.4 fake"))

	job := &analysis.AnalysisJob{
		ID:          kernel.NewJobID("job-1"),
		Status:      analysis.JobStatusPending,
		Source:      analysis.SourcePDF,
		FilePath:    "analyses/cv.pdf",
		FileName:    "cv.pdf",
		FileType:    "pdf",
		MaxAttempts: MaxJobAttempts,
		CreatedAt:   time.Now(),
	}
	_ = jobRepo.Create(context.Background(), job)

	if err := svc.ProcessAnalysisJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessAnalysisJob: %v", err)
	}

	stored, err := jobRepo.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != analysis.JobStatusCompleted {
		t.Errorf("job status = %q, want completed", stored.Status)
	}
	if stored.AnalysisID == nil {
		t.Fatal("job should reference the created analysis")
	}

	created, err := repo.GetByID(context.Background(), *stored.AnalysisID)
	if err != nil {
		t.Fatalf("analysis not created: %v", err)
	}
	if !created.HasAdvice() {
		t.Error("created analysis should carry advice")
	}
	if !created.HasEmbedding() {
		t.Error("created analysis should carry a search embedding")
	}
	if len(created.Resume.Skills) == 0 {
		t.Error("resume skills bucket should be populated from extraction")
	}
	if created.Resume.Email != "jane@example.com" {
		t.Errorf("Email = %q, want backfilled from text", created.Resume.Email)
	}

	wantSteps := []string{"extracting", "advising", "embedding", "saving"}
	if len(jobRepo.progress) != len(wantSteps) {
		t.Fatalf("progress steps = %v", jobRepo.progress)
	}
	for i, step := range wantSteps {
		if jobRepo.progress[i] != step {
			t.Errorf("progress[%d] = %q, want %q", i, jobRepo.progress[i], step)
		}
	}
}

func TestProcessAnalysisJobRetriesWithBackoff(t *testing.T) {
	svc, _, jobRepo, queue, files := newTestService(t)
	svc.adviceGen = &fakeAdvisor{err: errors.New("model unavailable")}

	_ = files.WriteFile(context.Background(), "analyses/cv.pdf", []byte("%PDF-1.4 fake"))

	job := &analysis.AnalysisJob{
		ID:          kernel.NewJobID("job-retry"),
		Status:      analysis.JobStatusPending,
		Source:      analysis.SourcePDF,
		FilePath:    "analyses/cv.pdf",
		FileName:    "cv.pdf",
		FileType:    "pdf",
		MaxAttempts: MaxJobAttempts,
		CreatedAt:   time.Now(),
	}
	_ = jobRepo.Create(context.Background(), job)

	if err := svc.ProcessAnalysisJob(context.Background(), job); err == nil {
		t.Fatal("expected error from failing advice generation")
	}

	if len(queue.delayed) != 1 {
		t.Fatalf("delayed enqueues = %d, want 1", len(queue.delayed))
	}
	// First retry backs off 2^1 minutes
	if queue.delays[0] != 2*time.Minute {
		t.Errorf("retry delay = %v, want 2m", queue.delays[0])
	}
	if job.NextRetryAt == nil {
		t.Error("NextRetryAt should be set for a retryable failure")
	}
}

func TestProcessAnalysisJobExhaustsAttempts(t *testing.T) {
	svc, _, jobRepo, queue, files := newTestService(t)
	svc.adviceGen = &fakeAdvisor{err: errors.New("model unavailable")}

	_ = files.WriteFile(context.Background(), "analyses/cv.pdf", []byte("%PDF-1.4 fake"))

	job := &analysis.AnalysisJob{
		ID:           kernel.NewJobID("job-dead"),
		Status:       analysis.JobStatusPending,
		Source:       analysis.SourcePDF,
		FilePath:     "analyses/cv.pdf",
		FileName:     "cv.pdf",
		FileType:     "pdf",
		AttemptCount: MaxJobAttempts - 1,
		MaxAttempts:  MaxJobAttempts,
		CreatedAt:    time.Now(),
	}
	_ = jobRepo.Create(context.Background(), job)

	if err := svc.ProcessAnalysisJob(context.Background(), job); err == nil {
		t.Fatal("expected error")
	}

	if len(queue.delayed) != 0 {
		t.Error("exhausted job must not be requeued")
	}
	if jobRepo.failedWith != "advice_failed" {
		t.Errorf("failedWith = %q, want advice_failed", jobRepo.failedWith)
	}
}

func TestGenerateSpeech(t *testing.T) {
	svc, repo, _, _, files := newTestService(t)

	model := analysis.NewAnalysis(analysis.SourcePDF, "", "analyses/cv.pdf", "cv.pdf", "pdf")
	model.Advice = "## Overall Resume Score\n**78/100**"
	_ = repo.Create(context.Background(), model)

	resp, err := svc.GenerateSpeech(context.Background(), model.ID, analysis.SpeechRequest{
		Voice: "nova",
		Rate:  "fast",
	})
	if err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}

	if !strings.HasPrefix(resp.AudioURL, "/api/v1/audio/") {
		t.Errorf("AudioURL = %q", resp.AudioURL)
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Error("ExpiresAt should be in the future")
	}

	wantPath := "audio/" + model.ID.String() + ".mp3"
	if _, err := files.ReadFile(context.Background(), wantPath); err != nil {
		t.Errorf("audio not stored at %s: %v", wantPath, err)
	}

	stored, _ := repo.GetByID(context.Background(), model.ID)
	if stored.AudioPath != wantPath {
		t.Errorf("AudioPath = %q, want %q", stored.AudioPath, wantPath)
	}

	// Token round trip via GetAudio
	token := strings.TrimPrefix(resp.AudioURL, "/api/v1/audio/")
	data, contentType, err := svc.GetAudio(context.Background(), token)
	if err != nil {
		t.Fatalf("GetAudio: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("audio bytes = %q", data)
	}
	if contentType != "audio/mpeg" {
		t.Errorf("contentType = %q", contentType)
	}
}

func TestGenerateSpeechWithoutAdvice(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)

	model := analysis.NewAnalysis(analysis.SourcePDF, "", "analyses/cv.pdf", "cv.pdf", "pdf")
	_ = repo.Create(context.Background(), model)

	_, err := svc.GenerateSpeech(context.Background(), model.ID, analysis.SpeechRequest{})
	if err == nil {
		t.Fatal("expected error for analysis without advice")
	}
}

func TestSearchAnalysesValidation(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	repo.matches = []analysis.MatchResult{
		{SimilarityScore: 0.9},
		{SimilarityScore: 0.8},
	}

	if _, err := svc.SearchAnalyses(context.Background(), analysis.SearchRequest{Query: "  "}); err == nil {
		t.Error("blank query should be rejected")
	}

	matches, err := svc.SearchAnalyses(context.Background(), analysis.SearchRequest{Query: "golang backend", TopK: 1})
	if err != nil {
		t.Fatalf("SearchAnalyses: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("matches = %d, want 1", len(matches))
	}
}

func TestCancelJob(t *testing.T) {
	svc, _, jobRepo, _, _ := newTestService(t)

	job := &analysis.AnalysisJob{
		ID:        kernel.NewJobID("job-cancel"),
		Status:    analysis.JobStatusPending,
		CreatedAt: time.Now(),
	}
	_ = jobRepo.Create(context.Background(), job)

	if err := svc.CancelJob(context.Background(), job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	stored, _ := jobRepo.GetByID(context.Background(), job.ID)
	if stored.Status != analysis.JobStatusCancelled {
		t.Errorf("status = %q, want cancelled", stored.Status)
	}

	// A cancelled job cannot be cancelled again
	if err := svc.CancelJob(context.Background(), job.ID); err == nil {
		t.Error("cancelling a cancelled job should fail")
	}
}

func TestRetryFailedJob(t *testing.T) {
	svc, _, jobRepo, queue, _ := newTestService(t)

	job := &analysis.AnalysisJob{
		ID:           kernel.NewJobID("job-failed"),
		Status:       analysis.JobStatusFailed,
		AttemptCount: 3,
		MaxAttempts:  MaxJobAttempts,
		ErrorMessage: "extraction_failed",
		CreatedAt:    time.Now(),
	}
	_ = jobRepo.Create(context.Background(), job)

	resp, err := svc.RetryFailedJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("RetryFailedJob: %v", err)
	}
	if resp.Status != analysis.JobStatusPending {
		t.Errorf("Status = %q, want pending", resp.Status)
	}

	stored, _ := jobRepo.GetByID(context.Background(), job.ID)
	if stored.AttemptCount != 0 || stored.ErrorMessage != "" {
		t.Errorf("job not reset: attempts=%d error=%q", stored.AttemptCount, stored.ErrorMessage)
	}
	if len(queue.enqueued) != 1 {
		t.Errorf("enqueued = %d, want 1", len(queue.enqueued))
	}

	// Pending jobs cannot be retried
	if _, err := svc.RetryFailedJob(context.Background(), job.ID); err == nil {
		t.Error("retrying a pending job should fail")
	}
}

func TestGetJobStats(t *testing.T) {
	svc, _, jobRepo, queue, _ := newTestService(t)

	for i, status := range []analysis.JobStatus{
		analysis.JobStatusPending,
		analysis.JobStatusCompleted,
		analysis.JobStatusCompleted,
		analysis.JobStatusFailed,
	} {
		_ = jobRepo.Create(context.Background(), &analysis.AnalysisJob{
			ID:     kernel.JobID(string(rune('a' + i))),
			Status: status,
		})
	}
	queue.enqueued = append(queue.enqueued, &analysis.AnalysisJob{})

	stats, err := svc.GetJobStats(context.Background())
	if err != nil {
		t.Fatalf("GetJobStats: %v", err)
	}
	if stats.Pending != 1 || stats.Completed != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.QueueDepth != 1 {
		t.Errorf("QueueDepth = %d, want 1", stats.QueueDepth)
	}
}

func TestDeleteAnalysisRemovesFiles(t *testing.T) {
	svc, repo, _, _, files := newTestService(t)

	model := analysis.NewAnalysis(analysis.SourcePDF, "", "analyses/cv.pdf", "cv.pdf", "pdf")
	model.AudioPath = "audio/x.mp3"
	_ = repo.Create(context.Background(), model)
	_ = files.WriteFile(context.Background(), "analyses/cv.pdf", []byte("pdf"))
	_ = files.WriteFile(context.Background(), "audio/x.mp3", []byte("mp3"))

	if err := svc.DeleteAnalysis(context.Background(), model.ID); err != nil {
		t.Fatalf("DeleteAnalysis: %v", err)
	}

	if ok, _ := files.Exists(context.Background(), "analyses/cv.pdf"); ok {
		t.Error("resume file should be deleted")
	}
	if ok, _ := files.Exists(context.Background(), "audio/x.mp3"); ok {
		t.Error("audio file should be deleted")
	}
	if _, err := repo.GetByID(context.Background(), model.ID); err == nil {
		t.Error("analysis record should be gone")
	}
}
