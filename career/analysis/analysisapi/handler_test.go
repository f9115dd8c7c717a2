package analysisapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/career/analysis/analysissrv"
	"github.com/Abraxas-365/careerqr/pkg/auth"
	"github.com/Abraxas-365/careerqr/pkg/kernel"
)

type stubRepo struct {
	stored       *analysis.Analysis
	getCalledIDs []kernel.AnalysisID
}

func (r *stubRepo) Create(_ context.Context, _ *analysis.Analysis) error { return nil }

func (r *stubRepo) GetByID(_ context.Context, id kernel.AnalysisID) (*analysis.Analysis, error) {
	r.getCalledIDs = append(r.getCalledIDs, id)
	if r.stored != nil && r.stored.ID == id {
		return r.stored, nil
	}
	return nil, analysis.ErrAnalysisNotFound()
}

func (r *stubRepo) List(_ context.Context, _ kernel.PaginationOptions) (*kernel.Paginated[analysis.Analysis], error) {
	return &kernel.Paginated[analysis.Analysis]{Empty: true}, nil
}

func (r *stubRepo) Delete(_ context.Context, _ kernel.AnalysisID) error { return nil }

func (r *stubRepo) UpdateAudioPath(_ context.Context, _ kernel.AnalysisID, _ string) error {
	return nil
}

func (r *stubRepo) SearchSimilar(_ context.Context, _ []float32, _ int) ([]analysis.MatchResult, error) {
	return nil, nil
}

type stubJobRepo struct {
	listCalled bool
}

func (r *stubJobRepo) Create(_ context.Context, _ *analysis.AnalysisJob) error { return nil }
func (r *stubJobRepo) Update(_ context.Context, _ *analysis.AnalysisJob) error { return nil }

func (r *stubJobRepo) GetByID(_ context.Context, jobID kernel.JobID) (*analysis.AnalysisJob, error) {
	return nil, analysis.ErrJobNotFound().WithDetail("job_id", jobID)
}

func (r *stubJobRepo) List(_ context.Context, _ kernel.PaginationOptions) (*kernel.Paginated[analysis.AnalysisJob], error) {
	r.listCalled = true
	return &kernel.Paginated[analysis.AnalysisJob]{Empty: true}, nil
}

func (r *stubJobRepo) MarkAsProcessing(_ context.Context, _ kernel.JobID) error { return nil }

func (r *stubJobRepo) MarkAsCompleted(_ context.Context, _ kernel.JobID, _ kernel.AnalysisID) error {
	return nil
}

func (r *stubJobRepo) MarkAsFailed(_ context.Context, _ kernel.JobID, _ string, _ map[string]any) error {
	return nil
}

func (r *stubJobRepo) UpdateProgress(_ context.Context, _ kernel.JobID, _ analysis.ProcessingStep, _ int) error {
	return nil
}

func (r *stubJobRepo) CountByStatus(_ context.Context) (map[analysis.JobStatus]int64, error) {
	return map[analysis.JobStatus]int64{}, nil
}

type stubQueue struct{}

func (q *stubQueue) Enqueue(_ context.Context, _ *analysis.AnalysisJob) error { return nil }

func (q *stubQueue) Dequeue(_ context.Context, _ time.Duration) (*analysis.AnalysisJob, error) {
	return nil, nil
}

func (q *stubQueue) EnqueueDelayed(_ context.Context, _ *analysis.AnalysisJob, _ time.Duration) error {
	return nil
}

func (q *stubQueue) MoveDelayedToReady(_ context.Context) error    { return nil }
func (q *stubQueue) GetQueueSize(_ context.Context) (int64, error) { return 0, nil }
func (q *stubQueue) Clear(_ context.Context) error                 { return nil }

func newTestApp(t *testing.T) (*fiber.App, *stubRepo, *stubJobRepo) {
	t.Helper()

	repo := &stubRepo{
		stored: analysis.NewAnalysis(analysis.SourcePDF, "", "analyses/a.pdf", "a.pdf", "pdf"),
	}
	jobRepo := &stubJobRepo{}

	service := analysissrv.NewService(
		repo,
		jobRepo,
		&stubQueue{},
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		auth.NewTokenService("test-secret", "careerqr"),
		"gpt-4o",
	)

	app := fiber.New()
	handlers := NewAnalysisHandlers(service, nil)
	handlers.RegisterRoutes(app, func(c *fiber.Ctx) error { return c.Next() })

	return app, repo, jobRepo
}

func TestListJobsRouteNotShadowedByAnalysisID(t *testing.T) {
	app, repo, jobRepo := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/analyses/jobs", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("GET /analyses/jobs status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if !jobRepo.listCalled {
		t.Error("ListJobs handler was not reached")
	}
	for _, id := range repo.getCalledIDs {
		if id.String() == "jobs" {
			t.Error("GetAnalysis captured the /jobs path as an analysis ID")
		}
	}
}

func TestJobStatsRouteReachable(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/analyses/jobs/stats", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("GET /analyses/jobs/stats status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestGetAnalysisRouteStillMatchesIDs(t *testing.T) {
	app, repo, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/analyses/"+repo.stored.ID.String(), nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("GET /analyses/:id status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if len(repo.getCalledIDs) != 1 || repo.getCalledIDs[0] != repo.stored.ID {
		t.Errorf("GetByID called with %v, want [%s]", repo.getCalledIDs, repo.stored.ID)
	}
}
