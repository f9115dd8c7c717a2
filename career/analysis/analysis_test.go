package analysis

import (
	"strings"
	"testing"
)

func TestResumeDataIsEmpty(t *testing.T) {
	var rd ResumeData
	if !rd.IsEmpty() {
		t.Error("zero ResumeData should be empty")
	}

	rd.Skills = []string{"Go"}
	if rd.IsEmpty() {
		t.Error("ResumeData with skills should not be empty")
	}
}

func TestResumeDataSectionCount(t *testing.T) {
	rd := ResumeData{
		Skills:     []string{"Go"},
		Experience: []string{"Backend at Acme"},
	}
	if got := rd.SectionCount(); got != 2 {
		t.Errorf("SectionCount() = %d, want 2", got)
	}
}

func TestFormatForEmbedding(t *testing.T) {
	rd := ResumeData{
		Name:   "Jane Doe",
		Email:  "jane@example.com",
		Skills: []string{"Go", "SQL"},
	}

	text := rd.FormatForEmbedding()
	for _, want := range []string{"Name: Jane Doe", "Email: jane@example.com", "Skills:", "- Go", "- SQL"} {
		if !strings.Contains(text, want) {
			t.Errorf("FormatForEmbedding() missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Projects:") {
		t.Error("FormatForEmbedding() should skip empty sections")
	}
}

func TestNewAnalysis(t *testing.T) {
	a := NewAnalysis(SourceQR, "https://example.com/cv.pdf", "analyses/2026/08/x.pdf", "cv.pdf", "pdf")

	if a.ID.IsEmpty() {
		t.Error("ID should be generated")
	}
	if a.Source != SourceQR {
		t.Errorf("Source = %q", a.Source)
	}
	if a.HasAdvice() || a.HasEmbedding() || a.HasAudio() {
		t.Error("fresh analysis should have no advice, embedding or audio")
	}

	a.Advice = "## Overall Resume Score\n78/100"
	if !a.HasAdvice() {
		t.Error("HasAdvice() should be true")
	}

	a.SetAudioPath("audio/x.mp3")
	if !a.HasAudio() {
		t.Error("HasAudio() should be true after SetAudioPath")
	}
}

func TestJobCanRetryAndIsTerminal(t *testing.T) {
	job := &AnalysisJob{Status: JobStatusFailed, AttemptCount: 1, MaxAttempts: 3}
	if !job.CanRetry() {
		t.Error("job with attempts left should be retryable")
	}
	if job.IsTerminal() {
		t.Error("retryable failed job is not terminal")
	}

	job.AttemptCount = 3
	if job.CanRetry() {
		t.Error("exhausted job should not be retryable")
	}
	if !job.IsTerminal() {
		t.Error("exhausted failed job is terminal")
	}

	job.Status = JobStatusCompleted
	if !job.IsTerminal() {
		t.Error("completed job is terminal")
	}

	job.Status = JobStatusProcessing
	if job.IsTerminal() {
		t.Error("processing job is not terminal")
	}
}
