package scansrv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/career/scan"
	"github.com/Abraxas-365/careerqr/internal/pdf"
	"github.com/Abraxas-365/careerqr/internal/qr"
	"github.com/Abraxas-365/careerqr/pkg/fsx"
	"github.com/Abraxas-365/careerqr/pkg/kernel"
	"github.com/Abraxas-365/careerqr/pkg/logx"
)

const (
	// DownloadTimeout bounds the fetch of a QR-referenced resume
	DownloadTimeout = 10 * time.Second

	// MaxDownloadSize caps the downloaded resume file (10MB)
	MaxDownloadSize = int64(10 * 1024 * 1024)

	DefaultQRSize = 256
	MaxQRSize     = 1024
)

// AnalysisStarter queues a stored resume for background analysis
type AnalysisStarter interface {
	StartAnalysisAsync(ctx context.Context, req analysis.StartAnalysisRequest) (*analysis.JobStatusResponse, error)
}

type Service struct {
	decoder    scan.Decoder
	starter    AnalysisStarter
	files      fsx.FileSystem
	httpClient *http.Client
}

// NewService creates a new scan service
func NewService(decoder scan.Decoder, starter AnalysisStarter, files fsx.FileSystem) *Service {
	return &Service{
		decoder: decoder,
		starter: starter,
		files:   files,
		httpClient: &http.Client{
			Timeout: DownloadTimeout,
		},
	}
}

// ProcessScan decodes a QR image, classifies its content, and when it
// holds a URL, downloads the referenced resume and queues an analysis.
func (s *Service) ProcessScan(ctx context.Context, imageData []byte) (*scan.ScanResponse, error) {
	text, pass, err := s.decoder.DecodeImage(imageData)
	if err != nil {
		if errors.Is(err, qr.ErrNoQRCode) {
			return nil, scan.ErrNoQRCode()
		}
		return nil, scan.ErrInvalidImage().
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	content := scan.ClassifyContent(text)
	response := &scan.ScanResponse{
		ScanID:     kernel.NewScanID(uuid.NewString()).String(),
		Content:    content,
		DecodePass: pass,
	}

	logx.Infof("QR decoded via pass %q: kind=%s", pass, content.Kind)

	if !content.IsURL() {
		response.Warning = fmt.Sprintf("QR content is %s, not a URL; no analysis started", content.Kind)
		return response, nil
	}

	job, err := s.startAnalysisFromURL(ctx, content.Value)
	if err != nil {
		return nil, err
	}
	response.Job = job

	return response, nil
}

// startAnalysisFromURL downloads the resume PDF and queues its analysis
func (s *Service) startAnalysisFromURL(ctx context.Context, resumeURL string) (*analysis.JobStatusResponse, error) {
	data, err := s.downloadPDF(ctx, resumeURL)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	filePath := s.files.Join(
		"analyses",
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		uuid.New().String()+".pdf",
	)

	if err := s.files.WriteFile(ctx, filePath, data); err != nil {
		return nil, scan.ErrDownloadFailed().
			WithDetail("url", resumeURL).
			WithDetail("operation", "store").
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	job, err := s.starter.StartAnalysisAsync(ctx, analysis.StartAnalysisRequest{
		Source:    analysis.SourceQR,
		SourceURL: resumeURL,
		FilePath:  filePath,
		FileName:  fileNameFromURL(resumeURL),
		FileType:  "pdf",
	})
	if err != nil {
		// Analysis never started; drop the stored file
		_ = s.files.DeleteFile(ctx, filePath)
		return nil, err
	}

	return job, nil
}

// downloadPDF fetches the resume with a bounded timeout and size
func (s *Service) downloadPDF(ctx context.Context, resumeURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resumeURL, nil)
	if err != nil {
		return nil, scan.ErrNotAURL().
			WithDetail("url", resumeURL)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, scan.ErrDownloadFailed().
			WithDetail("url", resumeURL).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, scan.ErrDownloadFailed().
			WithDetail("url", resumeURL).
			WithDetail("status_code", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, scan.ErrDownloadFailed().
			WithDetail("url", resumeURL).
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}
	if int64(len(data)) > MaxDownloadSize {
		return nil, scan.ErrDownloadFailed().
			WithDetail("url", resumeURL).
			WithDetail("reason", "file too large").
			WithDetail("max_size", MaxDownloadSize)
	}

	if !pdf.IsPDF(data) {
		return nil, scan.ErrNotAPDF().
			WithDetail("url", resumeURL).
			WithDetail("content_type", resp.Header.Get("Content-Type"))
	}

	return data, nil
}

// GenerateQRCode renders arbitrary content as a QR PNG
func (s *Service) GenerateQRCode(req scan.EncodeRequest) ([]byte, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, scan.ErrEncodeFailed().
			WithDetail("reason", "content is empty")
	}

	size := req.Size
	if size <= 0 {
		size = DefaultQRSize
	}
	if size > MaxQRSize {
		size = MaxQRSize
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, scan.ErrEncodeFailed().
			WithDetails(map[string]any{
				"error": err.Error(),
			})
	}

	return png, nil
}

// fileNameFromURL derives a stored file name from the resume URL
func fileNameFromURL(resumeURL string) string {
	parsed, err := url.Parse(resumeURL)
	if err != nil {
		return "resume.pdf"
	}

	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "resume.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
