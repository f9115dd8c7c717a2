package docintel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/Abraxas-365/careerqr/pkg/logx"
)

const (
	// MaxDocumentSizeBytes is the largest PDF the processor accepts (20MB)
	MaxDocumentSizeBytes = 20 * 1024 * 1024

	defaultTimeout = 60 * time.Second
)

var (
	ErrDocumentTooLarge  = errors.New("document exceeds maximum size")
	ErrInvalidPDF        = errors.New("data is not a valid PDF")
	ErrPermissionDenied  = errors.New("document analysis permission denied")
	ErrQuotaExceeded     = errors.New("document analysis quota exceeded")
	ErrProcessorNotFound = errors.New("document processor not found")
	ErrInvalidRequest    = errors.New("invalid document analysis request")
)

// Config holds the Document AI processor coordinates
type Config struct {
	ProjectID   string
	Location    string
	ProcessorID string
	Timeout     time.Duration
}

// ConfigFromEnv loads processor configuration from the environment.
// Requires GOOGLE_PROJECT_ID and GOOGLE_PROCESSOR_ID; GOOGLE_LOCATION
// defaults to "us".
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		ProjectID:   os.Getenv("GOOGLE_PROJECT_ID"),
		Location:    os.Getenv("GOOGLE_LOCATION"),
		ProcessorID: os.Getenv("GOOGLE_PROCESSOR_ID"),
		Timeout:     defaultTimeout,
	}
	if cfg.ProjectID == "" {
		return Config{}, fmt.Errorf("GOOGLE_PROJECT_ID is required")
	}
	if cfg.ProcessorID == "" {
		return Config{}, fmt.Errorf("GOOGLE_PROCESSOR_ID is required")
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}
	return cfg, nil
}

// KeyValue is one form field pair detected in the document
type KeyValue struct {
	Key   string
	Value string
}

// Entity is one named entity detected in the document
type Entity struct {
	Type    string
	Mention string
}

// Document is the structured output of one analysis call
type Document struct {
	Text       string
	Paragraphs []string
	KeyValues  []KeyValue
	Entities   []Entity
}

// Extractor calls Google Document AI to pull text, paragraphs, form
// fields and entities out of resume PDFs.
type Extractor struct {
	client        *documentai.DocumentProcessorClient
	config        Config
	processorName string
}

// NewExtractor creates an Extractor, pointing the client at the
// regional endpoint for non-"us" locations. Credentials come from
// GOOGLE_CREDENTIALS (inline JSON) or application default credentials.
func NewExtractor(ctx context.Context, cfg Config) (*Extractor, error) {
	var clientOptions []option.ClientOption

	if cfg.Location != "" && cfg.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Extractor{
		client: client,
		config: cfg,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			cfg.ProjectID, cfg.Location, cfg.ProcessorID),
	}, nil
}

// Close releases the underlying gRPC connection
func (e *Extractor) Close() error {
	return e.client.Close()
}

// ProcessResume runs one PDF through the processor and returns the
// structured document.
func (e *Extractor) ProcessResume(ctx context.Context, pdfData []byte) (*Document, error) {
	if len(pdfData) > MaxDocumentSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, len(pdfData))
	}
	if len(pdfData) < 4 || string(pdfData[:4]) != "%PDF" {
		return nil, ErrInvalidPDF
	}

	processCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: e.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfData,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := e.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, classifyError(err)
	}

	doc := resp.GetDocument()
	if doc == nil {
		return nil, fmt.Errorf("document analysis returned no document")
	}

	result := &Document{Text: doc.GetText()}

	for _, page := range doc.GetPages() {
		for _, para := range page.GetParagraphs() {
			text := strings.TrimSpace(textFromLayout(doc.GetText(), para.GetLayout()))
			if text != "" {
				result.Paragraphs = append(result.Paragraphs, text)
			}
		}
		for _, field := range page.GetFormFields() {
			kv := KeyValue{
				Key:   strings.TrimSpace(textFromLayout(doc.GetText(), field.GetFieldName())),
				Value: strings.TrimSpace(textFromLayout(doc.GetText(), field.GetFieldValue())),
			}
			if kv.Key != "" || kv.Value != "" {
				result.KeyValues = append(result.KeyValues, kv)
			}
		}
	}

	for _, entity := range doc.Entities {
		result.Entities = append(result.Entities, Entity{
			Type:    entity.Type,
			Mention: strings.TrimSpace(entity.MentionText),
		})
	}

	logx.Debugf("Document AI extracted %d paragraphs, %d key-values, %d entities",
		len(result.Paragraphs), len(result.KeyValues), len(result.Entities))

	return result, nil
}

// textFromLayout resolves a layout's text anchor against the full text
func textFromLayout(fullText string, layout *documentaipb.Document_Page_Layout) string {
	anchor := layout.GetTextAnchor()
	if anchor == nil {
		return ""
	}

	var b strings.Builder
	for _, segment := range anchor.GetTextSegments() {
		start := int(segment.GetStartIndex())
		end := int(segment.GetEndIndex())
		if start < 0 || end > len(fullText) || start >= end {
			continue
		}
		b.WriteString(fullText[start:end])
	}
	return b.String()
}

// classifyError maps API failures onto the package's sentinel errors
func classifyError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "PermissionDenied"), strings.Contains(msg, "PERMISSION_DENIED"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case strings.Contains(msg, "ResourceExhausted"), strings.Contains(msg, "QUOTA_EXCEEDED"):
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	case strings.Contains(msg, "NotFound"), strings.Contains(msg, "NOT_FOUND"):
		return fmt.Errorf("%w: %v", ErrProcessorNotFound, err)
	case strings.Contains(msg, "InvalidArgument"), strings.Contains(msg, "INVALID_ARGUMENT"):
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	default:
		return fmt.Errorf("document analysis failed: %w", err)
	}
}
