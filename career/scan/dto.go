package scan

import "github.com/Abraxas-365/careerqr/career/analysis"

// ScanResponse is the API response for a decoded QR image. Job is set
// only when the decoded content was a resume URL that started an
// analysis; Warning carries the not-a-URL hint otherwise.
type ScanResponse struct {
	ScanID     string                      `json:"scan_id"`
	Content    Content                     `json:"content"`
	DecodePass string                      `json:"decode_pass"`
	Job        *analysis.JobStatusResponse `json:"job,omitempty"`
	Warning    string                      `json:"warning,omitempty"`
}

// EncodeRequest asks for a QR code PNG for arbitrary content
type EncodeRequest struct {
	Content string `json:"content"`
	Size    int    `json:"size,omitempty"`
}
