package visionparser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

// VisionParser is the fallback resume extractor: it reads rendered
// resume pages with the OpenAI vision model when the hosted document
// analyzer is unavailable.
type VisionParser struct {
	client *openai.Client
}

// NewVisionParser creates a new vision-based resume parser
func NewVisionParser(apiKey string) *VisionParser {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &VisionParser{
		client: &client,
	}
}

// ParsedResume mirrors the section buckets produced by document triage
type ParsedResume struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Skills         []string `json:"skills"`
	Projects       []string `json:"projects"`
	Education      []string `json:"education"`
	Experience     []string `json:"experience"`
	Certifications []string `json:"certifications"`
	Others         []string `json:"others"`
}

const visionSystemPrompt = `You are a professional resume parser. Extract ALL information from the resume image and return ONLY valid JSON.`

const visionUserPrompt = `Extract all information from this resume in the following JSON structure:

{
  "name": string (candidate full name),
  "email": string,
  "phone": string,
  "skills": string[] (skill and technology statements, verbatim),
  "projects": string[] (project descriptions, verbatim),
  "education": string[] (degrees, universities, study periods),
  "experience": string[] (jobs, internships, employment entries),
  "certifications": string[] (certificates and training),
  "others": string[] (any remaining text that fits no other bucket)
}

IMPORTANT:
- Extract ALL visible text accurately
- Keep sentences verbatim; do not summarize
- If a field is not available, use an empty string or empty array
- Return ONLY the JSON, no explanatory text`

// ParseResumePages extracts resume buckets from one or more rendered
// page images (JPEG bytes).
func (p *VisionParser) ParseResumePages(ctx context.Context, pages [][]byte) (*ParsedResume, error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages provided")
	}

	contentParts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{
				Type: constant.Text("text"),
				Text: visionUserPrompt,
			},
		},
	}

	for i, pageData := range pages {
		base64Image := base64.StdEncoding.EncodeToString(pageData)
		dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64Image)

		contentParts = append(contentParts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				Type: constant.ImageURL("image_url"),
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL:    dataURL,
					Detail: "high", // High detail for better OCR
				},
			},
		})

		if i < len(pages)-1 {
			contentParts = append(contentParts, openai.ChatCompletionContentPartUnionParam{
				OfText: &openai.ChatCompletionContentPartTextParam{
					Type: constant.Text("text"),
					Text: fmt.Sprintf("--- Page %d ends, Page %d begins ---", i+1, i+2),
				},
			})
		}
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(visionSystemPrompt),
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: contentParts,
				},
			},
		},
	}

	maxTokens := int64(4000)
	if len(pages) > 1 {
		maxTokens = 6000
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    "gpt-4o", // Best vision capabilities
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0.1), // Low temperature for consistency
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai vision api error: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("no response from openai")
	}

	content := completion.Choices[0].Message.Content
	var parsed ParsedResume
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse resume JSON: %w", err)
	}

	return &parsed, nil
}
