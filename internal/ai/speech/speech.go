package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// Rate names map onto synthesis speed multipliers
const (
	RateXSlow  = "x-slow"
	RateSlow   = "slow"
	RateMedium = "medium"
	RateFast   = "fast"
	RateXFast  = "x-fast"
)

var rateSpeeds = map[string]float64{
	RateXSlow:  0.5,
	RateSlow:   0.75,
	RateMedium: 1.0,
	RateFast:   1.25,
	RateXFast:  1.5,
}

// Synthesizer turns advice text into audio via the OpenAI TTS API
type Synthesizer struct {
	client *openai.Client
	model  string
}

// NewSynthesizer creates a Synthesizer; an empty model selects tts-1
func NewSynthesizer(apiKey, model string) *Synthesizer {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)
	if model == "" {
		model = string(openai.SpeechModelTTS1)
	}

	return &Synthesizer{
		client: &client,
		model:  model,
	}
}

// Options selects the voice and rate of the synthesized audio
type Options struct {
	Voice string // alloy, echo, fable, onyx, nova, shimmer
	Rate  string // x-slow, slow, medium, fast, x-fast
}

// Synthesize cleans the text and returns MP3 audio bytes
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts Options) ([]byte, error) {
	clean := CleanTextForSpeech(text)
	if clean == "" {
		return nil, errors.New("empty text provided for speech synthesis")
	}

	params := openai.AudioSpeechNewParams{
		Model:          s.model,
		Input:          clean,
		Voice:          mapVoice(opts.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}

	if speed, ok := rateSpeeds[strings.ToLower(opts.Rate)]; ok && speed != 1.0 {
		params.Speed = param.NewOpt(speed)
	}

	res, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai speech synthesis error: %w", err)
	}
	defer res.Body.Close()

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}

	return audio, nil
}

// mapVoice accepts the full classic voice set; fable, onyx and nova
// have no SDK constant but remain valid API values.
func mapVoice(name string) openai.AudioSpeechNewParamsVoice {
	switch strings.ToLower(name) {
	case "echo":
		return openai.AudioSpeechNewParamsVoiceEcho
	case "fable", "onyx", "nova":
		return openai.AudioSpeechNewParamsVoice(strings.ToLower(name))
	case "shimmer":
		return openai.AudioSpeechNewParamsVoiceShimmer
	default:
		return openai.AudioSpeechNewParamsVoiceAlloy
	}
}
