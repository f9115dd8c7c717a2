package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/Abraxas-365/careerqr/pkg/logx"
)

// ErrNoQRCode is returned when no pass produced a decodable QR code
var ErrNoQRCode = errors.New("no QR code found in image")

// DecodeFunc attempts a single QR decode over one image
type DecodeFunc func(img image.Image) (string, error)

// Engine runs the decode cascade: the original image first, then each
// enhancement pass in order, stopping at the first successful decode.
type Engine struct {
	decode DecodeFunc
	passes []Pass
}

// NewEngine creates an Engine backed by the zxing QR reader
func NewEngine() *Engine {
	return NewEngineWithDecoder(decodeZXing)
}

// NewEngineWithDecoder creates an Engine with a custom decode backend
func NewEngineWithDecoder(decode DecodeFunc) *Engine {
	return &Engine{
		decode: decode,
		passes: DefaultPasses(),
	}
}

// Result holds a successful decode and the pass that produced it
type Result struct {
	Text string
	Pass string
}

// Decode runs the cascade over an already-decoded image
func (e *Engine) Decode(img image.Image) (*Result, error) {
	if text, err := e.decode(img); err == nil {
		return &Result{Text: text, Pass: "original"}, nil
	}

	for _, pass := range e.passes {
		text, err := e.decode(pass.Apply(img))
		if err == nil {
			logx.Debugf("QR decoded after %s pass", pass.Name)
			return &Result{Text: text, Pass: pass.Name}, nil
		}
	}

	return nil, ErrNoQRCode
}

// DecodeBytes decodes PNG or JPEG bytes and runs the cascade
func (e *Engine) DecodeBytes(data []byte) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return e.Decode(img)
}

func decodeZXing(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}

	reader := qrcode.NewQRCodeReader()
	result, err := reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return "", err
	}

	return result.GetText(), nil
}
