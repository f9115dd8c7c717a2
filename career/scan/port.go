package scan

// Decoder turns image bytes into decoded QR text
type Decoder interface {
	DecodeImage(data []byte) (text string, pass string, err error)
}
