package pdf

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz" // Lightweight PDF renderer
)

// IsPDF reports whether data starts with the PDF magic header
func IsPDF(data []byte) bool {
	return len(data) >= 4 && bytes.HasPrefix(data, []byte("%PDF"))
}

// ConvertPDFToImages renders every PDF page to a JPEG image
func ConvertPDFToImages(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	images := make([][]byte, 0, pageCount)

	for i := 0; i < pageCount; i++ {
		img, err := doc.Image(i)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i, err)
		}

		images = append(images, buf.Bytes())
	}

	return images, nil
}
