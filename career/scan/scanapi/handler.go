package scanapi

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/careerqr/career/scan"
	"github.com/Abraxas-365/careerqr/career/scan/scansrv"
)

const maxUploadSize = int64(10 * 1024 * 1024) // 10MB

type ScanHandlers struct {
	service *scansrv.Service
}

func NewScanHandlers(service *scansrv.Service) *ScanHandlers {
	return &ScanHandlers{service: service}
}

func (h *ScanHandlers) RegisterRoutes(app *fiber.App, apiKey fiber.Handler) {
	scans := app.Group("/api/v1", apiKey)

	scans.Post("/scans", h.ProcessScan)     // Decode QR image, queue analysis if URL
	scans.Post("/qrcodes", h.GenerateQRCode)
}

// ProcessScan decodes a QR image and starts a resume analysis for URLs
// POST /api/v1/scans
func (h *ScanHandlers) ProcessScan(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	if file.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "file too large",
			"max_size": "10MB",
			"size":     file.Size,
		})
	}

	uploadedFile, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer uploadedFile.Close()

	imageData, err := io.ReadAll(uploadedFile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	response, err := h.service.ProcessScan(c.Context(), imageData)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// GenerateQRCode renders arbitrary content as a QR PNG
// POST /api/v1/qrcodes
// Body: {"content": "https://example.com/cv.pdf", "size": 256}
func (h *ScanHandlers) GenerateQRCode(c *fiber.Ctx) error {
	var req scan.EncodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	png, err := h.service.GenerateQRCode(req)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
