package scan

import (
	"net/http"

	"github.com/Abraxas-365/careerqr/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("SCAN")

var (
	CodeInvalidImage   = ErrRegistry.Register("INVALID_IMAGE", errx.TypeBadRequest, http.StatusBadRequest, "File is not a decodable image")
	CodeNoQRCode       = ErrRegistry.Register("NO_QR_CODE", errx.TypeBadRequest, http.StatusUnprocessableEntity, "Could not decode a QR code from the image")
	CodeNotAURL        = ErrRegistry.Register("NOT_A_URL", errx.TypeBadRequest, http.StatusBadRequest, "The QR code did not contain a valid URL")
	CodeDownloadFailed = ErrRegistry.Register("DOWNLOAD_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to download file from URL")
	CodeNotAPDF        = ErrRegistry.Register("NOT_A_PDF", errx.TypeBadRequest, http.StatusUnprocessableEntity, "The downloaded file is not a PDF")
	CodeEncodeFailed   = ErrRegistry.Register("ENCODE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate QR code")
)

func ErrInvalidImage() *errx.Error   { return ErrRegistry.New(CodeInvalidImage) }
func ErrNoQRCode() *errx.Error       { return ErrRegistry.New(CodeNoQRCode) }
func ErrNotAURL() *errx.Error        { return ErrRegistry.New(CodeNotAURL) }
func ErrDownloadFailed() *errx.Error { return ErrRegistry.New(CodeDownloadFailed) }
func ErrNotAPDF() *errx.Error        { return ErrRegistry.New(CodeNotAPDF) }
func ErrEncodeFailed() *errx.Error   { return ErrRegistry.New(CodeEncodeFailed) }
