package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/prankitapotbhare/TinyLink/internal/repository"
	"github.com/prankitapotbhare/TinyLink/internal/service"
)

type QRCodeController struct {
	linkService service.LinkService
	baseURL     string
}

func NewQRCodeController(linkService service.LinkService, baseURL string) *QRCodeController {
	return &QRCodeController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

// GenerateQRCode handles GET /api/links/:code/qr - generates a QR code PNG
// for an existing short link
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	code := c.Param("code")

	// Only encode codes that actually exist
	if _, err := qc.linkService.GetLink(c.Request.Context(), code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		slog.Error("failed to look up link for QR code", "code", code, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	shortURL := qc.baseURL + "/" + code

	// 256x256 pixels, medium error recovery
	pngData, err := qrcode.Encode(shortURL, qrcode.Medium, 256)
	if err != nil {
		slog.Error("failed to generate QR code", "code", code, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Header("Content-Disposition", "inline; filename=qrcode.png")
	c.Data(http.StatusOK, "image/png", pngData)
}
