package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prankitapotbhare/TinyLink/internal/models"
	"github.com/prankitapotbhare/TinyLink/internal/repository"
	"github.com/prankitapotbhare/TinyLink/internal/service"
)

type LinkController struct {
	linkService service.LinkService
	baseURL     string
}

func NewLinkController(linkService service.LinkService, baseURL string) *LinkController {
	return &LinkController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

// CreateLink handles POST /api/links
func (lc *LinkController) CreateLink(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	response, err := lc.linkService.CreateLink(c.Request.Context(), &req, lc.baseURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL),
			errors.Is(err, service.ErrInvalidCode),
			errors.Is(err, repository.ErrDuplicateCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("failed to create link", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Redirect handles GET /:code - the transactional redirect-and-count path.
// The lookup and the click increment commit as one unit in the repository; if
// that unit fails, no redirect is issued.
func (lc *LinkController) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := lc.linkService.ResolveClick(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		slog.Error("failed to resolve click", "code", code, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Redirect(http.StatusFound, link.URL)
}

// ListLinks handles GET /api/links - all links, newest first
func (lc *LinkController) ListLinks(c *gin.Context) {
	links, err := lc.linkService.ListLinks(c.Request.Context())
	if err != nil {
		slog.Error("failed to list links", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.ListLinksResponse{Links: links})
}

// GetLink handles GET /api/links/:code
func (lc *LinkController) GetLink(c *gin.Context) {
	code := c.Param("code")

	link, err := lc.linkService.GetLink(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		slog.Error("failed to get link", "code", code, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, link)
}

// DeleteLink handles DELETE /api/links/:code
func (lc *LinkController) DeleteLink(c *gin.Context) {
	code := c.Param("code")

	err := lc.linkService.DeleteLink(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		slog.Error("failed to delete link", "code", code, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
