package analysis

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalai/core/internal/pkg/apperr"
	"github.com/legalai/core/internal/pkg/response"
)

// CacheHeader reports whether an analysis came from the cache.
const CacheHeader = "X-Analysis-Cache"

type Handler struct {
	svc         *Service
	uploadLimit int64
}

func NewHandler(svc *Service, uploadLimit int64) *Handler {
	return &Handler{svc: svc, uploadLimit: uploadLimit}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/analyze", h.analyze)

	admin := rg.Group("/admin/cache", authMW)
	admin.GET("/analysis", h.stats)
	admin.DELETE("/analysis", h.clear)
}

// POST /analyze  multipart: file, selectedPages?
func (h *Handler) analyze(c *gin.Context) {
	if h.uploadLimit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperr.Validation("File too large"))
			return
		}
		response.Error(c, apperr.Validation("No file provided"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, apperr.Validation("No file provided"))
		return
	}
	defer f.Close()
	document, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, apperr.Validation("No file provided"))
		return
	}

	entry, hit, err := h.svc.Analyze(c.Request.Context(), document, c.PostForm("selectedPages"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if hit {
		c.Header(CacheHeader, "hit")
	} else {
		c.Header(CacheHeader, "miss")
	}
	response.OK(c, entry)
}

// GET /admin/cache/analysis  [auth]
func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Cache().Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}

// DELETE /admin/cache/analysis  [auth]
func (h *Handler) clear(c *gin.Context) {
	if err := h.svc.Cache().Clear(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
